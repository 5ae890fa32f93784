package acme

import (
	"strings"

	"github.com/z9wen/toolsss/pkg/formatter"
)

// Provider describes a certificate authority known to the tool.
type Provider struct {
	Name         string // canonical name, passed to acme.sh --server
	RequiresEAB  bool
	ValidityDays int // renewal period hint; 180 for extended-validity CAs
}

// DefaultProvider is the fallback when no provider is configured or the
// requested one is unrecognized.
const DefaultProvider = "letsencrypt"

var providers = map[string]Provider{
	"letsencrypt": {Name: "letsencrypt", ValidityDays: 90},
	"zerossl":     {Name: "zerossl", RequiresEAB: true, ValidityDays: 90},
	"google":      {Name: "google", RequiresEAB: true, ValidityDays: 90},
	"buypass":     {Name: "buypass", ValidityDays: 180},
}

// NormalizeProvider resolves a requested provider name against the known
// set. Unrecognized values fall back to the configured default with a
// warning, never a hard failure. An unrecognized default falls back to
// letsencrypt.
func NormalizeProvider(requested, configuredDefault string, out *formatter.Output) Provider {
	def, ok := providers[strings.ToLower(configuredDefault)]
	if !ok {
		def = providers[DefaultProvider]
	}

	if requested == "" {
		return def
	}

	p, ok := providers[strings.ToLower(requested)]
	if !ok {
		out.Warning("unknown CA provider %q, falling back to %s", requested, def.Name)
		return def
	}
	return p
}

// KnownProviders returns the canonical provider names.
func KnownProviders() []string {
	return []string{"letsencrypt", "zerossl", "google", "buypass"}
}

// ProviderFromInfo extracts the issuing provider from the ACME client's
// per-domain metadata (the Le_API line of acme.sh --info). Best effort:
// returns "" when nothing matches.
func ProviderFromInfo(info string) string {
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Le_API=") {
			continue
		}
		api := strings.Trim(strings.TrimPrefix(line, "Le_API="), "'\"")
		switch {
		case strings.Contains(api, "letsencrypt.org"):
			return "letsencrypt"
		case strings.Contains(api, "zerossl.com"):
			return "zerossl"
		case strings.Contains(api, "pki.goog"):
			return "google"
		case strings.Contains(api, "buypass.com"):
			return "buypass"
		}
	}
	return ""
}
