// Package acme orchestrates certificate issuance, wildcard reuse, install
// and config activation against the resolved ACME client backend.
package acme

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/z9wen/toolsss/pkg/backend"
	"github.com/z9wen/toolsss/pkg/formatter"
	"github.com/z9wen/toolsss/pkg/nginx"
	"github.com/z9wen/toolsss/pkg/secrets"
	"github.com/z9wen/toolsss/pkg/site"
	"github.com/z9wen/toolsss/pkg/utils"
)

// Options controls a single issuance request.
type Options struct {
	Wildcard   bool
	WithWWW    bool
	ExtraNames []string
	Provider   string // requested CA, normalized against the known set
}

// Engine drives the certificate lifecycle. Each step of Issue is an explicit
// gate: failure aborts without attempting the next step, and nothing after
// the issuance call is ever retried automatically.
type Engine struct {
	resolver  *backend.Resolver
	sites     *site.Registry
	gate      *nginx.Gate
	creds     *secrets.Collector
	out       *formatter.Output
	defaultCA string
}

// NewEngine creates a certificate lifecycle engine
func NewEngine(resolver *backend.Resolver, sites *site.Registry, gate *nginx.Gate, creds *secrets.Collector, defaultCA string, out *formatter.Output) *Engine {
	return &Engine{
		resolver:  resolver,
		sites:     sites,
		gate:      gate,
		creds:     creds,
		out:       out,
		defaultCA: defaultCA,
	}
}

// Issue obtains and activates a certificate for a site.
func (e *Engine) Issue(domain string, opts Options) error {
	// Wildcard and explicit extra names are mutually exclusive; rejecting
	// beats silently issuing for one of them.
	if opts.Wildcard && (opts.WithWWW || len(opts.ExtraNames) > 0) {
		return fmt.Errorf("--wildcard cannot be combined with --with-www or --extra")
	}

	provider := NormalizeProvider(opts.Provider, e.defaultCA, e.out)
	e.out.Verbose("CA provider: %s", provider.Name)

	switch e.sites.State(domain) {
	case site.StateCreated, site.StateSecured:
	default:
		return fmt.Errorf("site %s does not exist; create it first with: add %s", domain, domain)
	}

	client, err := e.resolver.Acme()
	if err != nil {
		return err
	}

	if opts.Wildcard {
		if err := e.creds.EnsureDNS(); err != nil {
			return err
		}
	}
	if provider.RequiresEAB {
		if err := e.creds.EnsureEAB(provider.Name); err != nil {
			return err
		}
	}

	// A subordinate of an apex that already holds a wildcard certificate
	// reuses it instead of requesting a new one. ACME providers rate-limit
	// issuance per registered domain; linking avoids both the limit and the
	// validation round trip. The wildcard spans one label only, so requested
	// extra names are never covered by it and force a normal issuance.
	if !opts.Wildcard && !opts.WithWWW && len(opts.ExtraNames) == 0 && utils.IsSubordinate(domain) {
		reused, err := e.tryWildcardReuse(client, domain)
		if err != nil {
			return err
		}
		if reused {
			return nil
		}
	}

	names := buildNameSet(domain, opts)
	e.out.Step("Issuing certificate for %s via %s...", strings.Join(names, " "), provider.Name)

	if err := e.issue(client, domain, names, provider, opts.Wildcard); err != nil {
		return err
	}
	if err := e.install(client, domain); err != nil {
		return err
	}
	return e.activate(domain, opts)
}

// tryWildcardReuse links a subordinate site's certificate files into its
// apex domain's certificate directory when the ACME client already holds a
// wildcard certificate for that apex. Returns true when the site was secured
// without any issuance call.
func (e *Engine) tryWildcardReuse(client backend.Acme, domain string) (bool, error) {
	apex := utils.ApexOf(domain)

	listing, err := client.List()
	if err != nil {
		// Listing is an observation; fall through to normal issuance.
		e.out.Verbose("certificate listing unavailable: %v", err)
		return false, nil
	}
	if !strings.Contains(listing, "*."+apex) {
		return false, nil
	}
	if !e.sites.Secured(apex) {
		return false, nil
	}

	e.out.Step("Reusing wildcard certificate of %s for %s...", apex, domain)

	certDir := e.sites.CertDir(domain)
	if err := os.MkdirAll(certDir, 0755); err != nil {
		return false, fmt.Errorf("failed to create certificate directory: %w", err)
	}

	links := map[string]string{
		e.sites.KeyPath(domain):       e.sites.KeyPath(apex),
		e.sites.FullchainPath(domain): e.sites.FullchainPath(apex),
	}
	for link, target := range links {
		if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
			return false, fmt.Errorf("failed to replace %s: %w", link, err)
		}
		if err := os.Symlink(target, link); err != nil {
			return false, fmt.Errorf("failed to link %s: %w", link, err)
		}
	}

	content := nginx.Render(e.sites.RenderInput(domain, nil, false, true, true))
	if err := e.gate.WriteConfig(e.sites.ConfPath(domain), content); err != nil {
		return false, err
	}

	e.out.Success("%s secured with the wildcard certificate of %s", domain, apex)
	return true, nil
}

// buildNameSet assembles the certificate name set: the primary domain,
// www form, and extras (bare labels qualified against the primary). A
// wildcard request covers the primary and its wildcard form exclusively.
func buildNameSet(domain string, opts Options) []string {
	if opts.Wildcard {
		return []string{domain, "*." + domain}
	}

	names := []string{domain}
	if opts.WithWWW {
		names = append(names, "www."+domain)
	}
	for _, extra := range opts.ExtraNames {
		names = append(names, utils.QualifyName(extra, domain))
	}
	return names
}

// issue performs the issuance request. Wildcard names validate via the DNS
// plugin; everything else via the HTTP challenge served from the site's
// document root.
func (e *Engine) issue(client backend.Acme, domain string, names []string, provider Provider, wildcard bool) error {
	args := []string{"--issue"}
	for _, name := range names {
		arg := name
		if utils.IsWildcard(name) {
			arg = utils.ShellQuote(name)
		}
		args = append(args, "-d", arg)
	}

	if wildcard {
		args = append(args, "--dns", "dns_cf")
	} else {
		args = append(args, "--webroot", e.sites.WebRoot(domain))
	}

	args = append(args, "--server", provider.Name)
	if provider.ValidityDays > 0 {
		args = append(args, "--days", strconv.Itoa(provider.ValidityDays))
	}
	if provider.RequiresEAB {
		kid, hmac := e.creds.EAB()
		args = append(args, "--eab-kid", utils.ShellQuote(kid), "--eab-hmac-key", utils.ShellQuote(hmac))
	}

	if _, err := client.Exec(args...); err != nil {
		return utils.NewError("certificate issuance failed", err,
			"check that the domain's DNS records point at this host",
			"check that port 80 is reachable from the internet",
			"check DNS/EAB credentials for the selected provider")
	}
	return nil
}

// install materializes the private key and full chain at the site's
// certificate paths.
func (e *Engine) install(client backend.Acme, domain string) error {
	if err := os.MkdirAll(e.sites.CertDir(domain), 0755); err != nil {
		return fmt.Errorf("failed to create certificate directory: %w", err)
	}

	_, err := client.Exec("--install-cert", "-d", domain,
		"--key-file", e.sites.KeyPath(domain),
		"--fullchain-file", e.sites.FullchainPath(domain))
	if err != nil {
		return fmt.Errorf("failed to install certificate for %s: %w", domain, err)
	}
	return nil
}

// activate re-renders the site config as secured and applies it through the
// reload gate.
func (e *Engine) activate(domain string, opts Options) error {
	var extras []string
	if opts.WithWWW {
		extras = append(extras, "www."+domain)
	}
	for _, extra := range opts.ExtraNames {
		extras = append(extras, utils.QualifyName(extra, domain))
	}

	content := nginx.Render(e.sites.RenderInput(domain, extras, opts.Wildcard, true, false))
	if err := e.gate.WriteConfig(e.sites.ConfPath(domain), content); err != nil {
		return err
	}

	e.out.Success("certificate activated for %s", domain)
	return nil
}

// Annotate returns the issuing provider for a secured domain, best effort.
func (e *Engine) Annotate(domain string) string {
	client, ok := e.resolver.TryAcme()
	if !ok {
		return ""
	}
	info, err := client.Info(domain)
	if err != nil {
		return ""
	}
	return ProviderFromInfo(info)
}
