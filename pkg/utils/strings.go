package utils

import (
	"regexp"
	"strings"
)

// validDomain matches a plausible FQDN label sequence. It intentionally does
// not chase the full RFC: lowercase labels, digits, hyphens, at least one dot.
var validDomain = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)

// IsValidDomain validates a fully-qualified domain name.
func IsValidDomain(domain string) bool {
	return validDomain.MatchString(strings.ToLower(domain))
}

// secondLevelSuffixes lists common two-label public suffixes so that a name
// like "example.co.uk" keeps its full registered domain as apex instead of
// being misread as a subordinate of "co.uk". Not the full public-suffix
// list; covers the registries this tool is realistically pointed at.
var secondLevelSuffixes = map[string]bool{
	"co.uk": true, "org.uk": true, "ac.uk": true, "gov.uk": true,
	"com.au": true, "net.au": true, "org.au": true,
	"co.jp": true, "co.nz": true, "co.za": true, "co.kr": true,
	"com.br": true, "com.cn": true, "com.mx": true, "com.tw": true,
}

// ApexOf returns the registered base domain for a name,
// e.g. "api.example.com" → "example.com". Names that already
// look like an apex are returned unchanged.
func ApexOf(domain string) string {
	parts := strings.Split(domain, ".")
	if len(parts) <= 2 {
		return domain
	}
	if secondLevelSuffixes[strings.Join(parts[len(parts)-2:], ".")] {
		if len(parts) <= 3 {
			return domain
		}
		return strings.Join(parts[len(parts)-3:], ".")
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

// IsSubordinate reports whether a name is a subdomain of some apex,
// e.g. true for "api.example.com", false for "example.com" and
// "example.co.uk".
func IsSubordinate(domain string) bool {
	return domain != ApexOf(domain)
}

// IsWildcard reports whether a name is in wildcard form ("*.example.com").
func IsWildcard(domain string) bool {
	return strings.HasPrefix(domain, "*.")
}

// QualifyName expands a bare label against a primary domain:
// "api" → "api.example.com"; names already containing a dot pass through.
func QualifyName(name, primary string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return name + "." + primary
}

// SplitNames splits a comma-separated name list, trimming blanks.
func SplitNames(list string) []string {
	var names []string
	for _, n := range strings.Split(list, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// ShellQuote wraps a string in single quotes with proper escaping for safe
// use in shell commands. Single quotes within the string are handled by ending
// the quoted section, adding an escaped single quote, and resuming quoting.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\"'\"'") + "'"
}

// TruncateString truncates a string to maxLength, adding "..." if truncated
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	return s[:maxLength-3] + "..."
}
