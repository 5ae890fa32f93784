// Package nginx renders vhost configuration and applies it through the
// test-before-reload gate.
package nginx

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Site is the input to Render. Identical inputs always produce byte-identical
// output: the engine re-renders a site's config in place on every TLS-state
// transition and relies on determinism.
type Site struct {
	Domain         string
	ExtraNames     []string // additional FQDNs, caller-supplied order preserved
	Wildcard       bool     // append *.Domain to server_name
	Secured        bool     // render redirect + TLS blocks instead of HTTP-only
	WildcardLinked bool     // certificate files are links into the apex's cert dir
	WebRoot        string
	LogDir         string
	CertDir        string
}

// ServerNames returns the rendered server_name value: primary domain first,
// then extra names in caller order, then the wildcard form if requested.
func (s Site) ServerNames() string {
	names := append([]string{s.Domain}, s.ExtraNames...)
	if s.Wildcard {
		names = append(names, "*."+s.Domain)
	}
	return strings.Join(names, " ")
}

// Render produces the complete vhost configuration text for a site.
func Render(s Site) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Configuration for %s\n", s.Domain))

	if !s.Secured {
		renderHTTPBlock(&b, s)
		return b.String()
	}

	renderRedirectBlock(&b, s)
	renderTLSBlock(&b, s)
	return b.String()
}

// renderHTTPBlock emits the plaintext server block that serves the document
// root directly. The ACME challenge location comes before the catch-all so
// issuance keeps working on an unsecured site.
func renderHTTPBlock(b *strings.Builder, s Site) {
	b.WriteString("server {\n")
	b.WriteString("    listen 80;\n")
	b.WriteString(fmt.Sprintf("    server_name %s;\n\n", s.ServerNames()))

	writeChallengeLocation(b, s)

	b.WriteString("    location / {\n")
	b.WriteString(fmt.Sprintf("        root %s;\n", s.WebRoot))
	b.WriteString("        index index.html index.htm;\n")
	b.WriteString("    }\n\n")

	writeLogDirectives(b, s)
	b.WriteString("}\n")
}

// renderRedirectBlock emits the plaintext block of a secured site: the ACME
// challenge location is preserved for renewals, everything else redirects to
// HTTPS keeping host and path.
func renderRedirectBlock(b *strings.Builder, s Site) {
	b.WriteString("server {\n")
	b.WriteString("    listen 80;\n")
	b.WriteString(fmt.Sprintf("    server_name %s;\n\n", s.ServerNames()))

	writeChallengeLocation(b, s)

	b.WriteString("    location / {\n")
	b.WriteString("        return 301 https://$host$request_uri;\n")
	b.WriteString("    }\n")
	b.WriteString("}\n\n")
}

func renderTLSBlock(b *strings.Builder, s Site) {
	b.WriteString("server {\n")
	b.WriteString("    listen 443 ssl;\n")
	b.WriteString("    http2 on;\n")
	b.WriteString(fmt.Sprintf("    server_name %s;\n\n", s.ServerNames()))

	if s.WildcardLinked {
		b.WriteString("    # certificate linked from the apex domain's wildcard certificate\n")
	}
	b.WriteString(fmt.Sprintf("    ssl_certificate %s;\n", filepath.Join(s.CertDir, "fullchain.cer")))
	b.WriteString(fmt.Sprintf("    ssl_certificate_key %s;\n\n", filepath.Join(s.CertDir, s.Domain+".key")))

	b.WriteString("    ssl_protocols TLSv1.2 TLSv1.3;\n")
	b.WriteString("    ssl_ciphers HIGH:!aNULL:!MD5;\n")
	b.WriteString("    ssl_prefer_server_ciphers on;\n")
	b.WriteString("    ssl_session_cache shared:SSL:10m;\n")
	b.WriteString("    ssl_session_timeout 10m;\n\n")

	b.WriteString("    add_header Strict-Transport-Security \"max-age=31536000\" always;\n")
	b.WriteString("    add_header X-Frame-Options \"SAMEORIGIN\" always;\n")
	b.WriteString("    add_header X-Content-Type-Options \"nosniff\" always;\n")
	b.WriteString("    add_header X-XSS-Protection \"1; mode=block\" always;\n\n")

	b.WriteString("    location / {\n")
	b.WriteString(fmt.Sprintf("        root %s;\n", s.WebRoot))
	b.WriteString("        index index.html index.htm;\n")
	b.WriteString("    }\n\n")

	writeLogDirectives(b, s)
	b.WriteString("}\n")
}

func writeChallengeLocation(b *strings.Builder, s Site) {
	b.WriteString("    location /.well-known/acme-challenge/ {\n")
	b.WriteString(fmt.Sprintf("        root %s;\n", s.WebRoot))
	b.WriteString("    }\n\n")
}

func writeLogDirectives(b *strings.Builder, s Site) {
	b.WriteString(fmt.Sprintf("    access_log %s;\n", filepath.Join(s.LogDir, "access.log")))
	b.WriteString(fmt.Sprintf("    error_log %s;\n", filepath.Join(s.LogDir, "error.log")))
}
