package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/z9wen/toolsss/pkg/acme"
	"github.com/z9wen/toolsss/pkg/audit"
	"github.com/z9wen/toolsss/pkg/secrets"
	"github.com/z9wen/toolsss/pkg/telemetry"
	"github.com/z9wen/toolsss/pkg/utils"
)

var (
	sslWithWWW  bool
	sslExtra    string
	sslWildcard bool
	sslServer   string
)

var sslCmd = &cobra.Command{
	Use:   "ssl <domain>",
	Short: "Issue and activate a certificate for a site",
	Long: `Issue a certificate for an existing site and switch its config to
HTTP→HTTPS redirect plus a TLS server block.

Non-wildcard requests validate via the HTTP challenge served from the
site's document root. Wildcard requests validate via the Cloudflare DNS
plugin and need DNS credentials (CF_Token, or CF_Email + CF_Key).

A subdomain of an apex that already holds a wildcard certificate reuses
it by linking instead of requesting a new one.

Supported CA providers: ` + strings.Join(acme.KnownProviders(), ", ") + `.`,
	Args: cobra.ExactArgs(1),
	RunE: runSSL,
}

func init() {
	rootCmd.AddCommand(sslCmd)
	sslCmd.Flags().BoolVar(&sslWithWWW, "with-www", false, "also cover www.<domain>")
	sslCmd.Flags().StringVar(&sslExtra, "extra", "", "comma-separated additional names (bare labels are taken as subdomains)")
	sslCmd.Flags().BoolVar(&sslWildcard, "wildcard", false, "request a wildcard certificate (*.<domain>, DNS validation)")
	sslCmd.Flags().StringVar(&sslServer, "server", "", "CA provider (default from config/environment)")
}

func runSSL(cmd *cobra.Command, args []string) error {
	domain := strings.ToLower(args[0])

	if sslWildcard && (sslWithWWW || sslExtra != "") {
		return fmt.Errorf("--wildcard cannot be combined with --with-www or --extra")
	}

	app := newAppContext()

	ctx, span := telemetry.StartCommand(cmd.Context(), "ssl", domain)
	defer span.End()

	_, gate, registry, err := app.siteStack()
	if err != nil {
		return err
	}

	collector := secrets.NewCollector(app.out)
	engine := acme.NewEngine(app.resolver, registry, gate, collector, app.cfg.DefaultCA, app.out)

	opts := acme.Options{
		Wildcard:   sslWildcard,
		WithWWW:    sslWithWWW,
		ExtraNames: utils.SplitNames(sslExtra),
		Provider:   sslServer,
	}

	err = engine.Issue(domain, opts)

	activity := audit.ActivityCertIssued
	if err == nil && registry.WildcardLinked(domain) {
		activity = audit.ActivityCertReused
	}
	audit.Record(app.auditLog, activity, domain, sslServer, err)

	if err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}
	return nil
}
