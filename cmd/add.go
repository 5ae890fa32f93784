package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/z9wen/toolsss/pkg/audit"
	"github.com/z9wen/toolsss/pkg/site"
	"github.com/z9wen/toolsss/pkg/telemetry"
)

var addCmd = &cobra.Command{
	Use:   "add <domain>",
	Short: "Create a new HTTP-only site",
	Long: `Create a new site for the given domain: document root with a sample
landing page, log and certificate directories, and an HTTP-only nginx
config applied through the test-before-reload gate.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	domain := strings.ToLower(args[0])
	app := newAppContext()

	ctx, span := telemetry.StartCommand(cmd.Context(), "add", domain)
	defer span.End()

	_, _, registry, err := app.siteStack()
	if err != nil {
		return err
	}

	err = registry.Create(domain, false)
	if errors.Is(err, site.ErrConfigExists) {
		answer, perr := promptLine(fmt.Sprintf("Config for %s already exists. Overwrite? (y/N): ", domain))
		if perr != nil {
			return perr
		}
		if answer != "y" && answer != "Y" {
			app.out.Plain("Cancelled.")
			return nil
		}
		err = registry.Create(domain, true)
	}

	audit.Record(app.auditLog, audit.ActivitySiteCreated, domain, "", err)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}

	app.out.Success("site %s created", domain)
	app.out.Info("point your DNS at this host, then run: sitemgr ssl %s", domain)
	return nil
}
