package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/z9wen/toolsss/pkg/audit"
)

var disableCmd = &cobra.Command{
	Use:   "disable <domain>",
	Short: "Disable a site without removing its files",
	Args:  cobra.ExactArgs(1),
	RunE:  runDisable,
}

func init() {
	rootCmd.AddCommand(disableCmd)
}

func runDisable(cmd *cobra.Command, args []string) error {
	domain := strings.ToLower(args[0])
	app := newAppContext()

	_, _, registry, err := app.siteStack()
	if err != nil {
		return err
	}

	err = registry.Disable(domain)
	audit.Record(app.auditLog, audit.ActivitySiteDisabled, domain, "", err)
	if err != nil {
		return err
	}

	app.out.Success("site %s disabled", domain)
	return nil
}
