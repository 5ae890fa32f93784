package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/z9wen/toolsss/pkg/audit"
)

var enableCmd = &cobra.Command{
	Use:   "enable <domain>",
	Short: "Re-enable a disabled site",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnable,
}

func init() {
	rootCmd.AddCommand(enableCmd)
}

func runEnable(cmd *cobra.Command, args []string) error {
	domain := strings.ToLower(args[0])
	app := newAppContext()

	_, _, registry, err := app.siteStack()
	if err != nil {
		return err
	}

	err = registry.Enable(domain)
	audit.Record(app.auditLog, audit.ActivitySiteEnabled, domain, "", err)
	if err != nil {
		return err
	}

	app.out.Success("site %s enabled", domain)
	return nil
}
