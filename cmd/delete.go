package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/z9wen/toolsss/pkg/audit"
	"github.com/z9wen/toolsss/pkg/site"
	"github.com/z9wen/toolsss/pkg/telemetry"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <domain>",
	Aliases: []string{"remove"},
	Short:   "Delete a site and all of its files",
	Long: `Delete a site entirely: config, document root, log and certificate
directories. The config and document root are copied into a timestamped
backup directory first.

Deletion must be confirmed by typing the domain name; a single keystroke
is not enough for a destructive operation.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	domain := strings.ToLower(args[0])
	app := newAppContext()

	ctx, span := telemetry.StartCommand(cmd.Context(), "delete", domain)
	defer span.End()

	_, _, registry, err := app.siteStack()
	if err != nil {
		return err
	}

	if registry.State(domain) == site.StateAbsent {
		return fmt.Errorf("site %s does not exist", domain)
	}

	app.out.Warning("This permanently removes the config, document root, logs and certificates of %s.", domain)
	confirmation, err := promptLine(fmt.Sprintf("Type the domain name '%s' to confirm: ", domain))
	if err != nil {
		return err
	}
	if confirmation != domain {
		return fmt.Errorf("confirmation failed, nothing deleted")
	}

	err = registry.Delete(domain)
	audit.Record(app.auditLog, audit.ActivitySiteDeleted, domain, "", err)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}

	app.out.Success("site %s deleted (backup kept under %s)", domain, backupRoot(app.cfg.StateDir))
	return nil
}
