package cmd

import (
	"github.com/spf13/cobra"

	"github.com/z9wen/toolsss/pkg/audit"
	"github.com/z9wen/toolsss/pkg/backupsync"
)

var backupDest string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Sync site data to the backup destination",
	Long: `Mirror the document roots, certificate directories and vhost configs to
the configured backup destination (backup.destination, overridable with
--dest). The destination may be a local path or an rsync remote spec.`,
	RunE: runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().StringVar(&backupDest, "dest", "", "backup destination (overrides config)")
}

func runBackup(cmd *cobra.Command, args []string) error {
	app := newAppContext()

	be, err := app.resolver.Nginx()
	if err != nil {
		return err
	}

	dest := app.cfg.BackupDest
	if backupDest != "" {
		dest = backupDest
	}

	err = backupsync.Sync(app.run, be.Paths(), dest)
	audit.Record(app.auditLog, audit.ActivityBackupDone, "", dest, err)
	if err != nil {
		return err
	}

	app.out.Success("backup completed to %s", dest)
	return nil
}
