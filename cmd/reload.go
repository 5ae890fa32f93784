package cmd

import (
	"github.com/spf13/cobra"

	"github.com/z9wen/toolsss/pkg/audit"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Test the nginx configuration and reload on success",
	RunE:  runReload,
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the nginx configuration syntax",
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(reloadCmd)
	rootCmd.AddCommand(testCmd)
}

func runReload(cmd *cobra.Command, args []string) error {
	app := newAppContext()

	_, gate, _, err := app.siteStack()
	if err != nil {
		return err
	}

	err = gate.Apply()
	audit.Record(app.auditLog, audit.ActivityReloaded, "", "", err)
	if err != nil {
		return err
	}

	app.out.Success("nginx reloaded")
	return nil
}

func runTest(cmd *cobra.Command, args []string) error {
	app := newAppContext()

	_, gate, _, err := app.siteStack()
	if err != nil {
		return err
	}

	output, err := gate.Test()
	if err != nil {
		app.out.Error("config test failed")
		app.out.Plain("%s", output)
		return err
	}

	app.out.Success("config test passed")
	if verbose && output != "" {
		app.out.Plain("%s", output)
	}
	return nil
}
