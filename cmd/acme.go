package cmd

import (
	"github.com/spf13/cobra"
)

var acmeCmd = &cobra.Command{
	Use:   "acme",
	Short: "Inspect or install the ACME client backend",
}

var acmeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ACME client backend, version and certificate list",
	Long: `Show the resolved ACME client backend, its version and its certificate
list. If no client is available, offers to install one.`,
	RunE: runAcmeStatus,
}

var acmeInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the ACME client (containerized or native)",
	RunE:  runAcmeInstall,
}

func init() {
	rootCmd.AddCommand(acmeCmd)
	acmeCmd.AddCommand(acmeStatusCmd)
	acmeCmd.AddCommand(acmeInstallCmd)
}

func runAcmeStatus(cmd *cobra.Command, args []string) error {
	app := newAppContext()

	// Resolve with the install offer: absence of a client is exactly when
	// the operator needs one.
	client, err := app.resolver.Acme()
	if err != nil {
		return err
	}

	app.out.Section("acme.sh")
	app.out.KeyValue("Backend", string(client.Mode()))

	if version, err := client.Version(); err == nil {
		app.out.KeyValue("Version", version)
	} else {
		app.out.KeyValue("Version", "unknown")
	}

	listing, err := client.List()
	if err != nil {
		app.out.Warning("failed to list certificates: %v", err)
		return nil
	}
	app.out.EmptyLine()
	app.out.Plain("%s", listing)
	return nil
}

func runAcmeInstall(cmd *cobra.Command, args []string) error {
	app := newAppContext()

	if _, ok := app.resolver.TryAcme(); ok {
		app.out.Success("acme.sh is already installed")
		return nil
	}

	if _, err := app.resolver.Acme(); err != nil {
		return err
	}
	return nil
}
