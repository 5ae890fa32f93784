package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs <domain> [lines]",
	Short: "Show the tail of a site's access and error logs",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSiteLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)
}

func runSiteLogs(cmd *cobra.Command, args []string) error {
	domain := strings.ToLower(args[0])

	lines := 50
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid line count: %s", args[1])
		}
		lines = n
	}

	app := newAppContext()

	be, ok := app.resolver.TryNginx()
	if !ok {
		return fmt.Errorf("nginx backend not available")
	}
	registry, err := newRegistryReadOnly(app, be)
	if err != nil {
		return err
	}

	logDir := registry.LogDir(domain)
	if _, err := os.Stat(logDir); err != nil {
		return fmt.Errorf("no logs found for %s", domain)
	}

	for _, name := range []string{"access.log", "error.log"} {
		app.out.Section(name)
		tail := fmt.Sprintf("tail -n %d %s", lines, filepath.Join(logDir, name))
		if err := app.run.RunStream(tail, os.Stdout, os.Stderr); err != nil {
			app.out.Warning("failed to read %s: %v", name, err)
		}
	}
	return nil
}
