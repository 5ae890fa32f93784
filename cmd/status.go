package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show web-server backend state and site counts",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	app := newAppContext()

	be, ok := app.resolver.TryNginx()
	if !ok {
		app.out.Warning("nginx is not available as a container or a native installation")
		app.out.Plain("Run 'sitemgr add <domain>' to be offered an installation.")
		return nil
	}

	app.out.Section("nginx")
	app.out.KeyValue("Backend", string(be.Mode()))

	running, err := be.Running()
	if err != nil {
		return fmt.Errorf("failed to check nginx state: %w", err)
	}
	state := "stopped"
	if running {
		state = "running"
	}
	app.out.KeyValue("State", state)

	if testOut, err := be.Test(); err != nil {
		app.out.KeyValue("Config test", "failed")
		app.out.Plain("%s", testOut)
	} else {
		app.out.KeyValue("Config test", "ok")
	}

	registry, err := newRegistryReadOnly(app, be)
	if err != nil {
		return err
	}
	sites, err := registry.List(nil)
	if err != nil {
		return err
	}

	enabled, disabled := 0, 0
	for _, s := range sites {
		if s.Enabled {
			enabled++
		} else {
			disabled++
		}
	}
	app.out.KeyValue("Sites", fmt.Sprintf("%d enabled, %d disabled", enabled, disabled))
	return nil
}
