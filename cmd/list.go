package cmd

import (
	"github.com/spf13/cobra"

	"github.com/z9wen/toolsss/pkg/acme"
	"github.com/z9wen/toolsss/pkg/secrets"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sites with their SSL state",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	app := newAppContext()

	_, gate, registry, err := app.siteStack()
	if err != nil {
		return err
	}

	engine := acme.NewEngine(app.resolver, registry, gate, secrets.NewCollector(app.out), app.cfg.DefaultCA, app.out)

	sites, err := registry.List(engine.Annotate)
	if err != nil {
		return err
	}

	if len(sites) == 0 {
		app.out.Plain("No sites configured.")
		return nil
	}

	var rows [][]string
	for _, s := range sites {
		state := "enabled"
		if !s.Enabled {
			state = "disabled"
		}

		ssl := "no"
		if s.Secured {
			ssl = "yes"
			if s.WildcardLinked {
				ssl = "yes (wildcard link)"
			}
		}

		provider := s.Provider
		if provider == "" {
			provider = "-"
		}

		rows = append(rows, []string{s.Domain, state, ssl, provider})
	}

	app.out.Table([]string{"DOMAIN", "STATE", "SSL", "PROVIDER"}, rows)
	return nil
}
