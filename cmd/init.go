package cmd

import (
	"github.com/spf13/cobra"

	"github.com/z9wen/toolsss/pkg/config"
	"github.com/z9wen/toolsss/pkg/formatter"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter sitemgr.yaml in the current directory",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	out := formatter.New(verbose, noColor)

	if err := config.WriteDefault("sitemgr.yaml"); err != nil {
		return err
	}

	out.Success("wrote sitemgr.yaml")
	return nil
}
