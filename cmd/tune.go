package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/z9wen/toolsss/pkg/audit"
	"github.com/z9wen/toolsss/pkg/tune"
)

var tuneCmd = &cobra.Command{
	Use:   "tune [profile ...]",
	Short: "Apply kernel tuning profiles for a busy web server",
	Long: `Write a sysctl.d drop-in with the selected tuning profiles and apply it.
Without arguments all profiles are applied.

Available profiles:
  bbr      BBR congestion control with fq queueing
  buffers  Larger TCP buffers for high-bandwidth links
  limits   Higher connection and file-descriptor limits`,
	RunE: runTune,
}

func init() {
	rootCmd.AddCommand(tuneCmd)
}

func runTune(cmd *cobra.Command, args []string) error {
	app := newAppContext()

	var profiles []tune.Profile
	if len(args) == 0 {
		profiles = tune.Profiles()
	} else {
		for _, name := range args {
			p, ok := tune.FindProfile(name)
			if !ok {
				return fmt.Errorf("unknown tuning profile: %s", name)
			}
			profiles = append(profiles, p)
		}
	}

	var names []string
	for _, p := range profiles {
		names = append(names, p.Name)
	}

	err := tune.Apply(app.run, profiles)
	audit.Record(app.auditLog, audit.ActivityTuneApplied, "", strings.Join(names, ","), err)
	if err != nil {
		return err
	}

	app.out.Success("applied tuning profiles: %s", strings.Join(names, ", "))
	return nil
}
