package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nedforge/nedforge/src/plan"
	"github.com/nedforge/nedforge/src/variant"
)

var runCmd = &cobra.Command{
	Use:   "run <target>...",
	Short: "Run make-style targets",
	Long: `Run one or more make-style targets in order, e.g.

  nedforge run build push-ios-1.0 push-release

Each target is a verb (build, push, tag-release, push-release),
optionally suffixed with a variant name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		variants, err := variant.Discover(cfg.PackagesDir, cfg.MarkerFile)
		if err != nil {
			return err
		}

		// Parse everything up front so a typo in the last target fails
		// before anything builds.
		targets := make([]plan.Target, 0, len(args))
		for _, arg := range args {
			t, err := plan.ParseTarget(arg, variants)
			if err != nil {
				return err
			}
			targets = append(targets, t)
		}

		for _, t := range targets {
			if err := runTarget(cmd.Context(), t); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	addPlanFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
