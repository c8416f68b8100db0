package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nedforge/nedforge/src/plan"
)

var pushCmd = &cobra.Command{
	Use:   "push [variant]",
	Short: "Push primary-tagged images",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := plan.Target{Verb: "push"}
		if len(args) > 0 {
			t.Variant = args[0]
		}
		return runTarget(cmd.Context(), t)
	},
}

func init() {
	addPlanFlags(pushCmd)
	rootCmd.AddCommand(pushCmd)
}
