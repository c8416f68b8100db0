package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nedforge/nedforge/src/plan"
)

var tagReleaseCmd = &cobra.Command{
	Use:   "tag-release [variant]",
	Short: "Apply floating release tags to built images",
	Long: `Retag primary-tagged images with the floating major.minor tag. The
floating tag is only produced for local builds or CI builds at the tip
of their release train.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := plan.Target{Verb: "tag-release"}
		if len(args) > 0 {
			t.Variant = args[0]
		}
		return runTarget(cmd.Context(), t)
	},
}

var pushReleaseCmd = &cobra.Command{
	Use:   "push-release [variant]",
	Short: "Retag and push every release tag",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := plan.Target{Verb: "push-release"}
		if len(args) > 0 {
			t.Variant = args[0]
		}
		return runTarget(cmd.Context(), t)
	},
}

func init() {
	addPlanFlags(tagReleaseCmd)
	addPlanFlags(pushReleaseCmd)
	rootCmd.AddCommand(tagReleaseCmd)
	rootCmd.AddCommand(pushReleaseCmd)
}
