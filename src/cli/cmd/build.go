package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nedforge/nedforge/src/plan"
)

var buildCmd = &cobra.Command{
	Use:   "build [variant]",
	Short: "Build the stage image matrix",
	Long: `Build the base stage chain (build, configurator, nso), the all-variant
package image, and per-variant netsim and package images. Without a
variant argument the whole matrix is built and the unqualified netsim
tag is pointed at the latest variant.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := plan.Target{Verb: "build"}
		if len(args) > 0 {
			t.Variant = args[0]
		}
		return runTarget(cmd.Context(), t)
	},
}

func init() {
	addPlanFlags(buildCmd)
	rootCmd.AddCommand(buildCmd)
}
