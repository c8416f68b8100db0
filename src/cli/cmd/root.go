package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nedforge/nedforge/src/config"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "nedforge",
	Short: "Build-matrix orchestrator for NED package images",
	Long: `nedforge expands the stage × variant build matrix of an NSO package
tree into container build/tag/push operations and executes them in
dependency order against the docker CLI.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that don't touch the tree skip config loading.
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .nedforge.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
