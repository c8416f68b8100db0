package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nedforge/nedforge/src/output"
	"github.com/nedforge/nedforge/src/variant"
)

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List discovered variants",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		variants, err := variant.Discover(cfg.PackagesDir, cfg.MarkerFile)
		if err != nil {
			return err
		}

		color := output.UseColor()
		sec := output.NewSection(os.Stdout, "Variants", 0, color)
		if len(variants) == 0 {
			sec.Row("none found under %s", cfg.PackagesDir)
			sec.Close()
			return nil
		}

		latest, err := variant.Latest(variants)
		if err != nil {
			return err
		}
		for _, v := range variants {
			display := ""
			if v.Manifest != nil && v.Manifest.Display != "" {
				display = v.Manifest.Display
			}
			marker := ""
			if v.Name == latest.Name {
				marker = output.Dimmed("(latest)", color)
			}
			sec.Row("%-24s%-28s%s", v.Name, display, marker)
		}
		sec.Close()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(variantsCmd)
}
