package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/nedforge/nedforge/src/output"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Start, run, and stop the test environment",
	Long: `Sequence the configured test environment: start it, run the test
command, then stop it. The environment itself (compose file, test
containers) lives under the testenv directory and is not managed here
beyond invoking its commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w := os.Stdout

		if err := testenvStep(ctx, w, "start", cfg.Testenv.Start); err != nil {
			return err
		}

		runErr := testenvStep(ctx, w, "run", cfg.Testenv.Run)

		// Stop regardless of the test outcome so the environment never
		// leaks; a stop failure only surfaces when the tests passed.
		stopErr := testenvStep(ctx, w, "stop", cfg.Testenv.Stop)
		if runErr != nil {
			return runErr
		}
		return stopErr
	},
}

func testenvStep(ctx context.Context, w *os.File, name, command string) error {
	if command == "" {
		return nil
	}

	start := time.Now()
	c := exec.CommandContext(ctx, "sh", "-c", command)
	c.Dir = cfg.Testenv.Dir
	c.Stdout = w
	c.Stderr = os.Stderr
	if verbose {
		fmt.Fprintf(os.Stderr, "exec: sh -c %q (in %s)\n", command, cfg.Testenv.Dir)
	}

	err := c.Run()
	status := "success"
	if err != nil {
		status = "failed"
	}
	output.PhaseResult(w, "testenv-"+name, status, command, time.Since(start))

	if err != nil {
		return fmt.Errorf("testenv %s: %w", name, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(testCmd)
}
