package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nedforge/nedforge/src/engine"
	"github.com/nedforge/nedforge/src/gitver"
	"github.com/nedforge/nedforge/src/output"
	"github.com/nedforge/nedforge/src/plan"
	"github.com/nedforge/nedforge/src/resolve"
	"github.com/nedforge/nedforge/src/runner"
	"github.com/nedforge/nedforge/src/tags"
	"github.com/nedforge/nedforge/src/variant"
)

var (
	dryRun  bool
	workers int
)

// addPlanFlags registers the flags shared by every plan-executing command.
func addPlanFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the plan without executing")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel operations (default: number of CPUs)")
}

// resolveInputs assembles everything the planner needs: discovered
// variants, the tag policy result, and resolved dependency-image args.
func resolveInputs(ctx context.Context) (plan.Inputs, error) {
	variants, err := variant.Discover(cfg.PackagesDir, cfg.MarkerFile)
	if err != nil {
		return plan.Inputs{}, err
	}

	policy, err := tagPolicy()
	if err != nil {
		return plan.Inputs{}, err
	}

	args, err := dependencyArgs(ctx)
	if err != nil {
		return plan.Inputs{}, err
	}

	return plan.Inputs{
		Repo:      cfg.ImageRepo,
		TagSet:    policy.Resolve(),
		Variants:  variants,
		BuildArgs: args,
	}, nil
}

// tagPolicy builds the tag policy from config, falling back to git
// detection for anything the environment didn't pin.
func tagPolicy() (tags.Policy, error) {
	p := tags.Policy{
		DockerTag:  cfg.DockerTag,
		MajorMinor: cfg.MajorMinor,
		CI:         cfg.CI,
	}
	if cfg.TipOfTrain != nil {
		p.TipOfTrain = *cfg.TipOfTrain
	}

	if p.DockerTag != "" && p.MajorMinor != "" && cfg.TipOfTrain != nil {
		return p, nil
	}

	info, err := gitver.Detect(".")
	if err != nil {
		if p.DockerTag != "" {
			// Tag pinned by env/config; git is optional then.
			return p, nil
		}
		return p, fmt.Errorf("docker tag not configured and git detection failed: %w", err)
	}
	if p.DockerTag == "" {
		p.DockerTag = info.DockerTag()
	}
	if p.MajorMinor == "" {
		p.MajorMinor = info.MajorMinor()
	}
	if cfg.TipOfTrain == nil {
		p.TipOfTrain = info.TipOfTrain()
	}
	return p, nil
}

// dependencyArgs merges static build args with references resolved from the
// include directory. Resolved references win over static values. A missing
// include directory just means no dependency images.
func dependencyArgs(ctx context.Context) (map[string]string, error) {
	args := make(map[string]string, len(cfg.BuildArgs))
	for k, v := range cfg.BuildArgs {
		args[k] = v
	}

	dir := &resolve.Dir{Path: cfg.IncludeDir}
	names, err := dir.Names()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return args, nil
		}
		return nil, err
	}

	resolved, err := resolve.BuildArgs(ctx, dir, names)
	if err != nil {
		return nil, err
	}
	for k, v := range resolved {
		args[k] = v
	}
	return args, nil
}

// runTarget plans and executes one target, rendering progress sections.
func runTarget(ctx context.Context, t plan.Target) error {
	w := os.Stdout
	color := output.UseColor()
	start := time.Now()

	in, err := resolveInputs(ctx)
	if err != nil {
		return err
	}

	p, err := plan.Build(t, in)
	if err != nil {
		return err
	}

	output.SectionStartCollapsed(w, "nf_plan", "Plan")
	planSec := output.NewSection(w, "Plan "+t.String(), 0, color)
	planSec.Row("%-16s%s", "tag", in.TagSet.Primary)
	if len(in.TagSet.Extra) > 0 {
		planSec.Row("%-16s%v", "floating", in.TagSet.Extra)
	}
	planSec.Row("%-16s%d variant(s), %d operation(s)", "matrix", len(in.Variants), len(p.Ops))
	planSec.Close()
	output.SectionEnd(w, "nf_plan")

	if dryRun {
		for _, op := range p.Ops {
			fmt.Fprintf(w, "  %s\n", op)
		}
		return nil
	}

	docker := engine.NewDocker(verbose)
	if !verbose {
		docker.Stdout = io.Discard
		docker.Stderr = io.Discard
	}

	r := &runner.Runner{
		Engine: docker,
		Build: runner.BuildOptions{
			Dockerfile: cfg.Dockerfile,
			Context:    cfg.Context,
			CacheFrom:  cfg.CacheFrom,
		},
		Workers: pickWorkers(),
	}

	output.SectionStart(w, "nf_run", "Run")
	results, err := r.Run(ctx, p)
	sec := output.NewSection(w, "Run", time.Since(start), color)
	for _, res := range results {
		icon := output.StatusIcon(string(res.Status), color)
		elapsed := ""
		if res.Status != runner.StatusSkipped {
			elapsed = res.Duration.Round(time.Millisecond).String()
		}
		sec.Row("%s %-52s %s", icon, res.Op, output.Dimmed(elapsed, color))
	}
	sec.Close()
	output.SectionEnd(w, "nf_run")

	if err != nil {
		var agg *runner.AggregateError
		if errors.As(err, &agg) {
			for _, f := range agg.Failures {
				fmt.Fprintf(os.Stderr, "failed: %s: %v\n", f.Op, f.Err)
			}
			return fmt.Errorf("%s: %d operation(s) failed", t, len(agg.Failures))
		}
		return err
	}
	return nil
}

func pickWorkers() int {
	if workers > 0 {
		return workers
	}
	return cfg.Workers
}
