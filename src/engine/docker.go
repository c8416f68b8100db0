package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Docker runs the docker CLI. Stdout and Stderr default to the process
// streams; callers that want structured output redirect them.
type Docker struct {
	Bin     string
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewDocker creates a Docker runner with default output writers.
func NewDocker(verbose bool) *Docker {
	return &Docker{
		Bin:     "docker",
		Verbose: verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Build executes docker build for the given spec.
func (d *Docker) Build(ctx context.Context, spec BuildSpec) error {
	ref := ""
	if len(spec.Tags) > 0 {
		ref = spec.Tags[0]
	}
	return d.run(ctx, "build", ref, buildArgs(spec)...)
}

// Tag points dst at src.
func (d *Docker) Tag(ctx context.Context, src, dst string) error {
	return d.run(ctx, "tag", src, "tag", src, dst)
}

// Push uploads ref to its registry.
func (d *Docker) Push(ctx context.Context, ref string) error {
	return d.run(ctx, "push", ref, "push", ref)
}

func (d *Docker) run(ctx context.Context, op, ref string, args ...string) error {
	bin := d.Bin
	if bin == "" {
		bin = "docker"
	}

	if d.Verbose {
		fmt.Fprintf(d.Stderr, "exec: %s %s\n", bin, strings.Join(args, " "))
	}

	// Stderr is mirrored into a buffer so failures carry the tool's own
	// message even when output is being discarded.
	var errBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = d.Stdout
	cmd.Stderr = io.MultiWriter(d.Stderr, &errBuf)

	if err := cmd.Run(); err != nil {
		return &ExternalToolError{Op: op, Ref: ref, Output: errBuf.String(), Err: err}
	}
	return nil
}

// buildArgs constructs the docker build argument list. Build args are
// emitted in sorted key order so command lines are reproducible.
func buildArgs(spec BuildSpec) []string {
	args := []string{"build"}

	if spec.Dockerfile != "" {
		args = append(args, "--file", spec.Dockerfile)
	}
	if spec.Target != "" {
		args = append(args, "--target", spec.Target)
	}

	keys := make([]string, 0, len(spec.BuildArgs))
	for k := range spec.BuildArgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--build-arg", fmt.Sprintf("%s=%s", k, spec.BuildArgs[k]))
	}

	for _, ref := range spec.CacheFrom {
		args = append(args, "--cache-from", ref)
	}
	for _, tag := range spec.Tags {
		args = append(args, "--tag", tag)
	}

	dir := spec.Context
	if dir == "" {
		dir = "."
	}
	return append(args, dir)
}
