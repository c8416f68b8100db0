// Package engine invokes the external container engine. The daemon, image
// storage, and registry protocol are its problem; we only shell out.
package engine

import (
	"context"
	"fmt"
	"strings"
)

// BuildSpec describes a single image build.
type BuildSpec struct {
	Dockerfile string
	Context    string
	Target     string // Dockerfile target stage
	Tags       []string
	BuildArgs  map[string]string
	CacheFrom  []string
}

// Engine is the set of container-engine operations the orchestrator needs.
type Engine interface {
	Build(ctx context.Context, spec BuildSpec) error
	Tag(ctx context.Context, src, dst string) error
	Push(ctx context.Context, ref string) error
}

// ExternalToolError reports a non-zero exit from the container engine.
type ExternalToolError struct {
	Op     string // build, tag, push
	Ref    string // primary image reference involved
	Output string // captured stderr, trimmed
	Err    error
}

func (e *ExternalToolError) Error() string {
	msg := fmt.Sprintf("docker %s %s: %v", e.Op, e.Ref, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		if i := strings.LastIndexByte(out, '\n'); i >= 0 {
			out = out[i+1:]
		}
		msg += ": " + out
	}
	return msg
}

func (e *ExternalToolError) Unwrap() error { return e.Err }
