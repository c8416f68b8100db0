package plan

import "fmt"

// Kind is the container-engine action an operation performs.
type Kind string

const (
	KindBuild Kind = "build"
	KindTag   Kind = "tag"
	KindPush  Kind = "push"
)

// Operation is one container-engine invocation in a plan.
//
// For KindBuild, Image is the primary resulting reference and Tags holds
// every reference applied at build time. For KindTag, Image is the source
// reference and Tags the destinations. For KindPush, Image is the single
// reference pushed and Tags is empty.
type Operation struct {
	ID        string
	Kind      Kind
	Stage     Stage
	Variant   string // empty for variant-independent ops (incl. the all-variant package image)
	Image     string
	Tags      []string
	BuildArgs map[string]string
	Target    string   // Dockerfile target stage, build ops only
	Deps      []string // IDs of operations that must succeed first
}

// String renders the operation for error reports and dry-run listings.
func (op Operation) String() string {
	switch op.Kind {
	case KindTag:
		return fmt.Sprintf("tag %s -> %v", op.Image, op.Tags)
	case KindPush:
		return fmt.Sprintf("push %s", op.Image)
	default:
		return fmt.Sprintf("build %s", op.Image)
	}
}

// Plan is a topologically ordered list of operations: every operation
// appears after all of its dependencies.
type Plan struct {
	Target string
	Ops    []Operation
}

// ByID returns the operation with the given ID.
func (p *Plan) ByID(id string) (Operation, bool) {
	for _, op := range p.Ops {
		if op.ID == id {
			return op, true
		}
	}
	return Operation{}, false
}

// Validate checks topological ordering and dependency resolution. Plans
// produced by Build always pass; this guards hand-assembled plans in tests
// and future callers.
func (p *Plan) Validate() error {
	seen := make(map[string]bool, len(p.Ops))
	for _, op := range p.Ops {
		if seen[op.ID] {
			return fmt.Errorf("duplicate operation id %q", op.ID)
		}
		for _, dep := range op.Deps {
			if !seen[dep] {
				return fmt.Errorf("operation %q depends on %q which does not precede it", op.ID, dep)
			}
		}
		seen[op.ID] = true
	}
	return nil
}
