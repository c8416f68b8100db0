package plan

import (
	"fmt"
	"strings"

	"github.com/nedforge/nedforge/src/variant"
)

// Verbs in longest-first order so "push-release-<variant>" is not
// misparsed as verb "push" with variant "release-<variant>".
var verbs = []string{"push-release", "tag-release", "build", "push"}

// Verbs returns the known top-level verbs.
func Verbs() []string {
	return []string{"build", "push", "tag-release", "push-release"}
}

// UsageError reports a target string whose verb is not recognized.
type UsageError struct {
	Target string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("unknown target %q (verbs: %s)", e.Target, strings.Join(Verbs(), ", "))
}

// Target is a parsed request: a verb, optionally scoped to one variant.
type Target struct {
	Verb    string
	Variant string // empty = whole matrix
}

func (t Target) String() string {
	if t.Variant == "" {
		return t.Verb
	}
	return t.Verb + "-" + t.Variant
}

// ParseTarget parses a make-style target string of the form <verb> or
// <verb>-<variant>. An unknown verb is a *UsageError; a known verb with an
// unknown variant suffix is a *variant.NotFoundError.
func ParseTarget(s string, variants []variant.Variant) (Target, error) {
	for _, verb := range verbs {
		if s == verb {
			return Target{Verb: verb}, nil
		}
		if strings.HasPrefix(s, verb+"-") {
			name := strings.TrimPrefix(s, verb+"-")
			v, err := variant.Find(variants, name)
			if err != nil {
				return Target{}, err
			}
			return Target{Verb: verb, Variant: v.Name}, nil
		}
	}
	return Target{}, &UsageError{Target: s}
}
