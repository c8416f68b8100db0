// Package resolve maps dependency-image names to registry references.
//
// The compatibility implementation reads an include directory where each
// file holds a shell snippet that prints the reference, matching the build
// trees this tool orchestrates. Callers that pin references (tests, config)
// use Static.
package resolve

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Resolver resolves a dependency-image name to a full image reference.
type Resolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// Dir resolves names by evaluating <Path>/<name> with the shell and
// trimming its stdout.
type Dir struct {
	Path  string
	Shell string // defaults to "sh"
}

func (d *Dir) Resolve(ctx context.Context, name string) (string, error) {
	snippet, err := os.ReadFile(filepath.Join(d.Path, name))
	if err != nil {
		return "", fmt.Errorf("include %s: %w", name, err)
	}

	shell := d.Shell
	if shell == "" {
		shell = "sh"
	}
	out, err := exec.CommandContext(ctx, shell, "-c", string(snippet)).Output()
	if err != nil {
		return "", fmt.Errorf("evaluating include %s: %w", name, err)
	}

	ref := strings.TrimSpace(string(out))
	if ref == "" {
		return "", fmt.Errorf("include %s produced an empty reference", name)
	}
	return ref, nil
}

// Names lists the resolvable names (the include files), sorted.
func (d *Dir) Names() ([]string, error) {
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Static is a fixed name→reference table.
type Static map[string]string

func (s Static) Resolve(_ context.Context, name string) (string, error) {
	ref, ok := s[name]
	if !ok {
		return "", fmt.Errorf("include %s: %w", name, os.ErrNotExist)
	}
	return ref, nil
}

// BuildArgs resolves every name through r into an --build-arg map, keyed by
// the upper-cased name with dashes replaced ("nso-base" → "NSO_BASE").
func BuildArgs(ctx context.Context, r Resolver, names []string) (map[string]string, error) {
	args := make(map[string]string, len(names))
	for _, name := range names {
		ref, err := r.Resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		args[ArgName(name)] = ref
	}
	return args, nil
}

// ArgName converts an include name to its build-arg key.
func ArgName(name string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}
