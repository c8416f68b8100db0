// Package variant discovers NED package variants from a packages tree and
// provides version-aware ordering over them.
package variant

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"
)

// DefaultMarkerFile is the file whose presence marks a variant directory.
const DefaultMarkerFile = "package-meta-data.xml"

// Variant is a named package flavor built into its own set of images.
// It is immutable once discovered.
type Variant struct {
	Name     string // directory name, e.g. "ios-6.77"
	Family   string // prefix before the version suffix, e.g. "ios"
	Version  *masterminds.Version // nil when the name carries no parseable version
	Dir      string // absolute path to the variant directory
	Manifest *Manifest // optional ned.toml, nil when absent
}

// NotFoundError reports a missing variant or an empty discovery result.
type NotFoundError struct {
	Name string // requested variant, empty for "no variants at all"
	Dir  string // packages directory that was scanned
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("no variants found under %s", e.Dir)
	}
	return fmt.Sprintf("unknown variant %q (scanned %s)", e.Name, e.Dir)
}

// Discover scans packagesDir for immediate subdirectories containing
// src/<markerFile> and returns them sorted ascending by version-aware order.
// An empty result is not an error; callers that need at least one variant
// use Latest.
func Discover(packagesDir, markerFile string) ([]Variant, error) {
	if markerFile == "" {
		markerFile = DefaultMarkerFile
	}

	entries, err := os.ReadDir(packagesDir)
	if err != nil {
		return nil, fmt.Errorf("reading packages dir: %w", err)
	}

	var variants []Variant
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(packagesDir, e.Name())
		marker := filepath.Join(dir, "src", markerFile)
		if _, err := os.Stat(marker); err != nil {
			continue
		}

		v := parseName(e.Name())
		v.Dir = dir

		m, err := LoadManifest(dir)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", e.Name(), err)
		}
		v.Manifest = m
		if m != nil && m.Skip {
			continue
		}

		variants = append(variants, v)
	}

	sort.Slice(variants, func(i, j int) bool {
		return Less(variants[i], variants[j])
	})
	return variants, nil
}

// parseName splits a directory name at its last hyphen into family and
// version. Names without a parseable version sort below all versioned ones.
func parseName(name string) Variant {
	v := Variant{Name: name, Family: name}
	if i := strings.LastIndex(name, "-"); i > 0 {
		if ver, err := masterminds.NewVersion(name[i+1:]); err == nil {
			v.Family = name[:i]
			v.Version = ver
		}
	}
	return v
}

// Less orders variants primarily by version (numeric segment comparison, so
// "10.2" sorts above "9.10"), then by full name. Version takes precedence
// over family so that "latest" is selected across families the way the
// source tree's global sort behaves, while staying version-aware.
func Less(a, b Variant) bool {
	switch {
	case a.Version == nil && b.Version != nil:
		return true
	case a.Version != nil && b.Version == nil:
		return false
	case a.Version != nil && b.Version != nil:
		if c := a.Version.Compare(b.Version); c != 0 {
			return c < 0
		}
	}
	return a.Name < b.Name
}

// Latest returns the maximum variant under version-aware ordering.
func Latest(variants []Variant) (Variant, error) {
	if len(variants) == 0 {
		return Variant{}, &NotFoundError{}
	}
	max := variants[0]
	for _, v := range variants[1:] {
		if Less(max, v) {
			max = v
		}
	}
	return max, nil
}

// Find returns the variant with the given name.
func Find(variants []Variant, name string) (Variant, error) {
	for _, v := range variants {
		if v.Name == name {
			return v, nil
		}
	}
	return Variant{}, &NotFoundError{Name: name}
}

// Names returns variant names in the given order.
func Names(variants []Variant) []string {
	names := make([]string, 0, len(variants))
	for _, v := range variants {
		names = append(names, v.Name)
	}
	return names
}
