package variant

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const manifestFile = "ned.toml"

// Manifest is the optional per-variant ned.toml file. Everything in it is
// advisory; a variant without one builds with defaults.
type Manifest struct {
	Display   string            `toml:"display"`    // human-readable name for listings
	Skip      bool              `toml:"skip"`       // exclude from discovery
	BuildArgs map[string]string `toml:"build_args"` // extra --build-arg values for this variant
}

// LoadManifest reads <dir>/ned.toml. A missing file returns (nil, nil).
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
