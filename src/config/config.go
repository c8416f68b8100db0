// Package config loads orchestrator configuration from YAML and overlays
// the environment-derived settings CI pipelines inject.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".nedforge.yml"

// Config is the top-level nedforge configuration.
type Config struct {
	PackagesDir string            `yaml:"packages_dir"` // variant tree root
	IncludeDir  string            `yaml:"include_dir"`  // dependency-image include files
	MarkerFile  string            `yaml:"marker_file"`  // variant marker inside <variant>/src
	ImageRepo   string            `yaml:"image_repo"`   // image name prefix, e.g. registry/nso
	Dockerfile  string            `yaml:"dockerfile"`
	Context     string            `yaml:"context"`
	DockerTag   string            `yaml:"docker_tag"`  // empty = detect from git
	MajorMinor  string            `yaml:"major_minor"` // empty = detect from git
	TipOfTrain  *bool             `yaml:"tip_of_train"`
	Workers     int               `yaml:"workers"` // 0 = number of CPUs
	CacheFrom   []string          `yaml:"cache_from"`
	BuildArgs   map[string]string `yaml:"build_args"` // static args merged under resolved includes
	Testenv     TestenvConfig     `yaml:"testenv"`

	CI bool `yaml:"-"` // from the environment only
}

// TestenvConfig describes the external test environment commands. Each
// entry is run through the shell in Dir.
type TestenvConfig struct {
	Dir   string `yaml:"dir"`
	Start string `yaml:"start"`
	Run   string `yaml:"run"`
	Stop  string `yaml:"stop"`
}

// Load reads configuration from a YAML file. If path is empty, it tries
// the default file. Returns defaults if the file doesn't exist. The
// environment overlay is applied in both cases.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = defaultConfigFile
	}

	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		PackagesDir: "packages",
		IncludeDir:  "includes",
		Dockerfile:  "Dockerfile",
		Context:     ".",
		ImageRepo:   "nedforge",
		Testenv: TestenvConfig{
			Dir:   "testenv",
			Start: "docker compose up --detach --wait",
			Run:   "docker compose run --rm test",
			Stop:  "docker compose down --volumes",
		},
	}
}

// applyEnv overlays recognized environment variables. Env wins over file
// values so pipelines can steer a checked-in config.
func (c *Config) applyEnv() {
	c.CI = os.Getenv("CI") == "true"

	if tag := os.Getenv("NED_DOCKER_TAG"); tag != "" {
		c.DockerTag = tag
	}
	if mm := os.Getenv("NED_MAJOR_MINOR"); mm != "" {
		c.MajorMinor = mm
	}
	if tip, ok := os.LookupEnv("NED_TIP_OF_TRAIN"); ok {
		b := tip == "true" || tip == "1"
		c.TipOfTrain = &b
	}
	if w := os.Getenv("NEDFORGE_WORKERS"); w != "" {
		if n, err := strconv.Atoi(w); err == nil && n > 0 {
			c.Workers = n
		}
	}
}
