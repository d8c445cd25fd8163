package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/mcmc-sim/mcmc-sim/sim"
	"github.com/mcmc-sim/mcmc-sim/sim/model"
	"github.com/mcmc-sim/mcmc-sim/sim/prior"
	"github.com/mcmc-sim/mcmc-sim/sim/sampler"
)

const defaultConfigPath = "notebook.yaml"

// defaultDataPath is the ruggedness sample shipped with the repository.
const defaultDataPath = "sim/model/testdata/rugged_sample.csv"

// KingConfig holds the defaults of the island walk.
type KingConfig struct {
	Islands int   `yaml:"islands"`
	Start   int   `yaml:"start"`
	Steps   int   `yaml:"steps"`
	Seed    int64 `yaml:"seed"`
}

// ModelConfig holds per-model overrides.
type ModelConfig struct {
	Priors map[string]prior.DistSpec `yaml:"priors"`
}

// Config represents the full notebook.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	FitsDir string                 `yaml:"fits_dir"`
	Data    string                 `yaml:"data"`
	Sampler sampler.Config         `yaml:"sampler"`
	King    KingConfig             `yaml:"king"`
	Models  map[string]ModelConfig `yaml:"models"`
}

func defaultConfig() Config {
	return Config{
		FitsDir: "fits",
		Data:    defaultDataPath,
		Sampler: sampler.DefaultConfig(),
		King:    KingConfig{Islands: sim.DefaultIslands, Start: sim.DefaultIslands, Steps: 100000, Seed: 42},
	}
}

// loadConfig parses a notebook configuration over the built-in defaults.
// A missing file yields the defaults; unknown keys are an error. Relative
// fits_dir and data paths are resolved against the file's directory.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logrus.Debugf("No config at %s, using built-in defaults", path)
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	// Parse YAML with strict field checking: typos must cause errors
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	for name, mc := range cfg.Models {
		if _, err := model.Lookup(name); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
		for param, spec := range mc.Priors {
			if _, err := prior.NewPrior(spec); err != nil {
				return Config{}, fmt.Errorf("model %s, prior for %s: %w", name, param, err)
			}
		}
	}
	dir := filepath.Dir(path)
	cfg.FitsDir = resolvePath(dir, cfg.FitsDir)
	cfg.Data = resolvePath(dir, cfg.Data)
	return cfg, nil
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// mustLoadConfig is loadConfig for command handlers.
func mustLoadConfig() Config {
	cfg, err := loadConfig(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
