package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcmc-sim/mcmc-sim/sim/model"
	"github.com/mcmc-sim/mcmc-sim/sim/sampler"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notebook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_RepositoryNotebook(t *testing.T) {
	path := "../notebook.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("notebook.yaml not found, skipping integration test")
	}

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, sampler.DefaultConfig(), cfg.Sampler)
	assert.Equal(t, 10, cfg.King.Islands)
	assert.Contains(t, cfg.Models, model.WildChainWeak)
}

func TestLoadConfig_RepositoryNotebookBuildsRuggedModel(t *testing.T) {
	path := "../notebook.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("notebook.yaml not found, skipping integration test")
	}

	// GIVEN the repository notebook
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.FileExists(t, cfg.Data)

	// WHEN the default model is built from its data path
	entry, err := model.Lookup(model.RuggedContinent)
	require.NoError(t, err)
	m, err := buildModel(entry, cfg)

	// THEN the dataset loads and the model has its five parameters
	require.NoError(t, err)
	assert.Equal(t, []string{"a[1]", "a[2]", "b[1]", "b[2]", "sigma"}, m.Params())
	assert.Equal(t, 10, m.Observations())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := loadConfig(path)
	require.NoError(t, err)

	want := defaultConfig()
	want.FitsDir = filepath.Join(filepath.Dir(path), want.FitsDir)
	want.Data = filepath.Join(filepath.Dir(path), want.Data)
	assert.Equal(t, want, cfg)
}

func TestLoadConfig_ResolvesPathsAgainstConfigDir(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere.csv")
	path := writeConfig(t, "fits_dir: out/fits\ndata: "+abs+"\n")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "out", "fits"), cfg.FitsDir)
	assert.Equal(t, abs, cfg.Data)
}

func TestLoadConfig_PartialOverride(t *testing.T) {
	// GIVEN a config that only sets the chain count
	cfg, err := loadConfig(writeConfig(t, "sampler:\n  chains: 2\n"))
	require.NoError(t, err)

	// THEN other sampler settings keep their defaults
	assert.Equal(t, 2, cfg.Sampler.Chains)
	assert.Equal(t, sampler.DefaultConfig().Iter, cfg.Sampler.Iter)
	assert.Equal(t, "fits", filepath.Base(cfg.FitsDir))
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown top-level key", "fit_dir: typo\n"},
		{"unknown sampler key", "sampler:\n  chain: 2\n"},
		{"unknown model", "models:\n  nope:\n    priors: {}\n"},
		{"unknown prior type", "models:\n  wild-chain-weak:\n    priors:\n      alpha: {type: cauchy}\n"},
		{"missing prior param", "models:\n  wild-chain-weak:\n    priors:\n      alpha: {type: normal, params: {mu: 0}}\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}
