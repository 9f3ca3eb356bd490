package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 24, cfg.Model.MaxIterations)
	assert.Equal(t, 60, cfg.Memory.Limit)
	assert.Equal(t, 16000, cfg.Tools.MaxOutputChars)
	assert.False(t, cfg.Diff.AutoAccept)
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Model.Name, cfg.Model.Name)
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"model:\n  provider: ollama\n  name: qwen2.5-coder\n  max_iterations: 8\nmemory:\n  limit: 10\n"), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.Model.Provider)
	assert.Equal(t, "qwen2.5-coder", cfg.Model.Name)
	assert.Equal(t, 8, cfg.Model.MaxIterations)
	assert.Equal(t, 10, cfg.Memory.Limit)
	// Untouched sections keep defaults.
	assert.Equal(t, 16000, cfg.Tools.MaxOutputChars)
}

func TestLoadFromRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  provider: acme\n"), 0644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GOZEN_PROVIDER", "ollama")
	t.Setenv("GOZEN_MAX_ITERATIONS", "5")
	t.Setenv("GOZEN_AUTO_ACCEPT", "true")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.Model.Provider)
	assert.Equal(t, 5, cfg.Model.MaxIterations)
	assert.True(t, cfg.Diff.AutoAccept)
}
