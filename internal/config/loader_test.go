package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Autosuggest.Enable)
	assert.True(t, cfg.Autosuggest.Async)
	assert.Equal(t, []string{"history", "completion"}, cfg.Strategies())
	assert.Equal(t, "with", cfg.Match.SortDirs)
	assert.NotNil(t, cfg.Completion.Specs)
}

func TestLoader_LoadFromString(t *testing.T) {
	loader := NewLoader(zaptest.NewLogger(t))

	result, err := loader.LoadFromString(`
log_level: DEBUG
autosuggest:
  async: false
  strategy: completion
match:
  substring: false
  sort_dirs: before
completion:
  specs:
    git: [checkout, cherry-pick, clone]
metrics:
  addr: "127.0.0.1:9101"
`)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	cfg := result.Config
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Autosuggest.Enable, "unset values keep their defaults")
	assert.False(t, cfg.Autosuggest.Async)
	assert.Equal(t, []string{"completion"}, cfg.Strategies())
	assert.False(t, cfg.Match.Substring)
	assert.True(t, cfg.Match.Wild)
	assert.Equal(t, "before", cfg.Match.SortDirs)
	assert.Equal(t, []string{"checkout", "cherry-pick", "clone"}, cfg.Completion.Specs["git"])
	assert.NotNil(t, cfg.Completion.Functions)
	assert.Equal(t, "127.0.0.1:9101", cfg.Metrics.Addr)
}

func TestLoader_InvalidValuesFallBack(t *testing.T) {
	loader := NewLoader(zaptest.NewLogger(t))

	result, err := loader.LoadFromString(`
log_level: loud
autosuggest:
  strategy: history magic
match:
  sort_dirs: sideways
`)
	require.NoError(t, err)
	assert.Len(t, result.Errors, 3)
	assert.Equal(t, "info", result.Config.LogLevel)
	assert.Equal(t, "history completion", result.Config.Autosuggest.Strategy)
	assert.Equal(t, "with", result.Config.Match.SortDirs)
}

func TestLoader_ParseError(t *testing.T) {
	loader := NewLoader(nil)

	_, err := loader.LoadFromString("autosuggest: [unclosed")
	assert.Error(t, err)
}

func TestLoader_LoadFromFile(t *testing.T) {
	loader := NewLoader(zaptest.NewLogger(t))
	dir := t.TempDir()

	result, err := loader.LoadFromFile(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), result.Config)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  enable: false\n"), 0644))

	result, err = loader.LoadFromFile(path)
	require.NoError(t, err)
	assert.False(t, result.Config.History.Enable)

	_, err = loader.LoadFromFile(dir)
	assert.Error(t, err)
}
