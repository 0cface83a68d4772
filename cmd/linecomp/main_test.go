package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atinylittleshell/linecomp/internal/core"
	"github.com/atinylittleshell/linecomp/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
log_level: debug
autosuggest:
  strategy: completion
completion:
  specs:
    git: [checkout, cherry-pick, add]
`

// newTestApp builds an app whose data directory and config live in a
// temporary directory.
func newTestApp(t *testing.T, config string) *app {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("LINECOMP_HOME", dir)
	core.ResetPaths()
	t.Cleanup(core.ResetPaths)

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0644))

	a, err := newApp(appOptions{configPath: configPath})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestCompleteLine(t *testing.T) {
	a := newTestApp(t, testConfig)

	var out bytes.Buffer
	require.NoError(t, completeLine(a, "git ch", 6, false, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Contains(t, lines, "checkout")
	assert.Contains(t, lines, "cherry-pick")
	assert.NotContains(t, lines, "add")
}

func TestCompleteLine_Suggest(t *testing.T) {
	a := newTestApp(t, testConfig)

	var out bytes.Buffer
	require.NoError(t, completeLine(a, "git chec", 8, true, &out))
	assert.True(t, strings.HasPrefix(out.String(), "> git checkout\n"), out.String())
}

func TestCompleteLine_CursorInsideLine(t *testing.T) {
	a := newTestApp(t, testConfig)

	var out bytes.Buffer
	require.NoError(t, completeLine(a, "git a --force", 5, false, &out))
	assert.Contains(t, out.String(), "add")
}

func TestCompleteLine_BadCursor(t *testing.T) {
	a := newTestApp(t, testConfig)
	assert.Error(t, completeLine(a, "git", 10, false, &bytes.Buffer{}))
	assert.Error(t, completeLine(a, "git", -1, false, &bytes.Buffer{}))
}

func TestNewApp_InvalidConfigValueFallsBack(t *testing.T) {
	a := newTestApp(t, "match:\n  sort_dirs: sideways\n")
	assert.Equal(t, "with", a.cfg.Match.SortDirs)
}

func TestNewApp_HistoryDisabled(t *testing.T) {
	a := newTestApp(t, "history:\n  enable: false\n")
	assert.Nil(t, a.history)
}

type fakeHistory struct {
	entries []history.HistoryEntry
	err     error
}

func (f *fakeHistory) GetRecentEntries(directory string, limit int) ([]history.HistoryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var result []history.HistoryEntry
	for _, e := range f.entries {
		if directory == "" || e.Directory == directory {
			result = append(result, e)
		}
	}
	if len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

func TestPrintHistory(t *testing.T) {
	now := time.Now()
	h := &fakeHistory{entries: []history.HistoryEntry{
		{ID: 1, Command: "git status", Directory: "/src", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 2, Command: "make test", Directory: "/src", CreatedAt: now.Add(-time.Hour)},
		{ID: 3, Command: "git checkout main", Directory: "/tmp", CreatedAt: now},
	}}

	t.Run("recent", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printHistory(h, "", "", 2, &out))
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "make test")
		assert.Contains(t, lines[0], "1 hour ago")
		assert.Contains(t, lines[1], "git checkout main")
	})

	t.Run("directory", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printHistory(h, "/tmp", "", 10, &out))
		assert.NotContains(t, out.String(), "git status")
		assert.Contains(t, out.String(), "git checkout main")
	})

	t.Run("fuzzy", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printHistory(h, "", "gco", 10, &out))
		assert.Contains(t, out.String(), "git checkout main")
		assert.NotContains(t, out.String(), "make test")
	})

	t.Run("zero limit", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printHistory(h, "", "", 0, &out))
		assert.Empty(t, out.String())
	})

	t.Run("error", func(t *testing.T) {
		err := printHistory(&fakeHistory{err: errors.New("database is locked")}, "", "", 5, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestPrompt(t *testing.T) {
	t.Setenv("LINECOMP_HOME", t.TempDir())
	core.ResetPaths()
	t.Cleanup(core.ResetPaths)

	home := core.HomeDir()
	assert.Equal(t, "~ > ", prompt(home))
	assert.Equal(t, "~"+string(filepath.Separator)+"src > ", prompt(filepath.Join(home, "src")))

	other := filepath.Join(string(filepath.Separator), "definitely-not-home")
	assert.Equal(t, other+" > ", prompt(other))
}

func TestRunScript(t *testing.T) {
	a := newTestApp(t, testConfig)

	assert.NoError(t, runScript(context.Background(), a, strings.NewReader("true\n")))

	err := runScript(context.Background(), a, strings.NewReader("false\n"))
	var exit exitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, exitError(1), exit)
	assert.Equal(t, "exit status 1", exit.Error())
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, BUILD_VERSION+"\n", out.String())
}

func TestCompleteCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LINECOMP_HOME", dir)
	core.ResetPaths()
	t.Cleanup(core.ResetPaths)

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", configPath, "complete", "git che"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "checkout")
	assert.Contains(t, out.String(), "cherry-pick")
}
