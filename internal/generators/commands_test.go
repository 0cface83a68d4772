package generators

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/atinylittleshell/linecomp/internal/matches"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandGenerator(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix permission bits")
	}

	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "gitx"), nil, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "notes.txt"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dirB, "gitx"), nil, 0755))
	require.NoError(t, os.Mkdir(filepath.Join(dirB, "gitdir"), 0755))

	g := NewCommandGenerator([]string{"gst"})
	g.PathEnv = func() string {
		return dirA + string(os.PathListSeparator) + dirB + string(os.PathListSeparator)
	}

	s, ok := generate(g, "gi")
	require.True(t, ok)

	types := typesByMatch(s)
	assert.Equal(t, matches.TypeCommand, types["gitx"])
	assert.Equal(t, matches.TypeAlias, types["gst"])
	assert.Equal(t, matches.TypeCommand, types["cd"])
	assert.NotContains(t, types, "notes.txt")
	assert.NotContains(t, types, "gitdir")
	assert.Len(t, s.Candidates(), len(shellBuiltins)+2)
}

func TestCommandGenerator_Declines(t *testing.T) {
	g := NewCommandGenerator(nil)

	_, ok := generate(g, "git chec")
	assert.False(t, ok, "argument words are not commands")

	_, ok = generate(g, "./scr")
	assert.False(t, ok, "paths are left to the file generator")
}
