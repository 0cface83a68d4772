package generators

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/atinylittleshell/linecomp/internal/matches"
	"github.com/atinylittleshell/linecomp/internal/words"
	"github.com/samber/lo"
)

var shellBuiltins = []string{
	"alias", "cd", "echo", "exit", "export", "history", "pwd", "source", "type", "unset",
}

// CommandGenerator completes command names from PATH, builtins and aliases.
type CommandGenerator struct {
	// PathEnv returns the PATH value. Defaults to the process environment.
	PathEnv func() string

	// Aliases are offered alongside executables.
	Aliases []string
}

// NewCommandGenerator creates a CommandGenerator over the process PATH.
func NewCommandGenerator(aliases []string) *CommandGenerator {
	return &CommandGenerator{
		PathEnv: func() string { return os.Getenv("PATH") },
		Aliases: aliases,
	}
}

// Generate implements matches.Generator. It handles command words that do
// not look like paths.
func (g *CommandGenerator) Generate(lines words.LineStates, b *matches.Builder) bool {
	line := lines.Last()
	end := line.EndWord()
	if !end.CommandWord || strings.ContainsAny(line.EndWordText(), `/\`) {
		return false
	}

	b.AddAll(g.Aliases, matches.TypeAlias)
	b.AddAll(shellBuiltins, matches.TypeCommand)
	b.AddAll(g.executables(), matches.TypeCommand)
	return true
}

// WordBreakInfo implements matches.Generator.
func (g *CommandGenerator) WordBreakInfo(*words.LineState) words.BreakInfo {
	return words.BreakInfo{}
}

func (g *CommandGenerator) executables() []string {
	var names []string
	for _, dir := range filepath.SplitList(g.PathEnv()) {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil || !isExecutable(entry.Name(), info.Mode()) {
				continue
			}
			names = append(names, entry.Name())
		}
	}
	return lo.Uniq(names)
}

func isExecutable(name string, mode os.FileMode) bool {
	if runtime.GOOS == "windows" {
		ext := strings.ToLower(filepath.Ext(name))
		return ext == ".exe" || ext == ".bat" || ext == ".cmd" || ext == ".com"
	}
	return mode&0111 != 0
}
