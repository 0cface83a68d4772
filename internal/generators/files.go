package generators

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/atinylittleshell/linecomp/internal/matches"
	"github.com/atinylittleshell/linecomp/internal/words"
	"go.uber.org/zap"
)

// FileGenerator completes file system paths. Candidates carry the directory
// part of the typed word so they can replace the word whole.
type FileGenerator struct {
	// Dir resolves relative paths. Defaults to the process working
	// directory.
	Dir    func() string
	Home   string
	logger *zap.Logger
}

// NewFileGenerator creates a FileGenerator.
func NewFileGenerator(logger *zap.Logger) *FileGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	home, _ := os.UserHomeDir()
	return &FileGenerator{
		Dir: func() string {
			wd, _ := os.Getwd()
			return wd
		},
		Home:   home,
		logger: logger,
	}
}

// Generate implements matches.Generator. It handles every word.
func (g *FileGenerator) Generate(lines words.LineStates, b *matches.Builder) bool {
	word := lines.Last().EndWordText()

	sep := lastSeparator(word)
	prefix := word[:sep+1]
	name := word[sep+1:]

	dir := g.resolve(prefix)
	entries, err := os.ReadDir(dir)
	if err != nil {
		g.logger.Debug("cannot list directory", zap.String("dir", dir), zap.Error(err))
		return true
	}

	showHidden := strings.HasPrefix(name, ".")
	for _, entry := range entries {
		n := entry.Name()
		if strings.HasPrefix(n, ".") && !showHidden {
			continue
		}
		if isDir(dir, entry) {
			b.Add(g.display(prefix)+n+"/", matches.TypeDir)
		} else {
			b.Add(g.display(prefix)+n, matches.TypeFile)
		}
	}
	return true
}

// WordBreakInfo implements matches.Generator. The directory part of the word
// is kept so matches are regenerated only when it changes.
func (g *FileGenerator) WordBreakInfo(line *words.LineState) words.BreakInfo {
	word := line.EndWordText()
	return words.BreakInfo{Keep: uint(lastSeparator(word) + 1)}
}

func (g *FileGenerator) resolve(prefix string) string {
	p := g.expandHome(prefix)
	if p == "" {
		p = "."
	}
	if !filepath.IsAbs(p) && g.Dir != nil {
		p = filepath.Join(g.Dir(), p)
	}
	return p
}

// display returns the directory part as candidates should show it. A leading
// "~" is expanded so the match is a usable path.
func (g *FileGenerator) display(prefix string) string {
	return g.expandHome(prefix)
}

func (g *FileGenerator) expandHome(p string) string {
	if g.Home == "" {
		return p
	}
	if p == "~" {
		return g.Home
	}
	if strings.HasPrefix(p, "~/") {
		return g.Home + p[1:]
	}
	return p
}

func isDir(dir string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.IsDir()
}

func lastSeparator(word string) int {
	return strings.LastIndexAny(word, `/\`)
}
