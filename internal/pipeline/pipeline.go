// Package pipeline runs the stages that turn generator output into the
// ordered, selected candidate list of a matches.Store.
//
// Stages are independent: Generate is the only stage that calls generators,
// and Restrict, Select and Sort work purely on what the store already holds.
package pipeline

import (
	"os"
	"slices"
	"strings"

	"github.com/atinylittleshell/linecomp/internal/matches"
	"github.com/atinylittleshell/linecomp/internal/words"
	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// DirPlacement controls where directories sort relative to other matches.
type DirPlacement int

const (
	DirsWith DirPlacement = iota
	DirsBefore
	DirsAfter
)

// ParseDirPlacement converts a setting value to a DirPlacement. Unknown
// values sort directories with everything else.
func ParseDirPlacement(s string) DirPlacement {
	switch strings.ToLower(s) {
	case "before":
		return DirsBefore
	case "after":
		return DirsAfter
	default:
		return DirsWith
	}
}

const quoteChars = `"'`

// Options holds configuration for a Pipeline.
type Options struct {
	// Substring falls back to matching the needle anywhere in a candidate
	// when nothing matches it as a prefix.
	Substring bool

	// TildeExpansion expands a leading "~" in the needle.
	TildeExpansion bool

	// SortDirs places directories relative to other matches.
	SortDirs DirPlacement

	// Env is used for tilde expansion. Defaults to the process environment.
	Env expand.Environ

	// Logger for debug output.
	Logger *zap.Logger
}

// Pipeline runs stages against a single store.
type Pipeline struct {
	store    *matches.Store
	opts     Options
	collator *collate.Collator
	logger   *zap.Logger
}

// New creates a Pipeline operating on store.
func New(store *matches.Store, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Env == nil {
		opts.Env = expand.ListEnviron(os.Environ()...)
	}

	return &Pipeline{
		store:    store,
		opts:     opts,
		collator: collate.New(language.Und, collate.IgnoreCase, collate.Numeric),
		logger:   logger,
	}
}

// Store returns the store the pipeline operates on.
func (p *Pipeline) Store() *matches.Store {
	return p.store
}

// Reset empties the store.
func (p *Pipeline) Reset() {
	p.store.Reset()
}

// Generate fills the store from g. A generator that declines the line leaves
// the store empty.
func (p *Pipeline) Generate(lines words.LineStates, g matches.Generator) {
	p.store.Reset()

	end := lines.Last().EndWord()
	p.store.SetWordBreakPosition(int(end.Offset))

	if g == nil {
		return
	}

	b := matches.NewBuilder(p.store)
	if !g.Generate(lines, b) {
		wbp := p.store.WordBreakPosition()
		p.store.Reset()
		p.store.SetWordBreakPosition(wbp)
		p.logger.Debug("no generator handled line", zap.String("line", lines.Last().Line))
		return
	}

	p.logger.Debug("generated matches",
		zap.Int("count", p.store.InfoCount()),
		zap.Bool("volatile", p.store.IsVolatile()),
	)
}

// Restrict permanently drops candidates that do not match needle as a
// wildcard pattern and returns needle truncated at its first wildcard.
func (p *Pipeline) Restrict(needle string) string {
	needle = p.expandTilde(needle)

	pattern := needle
	if needle != "~" && !strings.ContainsAny(needle, "*?") {
		pattern += "*"
	}

	infos := p.store.Infos()
	n := markSelected(infos, wildMatcher(pattern))
	if n == 0 && p.canTrySubstring(needle) {
		n = markSelected(infos, wildMatcher(substringPattern(needle)))
	}

	kept := slices.DeleteFunc(infos, func(info matches.Info) bool {
		return !info.Selected
	})
	p.store.SetInfos(kept)
	p.store.SetCount(len(kept))

	p.logger.Debug("restricted matches",
		zap.String("pattern", pattern),
		zap.Int("kept", len(kept)),
	)

	if i := strings.IndexAny(needle, "*?"); i >= 0 {
		needle = needle[:i]
	}
	return needle
}

// Select marks the candidates matching needle and moves them to the front
// of the store.
func (p *Pipeline) Select(needle string, kind matches.Kind) {
	needle = strings.TrimRight(needle, quoteChars)
	needle = p.expandTilde(needle)

	infos := p.store.Infos()

	var match func(string) bool
	switch kind {
	case matches.KindWild:
		match = wildMatcher(needle + "*")
	default:
		match = prefixMatcher(needle)
	}

	n := markSelected(infos, match)
	if n == 0 && p.canTrySubstring(needle) {
		n = markSelected(infos, substringMatcher(needle))
	}

	// Stable partition keeps ordinals meaningful within both halves.
	partitioned := make([]matches.Info, 0, len(infos))
	for _, info := range infos {
		if info.Selected {
			partitioned = append(partitioned, info)
		}
	}
	for _, info := range infos {
		if !info.Selected {
			partitioned = append(partitioned, info)
		}
	}

	p.store.SetInfos(partitioned)
	p.store.SetCount(n)
	p.store.SetKind(kind)
}

// Sort orders the selected matches, then the unselected remainder, so the
// whole candidate list is deterministic.
func (p *Pipeline) Sort() {
	infos := p.store.Infos()
	n := p.store.Len()

	cmp := p.compare
	if p.store.IsNoSort() {
		cmp = compareOrdinal
	}

	slices.SortStableFunc(infos[:n], cmp)
	slices.SortStableFunc(infos[n:], cmp)
}

func (p *Pipeline) compare(a, b matches.Info) int {
	if p.opts.SortDirs != DirsWith {
		aDir, bDir := a.Type == matches.TypeDir, b.Type == matches.TypeDir
		if aDir != bDir {
			if aDir == (p.opts.SortDirs == DirsBefore) {
				return -1
			}
			return 1
		}
	}

	// "-x" flags come before "--xx" flags.
	if c := leadingDashes(a.Match) - leadingDashes(b.Match); c != 0 {
		return c
	}

	am, bm := sortKey(a), sortKey(b)
	if c := p.collator.CompareString(am, bm); c != 0 {
		return c
	}
	if c := strings.Compare(am, bm); c != 0 {
		return c
	}
	if a.Type != b.Type {
		return int(a.Type) - int(b.Type)
	}
	return compareOrdinal(a, b)
}

func compareOrdinal(a, b matches.Info) int {
	switch {
	case a.Ordinal < b.Ordinal:
		return -1
	case a.Ordinal > b.Ordinal:
		return 1
	default:
		return 0
	}
}

// sortKey is the text a match sorts by: directories without their trailing
// separator.
func sortKey(info matches.Info) string {
	if info.Type == matches.TypeDir {
		return strings.TrimRight(info.Match, `/\`)
	}
	return info.Match
}

func leadingDashes(s string) int {
	return len(s) - len(strings.TrimLeft(s, "-"))
}

func (p *Pipeline) canTrySubstring(needle string) bool {
	return p.opts.Substring && needle != "" && needle != "~"
}

// expandTilde expands a leading "~" using shell rules. The needle is
// returned unchanged when expansion is disabled or fails.
func (p *Pipeline) expandTilde(needle string) string {
	if !p.opts.TildeExpansion || !strings.HasPrefix(needle, "~") {
		return needle
	}

	word, err := syntax.NewParser().Document(strings.NewReader(needle))
	if err != nil {
		return needle
	}
	expanded, err := expand.Literal(&expand.Config{Env: p.opts.Env}, word)
	if err != nil || expanded == needle {
		return needle
	}
	if needle == "~" {
		expanded = strings.TrimRight(expanded, "/")
	}
	return expanded
}

func markSelected(infos []matches.Info, match func(string) bool) int {
	n := 0
	for i := range infos {
		infos[i].Selected = match(infos[i].Match)
		if infos[i].Selected {
			n++
		}
	}
	return n
}

func prefixMatcher(needle string) func(string) bool {
	return func(m string) bool {
		return len(m) >= len(needle) && strings.EqualFold(m[:len(needle)], needle)
	}
}

func substringMatcher(needle string) func(string) bool {
	if strings.ContainsAny(needle, "*?") {
		return wildMatcher(substringPattern(needle))
	}
	lower := strings.ToLower(needle)
	return func(m string) bool {
		return strings.Contains(strings.ToLower(m), lower)
	}
}

// pathSep stands in for "/" while matching, so that "*" and "?" match
// across path separators.
const pathSep = "\x1f"

// wildMatcher matches case-insensitively against pattern, where "*" and "?"
// are the only special characters. Trailing separators of a candidate are
// optional, so "sr*" selects the directory "src/".
func wildMatcher(pattern string) func(string) bool {
	pattern = strings.ReplaceAll(escapeMeta(strings.ToLower(pattern)), "/", pathSep)
	matchOne := func(m string) bool {
		ok, err := doublestar.Match(pattern, strings.ReplaceAll(strings.ToLower(m), "/", pathSep))
		return err == nil && ok
	}
	return func(m string) bool {
		if trimmed := strings.TrimRight(m, `/\`); trimmed != m && matchOne(trimmed) {
			return true
		}
		return matchOne(m)
	}
}

func substringPattern(needle string) string {
	return "*" + strings.Trim(needle, "*") + "*"
}

func escapeMeta(pattern string) string {
	var sb strings.Builder
	sb.Grow(len(pattern))
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '[', ']', '{', '}', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
