package matches

import (
	"github.com/atinylittleshell/linecomp/internal/words"
)

// Builder appends candidates to a store during generation. Duplicate
// matches are ignored.
type Builder struct {
	store *Store
	seen  map[string]struct{}
}

// NewBuilder creates a Builder that fills s.
func NewBuilder(s *Store) *Builder {
	b := &Builder{
		store: s,
		seen:  make(map[string]struct{}, len(s.infos)),
	}
	for _, info := range s.infos {
		b.seen[info.Match] = struct{}{}
	}
	return b
}

// Add appends a single match. It returns false for empty or duplicate
// matches.
func (b *Builder) Add(match string, t Type) bool {
	if match == "" {
		return false
	}
	if _, ok := b.seen[match]; ok {
		return false
	}
	b.seen[match] = struct{}{}
	b.store.infos = append(b.store.infos, Info{
		Match:   match,
		Type:    t,
		Ordinal: uint(len(b.store.infos)),
	})
	return true
}

// AddAll appends every match in ms with the same type and returns the number
// added.
func (b *Builder) AddAll(ms []string, t Type) int {
	n := 0
	for _, m := range ms {
		if b.Add(m, t) {
			n++
		}
	}
	return n
}

// SetNoSort keeps matches in the order they were added.
func (b *Builder) SetNoSort() {
	b.store.noSort = true
}

// SetVolatile marks the matches as depending on more than the kept part of
// the end word, so they are regenerated instead of reused.
func (b *Builder) SetVolatile() {
	b.store.volatile = true
}

// Count returns the number of candidates added so far.
func (b *Builder) Count() int {
	return len(b.store.infos)
}

// Generator produces candidates for the end word of the last line state.
type Generator interface {
	// Generate adds candidates to b. Returning false means the generator does
	// not handle this line and the next generator should be tried.
	Generate(lines words.LineStates, b *Builder) bool

	// WordBreakInfo reports how the end word should be adjusted before the
	// change key is computed.
	WordBreakInfo(line *words.LineState) words.BreakInfo
}

// Chain tries each generator in order until one handles the line.
type Chain []Generator

// Generate implements Generator.
func (c Chain) Generate(lines words.LineStates, b *Builder) bool {
	for _, g := range c {
		if g.Generate(lines, b) {
			return true
		}
	}
	return false
}

// WordBreakInfo implements Generator. The widest truncate and keep reported
// by any generator win.
func (c Chain) WordBreakInfo(line *words.LineState) words.BreakInfo {
	var info words.BreakInfo
	for _, g := range c {
		wbi := g.WordBreakInfo(line)
		info.Truncate = max(info.Truncate, wbi.Truncate)
		info.Keep = max(info.Keep, wbi.Keep)
	}
	return info
}
