// Package matches holds completion candidates for the end word of a line
// and the interfaces used by match generators to produce them.
package matches

import (
	"strings"

	"github.com/samber/lo"
)

// Type classifies a match.
type Type uint8

const (
	TypeNone Type = iota
	TypeWord
	TypeArg
	TypeCommand
	TypeAlias
	TypeFile
	TypeDir
)

// String returns the string representation of the match type.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeWord:
		return "word"
	case TypeArg:
		return "arg"
	case TypeCommand:
		return "cmd"
	case TypeAlias:
		return "alias"
	case TypeFile:
		return "file"
	case TypeDir:
		return "dir"
	default:
		return "unknown"
	}
}

// Kind is the selection mode last applied to the store.
type Kind uint8

const (
	// KindPrefix selects matches that start with the needle, ignoring case.
	KindPrefix Kind = iota
	// KindWild treats the needle as a wildcard pattern.
	KindWild
)

// Info is a single candidate and its selection state.
type Info struct {
	Match    string
	Type     Type
	Ordinal  uint
	Selected bool
}

// Store owns the candidate list for one line. A Store is never shared;
// results computed elsewhere are moved in with Transfer.
type Store struct {
	infos             []Info
	count             int
	wordBreakPosition int
	kind              Kind
	volatile          bool
	noSort            bool
	explicitlyEmpty   bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{wordBreakPosition: -1}
}

// Empty returns a store that reports "there is nothing to suggest" rather
// than "no result yet".
func Empty() *Store {
	s := NewStore()
	s.explicitlyEmpty = true
	return s
}

// Reset clears all candidates and state.
func (s *Store) Reset() {
	s.infos = nil
	s.count = 0
	s.wordBreakPosition = -1
	s.kind = KindPrefix
	s.volatile = false
	s.noSort = false
	s.explicitlyEmpty = false
}

// Transfer moves the contents of other into s and leaves other empty.
func (s *Store) Transfer(other *Store) {
	if other == nil || other == s {
		return
	}
	*s = *other
	other.Reset()
}

// Len returns the number of selected matches.
func (s *Store) Len() int {
	return s.count
}

// InfoCount returns the number of candidates, selected or not.
func (s *Store) InfoCount() int {
	return len(s.infos)
}

// Infos returns the candidate slice for in-place use by the pipeline.
func (s *Store) Infos() []Info {
	return s.infos
}

// SetInfos replaces the candidate slice.
func (s *Store) SetInfos(infos []Info) {
	s.infos = infos
	if s.count > len(infos) {
		s.count = len(infos)
	}
}

// SetCount sets the number of selected matches. Selected matches occupy the
// front of the candidate slice.
func (s *Store) SetCount(n int) {
	s.count = min(max(n, 0), len(s.infos))
}

// Match returns the i'th selected match.
func (s *Store) Match(i int) string {
	if i < 0 || i >= s.count {
		return ""
	}
	return s.infos[i].Match
}

// MatchType returns the type of the i'th selected match.
func (s *Store) MatchType(i int) Type {
	if i < 0 || i >= s.count {
		return TypeNone
	}
	return s.infos[i].Type
}

// Matches returns the selected matches in sorted order.
func (s *Store) Matches() []string {
	return lo.Map(s.infos[:s.count], func(info Info, _ int) string {
		return info.Match
	})
}

// Candidates returns every candidate in the store, selected matches first.
func (s *Store) Candidates() []string {
	return lo.Map(s.infos, func(info Info, _ int) string {
		return info.Match
	})
}

// WordBreakPosition returns the offset of the word the matches complete, or
// -1 when nothing was generated.
func (s *Store) WordBreakPosition() int {
	return s.wordBreakPosition
}

// SetWordBreakPosition records the offset of the completed word.
func (s *Store) SetWordBreakPosition(pos int) {
	s.wordBreakPosition = pos
}

// Kind returns the selection mode last applied.
func (s *Store) Kind() Kind {
	return s.kind
}

// SetKind records the selection mode.
func (s *Store) SetKind(k Kind) {
	s.kind = k
}

// IsVolatile reports whether the matches must be regenerated on every
// change to the end word.
func (s *Store) IsVolatile() bool {
	return s.volatile
}

func (s *Store) SetVolatile(v bool) {
	s.volatile = v
}

// IsNoSort reports whether generator order must be kept.
func (s *Store) IsNoSort() bool {
	return s.noSort
}

func (s *Store) IsExplicitlyEmpty() bool {
	return s.explicitlyEmpty
}

// LCD returns the longest common prefix of the selected matches, compared
// without regard to case. The casing of the first match is kept.
func (s *Store) LCD() string {
	if s.count == 0 {
		return ""
	}
	lcd := s.infos[0].Match
	for _, info := range s.infos[1:s.count] {
		n := 0
		for n < len(lcd) && n < len(info.Match) && foldByte(lcd[n]) == foldByte(info.Match[n]) {
			n++
		}
		lcd = lcd[:n]
	}
	return lcd
}

// HasMatch reports whether m is among the selected matches.
func (s *Store) HasMatch(m string) bool {
	return lo.ContainsBy(s.infos[:s.count], func(info Info) bool {
		return strings.EqualFold(info.Match, m)
	})
}

func foldByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
