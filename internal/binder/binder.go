// Package binder maps key chords to the modules that handle them and
// resolves incoming keys into bindings one chord at a time.
package binder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Binding is a chord bound to an owner. Owner is the index of the module
// that registered the binding and ID is the module's own identifier for it.
type Binding struct {
	Owner int
	ID    uint8
	Chord string

	serial uint64
}

type group struct {
	name     string
	trie     *patricia.Trie
	fallback *Binding
}

// Binder holds chord bindings organised in named groups.
type Binder struct {
	groups []*group
	names  map[string]int
}

// New creates a Binder with a single default group.
func New() *Binder {
	b := &Binder{names: make(map[string]int)}
	b.CreateGroup("default")
	return b
}

// DefaultGroup returns the id of the group created by New.
func (b *Binder) DefaultGroup() int {
	return 0
}

// CreateGroup returns the id of the named group, creating it when needed.
func (b *Binder) CreateGroup(name string) int {
	if id, ok := b.names[name]; ok {
		return id
	}
	id := len(b.groups)
	b.groups = append(b.groups, &group{name: name, trie: patricia.NewTrie()})
	b.names[name] = id
	return id
}

// Group looks up a group by name.
func (b *Binder) Group(name string) (int, bool) {
	id, ok := b.names[name]
	return id, ok
}

// IsGroup reports whether id names an existing group.
func (b *Binder) IsGroup(id int) bool {
	return id >= 0 && id < len(b.groups)
}

// Bind binds chord in group to owner. Chords use the notation accepted by
// ParseChord.
func (b *Binder) Bind(groupID int, chord string, owner int, id uint8) error {
	if !b.IsGroup(groupID) {
		return fmt.Errorf("bind %q: unknown group %d", chord, groupID)
	}
	seq, err := ParseChord(chord)
	if err != nil {
		return fmt.Errorf("bind %q: %w", chord, err)
	}
	b.groups[groupID].trie.Set(patricia.Prefix(seq), Binding{Owner: owner, ID: id})
	return nil
}

// BindDefault binds every otherwise unbound key in group to owner.
func (b *Binder) BindDefault(groupID int, owner int, id uint8) error {
	if !b.IsGroup(groupID) {
		return fmt.Errorf("bind default: unknown group %d", groupID)
	}
	b.groups[groupID].fallback = &Binding{Owner: owner, ID: id}
	return nil
}

// IsBound reports whether seq is exactly bound in group.
func (b *Binder) IsBound(groupID int, seq string) bool {
	if !b.IsGroup(groupID) || seq == "" {
		return false
	}
	return b.groups[groupID].trie.Get(patricia.Prefix(seq)) != nil
}

var errUnterminated = errors.New("unterminated escape")

// ParseChord converts chord notation into the byte sequence a terminal
// sends. "^x" is a control key, "\e" escape, and "\t", "\n", "\r" and "\\"
// have their usual meanings. Other characters stand for themselves.
func ParseChord(chord string) (string, error) {
	if chord == "" {
		return "", errors.New("empty chord")
	}

	var sb strings.Builder
	for i := 0; i < len(chord); i++ {
		c := chord[i]
		switch c {
		case '^':
			if i+1 >= len(chord) {
				return "", errUnterminated
			}
			i++
			next := chord[i]
			if next == '?' {
				sb.WriteByte(0x7f)
				continue
			}
			if next >= 'a' && next <= 'z' {
				next -= 'a' - 'A'
			}
			sb.WriteByte(next & 0x1f)
		case '\\':
			if i+1 >= len(chord) {
				return "", errUnterminated
			}
			i++
			switch chord[i] {
			case 'e':
				sb.WriteByte(0x1b)
			case 't':
				sb.WriteByte('\t')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(chord[i])
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}
