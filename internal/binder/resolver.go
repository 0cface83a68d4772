package binder

import (
	"errors"
	"slices"

	"github.com/tchap/go-patricia/v2/patricia"
)

var errLonger = errors.New("longer chord exists")

// Resolver accumulates keys until they form a complete chord in the current
// group and then yields the matching bindings, longest chord first.
//
// A binding handed out by Next stays pending until it is claimed. Claiming
// consumes the chord's keys; keys beyond it are resolved again. If every
// binding passes, the keys are dropped.
type Resolver struct {
	binder   *Binder
	group    int
	keys     []byte
	resolved bool
	queue    []Binding
	serial   uint64
}

// NewResolver creates a Resolver over b starting in its default group.
func NewResolver(b *Binder) *Resolver {
	return &Resolver{binder: b, group: b.DefaultGroup()}
}

// Group returns the current group.
func (r *Resolver) Group() int {
	return r.group
}

// SetGroup switches the group used to resolve chords. Switching to a
// different group discards any partial chord.
func (r *Resolver) SetGroup(id int) {
	if id == r.group || !r.binder.IsGroup(id) {
		return
	}
	r.group = id
	r.Reset()
}

// Step adds key to the chord. It returns true once the chord is complete
// and bindings can be read with Next.
func (r *Resolver) Step(key byte) bool {
	if r.resolved {
		return true
	}
	r.keys = append(r.keys, key)
	return r.resolve()
}

// Pending reports whether a partial chord is waiting for more keys.
func (r *Resolver) Pending() bool {
	return len(r.keys) > 0 && !r.resolved
}

// Resolved reports whether a complete chord is waiting to be read with Next.
func (r *Resolver) Resolved() bool {
	return r.resolved
}

// Next returns the next binding for the resolved chord.
func (r *Resolver) Next() (Binding, bool) {
	if !r.resolved {
		return Binding{}, false
	}
	if len(r.queue) == 0 {
		r.Reset()
		return Binding{}, false
	}
	b := r.queue[0]
	r.queue = r.queue[1:]
	b.serial = r.serial
	return b, true
}

// Claim marks b as handled. Claiming a binding that was already claimed, or
// that belongs to an earlier chord, does nothing.
func (r *Resolver) Claim(b Binding) {
	if r.IsClaimed(b) {
		return
	}
	rest := slices.Clone(r.keys[min(len(b.Chord), len(r.keys)):])
	r.Reset()
	if len(rest) > 0 {
		r.keys = rest
		r.resolve()
	}
}

// IsClaimed reports whether b has been claimed or superseded.
func (r *Resolver) IsClaimed(b Binding) bool {
	return b.serial != r.serial
}

// Reset discards the current chord.
func (r *Resolver) Reset() {
	r.keys = r.keys[:0]
	r.queue = nil
	r.resolved = false
	r.serial++
}

func (r *Resolver) resolve() bool {
	g := r.binder.groups[r.group]

	longer := false
	_ = g.trie.VisitSubtree(patricia.Prefix(slices.Clone(r.keys)), func(p patricia.Prefix, _ patricia.Item) error {
		if len(p) > len(r.keys) {
			longer = true
			return errLonger
		}
		return nil
	})
	if longer {
		return false
	}

	var found []Binding
	_ = g.trie.VisitPrefixes(patricia.Prefix(slices.Clone(r.keys)), func(p patricia.Prefix, item patricia.Item) error {
		b := item.(Binding)
		b.Chord = string(p)
		found = append(found, b)
		return nil
	})
	slices.Reverse(found)

	if g.fallback != nil {
		b := *g.fallback
		b.Chord = string(r.keys[:1])
		found = append(found, b)
	}

	r.queue = found
	r.resolved = true
	r.serial++
	return true
}
