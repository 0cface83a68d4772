package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChord(t *testing.T) {
	tests := []struct {
		chord    string
		expected string
		wantErr  bool
	}{
		{"a", "a", false},
		{"^a", "\x01", false},
		{"^A", "\x01", false},
		{"^?", "\x7f", false},
		{`\t`, "\t", false},
		{`\e[A`, "\x1b[A", false},
		{`\\`, `\`, false},
		{"", "", true},
		{"^", "", true},
		{`\`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.chord, func(t *testing.T) {
			seq, err := ParseChord(tt.chord)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, seq)
		})
	}
}

func TestBinder_Groups(t *testing.T) {
	b := New()
	assert.Equal(t, 0, b.DefaultGroup())

	id := b.CreateGroup("menu")
	assert.Equal(t, 1, id)
	assert.Equal(t, id, b.CreateGroup("menu"))

	got, ok := b.Group("menu")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = b.Group("missing")
	assert.False(t, ok)

	assert.Error(t, b.Bind(7, "a", 0, 0))
	assert.Error(t, b.BindDefault(-1, 0, 0))
	assert.Error(t, b.Bind(0, "^", 0, 0))
}

func TestBinder_IsBound(t *testing.T) {
	b := New()
	require.NoError(t, b.Bind(0, `\e[A`, 1, 2))

	assert.True(t, b.IsBound(0, "\x1b[A"))
	assert.False(t, b.IsBound(0, "\x1b"))
	assert.False(t, b.IsBound(0, ""))
	assert.False(t, b.IsBound(3, "\x1b[A"))
}

func feed(r *Resolver, keys string) bool {
	for i := 0; i < len(keys); i++ {
		if r.Step(keys[i]) {
			return true
		}
	}
	return false
}

func TestResolver_SingleKey(t *testing.T) {
	b := New()
	require.NoError(t, b.Bind(0, "^a", 3, 9))
	r := NewResolver(b)

	require.True(t, feed(r, "\x01"))
	binding, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, 3, binding.Owner)
	assert.Equal(t, uint8(9), binding.ID)
	assert.Equal(t, "\x01", binding.Chord)

	r.Claim(binding)
	assert.True(t, r.IsClaimed(binding))
	_, ok = r.Next()
	assert.False(t, ok)
}

func TestResolver_MultiKeyChordPending(t *testing.T) {
	b := New()
	require.NoError(t, b.Bind(0, `\e[A`, 1, 1))
	require.NoError(t, b.Bind(0, `\e[B`, 1, 2))
	r := NewResolver(b)

	assert.False(t, r.Step(0x1b))
	assert.True(t, r.Pending())
	assert.False(t, r.Step('['))
	assert.True(t, r.Step('B'))

	binding, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, uint8(2), binding.ID)
}

func TestResolver_PassFallsThroughToShorterAndDefault(t *testing.T) {
	b := New()
	require.NoError(t, b.Bind(0, "x", 1, 1))
	require.NoError(t, b.Bind(0, "xy", 2, 2))
	require.NoError(t, b.BindDefault(0, 5, 0))
	r := NewResolver(b)

	// "xz" is not a chord; the longest bound prefix is "x".
	require.False(t, r.Step('x'))
	require.True(t, r.Step('z'))

	first, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, 1, first.Owner)

	second, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, 5, second.Owner)
	assert.Equal(t, "x", second.Chord)

	// Nobody claimed anything so the keys are dropped.
	_, ok = r.Next()
	assert.False(t, ok)
	assert.False(t, r.Pending())
}

func TestResolver_ClaimResolvesRemainder(t *testing.T) {
	b := New()
	require.NoError(t, b.Bind(0, "x", 1, 1))
	require.NoError(t, b.Bind(0, "xy", 1, 2))
	require.NoError(t, b.BindDefault(0, 9, 0))
	r := NewResolver(b)

	r.Step('x')
	require.True(t, r.Step('q'))

	first, ok := r.Next()
	require.True(t, ok)
	r.Claim(first)

	next, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, 9, next.Owner)
	assert.Equal(t, "q", next.Chord)

	// A stale binding cannot be claimed twice.
	r.Claim(first)
	assert.True(t, r.IsClaimed(first))
	assert.False(t, r.IsClaimed(next))
}

func TestResolver_UnboundKeyWithoutDefault(t *testing.T) {
	r := NewResolver(New())

	require.True(t, r.Step('k'))
	_, ok := r.Next()
	assert.False(t, ok)
}

func TestResolver_SetGroup(t *testing.T) {
	b := New()
	menu := b.CreateGroup("menu")
	require.NoError(t, b.Bind(menu, "j", 4, 1))
	r := NewResolver(b)

	r.SetGroup(menu)
	assert.Equal(t, menu, r.Group())
	require.True(t, r.Step('j'))
	binding, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, 4, binding.Owner)

	r.SetGroup(42)
	assert.Equal(t, menu, r.Group())
}
