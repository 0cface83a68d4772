package styles

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlight(t *testing.T) {
	SetOutput(&bytes.Buffer{})

	tests := []struct {
		name     string
		input    string
		indexes  []int
		expected string
	}{
		{"no indexes", "checkout", nil, "checkout"},
		{"plain profile", "checkout", []int{0, 3}, "checkout"},
		{"multibyte", "héllo", []int{1}, "héllo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Highlight(tt.input, tt.indexes))
		})
	}
}

func TestColorsWithoutTerminal(t *testing.T) {
	SetOutput(&bytes.Buffer{})
	assert.Equal(t, "oops", ERROR("oops"))
	assert.Equal(t, "2 hours ago", DIM("2 hours ago"))
}
