package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestKeyBytes(t *testing.T) {
	tests := []struct {
		name     string
		msg      tea.KeyMsg
		expected string
	}{
		{"runes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("é")}, "é"},
		{"alt rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b"), Alt: true}, "\x1bb"},
		{"paste", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a\nb"), Paste: true}, "a b"},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}, " "},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, "\r"},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, "\t"},
		{"ctrl a", tea.KeyMsg{Type: tea.KeyCtrlA}, "\x01"},
		{"ctrl c", tea.KeyMsg{Type: tea.KeyCtrlC}, "\x03"},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, "\x7f"},
		{"alt backspace", tea.KeyMsg{Type: tea.KeyBackspace, Alt: true}, "\x1b\x7f"},
		{"right", tea.KeyMsg{Type: tea.KeyRight}, "\x1b[C"},
		{"alt right", tea.KeyMsg{Type: tea.KeyRight, Alt: true}, "\x1b[1;3C"},
		{"ctrl left", tea.KeyMsg{Type: tea.KeyCtrlLeft}, "\x1b[1;5D"},
		{"delete", tea.KeyMsg{Type: tea.KeyDelete}, "\x1b[3~"},
		{"shift tab", tea.KeyMsg{Type: tea.KeyShiftTab}, "\x1b[Z"},
		{"unknown", tea.KeyMsg{Type: tea.KeyF5}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KeyBytes(tt.msg))
		})
	}
}

func TestKeyQueue(t *testing.T) {
	var q KeyQueue

	_, ok := q.ReadKey()
	assert.False(t, ok)

	q.Push("ab")
	q.Push("c")
	assert.Equal(t, 3, q.Len())

	var got []byte
	for {
		c, ok := q.ReadKey()
		if !ok {
			break
		}
		got = append(got, c)
	}
	assert.Equal(t, "abc", string(got))
	assert.Equal(t, 0, q.Len())
}
