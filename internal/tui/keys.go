package tui

import (
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// KeyQueue buffers key bytes for the editor. It implements
// session.InputSource.
type KeyQueue struct {
	mu   sync.Mutex
	data []byte
}

// Push appends keys to the queue.
func (q *KeyQueue) Push(keys string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.data = append(q.data, keys...)
}

// ReadKey pops the next key byte without blocking.
func (q *KeyQueue) ReadKey() (byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) == 0 {
		return 0, false
	}
	c := q.data[0]
	q.data = q.data[1:]
	return c, true
}

// Len returns the number of queued bytes.
func (q *KeyQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}

var keySequences = map[tea.KeyType]string{
	tea.KeyUp:        "\x1b[A",
	tea.KeyDown:      "\x1b[B",
	tea.KeyRight:     "\x1b[C",
	tea.KeyLeft:      "\x1b[D",
	tea.KeyShiftTab:  "\x1b[Z",
	tea.KeyHome:      "\x1b[H",
	tea.KeyEnd:       "\x1b[F",
	tea.KeyPgUp:      "\x1b[5~",
	tea.KeyPgDown:    "\x1b[6~",
	tea.KeyDelete:    "\x1b[3~",
	tea.KeyInsert:    "\x1b[2~",
	tea.KeyCtrlRight: "\x1b[1;5C",
	tea.KeyCtrlLeft:  "\x1b[1;5D",
	tea.KeySpace:     " ",
}

var altSequences = map[tea.KeyType]string{
	tea.KeyRight:  "\x1b[1;3C",
	tea.KeyLeft:   "\x1b[1;3D",
	tea.KeyDelete: "\x1b[3;3~",
}

// KeyBytes converts a key message back into the bytes a terminal sends for
// it, which is what the editor's chords are written against. Keys with no
// known encoding yield an empty string.
func KeyBytes(msg tea.KeyMsg) string {
	if msg.Alt {
		if seq, ok := altSequences[msg.Type]; ok {
			return seq
		}
	}

	var keys string
	switch {
	case msg.Type == tea.KeyRunes:
		keys = string(msg.Runes)
		if msg.Paste {
			keys = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(keys)
		}
	case msg.Type >= 0 && msg.Type < 0x20, msg.Type == tea.KeyBackspace:
		keys = string([]byte{byte(msg.Type)})
	default:
		keys = keySequences[msg.Type]
	}

	if msg.Alt && keys != "" {
		return "\x1b" + keys
	}
	return keys
}
