// Package input provides the line editing module: it binds the key map's
// chords and turns them into buffer edits, completion requests and line
// endings.
package input

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/atinylittleshell/linecomp/internal/session"
	"go.uber.org/zap"
)

// EditBuffer is the line buffer with the motions and deletions the module
// performs. linebuf.Buffer implements it.
type EditBuffer interface {
	session.LineBuffer
	CharForward()
	CharBackward()
	WordForward()
	WordBackward()
	DeleteCharBackward() bool
	DeleteCharForward() bool
	DeleteWordBackward()
	DeleteWordForward()
	DeleteBeforeCursor()
	DeleteAfterCursor()
	Undo() bool
}

// SuggestionSource returns what the inline suggestion adds to input.
type SuggestionSource interface {
	Remainder(input string) string
}

// Module implements session.Module for plain line editing.
type Module struct {
	keymap      *KeyMap
	suggestions SuggestionSource
	clipboard   func() (string, error)
	logger      *zap.Logger

	listing     bool
	interrupted bool
}

// Config holds configuration for creating a Module.
type Config struct {
	// KeyMap defaults to DefaultKeyMap.
	KeyMap *KeyMap

	// Suggestions is consulted when accepting the inline suggestion. Optional.
	Suggestions SuggestionSource

	// Clipboard reads the system clipboard. Defaults to clipboard.ReadAll.
	Clipboard func() (string, error)

	// Logger for debug output.
	Logger *zap.Logger
}

// New creates a Module.
func New(config Config) *Module {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	keymap := config.KeyMap
	if keymap == nil {
		keymap = DefaultKeyMap()
	}
	read := config.Clipboard
	if read == nil {
		read = clipboard.ReadAll
	}

	return &Module{
		keymap:      keymap,
		suggestions: config.Suggestions,
		clipboard:   read,
		logger:      logger,
	}
}

// Listing reports whether the last completion left several matches to
// choose from.
func (m *Module) Listing() bool {
	return m.listing
}

// Interrupted reports whether the last line was abandoned with an interrupt.
func (m *Module) Interrupted() bool {
	return m.interrupted
}

// BindInput binds every chord in the key map, plus self insertion for
// anything unbound.
func (m *Module) BindInput(b session.Binder) {
	group := b.DefaultGroup()
	for _, binding := range m.keymap.Bindings() {
		for _, chord := range binding.Chords {
			if err := b.Bind(group, chord, uint8(binding.Action)); err != nil {
				m.logger.Warn("failed to bind chord",
					zap.String("chord", chord),
					zap.Stringer("action", binding.Action),
					zap.Error(err),
				)
			}
		}
	}
	if err := b.BindDefault(group, uint8(ActionSelfInsert)); err != nil {
		m.logger.Warn("failed to bind self insert", zap.Error(err))
	}
}

// OnBeginLine resets per-line state.
func (m *Module) OnBeginLine(ctx *session.Context) {
	m.listing = false
	m.interrupted = false
}

// OnEndLine does nothing.
func (m *Module) OnEndLine() {}

// OnMatchesChanged does nothing; the front end reads matches directly.
func (m *Module) OnMatchesChanged(ctx *session.Context) {}

// OnInput performs the action bound to in.
func (m *Module) OnInput(in session.Input, r *session.Result, ctx *session.Context) {
	action := Action(in.ID)
	if action != ActionComplete {
		m.listing = false
	}

	buf, ok := ctx.Buffer.(EditBuffer)
	if !ok {
		m.logger.DPanic("line buffer does not support editing")
		return
	}

	switch action {
	case ActionSelfInsert:
		m.selfInsert(in.Keys, buf)
	case ActionDiscard:
		// Swallowed.

	case ActionCharacterForward:
		if buf.Cursor() < buf.Len() {
			buf.CharForward()
		} else {
			m.acceptSuggestion(buf)
		}
	case ActionCharacterBackward:
		buf.CharBackward()
	case ActionWordForward:
		buf.WordForward()
	case ActionWordBackward:
		buf.WordBackward()
	case ActionLineStart:
		buf.SetCursor(0)
	case ActionLineEnd:
		if buf.Cursor() < buf.Len() {
			buf.SetCursor(buf.Len())
		} else {
			m.acceptSuggestion(buf)
		}

	case ActionDeleteCharacterBackward:
		buf.DeleteCharBackward()
	case ActionDeleteCharacterForward:
		if buf.Len() == 0 {
			r.Done(true)
			return
		}
		buf.DeleteCharForward()
	case ActionDeleteWordBackward:
		buf.DeleteWordBackward()
	case ActionDeleteWordForward:
		buf.DeleteWordForward()
	case ActionDeleteBeforeCursor:
		buf.DeleteBeforeCursor()
	case ActionDeleteAfterCursor:
		buf.DeleteAfterCursor()

	case ActionComplete:
		m.complete(r, ctx)
	case ActionAcceptSuggestion:
		m.acceptSuggestion(buf)

	case ActionSubmit:
		r.Done(false)
	case ActionCancel:
		buf.Remove(0, buf.Len())
	case ActionInterrupt:
		buf.Remove(0, buf.Len())
		m.interrupted = true
		r.Done(false)
	case ActionClearScreen:
		r.Redraw()
	case ActionPaste:
		m.paste(buf)
	case ActionUndo:
		buf.Undo()

	default:
		r.Pass()
	}
}

// selfInsert inserts printable bytes. Bytes of a multi-byte rune arrive one
// at a time and are inserted as they come.
func (m *Module) selfInsert(keys string, buf EditBuffer) {
	if keys == "" || keys[0] < 0x20 || keys[0] == 0x7f {
		return
	}
	buf.Insert(keys)
}

func (m *Module) complete(r *session.Result, ctx *session.Context) {
	ctx.Editor.UpdateMatches()
	switch n := ctx.Editor.Matches().Len(); {
	case n == 1:
		r.AcceptMatch(0)
		m.listing = false
	case n > 1:
		r.AppendMatchLCD()
		m.listing = true
	default:
		m.listing = false
	}
}

func (m *Module) acceptSuggestion(buf EditBuffer) {
	if m.suggestions == nil || buf.Cursor() != buf.Len() {
		return
	}
	rest := m.suggestions.Remainder(buf.Text())
	if rest == "" {
		return
	}
	buf.Insert(rest)
	m.logger.Debug("accepted suggestion", zap.String("remainder", rest))
}

func (m *Module) paste(buf EditBuffer) {
	text, err := m.clipboard()
	if err != nil {
		m.logger.Debug("failed to read clipboard", zap.Error(err))
		return
	}
	text = strings.TrimRight(text, "\r\n")
	text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
	if text == "" {
		return
	}
	buf.BeginUndoGroup()
	defer buf.EndUndoGroup()
	buf.Insert(text)
}
