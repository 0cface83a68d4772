package input

import (
	"github.com/atinylittleshell/linecomp/internal/binder"
	"github.com/samber/lo"
)

// Action represents an editing action that can be triggered by a chord.
// Its value doubles as the binding id registered with the binder.
type Action uint8

const (
	// ActionNone represents no action (used when a chord doesn't match any binding).
	ActionNone Action = iota

	// ActionSelfInsert inserts the typed bytes. It is the group's default
	// binding rather than a chord of its own.
	ActionSelfInsert

	// Navigation actions
	ActionCharacterForward  // Move cursor one character forward (^f, Right)
	ActionCharacterBackward // Move cursor one character backward (^b, Left)
	ActionWordForward       // Move cursor one word forward (\ef, Ctrl+Right)
	ActionWordBackward      // Move cursor one word backward (\eb, Ctrl+Left)
	ActionLineStart         // Move cursor to start of line (^a, Home)
	ActionLineEnd           // Move cursor to end of line (^e, End)

	// Deletion actions
	ActionDeleteCharacterBackward // Delete character before cursor (Backspace, ^h)
	ActionDeleteCharacterForward  // Delete character at cursor, EOF on an empty line (^d, Delete)
	ActionDeleteWordBackward      // Delete word before cursor (^w, Alt+Backspace)
	ActionDeleteWordForward       // Delete word after cursor (\ed)
	ActionDeleteBeforeCursor      // Delete all text before cursor (^u)
	ActionDeleteAfterCursor       // Delete all text after cursor (^k)

	// Completion actions
	ActionComplete         // Accept the only match or extend to the common prefix (Tab)
	ActionAcceptSuggestion // Accept the inline suggestion (Right or End at end of line)

	// Special actions
	ActionSubmit      // Submit the current input (Enter)
	ActionCancel      // Clear the line (^g)
	ActionInterrupt   // Abandon the line (^c)
	ActionClearScreen // Clear the screen (^l)
	ActionPaste       // Paste from clipboard (^v)
	ActionUndo        // Undo the last edit (^_)

	// ActionDiscard swallows sequences of keys the editor has no use for,
	// so their bytes are not inserted as text.
	ActionDiscard
)

// String returns the string representation of an Action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionSelfInsert:
		return "SelfInsert"
	case ActionCharacterForward:
		return "CharacterForward"
	case ActionCharacterBackward:
		return "CharacterBackward"
	case ActionWordForward:
		return "WordForward"
	case ActionWordBackward:
		return "WordBackward"
	case ActionLineStart:
		return "LineStart"
	case ActionLineEnd:
		return "LineEnd"
	case ActionDeleteCharacterBackward:
		return "DeleteCharacterBackward"
	case ActionDeleteCharacterForward:
		return "DeleteCharacterForward"
	case ActionDeleteWordBackward:
		return "DeleteWordBackward"
	case ActionDeleteWordForward:
		return "DeleteWordForward"
	case ActionDeleteBeforeCursor:
		return "DeleteBeforeCursor"
	case ActionDeleteAfterCursor:
		return "DeleteAfterCursor"
	case ActionComplete:
		return "Complete"
	case ActionAcceptSuggestion:
		return "AcceptSuggestion"
	case ActionSubmit:
		return "Submit"
	case ActionCancel:
		return "Cancel"
	case ActionInterrupt:
		return "Interrupt"
	case ActionClearScreen:
		return "ClearScreen"
	case ActionPaste:
		return "Paste"
	case ActionUndo:
		return "Undo"
	case ActionDiscard:
		return "Discard"
	default:
		return "Unknown"
	}
}

// KeyBinding maps chords to an action.
type KeyBinding struct {
	// Chords is the list of chords that trigger this binding, in the
	// notation accepted by binder.ParseChord.
	Chords []string
	// Action is the action to perform when this binding is triggered.
	Action Action
}

// KeyMap holds all key bindings for the editing module.
// Lookup is keyed by the byte sequence a chord parses to.
type KeyMap struct {
	bindings []KeyBinding
	lookup   map[string]Action
}

// NewKeyMap creates a new KeyMap with the given bindings.
func NewKeyMap(bindings []KeyBinding) *KeyMap {
	km := &KeyMap{
		bindings: bindings,
		lookup:   make(map[string]Action),
	}
	km.rebuildLookup()
	return km
}

// rebuildLookup rebuilds the internal lookup map from the bindings.
// Chords that fail to parse are left out.
func (km *KeyMap) rebuildLookup() {
	km.lookup = make(map[string]Action)
	for _, b := range km.bindings {
		for _, chord := range b.Chords {
			seq, err := binder.ParseChord(chord)
			if err != nil {
				continue
			}
			km.lookup[seq] = b.Action
		}
	}
}

// DefaultKeyMap returns a KeyMap with default Emacs-style key bindings.
// A bare escape is not bound since it prefixes every escape sequence.
func DefaultKeyMap() *KeyMap {
	return NewKeyMap([]KeyBinding{
		// Navigation
		{Chords: []string{`\e[C`, `\eOC`, "^f"}, Action: ActionCharacterForward},
		{Chords: []string{`\e[D`, `\eOD`, "^b"}, Action: ActionCharacterBackward},
		{Chords: []string{`\e[1;5C`, `\e[1;3C`, `\ef`}, Action: ActionWordForward},
		{Chords: []string{`\e[1;5D`, `\e[1;3D`, `\eb`}, Action: ActionWordBackward},
		{Chords: []string{`\e[H`, `\eOH`, "^a"}, Action: ActionLineStart},
		{Chords: []string{`\e[F`, `\eOF`, "^e"}, Action: ActionLineEnd},

		// Deletion
		{Chords: []string{"^?", "^h"}, Action: ActionDeleteCharacterBackward},
		{Chords: []string{`\e[3~`, "^d"}, Action: ActionDeleteCharacterForward},
		{Chords: []string{"^w", `\e^?`}, Action: ActionDeleteWordBackward},
		{Chords: []string{`\ed`, `\e[3;3~`}, Action: ActionDeleteWordForward},
		{Chords: []string{"^u"}, Action: ActionDeleteBeforeCursor},
		{Chords: []string{"^k"}, Action: ActionDeleteAfterCursor},

		// Completion
		{Chords: []string{`\t`}, Action: ActionComplete},

		// Special keys
		{Chords: []string{`\r`, `\n`}, Action: ActionSubmit},
		{Chords: []string{"^g"}, Action: ActionCancel},
		{Chords: []string{"^c"}, Action: ActionInterrupt},
		{Chords: []string{"^l"}, Action: ActionClearScreen},
		{Chords: []string{"^v"}, Action: ActionPaste},
		{Chords: []string{"^_"}, Action: ActionUndo},
		{Chords: []string{`\e[A`, `\e[B`, `\eOA`, `\eOB`, `\e[Z`, `\e[2~`, `\e[5~`, `\e[6~`}, Action: ActionDiscard},
	})
}

// Lookup finds the action bound to the byte sequence seq.
// Returns ActionNone if no binding matches.
func (km *KeyMap) Lookup(seq string) Action {
	if action, ok := km.lookup[seq]; ok {
		return action
	}
	return ActionNone
}

// SetBinding adds or updates a key binding.
// If a binding for the same action already exists, it will be replaced.
func (km *KeyMap) SetBinding(binding KeyBinding) {
	for i, b := range km.bindings {
		if b.Action == binding.Action {
			km.bindings[i] = binding
			km.rebuildLookup()
			return
		}
	}
	km.bindings = append(km.bindings, binding)
	km.rebuildLookup()
}

// RemoveBinding removes all bindings for the given action.
func (km *KeyMap) RemoveBinding(action Action) {
	km.bindings = lo.Reject(km.bindings, func(b KeyBinding, _ int) bool {
		return b.Action == action
	})
	km.rebuildLookup()
}

// GetBinding returns the binding for the given action, or nil if not found.
func (km *KeyMap) GetBinding(action Action) *KeyBinding {
	for i := range km.bindings {
		if km.bindings[i].Action == action {
			return &km.bindings[i]
		}
	}
	return nil
}

// AddChords adds additional chords to an existing action binding.
// If the action doesn't exist, a new binding is created.
func (km *KeyMap) AddChords(action Action, chords ...string) {
	for i := range km.bindings {
		if km.bindings[i].Action == action {
			km.bindings[i].Chords = append(km.bindings[i].Chords, chords...)
			km.rebuildLookup()
			return
		}
	}
	km.bindings = append(km.bindings, KeyBinding{
		Chords: chords,
		Action: action,
	})
	km.rebuildLookup()
}

// RemoveChords removes specific chords from an action binding.
func (km *KeyMap) RemoveChords(action Action, chords ...string) {
	for i := range km.bindings {
		if km.bindings[i].Action == action {
			km.bindings[i].Chords = lo.Without(km.bindings[i].Chords, chords...)
			km.rebuildLookup()
			return
		}
	}
}

// Clone creates a deep copy of the KeyMap.
func (km *KeyMap) Clone() *KeyMap {
	return NewKeyMap(km.Bindings())
}

// Bindings returns a copy of all bindings in the keymap.
func (km *KeyMap) Bindings() []KeyBinding {
	result := make([]KeyBinding, len(km.bindings))
	for i, b := range km.bindings {
		chords := make([]string, len(b.Chords))
		copy(chords, b.Chords)
		result[i] = KeyBinding{
			Chords: chords,
			Action: b.Action,
		}
	}
	return result
}
