// Package linebuf provides the editable text of the current input line.
package linebuf

import (
	"unicode"
	"unicode/utf8"
)

type snapshot struct {
	text   string
	cursor int
}

// Buffer holds the line text and cursor. Offsets are byte offsets into the
// UTF-8 text; cursor moves always land on rune boundaries.
type Buffer struct {
	text   []byte
	cursor int

	undo       []snapshot
	groupDepth int
	dirty      bool
	editing    bool
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// NewWithText creates a buffer holding text with the cursor at its end.
func NewWithText(text string) *Buffer {
	return &Buffer{text: []byte(text), cursor: len(text)}
}

// BeginLine prepares the buffer for a new line.
func (b *Buffer) BeginLine() {
	b.Reset()
	b.editing = true
}

// EndLine finishes the current line. The text stays readable.
func (b *Buffer) EndLine() {
	b.editing = false
	b.undo = nil
	b.groupDepth = 0
}

// IsEditing reports whether a line is in progress.
func (b *Buffer) IsEditing() bool {
	return b.editing
}

// Reset clears the text and undo history.
func (b *Buffer) Reset() {
	b.text = b.text[:0]
	b.cursor = 0
	b.undo = nil
	b.groupDepth = 0
	b.dirty = true
}

// Text returns the current text.
func (b *Buffer) Text() string {
	return string(b.text)
}

// Len returns the length of the text in bytes.
func (b *Buffer) Len() int {
	return len(b.text)
}

// Cursor returns the cursor offset.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// SetCursor moves the cursor, clamped to the text and snapped back to a rune
// boundary.
func (b *Buffer) SetCursor(pos int) {
	pos = clamp(pos, 0, len(b.text))
	for pos > 0 && pos < len(b.text) && !utf8.RuneStart(b.text[pos]) {
		pos--
	}
	if pos != b.cursor {
		b.cursor = pos
		b.dirty = true
	}
}

// Insert inserts text at the cursor and moves the cursor past it.
func (b *Buffer) Insert(text string) {
	if text == "" {
		return
	}
	b.record()
	tail := append([]byte(text), b.text[b.cursor:]...)
	b.text = append(b.text[:b.cursor], tail...)
	b.cursor += len(text)
	b.dirty = true
}

// Remove deletes the bytes in [begin, end). The cursor is adjusted to stay
// on the same text.
func (b *Buffer) Remove(begin, end int) {
	begin = clamp(begin, 0, len(b.text))
	end = clamp(end, 0, len(b.text))
	if end <= begin {
		return
	}
	b.record()
	b.text = append(b.text[:begin], b.text[end:]...)
	switch {
	case b.cursor >= end:
		b.cursor -= end - begin
	case b.cursor > begin:
		b.cursor = begin
	}
	b.dirty = true
}

// Replace swaps [begin, end) for text and leaves the cursor after it.
func (b *Buffer) Replace(begin, end int, text string) {
	b.BeginUndoGroup()
	defer b.EndUndoGroup()
	b.Remove(begin, end)
	b.SetCursor(begin)
	b.Insert(text)
}

// BeginUndoGroup starts a group of edits that Undo reverts together.
func (b *Buffer) BeginUndoGroup() {
	if b.groupDepth == 0 {
		b.pushUndo()
	}
	b.groupDepth++
}

// EndUndoGroup closes the group opened by BeginUndoGroup.
func (b *Buffer) EndUndoGroup() {
	if b.groupDepth > 0 {
		b.groupDepth--
	}
}

// Undo reverts the most recent edit or undo group. It returns false when
// there is nothing to undo.
func (b *Buffer) Undo() bool {
	if len(b.undo) == 0 {
		return false
	}
	last := b.undo[len(b.undo)-1]
	b.undo = b.undo[:len(b.undo)-1]
	b.text = []byte(last.text)
	b.cursor = last.cursor
	b.dirty = true
	return true
}

func (b *Buffer) record() {
	if b.groupDepth == 0 {
		b.pushUndo()
	}
}

func (b *Buffer) pushUndo() {
	b.undo = append(b.undo, snapshot{text: string(b.text), cursor: b.cursor})
}

// TakeDirty reports whether the buffer changed since the last call.
func (b *Buffer) TakeDirty() bool {
	d := b.dirty
	b.dirty = false
	return d
}

// TextBeforeCursor returns the text up to the cursor.
func (b *Buffer) TextBeforeCursor() string {
	return string(b.text[:b.cursor])
}

// TextAfterCursor returns the text from the cursor on.
func (b *Buffer) TextAfterCursor() string {
	return string(b.text[b.cursor:])
}

// CharBackward moves the cursor one rune left.
func (b *Buffer) CharBackward() {
	if b.cursor == 0 {
		return
	}
	_, size := utf8.DecodeLastRune(b.text[:b.cursor])
	b.SetCursor(b.cursor - size)
}

// CharForward moves the cursor one rune right.
func (b *Buffer) CharForward() {
	if b.cursor >= len(b.text) {
		return
	}
	_, size := utf8.DecodeRune(b.text[b.cursor:])
	b.SetCursor(b.cursor + size)
}

// DeleteCharBackward deletes the rune before the cursor.
func (b *Buffer) DeleteCharBackward() bool {
	if b.cursor == 0 {
		return false
	}
	_, size := utf8.DecodeLastRune(b.text[:b.cursor])
	b.Remove(b.cursor-size, b.cursor)
	return true
}

// DeleteCharForward deletes the rune at the cursor.
func (b *Buffer) DeleteCharForward() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	_, size := utf8.DecodeRune(b.text[b.cursor:])
	b.Remove(b.cursor, b.cursor+size)
	return true
}

// DeleteBeforeCursor deletes everything before the cursor.
func (b *Buffer) DeleteBeforeCursor() {
	b.Remove(0, b.cursor)
}

// DeleteAfterCursor deletes everything from the cursor on.
func (b *Buffer) DeleteAfterCursor() {
	b.Remove(b.cursor, len(b.text))
}

// WordBackward moves the cursor to the start of the previous word.
func (b *Buffer) WordBackward() {
	b.SetCursor(b.wordStartBefore(b.cursor))
}

// WordForward moves the cursor past the end of the next word.
func (b *Buffer) WordForward() {
	b.SetCursor(b.wordEndAfter(b.cursor))
}

// DeleteWordBackward deletes from the start of the previous word to the
// cursor.
func (b *Buffer) DeleteWordBackward() {
	b.Remove(b.wordStartBefore(b.cursor), b.cursor)
}

// DeleteWordForward deletes from the cursor to the end of the next word.
func (b *Buffer) DeleteWordForward() {
	b.Remove(b.cursor, b.wordEndAfter(b.cursor))
}

func (b *Buffer) wordStartBefore(pos int) int {
	for pos > 0 {
		r, size := utf8.DecodeLastRune(b.text[:pos])
		if !unicode.IsSpace(r) {
			break
		}
		pos -= size
	}
	for pos > 0 {
		r, size := utf8.DecodeLastRune(b.text[:pos])
		if unicode.IsSpace(r) {
			break
		}
		pos -= size
	}
	return pos
}

func (b *Buffer) wordEndAfter(pos int) int {
	for pos < len(b.text) {
		r, size := utf8.DecodeRune(b.text[pos:])
		if !unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	for pos < len(b.text) {
		r, size := utf8.DecodeRune(b.text[pos:])
		if unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	return pos
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
