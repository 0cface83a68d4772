package session

import (
	"github.com/atinylittleshell/linecomp/internal/binder"
	"github.com/atinylittleshell/linecomp/internal/matches"
	"github.com/atinylittleshell/linecomp/internal/recognizer"
	"github.com/atinylittleshell/linecomp/internal/words"
)

// LineBuffer is the text being edited. Offsets are in bytes.
type LineBuffer interface {
	Text() string
	Len() int
	Cursor() int
	SetCursor(pos int)
	Insert(text string)
	Remove(begin, end int)
	BeginUndoGroup()
	EndUndoGroup()
	BeginLine()
	EndLine()
	Reset()
}

// InputSource supplies key bytes. ReadKey must not block; it returns false
// when no input is available right now.
type InputSource interface {
	ReadKey() (byte, bool)
}

// SuggestHost turns matches into an inline suggestion.
//
// Suggest is called with the current store when matches are up to date, with
// an explicitly empty store when the line cannot be suggested for, and with
// nil when matches are still being generated. In the last case the host is
// expected to generate matches for generationID and hand them back through
// Editor.NotifyMatchesReady.
type SuggestHost interface {
	CanSuggest(line *words.LineState) bool
	Suggest(lines words.LineStates, m *matches.Store, generationID uint32)
}

// CommandRecognizer classifies command words without blocking.
type CommandRecognizer interface {
	Recognize(word string) recognizer.Recognition
	Ready() <-chan struct{}
}

// Module is a unit of editor behaviour that owns key bindings.
type Module interface {
	BindInput(b Binder)
	OnBeginLine(ctx *Context)
	OnEndLine()
	OnInput(in Input, r *Result, ctx *Context)
	OnMatchesChanged(ctx *Context)
}

// CommandObserver is implemented by modules that want to know what the
// command word of the line resolves to.
type CommandObserver interface {
	OnCommand(word string, rec recognizer.Recognition)
}

// Context is handed to module callbacks.
type Context struct {
	Editor  *Editor
	Buffer  LineBuffer
	Lines   words.LineStates
	Line    *words.LineState
	Matches *matches.Store
}

// Input is a resolved chord.
type Input struct {
	Keys string
	ID   uint8
}

// Binder registers bindings on behalf of one module.
type Binder struct {
	binder *binder.Binder
	owner  int
}

// DefaultGroup returns the group active when a line begins.
func (b Binder) DefaultGroup() int {
	return b.binder.DefaultGroup()
}

// CreateGroup returns the id of the named group, creating it when needed.
func (b Binder) CreateGroup(name string) int {
	return b.binder.CreateGroup(name)
}

// Bind binds chord in group to id.
func (b Binder) Bind(group int, chord string, id uint8) error {
	return b.binder.Bind(group, chord, b.owner, id)
}

// BindDefault routes every key without a binding in group to id.
func (b Binder) BindDefault(group int, id uint8) error {
	return b.binder.BindDefault(group, b.owner, id)
}

type resultFlags uint8

const (
	resultPass resultFlags = 1 << iota
	resultDone
	resultEOF
	resultRedraw
	resultAcceptMatch
	resultAppendLCD
	resultBindGroup
)

// Result collects what a module wants done after handling input.
type Result struct {
	flags resultFlags
	match int
	group int
	prev  int
}

// Pass hands the input to the next binding for the same chord.
func (r *Result) Pass() {
	r.flags |= resultPass
}

// Done ends the line. With eof set the input stream is finished as well.
func (r *Result) Done(eof bool) {
	r.flags |= resultDone
	if eof {
		r.flags |= resultEOF
	}
}

// Redraw asks the front end to repaint everything.
func (r *Result) Redraw() {
	r.flags |= resultRedraw
}

// AcceptMatch replaces the end word with the selected match at index.
func (r *Result) AcceptMatch(index int) {
	r.flags |= resultAcceptMatch
	r.match = index
}

// AppendMatchLCD extends the end word to the longest prefix shared by the
// selected matches.
func (r *Result) AppendMatchLCD() {
	r.flags |= resultAppendLCD
}

// SetBindGroup switches the binding group used for following input and
// returns the current one.
func (r *Result) SetBindGroup(id int) int {
	r.flags |= resultBindGroup
	r.group = id
	return r.prev
}

func (r *Result) is(f resultFlags) bool {
	return r.flags&f != 0
}
