// Package session drives a line editing session: it turns key input into
// buffer edits and keeps the completion matches for the word under the
// cursor up to date, regenerating them only when the word changed.
package session

import (
	"strings"
	"time"

	"github.com/atinylittleshell/linecomp/internal/binder"
	"github.com/atinylittleshell/linecomp/internal/config"
	"github.com/atinylittleshell/linecomp/internal/linebuf"
	"github.com/atinylittleshell/linecomp/internal/matches"
	"github.com/atinylittleshell/linecomp/internal/metrics"
	"github.com/atinylittleshell/linecomp/internal/pipeline"
	"github.com/atinylittleshell/linecomp/internal/recognizer"
	"github.com/atinylittleshell/linecomp/internal/words"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds configuration for creating an Editor.
type Config struct {
	// Buffer holds the line text. Defaults to an empty linebuf.Buffer.
	Buffer LineBuffer

	// Input supplies keys to Update. May be nil when the caller only
	// drives the editor through UpdateInternal and Dispatch.
	Input InputSource

	// Generator produces matches for the end word.
	Generator matches.Generator

	// Host receives suggestions. Optional.
	Host SuggestHost

	// Recognizer classifies command words. Optional.
	Recognizer CommandRecognizer

	// Collector splits the line into words.
	Collector *words.Collector

	// Settings defaults to config.DefaultConfig().
	Settings *config.Config

	// Modules are notified in order, and in reverse order at end of line.
	Modules []Module

	// Logger for debug output.
	Logger *zap.Logger
}

// Editor owns one line editing session at a time. All methods must be
// called from the same goroutine.
type Editor struct {
	buffer     LineBuffer
	input      InputSource
	generator  matches.Generator
	host       SuggestHost
	recognizer CommandRecognizer
	collector  *words.Collector
	settings   *config.Config
	modules    []Module
	logger     *zap.Logger

	binder   *binder.Binder
	resolver *binder.Resolver
	pending  *binder.Binding

	store    *matches.Store
	pipeline *pipeline.Pipeline

	flags        Flags
	prevKey      Key
	prevGenerate string
	needle       string
	generationID uint32
	forcePrefix  bool
	redraw       bool

	override *Override
	lines    words.LineStates
	words    []words.Word

	lineID         string
	command        string
	commandPending bool
}

// New creates an Editor.
func New(cfg Config) *Editor {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := cfg.Settings
	if settings == nil {
		settings = config.DefaultConfig()
	}
	buffer := cfg.Buffer
	if buffer == nil {
		buffer = linebuf.New()
	}
	collector := cfg.Collector
	if collector == nil {
		collector = words.NewCollector(words.CollectorConfig{})
	}

	store := matches.NewStore()
	b := binder.New()

	return &Editor{
		buffer:     buffer,
		input:      cfg.Input,
		generator:  cfg.Generator,
		host:       cfg.Host,
		recognizer: cfg.Recognizer,
		collector:  collector,
		settings:   settings,
		modules:    cfg.Modules,
		logger:     logger,
		binder:     b,
		resolver:   binder.NewResolver(b),
		store:      store,
		pipeline: pipeline.New(store, pipeline.Options{
			Substring:      settings.Match.Substring,
			TildeExpansion: settings.Match.TildeExpansion,
			SortDirs:       pipeline.ParseDirPlacement(settings.Match.SortDirs),
			Logger:         logger,
		}),
		prevKey: resetKey,
	}
}

// Buffer returns the line buffer.
func (e *Editor) Buffer() LineBuffer {
	return e.buffer
}

// Matches returns the live match store. Call UpdateMatches first for
// up to date results.
func (e *Editor) Matches() *matches.Store {
	return e.store
}

// Lines returns the line states from the last word collection.
func (e *Editor) Lines() words.LineStates {
	return e.lines
}

// Needle returns the text the matches are currently selected against.
func (e *Editor) Needle() string {
	return e.needle
}

// GenerationID returns the id of the most recent request to regenerate.
func (e *Editor) GenerationID() uint32 {
	return e.generationID
}

// Flags returns a copy of the editor flags.
func (e *Editor) Flags() Flags {
	return e.flags
}

// State returns the lifecycle state of the editor.
func (e *Editor) State() State {
	return e.flags.state()
}

// LineID identifies the current line in logs.
func (e *Editor) LineID() string {
	return e.lineID
}

// TakeRedraw reports whether a module asked for a full repaint since the
// last call.
func (e *Editor) TakeRedraw() bool {
	r := e.redraw
	e.redraw = false
	return r
}

func (e *Editor) initialize() {
	if e.flags.Initialized() {
		return
	}
	for i, m := range e.modules {
		m.BindInput(Binder{binder: e.binder, owner: i})
	}
	e.flags.set(FlagInitialized)
}

// BeginLine starts a new line. It does nothing while a line is in progress.
func (e *Editor) BeginLine() {
	e.initialize()
	if e.flags.Editing() {
		return
	}

	e.flags = FlagInitialized | FlagEditing
	e.store.Reset()
	e.prevKey = resetKey
	e.prevGenerate = ""
	e.needle = ""
	e.override = nil
	e.command = ""
	e.commandPending = false
	e.pending = nil
	e.resolver.SetGroup(e.binder.DefaultGroup())
	e.resolver.Reset()
	e.buffer.BeginLine()
	e.lineID = uuid.NewString()

	e.logger.Debug("begin line", zap.String("line_id", e.lineID))

	e.collectWords()
	ctx := e.context()
	for _, m := range e.modules {
		m.OnBeginLine(ctx)
	}
}

// EndLine finishes the current line. It is safe to call at any time.
func (e *Editor) EndLine() {
	if !e.flags.Editing() {
		return
	}

	for i := len(e.modules) - 1; i >= 0; i-- {
		e.modules[i].OnEndLine()
	}
	e.buffer.EndLine()
	e.pollCommand(true)
	e.flags.clear(FlagEditing)

	e.logger.Debug("end line",
		zap.String("line_id", e.lineID),
		zap.Bool("eof", e.flags.EndOfInput()),
	)
}

// Update advances the editor by one tick. It begins a line when none is in
// progress, and otherwise dispatches one chord of input. It returns false
// once the line is done.
func (e *Editor) Update() bool {
	e.initialize()

	if !e.flags.Editing() {
		e.BeginLine()
		e.UpdateInternal()
		return true
	}

	e.Dispatch(e.resolver.Group())
	if !e.flags.Editing() {
		return false
	}

	e.UpdateInternal()
	return true
}

// UpdateInternal works out which pipeline stages the current line needs and
// offers a suggestion. The stages themselves run in UpdateMatches.
func (e *Editor) UpdateInternal() {
	if !e.flags.Editing() {
		return
	}

	e.collectWords()

	text, cursor := e.lineText()
	end := e.lines.Last().EndWord()
	next := Key{
		WordIndex:  uint(len(e.words) - 1),
		WordOffset: end.Offset,
		WordLength: end.Length,
		CursorPos:  cursor,
	}

	if !IsKeySame(e.prevKey, e.prevGenerate, next, text, false) {
		e.ResetGenerateMatches()
		e.prevGenerate = text[:min(end.End(), uint(len(text)))]
	}

	if !IsKeySame(e.prevKey, e.prevGenerate, next, text, true) {
		e.needle = e.computeNeedle(text, cursor, end)

		// A lone "~" may complete either the home directory or names that
		// start with a tilde, so it is generated afresh on every tick.
		if e.needle == "~" {
			e.ResetGenerateMatches()
		}

		e.flags.set(FlagSelect)
		e.prevKey = next
	}

	e.pollCommand(false)
	e.TrySuggest()
}

// ForceUpdateInternal runs UpdateInternal and then the due pipeline stages.
// With restrict set, matches that do not fit the needle are dropped for the
// rest of the word.
func (e *Editor) ForceUpdateInternal(restrict bool) {
	e.UpdateInternal()
	if restrict {
		e.flags.set(FlagRestrict)
	}
	e.UpdateMatches()
}

// ResetGenerateMatches discards the matches and requests new ones under a
// new generation id.
func (e *Editor) ResetGenerateMatches() {
	e.generationID = nextGenerationID()
	e.store.Reset()
	e.prevKey = resetKey
	e.prevGenerate = ""
	e.flags.set(FlagGenerate | FlagSelect)
	metrics.RecordGeneration()

	e.logger.Debug("reset generate matches", zap.Uint32("generation_id", e.generationID))
}

// ReselectMatches recomputes the needle on the next tick and selects
// matches against it.
func (e *Editor) ReselectMatches() {
	e.prevKey.CursorPos = resetKey.CursorPos
	e.flags.set(FlagSelect)
}

// UpdateMatches runs the pipeline stages flagged by UpdateInternal.
func (e *Editor) UpdateMatches() {
	generate := e.flags.NeedsGenerate()
	restrict := e.flags.NeedsRestrict()
	sel := e.flags.NeedsSelect()

	// Cleared first so that a generator may flag another round.
	e.flags.clear(stageFlags)

	if generate {
		start := time.Now()
		e.pipeline.Generate(e.lines, e.generator)
		metrics.ObserveGenerate(time.Since(start))
		metrics.RecordStage("generate")
	}

	if restrict {
		e.needle = e.pipeline.Restrict(e.needle)
		metrics.RecordStage("restrict")
	}

	if !generate && !restrict && !sel {
		return
	}

	kind := matches.KindPrefix
	if e.settings.Match.Wild && !e.forcePrefix {
		kind = matches.KindWild
	}
	e.pipeline.Select(e.needle, kind)
	e.pipeline.Sort()
	metrics.RecordStage("select")

	ctx := e.context()
	for _, m := range e.modules {
		m.OnMatchesChanged(ctx)
	}
}

// Dispatch reads input until one chord resolves in group and hands it to
// the modules bound to it. At most one chord is handled per call. Dispatch may be called again from inside a
// module's OnInput to read a following chord; the binding being handled is
// then consumed by the nested call.
func (e *Editor) Dispatch(group int) {
	if e.input == nil {
		return
	}

	if e.pending != nil {
		e.resolver.Claim(*e.pending)
		e.pending = nil
	}

	prevGroup := e.resolver.Group()
	e.resolver.SetGroup(group)
	if group != prevGroup {
		defer e.resolver.SetGroup(prevGroup)
	}

	resolved := e.resolver.Resolved()
	for !resolved {
		c, ok := e.input.ReadKey()
		if !ok {
			break
		}
		resolved = e.resolver.Step(c)
	}
	if !resolved {
		return
	}

	for {
		b, ok := e.resolver.Next()
		if !ok {
			return
		}
		if b.Owner < 0 || b.Owner >= len(e.modules) {
			continue
		}

		e.pending = &b
		r := Result{prev: e.resolver.Group()}
		e.modules[b.Owner].OnInput(Input{Keys: b.Chord, ID: b.ID}, &r, e.context())

		// A nested Dispatch already claimed b and handled the next chord.
		if e.pending == nil || e.resolver.IsClaimed(b) {
			e.pending = nil
			return
		}
		e.pending = nil

		if r.is(resultPass) {
			continue
		}

		// Keys past the claimed chord wait for the next Dispatch.
		e.resolver.Claim(b)
		if e.applyResult(&r) {
			e.resolver.Reset()
		}
		return
	}
}

// HasPendingInput reports whether keys left over from a claimed chord
// already form another chord, so Update has work without reading input.
func (e *Editor) HasPendingInput() bool {
	return e.resolver.Resolved()
}

// applyResult carries out r and reports whether the line ended.
func (e *Editor) applyResult(r *Result) bool {
	if r.is(resultRedraw) {
		e.redraw = true
	}
	if r.is(resultAcceptMatch) {
		e.AcceptMatch(r.match)
	}
	if r.is(resultAppendLCD) {
		e.AppendMatchLCD()
	}
	if r.is(resultBindGroup) {
		e.resolver.SetGroup(r.group)
	}
	if r.is(resultDone) {
		e.flags.set(FlagDone)
		if r.is(resultEOF) {
			e.flags.set(FlagEndOfInput)
		}
		e.EndLine()
		return true
	}
	return false
}

// AcceptMatch replaces the end word with the selected match at index.
// Matches that need quoting are quoted, and anything but a directory is
// closed off with a space.
func (e *Editor) AcceptMatch(index int) {
	if e.override != nil || !e.flags.Editing() {
		return
	}
	e.UpdateMatches()
	if index < 0 || index >= e.store.Len() {
		return
	}

	match := e.store.Match(index)
	isDir := e.store.MatchType(index) == matches.TypeDir

	end := e.lines.Last().EndWord()
	begin := int(end.Offset)
	quoted := end.Quoted || e.collector.NeedsQuote(match)
	if end.Quoted && begin > 0 {
		begin--
	}

	var sb strings.Builder
	if quoted {
		sb.WriteByte(e.collector.CloseQuote())
	}
	sb.WriteString(match)
	if !isDir {
		if quoted {
			sb.WriteByte(e.collector.CloseQuote())
		}
		sb.WriteByte(' ')
	}

	e.replaceEndWord(begin, sb.String())
	e.logger.Debug("accepted match", zap.String("match", match))
}

// AppendMatchLCD extends the end word to the longest prefix the selected
// matches share, when that is longer than what was typed.
func (e *Editor) AppendMatchLCD() {
	if e.override != nil || !e.flags.Editing() {
		return
	}
	e.UpdateMatches()
	if e.store.Len() == 0 {
		return
	}

	lcd := e.store.LCD()
	line := e.lines.Last()
	typed := line.EndWordText()
	if len(lcd) <= len(strings.TrimRight(typed, string(e.collector.CloseQuote()))) {
		return
	}

	end := line.EndWord()
	begin := int(end.Offset)
	quoted := end.Quoted || e.collector.NeedsQuote(lcd)
	if end.Quoted && begin > 0 {
		begin--
	}
	if quoted {
		lcd = string(e.collector.CloseQuote()) + lcd
	}
	e.replaceEndWord(begin, lcd)
}

func (e *Editor) replaceEndWord(begin int, text string) {
	e.buffer.BeginUndoGroup()
	defer e.buffer.EndUndoGroup()

	e.buffer.Remove(begin, e.buffer.Cursor())
	e.buffer.SetCursor(begin)
	e.buffer.Insert(text)
}

func (e *Editor) context() *Context {
	return &Context{
		Editor:  e,
		Buffer:  e.buffer,
		Lines:   e.lines,
		Line:    e.lines.Last(),
		Matches: e.store,
	}
}

// lineText returns the text and cursor words are collected from.
func (e *Editor) lineText() (string, uint) {
	if o := e.override; o != nil {
		point := o.Point
		if point < 0 || point > len(o.Line) {
			point = len(o.Line)
		}
		return o.Line, uint(point)
	}
	return e.buffer.Text(), uint(e.buffer.Cursor())
}

func (e *Editor) collectWords() {
	text, cursor := e.lineText()
	lines := e.collector.Collect(text, cursor)
	if e.generator != nil {
		last := lines.Last()
		words.ApplyBreak(last, e.generator.WordBreakInfo(last))
	}
	e.lines = lines
	e.words = lines.Words()
}

func (e *Editor) computeNeedle(text string, cursor uint, end words.Word) string {
	if e.override != nil && e.override.Needle != "" {
		return e.override.Needle
	}
	if end.Offset > cursor || cursor > uint(len(text)) {
		return ""
	}
	needle := text[end.Offset:cursor]
	if end.Quoted {
		needle = strings.TrimSuffix(needle, string(e.collector.CloseQuote()))
	}
	return needle
}

// pollCommand tells observers what the command word resolves to when the
// word changed, or when an earlier lookup has finished. At end of line a
// lookup still in flight is given one last look.
func (e *Editor) pollCommand(final bool) {
	if e.recognizer == nil || e.override != nil {
		return
	}

	word := e.lines.Last().CommandWordText()
	if word == e.command && !e.commandPending {
		return
	}
	if word == e.command {
		select {
		case <-e.recognizer.Ready():
		default:
			if !final {
				return
			}
		}
	}

	rec := e.recognizer.Recognize(word)
	e.command = word
	e.commandPending = !rec.Ready
	if !rec.Ready {
		return
	}

	for _, m := range e.modules {
		if o, ok := m.(CommandObserver); ok {
			o.OnCommand(word, rec)
		}
	}
}

var _ CommandRecognizer = (*recognizer.Recognizer)(nil)
