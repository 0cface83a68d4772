// Package tui is the interactive front end: a Bubble Tea model that feeds
// keys to the editor, shows the line with its inline suggestion and lists
// matches when completion leaves a choice.
package tui

import (
	"strings"

	"github.com/atinylittleshell/linecomp/internal/history"
	"github.com/atinylittleshell/linecomp/internal/input"
	"github.com/atinylittleshell/linecomp/internal/session"
	"github.com/atinylittleshell/linecomp/internal/suggest"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// ResultType indicates how a line ended.
type ResultType int

const (
	// ResultNone indicates no result yet (still editing).
	ResultNone ResultType = iota
	// ResultSubmit indicates the user submitted the line.
	ResultSubmit
	// ResultInterrupt indicates the user abandoned the line.
	ResultInterrupt
	// ResultEOF indicates end of input.
	ResultEOF
)

// Result contains the outcome of a line.
type Result struct {
	Type  ResultType
	Value string
}

// HistoryRecorder stores submitted lines.
type HistoryRecorder interface {
	AddEntry(command string, directory string, sessionID string) (*history.HistoryEntry, error)
}

// completionMsg carries matches generated in the background.
type completionMsg suggest.Completion

// Model is the Bubble Tea model for one line of input.
type Model struct {
	editor    *session.Editor
	keys      *KeyQueue
	edit      *input.Module
	suggester *suggest.Suggester
	executor  *suggest.Executor
	history   HistoryRecorder

	spinner    spinner.Model
	styles     Styles
	prompt     string
	width      int
	maxMatches int

	directory string
	sessionID string

	result Result
	logger *zap.Logger
}

// Config holds configuration for creating a Model.
type Config struct {
	// Editor drives the line. Its input source must be Keys.
	Editor *session.Editor
	Keys   *KeyQueue

	// Edit is the editing module registered with Editor. Optional.
	Edit *input.Module

	// Suggester and Executor provide the inline suggestion. Optional.
	Suggester *suggest.Suggester
	Executor  *suggest.Executor

	// History records submitted lines. Optional.
	History   HistoryRecorder
	Directory string
	SessionID string

	Prompt string

	// MaxMatches caps the number of matches listed. Defaults to 30.
	MaxMatches int

	// Styles defaults to DefaultStyles.
	Styles *Styles

	// Width is the initial terminal width.
	Width int

	Logger *zap.Logger
}

// New creates a Model.
func New(cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	styles := DefaultStyles()
	if cfg.Styles != nil {
		styles = *cfg.Styles
	}
	width := cfg.Width
	if width <= 0 {
		width = 80
	}
	maxMatches := cfg.MaxMatches
	if maxMatches <= 0 {
		maxMatches = 30
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return Model{
		editor:     cfg.Editor,
		keys:       cfg.Keys,
		edit:       cfg.Edit,
		suggester:  cfg.Suggester,
		executor:   cfg.Executor,
		history:    cfg.History,
		spinner:    s,
		styles:     styles,
		prompt:     cfg.Prompt,
		width:      width,
		maxMatches: maxMatches,
		directory:  cfg.Directory,
		sessionID:  cfg.SessionID,
		result:     Result{Type: ResultNone},
		logger:     logger,
	}
}

// Result returns how the line ended.
func (m Model) Result() Result {
	return m.result
}

// Init implements tea.Model. It begins the line.
func (m Model) Init() tea.Cmd {
	m.editor.Update()
	return tea.Batch(m.spinner.Tick, m.waitForCompletion())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.result.Type != ResultNone {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		keys := KeyBytes(msg)
		if keys == "" {
			return m, nil
		}
		m.keys.Push(keys)
		return m.drain()

	case completionMsg:
		adopted := m.editor.NotifyMatchesReady(msg.GenerationID, msg.Store)
		m.logger.Debug("background matches delivered",
			zap.Uint32("generation_id", msg.GenerationID),
			zap.Bool("adopted", adopted),
		)
		return m, m.waitForCompletion()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// drain runs the editor until the queued keys and any chords left over
// from them are consumed, or the line ends.
func (m Model) drain() (tea.Model, tea.Cmd) {
	for m.keys.Len() > 0 || m.editor.HasPendingInput() {
		if !m.editor.Update() {
			break
		}
	}

	if m.editor.Flags().Done() {
		m.finish()
		return m, tea.Quit
	}
	if m.editor.TakeRedraw() {
		return m, tea.ClearScreen
	}
	return m, nil
}

func (m *Model) finish() {
	text := m.editor.Buffer().Text()
	switch {
	case m.editor.Flags().EndOfInput():
		m.result = Result{Type: ResultEOF}
	case m.edit != nil && m.edit.Interrupted():
		m.result = Result{Type: ResultInterrupt}
	default:
		m.result = Result{Type: ResultSubmit, Value: text}
	}

	if m.suggester != nil {
		m.suggester.Clear()
	}

	if m.result.Type != ResultSubmit || m.history == nil || strings.TrimSpace(text) == "" {
		return
	}
	if _, err := m.history.AddEntry(text, m.directory, m.sessionID); err != nil {
		m.logger.Warn("failed to record history entry", zap.Error(err))
	}
}

// waitForCompletion returns a command that waits for the next background
// generation.
func (m Model) waitForCompletion() tea.Cmd {
	if m.executor == nil {
		return nil
	}
	completions := m.executor.Completions()
	return func() tea.Msg {
		c, ok := <-completions
		if !ok {
			return nil
		}
		return completionMsg(c)
	}
}
