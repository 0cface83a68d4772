// Package suggest produces the inline suggestion shown after the cursor.
// Suggestions come from command history or from the first completion match
// for the word being typed, in a configurable order.
package suggest

import (
	"strings"
	"sync"

	"github.com/atinylittleshell/linecomp/internal/history"
	"github.com/atinylittleshell/linecomp/internal/matches"
	"github.com/atinylittleshell/linecomp/internal/words"
	"go.uber.org/zap"
)

// Source indicates where a suggestion came from.
type Source int

const (
	SourceNone Source = iota
	SourceHistory
	SourceCompletion
)

// String returns the string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceNone:
		return "none"
	case SourceHistory:
		return "history"
	case SourceCompletion:
		return "completion"
	default:
		return "unknown"
	}
}

// HistorySource looks up previously submitted lines.
type HistorySource interface {
	GetRecentEntriesByPrefix(prefix string, limit int) ([]history.HistoryEntry, error)
}

// Suggester implements session.SuggestHost.
type Suggester struct {
	strategies []string
	history    HistorySource
	executor   *Executor
	logger     *zap.Logger

	mu           sync.RWMutex
	generationID uint32
	input        string
	suggestion   string
	source       Source
	pending      bool
}

// Config holds configuration for creating a Suggester.
type Config struct {
	// Strategies lists sources in priority order: "history", "completion".
	Strategies []string

	// History is consulted by the "history" strategy. Optional.
	History HistorySource

	// Executor generates matches when the editor reports them as pending.
	// Without one, pending suggestions wait for the editor to generate.
	Executor *Executor

	// Logger for debug output.
	Logger *zap.Logger
}

// New creates a Suggester.
func New(config Config) *Suggester {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	strategies := config.Strategies
	if len(strategies) == 0 {
		strategies = []string{"history", "completion"}
	}

	return &Suggester{
		strategies: strategies,
		history:    config.History,
		executor:   config.Executor,
		logger:     logger,
	}
}

// CanSuggest reports whether line can be suggested for: it must have some
// text and the cursor must be at its end.
func (s *Suggester) CanSuggest(line *words.LineState) bool {
	return strings.TrimSpace(line.Line) != "" && int(line.Cursor) == len(line.Line)
}

// Suggest updates the suggestion for lines. A nil store means matches are
// still to be generated for generationID; an explicitly empty one means the
// line must not be suggested for.
func (s *Suggester) Suggest(lines words.LineStates, m *matches.Store, generationID uint32) {
	line := lines.Last()

	s.mu.Lock()
	defer s.mu.Unlock()

	if generationID < s.generationID {
		s.logger.Debug("discarding stale suggestion request",
			zap.Uint32("generation_id", generationID),
			zap.Uint32("current", s.generationID),
		)
		return
	}
	s.generationID = generationID
	s.input = line.Line
	s.pending = false

	if m != nil && m.IsExplicitlyEmpty() {
		s.setLocked("", SourceNone)
		return
	}

	for _, strategy := range s.strategies {
		switch strategy {
		case "history":
			if suggestion := s.fromHistory(line.Line); suggestion != "" {
				s.setLocked(suggestion, SourceHistory)
				return
			}
		case "completion":
			if m == nil {
				s.pending = true
				// Keep showing the previous suggestion while it still fits.
				if !strings.HasPrefix(s.suggestion, line.Line) || s.suggestion == line.Line {
					s.setLocked("", SourceNone)
				}
				if s.executor != nil {
					s.executor.Submit(generationID, lines)
				}
				return
			}
			if suggestion := fromMatches(line, m); suggestion != "" {
				s.setLocked(suggestion, SourceCompletion)
				return
			}
		}
	}

	s.setLocked("", SourceNone)
}

func (s *Suggester) setLocked(suggestion string, source Source) {
	if suggestion != s.suggestion {
		s.logger.Debug("suggestion changed",
			zap.String("input", s.input),
			zap.String("suggestion", suggestion),
			zap.Stringer("source", source),
		)
	}
	s.suggestion = suggestion
	s.source = source
}

func (s *Suggester) fromHistory(input string) string {
	if s.history == nil {
		return ""
	}
	entries, err := s.history.GetRecentEntriesByPrefix(input, 1)
	if err != nil {
		s.logger.Debug("history lookup failed", zap.Error(err))
		return ""
	}
	if len(entries) == 0 || len(entries[0].Command) <= len(input) {
		return ""
	}
	return entries[0].Command
}

// fromMatches extends the line with the rest of the first match.
func fromMatches(line *words.LineState, m *matches.Store) string {
	if m.Len() == 0 {
		return ""
	}
	typed := line.EndWordText()
	match := m.Match(0)
	if len(match) <= len(typed) || !strings.EqualFold(match[:len(typed)], typed) {
		return ""
	}
	return line.Line + match[len(typed):]
}

// Suggestion returns the suggested line, or an empty string.
func (s *Suggester) Suggestion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suggestion
}

// Source returns where the current suggestion came from.
func (s *Suggester) Source() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Pending reports whether a suggestion is waiting for matches.
func (s *Suggester) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// GenerationID returns the generation the suggestion was made for.
func (s *Suggester) GenerationID() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generationID
}

// Remainder returns the part of the suggestion that follows input.
func (s *Suggester) Remainder(input string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.suggestion == "" || !strings.HasPrefix(s.suggestion, input) {
		return ""
	}
	return s.suggestion[len(input):]
}

// Clear drops the current suggestion.
func (s *Suggester) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestion = ""
	s.source = SourceNone
	s.pending = false
	s.input = ""
}
