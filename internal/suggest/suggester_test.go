package suggest

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/atinylittleshell/linecomp/internal/history"
	"github.com/atinylittleshell/linecomp/internal/matches"
	"github.com/atinylittleshell/linecomp/internal/session"
	"github.com/atinylittleshell/linecomp/internal/words"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var _ session.SuggestHost = (*Suggester)(nil)

type mockHistory struct {
	mu       sync.Mutex
	commands []string
	err      error
	calls    int
}

func (m *mockHistory) GetRecentEntriesByPrefix(prefix string, limit int) ([]history.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var entries []history.HistoryEntry
	for i := len(m.commands) - 1; i >= 0 && len(entries) < limit; i-- {
		if len(m.commands[i]) >= len(prefix) && m.commands[i][:len(prefix)] == prefix {
			entries = append(entries, history.HistoryEntry{Command: m.commands[i]})
		}
	}
	return entries, nil
}

func (m *mockHistory) getCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type blockingGenerator struct {
	mu      sync.Mutex
	matches []string
	release chan struct{}
	calls   int
}

func (g *blockingGenerator) Generate(lines words.LineStates, b *matches.Builder) bool {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.release != nil {
		<-g.release
	}
	b.AddAll(g.matches, matches.TypeArg)
	return true
}

func (g *blockingGenerator) WordBreakInfo(line *words.LineState) words.BreakInfo {
	return words.BreakInfo{}
}

func (g *blockingGenerator) getCallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func linesFor(line string) words.LineStates {
	return words.NewCollector(words.CollectorConfig{}).Collect(line, uint(len(line)))
}

func selectedStore(ms ...string) *matches.Store {
	s := matches.NewStore()
	matches.NewBuilder(s).AddAll(ms, matches.TypeArg)
	s.SetCount(s.InfoCount())
	return s
}

func TestSuggester_CanSuggest(t *testing.T) {
	s := New(Config{})

	tests := []struct {
		line     string
		cursor   uint
		expected bool
	}{
		{"git chec", 8, true},
		{"git chec", 3, false},
		{"   ", 3, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.CanSuggest(&words.LineState{Line: tt.line, Cursor: tt.cursor}))
		})
	}
}

func TestSuggester_Strategies(t *testing.T) {
	hist := &mockHistory{commands: []string{"git checkout main", "git commit -m wip"}}

	tests := []struct {
		name       string
		strategies []string
		line       string
		store      *matches.Store
		expected   string
		source     Source
	}{
		{"history first", []string{"history", "completion"}, "git ch", selectedStore("cherry-pick"), "git checkout main", SourceHistory},
		{"completion first", []string{"completion", "history"}, "git ch", selectedStore("cherry-pick"), "git cherry-pick", SourceCompletion},
		{"falls back to completion", []string{"history", "completion"}, "git re", selectedStore("rebase"), "git rebase", SourceCompletion},
		{"history only", []string{"history"}, "git re", selectedStore("rebase"), "", SourceNone},
		{"completion keeps typed case", []string{"completion"}, "git RE", selectedStore("rebase"), "git REbase", SourceCompletion},
		{"match not longer than word", []string{"completion"}, "git rebase", selectedStore("rebase"), "", SourceNone},
		{"no matches", []string{"completion"}, "git x", matches.NewStore(), "", SourceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Config{Strategies: tt.strategies, History: hist, Logger: zaptest.NewLogger(t)})
			s.Suggest(linesFor(tt.line), tt.store, 10)
			assert.Equal(t, tt.expected, s.Suggestion())
			assert.Equal(t, tt.source, s.Source())
			assert.False(t, s.Pending())
		})
	}
}

func TestSuggester_ExplicitlyEmpty(t *testing.T) {
	hist := &mockHistory{commands: []string{`dir \\server\share\docs`}}
	s := New(Config{History: hist})

	s.Suggest(linesFor(`dir \\server\share\`), matches.Empty(), 3)
	assert.Equal(t, "", s.Suggestion())
	assert.Equal(t, 0, hist.getCallCount())
}

func TestSuggester_HistoryError(t *testing.T) {
	hist := &mockHistory{err: errors.New("db closed")}
	s := New(Config{History: hist, Logger: zaptest.NewLogger(t)})

	s.Suggest(linesFor("git re"), selectedStore("rebase"), 1)
	assert.Equal(t, "git rebase", s.Suggestion())
}

func TestSuggester_StaleRequestIgnored(t *testing.T) {
	s := New(Config{Strategies: []string{"completion"}})

	s.Suggest(linesFor("git re"), selectedStore("rebase"), 20)
	s.Suggest(linesFor("git "), selectedStore("reset"), 19)
	assert.Equal(t, "git rebase", s.Suggestion())
	assert.Equal(t, uint32(20), s.GenerationID())
}

func TestSuggester_PendingSubmitsGeneration(t *testing.T) {
	gen := &blockingGenerator{matches: []string{"checkout", "cherry-pick"}}
	x := NewExecutor(ExecutorConfig{Generator: gen, Logger: zaptest.NewLogger(t)})
	defer x.Close()

	s := New(Config{Strategies: []string{"completion"}, Executor: x})
	s.Suggest(linesFor("git chec"), nil, 42)
	assert.True(t, s.Pending())
	assert.Equal(t, "", s.Suggestion())

	select {
	case c := <-x.Completions():
		assert.Equal(t, uint32(42), c.GenerationID)
		assert.Equal(t, []string{"checkout", "cherry-pick"}, c.Store.Candidates())
	case <-time.After(2 * time.Second):
		t.Fatal("no completion delivered")
	}
}

func TestSuggester_PendingKeepsFittingSuggestion(t *testing.T) {
	s := New(Config{Strategies: []string{"completion"}})

	s.Suggest(linesFor("git ch"), selectedStore("checkout"), 1)
	require.Equal(t, "git checkout", s.Suggestion())

	s.Suggest(linesFor("git che"), nil, 2)
	assert.True(t, s.Pending())
	assert.Equal(t, "git checkout", s.Suggestion())
	assert.Equal(t, "ckout", s.Remainder("git che"))

	s.Suggest(linesFor("git co"), nil, 3)
	assert.Equal(t, "", s.Suggestion())
}

func TestSuggester_Clear(t *testing.T) {
	s := New(Config{Strategies: []string{"completion"}})
	s.Suggest(linesFor("git ch"), selectedStore("checkout"), 1)

	assert.Equal(t, "eckout", s.Remainder("git ch"))
	assert.Equal(t, "", s.Remainder("svn"))

	s.Clear()
	assert.Equal(t, "", s.Suggestion())
	assert.Equal(t, SourceNone, s.Source())
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "history", SourceHistory.String())
	assert.Equal(t, "completion", SourceCompletion.String())
	assert.Equal(t, "unknown", Source(9).String())
}
