package session

import (
	"github.com/atinylittleshell/linecomp/internal/matches"
	"github.com/atinylittleshell/linecomp/internal/metrics"
	"github.com/atinylittleshell/linecomp/internal/recognizer"
	"go.uber.org/zap"
)

// TrySuggest offers the host a suggestion for the current line. Matches are
// handed over directly when they can be produced without generating, and
// otherwise the host is told a suggestion is pending.
func (e *Editor) TrySuggest() {
	e.trySuggest(false)
}

func (e *Editor) trySuggest(maskVolatile bool) {
	if !e.settings.Autosuggest.Enable || e.host == nil || !e.flags.Editing() {
		return
	}

	line := e.lines.Last()

	// Probing network shares and unreachable drives can stall for seconds.
	if recognizer.IsSlowPath(line.EndWordText()) {
		metrics.RecordSuggest("empty")
		e.host.Suggest(e.lines, matches.Empty(), e.generationID)
		return
	}

	if !e.host.CanSuggest(line) {
		return
	}

	volatile := e.store.IsVolatile() && !maskVolatile
	if !e.settings.Autosuggest.Async || (!e.flags.NeedsGenerate() && !volatile) {
		e.forcePrefix = true
		e.UpdateMatches()
		e.forcePrefix = false

		metrics.RecordSuggest("sync")
		e.host.Suggest(e.lines, e.store, e.generationID)
		return
	}

	metrics.RecordSuggest("pending")
	e.host.Suggest(e.lines, nil, e.generationID)
}

// NotifyMatchesReady delivers matches generated for generationID. They
// replace the live matches only if no newer generation was requested since;
// otherwise they are dropped. Either way the suggestion is refreshed. It
// reports whether m was adopted.
func (e *Editor) NotifyMatchesReady(generationID uint32, m *matches.Store) bool {
	adopted := m != nil && e.flags.Editing() && generationID == e.generationID
	if adopted {
		e.store.Transfer(m)
		e.store.SetVolatile(false)
		e.flags.clear(FlagGenerate)
		e.flags.set(FlagSelect)
	} else {
		e.logger.Debug("dropped stale matches",
			zap.Uint32("generation_id", generationID),
			zap.Uint32("current", e.generationID),
		)
	}
	metrics.RecordAsyncResult(adopted)

	e.trySuggest(true)
	return adopted
}
