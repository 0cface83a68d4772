package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(stageRuns.WithLabelValues("select"))
	RecordStage("select")
	RecordStage("select")
	assert.Equal(t, before+2, testutil.ToFloat64(stageRuns.WithLabelValues("select")))

	gens := testutil.ToFloat64(generations)
	RecordGeneration()
	assert.Equal(t, gens+1, testutil.ToFloat64(generations))

	stale := testutil.ToFloat64(asyncResults.WithLabelValues("stale"))
	adopted := testutil.ToFloat64(asyncResults.WithLabelValues("adopted"))
	RecordAsyncResult(false)
	RecordAsyncResult(true)
	assert.Equal(t, stale+1, testutil.ToFloat64(asyncResults.WithLabelValues("stale")))
	assert.Equal(t, adopted+1, testutil.ToFloat64(asyncResults.WithLabelValues("adopted")))

	pending := testutil.ToFloat64(suggestions.WithLabelValues("pending"))
	RecordSuggest("pending")
	assert.Equal(t, pending+1, testutil.ToFloat64(suggestions.WithLabelValues("pending")))

	ObserveGenerate(3 * time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(generateDuration))
}
