// Package metrics exposes Prometheus counters for the match engine.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// stageRuns counts pipeline stage executions by stage name
	stageRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linecomp_pipeline_stage_runs_total",
			Help: "Total pipeline stage executions by stage",
		},
		[]string{"stage"},
	)

	// generations counts generation id bumps
	generations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linecomp_generations_total",
			Help: "Total match regenerations requested",
		},
	)

	// asyncResults counts async match results by outcome
	asyncResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linecomp_async_results_total",
			Help: "Total async match results by outcome (adopted, stale)",
		},
		[]string{"outcome"},
	)

	// suggestions counts suggestion requests by path taken
	suggestions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linecomp_suggest_requests_total",
			Help: "Total suggestion requests by path (sync, pending, empty)",
		},
		[]string{"path"},
	)

	// generateDuration tracks generator latency
	generateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linecomp_generate_duration_seconds",
			Help:    "Time spent in match generators",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
	)
)

// RecordStage increments the run counter for a pipeline stage.
func RecordStage(stage string) {
	stageRuns.WithLabelValues(stage).Inc()
}

// RecordGeneration increments the generation counter.
func RecordGeneration() {
	generations.Inc()
}

// RecordAsyncResult records whether an async result was adopted.
func RecordAsyncResult(adopted bool) {
	outcome := "stale"
	if adopted {
		outcome = "adopted"
	}
	asyncResults.WithLabelValues(outcome).Inc()
}

// RecordSuggest records which suggestion path was taken.
func RecordSuggest(path string) {
	suggestions.WithLabelValues(path).Inc()
}

// ObserveGenerate records how long a generate stage took.
func ObserveGenerate(d time.Duration) {
	generateDuration.Observe(d.Seconds())
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
