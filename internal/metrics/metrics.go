// Package metrics exposes Prometheus collectors for the crawler.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	crawlPagesTotal          *prometheus.CounterVec
	crawlSummariesTotal      *prometheus.CounterVec
	crawlHydrationBatches    *prometheus.CounterVec
	crawlHydrationBatchSize  *prometheus.HistogramVec
	crawlHydratedTotal       *prometheus.CounterVec
	crawlResultsWrittenTotal *prometheus.CounterVec
	crawlCursor              *prometheus.GaugeVec
	crawlBufferedCandidates  *prometheus.GaugeVec
	crawlRunsTotal           *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		crawlPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reposcan_pages_total",
				Help: "Total number of enumeration pages fetched, labeled by source.",
			},
			[]string{"source"},
		)

		crawlSummariesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reposcan_summaries_total",
				Help: "Total number of repository summaries seen, labeled by source and kind (fork, candidate).",
			},
			[]string{"source", "kind"},
		)

		crawlHydrationBatches = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reposcan_hydration_batches_total",
				Help: "Total number of hydration calls, labeled by source.",
			},
			[]string{"source"},
		)

		crawlHydrationBatchSize = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reposcan_hydration_batch_size",
				Help:    "Histogram of ids sent per hydration call.",
				Buckets: []float64{1, 10, 25, 50, 75, 100},
			},
			[]string{"source"},
		)

		crawlHydratedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reposcan_hydrated_total",
				Help: "Total number of hydration slots, labeled by source and outcome (present, absent).",
			},
			[]string{"source", "outcome"},
		)

		crawlResultsWrittenTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reposcan_results_written_total",
				Help: "Total number of result writes, labeled by source.",
			},
			[]string{"source"},
		)

		crawlCursor = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "reposcan_cursor",
				Help: "Last persisted enumeration cursor, labeled by source.",
			},
			[]string{"source"},
		)

		crawlBufferedCandidates = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "reposcan_buffered_candidates",
				Help: "Candidates waiting in the batch buffer, labeled by source.",
			},
			[]string{"source"},
		)

		crawlRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reposcan_runs_total",
				Help: "Total number of crawl runs, labeled by source and terminal state.",
			},
			[]string{"source", "state"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage records a fetched page and the fork/candidate split of its summaries.
func ObservePage(source string, forks, candidates int) {
	crawlPagesTotal.WithLabelValues(source).Inc()
	if forks > 0 {
		crawlSummariesTotal.WithLabelValues(source, "fork").Add(float64(forks))
	}
	if candidates > 0 {
		crawlSummariesTotal.WithLabelValues(source, "candidate").Add(float64(candidates))
	}
}

// ObserveHydration records one hydration call.
func ObserveHydration(source string, requested, present, absent int) {
	crawlHydrationBatches.WithLabelValues(source).Inc()
	crawlHydrationBatchSize.WithLabelValues(source).Observe(float64(requested))
	if present > 0 {
		crawlHydratedTotal.WithLabelValues(source, "present").Add(float64(present))
	}
	if absent > 0 {
		crawlHydratedTotal.WithLabelValues(source, "absent").Add(float64(absent))
	}
}

// ObserveResultWritten increments the result write counter.
func ObserveResultWritten(source string) {
	crawlResultsWrittenTotal.WithLabelValues(source).Inc()
}

// SetCursor records the last persisted cursor.
func SetCursor(source string, cursor int64) {
	crawlCursor.WithLabelValues(source).Set(float64(cursor))
}

// SetBuffered records the current buffer length.
func SetBuffered(source string, n int) {
	crawlBufferedCandidates.WithLabelValues(source).Set(float64(n))
}

// ObserveRun increments the run counter for the given terminal state.
func ObserveRun(source, state string) {
	crawlRunsTotal.WithLabelValues(source, state).Inc()
}
