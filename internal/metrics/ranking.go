package metrics

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ranking metrics exported to Prometheus. The "mode" label is search or recommend.
var (
	RankingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_requests_total",
			Help: "Total number of ranking requests",
		},
		[]string{"mode"},
	)

	RankingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranking_duration_seconds",
			Help:    "Time spent scoring and assembling a ranked list",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"mode"},
	)

	RankingResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_results_total",
			Help: "Total number of items returned by ranking",
		},
		[]string{"mode"},
	)

	RankingColdStartsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_cold_starts_total",
			Help: "Recommendations served from the popularity fallback",
		},
	)

	RankingErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_errors_total",
			Help: "Total number of failed ranking requests",
		},
		[]string{"mode", "error_type"},
	)

	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_songs",
			Help: "Number of songs in the most recently loaded catalog snapshot",
		},
	)
)

// RankingMetric describes one finished ranking request
type RankingMetric struct {
	Mode        string
	ResultCount int
	CatalogSize int
	Duration    time.Duration
	ColdStart   bool
	Err         error
}

// RankingStats keeps process-local counters alongside the Prometheus series
type RankingStats struct {
	Requests   int64
	Results    int64
	ColdStarts int64
	Errors     int64
}

var rankingStats RankingStats

// RecordRanking records a ranking request
func RecordRanking(m RankingMetric) {
	atomic.AddInt64(&rankingStats.Requests, 1)
	RankingRequestsTotal.WithLabelValues(m.Mode).Inc()

	if m.Err != nil {
		atomic.AddInt64(&rankingStats.Errors, 1)
		RankingErrorsTotal.WithLabelValues(m.Mode, errorType(m.Err)).Inc()
		return
	}

	atomic.AddInt64(&rankingStats.Results, int64(m.ResultCount))
	if m.ColdStart {
		atomic.AddInt64(&rankingStats.ColdStarts, 1)
		RankingColdStartsTotal.Inc()
	}

	CatalogSize.Set(float64(m.CatalogSize))
	RankingDuration.WithLabelValues(m.Mode).Observe(m.Duration.Seconds())
	RankingResultsTotal.WithLabelValues(m.Mode).Add(float64(m.ResultCount))
}

// GetRankingStats returns a copy of the process-local counters
func GetRankingStats() RankingStats {
	return RankingStats{
		Requests:   atomic.LoadInt64(&rankingStats.Requests),
		Results:    atomic.LoadInt64(&rankingStats.Results),
		ColdStarts: atomic.LoadInt64(&rankingStats.ColdStarts),
		Errors:     atomic.LoadInt64(&rankingStats.Errors),
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "failed"
	}
}
