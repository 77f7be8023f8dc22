// Package metrics exposes Prometheus counters and histograms for the
// query, diff, and analysis entry points, grounded on the same
// promauto.With(reg) construction shape used elsewhere in the pack.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every metric this module records. Pass one instance
// into the components that need it; there is no package-level
// registry.
type Metrics struct {
	QueriesTotal       *prometheus.CounterVec
	QueryDuration      *prometheus.HistogramVec
	QueryMatchesTotal  *prometheus.HistogramVec
	DiffsTotal         *prometheus.CounterVec
	DiffDuration       prometheus.Histogram
	DiffDeltasTotal    *prometheus.CounterVec
	AnalysisRunsTotal  *prometheus.CounterVec
	AnalysisDuration   *prometheus.HistogramVec
	AnalysisItemsTotal *prometheus.CounterVec
	AnalysisSkipsTotal *prometheus.CounterVec
}

// New creates and registers every metric against reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		QueriesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avpolicy",
				Name:      "queries_total",
				Help:      "Total conjunctive queries run, by rule kind",
			},
			[]string{"kind"},
		),
		QueryDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "avpolicy",
				Name:      "query_duration_seconds",
				Help:      "Query evaluation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		QueryMatchesTotal: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "avpolicy",
				Name:      "query_matches",
				Help:      "Number of rules a query matched",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"kind"},
		),
		DiffsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avpolicy",
				Name:      "diffs_total",
				Help:      "Total diff runs, by outcome",
			},
			[]string{"outcome"}, // outcome=empty/nonempty
		),
		DiffDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "avpolicy",
				Name:      "diff_duration_seconds",
				Help:      "Diff run duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		DiffDeltasTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avpolicy",
				Name:      "diff_deltas_total",
				Help:      "Total deltas produced, by kind and form",
			},
			[]string{"kind", "form"},
		),
		AnalysisRunsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avpolicy",
				Name:      "analysis_runs_total",
				Help:      "Total analysis module runs, by module and outcome",
			},
			[]string{"module", "outcome"}, // outcome=ok/error/skipped
		),
		AnalysisDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "avpolicy",
				Name:      "analysis_duration_seconds",
				Help:      "Analysis module run duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"module"},
		),
		AnalysisItemsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avpolicy",
				Name:      "analysis_items_total",
				Help:      "Total items an analysis module reported",
			},
			[]string{"module"},
		),
		AnalysisSkipsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "avpolicy",
				Name:      "analysis_skips_total",
				Help:      "Total analysis modules skipped for an unmet requirement",
			},
			[]string{"module", "requirement"},
		),
	}
}
