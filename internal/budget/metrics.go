package budget

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	diffsEmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stackdiff_diffs_emitted_total",
		Help: "Total number of stacked diffs emitted",
	})

	diffsTruncatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stackdiff_diffs_truncated_total",
		Help: "Number of emitted diffs cut to fit their allowance",
	})

	diffsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stackdiff_diffs_dropped_total",
		Help: "Number of candidate diffs dropped because the budget ran out",
	})

	diffsOversizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stackdiff_diffs_oversized_total",
		Help: "Number of pairs too large to diff",
	})

	diffDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stackdiff_diff_duration_seconds",
		Help:    "Duration of a single diff computation",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
)
