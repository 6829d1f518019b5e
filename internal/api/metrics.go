package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceoff_sessions_created_total",
		Help: "Ranking sessions created.",
	})
	metricSessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceoff_sessions_completed_total",
		Help: "Ranking sessions that reached their completion predicate.",
	})
	metricComparisonsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceoff_comparisons_recorded_total",
		Help: "Comparisons accepted and applied to ratings.",
	})
	metricComparisonsDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceoff_comparisons_duplicate_total",
		Help: "Comparison submissions ignored because the pair was already judged.",
	})
)
