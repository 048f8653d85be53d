// Package metrics provides Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicksTotal counts scheduler ticks.
	TicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_ticks_total",
			Help: "Total scheduler ticks executed",
		},
	)

	// GenerationOutcomes counts per-chat generation outcomes.
	GenerationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_outcomes_total",
			Help: "Per-chat generation cycle outcomes",
		},
		[]string{"outcome"},
	)

	// DecisionsTotal counts operator decisions.
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decisions_total",
			Help: "Operator decisions applied",
		},
		[]string{"decision", "result"},
	)

	// CompletionDuration tracks completion call duration.
	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "completion_duration_seconds",
			Help:    "Completion service call duration",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"status"},
	)
)

// Generation outcome label values.
const (
	OutcomeCreated   = "created"
	OutcomeUnchanged = "unchanged"
	OutcomeThrottled = "throttled"
	OutcomeNoReply   = "no_reply_needed"
	OutcomeFailed    = "failed"
)

// RecordGeneration records one per-chat generation outcome.
func RecordGeneration(outcome string) {
	GenerationOutcomes.WithLabelValues(outcome).Inc()
}

// RecordDecision records one operator decision attempt.
func RecordDecision(decision, result string) {
	DecisionsTotal.WithLabelValues(decision, result).Inc()
}

// RecordCompletion records one completion call.
func RecordCompletion(status string, seconds float64) {
	CompletionDuration.WithLabelValues(status).Observe(seconds)
}
