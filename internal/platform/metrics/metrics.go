// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScoresComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crrs_scores_computed_total",
		Help: "CRRS scores computed and stored, by risk tier",
	}, []string{"tier"})

	ScoreComputeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crrs_score_compute_failures_total",
		Help: "CRRS computations aborted by a store or lock error",
	})

	ScoreComputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crrs_score_compute_duration_seconds",
		Help:    "Time to fetch signals, compute and upsert one score",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	ScoreValue = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crrs_score_value",
		Help:    "Distribution of computed CRRS values",
		Buckets: []float64{25, 50, 75, 100},
	})

	AnomaliesDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crrs_anomalies_detected_total",
		Help: "Anomalies found by the detector, by severity",
	}, []string{"severity"})

	ActionsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crrs_agent_actions_total",
		Help: "Agent actions executed, by action type and outcome",
	}, []string{"type", "outcome"})

	AgentRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crrs_agent_run_duration_seconds",
		Help:    "Duration of one agent run, by trigger",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"trigger"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crrs_notifications_total",
		Help: "Notification deliveries, by channel and status",
	}, []string{"channel", "status"})
)

// Outcome labels for ActionsExecuted.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)
