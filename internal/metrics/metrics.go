// Package metrics provides Prometheus metrics for the travel agent.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Labels never carry session or request identifiers.

var (
	// GuardVerdictsTotal counts content guard outcomes.
	GuardVerdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travel_agent",
		Name:      "guard_verdicts_total",
		Help:      "Content guard verdicts, by verdict and category.",
	}, []string{"verdict", "category"})

	// SessionResetsTotal counts session resets.
	SessionResetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travel_agent",
		Name:      "session_resets_total",
		Help:      "Session resets, by reason (security, manual, expired).",
	}, []string{"reason"})

	// ActiveSessions tracks the sessions seen by the last expiry sweep.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "travel_agent",
		Name:      "active_sessions",
		Help:      "Sessions held by the store after the last expiry sweep.",
	})

	// ClassifierRequestsTotal counts calls to the language model.
	ClassifierRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travel_agent",
		Name:      "classifier_requests_total",
		Help:      "Intent classifier calls, by outcome.",
	}, []string{"outcome"})

	// ClassifierLatency observes language model latency.
	ClassifierLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "travel_agent",
		Name:      "classifier_latency_seconds",
		Help:      "Latency of intent classifier calls.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	})

	// FunctionCallsTotal counts travel function executions.
	FunctionCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travel_agent",
		Name:      "function_calls_total",
		Help:      "Travel function executions, by function and outcome.",
	}, []string{"function", "outcome"})

	// RateLimitedTotal counts rejected requests.
	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travel_agent",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by rate limits, by limit.",
	}, []string{"limit"})

	// AuditEventsTotal counts guard audit events.
	AuditEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travel_agent",
		Name:      "audit_events_total",
		Help:      "Guard audit events, by result (written, dropped, failed).",
	}, []string{"result"})
)
