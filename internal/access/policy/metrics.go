// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package policy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for permission decisions.
var (
	// evaluateDuration tracks the latency of Check() calls, store fetches
	// included.
	evaluateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docgate_evaluate_duration_seconds",
		Help:    "Histogram of permission check latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// decisionsTotal counts decisions by outcome. The outcome label is
	// "allow", "deny", "default_deny", or "deleted".
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docgate_decisions_total",
		Help: "Total number of permission decisions",
	}, []string{"outcome"})
)

// recordDecisionMetrics records metrics for a completed check.
func recordDecisionMetrics(duration time.Duration, outcome string) {
	evaluateDuration.Observe(duration.Seconds())
	decisionsTotal.WithLabelValues(outcome).Inc()
}

// decisionOutcome maps a decision message to its metrics label.
func decisionOutcome(allowed bool, message string) string {
	switch {
	case allowed:
		return "allow"
	case message == msgDenyDeleted:
		return "deleted"
	case message == msgDefaultDeny:
		return "default_deny"
	default:
		return "deny"
	}
}
