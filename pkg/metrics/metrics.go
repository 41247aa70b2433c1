package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorafrica_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// EOITransitions counts expression-of-interest status transitions.
	EOITransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorafrica_eoi_transitions_total",
			Help: "Total number of expression-of-interest status transitions",
		},
		[]string{"status"},
	)

	// InviteTransitions counts invite status transitions.
	InviteTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorafrica_invite_transitions_total",
			Help: "Total number of invite status transitions",
		},
		[]string{"status"},
	)

	// ActiveMentorships tracks currently active mentorship pairings.
	ActiveMentorships = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mentorafrica_active_mentorships",
			Help: "Number of active mentorships",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentorafrica_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
