package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records sign-in and sign-up attempts by action and result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botspace_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"action", "result"},
	)

	// SessionsCreated counts issued sessions.
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "botspace_sessions_created_total",
			Help: "Total number of sessions issued",
		},
	)

	// SessionsRotated counts sessions deactivated to honour the per-user active cap.
	SessionsRotated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "botspace_sessions_rotated_total",
			Help: "Total number of sessions deactivated by rotation",
		},
	)

	// SessionChecks records session validations by source (cache|database) and result.
	SessionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botspace_session_checks_total",
			Help: "Total number of session validations",
		},
		[]string{"source", "result"},
	)

	// ActiveSessions tracks sessions in ACTIVE status that have not expired.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "botspace_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "botspace_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
