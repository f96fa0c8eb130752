// Package metrics регистрирует метрики Prometheus сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Исходы перехода состояния для метки outcome.
const (
	OutcomeApplied      = "applied"
	OutcomeNoop         = "noop"
	OutcomeUnauthorized = "unauthorized"
	OutcomeInvalidState = "invalid_state"
	OutcomeConflict     = "conflict"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
)

var (
	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payroll_transitions_total",
			Help: "Workflow transitions by entity, target state and outcome",
		},
		[]string{"entity", "to", "outcome"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payroll_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		},
		[]string{"method", "route", "code"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payroll_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(Transitions)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
}

// ObserveTransition учитывает исход перехода.
func ObserveTransition(entity, to, outcome string) {
	Transitions.WithLabelValues(entity, to, outcome).Inc()
}
