// Package metrics holds Prometheus instruments used across DocForge.  All
// collectors are registered with the global registry, so importing this
// package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PipelineTerminations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_terminations_total",
			Help: "Requests terminated by a pipeline stage, by stage and outcome.",
		},
		[]string{"stage", "outcome"},
	)

	SessionRefreshTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "session_refresh_total",
			Help: "Cumulative number of session token rotations.",
		})

	IdentityErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "identity_errors_total",
			Help: "Identity lookups degraded to anonymous by a service error.",
		})

	MaintenanceFailOpenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "maintenance_fail_open_total",
			Help: "Maintenance flag reads that failed and were treated as off.",
		})

	AIGenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_generations_total",
			Help: "Completed AI generations by provider.",
		},
		[]string{"provider"},
	)

	AIFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ai_fallbacks_total",
			Help: "Generations that fell through to a backup provider.",
		})
)

func init() {
	prometheus.MustRegister(
		PipelineTerminations,
		SessionRefreshTotal,
		IdentityErrorsTotal,
		MaintenanceFailOpenTotal,
		AIGenerationsTotal,
		AIFallbacksTotal,
	)
}
