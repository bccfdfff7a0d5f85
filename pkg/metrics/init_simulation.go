package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.TurnsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "pipeswarm_turns_total",
			Help: "Total number of simulated turns",
		},
	)

	r.TurnDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeswarm_turn_duration_seconds",
			Help:    "Wall-clock time spent computing one turn",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
	)

	r.Coverage = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeswarm_coverage_ratio",
			Help: "Fraction of network nodes visited by at least one agent",
		},
	)

	r.AgentsByRole = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pipeswarm_agents",
			Help: "Agents by role",
		},
		[]string{"role"},
	)

	r.AgentsByStatus = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pipeswarm_agents_by_status",
			Help: "Agents by traversal status",
		},
		[]string{"status"},
	)

	r.DeadEndsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeswarm_dead_ends_total",
			Help: "Turns an agent stayed idle because its policy found no move",
		},
		[]string{"policy"},
	)

	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeswarm_runs_total",
			Help: "Finished simulation runs by final state",
		},
		[]string{"state"},
	)

	r.RunTurns = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeswarm_run_turns",
			Help:    "Turns taken by finished runs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
}
