package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initProtocolMetrics() {
	r.MeetingsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "pipeswarm_meetings_total",
			Help: "Total number of meetings processed",
		},
	)

	r.MeetingSize = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeswarm_meeting_size",
			Help:    "Number of agents per meeting",
			Buckets: []float64{2, 3, 4, 6, 8, 12, 16, 32},
		},
	)

	r.ElectionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeswarm_elections_total",
			Help: "Leader elections by outcome (changed: some member adopted a new leader)",
		},
		[]string{"outcome"},
	)

	r.PortRelabelsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "pipeswarm_port_relabels_total",
			Help: "Port tables rewritten by synchronization",
		},
	)

	r.TasksAssignedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "pipeswarm_tasks_assigned_total",
			Help: "Tasks handed out at meetings",
		},
	)

	r.InvariantViolationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeswarm_invariant_violations_total",
			Help: "Protocol invariant violations by check",
		},
		[]string{"check"},
	)
}
