package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// Simulation Metrics
	TurnsTotal     prometheus.Counter
	TurnDuration   prometheus.Histogram
	Coverage       prometheus.Gauge
	AgentsByRole   *prometheus.GaugeVec
	AgentsByStatus *prometheus.GaugeVec
	DeadEndsTotal  *prometheus.CounterVec
	RunsTotal      *prometheus.CounterVec
	RunTurns       prometheus.Histogram

	// Protocol Metrics
	MeetingsTotal            prometheus.Counter
	MeetingSize              prometheus.Histogram
	ElectionsTotal           *prometheus.CounterVec
	PortRelabelsTotal        prometheus.Counter
	TasksAssignedTotal       prometheus.Counter
	InvariantViolationsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initSimulationMetrics()
	r.initProtocolMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
