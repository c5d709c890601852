package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the service
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Simulation Metrics
	SimulationsTotal      *prometheus.CounterVec
	SimulationDuration    *prometheus.HistogramVec
	SimulationHealthScore *prometheus.HistogramVec
	PredictedFaultsTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initHTTPMetrics()
	r.initSimulationMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
