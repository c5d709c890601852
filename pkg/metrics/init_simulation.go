package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.SimulationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridtwin_simulations_total",
			Help: "Total number of simulation runs",
		},
		[]string{"type", "status"},
	)

	r.SimulationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridtwin_simulation_duration_seconds",
			Help:    "Wall-clock time spent executing a simulation run",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"type"},
	)

	r.SimulationHealthScore = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridtwin_simulation_health_score",
			Help:    "Overall health score produced by simulation runs",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"type"},
	)

	r.PredictedFaultsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridtwin_predicted_faults_total",
			Help: "Total number of faults predicted, by severity",
		},
		[]string{"type", "severity"},
	)
}
