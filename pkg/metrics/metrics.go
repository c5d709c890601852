// Package metrics exposes the service's Prometheus instrumentation. A
// Registry is created once at startup and shared by the HTTP server; it is
// never registered globally so tests can create as many as they want.
package metrics

import "time"

// RecordHTTPRequest records an HTTP request
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordSimulation records one simulation run
func (r *Registry) RecordSimulation(equipmentType, status string, duration time.Duration) {
	r.SimulationsTotal.WithLabelValues(equipmentType, status).Inc()
	r.SimulationDuration.WithLabelValues(equipmentType).Observe(duration.Seconds())
}

// RecordHealthScore records the overall health score of a completed run
func (r *Registry) RecordHealthScore(equipmentType string, overall int) {
	r.SimulationHealthScore.WithLabelValues(equipmentType).Observe(float64(overall))
}

// RecordPredictedFault records a single predicted fault
func (r *Registry) RecordPredictedFault(equipmentType, severity string) {
	r.PredictedFaultsTotal.WithLabelValues(equipmentType, severity).Inc()
}
