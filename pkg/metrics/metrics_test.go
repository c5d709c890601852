package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	c, err := vec.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.Counter.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)

	assert.NotNil(t, r.HTTPRequestsTotal)
	assert.NotNil(t, r.HTTPRequestDuration)
	assert.NotNil(t, r.HTTPRequestsInFlight)
	assert.NotNil(t, r.SimulationsTotal)
	assert.NotNil(t, r.SimulationDuration)
	assert.NotNil(t, r.SimulationHealthScore)
	assert.NotNil(t, r.PredictedFaultsTotal)
	assert.NotNil(t, r.GetPrometheusRegistry())
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()

	r.RecordHTTPRequest("POST", "/api/simulate", "200", 100*time.Millisecond)
	r.RecordHTTPRequest("POST", "/api/simulate", "200", 200*time.Millisecond)
	r.RecordHTTPRequest("GET", "/api/equipment", "401", 5*time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, r.HTTPRequestsTotal, "POST", "/api/simulate", "200"))
	assert.Equal(t, 1.0, counterValue(t, r.HTTPRequestsTotal, "GET", "/api/equipment", "401"))
}

func TestRecordSimulation(t *testing.T) {
	r := NewRegistry()

	r.RecordSimulation("transformer", "ok", 12*time.Millisecond)
	r.RecordSimulation("transformer", "ok", 9*time.Millisecond)
	r.RecordSimulation("busbar", "error", time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, r.SimulationsTotal, "transformer", "ok"))
	assert.Equal(t, 1.0, counterValue(t, r.SimulationsTotal, "busbar", "error"))

	obs, err := r.SimulationDuration.GetMetricWithLabelValues("transformer")
	require.NoError(t, err)
	var m dto.Metric
	require.NoError(t, obs.(prometheus.Metric).Write(&m))
	assert.Equal(t, uint64(2), m.Histogram.GetSampleCount())
}

func TestRecordHealthScore(t *testing.T) {
	r := NewRegistry()

	r.RecordHealthScore("circuitBreaker", 83)
	r.RecordHealthScore("circuitBreaker", 41)

	obs, err := r.SimulationHealthScore.GetMetricWithLabelValues("circuitBreaker")
	require.NoError(t, err)
	var m dto.Metric
	require.NoError(t, obs.(prometheus.Metric).Write(&m))
	assert.Equal(t, uint64(2), m.Histogram.GetSampleCount())
	assert.Equal(t, 124.0, m.Histogram.GetSampleSum())
}

func TestRecordPredictedFault(t *testing.T) {
	r := NewRegistry()

	r.RecordPredictedFault("transformer", "high")
	r.RecordPredictedFault("transformer", "high")
	r.RecordPredictedFault("transformer", "critical")

	assert.Equal(t, 2.0, counterValue(t, r.PredictedFaultsTotal, "transformer", "high"))
	assert.Equal(t, 1.0, counterValue(t, r.PredictedFaultsTotal, "transformer", "critical"))
}

func TestRegistryGathers(t *testing.T) {
	r := NewRegistry()
	r.RecordHTTPRequest("GET", "/healthz", "200", time.Millisecond)
	r.RecordSimulation("isolator", "ok", time.Millisecond)

	families, err := r.GetPrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["gridtwin_http_requests_total"])
	assert.True(t, names["gridtwin_simulations_total"])
	assert.True(t, names["gridtwin_simulation_duration_seconds"])
}
