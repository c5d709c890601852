package equipment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridtwin/gridtwin/pkg/types"
)

func newTransformer(t *testing.T) Model {
	t.Helper()
	m, err := ForType(newTestRegistry(t), types.TypeTransformer)
	require.NoError(t, err)
	return m
}

func TestTransformerThermalRunawayScenario(t *testing.T) {
	m := newTransformer(t)

	st := m.Baseline().Merged(types.ParameterState{
		"windingTemperature": 140.0,
		"hotspotTemperature": 150.0,
		"hydrogenPPM":        400.0,
	})
	final := stepN(m, st, 24, newTestRand())

	// an overheated unit must not cool back to the load curve inside one day
	assert.Greater(t, final.NumberOr("windingTemperature", 0), 115.0)
	assert.Greater(t, final.NumberOr("hydrogenPPM", 0), 400.0, "gassing continues while hot")

	faults := m.PredictFaults(final, 24, newTestRand())
	byName := map[string]types.FaultPrediction{}
	for _, f := range faults {
		byName[f.FaultType] = f
	}

	thermal, ok := byName["Thermal Overload"]
	require.True(t, ok, "expected a thermal fault, got %v", faults)
	assert.Equal(t, types.SeverityHigh, thermal.Severity)
	assert.NotEmpty(t, thermal.RecommendedAction)

	gas, ok := byName["Gas Accumulation"]
	require.True(t, ok, "expected a gassing fault, got %v", faults)
	assert.Equal(t, types.SeverityHigh, gas.Severity)

	pack := m.Score(final)
	assert.Less(t, pack.ComponentHealth, 0.5)
	assert.Greater(t, pack.ComponentHealth, 0.1, "health floor sanity")
	assert.Greater(t, pack.TemperatureSeverity, 0.5)
	assert.Greater(t, pack.AbnormalDGA, 0.3)
}

func TestTransformerScoreMonotonicInHotspot(t *testing.T) {
	m := newTransformer(t)

	prev := 1.0
	for _, hotspot := range []float64{80, 100, 120, 140, 160} {
		st := m.Baseline().Merged(types.ParameterState{"hotspotTemperature": hotspot})
		health := m.Score(st).ComponentHealth
		assert.LessOrEqual(t, health, prev, "hotspot %.0f", hotspot)
		prev = health
	}
}

func TestTransformerDeriveSignals(t *testing.T) {
	m := newTransformer(t)

	t.Run("capacity cascade", func(t *testing.T) {
		out := m.DeriveSignals(&types.AssetSpecification{RatedCapacityMVA: 400})
		assert.InDelta(t, 140.0, out.NumberOr("loadPercent", 0), 1e-9)
		assert.InDelta(t, 84.0, out.NumberOr("oilTemperature", 0), 1e-9)
		assert.InDelta(t, 103.0, out.NumberOr("windingTemperature", 0), 1e-9)
		assert.InDelta(t, 123.0, out.NumberOr("hotspotTemperature", 0), 1e-9)
	})

	t.Run("condition label", func(t *testing.T) {
		out := m.DeriveSignals(&types.AssetSpecification{Condition: "excellent"})
		assert.InDelta(t, 64.6, out.NumberOr("dielectricStrength", 0), 1e-9)
		assert.InDelta(t, 17.04, out.NumberOr("moisturePPM", 0), 1e-9)
	})

	t.Run("unknown condition label uses default", func(t *testing.T) {
		out := m.DeriveSignals(&types.AssetSpecification{Condition: "weathered"})
		assert.InDelta(t, 58.0, out.NumberOr("dielectricStrength", 0), 1e-9)
		assert.InDelta(t, 19.2, out.NumberOr("moisturePPM", 0), 1e-9)
	})

	t.Run("chemistry passthrough", func(t *testing.T) {
		out := m.DeriveSignals(&types.AssetSpecification{
			Chemistry: &types.DGAChemistry{HydrogenPPM: 400, AcetylenePPM: 20},
		})
		assert.Equal(t, 400.0, out["hydrogenPPM"])
		assert.Equal(t, 20.0, out["acetylenePPM"])
		assert.NotContains(t, out, "methanePPM")
	})

	t.Run("install year", func(t *testing.T) {
		out := m.DeriveSignals(&types.AssetSpecification{InstallYear: 2005})
		assert.InDelta(t, 0.5, out.NumberOr("agingFactor", 0), 1e-9)
	})
}

func TestTransformerStepClampsExtremes(t *testing.T) {
	m := newTransformer(t)

	st := m.Baseline().Merged(types.ParameterState{
		"hydrogenPPM":    1e6,
		"moisturePPM":    100.0,
		"oilTemperature": 1e4,
	})
	next := m.Step(st, 0.5, 24, newTestRand())

	assert.LessOrEqual(t, next.NumberOr("hydrogenPPM", 0), 5000.0)
	moisture := next.NumberOr("moisturePPM", 0)
	assert.GreaterOrEqual(t, moisture, 8.0)
	assert.LessOrEqual(t, moisture, 26.0)
	assert.LessOrEqual(t, next.NumberOr("oilTemperature", 0), 120.0)
	assert.Equal(t, 0.5, next.NumberOr("agingFactor", 0), "aging is static within a run")
}
