package equipment

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridtwin/gridtwin/pkg/registry"
	"github.com/gridtwin/gridtwin/pkg/types"
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(registry.DefaultTuning())
	require.NoError(t, err)
	return reg
}

func newTestRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 13))
}

// stepN runs the stepper the way the engine does: steps ticks with progress
// i/steps, one shared rng.
func stepN(m Model, st types.ParameterState, steps int, rng *rand.Rand) types.ParameterState {
	for i := 1; i <= steps; i++ {
		st = m.Step(st, float64(i)/float64(steps), float64(steps), rng)
	}
	return st
}

func TestForTypeCoversAllTypes(t *testing.T) {
	reg := newTestRegistry(t)
	for _, et := range types.AllEquipmentTypes() {
		m, err := ForType(reg, et)
		require.NoError(t, err, et)
		assert.Equal(t, et, m.Type())
		assert.NotEmpty(t, m.Baseline())
	}
}

func TestForTypeUnknown(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := ForType(reg, types.EquipmentType("relay"))
	require.Error(t, err)
	var cfgErr *registry.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestStepPreservesKeysAndPassesThroughExtras(t *testing.T) {
	reg := newTestRegistry(t)
	for _, et := range types.AllEquipmentTypes() {
		t.Run(string(et), func(t *testing.T) {
			m, err := ForType(reg, et)
			require.NoError(t, err)

			st := m.Baseline().Merged(types.ParameterState{
				"customSensorReading": 42.5,
				"panelStatus":         "OK",
			})
			next := m.Step(st, 0.5, 24, newTestRand())

			for key := range st {
				assert.Contains(t, next, key, "key %q dropped", key)
			}
			assert.Equal(t, 42.5, next["customSensorReading"])
			assert.Equal(t, "OK", next["panelStatus"])
		})
	}
}

func TestStepDeterministicForEqualSeeds(t *testing.T) {
	reg := newTestRegistry(t)
	for _, et := range types.AllEquipmentTypes() {
		t.Run(string(et), func(t *testing.T) {
			m, err := ForType(reg, et)
			require.NoError(t, err)

			a := stepN(m, m.Baseline(), 24, rand.New(rand.NewPCG(3, 9)))
			b := stepN(m, m.Baseline(), 24, rand.New(rand.NewPCG(3, 9)))
			assert.Equal(t, a, b)
		})
	}
}

func TestStepNeverProducesNonFinite(t *testing.T) {
	reg := newTestRegistry(t)
	for _, et := range types.AllEquipmentTypes() {
		t.Run(string(et), func(t *testing.T) {
			m, err := ForType(reg, et)
			require.NoError(t, err)

			st := stepN(m, m.Baseline(), 200, newTestRand())
			for key, v := range st {
				f, ok := v.(float64)
				if !ok {
					continue
				}
				assert.False(t, math.IsNaN(f) || math.IsInf(f, 0), "%s is not finite", key)
			}
		})
	}
}

func TestScoreIdempotent(t *testing.T) {
	reg := newTestRegistry(t)
	for _, et := range types.AllEquipmentTypes() {
		t.Run(string(et), func(t *testing.T) {
			m, err := ForType(reg, et)
			require.NoError(t, err)

			st := stepN(m, m.Baseline(), 12, newTestRand())
			assert.Equal(t, m.Score(st), m.Score(st))
		})
	}
}

func TestScoreBaselineIsHealthy(t *testing.T) {
	reg := newTestRegistry(t)
	for _, et := range types.AllEquipmentTypes() {
		t.Run(string(et), func(t *testing.T) {
			m, err := ForType(reg, et)
			require.NoError(t, err)

			final := stepN(m, m.Baseline(), 24, newTestRand())
			pack := m.Score(final)
			assert.GreaterOrEqual(t, pack.ComponentHealth, 0.7, "baseline run should stay healthy")
			assert.LessOrEqual(t, pack.ComponentHealth, 1.0)
			assert.Empty(t, m.PredictFaults(final, 24, newTestRand()), "baseline run should predict no faults")
		})
	}
}

func TestAbnormalDGAOnlyForTransformers(t *testing.T) {
	reg := newTestRegistry(t)
	for _, et := range types.AllEquipmentTypes() {
		if et == types.TypeTransformer {
			continue
		}
		m, err := ForType(reg, et)
		require.NoError(t, err)
		assert.Zero(t, m.Score(m.Baseline()).AbnormalDGA, et)
	}
}

func TestDeriveSignalsNilSpec(t *testing.T) {
	reg := newTestRegistry(t)
	for _, et := range types.AllEquipmentTypes() {
		m, err := ForType(reg, et)
		require.NoError(t, err)
		assert.Empty(t, m.DeriveSignals(nil), et)
	}
}

func TestPredictFaultsProbabilityWindow(t *testing.T) {
	reg := newTestRegistry(t)
	tn := reg.Tuning()

	// absurd readings per type to force every rule past its ceiling
	extremes := map[types.EquipmentType]types.ParameterState{
		types.TypeTransformer: {
			"windingTemperature": 1e6, "hotspotTemperature": 1e6, "hydrogenPPM": 1e6,
			"dielectricStrength": -1e6, "oilLevelPercent": -1e6, "tapChangerWearPercent": 1e6,
		},
		types.TypeBayLine: {
			"powerFactor": -1.0, "busVoltageKV": 1e6, "thdPercent": 1e6,
			"conductorTempC": 1e6, "frequencyHz": 1e6,
		},
		types.TypeCircuitBreaker: {
			"sf6DensityPercent": -1e6, "operatingTimeMs": 1e6, "contactWearPercent": 1e6,
		},
		types.TypeIsolator: {
			"contactResistanceMicroOhm": 1e6, "motorTorquePercent": -1e6,
			"motorCurrentA": 1e6, "alignmentPercent": -1e6,
		},
		types.TypeBusbar: {
			"temperatureC": 1e6, "jointResistanceMicroOhm": 1e6, "currentA": 1e6,
		},
	}

	for et, readings := range extremes {
		t.Run(string(et), func(t *testing.T) {
			m, err := ForType(reg, et)
			require.NoError(t, err)

			faults := m.PredictFaults(m.Baseline().Merged(readings), 24, newTestRand())
			require.NotEmpty(t, faults)
			for _, f := range faults {
				assert.GreaterOrEqual(t, f.Probability, tn.ProbabilityFloor, f.FaultType)
				assert.LessOrEqual(t, f.Probability, tn.ProbabilityCeiling, f.FaultType)
				assert.GreaterOrEqual(t, f.TimeToFailureHours, 24*tn.TTFFloorFraction, f.FaultType)
				assert.LessOrEqual(t, f.TimeToFailureHours, 24*(tn.TTFFloorFraction+tn.TTFSpreadFraction), f.FaultType)
			}
		})
	}
}
