package engine

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridtwin/gridtwin/pkg/equipment"
	"github.com/gridtwin/gridtwin/pkg/log"
	"github.com/gridtwin/gridtwin/pkg/registry"
	"github.com/gridtwin/gridtwin/pkg/types"
)

// the gap-recovery tests feed deliberately broken readings, silence the warnings
func init() {
	log.SetDefaultLogLevel(slog.LevelError)
}

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(registry.DefaultTuning())
	require.NoError(t, err)
	return reg
}

func seed(v uint64) *uint64 { return &v }

func TestRunTimelineLength(t *testing.T) {
	reg := newTestRegistry(t)
	for _, tc := range []struct {
		duration float64
		points   int
	}{
		{5, 13},  // floored at 12 steps
		{24, 25}, // one step per hour
		{100.7, 101},
	} {
		res, err := Run(context.Background(), reg, Request{
			EquipmentType: types.TypeBusbar,
			DurationHours: tc.duration,
			Seed:          seed(1),
		})
		require.NoError(t, err)
		require.Len(t, res.Timeline, tc.points, "duration %v", tc.duration)
		assert.Equal(t, 0.0, res.Timeline[0].Time)
		assert.Equal(t, tc.duration, res.Timeline[len(res.Timeline)-1].Time)
		for i := 1; i < len(res.Timeline); i++ {
			assert.Greater(t, res.Timeline[i].Time, res.Timeline[i-1].Time)
		}
	}
}

func TestRunDefaultsDuration(t *testing.T) {
	reg := newTestRegistry(t)
	res, err := Run(context.Background(), reg, Request{
		EquipmentType: types.TypeIsolator,
		Seed:          seed(2),
	})
	require.NoError(t, err)
	require.Len(t, res.Timeline, 25)
	assert.Equal(t, 24.0, res.Timeline[24].Time)
}

func TestRunUnknownType(t *testing.T) {
	reg := newTestRegistry(t)
	res, err := Run(context.Background(), reg, Request{EquipmentType: "relay", DurationHours: 24})
	require.Error(t, err)
	assert.Nil(t, res)
	var cfgErr *registry.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestRunFinalStateMatchesLastPoint(t *testing.T) {
	reg := newTestRegistry(t)
	res, err := Run(context.Background(), reg, Request{
		EquipmentType: types.TypeTransformer,
		DurationHours: 24,
		Seed:          seed(3),
	})
	require.NoError(t, err)
	last := res.Timeline[len(res.Timeline)-1]
	assert.Equal(t, last.State, res.FinalState)
	assert.Equal(t, last.HealthScore, res.HealthScores.Overall)
}

func TestRunDeterministicWithSeed(t *testing.T) {
	reg := newTestRegistry(t)
	req := Request{
		EquipmentType: types.TypeCircuitBreaker,
		LiveReadings:  map[string]any{"sf6PressureBar": 6.0},
		DurationHours: 48,
		Seed:          seed(99),
	}
	a, err := Run(context.Background(), reg, req)
	require.NoError(t, err)
	b, err := Run(context.Background(), reg, req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunUnseededRunsDiverge(t *testing.T) {
	reg := newTestRegistry(t)
	req := Request{EquipmentType: types.TypeBayLine, DurationHours: 24}
	a, err := Run(context.Background(), reg, req)
	require.NoError(t, err)
	b, err := Run(context.Background(), reg, req)
	require.NoError(t, err)
	assert.NotEqual(t, a.FinalState, b.FinalState)
}

func TestRunBaselineHealthyAllTypes(t *testing.T) {
	reg := newTestRegistry(t)
	for _, et := range types.AllEquipmentTypes() {
		res, err := Run(context.Background(), reg, Request{
			EquipmentType: et,
			DurationHours: 24,
			Seed:          seed(42),
		})
		require.NoError(t, err, et)
		assert.GreaterOrEqual(t, res.HealthScores.Overall, 70, "%s overall", et)
		assert.Empty(t, res.FaultPredictions, "%s faults", et)
		assert.Contains(t, res.Diagnosis, "No critical faults predicted", et)
		assert.Equal(t, 0.5, res.AgingFactor, et)
	}
}

func TestRunThermalRunawayScenario(t *testing.T) {
	reg := newTestRegistry(t)
	res, err := Run(context.Background(), reg, Request{
		EquipmentType: types.TypeTransformer,
		LiveReadings: map[string]any{
			"windingTemperature": 140,
			"hotspotTemperature": 150,
			"hydrogenPPM":        400,
		},
		DurationHours: 24,
		Seed:          seed(7),
	})
	require.NoError(t, err)

	assert.Less(t, res.HealthScores.Overall, 50)
	assert.Greater(t, res.HealthScores.Overall, 15)

	byType := map[string]types.FaultPrediction{}
	for _, f := range res.FaultPredictions {
		byType[f.FaultType] = f
		assert.GreaterOrEqual(t, f.Probability, 0.05)
		assert.LessOrEqual(t, f.Probability, 0.99)
		assert.GreaterOrEqual(t, f.TimeToFailureHours, 24*0.2)
		assert.LessOrEqual(t, f.TimeToFailureHours, 24*0.8)
	}
	thermal, ok := byType["Thermal Overload"]
	require.True(t, ok, "fault types: %v", res.FaultPredictions)
	assert.Equal(t, types.SeverityHigh, thermal.Severity)
	assert.GreaterOrEqual(t, thermal.Probability, 0.6)

	gas, ok := byType["Gas Accumulation"]
	require.True(t, ok, "fault types: %v", res.FaultPredictions)
	assert.GreaterOrEqual(t, gas.Probability, 0.7)

	assert.Contains(t, res.Diagnosis, "TRANSFORMER DIAGNOSTIC SUMMARY")
	assert.Contains(t, res.Diagnosis, "(Critical)")
	assert.Contains(t, res.Diagnosis, "Thermal Overload [high]")
}

func TestRunSF6LeakScenario(t *testing.T) {
	reg := newTestRegistry(t)
	res, err := Run(context.Background(), reg, Request{
		EquipmentType: types.TypeCircuitBreaker,
		LiveReadings:  map[string]any{"sf6DensityPercent": 80},
		DurationHours: 24,
		Seed:          seed(11),
	})
	require.NoError(t, err)

	var leak *types.FaultPrediction
	for i := range res.FaultPredictions {
		if res.FaultPredictions[i].FaultType == "SF6 Leakage" {
			leak = &res.FaultPredictions[i]
		}
	}
	require.NotNil(t, leak, "fault types: %v", res.FaultPredictions)
	assert.Equal(t, types.SeverityCritical, leak.Severity)
	assert.InDelta(t, 0.67, leak.Probability, 0.06)
	assert.NotEmpty(t, leak.Cause)

	// The leak keeps pressure from recovering to nominal.
	assert.Less(t, res.FinalState.NumberOr("sf6PressureBar", 99), 5.6)
}

func TestRunAssetSpecSeedsInitialState(t *testing.T) {
	reg := newTestRegistry(t)
	spec := &types.AssetSpecification{RatedCapacityMVA: 400}

	res, err := Run(context.Background(), reg, Request{
		EquipmentType: types.TypeTransformer,
		AssetSpec:     spec,
		DurationHours: 24,
		Seed:          seed(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 140.0, res.Timeline[0].State.NumberOr("loadPercent", -1))

	// Live readings win over derived signals.
	res, err = Run(context.Background(), reg, Request{
		EquipmentType: types.TypeTransformer,
		AssetSpec:     spec,
		LiveReadings:  map[string]any{"loadPercent": 50},
		DurationHours: 24,
		Seed:          seed(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.Timeline[0].State.NumberOr("loadPercent", -1))
}

func TestRunRecoversUnusableReadings(t *testing.T) {
	reg := newTestRegistry(t)
	res, err := Run(context.Background(), reg, Request{
		EquipmentType: types.TypeBusbar,
		LiveReadings: map[string]any{
			"currentA":     nil,
			"temperatureC": "NaN",
			"voltageKV":    []string{"not", "a", "number"},
		},
		DurationHours: 24,
		Seed:          seed(6),
	})
	require.NoError(t, err)
	// All three fall back to the baseline.
	assert.Equal(t, 2500.0, res.Timeline[0].State.NumberOr("currentA", -1))
	assert.Equal(t, 400.0, res.Timeline[0].State.NumberOr("voltageKV", -1))
}

func TestRunCompositesMatchFinalState(t *testing.T) {
	reg := newTestRegistry(t)
	res, err := Run(context.Background(), reg, Request{
		EquipmentType: types.TypeIsolator,
		LiveReadings:  map[string]any{"motorTorquePercent": 40},
		DurationHours: 36,
		Seed:          seed(8),
	})
	require.NoError(t, err)

	model, err := equipment.ForType(reg, types.TypeIsolator)
	require.NoError(t, err)
	pack := model.Score(res.FinalState)

	assert.InDelta(t, pack.ComponentHealth, res.TrueHealth, 1e-12)
	assert.InDelta(t, pack.StressIndicator, res.StressScore, 1e-12)
	assert.Equal(t, types.Percent(pack.ComponentHealth), res.HealthScores.Overall)

	tn := reg.Tuning()
	want := tn.FaultBlend.Risk*pack.FaultRisk +
		tn.FaultBlend.Stress*pack.StressIndicator +
		tn.FaultBlend.Aging*res.AgingFactor
	assert.InDelta(t, want, res.FaultProbability, 1e-12)

	for name, pct := range res.HealthScores.Subsystems {
		sub, ok := pack.Subsystem(name)
		require.True(t, ok, name)
		assert.Equal(t, types.Percent(sub.Score), pct, name)
	}
}

func TestRunImpactFactors(t *testing.T) {
	reg := newTestRegistry(t)
	res, err := Run(context.Background(), reg, Request{
		EquipmentType: types.TypeTransformer,
		LiveReadings:  map[string]any{"windingTemperature": 140, "hotspotTemperature": 150},
		DurationHours: 24,
		Seed:          seed(9),
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.ImpactFactors)

	sum := 0
	for i, f := range res.ImpactFactors {
		assert.Greater(t, f.SharePercent, 0)
		if i > 0 {
			assert.GreaterOrEqual(t, res.ImpactFactors[i-1].SharePercent, f.SharePercent)
		}
		sum += f.SharePercent
	}
	// Rounding can shift each share by at most half a point.
	assert.InDelta(t, 100, sum, float64(len(res.ImpactFactors)))
}
