// Package equipment implements the per-type simulation models: signal
// derivation from static specs, discrete-time state stepping, health scoring,
// and threshold-based fault prediction. Models are stateless; all mutable
// state lives in the ParameterState passed through them.
package equipment

import (
	"math/rand/v2"

	"github.com/gridtwin/gridtwin/pkg/registry"
	"github.com/gridtwin/gridtwin/pkg/types"
)

// Model is the strategy for one equipment type.
type Model interface {
	Type() types.EquipmentType

	// Baseline returns a copy of the type's baseline state.
	Baseline() types.ParameterState

	// DeriveSignals maps a static asset specification onto a partial
	// ParameterState. A nil spec yields an empty mapping.
	DeriveSignals(spec *types.AssetSpecification) types.ParameterState

	// Step advances the state by one tick. progress is step/totalSteps in
	// [0,1]. The returned state has the same keys as the input (categorical
	// and unrecognized keys pass through untouched) and every numeric value
	// clamped to its physical range.
	Step(st types.ParameterState, progress, durationHours float64, rng *rand.Rand) types.ParameterState

	// Score computes the normalized health breakdown for a state. Pure and
	// deterministic: equal states give identical packs.
	Score(st types.ParameterState) types.ScorePack

	// PredictFaults evaluates the type's threshold rules against a state.
	PredictFaults(st types.ParameterState, durationHours float64, rng *rand.Rand) []types.FaultPrediction
}

// ForType returns the model for t, or a ConfigurationError for anything
// outside the closed set.
func ForType(reg *registry.Registry, t types.EquipmentType) (Model, error) {
	base, err := reg.Baseline(t)
	if err != nil {
		return nil, err
	}
	switch t {
	case types.TypeTransformer:
		return &transformerModel{reg: reg, base: base}, nil
	case types.TypeBayLine:
		return &bayLineModel{reg: reg, base: base}, nil
	case types.TypeCircuitBreaker:
		return &breakerModel{reg: reg, base: base}, nil
	case types.TypeIsolator:
		return &isolatorModel{reg: reg, base: base}, nil
	case types.TypeBusbar:
		return &busbarModel{reg: reg, base: base}, nil
	}
	return nil, &registry.ConfigurationError{Reason: "no model for equipment type " + string(t)}
}

// num reads a numeric parameter, falling back to the type baseline when the
// state is missing the key or holds a categorical value there.
func num(st, base types.ParameterState, key string) float64 {
	return st.NumberOr(key, base.NumberOr(key, 0))
}

// packFor orders the named sub-scores per the registry and folds them into
// the weighted component health.
func packFor(reg *registry.Registry, t types.EquipmentType, scores map[string]float64) ([]types.SubsystemScore, float64) {
	subs, _ := reg.Subsystems(t)
	out := make([]types.SubsystemScore, 0, len(subs))
	var health float64
	for _, sw := range subs {
		s := clamp01(scores[sw.Name])
		out = append(out, types.SubsystemScore{Name: sw.Name, Score: s, Weight: sw.Weight})
		health += s * sw.Weight
	}
	return out, clamp01(health)
}

// newFault assembles one prediction: probability clamped to the configured
// window, time-to-failure randomized inside the simulated horizon, metadata
// enriched from the fault library. A library miss keeps the rule's fallback
// severity with empty metadata.
func newFault(reg *registry.Registry, t types.EquipmentType, name string, fallback types.Severity,
	probability, durationHours float64, rng *rand.Rand) types.FaultPrediction {

	tn := reg.Tuning()
	f := types.FaultPrediction{
		FaultType:          name,
		Probability:        clamp(probability, tn.ProbabilityFloor, tn.ProbabilityCeiling),
		TimeToFailureHours: durationHours*rng.Float64()*tn.TTFSpreadFraction + durationHours*tn.TTFFloorFraction,
		Severity:           fallback,
	}
	if sig, ok := reg.Signature(t, name); ok {
		f.Severity = sig.Severity
		f.Cause = sig.Cause
		f.AffectedPart = sig.AffectedPart
		f.RecommendedAction = sig.RecommendedAction
	}
	return f
}
