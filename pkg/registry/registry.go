// Package registry holds the read-only per-equipment-type reference data the
// simulation engine runs on: baseline parameter states, fault signature
// libraries, display thresholds, and the heuristic tuning constants.
package registry

import (
	"fmt"

	"github.com/levenlabs/go-lflag"

	"github.com/gridtwin/gridtwin/pkg/types"
)

// ConfigurationError reports a fatal configuration problem: an unknown
// equipment type or an invalid tuning. It is never used for recoverable
// data gaps.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// FaultSignature is one named failure mode with its library metadata.
type FaultSignature struct {
	FaultType         string         `json:"faultType"`
	Severity          types.Severity `json:"severity"`
	Cause             string         `json:"cause"`
	AffectedPart      string         `json:"affectedPart"`
	RecommendedAction string         `json:"recommendedAction"`
}

// ParameterThreshold is a display band for one parameter; the alarm bounds
// are the same values the fault rules evaluate.
type ParameterThreshold struct {
	Parameter string  `json:"parameter"`
	Unit      string  `json:"unit,omitempty"`
	NormalMin float64 `json:"normalMin"`
	NormalMax float64 `json:"normalMax"`
	AlarmMin  float64 `json:"alarmMin,omitempty"`
	AlarmMax  float64 `json:"alarmMax,omitempty"`
}

// SubsystemWeight names one sub-score and its share of the overall health.
type SubsystemWeight struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Registry exposes lookup access to the compiled-in equipment data. It is
// immutable after construction and safe for concurrent use.
type Registry struct {
	tuning     Tuning
	thresholds map[types.EquipmentType][]ParameterThreshold
}

// New builds a Registry around the given tuning.
func New(tn Tuning) (*Registry, error) {
	if err := tn.Validate(); err != nil {
		return nil, err
	}
	return &Registry{
		tuning:     tn,
		thresholds: buildThresholds(tn),
	}, nil
}

// Configured sets up the Registry based on flags.
func Configured() *Registry {
	tuningFile := lflag.String("tuning-file", "", "Optional YAML file overriding the heuristic tuning defaults")

	r := &Registry{}

	lflag.Do(func() {
		tn := DefaultTuning()
		if *tuningFile != "" {
			loaded, err := LoadTuning(*tuningFile)
			if err != nil {
				panic(fmt.Sprintf("tuning validation failed: %v", err))
			}
			tn = loaded
		}
		built, err := New(tn)
		if err != nil {
			panic(fmt.Sprintf("registry init failed: %v", err))
		}
		*r = *built
	})

	return r
}

// Tuning returns the active heuristic constants.
func (r *Registry) Tuning() Tuning {
	return r.tuning
}

// Baseline returns a copy of the baseline state for the type.
func (r *Registry) Baseline(t types.EquipmentType) (types.ParameterState, error) {
	b, ok := baselines[t]
	if !ok {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown equipment type %q", t)}
	}
	return b.Clone(), nil
}

// FaultLibrary returns the known failure signatures for the type, in their
// fixed order.
func (r *Registry) FaultLibrary(t types.EquipmentType) ([]FaultSignature, error) {
	lib, ok := faultLibraries[t]
	if !ok {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown equipment type %q", t)}
	}
	return lib, nil
}

// Signature looks a fault up by name. A miss is not an error: rule-emitted
// faults degrade to their own severity with empty metadata.
func (r *Registry) Signature(t types.EquipmentType, faultType string) (FaultSignature, bool) {
	for _, sig := range faultLibraries[t] {
		if sig.FaultType == faultType {
			return sig, true
		}
	}
	return FaultSignature{}, false
}

// ParameterThresholds returns the display bands for the type.
func (r *Registry) ParameterThresholds(t types.EquipmentType) ([]ParameterThreshold, error) {
	th, ok := r.thresholds[t]
	if !ok {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown equipment type %q", t)}
	}
	return th, nil
}

// Subsystems returns the type's sub-scores in display order with their blend
// weights.
func (r *Registry) Subsystems(t types.EquipmentType) ([]SubsystemWeight, error) {
	order, ok := subsystemOrder[t]
	if !ok {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown equipment type %q", t)}
	}
	weights := r.tuning.SubsystemWeights[t]
	out := make([]SubsystemWeight, 0, len(order))
	for _, name := range order {
		out = append(out, SubsystemWeight{Name: name, Weight: weights[name]})
	}
	return out, nil
}

// SubsystemWeight returns the blend weight of one named sub-score.
func (r *Registry) SubsystemWeight(t types.EquipmentType, name string) float64 {
	return r.tuning.SubsystemWeights[t][name]
}

// ConditionScore maps a condition-assessment label onto its base score.
// Unknown labels get the documented default rather than an error.
func (r *Registry) ConditionScore(label string) float64 {
	if s, ok := r.tuning.ConditionScores[label]; ok {
		return s
	}
	return r.tuning.DefaultConditionScore
}

// AgingFactor converts an installation year into the 0..1 aging factor.
// Missing or implausible years get the default factor.
func (r *Registry) AgingFactor(installYear int) float64 {
	if installYear < 1900 || installYear > r.tuning.ReferenceYear {
		return r.tuning.DefaultAgingFactor
	}
	f := float64(r.tuning.ReferenceYear-installYear) / r.tuning.AgingSpanYears
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
