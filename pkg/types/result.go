package types

import "math"

// Percent converts a normalized 0..1 score to its 0..100 display form.
func Percent(x float64) int {
	if x < 0 {
		x = 0
	} else if x > 1 {
		x = 1
	}
	return int(math.Round(x * 100))
}

// TimelinePoint is one scored snapshot on the simulated trajectory.
type TimelinePoint struct {
	Time        float64        `json:"time"` // hours from the start of the run
	State       ParameterState `json:"state"`
	HealthScore int            `json:"healthScore"` // 0..100
}

// SubsystemScore is one named, normalized slice of a component's health.
type SubsystemScore struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"` // 0..1
	Weight float64 `json:"weight"`
}

// ScorePack is the full normalized health breakdown for one ParameterState.
// Everything is on a 0..1 scale; percentage scaling happens only at the
// output boundary.
type ScorePack struct {
	Subsystems          []SubsystemScore `json:"subsystems"`
	ComponentHealth     float64          `json:"componentHealth"`
	StressIndicator     float64          `json:"stressIndicator"`
	AbnormalDGA         float64          `json:"abnormalDga"` // chemistry-only, zero for gasless types
	TemperatureSeverity float64          `json:"temperatureSeverity"`
	FaultRisk           float64          `json:"faultRisk"`
}

// Subsystem returns the named sub-score, or ok=false when the type has no
// such subsystem.
func (p ScorePack) Subsystem(name string) (SubsystemScore, bool) {
	for _, s := range p.Subsystems {
		if s.Name == name {
			return s, true
		}
	}
	return SubsystemScore{}, false
}

// HealthScores is the percentage-scaled view served to callers.
type HealthScores struct {
	Overall    int            `json:"overall"` // 0..100
	Subsystems map[string]int `json:"subsystems"`
}

// FaultPrediction is one candidate failure mode inferred from the final
// state. Cause, affected part and recommended action come from the fault
// library and may be empty when the library has no matching signature.
type FaultPrediction struct {
	FaultType          string   `json:"faultType"`
	Probability        float64  `json:"probability"` // clamped to [0.05, 0.99]
	TimeToFailureHours float64  `json:"timeToFailureHours"`
	Severity           Severity `json:"severity"`
	Cause              string   `json:"cause,omitempty"`
	AffectedPart       string   `json:"affectedPart,omitempty"`
	RecommendedAction  string   `json:"recommendedAction,omitempty"`
}

// ImpactFactor names a subsystem's share of the total health deficit.
type ImpactFactor struct {
	Factor       string `json:"factor"`
	SharePercent int    `json:"sharePercent"`
}

// SimulationResult is the engine's single output for one run.
type SimulationResult struct {
	EquipmentType    EquipmentType     `json:"equipmentType"`
	Timeline         []TimelinePoint   `json:"timeline"`
	FinalState       ParameterState    `json:"finalState"`
	HealthScores     HealthScores      `json:"healthScores"`
	FaultPredictions []FaultPrediction `json:"faultPredictions"`
	Diagnosis        string            `json:"diagnosis"`
	TrueHealth       float64           `json:"trueHealth"`       // 0..1
	StressScore      float64           `json:"stressScore"`      // 0..1
	AgingFactor      float64           `json:"agingFactor"`      // 0..1
	FaultProbability float64           `json:"faultProbability"` // 0..1
	ImpactFactors    []ImpactFactor    `json:"impactFactors"`
}
