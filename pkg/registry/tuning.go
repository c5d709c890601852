package registry

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gridtwin/gridtwin/pkg/types"
)

// Tuning collects the hand-tuned heuristic constants shared across the
// engine. The defaults are the values the scoring and prediction formulas
// were calibrated with; they are domain heuristics, not derived physics, and
// can be overridden from a YAML file without rebuilding.
type Tuning struct {
	// Aging: agingFactor = clamp01((ReferenceYear-installYear)/AgingSpanYears).
	ReferenceYear      int     `yaml:"referenceYear"`
	AgingSpanYears     float64 `yaml:"agingSpanYears"`
	DefaultAgingFactor float64 `yaml:"defaultAgingFactor"`

	// Fault prediction bounds.
	ProbabilityFloor   float64 `yaml:"probabilityFloor"`
	ProbabilityCeiling float64 `yaml:"probabilityCeiling"`
	// Time-to-failure lands in [floor, floor+spread] fractions of the
	// simulated horizon.
	TTFFloorFraction  float64 `yaml:"ttfFloorFraction"`
	TTFSpreadFraction float64 `yaml:"ttfSpreadFraction"`

	// Composite faultProbability = risk*FaultRisk + stress*Stress + aging*Aging.
	FaultBlend FaultBlend `yaml:"faultBlend"`

	// Condition-assessment label -> base condition score.
	ConditionScores       map[string]float64 `yaml:"conditionScores"`
	DefaultConditionScore float64            `yaml:"defaultConditionScore"`

	// Per-type subsystem blend weights; each set must sum to 1.
	SubsystemWeights map[types.EquipmentType]map[string]float64 `yaml:"subsystemWeights"`

	// Per-type alarm limits, shared by the fault rules and the display
	// threshold tables.
	Limits Limits `yaml:"limits"`
}

// FaultBlend weights the composite fault probability.
type FaultBlend struct {
	Risk   float64 `yaml:"risk"`
	Stress float64 `yaml:"stress"`
	Aging  float64 `yaml:"aging"`
}

// Limits groups the per-type alarm thresholds.
type Limits struct {
	Transformer    TransformerLimits `yaml:"transformer"`
	BayLine        BayLineLimits     `yaml:"bayLine"`
	CircuitBreaker BreakerLimits     `yaml:"circuitBreaker"`
	Isolator       IsolatorLimits    `yaml:"isolator"`
	Busbar         BusbarLimits      `yaml:"busbar"`
}

type TransformerLimits struct {
	WindingAlarmC       float64 `yaml:"windingAlarmC"`
	HotspotAlarmC       float64 `yaml:"hotspotAlarmC"`
	HydrogenAlarmPPM    float64 `yaml:"hydrogenAlarmPPM"`
	AcetyleneAlarmPPM   float64 `yaml:"acetyleneAlarmPPM"`
	DielectricMinKV     float64 `yaml:"dielectricMinKV"`
	MoistureAlarmPPM    float64 `yaml:"moistureAlarmPPM"`
	OilLevelMinPercent  float64 `yaml:"oilLevelMinPercent"`
	TapWearAlarmPercent float64 `yaml:"tapWearAlarmPercent"`
}

type BayLineLimits struct {
	PowerFactorMin    float64 `yaml:"powerFactorMin"`
	ReactiveAlarmMVAR float64 `yaml:"reactiveAlarmMVAR"`
	VoltageMinKV      float64 `yaml:"voltageMinKV"`
	VoltageMaxKV      float64 `yaml:"voltageMaxKV"`
	THDAlarmPercent   float64 `yaml:"thdAlarmPercent"`
	CurrentAlarmA     float64 `yaml:"currentAlarmA"`
	ConductorAlarmC   float64 `yaml:"conductorAlarmC"`
	FrequencyBandHz   float64 `yaml:"frequencyBandHz"`
}

type BreakerLimits struct {
	SF6DensityMinPercent           float64 `yaml:"sf6DensityMinPercent"`
	SF6PressureMinBar              float64 `yaml:"sf6PressureMinBar"`
	OperatingTimeAlarmMs           float64 `yaml:"operatingTimeAlarmMs"`
	MotorCurrentAlarmA             float64 `yaml:"motorCurrentAlarmA"`
	ContactWearAlarmPercent        float64 `yaml:"contactWearAlarmPercent"`
	ContactResistanceAlarmMicroOhm float64 `yaml:"contactResistanceAlarmMicroOhm"`
}

type IsolatorLimits struct {
	ContactResistanceAlarmMicroOhm float64 `yaml:"contactResistanceAlarmMicroOhm"`
	TorqueMinPercent               float64 `yaml:"torqueMinPercent"`
	MotorCurrentAlarmA             float64 `yaml:"motorCurrentAlarmA"`
	TravelTimeAlarmSec             float64 `yaml:"travelTimeAlarmSec"`
	AlignmentMinPercent            float64 `yaml:"alignmentMinPercent"`
}

type BusbarLimits struct {
	TemperatureAlarmC            float64 `yaml:"temperatureAlarmC"`
	JointResistanceAlarmMicroOhm float64 `yaml:"jointResistanceAlarmMicroOhm"`
	CurrentAlarmA                float64 `yaml:"currentAlarmA"`
	LoadAlarmPercent             float64 `yaml:"loadAlarmPercent"`
}

// DefaultTuning returns the compiled-in heuristic constants.
func DefaultTuning() Tuning {
	return Tuning{
		ReferenceYear:      2025,
		AgingSpanYears:     40,
		DefaultAgingFactor: 0.5,

		ProbabilityFloor:   0.05,
		ProbabilityCeiling: 0.99,
		TTFFloorFraction:   0.2,
		TTFSpreadFraction:  0.6,

		FaultBlend: FaultBlend{Risk: 0.5, Stress: 0.3, Aging: 0.2},

		ConditionScores: map[string]float64{
			"excellent": 72,
			"good":      65,
			"fair":      55,
			"poor":      45,
			"critical":  35,
		},
		DefaultConditionScore: 60,

		SubsystemWeights: map[types.EquipmentType]map[string]float64{
			types.TypeTransformer: {
				"temperature": 0.25,
				"oil":         0.20,
				"gas":         0.20,
				"electrical":  0.15,
				"oltc":        0.10,
				"mechanical":  0.10,
			},
			types.TypeBayLine: {
				"loading":          0.30,
				"powerQuality":     0.25,
				"voltageFrequency": 0.25,
				"thermal":          0.20,
			},
			types.TypeCircuitBreaker: {
				"interrupter": 0.35,
				"mechanism":   0.30,
				"contacts":    0.20,
				"auxiliary":   0.15,
			},
			types.TypeIsolator: {
				"contacts":  0.35,
				"drive":     0.30,
				"motor":     0.20,
				"structure": 0.15,
			},
			types.TypeBusbar: {
				"thermal":     0.40,
				"loading":     0.35,
				"connections": 0.25,
			},
		},

		Limits: Limits{
			Transformer: TransformerLimits{
				WindingAlarmC:       115,
				HotspotAlarmC:       130,
				HydrogenAlarmPPM:    350,
				AcetyleneAlarmPPM:   15,
				DielectricMinKV:     45,
				MoistureAlarmPPM:    25,
				OilLevelMinPercent:  70,
				TapWearAlarmPercent: 60,
			},
			BayLine: BayLineLimits{
				PowerFactorMin:    0.85,
				ReactiveAlarmMVAR: 400,
				VoltageMinKV:      380,
				VoltageMaxKV:      425,
				THDAlarmPercent:   6,
				CurrentAlarmA:     2800,
				ConductorAlarmC:   95,
				FrequencyBandHz:   0.5,
			},
			CircuitBreaker: BreakerLimits{
				SF6DensityMinPercent:           85,
				SF6PressureMinBar:              5.2,
				OperatingTimeAlarmMs:           90,
				MotorCurrentAlarmA:             20,
				ContactWearAlarmPercent:        55,
				ContactResistanceAlarmMicroOhm: 350,
			},
			Isolator: IsolatorLimits{
				ContactResistanceAlarmMicroOhm: 400,
				TorqueMinPercent:               55,
				MotorCurrentAlarmA:             18,
				TravelTimeAlarmSec:             15,
				AlignmentMinPercent:            70,
			},
			Busbar: BusbarLimits{
				TemperatureAlarmC:            95,
				JointResistanceAlarmMicroOhm: 120,
				CurrentAlarmA:                3600,
				LoadAlarmPercent:             110,
			},
		},
	}
}

// LoadTuning reads a YAML override file on top of the defaults. Fields
// omitted from the file keep their default values.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	b, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("reading tuning file: %w", err)
	}
	if err := yaml.Unmarshal(b, &t); err != nil {
		return t, fmt.Errorf("parsing tuning file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Validate rejects tunings that would break scoring invariants.
func (t Tuning) Validate() error {
	if t.ProbabilityFloor <= 0 || t.ProbabilityCeiling >= 1 || t.ProbabilityFloor >= t.ProbabilityCeiling {
		return &ConfigurationError{Reason: fmt.Sprintf(
			"probability clamp [%v, %v] must satisfy 0 < floor < ceiling < 1",
			t.ProbabilityFloor, t.ProbabilityCeiling)}
	}
	if t.TTFFloorFraction < 0 || t.TTFSpreadFraction <= 0 || t.TTFFloorFraction+t.TTFSpreadFraction > 1 {
		return &ConfigurationError{Reason: "time-to-failure fractions must cover a window inside the horizon"}
	}
	if s := t.FaultBlend.Risk + t.FaultBlend.Stress + t.FaultBlend.Aging; math.Abs(s-1) > 1e-6 {
		return &ConfigurationError{Reason: fmt.Sprintf("fault blend weights sum to %v, want 1", s)}
	}
	if t.AgingSpanYears <= 0 {
		return &ConfigurationError{Reason: "agingSpanYears must be positive"}
	}
	for _, et := range types.AllEquipmentTypes() {
		weights, ok := t.SubsystemWeights[et]
		if !ok || len(weights) == 0 {
			return &ConfigurationError{Reason: fmt.Sprintf("missing subsystem weights for %s", et)}
		}
		order := subsystemOrder[et]
		if len(weights) != len(order) {
			return &ConfigurationError{Reason: fmt.Sprintf("%s expects subsystems %v", et, order)}
		}
		var sum float64
		for _, name := range order {
			w, ok := weights[name]
			if !ok {
				return &ConfigurationError{Reason: fmt.Sprintf("%s is missing subsystem weight %q", et, name)}
			}
			if w < 0 {
				return &ConfigurationError{Reason: fmt.Sprintf("%s subsystem %q has negative weight", et, name)}
			}
			sum += w
		}
		if math.Abs(sum-1) > 1e-6 {
			return &ConfigurationError{Reason: fmt.Sprintf("%s subsystem weights sum to %v, want 1", et, sum)}
		}
	}
	return nil
}
