package equipment

import (
	"math"
	"math/rand/v2"

	"github.com/gridtwin/gridtwin/pkg/registry"
	"github.com/gridtwin/gridtwin/pkg/types"
)

// breakerModel covers SF6 circuit breakers. Gas pressure and density are kept
// as a consistent pair: whichever side reports low pulls the other toward the
// implied value, so a reported leak never heals itself mid-run.
type breakerModel struct {
	reg  *registry.Registry
	base types.ParameterState
}

type breakerState struct {
	opTime, pressure  float64
	density, motor    float64
	resistance, wear  float64
	operations, aging float64
}

// sf6NominalBar is the fill pressure at which density reads 100%.
const sf6NominalBar = 6.8

func sf6DensityFor(pressureBar float64) float64 {
	return clamp(100-math.Max(0, sf6NominalBar-pressureBar)*12, 20, 100)
}

func sf6PressureFor(densityPercent float64) float64 {
	return sf6NominalBar - (100-densityPercent)/12
}

func (m *breakerModel) Type() types.EquipmentType { return types.TypeCircuitBreaker }

func (m *breakerModel) Baseline() types.ParameterState { return m.base.Clone() }

func (m *breakerModel) read(st types.ParameterState) breakerState {
	return breakerState{
		opTime:     num(st, m.base, "operatingTimeMs"),
		pressure:   num(st, m.base, "sf6PressureBar"),
		density:    num(st, m.base, "sf6DensityPercent"),
		motor:      num(st, m.base, "motorCurrentA"),
		resistance: num(st, m.base, "contactResistanceMicroOhm"),
		wear:       num(st, m.base, "contactWearPercent"),
		operations: num(st, m.base, "operationsCount"),
		aging:      num(st, m.base, "agingFactor"),
	}
}

func (m *breakerModel) write(st types.ParameterState, s breakerState) types.ParameterState {
	out := st.Clone()
	out["operatingTimeMs"] = s.opTime
	out["sf6PressureBar"] = s.pressure
	out["sf6DensityPercent"] = s.density
	out["motorCurrentA"] = s.motor
	out["contactResistanceMicroOhm"] = s.resistance
	out["contactWearPercent"] = s.wear
	out["operationsCount"] = s.operations
	out["agingFactor"] = s.aging
	return out
}

func (m *breakerModel) DeriveSignals(spec *types.AssetSpecification) types.ParameterState {
	out := types.ParameterState{}
	if spec == nil {
		return out
	}
	if spec.SF6PressureBar > 0 {
		out["sf6PressureBar"] = spec.SF6PressureBar
		out["sf6DensityPercent"] = sf6DensityFor(spec.SF6PressureBar)
	}
	if spec.OperationCount > 0 {
		count := float64(spec.OperationCount)
		out["operationsCount"] = count
		out["contactWearPercent"] = clamp(count*0.004, 0, 100)
		out["operatingTimeMs"] = 55 + count*0.0015
	}
	if spec.ContactResistanceMicroOhm > 0 {
		out["contactResistanceMicroOhm"] = spec.ContactResistanceMicroOhm
	}
	if spec.InstallYear != 0 {
		out["agingFactor"] = m.reg.AgingFactor(spec.InstallYear)
	}
	return out
}

func (m *breakerModel) Step(st types.ParameterState, progress, durationHours float64, rng *rand.Rand) types.ParameterState {
	s := m.read(st)
	n := s

	// rare switching events; each one costs contact life
	if rng.Float64() < 0.08 {
		n.operations = s.operations + 1
	}
	opsDelta := n.operations - s.operations
	n.wear = clamp(s.wear+0.005+opsDelta*0.02, 0, 100)
	n.opTime = clamp(s.opTime+n.wear*0.001+jitter(rng, 0.3), 30, 200)

	// gas pair: pressure drifts toward the lower of itself and the
	// density-implied value, with a slow standing leak; density then tracks
	// the updated pressure
	pressureTarget := math.Min(s.pressure, sf6PressureFor(s.density)) - 0.002
	n.pressure = clamp(smoothToward(s.pressure, pressureTarget, 0.3)+jitter(rng, 0.01), 3.5, 8.5)
	n.density = clamp(smoothToward(s.density, sf6DensityFor(n.pressure), 0.25), 20, 100)

	n.motor = clamp(clamp(s.motor, 6, 30)+oscillate(progress, 0.8)+jitter(rng, 0.4), 6, 30)
	n.resistance = clamp(s.resistance+0.02+n.wear*0.0005+jitter(rng, 0.2), 50, 1000)

	return m.write(st, n)
}

func (m *breakerModel) Score(st types.ParameterState) types.ScorePack {
	s := m.read(st)

	interrupter := avg(better(s.density, 80, 20), better(s.pressure, 4.5, 2.5))
	mechanism := avg(worse(s.opTime, 50, 120), worse(s.motor, 8, 45))
	contacts := avg(worse(s.wear, 10, 70), worse(s.resistance, 80, 1000))
	auxiliary := worse(s.operations, 2000, 28000)

	subs, health := packFor(m.reg, types.TypeCircuitBreaker, map[string]float64{
		"interrupter": interrupter,
		"mechanism":   mechanism,
		"contacts":    contacts,
		"auxiliary":   auxiliary,
	})

	return types.ScorePack{
		Subsystems:      subs,
		ComponentHealth: health,
		StressIndicator: clamp01(0.4*(1-interrupter) + 0.35*(1-mechanism) + 0.25*(1-contacts)),
		FaultRisk:       clamp01(0.4*(1-interrupter) + 0.3*(1-mechanism) + 0.15*(1-contacts) + 0.15*(1-auxiliary)),
	}
}

func (m *breakerModel) PredictFaults(st types.ParameterState, durationHours float64, rng *rand.Rand) []types.FaultPrediction {
	s := m.read(st)
	lim := m.reg.Tuning().Limits.CircuitBreaker
	var out []types.FaultPrediction

	if s.density < lim.SF6DensityMinPercent || s.pressure < lim.SF6PressureMinBar {
		over := math.Max((lim.SF6DensityMinPercent-s.density)/30, (lim.SF6PressureMinBar-s.pressure)/1.7)
		out = append(out, newFault(m.reg, m.Type(), "SF6 Leakage", types.SeverityCritical,
			0.6+0.39*clamp01(over), durationHours, rng))
	}
	if s.opTime > lim.OperatingTimeAlarmMs || s.motor > lim.MotorCurrentAlarmA {
		over := math.Max((s.opTime-lim.OperatingTimeAlarmMs)/60, (s.motor-lim.MotorCurrentAlarmA)/10)
		out = append(out, newFault(m.reg, m.Type(), "Slow Operating Mechanism", types.SeverityHigh,
			0.5+0.45*clamp01(over), durationHours, rng))
	}
	if s.wear > lim.ContactWearAlarmPercent || s.resistance > lim.ContactResistanceAlarmMicroOhm {
		over := math.Max((s.wear-lim.ContactWearAlarmPercent)/45, (s.resistance-lim.ContactResistanceAlarmMicroOhm)/400)
		out = append(out, newFault(m.reg, m.Type(), "Contact Wear", types.SeverityMedium,
			0.45+0.45*clamp01(over), durationHours, rng))
	}
	return out
}
