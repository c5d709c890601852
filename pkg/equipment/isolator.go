package equipment

import (
	"math"
	"math/rand/v2"

	"github.com/gridtwin/gridtwin/pkg/registry"
	"github.com/gridtwin/gridtwin/pkg/types"
)

// isolatorModel covers motor-driven disconnectors. Contact resistance is the
// leading indicator: as it climbs the drive works harder, which shows up as
// torque loss, higher motor current, and longer travel times.
type isolatorModel struct {
	reg  *registry.Registry
	base types.ParameterState
}

type isolatorState struct {
	resistance, torque float64
	motor, travel      float64
	alignment          float64
	operations, aging  float64
}

func (m *isolatorModel) Type() types.EquipmentType { return types.TypeIsolator }

func (m *isolatorModel) Baseline() types.ParameterState { return m.base.Clone() }

func (m *isolatorModel) read(st types.ParameterState) isolatorState {
	return isolatorState{
		resistance: num(st, m.base, "contactResistanceMicroOhm"),
		torque:     num(st, m.base, "motorTorquePercent"),
		motor:      num(st, m.base, "motorCurrentA"),
		travel:     num(st, m.base, "travelTimeSec"),
		alignment:  num(st, m.base, "alignmentPercent"),
		operations: num(st, m.base, "operationsCount"),
		aging:      num(st, m.base, "agingFactor"),
	}
}

func (m *isolatorModel) write(st types.ParameterState, s isolatorState) types.ParameterState {
	out := st.Clone()
	out["contactResistanceMicroOhm"] = s.resistance
	out["motorTorquePercent"] = s.torque
	out["motorCurrentA"] = s.motor
	out["travelTimeSec"] = s.travel
	out["alignmentPercent"] = s.alignment
	out["operationsCount"] = s.operations
	out["agingFactor"] = s.aging
	return out
}

func (m *isolatorModel) DeriveSignals(spec *types.AssetSpecification) types.ParameterState {
	out := types.ParameterState{}
	if spec == nil {
		return out
	}
	if spec.ContactResistanceMicroOhm > 0 {
		out["contactResistanceMicroOhm"] = spec.ContactResistanceMicroOhm
	}
	if spec.MotorTorquePercent > 0 {
		out["motorTorquePercent"] = spec.MotorTorquePercent
	}
	if spec.OperationCount > 0 {
		count := float64(spec.OperationCount)
		out["operationsCount"] = count
		out["alignmentPercent"] = clamp(100-count*0.007, 50, 100)
	}
	if spec.InstallYear != 0 {
		out["agingFactor"] = m.reg.AgingFactor(spec.InstallYear)
	}
	return out
}

func (m *isolatorModel) Step(st types.ParameterState, progress, durationHours float64, rng *rand.Rand) types.ParameterState {
	s := m.read(st)
	n := s

	// isolators switch rarely; each operation scuffs the contacts and
	// nudges the blades out of alignment
	if rng.Float64() < 0.05 {
		n.operations = s.operations + 1
	}
	opsDelta := n.operations - s.operations
	n.resistance = clamp(s.resistance+0.05+opsDelta*0.5+jitter(rng, 0.3), 60, 2000)

	// torque recovers at most 0.1 per step, so a weak-drive reading persists
	torqueTarget := math.Min(82-math.Max(0, s.resistance-150)*0.02, s.torque+0.5)
	n.torque = clamp(smoothToward(s.torque, torqueTarget, 0.2)+jitter(rng, 0.5), 10, 110)

	// a straining drive draws more current and travels slower
	n.motor = clamp(clamp(s.motor, 4, 25)+math.Max(0, 70-n.torque)*0.08+oscillate(progress, 0.5)+jitter(rng, 0.3), 4, 25)
	travelTarget := math.Max(5.5+math.Max(0, s.resistance-150)*0.004+math.Max(0, 70-n.torque)*0.1, s.travel-0.1)
	n.travel = clamp(smoothToward(s.travel, travelTarget, 0.2)+jitter(rng, 0.1), 2, 60)

	n.alignment = clamp(s.alignment-0.01-opsDelta*0.05+jitter(rng, 0.05), 30, 100)

	return m.write(st, n)
}

func (m *isolatorModel) Score(st types.ParameterState) types.ScorePack {
	s := m.read(st)

	contacts := worse(s.resistance, 100, 600)
	drive := avg(better(s.torque, 40, 50), worse(s.travel, 5, 25))
	motor := worse(s.motor, 7, 22)
	structure := better(s.alignment, 60, 38)

	subs, health := packFor(m.reg, types.TypeIsolator, map[string]float64{
		"contacts":  contacts,
		"drive":     drive,
		"motor":     motor,
		"structure": structure,
	})

	return types.ScorePack{
		Subsystems:      subs,
		ComponentHealth: health,
		StressIndicator: clamp01(0.4*(1-contacts) + 0.35*(1-drive) + 0.25*(1-motor)),
		FaultRisk:       clamp01(0.35*(1-contacts) + 0.3*(1-drive) + 0.2*(1-motor) + 0.15*(1-structure)),
	}
}

func (m *isolatorModel) PredictFaults(st types.ParameterState, durationHours float64, rng *rand.Rand) []types.FaultPrediction {
	s := m.read(st)
	lim := m.reg.Tuning().Limits.Isolator
	var out []types.FaultPrediction

	if s.resistance > lim.ContactResistanceAlarmMicroOhm {
		out = append(out, newFault(m.reg, m.Type(), "Contact Resistance Rise", types.SeverityHigh,
			0.5+0.45*clamp01((s.resistance-lim.ContactResistanceAlarmMicroOhm)/400), durationHours, rng))
	}
	if s.torque < lim.TorqueMinPercent {
		out = append(out, newFault(m.reg, m.Type(), "Drive Torque Drop", types.SeverityMedium,
			0.5+0.45*clamp01((lim.TorqueMinPercent-s.torque)/35), durationHours, rng))
	}
	if s.motor > lim.MotorCurrentAlarmA || s.travel > lim.TravelTimeAlarmSec {
		over := math.Max((s.motor-lim.MotorCurrentAlarmA)/7, (s.travel-lim.TravelTimeAlarmSec)/20)
		out = append(out, newFault(m.reg, m.Type(), "Motor Stall", types.SeverityCritical,
			0.55+0.4*clamp01(over), durationHours, rng))
	}
	if s.alignment < lim.AlignmentMinPercent {
		out = append(out, newFault(m.reg, m.Type(), "Misalignment", types.SeverityMedium,
			0.45+0.45*clamp01((lim.AlignmentMinPercent-s.alignment)/30), durationHours, rng))
	}
	return out
}
