package equipment

import (
	"math"
	"math/rand/v2"

	"github.com/gridtwin/gridtwin/pkg/registry"
	"github.com/gridtwin/gridtwin/pkg/types"
)

// busbarModel covers rigid bus sections. Joint resistance creeps up over
// time and, together with loading, sets the bar temperature.
type busbarModel struct {
	reg  *registry.Registry
	base types.ParameterState
}

type busbarState struct {
	voltage, current  float64
	load, temperature float64
	jointRes          float64
	aging             float64
}

func (m *busbarModel) Type() types.EquipmentType { return types.TypeBusbar }

func (m *busbarModel) Baseline() types.ParameterState { return m.base.Clone() }

func (m *busbarModel) read(st types.ParameterState) busbarState {
	return busbarState{
		voltage:     num(st, m.base, "voltageKV"),
		current:     num(st, m.base, "currentA"),
		load:        num(st, m.base, "loadPercent"),
		temperature: num(st, m.base, "temperatureC"),
		jointRes:    num(st, m.base, "jointResistanceMicroOhm"),
		aging:       num(st, m.base, "agingFactor"),
	}
}

func (m *busbarModel) write(st types.ParameterState, s busbarState) types.ParameterState {
	out := st.Clone()
	out["voltageKV"] = s.voltage
	out["currentA"] = s.current
	out["loadPercent"] = s.load
	out["temperatureC"] = s.temperature
	out["jointResistanceMicroOhm"] = s.jointRes
	out["agingFactor"] = s.aging
	return out
}

func (m *busbarModel) DeriveSignals(spec *types.AssetSpecification) types.ParameterState {
	out := types.ParameterState{}
	if spec == nil {
		return out
	}
	if spec.RatedCurrentA > 0 {
		current := spec.RatedCurrentA * 0.63
		out["currentA"] = current
		out["loadPercent"] = math.Min(130, current/40)
	}
	if spec.Condition != "" {
		c := m.reg.ConditionScore(spec.Condition)
		joint := clamp(80-c*0.6, 20, 200)
		out["jointResistanceMicroOhm"] = joint
		out["temperatureC"] = 40 + num(out, m.base, "loadPercent")*0.35 + joint*0.1
	}
	if spec.InstallYear != 0 {
		out["agingFactor"] = m.reg.AgingFactor(spec.InstallYear)
	}
	return out
}

func (m *busbarModel) Step(st types.ParameterState, progress, durationHours float64, rng *rand.Rand) types.ParameterState {
	s := m.read(st)
	n := s

	n.current = clamp(clamp(s.current, 200, 4000)+oscillate(progress, 150)+jitter(rng, 60), 200, 4000)
	n.load = clamp(smoothToward(s.load, n.current/40, 0.25), 5, 150)

	// joint resistance only ever creeps upward; heat accelerates the creep
	n.jointRes = clamp(s.jointRes+0.02+math.Max(0, s.temperature-90)*0.002+jitter(rng, 0.1), 20, 500)

	tempTarget := math.Max(40+n.load*0.35+n.jointRes*0.1, s.temperature-0.5)
	n.temperature = clamp(smoothToward(s.temperature, tempTarget, 0.25), -10, 200)

	n.voltage = clamp(smoothToward(s.voltage, 400, 0.2)+oscillate(progress, 1.2)+jitter(rng, 0.4), 300, 450)

	return m.write(st, n)
}

func (m *busbarModel) Score(st types.ParameterState) types.ScorePack {
	s := m.read(st)

	thermal := worse(s.temperature, 50, 70)
	loading := avg(worse(s.current, 2000, 2600), worse(s.load, 60, 70))
	connections := avg(worse(s.jointRes, 35, 165), worse(math.Abs(s.voltage-400), 3, 30))

	subs, health := packFor(m.reg, types.TypeBusbar, map[string]float64{
		"thermal":     thermal,
		"loading":     loading,
		"connections": connections,
	})

	return types.ScorePack{
		Subsystems:          subs,
		ComponentHealth:     health,
		StressIndicator:     clamp01(0.4*(1-thermal) + 0.35*(1-loading) + 0.25*(1-connections)),
		TemperatureSeverity: clamp01((s.temperature - 80) / 60),
		FaultRisk:           clamp01(0.45*(1-thermal) + 0.3*(1-loading) + 0.25*(1-connections)),
	}
}

func (m *busbarModel) PredictFaults(st types.ParameterState, durationHours float64, rng *rand.Rand) []types.FaultPrediction {
	s := m.read(st)
	lim := m.reg.Tuning().Limits.Busbar
	var out []types.FaultPrediction

	if s.temperature > lim.TemperatureAlarmC {
		out = append(out, newFault(m.reg, m.Type(), "Thermal Hotspot", types.SeverityHigh,
			0.55+0.4*clamp01((s.temperature-lim.TemperatureAlarmC)/40), durationHours, rng))
	}
	if s.jointRes > lim.JointResistanceAlarmMicroOhm {
		out = append(out, newFault(m.reg, m.Type(), "Shield Connection Loose", types.SeverityMedium,
			0.45+0.45*clamp01((s.jointRes-lim.JointResistanceAlarmMicroOhm)/150), durationHours, rng))
	}
	if s.current > lim.CurrentAlarmA || s.load > lim.LoadAlarmPercent {
		over := math.Max((s.current-lim.CurrentAlarmA)/400, (s.load-lim.LoadAlarmPercent)/30)
		out = append(out, newFault(m.reg, m.Type(), "Overload Risk", types.SeverityHigh,
			0.5+0.45*clamp01(over), durationHours, rng))
	}
	return out
}
