package equipment

import (
	"math"
	"math/rand/v2"

	"github.com/gridtwin/gridtwin/pkg/registry"
	"github.com/gridtwin/gridtwin/pkg/types"
)

// bayLineModel covers feeder bays and their overhead line sections. Current
// loading drives conductor temperature, harmonic distortion, and power-factor
// decay; voltage and frequency ride on nominal with slow recovery from sags.
type bayLineModel struct {
	reg  *registry.Registry
	base types.ParameterState
}

type bayLineState struct {
	voltage, current  float64
	active, reactive  float64
	powerFactor, freq float64
	thd, conductor    float64
	aging             float64
}

func (m *bayLineModel) Type() types.EquipmentType { return types.TypeBayLine }

func (m *bayLineModel) Baseline() types.ParameterState { return m.base.Clone() }

func (m *bayLineModel) read(st types.ParameterState) bayLineState {
	return bayLineState{
		voltage:     num(st, m.base, "busVoltageKV"),
		current:     num(st, m.base, "lineCurrentA"),
		active:      num(st, m.base, "activePowerMW"),
		reactive:    num(st, m.base, "reactivePowerMVAR"),
		powerFactor: num(st, m.base, "powerFactor"),
		freq:        num(st, m.base, "frequencyHz"),
		thd:         num(st, m.base, "thdPercent"),
		conductor:   num(st, m.base, "conductorTempC"),
		aging:       num(st, m.base, "agingFactor"),
	}
}

func (m *bayLineModel) write(st types.ParameterState, s bayLineState) types.ParameterState {
	out := st.Clone()
	out["busVoltageKV"] = s.voltage
	out["lineCurrentA"] = s.current
	out["activePowerMW"] = s.active
	out["reactivePowerMVAR"] = s.reactive
	out["powerFactor"] = s.powerFactor
	out["frequencyHz"] = s.freq
	out["thdPercent"] = s.thd
	out["conductorTempC"] = s.conductor
	out["agingFactor"] = s.aging
	return out
}

func (m *bayLineModel) DeriveSignals(spec *types.AssetSpecification) types.ParameterState {
	out := types.ParameterState{}
	if spec == nil {
		return out
	}
	if spec.RatedCurrentA > 0 {
		current := spec.RatedCurrentA * 0.72
		out["lineCurrentA"] = current
		out["conductorTempC"] = 35 + current*0.013
	}
	if spec.RatedVoltageKV > 0 {
		out["busVoltageKV"] = spec.RatedVoltageKV * 0.995
	}
	if spec.Condition != "" {
		c := m.reg.ConditionScore(spec.Condition)
		out["powerFactor"] = 0.79 + c*0.0025
		out["thdPercent"] = 6.2 - c*0.06
	}
	if spec.InstallYear != 0 {
		out["agingFactor"] = m.reg.AgingFactor(spec.InstallYear)
	}
	return out
}

func (m *bayLineModel) Step(st types.ParameterState, progress, durationHours float64, rng *rand.Rand) types.ParameterState {
	s := m.read(st)
	n := s

	n.current = clamp(clamp(s.current, 50, 3400)+oscillate(progress, 120)+jitter(rng, 40), 50, 3400)
	n.active = clamp(clamp(s.active, 0, 2000)+oscillate(progress, 30)+jitter(rng, 10), 0, 2000)
	n.reactive = clamp(clamp(s.reactive, 0, 800)+oscillate(progress, 15)+jitter(rng, 5), 0, 800)

	// power factor decays under heavy current and distortion, but recovers at
	// most 0.001 per step so a degraded reading does not heal inside one run
	pfTarget := math.Min(0.97-math.Max(0, n.current-2000)/12000-s.thd*0.004, s.powerFactor+0.005)
	n.powerFactor = clamp(smoothToward(s.powerFactor, pfTarget, 0.2), 0.6, 1)

	n.thd = clamp(smoothToward(s.thd, math.Max(2+math.Max(0, n.current-1800)*0.002, s.thd-0.1), 0.2)+jitter(rng, 0.2), 0.5, 15)
	n.voltage = clamp(smoothToward(s.voltage, 400-math.Max(0, n.current-1500)*0.004, 0.2)+oscillate(progress, 1.5)+jitter(rng, 0.5), 300, 450)
	n.freq = clamp(smoothToward(s.freq, 50, 0.3)+oscillate(progress, 0.03)+jitter(rng, 0.02), 47, 53)
	n.conductor = clamp(smoothToward(s.conductor, math.Max(35+n.current*0.013, s.conductor-0.5), 0.25), -10, 150)

	return m.write(st, n)
}

func (m *bayLineModel) Score(st types.ParameterState) types.ScorePack {
	s := m.read(st)

	loading := avg(worse(s.current, 1500, 1500), worse(s.active, 600, 900))
	powerQuality := avg(better(s.powerFactor, 0.7, 0.27), worse(s.thd, 2, 6), worse(s.reactive, 50, 450))
	voltageFrequency := avg(worse(math.Abs(s.voltage-400), 2, 35), worse(math.Abs(s.freq-50), 0.02, 0.6))
	thermal := worse(s.conductor, 45, 75)

	subs, health := packFor(m.reg, types.TypeBayLine, map[string]float64{
		"loading":          loading,
		"powerQuality":     powerQuality,
		"voltageFrequency": voltageFrequency,
		"thermal":          thermal,
	})

	return types.ScorePack{
		Subsystems:          subs,
		ComponentHealth:     health,
		StressIndicator:     clamp01(0.4*(1-loading) + 0.3*(1-powerQuality) + 0.3*(1-thermal)),
		TemperatureSeverity: clamp01((s.conductor - 70) / 50),
		FaultRisk:           clamp01(0.35*(1-loading) + 0.25*(1-powerQuality) + 0.2*(1-voltageFrequency) + 0.2*(1-thermal)),
	}
}

func (m *bayLineModel) PredictFaults(st types.ParameterState, durationHours float64, rng *rand.Rand) []types.FaultPrediction {
	s := m.read(st)
	lim := m.reg.Tuning().Limits.BayLine
	var out []types.FaultPrediction

	if s.powerFactor < lim.PowerFactorMin || s.reactive > lim.ReactiveAlarmMVAR {
		over := math.Max((lim.PowerFactorMin-s.powerFactor)/0.2, (s.reactive-lim.ReactiveAlarmMVAR)/300)
		out = append(out, newFault(m.reg, m.Type(), "Power Swing / Stability Risk", types.SeverityHigh,
			0.5+0.45*clamp01(over), durationHours, rng))
	}
	if s.voltage < lim.VoltageMinKV || s.voltage > lim.VoltageMaxKV {
		over := math.Max((lim.VoltageMinKV-s.voltage)/40, (s.voltage-lim.VoltageMaxKV)/25)
		out = append(out, newFault(m.reg, m.Type(), "Voltage Sag", types.SeverityMedium,
			0.45+0.45*clamp01(over), durationHours, rng))
	}
	if s.thd > lim.THDAlarmPercent || s.current > lim.CurrentAlarmA {
		over := math.Max((s.thd-lim.THDAlarmPercent)/6, (s.current-lim.CurrentAlarmA)/600)
		out = append(out, newFault(m.reg, m.Type(), "Current Unbalance", types.SeverityMedium,
			0.45+0.4*clamp01(over), durationHours, rng))
	}
	if s.conductor > lim.ConductorAlarmC {
		out = append(out, newFault(m.reg, m.Type(), "Conductor Overheating", types.SeverityHigh,
			0.55+0.4*clamp01((s.conductor-lim.ConductorAlarmC)/40), durationHours, rng))
	}
	if math.Abs(s.freq-50) > lim.FrequencyBandHz {
		out = append(out, newFault(m.reg, m.Type(), "Frequency Excursion", types.SeverityHigh,
			0.5+0.45*clamp01((math.Abs(s.freq-50)-lim.FrequencyBandHz)/1.5), durationHours, rng))
	}
	return out
}
