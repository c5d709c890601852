package equipment

import (
	"math"
	"math/rand/v2"

	"github.com/gridtwin/gridtwin/pkg/registry"
	"github.com/gridtwin/gridtwin/pkg/types"
)

// transformerModel covers oil-filled power transformers with on-load tap
// changers. The thermal chain load -> oil -> winding -> hotspot drives the
// dissolved-gas and insulation dynamics.
type transformerModel struct {
	reg  *registry.Registry
	base types.ParameterState
}

// transformerState is the typed view of the tracked parameters. Keys the
// model does not know about stay in the ParameterState and pass through the
// stepper untouched.
type transformerState struct {
	load, ambient           float64
	oil, winding, hotspot   float64
	hydrogen, methane       float64
	acetylene, gasLevel     float64
	moisture, oilLevel      float64
	acidity, dielectric     float64
	tap, tapWear, vibration float64
	aging                   float64
}

func (m *transformerModel) Type() types.EquipmentType { return types.TypeTransformer }

func (m *transformerModel) Baseline() types.ParameterState { return m.base.Clone() }

func (m *transformerModel) read(st types.ParameterState) transformerState {
	return transformerState{
		load:       num(st, m.base, "loadPercent"),
		ambient:    num(st, m.base, "ambientTemperatureC"),
		oil:        num(st, m.base, "oilTemperature"),
		winding:    num(st, m.base, "windingTemperature"),
		hotspot:    num(st, m.base, "hotspotTemperature"),
		hydrogen:   num(st, m.base, "hydrogenPPM"),
		methane:    num(st, m.base, "methanePPM"),
		acetylene:  num(st, m.base, "acetylenePPM"),
		gasLevel:   num(st, m.base, "gasLevelPercent"),
		moisture:   num(st, m.base, "moisturePPM"),
		oilLevel:   num(st, m.base, "oilLevelPercent"),
		acidity:    num(st, m.base, "acidityMgKOH"),
		dielectric: num(st, m.base, "dielectricStrength"),
		tap:        num(st, m.base, "tapPosition"),
		tapWear:    num(st, m.base, "tapChangerWearPercent"),
		vibration:  num(st, m.base, "vibrationMMs"),
		aging:      num(st, m.base, "agingFactor"),
	}
}

func (m *transformerModel) write(st types.ParameterState, s transformerState) types.ParameterState {
	out := st.Clone()
	out["loadPercent"] = s.load
	out["ambientTemperatureC"] = s.ambient
	out["oilTemperature"] = s.oil
	out["windingTemperature"] = s.winding
	out["hotspotTemperature"] = s.hotspot
	out["hydrogenPPM"] = s.hydrogen
	out["methanePPM"] = s.methane
	out["acetylenePPM"] = s.acetylene
	out["gasLevelPercent"] = s.gasLevel
	out["moisturePPM"] = s.moisture
	out["oilLevelPercent"] = s.oilLevel
	out["acidityMgKOH"] = s.acidity
	out["dielectricStrength"] = s.dielectric
	out["tapPosition"] = s.tap
	out["tapChangerWearPercent"] = s.tapWear
	out["vibrationMMs"] = s.vibration
	out["agingFactor"] = s.aging
	return out
}

func (m *transformerModel) DeriveSignals(spec *types.AssetSpecification) types.ParameterState {
	out := types.ParameterState{}
	if spec == nil {
		return out
	}
	if spec.RatedCapacityMVA > 0 {
		load := math.Min(140, 60+spec.RatedCapacityMVA/5)
		oil := 35 + load*0.35
		winding := oil + 12 + load*0.05
		out["loadPercent"] = load
		out["oilTemperature"] = oil
		out["windingTemperature"] = winding
		out["hotspotTemperature"] = winding + 8 + math.Max(0, load-100)*0.3
	}
	if ch := spec.Chemistry; ch != nil {
		if ch.HydrogenPPM > 0 {
			out["hydrogenPPM"] = ch.HydrogenPPM
		}
		if ch.MethanePPM > 0 {
			out["methanePPM"] = ch.MethanePPM
		}
		if ch.AcetylenePPM > 0 {
			out["acetylenePPM"] = ch.AcetylenePPM
		}
		if ch.GasLevelPercent > 0 {
			out["gasLevelPercent"] = ch.GasLevelPercent
		}
	}
	if spec.Condition != "" {
		c := m.reg.ConditionScore(spec.Condition)
		out["dielectricStrength"] = 25 + c*0.55
		out["moisturePPM"] = 30 - c*0.18
	}
	if spec.InstallYear != 0 {
		out["agingFactor"] = m.reg.AgingFactor(spec.InstallYear)
	}
	return out
}

func (m *transformerModel) Step(st types.ParameterState, progress, durationHours float64, rng *rand.Rand) types.ParameterState {
	s := m.read(st)
	n := s

	n.load = clamp(clamp(s.load, 20, 140)+oscillate(progress, 8)+jitter(rng, 3), 20, 140)
	n.ambient = clamp(smoothToward(s.ambient, 30, 0.2)+oscillate(progress, 6)+jitter(rng, 2), -10, 50)

	// thermal chain load -> oil -> winding -> hotspot. Each target only pulls
	// upward past a slow-cooling floor, so an elevated reading bleeds off at
	// ~0.15 C per step instead of snapping back to the load curve.
	oilTarget := math.Max(35+n.load*0.35+(n.ambient-30)*0.4, s.oil-0.5)
	n.oil = clamp(smoothToward(s.oil, oilTarget, 0.25), 25, 120)
	windingTarget := math.Max(n.oil+12+n.load*0.05, s.winding-0.5)
	n.winding = clamp(smoothToward(s.winding, windingTarget, 0.3), 25, 160)
	hotspotTarget := math.Max(n.winding+8+math.Max(0, n.load-100)*0.3, s.hotspot-0.5)
	n.hotspot = clamp(smoothToward(s.hotspot, hotspotTarget, 0.3), 25, 180)

	// gassing accelerates once the hotspot passes its service limits
	n.hydrogen = clamp(s.hydrogen+math.Max(0, n.hotspot-105)*0.25+jitter(rng, 1), 0, 5000)
	n.methane = clamp(s.methane+math.Max(0, n.hotspot-100)*0.1+jitter(rng, 0.5), 0, 2000)
	n.acetylene = clamp(s.acetylene+math.Max(0, n.hotspot-130)*0.05+jitter(rng, 0.05), 0, 200)
	n.gasLevel = clamp(smoothToward(s.gasLevel, (n.hydrogen+n.methane)/80, 0.15), 0, 100)

	// insulation system: sustained heat pushes moisture up, dielectric
	// strength down, and slowly consumes and acidifies the oil
	n.moisture = clamp(smoothToward(s.moisture, 14+n.load*0.06+math.Max(0, n.winding-105)*0.12, 0.15)+jitter(rng, 0.4), 8, 26)
	n.oilLevel = clamp(s.oilLevel-0.02-math.Max(0, n.oil-95)*0.01-math.Max(0, n.hotspot-130)*0.02+jitter(rng, 0.1), 60, 100)
	n.acidity = clamp(s.acidity+0.0005+math.Max(0, n.oil-75)*0.00005+math.Max(0, n.hotspot-120)*0.001, 0.01, 0.6)
	n.dielectric = clamp(smoothToward(s.dielectric, 66-n.moisture*0.45-math.Max(0, n.hotspot-110)*0.4, 0.2), 20, 80)

	n.tap = clamp(math.Round(s.tap+oscillate(progress*2, 0.8)), 1, 17)
	n.tapWear = clamp(s.tapWear+0.03+math.Abs(n.tap-s.tap)*0.1, 0, 100)
	n.vibration = clamp(2+math.Max(0, n.load-90)*0.03+math.Max(0, n.hotspot-120)*0.05+oscillate(progress, 0.4)+jitter(rng, 0.2), 0, 30)

	return m.write(st, n)
}

func (m *transformerModel) Score(st types.ParameterState) types.ScorePack {
	s := m.read(st)

	oilTempScore := worse(s.oil, 55, 45)
	windingScore := worse(s.winding, 65, 55)
	hotspotScore := worse(s.hotspot, 75, 65)
	temperature := avg(oilTempScore, windingScore, hotspotScore)

	moistureScore := worse(s.moisture, 12, 14)
	levelScore := better(s.oilLevel, 60, 40)
	acidityScore := worse(s.acidity, 0.03, 0.22)
	dielectricScore := better(s.dielectric, 35, 35)
	oil := avg(moistureScore, levelScore, acidityScore, dielectricScore)

	hydrogenScore := worse(s.hydrogen, 40, 360)
	acetyleneScore := worse(s.acetylene, 1, 19)
	methaneScore := worse(s.methane, 25, 175)
	gasLevelScore := worse(s.gasLevel, 5, 25)
	gas := avg(hydrogenScore, acetyleneScore, methaneScore, gasLevelScore)

	electrical := avg(worse(s.load, 80, 60), better(s.dielectric, 30, 40))
	oltc := avg(worse(s.tapWear, 10, 80), worse(math.Abs(s.tap-9), 3, 8))
	mechanical := worse(s.vibration, 1.5, 8.5)

	subs, health := packFor(m.reg, types.TypeTransformer, map[string]float64{
		"temperature": temperature,
		"oil":         oil,
		"gas":         gas,
		"electrical":  electrical,
		"oltc":        oltc,
		"mechanical":  mechanical,
	})

	dga := clamp01(0.5*(1-hydrogenScore) + 0.3*(1-acetyleneScore) + 0.2*(1-methaneScore))
	return types.ScorePack{
		Subsystems:          subs,
		ComponentHealth:     health,
		StressIndicator:     clamp01(0.35*(1-temperature) + 0.25*(1-gas) + 0.2*(1-oil) + 0.2*(1-electrical)),
		AbnormalDGA:         dga,
		TemperatureSeverity: clamp01(math.Max((s.winding-90)/50, (s.hotspot-100)/60)),
		FaultRisk:           clamp01(0.30*(1-temperature) + 0.25*dga + 0.20*(1-oil) + 0.15*(1-electrical) + 0.10*(1-mechanical)),
	}
}

func (m *transformerModel) PredictFaults(st types.ParameterState, durationHours float64, rng *rand.Rand) []types.FaultPrediction {
	s := m.read(st)
	lim := m.reg.Tuning().Limits.Transformer
	var out []types.FaultPrediction

	if s.winding > lim.WindingAlarmC || s.hotspot > lim.HotspotAlarmC {
		over := math.Max((s.winding-lim.WindingAlarmC)/60, (s.hotspot-lim.HotspotAlarmC)/60)
		out = append(out, newFault(m.reg, m.Type(), "Thermal Overload", types.SeverityHigh,
			0.55+0.4*clamp01(over), durationHours, rng))
	}
	if s.hydrogen > lim.HydrogenAlarmPPM || s.acetylene > lim.AcetyleneAlarmPPM {
		over := math.Max((s.hydrogen-lim.HydrogenAlarmPPM)/400, (s.acetylene-lim.AcetyleneAlarmPPM)/60)
		out = append(out, newFault(m.reg, m.Type(), "Gas Accumulation", types.SeverityHigh,
			0.5+0.45*clamp01(over), durationHours, rng))
	}
	if s.dielectric < lim.DielectricMinKV || s.moisture > lim.MoistureAlarmPPM {
		over := math.Max((lim.DielectricMinKV-s.dielectric)/25, (s.moisture-lim.MoistureAlarmPPM)/8)
		out = append(out, newFault(m.reg, m.Type(), "Insulation Aging", types.SeverityMedium,
			0.45+0.4*clamp01(over), durationHours, rng))
	}
	if s.oilLevel < lim.OilLevelMinPercent {
		out = append(out, newFault(m.reg, m.Type(), "Oil Degradation", types.SeverityMedium,
			0.4+0.5*clamp01((lim.OilLevelMinPercent-s.oilLevel)/15), durationHours, rng))
	}
	if s.tapWear > lim.TapWearAlarmPercent {
		out = append(out, newFault(m.reg, m.Type(), "Tap Changer Wear", types.SeverityMedium,
			0.4+0.5*clamp01((s.tapWear-lim.TapWearAlarmPercent)/40), durationHours, rng))
	}
	return out
}
