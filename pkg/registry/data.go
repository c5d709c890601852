package registry

import "github.com/gridtwin/gridtwin/pkg/types"

// baselines are sane starting values per equipment type; every simulated
// parameter appears here so the final state is always a superset of them.
var baselines = map[types.EquipmentType]types.ParameterState{
	types.TypeTransformer: {
		"loadPercent":           80.0,
		"ambientTemperatureC":   32.0,
		"oilTemperature":        60.0,
		"windingTemperature":    75.0,
		"hotspotTemperature":    85.0,
		"hydrogenPPM":           50.0,
		"methanePPM":            28.0,
		"acetylenePPM":          0.5,
		"gasLevelPercent":       6.0,
		"moisturePPM":           18.0,
		"oilLevelPercent":       95.0,
		"acidityMgKOH":          0.06,
		"dielectricStrength":    58.0,
		"tapPosition":           9.0,
		"tapChangerWearPercent": 22.0,
		"vibrationMMs":          2.4,
		"agingFactor":           0.5,
	},
	types.TypeBayLine: {
		"busVoltageKV":      398.0,
		"lineCurrentA":      1780.0,
		"activePowerMW":     640.0,
		"reactivePowerMVAR": 40.0,
		"powerFactor":       0.94,
		"frequencyHz":       50.02,
		"thdPercent":        2.6,
		"conductorTempC":    58.0,
		"agingFactor":       0.5,
	},
	types.TypeCircuitBreaker: {
		"operatingTimeMs":           62.0,
		"sf6PressureBar":            6.3,
		"sf6DensityPercent":         94.0,
		"motorCurrentA":             14.6,
		"contactResistanceMicroOhm": 120.0,
		"contactWearPercent":        18.0,
		"operationsCount":           4200.0,
		"contactStatus":             "CLOSED",
		"agingFactor":               0.5,
	},
	types.TypeIsolator: {
		"contactResistanceMicroOhm": 150.0,
		"motorTorquePercent":        78.0,
		"motorCurrentA":             9.5,
		"travelTimeSec":             6.5,
		"alignmentPercent":          94.0,
		"operationsCount":           850.0,
		"position":                  "CLOSED",
		"agingFactor":               0.5,
	},
	types.TypeBusbar: {
		"voltageKV":               400.0,
		"currentA":                2500.0,
		"loadPercent":             62.0,
		"temperatureC":            66.0,
		"jointResistanceMicroOhm": 45.0,
		"agingFactor":             0.5,
	},
}

// subsystemOrder fixes the display order of sub-scores per type; the
// narrator and the catalog endpoint both follow it.
var subsystemOrder = map[types.EquipmentType][]string{
	types.TypeTransformer:    {"temperature", "oil", "gas", "electrical", "oltc", "mechanical"},
	types.TypeBayLine:        {"loading", "powerQuality", "voltageFrequency", "thermal"},
	types.TypeCircuitBreaker: {"interrupter", "mechanism", "contacts", "auxiliary"},
	types.TypeIsolator:       {"contacts", "drive", "motor", "structure"},
	types.TypeBusbar:         {"thermal", "loading", "connections"},
}

// faultLibraries are the known failure signatures per type. The list is a
// superset of what the threshold rules can emit; extra entries exist for the
// catalog and for callers that classify external observations.
var faultLibraries = map[types.EquipmentType][]FaultSignature{
	types.TypeTransformer: {
		{
			FaultType:         "Thermal Overload",
			Severity:          types.SeverityHigh,
			Cause:             "Sustained loading beyond nameplate rating",
			AffectedPart:      "HV winding",
			RecommendedAction: "Reduce loading and verify all cooling stages run",
		},
		{
			FaultType:         "Gas Accumulation",
			Severity:          types.SeverityHigh,
			Cause:             "Incipient arcing or severe overheating of insulation",
			AffectedPart:      "Main tank",
			RecommendedAction: "Run DGA sampling and plan an internal inspection",
		},
		{
			FaultType:         "Insulation Aging",
			Severity:          types.SeverityMedium,
			Cause:             "Moisture ingress degrading cellulose insulation",
			AffectedPart:      "Winding insulation",
			RecommendedAction: "Schedule oil reclamation and dry-out",
		},
		{
			FaultType:         "Oil Degradation",
			Severity:          types.SeverityMedium,
			Cause:             "Oxidation and contamination of the insulating oil",
			AffectedPart:      "Main tank",
			RecommendedAction: "Test oil quality and filter or replace the charge",
		},
		{
			FaultType:         "Tap Changer Wear",
			Severity:          types.SeverityMedium,
			Cause:             "Mechanical wear of diverter contacts",
			AffectedPart:      "OLTC compartment",
			RecommendedAction: "Inspect diverter contacts at the next outage",
		},
		{
			FaultType:         "Winding Hotspot",
			Severity:          types.SeverityHigh,
			Cause:             "Localized overheating from blocked cooling ducts",
			AffectedPart:      "HV winding",
			RecommendedAction: "Check oil flow and duct blockage indicators",
		},
	},
	types.TypeBayLine: {
		{
			FaultType:         "Power Swing / Stability Risk",
			Severity:          types.SeverityHigh,
			Cause:             "Oscillating power transfer after a remote disturbance",
			AffectedPart:      "Line section A",
			RecommendedAction: "Review protection settings and damping controls",
		},
		{
			FaultType:         "Voltage Sag",
			Severity:          types.SeverityMedium,
			Cause:             "Upstream fault or heavy motor starting nearby",
			AffectedPart:      "PT circuit",
			RecommendedAction: "Verify regulator setpoints and tap positions",
		},
		{
			FaultType:         "Current Unbalance",
			Severity:          types.SeverityMedium,
			Cause:             "Asymmetric loading or a degraded CT",
			AffectedPart:      "CT core",
			RecommendedAction: "Balance feeder load and test CT secondaries",
		},
		{
			FaultType:         "Conductor Overheating",
			Severity:          types.SeverityHigh,
			Cause:             "Loading above the conductor thermal limit",
			AffectedPart:      "Line conductor",
			RecommendedAction: "Shed load or re-rate the span",
		},
		{
			FaultType:         "Frequency Excursion",
			Severity:          types.SeverityHigh,
			Cause:             "System generation/load imbalance",
			AffectedPart:      "System interface",
			RecommendedAction: "Confirm with the system operator before local action",
		},
	},
	types.TypeCircuitBreaker: {
		{
			FaultType:         "SF6 Leakage",
			Severity:          types.SeverityCritical,
			Cause:             "Loss of insulating gas through flange or seal leaks",
			AffectedPart:      "Tank",
			RecommendedAction: "Schedule gas top-up and leak sealing",
		},
		{
			FaultType:         "Slow Operating Mechanism",
			Severity:          types.SeverityHigh,
			Cause:             "Degraded spring charge or sluggish drive train",
			AffectedPart:      "Spring drive",
			RecommendedAction: "Service the mechanism and re-time the breaker",
		},
		{
			FaultType:         "Contact Wear",
			Severity:          types.SeverityMedium,
			Cause:             "Erosion of arcing contacts after repeated interruptions",
			AffectedPart:      "Arcing contact",
			RecommendedAction: "Measure contact resistance and plan replacement",
		},
		{
			FaultType:         "Nozzle Ablation",
			Severity:          types.SeverityMedium,
			Cause:             "Interrupter nozzle wear from high-energy arcing",
			AffectedPart:      "Interrupter",
			RecommendedAction: "Inspect interrupter internals at the next overhaul",
		},
	},
	types.TypeIsolator: {
		{
			FaultType:         "Contact Resistance Rise",
			Severity:          types.SeverityHigh,
			Cause:             "Oxidised or pitted jaw contact surfaces",
			AffectedPart:      "Jaw contact",
			RecommendedAction: "Clean and re-grease contacts; verify closing force",
		},
		{
			FaultType:         "Drive Torque Drop",
			Severity:          types.SeverityMedium,
			Cause:             "Loss of lubrication or spring fatigue in the drive",
			AffectedPart:      "Drive shaft",
			RecommendedAction: "Lubricate the linkage and check spring tension",
		},
		{
			FaultType:         "Motor Stall",
			Severity:          types.SeverityCritical,
			Cause:             "Seized linkage drawing locked-rotor current",
			AffectedPart:      "Motor unit",
			RecommendedAction: "Free the linkage and replace the motor if damaged",
		},
		{
			FaultType:         "Misalignment",
			Severity:          types.SeverityMedium,
			Cause:             "Blade misalignment preventing full engagement",
			AffectedPart:      "Main blade",
			RecommendedAction: "Re-align blades and re-check interlocks",
		},
	},
	types.TypeBusbar: {
		{
			FaultType:         "Thermal Hotspot",
			Severity:          types.SeverityHigh,
			Cause:             "Localized heating at a joint or section",
			AffectedPart:      "Section-2",
			RecommendedAction: "Thermographic survey and joint re-torque",
		},
		{
			FaultType:         "Shield Connection Loose",
			Severity:          types.SeverityMedium,
			Cause:             "Loosened shield or spacer clamp connection",
			AffectedPart:      "Spacer clamp",
			RecommendedAction: "Tighten clamps during the next dead window",
		},
		{
			FaultType:         "Overload Risk",
			Severity:          types.SeverityHigh,
			Cause:             "Loading approaching the busbar rating",
			AffectedPart:      "Phase B",
			RecommendedAction: "Rebalance feeders or uprate the section",
		},
		{
			FaultType:         "Insulator Flashover Risk",
			Severity:          types.SeverityCritical,
			Cause:             "Contamination or cracking of support insulators",
			AffectedPart:      "Support insulator",
			RecommendedAction: "Clean or replace insulators promptly",
		},
	},
}

// buildThresholds derives the display threshold bands from the same limits
// the fault rules evaluate, so the two can never drift apart.
func buildThresholds(tn Tuning) map[types.EquipmentType][]ParameterThreshold {
	tr := tn.Limits.Transformer
	bl := tn.Limits.BayLine
	cb := tn.Limits.CircuitBreaker
	iso := tn.Limits.Isolator
	bb := tn.Limits.Busbar

	return map[types.EquipmentType][]ParameterThreshold{
		types.TypeTransformer: {
			{Parameter: "windingTemperature", Unit: "C", NormalMin: 55, NormalMax: 105, AlarmMax: tr.WindingAlarmC},
			{Parameter: "hotspotTemperature", Unit: "C", NormalMin: 60, NormalMax: 120, AlarmMax: tr.HotspotAlarmC},
			{Parameter: "hydrogenPPM", Unit: "ppm", NormalMin: 0, NormalMax: 200, AlarmMax: tr.HydrogenAlarmPPM},
			{Parameter: "acetylenePPM", Unit: "ppm", NormalMin: 0, NormalMax: 5, AlarmMax: tr.AcetyleneAlarmPPM},
			{Parameter: "moisturePPM", Unit: "ppm", NormalMin: 8, NormalMax: 22, AlarmMax: tr.MoistureAlarmPPM},
			{Parameter: "dielectricStrength", Unit: "kV", NormalMin: 50, NormalMax: 80, AlarmMin: tr.DielectricMinKV},
			{Parameter: "oilLevelPercent", Unit: "%", NormalMin: 80, NormalMax: 100, AlarmMin: tr.OilLevelMinPercent},
			{Parameter: "tapChangerWearPercent", Unit: "%", NormalMin: 0, NormalMax: 50, AlarmMax: tr.TapWearAlarmPercent},
		},
		types.TypeBayLine: {
			{Parameter: "busVoltageKV", Unit: "kV", NormalMin: 385, NormalMax: 415, AlarmMin: bl.VoltageMinKV, AlarmMax: bl.VoltageMaxKV},
			{Parameter: "lineCurrentA", Unit: "A", NormalMin: 200, NormalMax: 2500, AlarmMax: bl.CurrentAlarmA},
			{Parameter: "powerFactor", Unit: "", NormalMin: 0.9, NormalMax: 1, AlarmMin: bl.PowerFactorMin},
			{Parameter: "reactivePowerMVAR", Unit: "MVAR", NormalMin: 0, NormalMax: 300, AlarmMax: bl.ReactiveAlarmMVAR},
			{Parameter: "thdPercent", Unit: "%", NormalMin: 0, NormalMax: 5, AlarmMax: bl.THDAlarmPercent},
			{Parameter: "frequencyHz", Unit: "Hz", NormalMin: 49.8, NormalMax: 50.2, AlarmMin: 50 - bl.FrequencyBandHz, AlarmMax: 50 + bl.FrequencyBandHz},
			{Parameter: "conductorTempC", Unit: "C", NormalMin: 20, NormalMax: 85, AlarmMax: bl.ConductorAlarmC},
		},
		types.TypeCircuitBreaker: {
			{Parameter: "sf6DensityPercent", Unit: "%", NormalMin: 90, NormalMax: 100, AlarmMin: cb.SF6DensityMinPercent},
			{Parameter: "sf6PressureBar", Unit: "bar", NormalMin: 5.8, NormalMax: 7.2, AlarmMin: cb.SF6PressureMinBar},
			{Parameter: "operatingTimeMs", Unit: "ms", NormalMin: 40, NormalMax: 80, AlarmMax: cb.OperatingTimeAlarmMs},
			{Parameter: "motorCurrentA", Unit: "A", NormalMin: 8, NormalMax: 18, AlarmMax: cb.MotorCurrentAlarmA},
			{Parameter: "contactWearPercent", Unit: "%", NormalMin: 0, NormalMax: 45, AlarmMax: cb.ContactWearAlarmPercent},
			{Parameter: "contactResistanceMicroOhm", Unit: "uOhm", NormalMin: 60, NormalMax: 300, AlarmMax: cb.ContactResistanceAlarmMicroOhm},
		},
		types.TypeIsolator: {
			{Parameter: "contactResistanceMicroOhm", Unit: "uOhm", NormalMin: 80, NormalMax: 350, AlarmMax: iso.ContactResistanceAlarmMicroOhm},
			{Parameter: "motorTorquePercent", Unit: "%", NormalMin: 60, NormalMax: 100, AlarmMin: iso.TorqueMinPercent},
			{Parameter: "motorCurrentA", Unit: "A", NormalMin: 4, NormalMax: 15, AlarmMax: iso.MotorCurrentAlarmA},
			{Parameter: "travelTimeSec", Unit: "s", NormalMin: 4, NormalMax: 12, AlarmMax: iso.TravelTimeAlarmSec},
			{Parameter: "alignmentPercent", Unit: "%", NormalMin: 80, NormalMax: 100, AlarmMin: iso.AlignmentMinPercent},
		},
		types.TypeBusbar: {
			{Parameter: "temperatureC", Unit: "C", NormalMin: 30, NormalMax: 85, AlarmMax: bb.TemperatureAlarmC},
			{Parameter: "jointResistanceMicroOhm", Unit: "uOhm", NormalMin: 25, NormalMax: 100, AlarmMax: bb.JointResistanceAlarmMicroOhm},
			{Parameter: "currentA", Unit: "A", NormalMin: 500, NormalMax: 3200, AlarmMax: bb.CurrentAlarmA},
			{Parameter: "loadPercent", Unit: "%", NormalMin: 20, NormalMax: 100, AlarmMax: bb.LoadAlarmPercent},
		},
	}
}
