package types

import "time"

// DGAChemistry holds dissolved-gas-analysis results from an oil sample.
type DGAChemistry struct {
	HydrogenPPM     float64 `json:"hydrogenPPM,omitempty"`
	MethanePPM      float64 `json:"methanePPM,omitempty"`
	AcetylenePPM    float64 `json:"acetylenePPM,omitempty"`
	GasLevelPercent float64 `json:"gasLevelPercent,omitempty"`
}

// AssetSpecification is the static nameplate/configuration record for one
// piece of equipment. It is read-only input: the engine only uses it to seed
// initial parameter values when live readings are sparse. Zero-valued numeric
// fields are treated as absent.
type AssetSpecification struct {
	Manufacturer              string        `json:"manufacturer,omitempty"`
	Model                     string        `json:"model,omitempty"`
	InstallYear               int           `json:"installYear,omitempty"`
	Condition                 string        `json:"condition,omitempty"` // excellent/good/fair/poor/critical
	RatedCapacityMVA          float64       `json:"ratedCapacityMVA,omitempty"`
	RatedCurrentA             float64       `json:"ratedCurrentA,omitempty"`
	RatedVoltageKV            float64       `json:"ratedVoltageKV,omitempty"`
	Chemistry                 *DGAChemistry `json:"chemistry,omitempty"`
	SF6PressureBar            float64       `json:"sf6PressureBar,omitempty"`
	OperationCount            int           `json:"operationCount,omitempty"`
	ContactResistanceMicroOhm float64       `json:"contactResistanceMicroOhm,omitempty"`
	MotorTorquePercent        float64       `json:"motorTorquePercent,omitempty"`
}

// Substation is the master record for one substation: shared nameplate
// fields at the top level plus one asset array per equipment category. Bay
// lines are stored under "powerFlowLines" for compatibility with the
// telemetry exporter.
type Substation struct {
	AssetSpecification
	Name           string               `json:"name,omitempty"`
	Transformers   []AssetSpecification `json:"transformers,omitempty"`
	PowerFlowLines []AssetSpecification `json:"powerFlowLines,omitempty"`
	Breakers       []AssetSpecification `json:"breakers,omitempty"`
	Isolators      []AssetSpecification `json:"isolators,omitempty"`
	Busbars        []AssetSpecification `json:"busbars,omitempty"`
}

// SimulationRecord is the persisted envelope around one simulation run,
// stored for history queries.
type SimulationRecord struct {
	ID            string            `json:"id"`
	SubstationID  string            `json:"substationId"`
	EquipmentID   string            `json:"equipmentId,omitempty"`
	EquipmentType EquipmentType     `json:"equipmentType"`
	DurationHours float64           `json:"durationHours"`
	RequestedAt   time.Time         `json:"requestedAt"`
	Result        *SimulationResult `json:"result"`
}
