package types

import "strings"

// EquipmentType identifies the category of monitored substation apparatus.
type EquipmentType string

const (
	TypeTransformer    EquipmentType = "transformer"
	TypeBayLine        EquipmentType = "bayLines"
	TypeCircuitBreaker EquipmentType = "circuitBreaker"
	TypeIsolator       EquipmentType = "isolator"
	TypeBusbar         EquipmentType = "busbar"
)

// AllEquipmentTypes returns the closed set of supported types in a stable order.
func AllEquipmentTypes() []EquipmentType {
	return []EquipmentType{
		TypeTransformer,
		TypeBayLine,
		TypeCircuitBreaker,
		TypeIsolator,
		TypeBusbar,
	}
}

// equipmentAliases maps normalized spellings to canonical types. bay lines
// are stored as "powerFlowLines" in the substation asset documents.
var equipmentAliases = map[string]EquipmentType{
	"transformer":    TypeTransformer,
	"baylines":       TypeBayLine,
	"bayline":        TypeBayLine,
	"powerflowlines": TypeBayLine,
	"circuitbreaker": TypeCircuitBreaker,
	"breaker":        TypeCircuitBreaker,
	"isolator":       TypeIsolator,
	"disconnector":   TypeIsolator,
	"busbar":         TypeBusbar,
}

// ParseEquipmentType maps a wire value onto the closed set. It accepts the
// canonical keys plus common aliases, case- and separator-insensitively.
func ParseEquipmentType(s string) (EquipmentType, bool) {
	n := strings.ToLower(s)
	n = strings.NewReplacer("-", "", "_", "", " ", "").Replace(n)
	t, ok := equipmentAliases[n]
	return t, ok
}

// DisplayName returns a human-readable name for diagnostic summaries.
func (t EquipmentType) DisplayName() string {
	switch t {
	case TypeTransformer:
		return "Transformer"
	case TypeBayLine:
		return "Bay Line"
	case TypeCircuitBreaker:
		return "Circuit Breaker"
	case TypeIsolator:
		return "Isolator"
	case TypeBusbar:
		return "Busbar"
	}
	return string(t)
}

// Severity tiers a predicted fault.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities from least (0) to most (3) severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return -1
}
