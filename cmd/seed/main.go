// Command seed writes demo substations and telemetry snapshots to the
// Firestore emulator for local development. Riverside is a healthy 400 kV
// yard; Oak Hollow is a 1994 install with enough degradation to trip fault
// predictions, so both ends of the scoring range show up in demos.
package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/gridtwin/gridtwin/pkg/log"
	"github.com/gridtwin/gridtwin/pkg/storage"
	"github.com/gridtwin/gridtwin/pkg/types"

	"github.com/levenlabs/go-lflag"
)

func main() {
	os.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:8087")
	s := storage.Configured()
	lflag.Configure()

	ctx := context.Background()
	log.Ctx(ctx).InfoContext(ctx, "seeding demo substations")

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	for id, sub := range demoSubstations() {
		if err := s.SaveSubstation(ctx, id, sub); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to save substation", slog.String("substationID", id), slog.Any("error", err))
			os.Exit(1)
		}
		for t, readings := range demoReadings(id, rng) {
			if err := s.SaveReadings(ctx, id, t, readings); err != nil {
				log.Ctx(ctx).ErrorContext(ctx, "failed to save readings", slog.String("substationID", id), slog.String("equipmentType", string(t)), slog.Any("error", err))
				os.Exit(1)
			}
		}
		log.Ctx(ctx).InfoContext(ctx, "seeded substation", slog.String("substationID", id))
	}

	if err := s.Close(); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to close storage", slog.Any("error", err))
	}
	log.Ctx(ctx).InfoContext(ctx, "seeding complete")
}

func demoSubstations() map[string]types.Substation {
	return map[string]types.Substation{
		"riverside": {
			AssetSpecification: types.AssetSpecification{
				Manufacturer: "ABB",
				InstallYear:  2012,
				Condition:    "good",
			},
			Name: "Riverside 400kV",
			Transformers: []types.AssetSpecification{{
				Model:            "TrafoStar 300",
				RatedCapacityMVA: 300,
				RatedVoltageKV:   400,
				Chemistry: &types.DGAChemistry{
					HydrogenPPM:     32,
					MethanePPM:      20,
					AcetylenePPM:    0.3,
					GasLevelPercent: 4,
				},
			}},
			PowerFlowLines: []types.AssetSpecification{{
				RatedCurrentA:  2600,
				RatedVoltageKV: 400,
			}},
			Breakers: []types.AssetSpecification{{
				Model:          "HPL 420",
				SF6PressureBar: 6.7,
				OperationCount: 3200,
			}},
			Isolators: []types.AssetSpecification{{
				ContactResistanceMicroOhm: 120,
				MotorTorquePercent:        72,
			}},
			Busbars: []types.AssetSpecification{{
				RatedVoltageKV: 400,
				RatedCurrentA:  3150,
			}},
		},
		"oakhollow": {
			AssetSpecification: types.AssetSpecification{
				Manufacturer: "Siemens",
				InstallYear:  1994,
				Condition:    "fair",
			},
			Name: "Oak Hollow 220kV",
			Transformers: []types.AssetSpecification{{
				Model:            "TDÜ 7422",
				RatedCapacityMVA: 160,
				RatedVoltageKV:   220,
				Chemistry: &types.DGAChemistry{
					HydrogenPPM:     170,
					MethanePPM:      95,
					AcetylenePPM:    2.4,
					GasLevelPercent: 14,
				},
			}},
			PowerFlowLines: []types.AssetSpecification{{
				RatedCurrentA:  1600,
				RatedVoltageKV: 220,
			}},
			Breakers: []types.AssetSpecification{{
				SF6PressureBar: 6.1,
				OperationCount: 8400,
			}},
			Isolators: []types.AssetSpecification{{
				ContactResistanceMicroOhm: 420,
				MotorTorquePercent:        46,
			}},
			Busbars: []types.AssetSpecification{{
				RatedVoltageKV: 220,
				RatedCurrentA:  2000,
			}},
		},
	}
}

// j jitters a base value by up to ±spread so repeated seeding produces
// slightly different snapshots.
func j(rng *rand.Rand, base, spread float64) float64 {
	return base + (rng.Float64()*2-1)*spread
}

func demoReadings(substationID string, rng *rand.Rand) map[types.EquipmentType]map[string]any {
	if substationID == "oakhollow" {
		return map[types.EquipmentType]map[string]any{
			types.TypeTransformer: {
				"loadPercent":        j(rng, 92, 3),
				"windingTemperature": j(rng, 98, 2),
				"hotspotTemperature": j(rng, 110, 2),
				"oilTemperature":     j(rng, 78, 2),
				"hydrogenPPM":        j(rng, 180, 10),
				"methanePPM":         j(rng, 96, 6),
				"moisturePPM":        j(rng, 30, 3),
				"oilLevelPercent":    j(rng, 88, 1),
			},
			types.TypeBayLine: {
				"lineCurrentA":   j(rng, 1550, 40),
				"busVoltageKV":   j(rng, 216, 1.5),
				"powerFactor":    j(rng, 0.86, 0.01),
				"thdPercent":     j(rng, 5.4, 0.3),
				"conductorTempC": j(rng, 81, 2),
			},
			types.TypeCircuitBreaker: {
				"sf6DensityPercent":         j(rng, 84, 1),
				"sf6PressureBar":            j(rng, 5.95, 0.05),
				"operatingTimeMs":           j(rng, 88, 3),
				"contactWearPercent":        j(rng, 46, 2),
				"contactResistanceMicroOhm": j(rng, 240, 15),
				"contactStatus":             "CLOSED",
			},
			types.TypeIsolator: {
				"contactResistanceMicroOhm": j(rng, 430, 20),
				"motorTorquePercent":        j(rng, 46, 2),
				"motorCurrentA":             j(rng, 16, 1),
				"travelTimeSec":             j(rng, 11, 0.5),
				"alignmentPercent":          j(rng, 81, 1),
				"position":                  "CLOSED",
			},
			types.TypeBusbar: {
				"temperatureC":            j(rng, 88, 2),
				"jointResistanceMicroOhm": j(rng, 130, 8),
				"currentA":                j(rng, 1900, 50),
				"voltageKV":               j(rng, 216, 1.5),
				"loadPercent":             j(rng, 82, 3),
			},
		}
	}
	return map[types.EquipmentType]map[string]any{
		types.TypeTransformer: {
			"loadPercent":        j(rng, 74, 4),
			"windingTemperature": j(rng, 71, 2),
			"hotspotTemperature": j(rng, 80, 2),
			"oilTemperature":     j(rng, 57, 2),
			"hydrogenPPM":        j(rng, 34, 4),
			"methanePPM":         j(rng, 21, 3),
			"oilLevelPercent":    j(rng, 96, 1),
		},
		types.TypeBayLine: {
			"lineCurrentA":   j(rng, 1720, 40),
			"busVoltageKV":   j(rng, 399, 1),
			"powerFactor":    j(rng, 0.95, 0.01),
			"thdPercent":     j(rng, 2.3, 0.2),
			"conductorTempC": j(rng, 55, 2),
		},
		types.TypeCircuitBreaker: {
			"sf6DensityPercent":  j(rng, 95, 0.5),
			"sf6PressureBar":     j(rng, 6.6, 0.05),
			"operatingTimeMs":    j(rng, 58, 2),
			"contactWearPercent": j(rng, 14, 1),
			"contactStatus":      "CLOSED",
		},
		types.TypeIsolator: {
			"contactResistanceMicroOhm": j(rng, 125, 8),
			"motorTorquePercent":        j(rng, 74, 2),
			"motorCurrentA":             j(rng, 9, 0.5),
			"travelTimeSec":             j(rng, 6.2, 0.3),
			"alignmentPercent":          j(rng, 95, 1),
			"position":                  "CLOSED",
		},
		types.TypeBusbar: {
			"temperatureC":            j(rng, 57, 2),
			"jointResistanceMicroOhm": j(rng, 40, 3),
			"currentA":                j(rng, 2450, 60),
			"voltageKV":               j(rng, 400, 1),
			"loadPercent":             j(rng, 60, 3),
		},
	}
}
