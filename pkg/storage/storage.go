// Package storage persists substation records, telemetry snapshots and
// simulation results. The only production provider is Firestore; tests use
// the storagemock package.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/levenlabs/go-lflag"

	"github.com/gridtwin/gridtwin/pkg/types"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Database defines the interface for reading substation data and persisting
// simulation runs.
type Database interface {
	// GetAssetSpecification assembles the nameplate record for one piece of
	// equipment: the substation master fields overlaid with the first entry
	// of the matching per-type asset array.
	GetAssetSpecification(ctx context.Context, substationID string, t types.EquipmentType) (*types.AssetSpecification, error)

	// GetLatestReadings returns the stored telemetry snapshot for one
	// equipment type. A missing snapshot is empty readings, not an error.
	GetLatestReadings(ctx context.Context, substationID string, t types.EquipmentType) (map[string]any, error)

	// Seeding / ingest
	SaveSubstation(ctx context.Context, substationID string, sub types.Substation) error
	SaveReadings(ctx context.Context, substationID string, t types.EquipmentType, readings map[string]any) error

	// Simulation history
	// SaveSimulation assigns rec.ID and rec.RequestedAt when unset.
	SaveSimulation(ctx context.Context, rec *types.SimulationRecord) error
	GetSimulation(ctx context.Context, id string) (*types.SimulationRecord, error)
	// ListSimulations returns the most recent records, newest first,
	// optionally filtered by substation.
	ListSimulations(ctx context.Context, substationID string, limit int) ([]*types.SimulationRecord, error)

	// Lifecycle
	Close() error
}

// Configured sets up the Storage provider based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "firestore", "Storage provider to use (available: firestore)")

	var p struct{ Database }

	fs := configuredFirestore()

	lflag.Do(func() {
		switch *provider {
		case "firestore":
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("firestore validation failed: %v", err))
			}
			p.Database = fs
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}
