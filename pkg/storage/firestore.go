package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/levenlabs/go-lflag"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gridtwin/gridtwin/pkg/log"
	"github.com/gridtwin/gridtwin/pkg/types"
)

// FirestoreProvider implements the Database interface using Google Cloud
// Firestore. Substations live under "substations/{id}" with a "readings"
// sub-collection per equipment type; simulation runs land in "simulations".
type FirestoreProvider struct {
	client    *firestore.Client
	projectID string
	database  string
}

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// set this because that's how firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured.
func (f *FirestoreProvider) Validate() error {
	// Project ID verification could be here, but we allow empty if inferred.
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// docJSON extracts and unmarshals the "json" blob field that every document
// in this schema carries.
func docJSON(doc *firestore.DocumentSnapshot, dst any) error {
	val, err := doc.DataAt("json")
	if err != nil {
		return fmt.Errorf("document %s missing 'json' field: %w", doc.Ref.ID, err)
	}
	jsonStr, ok := val.(string)
	if !ok {
		return fmt.Errorf("document %s 'json' field is not a string", doc.Ref.ID)
	}
	if err := json.Unmarshal([]byte(jsonStr), dst); err != nil {
		return fmt.Errorf("failed to unmarshal document %s: %w", doc.Ref.ID, err)
	}
	return nil
}

// assetDoc tolerates the install-year spellings seen in exported substation
// documents: installYear, installationYear and commissionedYear.
type assetDoc struct {
	types.AssetSpecification
	InstallationYear int `json:"installationYear,omitempty"`
	CommissionedYear int `json:"commissionedYear,omitempty"`
}

func (d assetDoc) spec() types.AssetSpecification {
	s := d.AssetSpecification
	if s.InstallYear == 0 {
		if d.InstallationYear != 0 {
			s.InstallYear = d.InstallationYear
		} else if d.CommissionedYear != 0 {
			s.InstallYear = d.CommissionedYear
		}
	}
	return s
}

// substationDoc is the read-side shape of a substation master document:
// shared nameplate fields at the top level plus one asset array per
// equipment category.
type substationDoc struct {
	assetDoc
	Transformers   []assetDoc `json:"transformers,omitempty"`
	PowerFlowLines []assetDoc `json:"powerFlowLines,omitempty"`
	Breakers       []assetDoc `json:"breakers,omitempty"`
	Isolators      []assetDoc `json:"isolators,omitempty"`
	Busbars        []assetDoc `json:"busbars,omitempty"`
}

func (d substationDoc) assets(t types.EquipmentType) []assetDoc {
	switch t {
	case types.TypeTransformer:
		return d.Transformers
	case types.TypeBayLine:
		return d.PowerFlowLines
	case types.TypeCircuitBreaker:
		return d.Breakers
	case types.TypeIsolator:
		return d.Isolators
	case types.TypeBusbar:
		return d.Busbars
	}
	return nil
}

// mergeSpec overlays the asset entry onto the substation master record.
// Asset-level fields win wherever they are set.
func mergeSpec(master, asset types.AssetSpecification) types.AssetSpecification {
	out := master
	if asset.Manufacturer != "" {
		out.Manufacturer = asset.Manufacturer
	}
	if asset.Model != "" {
		out.Model = asset.Model
	}
	if asset.InstallYear != 0 {
		out.InstallYear = asset.InstallYear
	}
	if asset.Condition != "" {
		out.Condition = asset.Condition
	}
	if asset.RatedCapacityMVA != 0 {
		out.RatedCapacityMVA = asset.RatedCapacityMVA
	}
	if asset.RatedCurrentA != 0 {
		out.RatedCurrentA = asset.RatedCurrentA
	}
	if asset.RatedVoltageKV != 0 {
		out.RatedVoltageKV = asset.RatedVoltageKV
	}
	if asset.Chemistry != nil {
		out.Chemistry = asset.Chemistry
	}
	if asset.SF6PressureBar != 0 {
		out.SF6PressureBar = asset.SF6PressureBar
	}
	if asset.OperationCount != 0 {
		out.OperationCount = asset.OperationCount
	}
	if asset.ContactResistanceMicroOhm != 0 {
		out.ContactResistanceMicroOhm = asset.ContactResistanceMicroOhm
	}
	if asset.MotorTorquePercent != 0 {
		out.MotorTorquePercent = asset.MotorTorquePercent
	}
	return out
}

// GetAssetSpecification retrieves the substation master document and folds
// the first matching per-type asset entry on top of it.
func (f *FirestoreProvider) GetAssetSpecification(ctx context.Context, substationID string, t types.EquipmentType) (*types.AssetSpecification, error) {
	if substationID == "" {
		return nil, fmt.Errorf("%w: substationID cannot be empty", ErrInvalidArgument)
	}
	doc, err := f.client.Collection("substations").Doc(substationID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: substation %s", ErrNotFound, substationID)
		}
		return nil, fmt.Errorf("failed to get substation %s: %w", substationID, err)
	}

	var sub substationDoc
	if err := docJSON(doc, &sub); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "malformed substation doc", slog.String("substationID", substationID), slog.Any("error", err))
		return nil, err
	}

	spec := sub.spec()
	if assets := sub.assets(t); len(assets) > 0 {
		spec = mergeSpec(spec, assets[0].spec())
	}
	return &spec, nil
}

// GetLatestReadings retrieves the stored telemetry snapshot from the
// "readings/{type}" document under the substation. A missing document means
// no telemetry has been exported yet; the caller proceeds from the baseline.
func (f *FirestoreProvider) GetLatestReadings(ctx context.Context, substationID string, t types.EquipmentType) (map[string]any, error) {
	if substationID == "" {
		return nil, fmt.Errorf("%w: substationID cannot be empty", ErrInvalidArgument)
	}
	doc, err := f.client.Collection("substations").Doc(substationID).Collection("readings").Doc(string(t)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			log.Ctx(ctx).DebugContext(ctx, "no stored readings",
				slog.String("substationID", substationID), slog.String("equipmentType", string(t)))
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to get readings %s/%s: %w", substationID, t, err)
	}

	var readings map[string]any
	if err := docJSON(doc, &readings); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "malformed readings doc",
			slog.String("substationID", substationID), slog.String("equipmentType", string(t)), slog.Any("error", err))
		return nil, err
	}
	return readings, nil
}

// SaveSubstation creates or replaces a substation master document.
func (f *FirestoreProvider) SaveSubstation(ctx context.Context, substationID string, sub types.Substation) error {
	if substationID == "" {
		return fmt.Errorf("%w: substationID cannot be empty", ErrInvalidArgument)
	}
	jsonBytes, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal substation %s: %w", substationID, err)
	}
	_, err = f.client.Collection("substations").Doc(substationID).Set(ctx, map[string]interface{}{
		"json": string(jsonBytes),
		"name": sub.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to save substation %s: %w", substationID, err)
	}
	return nil
}

// SaveReadings replaces the telemetry snapshot for one equipment type.
func (f *FirestoreProvider) SaveReadings(ctx context.Context, substationID string, t types.EquipmentType, readings map[string]any) error {
	if substationID == "" {
		return fmt.Errorf("%w: substationID cannot be empty", ErrInvalidArgument)
	}
	jsonBytes, err := json.Marshal(readings)
	if err != nil {
		return fmt.Errorf("failed to marshal readings %s/%s: %w", substationID, t, err)
	}
	_, err = f.client.Collection("substations").Doc(substationID).Collection("readings").Doc(string(t)).Set(ctx, map[string]interface{}{
		"json":      string(jsonBytes),
		"updatedAt": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to save readings %s/%s: %w", substationID, t, err)
	}
	return nil
}

// SaveSimulation persists one run to the "simulations" collection. A missing
// ID gets a fresh UUID and a zero RequestedAt gets the current time, both
// written back to rec.
func (f *FirestoreProvider) SaveSimulation(ctx context.Context, rec *types.SimulationRecord) error {
	if rec == nil {
		return fmt.Errorf("simulation record cannot be nil")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.RequestedAt.IsZero() {
		rec.RequestedAt = time.Now().UTC()
	}
	jsonBytes, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal simulation %s: %w", rec.ID, err)
	}
	_, err = f.client.Collection("simulations").Doc(rec.ID).Create(ctx, map[string]interface{}{
		"json":         string(jsonBytes),
		"timestamp":    rec.RequestedAt,
		"substationId": rec.SubstationID,
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("%w: simulation %s", ErrAlreadyExists, rec.ID)
		}
		return fmt.Errorf("failed to save simulation %s: %w", rec.ID, err)
	}
	return nil
}

// GetSimulation retrieves one stored run by ID.
func (f *FirestoreProvider) GetSimulation(ctx context.Context, id string) (*types.SimulationRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: simulation id cannot be empty", ErrInvalidArgument)
	}
	doc, err := f.client.Collection("simulations").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: simulation %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get simulation %s: %w", id, err)
	}

	var rec types.SimulationRecord
	if err := docJSON(doc, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListSimulations returns the most recent runs, newest first. Filtering by
// substation together with the timestamp ordering needs a composite index
// outside the emulator.
func (f *FirestoreProvider) ListSimulations(ctx context.Context, substationID string, limit int) ([]*types.SimulationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	q := f.client.Collection("simulations").Query
	if substationID != "" {
		q = q.Where("substationId", "==", substationID)
	}
	iter := q.OrderBy("timestamp", firestore.Desc).Limit(limit).Documents(ctx)
	defer iter.Stop()

	var recs []*types.SimulationRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating simulations: %w", err)
		}

		var rec types.SimulationRecord
		if err := docJSON(doc, &rec); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "skipping malformed simulation doc", slog.String("docID", doc.Ref.ID), slog.Any("error", err))
			// Skip malformed documents
			continue
		}
		recs = append(recs, &rec)
	}
	return recs, nil
}
