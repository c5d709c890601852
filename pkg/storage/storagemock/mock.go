package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gridtwin/gridtwin/pkg/storage"
	"github.com/gridtwin/gridtwin/pkg/types"
)

type MockDatabase struct {
	mock.Mock
}

var _ storage.Database = (*MockDatabase)(nil)

func (m *MockDatabase) GetAssetSpecification(ctx context.Context, substationID string, t types.EquipmentType) (*types.AssetSpecification, error) {
	args := m.Called(ctx, substationID, t)
	val := args.Get(0)
	if val == nil {
		return nil, args.Error(1)
	}
	return val.(*types.AssetSpecification), args.Error(1)
}

func (m *MockDatabase) GetLatestReadings(ctx context.Context, substationID string, t types.EquipmentType) (map[string]any, error) {
	args := m.Called(ctx, substationID, t)
	val := args.Get(0)
	if val == nil {
		return nil, args.Error(1)
	}
	return val.(map[string]any), args.Error(1)
}

func (m *MockDatabase) SaveSubstation(ctx context.Context, substationID string, sub types.Substation) error {
	args := m.Called(ctx, substationID, sub)
	return args.Error(0)
}

func (m *MockDatabase) SaveReadings(ctx context.Context, substationID string, t types.EquipmentType, readings map[string]any) error {
	args := m.Called(ctx, substationID, t, readings)
	return args.Error(0)
}

func (m *MockDatabase) SaveSimulation(ctx context.Context, rec *types.SimulationRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockDatabase) GetSimulation(ctx context.Context, id string) (*types.SimulationRecord, error) {
	args := m.Called(ctx, id)
	val := args.Get(0)
	if val == nil {
		return nil, args.Error(1)
	}
	return val.(*types.SimulationRecord), args.Error(1)
}

func (m *MockDatabase) ListSimulations(ctx context.Context, substationID string, limit int) ([]*types.SimulationRecord, error) {
	args := m.Called(ctx, substationID, limit)
	val := args.Get(0)
	if val == nil {
		return nil, args.Error(1)
	}
	return val.([]*types.SimulationRecord), args.Error(1)
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}
