package service

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/prop-projector/internal/logger"
	"github.com/yourusername/prop-projector/internal/models"
	"github.com/yourusername/prop-projector/internal/stats"
)

func testPipelineLogger() *logger.PipelineLogger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return logger.NewPipelineLogger(base)
}

// MockPlayerRepository mocks player directory access
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) UpsertBatch(ctx context.Context, players []models.Player) error {
	args := m.Called(ctx, players)
	return args.Error(0)
}

func (m *MockPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Player, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

// MockMarketRepository mocks market reference data access
type MockMarketRepository struct {
	mock.Mock
}

func (m *MockMarketRepository) Seed(ctx context.Context, markets []models.Market) error {
	args := m.Called(ctx, markets)
	return args.Error(0)
}

func (m *MockMarketRepository) GetByCode(ctx context.Context, code string) (*models.Market, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Market), args.Error(1)
}

func (m *MockMarketRepository) List(ctx context.Context) ([]models.Market, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Market), args.Error(1)
}

// MockGameStatRepository mocks stat line access
type MockGameStatRepository struct {
	mock.Mock
}

func (m *MockGameStatRepository) UpsertBatch(ctx context.Context, rows []models.GameStat) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockGameStatRepository) ObservationsForField(ctx context.Context, field stats.StatField) ([]models.Observation, error) {
	args := m.Called(ctx, field)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Observation), args.Error(1)
}

// MockFeatureRepository mocks feature row access
type MockFeatureRepository struct {
	mock.Mock
}

func (m *MockFeatureRepository) UpsertBatch(ctx context.Context, rows []models.FeatureRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockFeatureRepository) Latest(ctx context.Context, playerID, marketID, lookback int) (*models.FeatureRow, error) {
	args := m.Called(ctx, playerID, marketID, lookback)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeatureRow), args.Error(1)
}

func (m *MockFeatureRepository) AttachLabels(ctx context.Context, marketID int, field stats.StatField, lookback int) (int64, error) {
	args := m.Called(ctx, marketID, field, lookback)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFeatureRepository) LabeledRows(ctx context.Context, marketID, lookback int) ([]models.LabeledRow, error) {
	args := m.Called(ctx, marketID, lookback)
	return args.Get(0).([]models.LabeledRow), args.Error(1)
}

// MockRegistryRepository mocks the model registry
type MockRegistryRepository struct {
	mock.Mock
}

func (m *MockRegistryRepository) RecordTraining(ctx context.Context, run *models.TrainedModel) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRegistryRepository) SetActive(ctx context.Context, pointer *models.ActiveModel) error {
	args := m.Called(ctx, pointer)
	return args.Error(0)
}

func (m *MockRegistryRepository) GetActive(ctx context.Context, marketID int) (*models.ActiveModel, error) {
	args := m.Called(ctx, marketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActiveModel), args.Error(1)
}

func (m *MockRegistryRepository) ListActive(ctx context.Context) ([]models.ActiveModel, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ActiveModel), args.Error(1)
}

func (m *MockRegistryRepository) History(ctx context.Context, marketID int) ([]models.TrainedModel, error) {
	args := m.Called(ctx, marketID)
	return args.Get(0).([]models.TrainedModel), args.Error(1)
}

// MockProjectionRepository mocks projection persistence
type MockProjectionRepository struct {
	mock.Mock
}

func (m *MockProjectionRepository) Upsert(ctx context.Context, projection *models.Projection) error {
	args := m.Called(ctx, projection)
	return args.Error(0)
}

// memoryStore is an in-memory artifact store for tests.
type memoryStore struct {
	blobs map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{blobs: map[string][]byte{}}
}

func (s *memoryStore) Write(name string, data []byte) error {
	s.blobs[name] = data
	return nil
}

func (s *memoryStore) Read(name string) ([]byte, error) {
	data, ok := s.blobs[name]
	if !ok {
		return nil, fmt.Errorf("artifact %s: %w", name, models.ErrNotFound)
	}
	return data, nil
}

func (s *memoryStore) Exists(name string) bool {
	_, ok := s.blobs[name]
	return ok
}

func (s *memoryStore) Path(name string) string {
	return "mem://" + name
}
