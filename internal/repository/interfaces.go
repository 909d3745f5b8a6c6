package repository

import (
	"context"

	"github.com/yourusername/prop-projector/internal/models"
	"github.com/yourusername/prop-projector/internal/stats"
)

// PlayerRepository defines the interface for player data access
type PlayerRepository interface {
	UpsertBatch(ctx context.Context, players []models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Player, error)
}

// MarketRepository defines the interface for prop market reference data
type MarketRepository interface {
	Seed(ctx context.Context, markets []models.Market) error
	GetByCode(ctx context.Context, code string) (*models.Market, error)
	List(ctx context.Context) ([]models.Market, error)
}

// GameStatRepository defines the interface for per-game stat lines
type GameStatRepository interface {
	UpsertBatch(ctx context.Context, rows []models.GameStat) error
	// ObservationsForField returns every stat line projected down to one
	// field, ordered by player then game date.
	ObservationsForField(ctx context.Context, field stats.StatField) ([]models.Observation, error)
}

// FeatureRepository defines the interface for engineered feature rows
type FeatureRepository interface {
	// UpsertBatch writes rows transactionally; either the whole batch
	// commits or none of it does. Key collisions overwrite the computed
	// feature columns and never touch label_actual.
	UpsertBatch(ctx context.Context, rows []models.FeatureRow) error
	// Latest returns the most recent row for a player/market/lookback.
	Latest(ctx context.Context, playerID, marketID, lookback int) (*models.FeatureRow, error)
	// AttachLabels joins realized outcomes onto this market's feature rows
	// for one lookback and returns the number of rows updated. Runs are
	// serialized per (market, lookback).
	AttachLabels(ctx context.Context, marketID int, field stats.StatField, lookback int) (int64, error)
	// LabeledRows returns rows with a realized label joined to player
	// position, ordered by (as_of_game_date, player_id).
	LabeledRows(ctx context.Context, marketID, lookback int) ([]models.LabeledRow, error)
}

// RegistryRepository defines the interface for training history and the
// active-model pointer
type RegistryRepository interface {
	RecordTraining(ctx context.Context, run *models.TrainedModel) error
	SetActive(ctx context.Context, pointer *models.ActiveModel) error
	GetActive(ctx context.Context, marketID int) (*models.ActiveModel, error)
	ListActive(ctx context.Context) ([]models.ActiveModel, error)
	History(ctx context.Context, marketID int) ([]models.TrainedModel, error)
}

// ProjectionRepository defines the interface for served projections
type ProjectionRepository interface {
	Upsert(ctx context.Context, projection *models.Projection) error
}
