package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/prop-projector/internal/database"
	"github.com/yourusername/prop-projector/internal/models"
)

// PostgresProjectionRepository implements ProjectionRepository for PostgreSQL
type PostgresProjectionRepository struct {
	db *database.DB
}

// NewPostgresProjectionRepository creates a new projection repository
func NewPostgresProjectionRepository(db *database.DB) ProjectionRepository {
	return &PostgresProjectionRepository{db: db}
}

// Upsert writes a served projection, overwriting any earlier prediction for
// the same player/market/model/lookback/date.
func (p *PostgresProjectionRepository) Upsert(ctx context.Context, projection *models.Projection) error {
	query := `
		INSERT INTO ml_projections
			(id, player_id, market_code, model_name, lookback, as_of_game_date, prediction, features)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (player_id, market_code, model_name, lookback, as_of_game_date)
		DO UPDATE SET
			prediction = EXCLUDED.prediction,
			features = EXCLUDED.features,
			created_at = NOW()
	`

	_, err := p.db.GetPool().Exec(ctx, query,
		projection.ID, projection.PlayerID, projection.MarketCode, projection.ModelName,
		projection.Lookback, projection.AsOfGameDate, projection.Prediction, projection.Features,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert projection: %w", err)
	}

	return nil
}
