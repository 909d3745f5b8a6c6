package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/prop-projector/internal/database"
	"github.com/yourusername/prop-projector/internal/models"
)

// PostgresRegistryRepository implements RegistryRepository for PostgreSQL
type PostgresRegistryRepository struct {
	db *database.DB
}

// NewPostgresRegistryRepository creates a new registry repository
func NewPostgresRegistryRepository(db *database.DB) RegistryRepository {
	return &PostgresRegistryRepository{db: db}
}

// RecordTraining appends or overwrites a training history row by its key
func (r *PostgresRegistryRepository) RecordTraining(ctx context.Context, run *models.TrainedModel) error {
	query := `
		INSERT INTO trained_models
			(model_name, market_id, lookback, artifact_path, train_rows, test_rows, mae, rmse, r2)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (model_name, market_id, lookback)
		DO UPDATE SET
			artifact_path = EXCLUDED.artifact_path,
			train_rows = EXCLUDED.train_rows,
			test_rows = EXCLUDED.test_rows,
			mae = EXCLUDED.mae,
			rmse = EXCLUDED.rmse,
			r2 = EXCLUDED.r2,
			created_at = NOW()
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		run.ModelName, run.MarketID, run.Lookback, run.ArtifactPath,
		run.TrainRows, run.TestRows, run.MAE, run.RMSE, run.R2,
	)
	if err != nil {
		return fmt.Errorf("failed to record training run: %w", err)
	}

	return nil
}

// SetActive overwrites the active-model pointer for a market. Last write wins.
func (r *PostgresRegistryRepository) SetActive(ctx context.Context, pointer *models.ActiveModel) error {
	query := `
		INSERT INTO active_models (market_id, lookback, model_name, artifact_path)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (market_id)
		DO UPDATE SET
			lookback = EXCLUDED.lookback,
			model_name = EXCLUDED.model_name,
			artifact_path = EXCLUDED.artifact_path,
			updated_at = NOW()
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		pointer.MarketID, pointer.Lookback, pointer.ModelName, pointer.ArtifactPath,
	)
	if err != nil {
		return fmt.Errorf("failed to set active model: %w", err)
	}

	return nil
}

// GetActive returns the active-model pointer for a market
func (r *PostgresRegistryRepository) GetActive(ctx context.Context, marketID int) (*models.ActiveModel, error) {
	query := `
		SELECT market_id, lookback, model_name, artifact_path, updated_at
		FROM active_models
		WHERE market_id = $1
	`

	pointer := &models.ActiveModel{}
	err := r.db.GetPool().QueryRow(ctx, query, marketID).Scan(
		&pointer.MarketID, &pointer.Lookback, &pointer.ModelName, &pointer.ArtifactPath, &pointer.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("active model for market %d: %w", marketID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active model: %w", err)
	}

	return pointer, nil
}

// ListActive returns the active-model pointer of every market
func (r *PostgresRegistryRepository) ListActive(ctx context.Context) ([]models.ActiveModel, error) {
	query := `
		SELECT market_id, lookback, model_name, artifact_path, updated_at
		FROM active_models
		ORDER BY market_id
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active models: %w", err)
	}
	defer rows.Close()

	var pointers []models.ActiveModel
	for rows.Next() {
		var pointer models.ActiveModel
		if err := rows.Scan(
			&pointer.MarketID, &pointer.Lookback, &pointer.ModelName, &pointer.ArtifactPath, &pointer.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan active model: %w", err)
		}
		pointers = append(pointers, pointer)
	}

	return pointers, rows.Err()
}

// History returns all training runs recorded for a market
func (r *PostgresRegistryRepository) History(ctx context.Context, marketID int) ([]models.TrainedModel, error) {
	query := `
		SELECT model_name, market_id, lookback, artifact_path, train_rows, test_rows, mae, rmse, r2, created_at
		FROM trained_models
		WHERE market_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, marketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query training history: %w", err)
	}
	defer rows.Close()

	var runs []models.TrainedModel
	for rows.Next() {
		var run models.TrainedModel
		if err := rows.Scan(
			&run.ModelName, &run.MarketID, &run.Lookback, &run.ArtifactPath,
			&run.TrainRows, &run.TestRows, &run.MAE, &run.RMSE, &run.R2, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan training run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
