package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/prop-projector/internal/database"
	"github.com/yourusername/prop-projector/internal/models"
	"github.com/yourusername/prop-projector/internal/stats"
)

// PostgresFeatureRepository implements FeatureRepository for PostgreSQL
type PostgresFeatureRepository struct {
	db *database.DB
}

// NewPostgresFeatureRepository creates a new feature repository
func NewPostgresFeatureRepository(db *database.DB) FeatureRepository {
	return &PostgresFeatureRepository{db: db}
}

// UpsertBatch writes feature rows in a single transaction. On natural-key
// collision only the computed feature columns are overwritten; label_actual
// survives windowing re-runs untouched.
func (f *PostgresFeatureRepository) UpsertBatch(ctx context.Context, rows []models.FeatureRow) error {
	query := `
		INSERT INTO player_market_features
			(player_id, market_id, as_of_game_date, opponent, lookback,
			 mean, stddev, weighted_mean, trend)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (player_id, market_id, as_of_game_date, opponent, lookback)
		DO UPDATE SET
			mean = EXCLUDED.mean,
			stddev = EXCLUDED.stddev,
			weighted_mean = EXCLUDED.weighted_mean,
			trend = EXCLUDED.trend
	`

	return f.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, row := range rows {
			batch.Queue(query,
				row.PlayerID, row.MarketID, row.AsOfGameDate, row.Opponent, row.Lookback,
				row.Mean, row.Stddev, row.WeightedMean, row.Trend,
			)
		}
		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range rows {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to upsert feature row: %w", err)
			}
		}
		return nil
	})
}

// Latest returns the single most recent feature row for a player/market/lookback
func (f *PostgresFeatureRepository) Latest(ctx context.Context, playerID, marketID, lookback int) (*models.FeatureRow, error) {
	query := `
		SELECT player_id, market_id, as_of_game_date, opponent, lookback,
		       mean, stddev, weighted_mean, trend, label_actual
		FROM player_market_features
		WHERE player_id = $1 AND market_id = $2 AND lookback = $3
		ORDER BY as_of_game_date DESC
		LIMIT 1
	`

	row := &models.FeatureRow{}
	err := f.db.GetPool().QueryRow(ctx, query, playerID, marketID, lookback).Scan(
		&row.PlayerID, &row.MarketID, &row.AsOfGameDate, &row.Opponent, &row.Lookback,
		&row.Mean, &row.Stddev, &row.WeightedMean, &row.Trend, &row.LabelActual,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("features for player %d: %w", playerID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest features: %w", err)
	}

	return row, nil
}

// AttachLabels joins realized outcomes onto this market's feature rows and
// sets label_actual. Unmatched rows stay NULL; re-running with unchanged data
// rewrites the same values. The advisory lock serializes concurrent runs for
// the same (market, lookback) so interleaved overwrites cannot race.
func (f *PostgresFeatureRepository) AttachLabels(ctx context.Context, marketID int, field stats.StatField, lookback int) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE player_market_features pmf
		SET label_actual = pgs.%s
		FROM player_game_stats pgs
		WHERE pmf.player_id = pgs.player_id
		  AND pmf.as_of_game_date = pgs.game_date
		  AND pmf.opponent = pgs.opponent
		  AND pmf.market_id = $1
		  AND pmf.lookback = $2
	`, field.Column())

	var updated int64
	err := f.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1, $2)", marketID, lookback); err != nil {
			return fmt.Errorf("failed to acquire label-attach lock: %w", err)
		}
		tag, err := tx.Exec(ctx, query, marketID, lookback)
		if err != nil {
			return fmt.Errorf("failed to attach labels: %w", err)
		}
		updated = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}

	return updated, nil
}

// LabeledRows returns labeled feature rows joined to player position, in
// time order. Ordering by (as_of_game_date, player_id) keeps evaluation
// splits deterministic.
func (f *PostgresFeatureRepository) LabeledRows(ctx context.Context, marketID, lookback int) ([]models.LabeledRow, error) {
	query := `
		SELECT pmf.player_id, pmf.as_of_game_date, p.position,
		       pmf.mean, pmf.stddev, pmf.weighted_mean, pmf.trend, pmf.label_actual
		FROM player_market_features pmf
		JOIN players p ON p.id = pmf.player_id
		WHERE pmf.market_id = $1
		  AND pmf.lookback = $2
		  AND pmf.label_actual IS NOT NULL
		ORDER BY pmf.as_of_game_date ASC, pmf.player_id ASC
	`

	rows, err := f.db.GetPool().Query(ctx, query, marketID, lookback)
	if err != nil {
		return nil, fmt.Errorf("failed to query labeled rows: %w", err)
	}
	defer rows.Close()

	var labeled []models.LabeledRow
	for rows.Next() {
		var row models.LabeledRow
		if err := rows.Scan(
			&row.PlayerID, &row.AsOfGameDate, &row.Position,
			&row.Mean, &row.Stddev, &row.WeightedMean, &row.Trend, &row.LabelActual,
		); err != nil {
			return nil, fmt.Errorf("failed to scan labeled row: %w", err)
		}
		labeled = append(labeled, row)
	}

	return labeled, rows.Err()
}
