package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/prop-projector/internal/database"
	"github.com/yourusername/prop-projector/internal/models"
	"github.com/yourusername/prop-projector/internal/stats"
)

// PostgresGameStatRepository implements GameStatRepository for PostgreSQL
type PostgresGameStatRepository struct {
	db *database.DB
}

// NewPostgresGameStatRepository creates a new game stat repository
func NewPostgresGameStatRepository(db *database.DB) GameStatRepository {
	return &PostgresGameStatRepository{db: db}
}

// UpsertBatch writes per-game stat lines keyed by (player, date, opponent)
func (g *PostgresGameStatRepository) UpsertBatch(ctx context.Context, rows []models.GameStat) error {
	query := `
		INSERT INTO player_game_stats
			(player_id, game_date, opponent, receiving_yards, receptions,
			 rushing_yards, rush_attempts, passing_yards, passing_tds, touchdowns)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (player_id, game_date, opponent) DO UPDATE SET
			receiving_yards = EXCLUDED.receiving_yards,
			receptions = EXCLUDED.receptions,
			rushing_yards = EXCLUDED.rushing_yards,
			rush_attempts = EXCLUDED.rush_attempts,
			passing_yards = EXCLUDED.passing_yards,
			passing_tds = EXCLUDED.passing_tds,
			touchdowns = EXCLUDED.touchdowns
	`

	return g.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, row := range rows {
			batch.Queue(query,
				row.PlayerID, row.GameDate, row.Opponent,
				row.ReceivingYards, row.Receptions, row.RushingYards, row.RushAttempts,
				row.PassingYards, row.PassingTDs, row.Touchdowns,
			)
		}
		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range rows {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to upsert game stat: %w", err)
			}
		}
		return nil
	})
}

// ObservationsForField returns every stat line projected to a single field,
// ordered by player then game date. The column name comes from the StatField
// enumeration, never from caller input.
func (g *PostgresGameStatRepository) ObservationsForField(ctx context.Context, field stats.StatField) ([]models.Observation, error) {
	query := fmt.Sprintf(`
		SELECT player_id, game_date, opponent, %s
		FROM player_game_stats
		ORDER BY player_id, game_date
	`, field.Column())

	rows, err := g.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var obs models.Observation
		if err := rows.Scan(&obs.PlayerID, &obs.GameDate, &obs.Opponent, &obs.Value); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		observations = append(observations, obs)
	}

	return observations, rows.Err()
}
