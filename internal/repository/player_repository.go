package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/prop-projector/internal/database"
	"github.com/yourusername/prop-projector/internal/models"
)

// PostgresPlayerRepository implements PlayerRepository for PostgreSQL
type PostgresPlayerRepository struct {
	db *database.DB
}

// NewPostgresPlayerRepository creates a new player repository
func NewPostgresPlayerRepository(db *database.DB) PlayerRepository {
	return &PostgresPlayerRepository{db: db}
}

// UpsertBatch writes players keyed by external id
func (p *PostgresPlayerRepository) UpsertBatch(ctx context.Context, players []models.Player) error {
	query := `
		INSERT INTO players (external_id, first_name, last_name, position, team)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			position = EXCLUDED.position,
			team = EXCLUDED.team
	`

	return p.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, player := range players {
			batch.Queue(query, player.ExternalID, player.FirstName, player.LastName, player.Position, player.Team)
		}
		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range players {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to upsert player: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a player by internal id
func (p *PostgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, external_id, first_name, last_name, position, team
		FROM players WHERE id = $1
	`

	player := &models.Player{}
	err := p.db.GetPool().QueryRow(ctx, query, id).Scan(
		&player.ID, &player.ExternalID, &player.FirstName, &player.LastName, &player.Position, &player.Team,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("player %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

// GetByExternalID retrieves a player by upstream identifier
func (p *PostgresPlayerRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Player, error) {
	query := `
		SELECT id, external_id, first_name, last_name, position, team
		FROM players WHERE external_id = $1
	`

	player := &models.Player{}
	err := p.db.GetPool().QueryRow(ctx, query, externalID).Scan(
		&player.ID, &player.ExternalID, &player.FirstName, &player.LastName, &player.Position, &player.Team,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("player %s: %w", externalID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}
