package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/prop-projector/internal/database"
	"github.com/yourusername/prop-projector/internal/models"
)

// PostgresMarketRepository implements MarketRepository for PostgreSQL
type PostgresMarketRepository struct {
	db *database.DB
}

// NewPostgresMarketRepository creates a new market repository
func NewPostgresMarketRepository(db *database.DB) MarketRepository {
	return &PostgresMarketRepository{db: db}
}

// Seed upserts immutable market reference data by code
func (m *PostgresMarketRepository) Seed(ctx context.Context, markets []models.Market) error {
	query := `
		INSERT INTO prop_markets (code, stat_field, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET
			stat_field = EXCLUDED.stat_field,
			name = EXCLUDED.name
	`

	return m.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, market := range markets {
			if _, err := tx.Exec(ctx, query, market.Code, market.StatField, market.Name); err != nil {
				return fmt.Errorf("failed to seed market %s: %w", market.Code, err)
			}
		}
		return nil
	})
}

// GetByCode retrieves a market by its external code
func (m *PostgresMarketRepository) GetByCode(ctx context.Context, code string) (*models.Market, error) {
	query := `SELECT id, code, stat_field, name FROM prop_markets WHERE code = $1`

	market := &models.Market{}
	err := m.db.GetPool().QueryRow(ctx, query, code).Scan(
		&market.ID, &market.Code, &market.StatField, &market.Name,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("market %s: %w", code, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get market: %w", err)
	}

	return market, nil
}

// List returns all configured markets
func (m *PostgresMarketRepository) List(ctx context.Context) ([]models.Market, error) {
	query := `SELECT id, code, stat_field, name FROM prop_markets ORDER BY code`

	rows, err := m.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query markets: %w", err)
	}
	defer rows.Close()

	var markets []models.Market
	for rows.Next() {
		var market models.Market
		if err := rows.Scan(&market.ID, &market.Code, &market.StatField, &market.Name); err != nil {
			return nil, fmt.Errorf("failed to scan market: %w", err)
		}
		markets = append(markets, market)
	}

	return markets, rows.Err()
}
