package repository

import (
	"fmt"

	"github.com/yourusername/prop-projector/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Player     PlayerRepository
	Market     MarketRepository
	GameStat   GameStatRepository
	Feature    FeatureRepository
	Registry   RegistryRepository
	Projection ProjectionRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Player:     NewPostgresPlayerRepository(db),
		Market:     NewPostgresMarketRepository(db),
		GameStat:   NewPostgresGameStatRepository(db),
		Feature:    NewPostgresFeatureRepository(db),
		Registry:   NewPostgresRegistryRepository(db),
		Projection: NewPostgresProjectionRepository(db),
	}, nil
}
