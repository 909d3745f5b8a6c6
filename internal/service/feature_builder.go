// Package service orchestrates the pipeline stages over the repository and
// artifact layers.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/prop-projector/internal/features"
	"github.com/yourusername/prop-projector/internal/logger"
	"github.com/yourusername/prop-projector/internal/metrics"
	"github.com/yourusername/prop-projector/internal/models"
	"github.com/yourusername/prop-projector/internal/repository"
	"github.com/yourusername/prop-projector/internal/stats"
)

// FeatureBuilder turns raw per-game stat lines into rolling-window feature
// rows for one market. Re-running over the same history is idempotent.
type FeatureBuilder struct {
	markets   repository.MarketRepository
	gameStats repository.GameStatRepository
	features  repository.FeatureRepository
	log       *logger.PipelineLogger
}

// NewFeatureBuilder creates a feature builder.
func NewFeatureBuilder(
	markets repository.MarketRepository,
	gameStats repository.GameStatRepository,
	featureRepo repository.FeatureRepository,
	log *logger.PipelineLogger,
) *FeatureBuilder {
	return &FeatureBuilder{
		markets:   markets,
		gameStats: gameStats,
		features:  featureRepo,
		log:       log,
	}
}

// Build recomputes feature rows for every player with enough history in the
// market and upserts them. It returns the number of rows written.
func (b *FeatureBuilder) Build(ctx context.Context, marketCode string, lookback int) (int, error) {
	start := time.Now()
	defer func() {
		metrics.FeatureBuildDuration.Observe(time.Since(start).Seconds())
	}()

	if lookback < 1 {
		return 0, fmt.Errorf("lookback must be >= 1, got %d", lookback)
	}

	market, err := b.markets.GetByCode(ctx, marketCode)
	if err != nil {
		return 0, err
	}
	field, err := stats.Parse(market.StatField)
	if err != nil {
		return 0, err
	}

	obs, err := b.gameStats.ObservationsForField(ctx, field)
	if err != nil {
		return 0, err
	}

	var rows []models.FeatureRow
	players := 0
	// Observations arrive ordered by player then game date, so each player's
	// run is contiguous.
	for s := 0; s < len(obs); {
		e := s
		for e < len(obs) && obs[e].PlayerID == obs[s].PlayerID {
			e++
		}
		if playerRows := features.BuildRows(market.ID, lookback, obs[s:e]); len(playerRows) > 0 {
			rows = append(rows, playerRows...)
			players++
		}
		s = e
	}

	if len(rows) > 0 {
		if err := b.features.UpsertBatch(ctx, rows); err != nil {
			return 0, err
		}
	}

	metrics.FeatureRowsUpsertedTotal.WithLabelValues(market.Code).Add(float64(len(rows)))
	b.log.LogFeatureBuild(market.Code, lookback, players, len(rows), float64(time.Since(start).Milliseconds()))
	return len(rows), nil
}
