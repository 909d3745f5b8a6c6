package service

import (
	"context"
	"fmt"

	"github.com/yourusername/prop-projector/internal/logger"
	"github.com/yourusername/prop-projector/internal/metrics"
	"github.com/yourusername/prop-projector/internal/repository"
	"github.com/yourusername/prop-projector/internal/stats"
)

// LabelAttacher backfills realized outcomes onto feature rows once the
// anchored game's stat line has landed. Attach is safe to re-run; rows whose
// label is already set to the realized value are still matched by the update
// but converge to the same state.
type LabelAttacher struct {
	markets  repository.MarketRepository
	features repository.FeatureRepository
	log      *logger.PipelineLogger
}

// NewLabelAttacher creates a label attacher.
func NewLabelAttacher(
	markets repository.MarketRepository,
	featureRepo repository.FeatureRepository,
	log *logger.PipelineLogger,
) *LabelAttacher {
	return &LabelAttacher{markets: markets, features: featureRepo, log: log}
}

// Attach joins realized outcomes onto the market's feature rows for one
// lookback and returns the number of rows updated. Concurrent runs for the
// same (market, lookback) serialize on a database advisory lock.
func (a *LabelAttacher) Attach(ctx context.Context, marketCode string, lookback int) (int64, error) {
	if lookback < 1 {
		return 0, fmt.Errorf("lookback must be >= 1, got %d", lookback)
	}

	market, err := a.markets.GetByCode(ctx, marketCode)
	if err != nil {
		return 0, err
	}
	field, err := stats.Parse(market.StatField)
	if err != nil {
		return 0, err
	}

	updated, err := a.features.AttachLabels(ctx, market.ID, field, lookback)
	if err != nil {
		return 0, err
	}

	metrics.LabelsAttachedTotal.WithLabelValues(market.Code).Add(float64(updated))
	a.log.LogLabelAttach(market.Code, lookback, updated)
	return updated, nil
}
