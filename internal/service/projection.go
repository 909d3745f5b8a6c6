package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/yourusername/prop-projector/internal/artifact"
	"github.com/yourusername/prop-projector/internal/logger"
	"github.com/yourusername/prop-projector/internal/metrics"
	"github.com/yourusername/prop-projector/internal/ml"
	"github.com/yourusername/prop-projector/internal/models"
	"github.com/yourusername/prop-projector/internal/repository"
)

// ProjectRequest asks for one projection. Lookback 0 means "whatever the
// active model was trained with"; any other value must match the active
// model exactly, otherwise the request is refused rather than silently
// served from a mismatched window.
type ProjectRequest struct {
	PlayerID   int
	MarketCode string
	Lookback   int
	ModelName  string
}

// Projector is the serving path: dereference the active model for a market,
// load its artifact through the pipeline cache, score the player's latest
// feature row and persist the projection.
type Projector struct {
	players     repository.PlayerRepository
	markets     repository.MarketRepository
	registry    repository.RegistryRepository
	features    repository.FeatureRepository
	projections repository.ProjectionRepository
	cache       *ml.PipelineCache
	store       artifact.Store
	log         *logger.PipelineLogger
}

// NewProjector creates a projector.
func NewProjector(
	players repository.PlayerRepository,
	markets repository.MarketRepository,
	registry repository.RegistryRepository,
	featureRepo repository.FeatureRepository,
	projections repository.ProjectionRepository,
	cache *ml.PipelineCache,
	store artifact.Store,
	log *logger.PipelineLogger,
) *Projector {
	return &Projector{
		players:     players,
		markets:     markets,
		registry:    registry,
		features:    featureRepo,
		projections: projections,
		cache:       cache,
		store:       store,
		log:         log,
	}
}

// Project serves one projection. Every precondition failure returns before
// any inference happens, so a stored projection always reflects a model and
// feature row that actually belong together.
func (p *Projector) Project(ctx context.Context, req ProjectRequest) (*models.Projection, error) {
	player, err := p.players.GetByID(ctx, req.PlayerID)
	if err != nil {
		return nil, err
	}
	market, err := p.markets.GetByCode(ctx, req.MarketCode)
	if err != nil {
		return nil, err
	}

	active, err := p.registry.GetActive(ctx, market.ID)
	if err != nil {
		return nil, err
	}
	if req.Lookback != 0 && req.Lookback != active.Lookback {
		return nil, fmt.Errorf("requested lookback %d, active model trained with %d: %w",
			req.Lookback, active.Lookback, models.ErrLookbackMismatch)
	}
	if req.ModelName != "" && req.ModelName != active.ModelName {
		return nil, fmt.Errorf("model %s is not active for market %s: %w",
			req.ModelName, market.Code, models.ErrNotFound)
	}

	artifactName := filepath.Base(active.ArtifactPath)
	if !p.store.Exists(artifactName) {
		return nil, fmt.Errorf("artifact %s: %w", artifactName, models.ErrNotFound)
	}

	pipe, cacheHit, err := p.cache.Load(artifactName)
	if err != nil {
		return nil, err
	}

	row, err := p.features.Latest(ctx, player.ID, market.ID, active.Lookback)
	if err != nil {
		return nil, err
	}

	featureMap := map[string]float64{
		"mean":          row.Mean,
		"stddev":        row.Stddev,
		"weighted_mean": row.WeightedMean,
		"trend":         row.Trend,
	}
	vector := make([]float64, len(pipe.FeatureCols))
	for j, col := range pipe.FeatureCols {
		vector[j] = featureMap[col]
	}
	prediction := pipe.Predict(vector)

	featurePayload, err := json.Marshal(featureMap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feature snapshot: %w", err)
	}

	projection := &models.Projection{
		ID:           uuid.New(),
		PlayerID:     player.ID,
		MarketCode:   market.Code,
		ModelName:    active.ModelName,
		Lookback:     active.Lookback,
		AsOfGameDate: row.AsOfGameDate,
		Prediction:   prediction,
		Features:     featurePayload,
	}
	if err := p.projections.Upsert(ctx, projection); err != nil {
		return nil, err
	}

	metrics.ProjectionsServedTotal.WithLabelValues(market.Code).Inc()
	p.log.LogProjection(player.ID, market.Code, active.ModelName, prediction, cacheHit)
	return projection, nil
}
