package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/yourusername/prop-projector/internal/artifact"
	"github.com/yourusername/prop-projector/internal/logger"
	"github.com/yourusername/prop-projector/internal/metrics"
	"github.com/yourusername/prop-projector/internal/models"
	"github.com/yourusername/prop-projector/internal/repository"
)

const (
	// MinLabeledRows is the minimum labeled row count required to train.
	MinLabeledRows = 10

	// trainTestFraction is the random holdout fraction used during training.
	trainTestFraction = 0.25

	// trainSeed fixes the random split for reproducible runs.
	trainSeed = 42

	// DefaultAlpha is the ridge penalty used when none is configured.
	DefaultAlpha = 1.0
)

// TrainRequest describes one training run.
type TrainRequest struct {
	MarketCode string
	Lookback   int
	ModelName  string
	Alpha      float64
}

// Trainer fits and registers market-specific projection models.
type Trainer struct {
	markets         repository.MarketRepository
	features        repository.FeatureRepository
	registry        repository.RegistryRepository
	store           artifact.Store
	log             *logger.PipelineLogger
	registryEnabled bool
}

// NewTrainer creates a trainer. When registryEnabled is false the registry
// tables are never touched; artifact and metadata writes alone constitute a
// successful run.
func NewTrainer(
	markets repository.MarketRepository,
	features repository.FeatureRepository,
	registry repository.RegistryRepository,
	store artifact.Store,
	log *logger.PipelineLogger,
	registryEnabled bool,
) *Trainer {
	return &Trainer{
		markets:         markets,
		features:        features,
		registry:        registry,
		store:           store,
		log:             log,
		registryEnabled: registryEnabled,
	}
}

// Train pulls labeled rows for the market/lookback, fits the pipeline,
// persists artifact + metadata, then records the run in the registry and
// promotes it to active. The artifact is on disk before the pointer moves,
// and a registry failure never unwinds the artifact write.
func (t *Trainer) Train(ctx context.Context, req TrainRequest) (*models.ModelMetadata, error) {
	start := time.Now()
	defer func() {
		metrics.TrainingDuration.Observe(time.Since(start).Seconds())
	}()

	if req.Lookback < 1 {
		return nil, fmt.Errorf("lookback must be >= 1, got %d", req.Lookback)
	}
	alpha := req.Alpha
	if alpha <= 0 {
		alpha = DefaultAlpha
	}

	market, err := t.markets.GetByCode(ctx, req.MarketCode)
	if err != nil {
		return nil, err
	}

	rows, err := t.features.LabeledRows(ctx, market.ID, req.Lookback)
	if err != nil {
		metrics.TrainingFailuresTotal.WithLabelValues(req.MarketCode).Inc()
		return nil, err
	}
	if len(rows) < MinLabeledRows {
		metrics.TrainingFailuresTotal.WithLabelValues(req.MarketCode).Inc()
		return nil, fmt.Errorf("need >= %d labeled rows to train, found %d: %w",
			MinLabeledRows, len(rows), models.ErrInsufficientData)
	}

	featureCols := DefaultFeatureCols
	x, y := featureMatrix(rows, featureCols)

	trainIdx, testIdx := randomSplit(len(rows), trainTestFraction, trainSeed)
	xTrain, yTrain := subset(x, y, trainIdx)
	xTest, yTest := subset(x, y, testIdx)

	pipe, err := FitPipeline(featureCols, xTrain, yTrain, alpha)
	if err != nil {
		metrics.TrainingFailuresTotal.WithLabelValues(req.MarketCode).Inc()
		return nil, fmt.Errorf("failed to fit pipeline: %w", err)
	}

	holdout := ComputeRegressionMetrics(yTest, pipe.PredictBatch(xTest))

	pipelineName := artifact.PipelineName(req.ModelName, market.Code, req.Lookback)
	payload, err := pipe.Marshal()
	if err != nil {
		metrics.TrainingFailuresTotal.WithLabelValues(req.MarketCode).Inc()
		return nil, err
	}
	if err := t.store.Write(pipelineName, payload); err != nil {
		metrics.TrainingFailuresTotal.WithLabelValues(req.MarketCode).Inc()
		return nil, err
	}

	meta := &models.ModelMetadata{
		ModelName:    req.ModelName,
		MarketCode:   market.Code,
		MarketName:   market.Name,
		Lookback:     req.Lookback,
		FeatureCols:  featureCols,
		TrainRows:    len(trainIdx),
		TestRows:     len(testIdx),
		MAE:          holdout.MAE,
		RMSE:         holdout.RMSE,
		R2:           holdout.R2,
		ArtifactPath: t.store.Path(pipelineName),
	}

	metaPayload, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		metrics.TrainingFailuresTotal.WithLabelValues(req.MarketCode).Inc()
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := t.store.Write(artifact.MetadataName(req.ModelName, market.Code, req.Lookback), metaPayload); err != nil {
		metrics.TrainingFailuresTotal.WithLabelValues(req.MarketCode).Inc()
		return nil, err
	}

	t.updateRegistry(ctx, market, meta)

	metrics.TrainingRunsTotal.WithLabelValues(req.MarketCode).Inc()
	metrics.ModelMAE.WithLabelValues(req.MarketCode, req.ModelName).Set(holdout.MAE)
	metrics.ModelR2.WithLabelValues(req.MarketCode, req.ModelName).Set(holdout.R2)
	t.log.LogModelTraining(req.ModelName, market.Code, req.Lookback, meta.TrainRows, meta.TestRows, map[string]float64{
		"mae":  holdout.MAE,
		"rmse": holdout.RMSE,
		"r2":   holdout.R2,
	})

	return meta, nil
}

// updateRegistry records the run and moves the active pointer. Failures are
// reported but do not fail the run; the artifact already exists, so a later
// registry retry leaves consumers in a consistent state.
func (t *Trainer) updateRegistry(ctx context.Context, market *models.Market, meta *models.ModelMetadata) {
	if !t.registryEnabled {
		t.log.LogRegistrySkipped(market.Code, "registry disabled by configuration")
		return
	}

	run := &models.TrainedModel{
		ModelName:    meta.ModelName,
		MarketID:     market.ID,
		Lookback:     meta.Lookback,
		ArtifactPath: meta.ArtifactPath,
		TrainRows:    meta.TrainRows,
		TestRows:     meta.TestRows,
		MAE:          meta.MAE,
		RMSE:         meta.RMSE,
		R2:           meta.R2,
	}
	if err := t.registry.RecordTraining(ctx, run); err != nil {
		metrics.RegistryWriteFailuresTotal.Inc()
		t.log.LogRegistrySkipped(market.Code, err.Error())
		return
	}

	pointer := &models.ActiveModel{
		MarketID:     market.ID,
		Lookback:     meta.Lookback,
		ModelName:    meta.ModelName,
		ArtifactPath: meta.ArtifactPath,
	}
	if err := t.registry.SetActive(ctx, pointer); err != nil {
		metrics.RegistryWriteFailuresTotal.Inc()
		t.log.LogRegistrySkipped(market.Code, err.Error())
	}
}

// featureMatrix projects labeled rows into a matrix in featureCols order.
func featureMatrix(rows []models.LabeledRow, featureCols []string) ([][]float64, []float64) {
	x := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i := range rows {
		row := make([]float64, len(featureCols))
		for j, col := range featureCols {
			row[j] = rows[i].Feature(col)
		}
		x[i] = row
		y[i] = rows[i].LabelActual
	}
	return x, y
}

// randomSplit shuffles indices with a fixed seed and carves off the trailing
// testFrac share (at least one row) as the holdout.
func randomSplit(n int, testFrac float64, seed int64) (trainIdx, testIdx []int) {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	testSize := int(float64(n) * testFrac)
	if testSize < 1 {
		testSize = 1
	}
	if testSize >= n {
		testSize = n - 1
	}

	testIdx = perm[:testSize]
	trainIdx = perm[testSize:]
	return trainIdx, testIdx
}

func subset(x [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		xs[i] = x[j]
		ys[i] = y[j]
	}
	return xs, ys
}
