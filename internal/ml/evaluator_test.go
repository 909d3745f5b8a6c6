package ml

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-projector/internal/artifact"
	"github.com/yourusername/prop-projector/internal/models"
)

// fitTestArtifact trains a pipeline on the rows and stores it the way the
// trainer would, so evaluation runs against a realistic artifact.
func fitTestArtifact(t *testing.T, store *memoryStore, rows []models.LabeledRow, modelName, marketCode string, lookback int) {
	t.Helper()
	x, y := featureMatrix(rows, DefaultFeatureCols)
	pipe, err := FitPipeline(DefaultFeatureCols, x, y, 1.0)
	require.NoError(t, err)
	payload, err := pipe.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Write(artifact.PipelineName(modelName, marketCode, lookback), payload))
}

func TestEvaluateRejectsInvalidTestFraction(t *testing.T) {
	evaluator := NewEvaluator(&MockMarketRepository{}, &MockFeatureRepository{}, newMemoryStore(), testPipelineLogger())

	for _, frac := range []float64{0.0, -0.1, 0.8, 0.9, 1.0} {
		_, err := evaluator.Evaluate(context.Background(), EvalRequest{
			MarketCode: "rec_yds", Lookback: 5, ModelName: "ridge_v1", TestFrac: frac,
		})
		assert.ErrorIs(t, err, models.ErrInvalidTestFraction, "test_frac %.2f", frac)
	}
}

func TestEvaluateMissingArtifact(t *testing.T) {
	markets := &MockMarketRepository{}
	markets.On("GetByCode", mock.Anything, "rec_yds").Return(recYdsMarket(), nil)

	evaluator := NewEvaluator(markets, &MockFeatureRepository{}, newMemoryStore(), testPipelineLogger())
	_, err := evaluator.Evaluate(context.Background(), EvalRequest{
		MarketCode: "rec_yds", Lookback: 5, ModelName: "ridge_v1", TestFrac: 0.2,
	})

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEvaluateTimeOrderedSplit(t *testing.T) {
	rows := labeledRows(1000)
	store := newMemoryStore()
	fitTestArtifact(t, store, rows, "ridge_v1", "rec_yds", 5)

	markets := &MockMarketRepository{}
	features := &MockFeatureRepository{}
	markets.On("GetByCode", mock.Anything, "rec_yds").Return(recYdsMarket(), nil)
	features.On("LabeledRows", mock.Anything, 1, 5).Return(rows, nil)

	evaluator := NewEvaluator(markets, features, store, testPipelineLogger())
	report, err := evaluator.Evaluate(context.Background(), EvalRequest{
		MarketCode: "rec_yds", Lookback: 5, ModelName: "ridge_v1", TestFrac: 0.2,
	})

	require.NoError(t, err)
	assert.Equal(t, 1000, report.RowsTotal)
	assert.Equal(t, 800, report.RowsTrain)
	assert.Equal(t, 200, report.RowsTest)
	assert.True(t, store.Exists(artifact.EvalReportName("ridge_v1", "rec_yds", 5)))
	// Labels are linear in the features, so the model must beat the
	// weighted-mean baseline.
	assert.Greater(t, report.Lift.MAEImprovementPct, 0.0)
}

func TestEvaluatePositionFilter(t *testing.T) {
	// rec_yds only evaluates WR/TE/RB/FB rows; QB rows are excluded.
	rows := labeledRows(400)
	for i := 0; i < 100; i++ {
		rows[i].Position = "QB"
	}
	store := newMemoryStore()
	fitTestArtifact(t, store, rows, "ridge_v1", "rec_yds", 5)

	markets := &MockMarketRepository{}
	features := &MockFeatureRepository{}
	markets.On("GetByCode", mock.Anything, "rec_yds").Return(recYdsMarket(), nil)
	features.On("LabeledRows", mock.Anything, 1, 5).Return(rows, nil)

	evaluator := NewEvaluator(markets, features, store, testPipelineLogger())
	report, err := evaluator.Evaluate(context.Background(), EvalRequest{
		MarketCode: "rec_yds", Lookback: 5, ModelName: "ridge_v1", TestFrac: 0.25,
	})

	require.NoError(t, err)
	assert.Equal(t, 300, report.RowsTotal)
}

func TestEvaluateNoEligibleRows(t *testing.T) {
	rows := labeledRows(50)
	for i := range rows {
		rows[i].Position = "QB"
	}
	store := newMemoryStore()
	fitTestArtifact(t, store, rows, "ridge_v1", "rec_yds", 5)

	markets := &MockMarketRepository{}
	features := &MockFeatureRepository{}
	markets.On("GetByCode", mock.Anything, "rec_yds").Return(recYdsMarket(), nil)
	features.On("LabeledRows", mock.Anything, 1, 5).Return(rows, nil)

	evaluator := NewEvaluator(markets, features, store, testPipelineLogger())
	_, err := evaluator.Evaluate(context.Background(), EvalRequest{
		MarketCode: "rec_yds", Lookback: 5, ModelName: "ridge_v1", TestFrac: 0.2,
	})

	assert.ErrorIs(t, err, models.ErrNoEligibleRows)
}

func TestEvaluateSegments(t *testing.T) {
	rows := labeledRows(2000)
	store := newMemoryStore()
	fitTestArtifact(t, store, rows, "ridge_v1", "rec_yds", 5)

	markets := &MockMarketRepository{}
	features := &MockFeatureRepository{}
	markets.On("GetByCode", mock.Anything, "rec_yds").Return(recYdsMarket(), nil)
	features.On("LabeledRows", mock.Anything, 1, 5).Return(rows, nil)

	evaluator := NewEvaluator(markets, features, store, testPipelineLogger())
	report, err := evaluator.Evaluate(context.Background(), EvalRequest{
		MarketCode: "rec_yds", Lookback: 5, ModelName: "ridge_v1", TestFrac: 0.3,
	})

	require.NoError(t, err)
	// All 600 test rows are WR, well above the position segment floor.
	require.Len(t, report.ByPosition, 1)
	assert.Equal(t, "WR", report.ByPosition[0].Segment)
	assert.Equal(t, 600, report.ByPosition[0].Rows)

	for _, seg := range report.ByLabelBucket {
		assert.GreaterOrEqual(t, seg.Rows, minBucketRows)
	}
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		value    float64
		want     string
		inBucket bool
	}{
		{0, "0", true},
		{0.5, "1-10", true},
		{10, "1-10", true},
		{10.5, "11-25", true},
		{25, "11-25", true},
		{50, "26-50", true},
		{75, "51-75", true},
		{100, "76-100", true},
		{150, "101-150", true},
		{151, "150+", true},
		{9999, "150+", true},
		{10000, "150+", true},
		{10001, "", false},
		{-1, "", false},
		{-7, "", false},
	}

	for _, tt := range tests {
		got, ok := bucketFor(tt.value)
		assert.Equal(t, tt.inBucket, ok, "value %.1f", tt.value)
		assert.Equal(t, tt.want, got, "value %.1f", tt.value)
	}
}

func TestBucketMetricsSkipsOutOfRangeLabels(t *testing.T) {
	var rows []models.LabeledRow
	var preds []float64
	for i := 0; i < 60; i++ {
		rows = append(rows, models.LabeledRow{LabelActual: 5, Position: "WR"})
		rows = append(rows, models.LabeledRow{LabelActual: -4, Position: "WR"})
		preds = append(preds, 5, -4)
	}

	segments := bucketMetrics(rows, preds)

	require.Len(t, segments, 1, "negative labels land in no bucket")
	assert.Equal(t, "1-10", segments[0].Segment)
	assert.Equal(t, 60, segments[0].Rows)
}

func TestTimeSplitClamping(t *testing.T) {
	rows := labeledRows(2)

	trainRows, testRows := timeSplit(rows, 0.79)
	assert.Len(t, trainRows, 1)
	assert.Len(t, testRows, 1)

	trainRows, testRows = timeSplit(labeledRows(10), 0.01)
	assert.Len(t, trainRows, 9)
	assert.Len(t, testRows, 1)
}

func TestEvaluateUsesMetadataFeatureCols(t *testing.T) {
	rows := labeledRows(100)
	store := newMemoryStore()
	fitTestArtifact(t, store, rows, "ridge_v1", "rec_yds", 5)
	require.NoError(t, store.Write(
		artifact.MetadataName("ridge_v1", "rec_yds", 5),
		[]byte(`{"feature_cols":["mean","stddev","weighted_mean","trend"]}`),
	))

	markets := &MockMarketRepository{}
	features := &MockFeatureRepository{}
	markets.On("GetByCode", mock.Anything, "rec_yds").Return(recYdsMarket(), nil)
	features.On("LabeledRows", mock.Anything, 1, 5).Return(rows, nil)

	evaluator := NewEvaluator(markets, features, store, testPipelineLogger())
	report, err := evaluator.Evaluate(context.Background(), EvalRequest{
		MarketCode: "rec_yds", Lookback: 5, ModelName: "ridge_v1", TestFrac: 0.2,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"mean", "stddev", "weighted_mean", "trend"}, report.FeatureCols)
}
