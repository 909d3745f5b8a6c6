package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/prop-projector/internal/artifact"
	"github.com/yourusername/prop-projector/internal/logger"
	"github.com/yourusername/prop-projector/internal/metrics"
	"github.com/yourusername/prop-projector/internal/models"
	"github.com/yourusername/prop-projector/internal/repository"
)

const (
	// minPositionRows is the smallest position segment worth reporting.
	minPositionRows = 200

	// minBucketRows is the smallest label bucket worth reporting.
	minBucketRows = 50

	reportVersion = 2
)

// bucketEdges are label-magnitude bin edges tuned for yardage-like stats.
var bucketEdges = []float64{-1, 0, 10, 25, 50, 75, 100, 150, 10000}

var bucketLabels = []string{"0", "1-10", "11-25", "26-50", "51-75", "76-100", "101-150", "150+"}

// eligiblePositions restricts the evaluation population per market so
// zero-inflated rows from irrelevant positions do not flatter the metrics.
var eligiblePositions = map[string][]string{
	"rec_yds": {"WR", "TE", "RB", "FB"},
	"recs":    {"WR", "TE", "RB", "FB"},
}

// EvalRequest describes one evaluation run.
type EvalRequest struct {
	MarketCode string
	Lookback   int
	ModelName  string
	TestFrac   float64
}

// SegmentMetrics holds metrics for one position or label-bucket segment.
type SegmentMetrics struct {
	Segment string `json:"segment"`
	Rows    int    `json:"rows"`
	RegressionMetrics
}

// LiftMetrics expresses model improvement over the baseline in percent.
type LiftMetrics struct {
	MAEImprovementPct  float64 `json:"mae_improvement_pct"`
	RMSEImprovementPct float64 `json:"rmse_improvement_pct"`
}

// EvalReport is the write-once JSON evaluation report for one run.
type EvalReport struct {
	ReportVersion   int               `json:"report_version"`
	RunID           uuid.UUID         `json:"run_id"`
	GeneratedAt     time.Time         `json:"generated_at"`
	ModelName       string            `json:"model_name"`
	MarketCode      string            `json:"market_code"`
	Lookback        int               `json:"lookback"`
	ArtifactPath    string            `json:"artifact_path"`
	FeatureCols     []string          `json:"feature_cols"`
	RowsTotal       int               `json:"rows_total"`
	RowsTrain       int               `json:"rows_train_time_split"`
	RowsTest        int               `json:"rows_test_time_split"`
	Overall         RegressionMetrics `json:"metrics_test_overall"`
	BaselineOverall RegressionMetrics `json:"metrics_test_overall_baseline_weighted_mean"`
	Lift            LiftMetrics       `json:"lift_vs_baseline_pct"`
	ByPosition      []SegmentMetrics  `json:"metrics_test_by_position"`
	ByLabelBucket   []SegmentMetrics  `json:"metrics_test_by_label_bucket"`
	Notes           []string          `json:"notes"`
}

// Evaluator scores trained artifacts against labeled rows the way production
// uses them: trained on the past, judged on the most recent tail.
type Evaluator struct {
	markets  repository.MarketRepository
	features repository.FeatureRepository
	store    artifact.Store
	log      *logger.PipelineLogger
}

// NewEvaluator creates an evaluator.
func NewEvaluator(
	markets repository.MarketRepository,
	features repository.FeatureRepository,
	store artifact.Store,
	log *logger.PipelineLogger,
) *Evaluator {
	return &Evaluator{markets: markets, features: features, store: store, log: log}
}

// Evaluate loads the trained artifact, time-splits the labeled population and
// writes one JSON report. Upstream state is never mutated.
func (e *Evaluator) Evaluate(ctx context.Context, req EvalRequest) (*EvalReport, error) {
	start := time.Now()
	defer func() {
		metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	// Validation happens before any side effect.
	if req.TestFrac <= 0.0 || req.TestFrac >= 0.8 {
		return nil, fmt.Errorf("test_frac %.2f: %w", req.TestFrac, models.ErrInvalidTestFraction)
	}

	market, err := e.markets.GetByCode(ctx, req.MarketCode)
	if err != nil {
		return nil, err
	}

	featureCols := e.loadFeatureCols(req)

	pipelineName := artifact.PipelineName(req.ModelName, market.Code, req.Lookback)
	payload, err := e.store.Read(pipelineName)
	if err != nil {
		return nil, err
	}
	pipe, err := LoadPipeline(payload)
	if err != nil {
		return nil, err
	}

	rows, err := e.features.LabeledRows(ctx, market.ID, req.Lookback)
	if err != nil {
		return nil, err
	}
	rows = filterEligible(market.Code, rows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("market %s lookback %d: %w", market.Code, req.Lookback, models.ErrNoEligibleRows)
	}

	trainRows, testRows := timeSplit(rows, req.TestFrac)

	x, yTrue := featureMatrix(testRows, featureCols)
	preds := pipe.PredictBatch(x)

	overall := ComputeRegressionMetrics(yTrue, preds)

	// Baseline predicts the window's weighted mean, no model involved.
	baselinePreds := make([]float64, len(testRows))
	for i := range testRows {
		baselinePreds[i] = testRows[i].WeightedMean
	}
	baseline := ComputeRegressionMetrics(yTrue, baselinePreds)

	lift := LiftMetrics{}
	if baseline.MAE > 0 {
		lift.MAEImprovementPct = (baseline.MAE - overall.MAE) / baseline.MAE * 100.0
	}
	if baseline.RMSE > 0 {
		lift.RMSEImprovementPct = (baseline.RMSE - overall.RMSE) / baseline.RMSE * 100.0
	}

	report := &EvalReport{
		ReportVersion:   reportVersion,
		RunID:           uuid.New(),
		GeneratedAt:     time.Now().UTC(),
		ModelName:       req.ModelName,
		MarketCode:      market.Code,
		Lookback:        req.Lookback,
		ArtifactPath:    e.store.Path(pipelineName),
		FeatureCols:     featureCols,
		RowsTotal:       len(rows),
		RowsTrain:       len(trainRows),
		RowsTest:        len(testRows),
		Overall:         overall,
		BaselineOverall: baseline,
		Lift:            lift,
		ByPosition:      positionMetrics(testRows, preds),
		ByLabelBucket:   bucketMetrics(testRows, preds),
		Notes: []string{
			"Evaluation uses time-ordered split (no shuffle).",
			"Baseline = rolling weighted mean.",
			"Positive lift means model beats baseline.",
		},
	}

	reportName := artifact.EvalReportName(req.ModelName, market.Code, req.Lookback)
	reportPayload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal evaluation report: %w", err)
	}
	if err := e.store.Write(reportName, reportPayload); err != nil {
		return nil, err
	}

	metrics.EvaluationRunsTotal.WithLabelValues(market.Code).Inc()
	metrics.BaselineLiftMAEPct.WithLabelValues(market.Code, req.ModelName).Set(lift.MAEImprovementPct)
	e.log.LogEvaluation(req.ModelName, market.Code, req.Lookback, len(testRows), lift.MAEImprovementPct, e.store.Path(reportName))

	return report, nil
}

// loadFeatureCols prefers the column order recorded in the artifact's
// metadata. The default list is a drift-safety fallback for artifacts
// trained before metadata existed.
func (e *Evaluator) loadFeatureCols(req EvalRequest) []string {
	metaName := artifact.MetadataName(req.ModelName, req.MarketCode, req.Lookback)
	payload, err := e.store.Read(metaName)
	if err != nil {
		e.log.WithField("metadata", metaName).Warn("Model metadata missing, using default feature columns")
		return DefaultFeatureCols
	}

	meta := &models.ModelMetadata{}
	if err := json.Unmarshal(payload, meta); err != nil || len(meta.FeatureCols) == 0 {
		e.log.WithField("metadata", metaName).Warn("Model metadata unreadable, using default feature columns")
		return DefaultFeatureCols
	}
	return meta.FeatureCols
}

// filterEligible restricts rows to the market's eligible positions, when the
// market defines any.
func filterEligible(marketCode string, rows []models.LabeledRow) []models.LabeledRow {
	allowed, ok := eligiblePositions[marketCode]
	if !ok {
		return rows
	}

	allowedSet := make(map[string]bool, len(allowed))
	for _, pos := range allowed {
		allowedSet[pos] = true
	}

	filtered := rows[:0:0]
	for _, row := range rows {
		if allowedSet[row.Position] {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// timeSplit splits time-ordered rows: the earliest (1 - testFrac) share is
// the training reference, the trailing share is the test set. Rows are
// already sorted by (as_of_game_date, player_id).
func timeSplit(rows []models.LabeledRow, testFrac float64) (trainRows, testRows []models.LabeledRow) {
	n := len(rows)
	cutoff := int(float64(n) * (1.0 - testFrac))
	if cutoff < 1 {
		cutoff = 1
	}
	if cutoff > n-1 {
		cutoff = n - 1
	}
	return rows[:cutoff], rows[cutoff:]
}

// positionMetrics reports per-position metrics for segments large enough to
// be meaningful, best MAE first.
func positionMetrics(rows []models.LabeledRow, preds []float64) []SegmentMetrics {
	byPos := map[string][]int{}
	for i := range rows {
		byPos[rows[i].Position] = append(byPos[rows[i].Position], i)
	}

	var out []SegmentMetrics
	for pos, idx := range byPos {
		if len(idx) < minPositionRows {
			continue
		}
		out = append(out, segmentFor(pos, idx, rows, preds))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].MAE < out[j].MAE })
	return out
}

// bucketMetrics reports metrics by label magnitude bucket.
func bucketMetrics(rows []models.LabeledRow, preds []float64) []SegmentMetrics {
	byBucket := map[string][]int{}
	for i := range rows {
		label, ok := bucketFor(rows[i].LabelActual)
		if !ok {
			continue
		}
		byBucket[label] = append(byBucket[label], i)
	}

	var out []SegmentMetrics
	for _, label := range bucketLabels {
		idx := byBucket[label]
		if len(idx) < minBucketRows {
			continue
		}
		out = append(out, segmentFor(label, idx, rows, preds))
	}
	return out
}

// bucketFor places a label value into its magnitude bucket. Values outside
// every bucket, such as negative-yardage games at or below the lowest edge,
// report false and are left out of bucket segments.
func bucketFor(value float64) (string, bool) {
	for i := 0; i < len(bucketLabels); i++ {
		if value > bucketEdges[i] && value <= bucketEdges[i+1] {
			return bucketLabels[i], true
		}
	}
	return "", false
}

func segmentFor(name string, idx []int, rows []models.LabeledRow, preds []float64) SegmentMetrics {
	yTrue := make([]float64, len(idx))
	yPred := make([]float64, len(idx))
	for i, j := range idx {
		yTrue[i] = rows[j].LabelActual
		yPred[i] = preds[j]
	}
	return SegmentMetrics{
		Segment:           name,
		Rows:              len(idx),
		RegressionMetrics: ComputeRegressionMetrics(yTrue, yPred),
	}
}
