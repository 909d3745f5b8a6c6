// Package logger provides pipeline-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for the feature/train/evaluate
// pipeline.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogFeatureBuild logs a completed feature build run.
func (pl *PipelineLogger) LogFeatureBuild(marketCode string, lookback int, players int, rowsUpserted int, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"market_code":   marketCode,
		"lookback":      lookback,
		"players":       players,
		"rows_upserted": rowsUpserted,
		"duration_ms":   durationMs,
	}).Info("Feature build completed")
}

// LogLabelAttach logs a completed label-attach run.
func (pl *PipelineLogger) LogLabelAttach(marketCode string, lookback int, rowsUpdated int64) {
	pl.WithFields(logrus.Fields{
		"market_code":  marketCode,
		"lookback":     lookback,
		"rows_updated": rowsUpdated,
	}).Info("Label attach completed")
}

// LogModelTraining logs a completed training run.
func (pl *PipelineLogger) LogModelTraining(modelName string, marketCode string, lookback int, trainRows int, testRows int, metrics map[string]float64) {
	pl.WithFields(logrus.Fields{
		"model_name":  modelName,
		"market_code": marketCode,
		"lookback":    lookback,
		"train_rows":  trainRows,
		"test_rows":   testRows,
		"metrics":     metrics,
	}).Info("Model training completed")
}

// LogEvaluation logs a completed evaluation run.
func (pl *PipelineLogger) LogEvaluation(modelName string, marketCode string, lookback int, testRows int, maeLiftPct float64, reportPath string) {
	pl.WithFields(logrus.Fields{
		"model_name":   modelName,
		"market_code":  marketCode,
		"lookback":     lookback,
		"test_rows":    testRows,
		"mae_lift_pct": maeLiftPct,
		"report_path":  reportPath,
	}).Info("Model evaluation completed")
}

// LogProjection logs one served projection.
func (pl *PipelineLogger) LogProjection(playerID int, marketCode string, modelName string, prediction float64, cacheHit bool) {
	pl.WithFields(logrus.Fields{
		"player_id":   playerID,
		"market_code": marketCode,
		"model_name":  modelName,
		"prediction":  prediction,
		"cache_hit":   cacheHit,
	}).Info("Projection served")
}

// LogRegistrySkipped logs a non-fatal registry write failure.
func (pl *PipelineLogger) LogRegistrySkipped(marketCode string, reason string) {
	pl.WithFields(logrus.Fields{
		"market_code": marketCode,
		"reason":      reason,
	}).Warn("Model registry not updated")
}
