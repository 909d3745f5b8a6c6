package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeRegressionMetrics(t *testing.T) {
	yTrue := []float64{10, 20, 30, 40}
	yPred := []float64{12, 18, 33, 37}

	m := ComputeRegressionMetrics(yTrue, yPred)

	assert.InDelta(t, 2.5, m.MAE, 1e-9)
	assert.InDelta(t, 2.5495097567963922, m.RMSE, 1e-9)
	assert.Greater(t, m.R2, 0.9)
	assert.InDelta(t, 0.0, m.Bias, 1e-9)
}

func TestRegressionMetricsBiasSign(t *testing.T) {
	yTrue := []float64{10, 10, 10}

	over := ComputeRegressionMetrics(yTrue, []float64{12, 12, 12})
	under := ComputeRegressionMetrics(yTrue, []float64{8, 8, 8})

	assert.InDelta(t, 2.0, over.Bias, 1e-9)
	assert.InDelta(t, -2.0, under.Bias, 1e-9)
}

func TestRegressionMetricsPerfectPrediction(t *testing.T) {
	y := []float64{5, 15, 25}
	m := ComputeRegressionMetrics(y, y)

	assert.Zero(t, m.MAE)
	assert.Zero(t, m.RMSE)
	assert.InDelta(t, 1.0, m.R2, 1e-9)
}

func TestRegressionMetricsConstantTarget(t *testing.T) {
	// Zero target variance: R2 falls back to 0 rather than dividing by zero.
	m := ComputeRegressionMetrics([]float64{7, 7, 7}, []float64{6, 7, 8})
	assert.Zero(t, m.R2)
}

func TestRegressionMetricsEmptyInput(t *testing.T) {
	m := ComputeRegressionMetrics(nil, nil)
	assert.Zero(t, m.MAE)
	assert.Zero(t, m.RMSE)
	assert.Zero(t, m.R2)
	assert.Zero(t, m.Bias)
}
