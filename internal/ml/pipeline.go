// Package ml implements the model training, evaluation and serving core for
// prop markets.
package ml

import (
	"encoding/json"
	"fmt"
	"math"
)

// DefaultFeatureCols is the canonical feature order. It is recorded in every
// artifact's metadata; consumers must prefer the recorded order and use this
// list only when metadata is missing.
var DefaultFeatureCols = []string{"mean", "stddev", "weighted_mean", "trend"}

// StandardScaler standardizes each feature column to zero mean and unit
// variance using statistics learned from the training split only.
type StandardScaler struct {
	Means  []float64 `json:"means"`
	Scales []float64 `json:"scales"`
}

// Fit learns per-column mean and population standard deviation.
func (s *StandardScaler) Fit(x [][]float64) {
	if len(x) == 0 {
		return
	}
	cols := len(x[0])
	s.Means = make([]float64, cols)
	s.Scales = make([]float64, cols)

	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := range x {
			sum += x[i][j]
		}
		mean := sum / float64(len(x))

		variance := 0.0
		for i := range x {
			d := x[i][j] - mean
			variance += d * d
		}
		scale := math.Sqrt(variance / float64(len(x)))
		if scale == 0 {
			// constant column: pass through unscaled
			scale = 1.0
		}

		s.Means[j] = mean
		s.Scales[j] = scale
	}
}

// Transform standardizes rows with the learned statistics.
func (s *StandardScaler) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i := range x {
		row := make([]float64, len(x[i]))
		for j := range x[i] {
			row[j] = (x[i][j] - s.Means[j]) / s.Scales[j]
		}
		out[i] = row
	}
	return out
}

// Ridge is an L2-regularized linear regression fitted in closed form via the
// normal equations. The intercept is not penalized.
type Ridge struct {
	Alpha     float64   `json:"alpha"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// Fit solves (XᵀX + αI)β = Xᵀ(y - ȳ) on centered targets. The feature matrix
// is expected to be standardized already, so its columns are zero-mean and
// the intercept reduces to the target mean.
func (r *Ridge) Fit(x [][]float64, y []float64) error {
	n := len(x)
	if n == 0 {
		return fmt.Errorf("ridge fit requires at least one row")
	}
	p := len(x[0])

	ybar := 0.0
	for _, v := range y {
		ybar += v
	}
	ybar /= float64(n)

	// Gram matrix with ridge penalty on the diagonal
	gram := make([][]float64, p)
	for j := 0; j < p; j++ {
		gram[j] = make([]float64, p+1)
		for k := 0; k < p; k++ {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += x[i][j] * x[i][k]
			}
			gram[j][k] = sum
		}
		gram[j][j] += r.Alpha

		rhs := 0.0
		for i := 0; i < n; i++ {
			rhs += x[i][j] * (y[i] - ybar)
		}
		gram[j][p] = rhs
	}

	coef, err := solveLinearSystem(gram)
	if err != nil {
		return fmt.Errorf("ridge fit: %w", err)
	}

	r.Coef = coef
	r.Intercept = ybar
	return nil
}

// Predict returns the fitted linear response for one standardized row.
func (r *Ridge) Predict(row []float64) float64 {
	pred := r.Intercept
	for j, c := range r.Coef {
		pred += c * row[j]
	}
	return pred
}

// solveLinearSystem solves an augmented system [A|b] in place using Gaussian
// elimination with partial pivoting.
func solveLinearSystem(aug [][]float64) ([]float64, error) {
	n := len(aug)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(aug[row][col]) > math.Abs(aug[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular system at column %d", col)
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		for row := col + 1; row < n; row++ {
			factor := aug[row][col] / aug[col][col]
			for k := col; k <= n; k++ {
				aug[row][k] -= factor * aug[col][k]
			}
		}
	}

	solution := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := aug[row][n]
		for k := row + 1; k < n; k++ {
			sum -= aug[row][k] * solution[k]
		}
		solution[row] = sum / aug[row][row]
	}
	return solution, nil
}

// Pipeline is the fitted two-stage model: standardization followed by ridge
// regression. Its JSON encoding is the opaque artifact payload.
type Pipeline struct {
	FeatureCols []string       `json:"feature_cols"`
	Scaler      StandardScaler `json:"scaler"`
	Model       Ridge          `json:"model"`
}

// FitPipeline fits scaler and ridge on the training split.
func FitPipeline(featureCols []string, x [][]float64, y []float64, alpha float64) (*Pipeline, error) {
	pipe := &Pipeline{
		FeatureCols: featureCols,
		Model:       Ridge{Alpha: alpha},
	}
	pipe.Scaler.Fit(x)
	if err := pipe.Model.Fit(pipe.Scaler.Transform(x), y); err != nil {
		return nil, err
	}
	return pipe, nil
}

// Predict scores one raw (unstandardized) feature row.
func (p *Pipeline) Predict(row []float64) float64 {
	scaled := make([]float64, len(row))
	for j := range row {
		scaled[j] = (row[j] - p.Scaler.Means[j]) / p.Scaler.Scales[j]
	}
	return p.Model.Predict(scaled)
}

// PredictBatch scores many raw feature rows.
func (p *Pipeline) PredictBatch(x [][]float64) []float64 {
	preds := make([]float64, len(x))
	for i := range x {
		preds[i] = p.Predict(x[i])
	}
	return preds
}

// Marshal encodes the fitted pipeline as artifact bytes.
func (p *Pipeline) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pipeline: %w", err)
	}
	return data, nil
}

// LoadPipeline decodes a fitted pipeline from artifact bytes.
func LoadPipeline(data []byte) (*Pipeline, error) {
	pipe := &Pipeline{}
	if err := json.Unmarshal(data, pipe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pipeline: %w", err)
	}
	if len(pipe.Scaler.Means) == 0 || len(pipe.Model.Coef) == 0 {
		return nil, fmt.Errorf("pipeline artifact is missing fitted parameters")
	}
	return pipe, nil
}
