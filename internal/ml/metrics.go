package ml

import "math"

// RegressionMetrics holds standard regression error metrics plus bias.
// Bias > 0 means the model tends to overpredict.
type RegressionMetrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
	Bias float64 `json:"bias"`
}

// ComputeRegressionMetrics computes MAE, RMSE, R² and bias for paired
// true/predicted values.
func ComputeRegressionMetrics(yTrue, yPred []float64) RegressionMetrics {
	n := len(yTrue)
	if n == 0 {
		return RegressionMetrics{}
	}

	var absSum, sqSum, biasSum, ySum float64
	for i := range yTrue {
		err := yPred[i] - yTrue[i]
		absSum += math.Abs(err)
		sqSum += err * err
		biasSum += err
		ySum += yTrue[i]
	}

	mean := ySum / float64(n)
	var totalSS float64
	for _, y := range yTrue {
		d := y - mean
		totalSS += d * d
	}

	r2 := 0.0
	if totalSS > 0 {
		r2 = 1.0 - sqSum/totalSS
	}

	return RegressionMetrics{
		MAE:  absSum / float64(n),
		RMSE: math.Sqrt(sqSum / float64(n)),
		R2:   r2,
		Bias: biasSum / float64(n),
	}
}
