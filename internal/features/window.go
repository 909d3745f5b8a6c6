// Package features turns per-player observation sequences into rolling-window
// feature rows.
package features

import "math"

// WindowStats holds the rolling statistics computed over one lookback window.
type WindowStats struct {
	Mean         float64
	Stddev       float64
	WeightedMean float64
	Trend        float64
}

// Compute calculates all window statistics for a non-empty window ordered
// oldest to newest.
func Compute(window []float64) WindowStats {
	return WindowStats{
		Mean:         mean(window),
		Stddev:       stddevPop(window),
		WeightedMean: weightedMeanRecent(window),
		Trend:        trendSlope(window),
	}
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stddevPop uses the population divisor N, not N-1.
func stddevPop(vals []float64) float64 {
	m := mean(vals)
	sum := 0.0
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)))
}

// weightedMeanRecent assigns weights 1..N oldest to newest, so the most
// recent game carries the most weight.
func weightedMeanRecent(vals []float64) float64 {
	var num, den float64
	for i, v := range vals {
		w := float64(i + 1)
		num += v * w
		den += w
	}
	return num / den
}

// trendSlope is the OLS slope of value against index 1..N. The degenerate
// single-point window has zero index variance and yields 0.0.
func trendSlope(vals []float64) float64 {
	n := len(vals)
	xbar := float64(n+1) / 2.0
	ybar := mean(vals)

	var num, den float64
	for i, y := range vals {
		x := float64(i + 1)
		num += (x - xbar) * (y - ybar)
		den += (x - xbar) * (x - xbar)
	}
	if den == 0 {
		return 0.0
	}
	return num / den
}
