package features

import (
	"github.com/yourusername/prop-projector/internal/models"
)

// BuildRows produces feature rows for one player's chronologically ordered
// observations. A row is anchored at observation i and computed over the
// lookback observations strictly before i, so the anchor game itself never
// leaks into its own window. The first lookback observations emit no row.
func BuildRows(marketID, lookback int, obs []models.Observation) []models.FeatureRow {
	if lookback < 1 || len(obs) <= lookback {
		return nil
	}

	values := make([]float64, len(obs))
	for i, o := range obs {
		values[i] = o.Value
	}

	rows := make([]models.FeatureRow, 0, len(obs)-lookback)
	for i := lookback; i < len(obs); i++ {
		window := values[i-lookback : i]
		stats := Compute(window)
		rows = append(rows, models.FeatureRow{
			PlayerID:     obs[i].PlayerID,
			MarketID:     marketID,
			AsOfGameDate: obs[i].GameDate,
			Opponent:     obs[i].Opponent,
			Lookback:     lookback,
			Mean:         stats.Mean,
			Stddev:       stats.Stddev,
			WeightedMean: stats.WeightedMean,
			Trend:        stats.Trend,
		})
	}
	return rows
}
