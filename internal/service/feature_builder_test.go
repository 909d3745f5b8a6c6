package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-projector/internal/models"
	"github.com/yourusername/prop-projector/internal/stats"
)

func obsSeries(playerID, games int) []models.Observation {
	obs := make([]models.Observation, games)
	base := time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC)
	for i := 0; i < games; i++ {
		obs[i] = models.Observation{
			PlayerID: playerID,
			GameDate: base.AddDate(0, 0, 7*i),
			Opponent: "OPP",
			Value:    float64(10 * (i + 1)),
		}
	}
	return obs
}

func TestBuildGroupsObservationsByPlayer(t *testing.T) {
	markets := &MockMarketRepository{}
	gameStats := &MockGameStatRepository{}
	features := &MockFeatureRepository{}

	// Player 1 has 8 games (3 rows at lookback 5), player 2 only 4 (none).
	obs := append(obsSeries(1, 8), obsSeries(2, 4)...)

	markets.On("GetByCode", mock.Anything, "rec_yds").Return(recYdsMarket(), nil)
	gameStats.On("ObservationsForField", mock.Anything, stats.ReceivingYards).Return(obs, nil)
	features.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(rows []models.FeatureRow) bool {
		if len(rows) != 3 {
			return false
		}
		for _, row := range rows {
			if row.PlayerID != 1 || row.Lookback != 5 || row.MarketID != 1 {
				return false
			}
		}
		return true
	})).Return(nil)

	builder := NewFeatureBuilder(markets, gameStats, features, testPipelineLogger())
	rows, err := builder.Build(context.Background(), "rec_yds", 5)

	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	features.AssertExpectations(t)
}

func TestBuildNoEligiblePlayersSkipsUpsert(t *testing.T) {
	markets := &MockMarketRepository{}
	gameStats := &MockGameStatRepository{}
	features := &MockFeatureRepository{}

	markets.On("GetByCode", mock.Anything, "rec_yds").Return(recYdsMarket(), nil)
	gameStats.On("ObservationsForField", mock.Anything, stats.ReceivingYards).Return(obsSeries(1, 3), nil)

	builder := NewFeatureBuilder(markets, gameStats, features, testPipelineLogger())
	rows, err := builder.Build(context.Background(), "rec_yds", 5)

	require.NoError(t, err)
	assert.Zero(t, rows)
	features.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
}

func TestBuildRejectsInvalidLookback(t *testing.T) {
	builder := NewFeatureBuilder(&MockMarketRepository{}, &MockGameStatRepository{}, &MockFeatureRepository{}, testPipelineLogger())

	_, err := builder.Build(context.Background(), "rec_yds", 0)
	assert.Error(t, err)
}

func TestBuildUnsupportedStatField(t *testing.T) {
	markets := &MockMarketRepository{}
	markets.On("GetByCode", mock.Anything, "sacks").Return(&models.Market{
		ID: 2, Code: "sacks", StatField: "sacks", Name: "Sacks",
	}, nil)

	builder := NewFeatureBuilder(markets, &MockGameStatRepository{}, &MockFeatureRepository{}, testPipelineLogger())
	_, err := builder.Build(context.Background(), "sacks", 5)

	assert.ErrorIs(t, err, models.ErrUnsupportedStat)
}

func TestAttachDelegatesWithParsedField(t *testing.T) {
	markets := &MockMarketRepository{}
	features := &MockFeatureRepository{}

	markets.On("GetByCode", mock.Anything, "rec_yds").Return(recYdsMarket(), nil)
	features.On("AttachLabels", mock.Anything, 1, stats.ReceivingYards, 5).Return(int64(42), nil)

	attacher := NewLabelAttacher(markets, features, testPipelineLogger())
	updated, err := attacher.Attach(context.Background(), "rec_yds", 5)

	require.NoError(t, err)
	assert.Equal(t, int64(42), updated)
	features.AssertExpectations(t)
}

func TestAttachRejectsInvalidLookback(t *testing.T) {
	attacher := NewLabelAttacher(&MockMarketRepository{}, &MockFeatureRepository{}, testPipelineLogger())

	_, err := attacher.Attach(context.Background(), "rec_yds", -1)
	assert.Error(t, err)
}
