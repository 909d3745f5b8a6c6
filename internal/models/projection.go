package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Projection represents a stored model prediction for a player/market,
// tied to the latest feature row available at prediction time.
type Projection struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	PlayerID     int             `db:"player_id" json:"player_id" validate:"required"`
	MarketCode   string          `db:"market_code" json:"market_code" validate:"required"`
	ModelName    string          `db:"model_name" json:"model_name" validate:"required"`
	Lookback     int             `db:"lookback" json:"lookback" validate:"required,gte=1"`
	AsOfGameDate time.Time       `db:"as_of_game_date" json:"as_of_game_date"`
	Prediction   float64         `db:"prediction" json:"prediction"`
	Features     json.RawMessage `db:"features" json:"features"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// FeatureMap decodes the stored feature snapshot.
func (p *Projection) FeatureMap() (map[string]float64, error) {
	features := map[string]float64{}
	if p.Features == nil {
		return features, nil
	}
	if err := json.Unmarshal(p.Features, &features); err != nil {
		return nil, err
	}
	return features, nil
}
