package models

import "time"

// FeatureRow is one engineered rolling-window row for a player/market.
// The natural key is (PlayerID, MarketID, AsOfGameDate, Opponent, Lookback).
// LabelActual starts NULL and is written only by the label-attach step.
type FeatureRow struct {
	PlayerID     int       `db:"player_id" json:"player_id" validate:"required"`
	MarketID     int       `db:"market_id" json:"market_id" validate:"required"`
	AsOfGameDate time.Time `db:"as_of_game_date" json:"as_of_game_date" validate:"required"`
	Opponent     string    `db:"opponent" json:"opponent"`
	Lookback     int       `db:"lookback" json:"lookback" validate:"required,gte=1"`
	Mean         float64   `db:"mean" json:"mean"`
	Stddev       float64   `db:"stddev" json:"stddev"`
	WeightedMean float64   `db:"weighted_mean" json:"weighted_mean"`
	Trend        float64   `db:"trend" json:"trend"`
	LabelActual  *float64  `db:"label_actual" json:"label_actual,omitempty"`
}

// LabeledRow is a feature row joined with the owning player's position,
// as consumed by training and evaluation.
type LabeledRow struct {
	PlayerID     int       `db:"player_id" json:"player_id"`
	AsOfGameDate time.Time `db:"as_of_game_date" json:"as_of_game_date"`
	Position     string    `db:"position" json:"position"`
	Mean         float64   `db:"mean" json:"mean"`
	Stddev       float64   `db:"stddev" json:"stddev"`
	WeightedMean float64   `db:"weighted_mean" json:"weighted_mean"`
	Trend        float64   `db:"trend" json:"trend"`
	LabelActual  float64   `db:"label_actual" json:"label_actual"`
}

// Feature returns the named feature value. Training and evaluation always
// address features by the column order recorded in model metadata.
func (r *LabeledRow) Feature(name string) float64 {
	switch name {
	case "mean":
		return r.Mean
	case "stddev":
		return r.Stddev
	case "weighted_mean":
		return r.WeightedMean
	case "trend":
		return r.Trend
	}
	return 0
}
