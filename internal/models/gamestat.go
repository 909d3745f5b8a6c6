package models

import "time"

// GameStat is one real per-game stat line for a player. Rows are ordered per
// player by GameDate and feed the rolling feature windows.
type GameStat struct {
	PlayerID       int       `db:"player_id" json:"player_id" validate:"required"`
	GameDate       time.Time `db:"game_date" json:"game_date" validate:"required"`
	Opponent       string    `db:"opponent" json:"opponent"`
	ReceivingYards float64   `db:"receiving_yards" json:"receiving_yards"`
	Receptions     float64   `db:"receptions" json:"receptions"`
	RushingYards   float64   `db:"rushing_yards" json:"rushing_yards"`
	RushAttempts   float64   `db:"rush_attempts" json:"rush_attempts"`
	PassingYards   float64   `db:"passing_yards" json:"passing_yards"`
	PassingTDs     float64   `db:"passing_tds" json:"passing_tds"`
	Touchdowns     float64   `db:"touchdowns" json:"touchdowns"`
}

// Observation is one (date, opponent, value) point for a single market's
// stat field, already projected out of the full stat line.
type Observation struct {
	PlayerID int       `json:"player_id"`
	GameDate time.Time `json:"game_date"`
	Opponent string    `json:"opponent"`
	Value    float64   `json:"value"`
}
