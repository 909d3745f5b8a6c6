// Package stats defines the closed set of observable statistics a prop market
// can target.
package stats

import (
	"fmt"

	"github.com/yourusername/prop-projector/internal/models"
)

// StatField identifies one supported per-game statistic. Markets may only
// reference fields from this enumeration; anything else is rejected at parse
// time, so no SQL is ever built from caller-supplied column names.
type StatField int

const (
	ReceivingYards StatField = iota
	Receptions
	RushingYards
	RushAttempts
	PassingYards
	PassingTDs
	Touchdowns
)

var fieldNames = map[StatField]string{
	ReceivingYards: "receiving_yards",
	Receptions:     "receptions",
	RushingYards:   "rushing_yards",
	RushAttempts:   "rush_attempts",
	PassingYards:   "passing_yards",
	PassingTDs:     "passing_tds",
	Touchdowns:     "touchdowns",
}

// Parse resolves a stat field name stored on a market into its enum variant.
func Parse(name string) (StatField, error) {
	for f, n := range fieldNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("stat field %q: %w", name, models.ErrUnsupportedStat)
}

// String returns the canonical field name.
func (f StatField) String() string {
	return fieldNames[f]
}

// Column returns the player_game_stats column backing this field. The value
// is a compile-time constant per variant, never derived from input.
func (f StatField) Column() string {
	return fieldNames[f]
}

// ValueFrom extracts this field's value from a per-game stat line.
func (f StatField) ValueFrom(s *models.GameStat) float64 {
	switch f {
	case ReceivingYards:
		return s.ReceivingYards
	case Receptions:
		return s.Receptions
	case RushingYards:
		return s.RushingYards
	case RushAttempts:
		return s.RushAttempts
	case PassingYards:
		return s.PassingYards
	case PassingTDs:
		return s.PassingTDs
	case Touchdowns:
		return s.Touchdowns
	}
	return 0
}

// All returns every supported field, for validation and schema bootstrap.
func All() []StatField {
	return []StatField{
		ReceivingYards,
		Receptions,
		RushingYards,
		RushAttempts,
		PassingYards,
		PassingTDs,
		Touchdowns,
	}
}
