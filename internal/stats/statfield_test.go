package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-projector/internal/models"
)

func TestParseKnownFields(t *testing.T) {
	for _, f := range All() {
		parsed, err := Parse(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	tests := []string{
		"",
		"sacks",
		"receiving_yards; DROP TABLE players",
		"RECEIVING_YARDS",
	}

	for _, name := range tests {
		_, err := Parse(name)
		assert.ErrorIs(t, err, models.ErrUnsupportedStat, "field %q", name)
	}
}

func TestColumnMatchesCanonicalName(t *testing.T) {
	for _, f := range All() {
		assert.Equal(t, f.String(), f.Column())
		assert.NotEmpty(t, f.Column())
	}
}

func TestValueFrom(t *testing.T) {
	stat := &models.GameStat{
		ReceivingYards: 87,
		Receptions:     6,
		RushingYards:   12,
		RushAttempts:   3,
		PassingYards:   250,
		PassingTDs:     2,
		Touchdowns:     1,
	}

	tests := []struct {
		field StatField
		want  float64
	}{
		{ReceivingYards, 87},
		{Receptions, 6},
		{RushingYards, 12},
		{RushAttempts, 3},
		{PassingYards, 250},
		{PassingTDs, 2},
		{Touchdowns, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.field.ValueFrom(stat), tt.field.String())
	}
}
