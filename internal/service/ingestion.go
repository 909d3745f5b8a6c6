package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-projector/internal/config"
	"github.com/yourusername/prop-projector/internal/datasource"
	"github.com/yourusername/prop-projector/internal/models"
	"github.com/yourusername/prop-projector/internal/repository"
)

// IngestionResult summarizes one ingestion run.
type IngestionResult struct {
	Players       int
	StatLines     int
	UnknownPlayer int
	Duration      time.Duration
}

func (r IngestionResult) String() string {
	return fmt.Sprintf("players=%d stat_lines=%d unknown_player=%d duration=%s",
		r.Players, r.StatLines, r.UnknownPlayer, r.Duration)
}

// IngestionService pulls rosters and weekly stat lines from the upstream feed
// and persists them. Stat lines for players not present in the roster feed
// are counted and skipped rather than failing the run.
type IngestionService struct {
	feed      *datasource.NFLverseClient
	players   repository.PlayerRepository
	gameStats repository.GameStatRepository
	markets   repository.MarketRepository
	logger    *logrus.Logger
}

// NewIngestionService creates an ingestion service.
func NewIngestionService(
	feed *datasource.NFLverseClient,
	players repository.PlayerRepository,
	gameStats repository.GameStatRepository,
	markets repository.MarketRepository,
	logger *logrus.Logger,
) *IngestionService {
	return &IngestionService{
		feed:      feed,
		players:   players,
		gameStats: gameStats,
		markets:   markets,
		logger:    logger,
	}
}

// SeedMarkets writes the configured prop markets as reference data.
func (s *IngestionService) SeedMarkets(ctx context.Context, configured []config.MarketConfig) error {
	markets := make([]models.Market, len(configured))
	for i, mc := range configured {
		markets[i] = models.Market{
			Code:      mc.Code,
			StatField: mc.StatField,
			Name:      mc.Name,
		}
	}
	if err := s.markets.Seed(ctx, markets); err != nil {
		return fmt.Errorf("failed to seed markets: %w", err)
	}
	s.logger.WithField("markets", len(markets)).Info("Seeded prop markets")
	return nil
}

// Ingest runs one full roster + stats pull.
func (s *IngestionService) Ingest(ctx context.Context) (*IngestionResult, error) {
	start := time.Now()

	players, err := s.feed.FetchPlayers(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.players.UpsertBatch(ctx, players); err != nil {
		return nil, err
	}

	lines, err := s.feed.FetchStatLines(ctx)
	if err != nil {
		return nil, err
	}

	// Resolve feed ids to internal player ids. The roster was just upserted,
	// so misses are genuinely unknown players, not ordering artifacts.
	rows := make([]models.GameStat, 0, len(lines))
	unknown := 0
	idCache := map[string]int{}
	for _, line := range lines {
		id, ok := idCache[line.ExternalID]
		if !ok {
			player, err := s.players.GetByExternalID(ctx, line.ExternalID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					unknown++
					continue
				}
				return nil, err
			}
			id = player.ID
			idCache[line.ExternalID] = id
		}
		stat := line.Stat
		stat.PlayerID = id
		rows = append(rows, stat)
	}

	if len(rows) > 0 {
		if err := s.gameStats.UpsertBatch(ctx, rows); err != nil {
			return nil, err
		}
	}

	result := &IngestionResult{
		Players:       len(players),
		StatLines:     len(rows),
		UnknownPlayer: unknown,
		Duration:      time.Since(start),
	}
	s.logger.WithFields(logrus.Fields{
		"players":        result.Players,
		"stat_lines":     result.StatLines,
		"unknown_player": result.UnknownPlayer,
		"duration":       result.Duration.String(),
	}).Info("Ingestion completed")
	return result, nil
}
