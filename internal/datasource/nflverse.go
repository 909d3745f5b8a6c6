package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-projector/internal/models"
)

// StatLine is one parsed weekly row keyed by the feed's player identifier.
type StatLine struct {
	ExternalID string
	Stat       models.GameStat
}

// NFLverseClient pulls player rosters and weekly stat lines from nflverse
// CSV releases.
type NFLverseClient struct {
	http       *RateLimitedHTTPClient
	playersURL string
	statsURL   string
	apiKey     string
	logger     *logrus.Logger
}

// NewNFLverseClient creates a feed client.
func NewNFLverseClient(httpClient *RateLimitedHTTPClient, playersURL, statsURL, apiKey string, logger *logrus.Logger) *NFLverseClient {
	return &NFLverseClient{
		http:       httpClient,
		playersURL: playersURL,
		statsURL:   statsURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// FetchPlayers downloads and parses the roster feed.
func (c *NFLverseClient) FetchPlayers(ctx context.Context) ([]models.Player, error) {
	records, err := c.fetchCSV(ctx, c.playersURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch players feed: %w", err)
	}

	header := indexHeader(records[0])
	players := make([]models.Player, 0, len(records)-1)
	for _, rec := range records[1:] {
		externalID := field(rec, header, "gsis_id", "player_id")
		if externalID == "" {
			continue
		}
		players = append(players, models.Player{
			ExternalID: externalID,
			FirstName:  field(rec, header, "first_name"),
			LastName:   field(rec, header, "last_name"),
			Position:   field(rec, header, "position"),
			Team:       field(rec, header, "team", "recent_team"),
		})
	}

	c.logger.WithField("players", len(players)).Info("Parsed roster feed")
	return players, nil
}

// FetchStatLines downloads and parses the weekly stats feed. Each returned
// line carries the feed's external player id; the caller resolves it to an
// internal player before persisting.
func (c *NFLverseClient) FetchStatLines(ctx context.Context) ([]StatLine, error) {
	records, err := c.fetchCSV(ctx, c.statsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats feed: %w", err)
	}

	header := indexHeader(records[0])
	lines := make([]StatLine, 0, len(records)-1)
	skipped := 0
	for _, rec := range records[1:] {
		externalID := field(rec, header, "player_id", "gsis_id")
		gameDate, err := time.Parse("2006-01-02", field(rec, header, "game_date", "gameday"))
		if err != nil || externalID == "" {
			skipped++
			continue
		}

		lines = append(lines, StatLine{
			ExternalID: externalID,
			Stat: models.GameStat{
				GameDate:       gameDate,
				Opponent:       field(rec, header, "opponent_team", "opponent"),
				ReceivingYards: numField(rec, header, "receiving_yards"),
				Receptions:     numField(rec, header, "receptions"),
				RushingYards:   numField(rec, header, "rushing_yards"),
				RushAttempts:   numField(rec, header, "carries", "rush_attempts"),
				PassingYards:   numField(rec, header, "passing_yards"),
				PassingTDs:     numField(rec, header, "passing_tds"),
				Touchdowns: numField(rec, header, "receiving_tds") +
					numField(rec, header, "rushing_tds"),
			},
		})
	}

	c.logger.WithFields(logrus.Fields{
		"lines":   len(lines),
		"skipped": skipped,
	}).Info("Parsed weekly stats feed")
	return lines, nil
}

func (c *NFLverseClient) fetchCSV(ctx context.Context, url string) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV feed: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("feed contained no data rows")
	}
	return records, nil
}

// indexHeader maps column names to positions.
func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return idx
}

// field returns the first present column among names, empty when absent.
func field(rec []string, header map[string]int, names ...string) string {
	for _, name := range names {
		if i, ok := header[name]; ok && i < len(rec) {
			return rec[i]
		}
	}
	return ""
}

// numField parses the first present numeric column among names, 0 when
// absent or blank.
func numField(rec []string, header map[string]int, names ...string) float64 {
	raw := field(rec, header, names...)
	if raw == "" || raw == "NA" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
