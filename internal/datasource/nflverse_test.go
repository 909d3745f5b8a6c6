package datasource

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestClient(playersURL, statsURL string) *NFLverseClient {
	cfg := DefaultHTTPClientConfig()
	cfg.RateLimit = 1000
	cfg.MaxRetries = 0
	return NewNFLverseClient(NewRateLimitedHTTPClient(cfg, testLogger()), playersURL, statsURL, "", testLogger())
}

func TestFetchPlayersParsesRoster(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "gsis_id,first_name,last_name,position,team\n"+
			"00-0031234,Test,Receiver,WR,KC\n"+
			"00-0035678,Other,Back,RB,SF\n"+
			",Missing,ID,QB,DAL\n")
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	players, err := client.FetchPlayers(context.Background())

	require.NoError(t, err)
	require.Len(t, players, 2, "rows without an external id are dropped")
	assert.Equal(t, "00-0031234", players[0].ExternalID)
	assert.Equal(t, "WR", players[0].Position)
	assert.Equal(t, "KC", players[0].Team)
}

func TestFetchStatLinesParsesWeekly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "player_id,game_date,opponent_team,receiving_yards,receptions,rushing_yards,carries,receiving_tds,rushing_tds\n"+
			"00-0031234,2025-09-07,LAC,87,6,0,0,1,0\n"+
			"00-0031234,2025-09-14,CIN,NA,3,12,2,0,1\n"+
			"00-0031234,bad-date,CIN,10,1,0,0,0,0\n")
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	lines, err := client.FetchStatLines(context.Background())

	require.NoError(t, err)
	require.Len(t, lines, 2, "rows with unparseable dates are skipped")

	assert.Equal(t, "00-0031234", lines[0].ExternalID)
	assert.Equal(t, time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC), lines[0].Stat.GameDate)
	assert.Equal(t, "LAC", lines[0].Stat.Opponent)
	assert.Equal(t, 87.0, lines[0].Stat.ReceivingYards)
	assert.Equal(t, 1.0, lines[0].Stat.Touchdowns)

	// NA values parse as zero.
	assert.Zero(t, lines[1].Stat.ReceivingYards)
	assert.Equal(t, 1.0, lines[1].Stat.Touchdowns)
}

func TestFetchStatLinesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	_, err := client.FetchStatLines(context.Background())

	assert.Error(t, err)
}

func TestFetchCSVRequiresDataRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "gsis_id,first_name\n")
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	_, err := client.FetchPlayers(context.Background())

	assert.Error(t, err)
}

func TestFetchCSVSendsAPIKey(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		io.WriteString(w, "gsis_id,first_name\n00-1,A\n")
	}))
	defer server.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.RateLimit = 1000
	client := NewNFLverseClient(NewRateLimitedHTTPClient(cfg, testLogger()), server.URL, server.URL, "secret-key", testLogger())

	_, err := client.FetchPlayers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-key", gotAuth)
}
