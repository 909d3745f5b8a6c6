package database

import (
	"context"
	"fmt"

	"github.com/yourusername/prop-projector/internal/config"
)

// schema holds the platform tables. Feature rows carry a natural composite
// key so windowing re-runs upsert instead of duplicating; registry tables are
// keyed for single-writer-wins overwrites.
const schema = `
CREATE TABLE IF NOT EXISTS players (
	id          SERIAL PRIMARY KEY,
	external_id TEXT UNIQUE NOT NULL,
	first_name  TEXT NOT NULL DEFAULT '',
	last_name   TEXT NOT NULL DEFAULT '',
	position    TEXT NOT NULL DEFAULT '',
	team        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS prop_markets (
	id         SERIAL PRIMARY KEY,
	code       TEXT UNIQUE NOT NULL,
	stat_field TEXT NOT NULL,
	name       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS player_game_stats (
	player_id       INT NOT NULL REFERENCES players(id),
	game_date       DATE NOT NULL,
	opponent        TEXT NOT NULL DEFAULT '',
	receiving_yards DOUBLE PRECISION NOT NULL DEFAULT 0,
	receptions      DOUBLE PRECISION NOT NULL DEFAULT 0,
	rushing_yards   DOUBLE PRECISION NOT NULL DEFAULT 0,
	rush_attempts   DOUBLE PRECISION NOT NULL DEFAULT 0,
	passing_yards   DOUBLE PRECISION NOT NULL DEFAULT 0,
	passing_tds     DOUBLE PRECISION NOT NULL DEFAULT 0,
	touchdowns      DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (player_id, game_date, opponent)
);

CREATE TABLE IF NOT EXISTS player_market_features (
	player_id       INT NOT NULL REFERENCES players(id),
	market_id       INT NOT NULL REFERENCES prop_markets(id),
	as_of_game_date DATE NOT NULL,
	opponent        TEXT NOT NULL DEFAULT '',
	lookback        INT NOT NULL,
	mean            DOUBLE PRECISION NOT NULL,
	stddev          DOUBLE PRECISION NOT NULL,
	weighted_mean   DOUBLE PRECISION NOT NULL,
	trend           DOUBLE PRECISION NOT NULL,
	label_actual    DOUBLE PRECISION,
	PRIMARY KEY (player_id, market_id, as_of_game_date, opponent, lookback)
);

CREATE TABLE IF NOT EXISTS trained_models (
	model_name    TEXT NOT NULL,
	market_id     INT NOT NULL REFERENCES prop_markets(id),
	lookback      INT NOT NULL,
	artifact_path TEXT NOT NULL,
	train_rows    INT NOT NULL,
	test_rows     INT NOT NULL,
	mae           DOUBLE PRECISION NOT NULL,
	rmse          DOUBLE PRECISION NOT NULL,
	r2            DOUBLE PRECISION NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (model_name, market_id, lookback)
);

CREATE TABLE IF NOT EXISTS active_models (
	market_id     INT PRIMARY KEY REFERENCES prop_markets(id),
	lookback      INT NOT NULL,
	model_name    TEXT NOT NULL,
	artifact_path TEXT NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS ml_projections (
	id              UUID PRIMARY KEY,
	player_id       INT NOT NULL REFERENCES players(id),
	market_code     TEXT NOT NULL,
	model_name      TEXT NOT NULL,
	lookback        INT NOT NULL,
	as_of_game_date DATE NOT NULL,
	prediction      DOUBLE PRECISION NOT NULL,
	features        JSONB,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (player_id, market_code, model_name, lookback, as_of_game_date)
);
`

// Initialize creates a database connection pool and ensures the platform
// schema exists.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	return db, nil
}
