// Package main provides the entry point for the projection serving CLI tool.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-projector/internal/artifact"
	"github.com/yourusername/prop-projector/internal/config"
	"github.com/yourusername/prop-projector/internal/database"
	"github.com/yourusername/prop-projector/internal/logger"
	"github.com/yourusername/prop-projector/internal/metrics"
	"github.com/yourusername/prop-projector/internal/ml"
	"github.com/yourusername/prop-projector/internal/repository"
	"github.com/yourusername/prop-projector/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		playerID   = flag.Int("player-id", 0, "Internal player id (required)")
		market     = flag.String("market", "", "Market code (required)")
		lookback   = flag.Int("lookback", 0, "Required lookback (0 = whatever the active model uses)")
		modelName  = flag.String("model", "", "Required model name (empty = whatever model is active)")
	)
	flag.Parse()

	ctx := context.Background()
	cfg := loadConfig(*configPath)
	log := logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	if *playerID == 0 || *market == "" {
		log.Fatal("-player-id and -market are required")
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	store, err := artifact.NewLocalStore(cfg.Artifacts.Dir)
	if err != nil {
		log.Fatalf("Failed to open artifact store: %v", err)
	}

	projector := service.NewProjector(
		repos.Player, repos.Market, repos.Registry, repos.Feature, repos.Projection,
		ml.NewPipelineCache(store), store, logger.NewPipelineLogger(log),
	)

	projection, err := projector.Project(ctx, service.ProjectRequest{
		PlayerID:   *playerID,
		MarketCode: *market,
		Lookback:   *lookback,
		ModelName:  *modelName,
	})
	if err != nil {
		log.Fatalf("Projection failed: %v", err)
	}

	log.WithFields(logrus.Fields{
		"player_id":   projection.PlayerID,
		"market_code": projection.MarketCode,
		"model_name":  projection.ModelName,
		"as_of":       projection.AsOfGameDate.Format("2006-01-02"),
		"prediction":  projection.Prediction,
	}).Info("Projection stored")
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			logrus.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			logrus.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}
