// Package main provides the entry point for the model training CLI tool.
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
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		market     = flag.String("market", "", "Market code to train (empty = all configured)")
		lookback   = flag.Int("lookback", 0, "Rolling window size (0 = configured training lookback)")
		modelName  = flag.String("model", "", "Model name (empty = configured model name)")
		alpha      = flag.Float64("alpha", 0, "Ridge penalty (0 = configured alpha)")
	)
	flag.Parse()

	ctx := context.Background()
	cfg := loadConfig(*configPath)
	log := logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

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

	trainer := ml.NewTrainer(
		repos.Market, repos.Feature, repos.Registry,
		store, logger.NewPipelineLogger(log), cfg.Training.RegistryEnabled,
	)

	req := ml.TrainRequest{
		Lookback:  cfg.Training.Lookback,
		ModelName: cfg.Training.ModelName,
		Alpha:     cfg.Training.Alpha,
	}
	if *lookback != 0 {
		req.Lookback = *lookback
	}
	if *modelName != "" {
		req.ModelName = *modelName
	}
	if *alpha != 0 {
		req.Alpha = *alpha
	}

	codes := marketCodes(cfg, *market)
	for _, code := range codes {
		req.MarketCode = code
		meta, err := trainer.Train(ctx, req)
		if err != nil {
			log.Fatalf("Training failed for market %s: %v", code, err)
		}
		log.WithFields(logrus.Fields{
			"market_code": code,
			"artifact":    meta.ArtifactPath,
			"mae":         meta.MAE,
			"r2":          meta.R2,
		}).Info("Training run finished")
	}
}

func marketCodes(cfg *config.Config, requested string) []string {
	if requested != "" {
		return []string{requested}
	}
	codes := make([]string, len(cfg.Markets))
	for i, mc := range cfg.Markets {
		codes[i] = mc.Code
	}
	return codes
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
