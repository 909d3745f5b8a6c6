// Package main provides the entry point for the feature build CLI tool.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-projector/internal/config"
	"github.com/yourusername/prop-projector/internal/database"
	"github.com/yourusername/prop-projector/internal/logger"
	"github.com/yourusername/prop-projector/internal/metrics"
	"github.com/yourusername/prop-projector/internal/repository"
	"github.com/yourusername/prop-projector/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		market     = flag.String("market", "", "Market code to build features for (empty = all configured)")
		lookback   = flag.Int("lookback", 0, "Rolling window size (0 = configured training lookback)")
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

	builder := service.NewFeatureBuilder(repos.Market, repos.GameStat, repos.Feature, logger.NewPipelineLogger(log))

	lb := *lookback
	if lb == 0 {
		lb = cfg.Training.Lookback
	}

	codes := marketCodes(cfg, *market)
	total := 0
	for _, code := range codes {
		rows, err := builder.Build(ctx, code, lb)
		if err != nil {
			log.Fatalf("Feature build failed for market %s: %v", code, err)
		}
		total += rows
	}

	log.WithFields(logrus.Fields{
		"markets":       len(codes),
		"lookback":      lb,
		"rows_upserted": total,
	}).Info("Feature build finished")
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
