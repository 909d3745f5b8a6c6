// Package main provides the entry point for the model evaluation CLI tool.
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
		market     = flag.String("market", "", "Market code to evaluate (required)")
		lookback   = flag.Int("lookback", 0, "Rolling window size (0 = configured training lookback)")
		modelName  = flag.String("model", "", "Model name (empty = configured model name)")
		testFrac   = flag.Float64("test-frac", 0, "Time-ordered test fraction (0 = configured fraction)")
	)
	flag.Parse()

	ctx := context.Background()
	cfg := loadConfig(*configPath)
	log := logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	if *market == "" {
		log.Fatal("-market is required")
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

	evaluator := ml.NewEvaluator(repos.Market, repos.Feature, store, logger.NewPipelineLogger(log))

	req := ml.EvalRequest{
		MarketCode: *market,
		Lookback:   cfg.Training.Lookback,
		ModelName:  cfg.Training.ModelName,
		TestFrac:   cfg.Evaluation.TestFraction,
	}
	if *lookback != 0 {
		req.Lookback = *lookback
	}
	if *modelName != "" {
		req.ModelName = *modelName
	}
	if *testFrac != 0 {
		req.TestFrac = *testFrac
	}

	report, err := evaluator.Evaluate(ctx, req)
	if err != nil {
		log.Fatalf("Evaluation failed for market %s: %v", *market, err)
	}

	log.WithFields(logrus.Fields{
		"market_code":  report.MarketCode,
		"rows_test":    report.RowsTest,
		"mae":          report.Overall.MAE,
		"baseline_mae": report.BaselineOverall.MAE,
		"mae_lift_pct": report.Lift.MAEImprovementPct,
	}).Info("Evaluation finished")
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
