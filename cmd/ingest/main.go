// Package main provides the entry point for the ingestion service. In daemon
// mode it also runs the scheduled feature-build and label-attach jobs and
// serves Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-projector/internal/config"
	"github.com/yourusername/prop-projector/internal/database"
	"github.com/yourusername/prop-projector/internal/datasource"
	"github.com/yourusername/prop-projector/internal/logger"
	"github.com/yourusername/prop-projector/internal/metrics"
	"github.com/yourusername/prop-projector/internal/repository"
	"github.com/yourusername/prop-projector/internal/scheduler"
	"github.com/yourusername/prop-projector/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		daemon     = flag.Bool("daemon", false, "Keep running scheduled pipeline jobs after the initial ingest")
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

	plog := logger.NewPipelineLogger(log)
	ingestion := buildIngestionService(cfg, repos, log)

	if err := ingestion.SeedMarkets(ctx, cfg.Markets); err != nil {
		log.Fatalf("Failed to seed markets: %v", err)
	}

	if cfg.Ingestion.Enabled {
		result, err := ingestion.Ingest(ctx)
		if err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		log.Infof("Ingestion run: %s", result)
	} else {
		log.Info("Ingestion disabled by configuration, markets seeded only")
	}

	if !*daemon {
		return
	}

	runDaemon(cfg, repos, plog, log)
}

func buildIngestionService(cfg *config.Config, repos *repository.Repositories, log *logrus.Logger) *service.IngestionService {
	httpCfg := datasource.DefaultHTTPClientConfig()
	if cfg.Ingestion.RateLimit > 0 {
		httpCfg.RateLimit = cfg.Ingestion.RateLimit
	}
	if cfg.Ingestion.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.Ingestion.TimeoutSeconds) * time.Second
	}

	feed := datasource.NewNFLverseClient(
		datasource.NewRateLimitedHTTPClient(httpCfg, log),
		cfg.Ingestion.PlayersURL,
		cfg.Ingestion.StatsURL,
		cfg.Ingestion.APIKey,
		log,
	)
	return service.NewIngestionService(feed, repos.Player, repos.GameStat, repos.Market, log)
}

func runDaemon(cfg *config.Config, repos *repository.Repositories, plog *logger.PipelineLogger, log *logrus.Logger) {
	var sched *scheduler.Scheduler
	if cfg.Schedule.Enabled {
		builder := service.NewFeatureBuilder(repos.Market, repos.GameStat, repos.Feature, plog)
		attacher := service.NewLabelAttacher(repos.Market, repos.Feature, plog)
		sched = scheduler.NewScheduler(builder, attacher, log)

		for _, mc := range cfg.Markets {
			if err := sched.ScheduleFeatureBuild(cfg.Schedule.FeatureBuildCron, mc.Code, cfg.Training.Lookback); err != nil {
				log.Fatalf("Failed to schedule feature build for %s: %v", mc.Code, err)
			}
			if err := sched.ScheduleLabelAttach(cfg.Schedule.LabelAttachCron, mc.Code, cfg.Training.Lookback); err != nil {
				log.Fatalf("Failed to schedule label attach for %s: %v", mc.Code, err)
			}
		}
		if err := sched.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	} else {
		log.Info("Scheduled pipeline jobs disabled by configuration")
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			log.Infof("Metrics listening on :%d%s", cfg.Metrics.Port, cfg.Metrics.Path)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("Metrics server error: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	if sched != nil {
		if err := sched.Stop(); err != nil {
			log.Errorf("Scheduler shutdown error: %v", err)
		}
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Metrics server shutdown error: %v", err)
		}
	}
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
