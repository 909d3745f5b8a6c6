// Package config provides configuration management for the Prop Projector platform.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Artifacts  ArtifactsConfig  `mapstructure:"artifacts" validate:"required"`
	Markets    []MarketConfig   `mapstructure:"markets" validate:"required,min=1,dive"`
	Training   TrainingConfig   `mapstructure:"training" validate:"required"`
	Evaluation EvaluationConfig `mapstructure:"evaluation" validate:"required"`
	Ingestion  IngestionConfig  `mapstructure:"ingestion" validate:"required"`
	Schedule   ScheduleConfig   `mapstructure:"schedule" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// ArtifactsConfig represents model artifact storage configuration
type ArtifactsConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// MarketConfig represents one prop market seeded as reference data
type MarketConfig struct {
	Code      string `mapstructure:"code" validate:"required"`
	StatField string `mapstructure:"stat_field" validate:"required,statfield"`
	Name      string `mapstructure:"name" validate:"required"`
}

// TrainingConfig represents model training configuration
type TrainingConfig struct {
	ModelName       string  `mapstructure:"model_name" validate:"required"`
	Lookback        int     `mapstructure:"lookback" validate:"required,gte=1,lte=50"`
	Alpha           float64 `mapstructure:"alpha" validate:"gte=0"`
	RegistryEnabled bool    `mapstructure:"registry_enabled"`
}

// EvaluationConfig represents model evaluation configuration
type EvaluationConfig struct {
	TestFraction float64 `mapstructure:"test_fraction" validate:"required,gt=0,lt=0.8"`
}

// IngestionConfig represents upstream stats ingestion configuration
type IngestionConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	PlayersURL     string  `mapstructure:"players_url" validate:"omitempty,url"`
	StatsURL       string  `mapstructure:"stats_url" validate:"omitempty,url"`
	APIKey         string  `mapstructure:"api_key"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"gte=0"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// ScheduleConfig represents scheduled pipeline job configuration
type ScheduleConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	FeatureBuildCron string `mapstructure:"feature_build_cron" validate:"required"`
	LabelAttachCron  string `mapstructure:"label_attach_cron" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// MarketByCode returns the configured market with the given code.
func (c *Config) MarketByCode(code string) (*MarketConfig, error) {
	for i := range c.Markets {
		if c.Markets[i].Code == code {
			return &c.Markets[i], nil
		}
	}
	return nil, fmt.Errorf("market %q is not configured", code)
}
