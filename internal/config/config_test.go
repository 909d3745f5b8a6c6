// Package config provides configuration management for the Prop Projector platform.
package config

import (
	"os"
	"testing"
)

const (
	validConfigPath       = "testdata/valid_config.yaml"
	expansionConfigPath   = "testdata/expansion_config.yaml"
	nonexistentConfigPath = "testdata/nonexistent_config.yaml"
	expectedNoErrorMsg    = "expected no error, got %v"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	if cfg.App.Name != "prop-projector" {
		t.Errorf("expected app name 'prop-projector', got '%s'", cfg.App.Name)
	}

	if cfg.Database.Port != 5432 {
		t.Errorf("expected database port 5432, got %d", cfg.Database.Port)
	}

	if len(cfg.Markets) != 2 {
		t.Fatalf("expected 2 markets, got %d", len(cfg.Markets))
	}

	if cfg.Markets[0].StatField != "receiving_yards" {
		t.Errorf("expected stat_field 'receiving_yards', got '%s'", cfg.Markets[0].StatField)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvExpansion tests ${VAR} expansion inside the YAML file
func TestLoadConfigEnvExpansion(t *testing.T) {
	os.Setenv("TEST_DB_PASSWORD", "expanded_secret_value")
	defer os.Unsetenv("TEST_DB_PASSWORD")

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Database.Password != "expanded_secret_value" {
		t.Errorf("expected expanded password, got '%s'", cfg.Database.Password)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

// TestValidateRejectsUnknownStatField tests the statfield allow-list
func TestValidateRejectsUnknownStatField(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	cfg.Markets[0].StatField = "sack_yards"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for unsupported stat field")
	}
}

// TestValidateRejectsBadEnvironment tests the environment validator
func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	cfg.App.Environment = "invalid"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for bad environment")
	}
}

// TestValidateRejectsDuplicateMarkets tests cross-field validation
func TestValidateRejectsDuplicateMarkets(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	cfg.Markets[1].Code = cfg.Markets[0].Code
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for duplicate market codes")
	}
}

// TestValidateRejectsBadTestFraction tests evaluation bounds
func TestValidateRejectsBadTestFraction(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	cfg.Evaluation.TestFraction = 0.9
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for test fraction out of range")
	}
}

// TestLoadWithDefaultsMissingFile tests that a missing config file falls back
// to built-in defaults instead of failing
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Training.ModelName != "ridge_v1" {
		t.Errorf("expected default model name 'ridge_v1', got '%s'", cfg.Training.ModelName)
	}

	if cfg.Training.Lookback != 5 {
		t.Errorf("expected default lookback 5, got %d", cfg.Training.Lookback)
	}

	if cfg.Evaluation.TestFraction != 0.2 {
		t.Errorf("expected default test fraction 0.2, got %f", cfg.Evaluation.TestFraction)
	}
}

// TestLoadWithDefaultsFileOverrides tests that file values win over defaults
func TestLoadWithDefaultsFileOverrides(t *testing.T) {
	cfg, err := LoadWithDefaults(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Database.Host != "localhost" {
		t.Errorf("expected database host 'localhost', got '%s'", cfg.Database.Host)
	}

	if cfg.Schedule.Enabled {
		t.Error("expected schedule disabled per config file")
	}

	if len(cfg.Markets) != 2 {
		t.Fatalf("expected 2 markets, got %d", len(cfg.Markets))
	}
}
