// Package artifact provides byte-blob storage for model artifacts, metadata
// and evaluation reports. The pipeline only ever writes bytes to a name and
// reads bytes back by name, so alternative backends can satisfy Store.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/prop-projector/internal/models"
)

// Store abstracts artifact persistence.
type Store interface {
	Write(name string, data []byte) error
	Read(name string) ([]byte, error)
	Exists(name string) bool
	Path(name string) string
}

// LocalStore persists artifacts on the local filesystem under a root directory.
type LocalStore struct {
	root string
}

// NewLocalStore creates a local artifact store rooted at dir.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &LocalStore{root: dir}, nil
}

// Write persists data under name, creating parent directories as needed.
func (s *LocalStore) Write(name string, data []byte) error {
	path := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact subdirectory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	return nil
}

// Read returns the bytes stored under name, or ErrNotFound.
func (s *LocalStore) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact %s: %w", name, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", name, err)
	}
	return data, nil
}

// Exists reports whether name is present in the store.
func (s *LocalStore) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Path returns the absolute location of name within the store.
func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.root, name)
}

// PipelineName returns the deterministic artifact name for a fitted pipeline.
func PipelineName(modelName, marketCode string, lookback int) string {
	return fmt.Sprintf("%s_%s_lb%d.model.json", modelName, marketCode, lookback)
}

// MetadataName returns the deterministic name of an artifact's metadata sibling.
func MetadataName(modelName, marketCode string, lookback int) string {
	return fmt.Sprintf("%s_%s_lb%d.json", modelName, marketCode, lookback)
}

// EvalReportName returns the deterministic name of an evaluation report.
func EvalReportName(modelName, marketCode string, lookback int) string {
	return filepath.Join("evals", fmt.Sprintf("%s_%s_lb%d_eval.json", modelName, marketCode, lookback))
}
