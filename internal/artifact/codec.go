// Package artifact reads and writes the trained pipeline artifact.
// The trainer produces it at image-build time; the server loads it at
// startup and on reload.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"model-inference-service/internal/core/domain"
)

const SchemaVersion = 1

type Artifact struct {
	SchemaVersion int                    `json:"schema_version"`
	ModelVersion  string                 `json:"model_version"`
	TrainedAt     time.Time              `json:"trained_at"`
	Schema        domain.Schema          `json:"schema"`
	Scaler        domain.StandardScaler  `json:"scaler"`
	Model         domain.LinearModel     `json:"model"`
	L2            float64                `json:"l2"`
	Metrics       domain.TrainingMetrics `json:"metrics"`
	Reference     domain.ReferenceStats  `json:"reference"`
}

func (a *Artifact) Pipeline() (*domain.Pipeline, error) {
	if a.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d, want %d",
			domain.ErrInvalidArtifact, a.SchemaVersion, SchemaVersion)
	}
	if a.ModelVersion == "" {
		return nil, fmt.Errorf("%w: missing model version", domain.ErrInvalidArtifact)
	}
	p := &domain.Pipeline{
		Version:   a.ModelVersion,
		TrainedAt: a.TrainedAt,
		Schema:    a.Schema,
		Scaler:    a.Scaler,
		Model:     a.Model,
		Metrics:   a.Metrics,
		Reference: a.Reference,
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArtifact, err)
	}
	return p, nil
}

// Load reads and validates an artifact file into a usable pipeline.
func Load(path string) (*domain.Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArtifact, err)
	}
	return a.Pipeline()
}

// Save writes the artifact atomically: temp file in the target
// directory, then rename.
func Save(path string, a *Artifact) error {
	if _, err := a.Pipeline(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".artifact-*.json")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}
