package domain

import (
	"time"

	"github.com/google/uuid"
)

type DriftKind string

const (
	DriftKindData    DriftKind = "data"
	DriftKindConcept DriftKind = "concept"
)

func ValidateDriftKind(kind string) error {
	if kind == "" {
		return nil
	}
	switch DriftKind(kind) {
	case DriftKindData, DriftKindConcept:
		return nil
	}
	return ErrInvalidDriftKind
}

// FeatureDrift is the per-feature outcome of a data drift evaluation.
type FeatureDrift struct {
	Feature         string  `json:"feature"`
	PSI             float64 `json:"psi"`
	ReferenceMedian float64 `json:"reference_median"`
	CurrentMedian   float64 `json:"current_median"`
	Drifted         bool    `json:"drifted"`
}

// DriftDetail carries the kind-specific breakdown of a report.
// Features is set for data drift, the error metrics for concept drift.
type DriftDetail struct {
	Features     []FeatureDrift `json:"features,omitempty"`
	RMSE         float64        `json:"rmse,omitempty"`
	BaselineRMSE float64        `json:"baseline_rmse,omitempty"`
	R2           float64        `json:"r2,omitempty"`
}

type DriftReport struct {
	ID           uuid.UUID   `json:"id"`
	CreatedAt    time.Time   `json:"created_at"`
	Kind         DriftKind   `json:"kind"`
	Score        float64     `json:"score"`
	Threshold    float64     `json:"threshold"`
	Drifted      bool        `json:"drifted"`
	WindowStart  time.Time   `json:"window_start"`
	WindowEnd    time.Time   `json:"window_end"`
	Samples      int         `json:"samples"`
	ModelVersion string      `json:"model_version"`
	Detail       DriftDetail `json:"detail"`
}
