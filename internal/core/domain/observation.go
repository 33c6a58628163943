package domain

import (
	"time"

	"github.com/google/uuid"
)

// PredictionRecord is one served prediction. Inputs holds the encoded,
// pre-scaling feature vector in schema order.
type PredictionRecord struct {
	ID           uuid.UUID              `json:"id"`
	CreatedAt    time.Time              `json:"created_at"`
	Features     map[string]interface{} `json:"features"`
	Inputs       []float64              `json:"inputs"`
	Predicted    float64                `json:"predicted"`
	LatencyMs    float64                `json:"latency_ms"`
	ModelVersion string                 `json:"model_version"`
}

// Feedback is the observed ground truth for a served prediction.
type Feedback struct {
	PredictionID uuid.UUID `json:"prediction_id"`
	Actual       float64   `json:"actual"`
	CreatedAt    time.Time `json:"created_at"`
}

// FeedbackPair is a prediction joined with its observed outcome,
// the unit of concept drift evaluation.
type FeedbackPair struct {
	Predicted float64 `json:"predicted"`
	Actual    float64 `json:"actual"`
}
