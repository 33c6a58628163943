package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"model-inference-service/internal/artifact"
	"model-inference-service/internal/core/domain"
	ports "model-inference-service/internal/core/ports/output"
	"model-inference-service/internal/telemetry"
)

// ModelInfo is the serving-side view of the loaded artifact.
type ModelInfo struct {
	ModelVersion string                 `json:"model_version"`
	TrainedAt    time.Time              `json:"trained_at"`
	Features     []domain.Feature       `json:"features"`
	Target       string                 `json:"target"`
	Metrics      domain.TrainingMetrics `json:"metrics"`
	ArtifactPath string                 `json:"artifact_path"`
}

// PredictionService serves the loaded pipeline, logs every prediction
// and feeds the drift observation window.
type PredictionService struct {
	mu       sync.RWMutex
	pipeline *domain.Pipeline

	artifactPath string
	repo         ports.PredictionLogRepository
	feedback     ports.FeedbackRepository
	window       *ObservationWindow
	metrics      *telemetry.Metrics
}

func NewPredictionService(
	artifactPath string,
	repo ports.PredictionLogRepository,
	feedback ports.FeedbackRepository,
	window *ObservationWindow,
	metrics *telemetry.Metrics,
) *PredictionService {
	return &PredictionService{
		artifactPath: artifactPath,
		repo:         repo,
		feedback:     feedback,
		window:       window,
		metrics:      metrics,
	}
}

// LoadModel reads the artifact from disk and swaps it in atomically.
// In-flight predictions finish on the pipeline they started with.
func (s *PredictionService) LoadModel() error {
	pipeline, err := artifact.Load(s.artifactPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.pipeline = pipeline
	s.mu.Unlock()

	s.metrics.ModelReloads.Inc(1)
	log.WithFields(log.Fields{
		"model_version": pipeline.Version,
		"trained_at":    pipeline.TrainedAt,
		"rmse":          pipeline.Metrics.RMSE,
		"r2":            pipeline.Metrics.R2,
	}).Info("model pipeline loaded")
	return nil
}

// Pipeline returns the currently loaded pipeline, or nil.
func (s *PredictionService) Pipeline() *domain.Pipeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pipeline
}

func (s *PredictionService) Loaded() bool {
	return s.Pipeline() != nil
}

func (s *PredictionService) Info() (*ModelInfo, error) {
	p := s.Pipeline()
	if p == nil {
		return nil, domain.ErrModelNotLoaded
	}
	return &ModelInfo{
		ModelVersion: p.Version,
		TrainedAt:    p.TrainedAt,
		Features:     p.Schema.Features,
		Target:       p.Schema.Target,
		Metrics:      p.Metrics,
		ArtifactPath: s.artifactPath,
	}, nil
}

func (s *PredictionService) Predict(ctx context.Context, features map[string]interface{}) (*domain.PredictionRecord, error) {
	p := s.Pipeline()
	if p == nil {
		return nil, domain.ErrModelNotLoaded
	}

	start := time.Now()
	predicted, vec, err := p.Predict(features)
	if err != nil {
		s.metrics.PredictErrors.Inc(1)
		return nil, err
	}
	elapsed := time.Since(start)

	record := &domain.PredictionRecord{
		ID:           uuid.New(),
		CreatedAt:    time.Now(),
		Features:     features,
		Inputs:       vec,
		Predicted:    predicted,
		LatencyMs:    float64(elapsed.Microseconds()) / 1000.0,
		ModelVersion: p.Version,
	}

	s.metrics.PredictRequests.Inc(1)
	s.metrics.PredictLatency.Update(elapsed)

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("log prediction: %w", err)
	}
	s.window.Add(record.ID, vec)

	return record, nil
}

// PredictBatch serves a batch all-or-nothing for input errors: every
// row is vectorized before anything is logged, so a rejected batch
// leaves the prediction log and drift window untouched.
func (s *PredictionService) PredictBatch(ctx context.Context, batch []map[string]interface{}) ([]*domain.PredictionRecord, error) {
	if len(batch) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	p := s.Pipeline()
	if p == nil {
		return nil, domain.ErrModelNotLoaded
	}
	for i, features := range batch {
		if _, err := p.Schema.Vectorize(features); err != nil {
			s.metrics.PredictErrors.Inc(1)
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	records := make([]*domain.PredictionRecord, 0, len(batch))
	for _, features := range batch {
		record, err := s.Predict(ctx, features)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *PredictionService) Get(ctx context.Context, id uuid.UUID) (*domain.PredictionRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PredictionService) List(ctx context.Context, filter ports.ListFilter) ([]*domain.PredictionRecord, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

// RecordFeedback stores the observed outcome for a served prediction.
func (s *PredictionService) RecordFeedback(ctx context.Context, predictionID uuid.UUID, actual float64) (*domain.Feedback, error) {
	if math.IsNaN(actual) || math.IsInf(actual, 0) {
		return nil, domain.ErrInvalidActualValue
	}

	fb := &domain.Feedback{
		PredictionID: predictionID,
		Actual:       actual,
		CreatedAt:    time.Now(),
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, err
	}
	return fb, nil
}
