package services

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"model-inference-service/internal/artifact"
	"model-inference-service/internal/core/domain"
	ports "model-inference-service/internal/core/ports/output"
	"model-inference-service/internal/telemetry"
	"model-inference-service/internal/testutil"
)

// trainArtifact fits a real pipeline and writes it where the service
// under test loads artifacts from.
func trainArtifact(t *testing.T) string {
	t.Helper()

	trainer := NewTrainer(gradeSchema(), 0.001)
	a, err := trainer.Fit(syntheticRows(40))
	assert.NoError(t, err)

	path := filepath.Join(t.TempDir(), "pipeline.json")
	assert.NoError(t, artifact.Save(path, a))
	return path
}

func newTestPredictionService(t *testing.T, repo ports.PredictionLogRepository, feedback ports.FeedbackRepository) (*PredictionService, *ObservationWindow) {
	t.Helper()

	window := NewObservationWindow(time.Minute)
	svc := NewPredictionService(trainArtifact(t), repo, feedback, window, telemetry.New())
	assert.NoError(t, svc.LoadModel())
	return svc, window
}

func TestPredictionService_Predict(t *testing.T) {
	repo := new(testutil.MockPredictionLogRepo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.PredictionRecord")).Return(nil)

	svc, window := newTestPredictionService(t, repo, nil)

	record, err := svc.Predict(context.Background(), map[string]interface{}{
		"size":  5.0,
		"grade": "high",
	})
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.InDelta(t, 200, record.Predicted, 2.0)
	assert.Equal(t, []float64{5, 1}, record.Inputs)
	assert.NotEmpty(t, record.ModelVersion)
	assert.Equal(t, 1, window.Len())
	repo.AssertExpectations(t)
}

func TestPredictionService_Predict_NotLoaded(t *testing.T) {
	svc := NewPredictionService(filepath.Join(t.TempDir(), "missing.json"), nil, nil, NewObservationWindow(time.Minute), telemetry.New())

	assert.Error(t, svc.LoadModel())
	assert.False(t, svc.Loaded())

	_, err := svc.Predict(context.Background(), map[string]interface{}{"size": 1.0, "grade": "low"})
	assert.ErrorIs(t, err, domain.ErrModelNotLoaded)
}

func TestPredictionService_Predict_BadFeatures(t *testing.T) {
	repo := new(testutil.MockPredictionLogRepo)
	svc, window := newTestPredictionService(t, repo, nil)

	_, err := svc.Predict(context.Background(), map[string]interface{}{"size": 1.0})
	assert.ErrorIs(t, err, domain.ErrMissingFeature)
	assert.Equal(t, 0, window.Len())
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPredictionService_PredictBatch(t *testing.T) {
	repo := new(testutil.MockPredictionLogRepo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.PredictionRecord")).Return(nil)

	svc, _ := newTestPredictionService(t, repo, nil)

	records, err := svc.PredictBatch(context.Background(), []map[string]interface{}{
		{"size": 1.0, "grade": "low"},
		{"size": 2.0, "grade": "high"},
	})
	assert.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestPredictionService_PredictBatch_BadRowLeavesNoState(t *testing.T) {
	repo := new(testutil.MockPredictionLogRepo)
	svc, window := newTestPredictionService(t, repo, nil)

	_, err := svc.PredictBatch(context.Background(), []map[string]interface{}{
		{"size": 1.0, "grade": "low"},
		{"size": 2.0, "grade": "mythic"},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
	assert.ErrorContains(t, err, "row 2")
	assert.Equal(t, 0, window.Len())
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPredictionService_PredictBatch_Empty(t *testing.T) {
	svc, _ := newTestPredictionService(t, new(testutil.MockPredictionLogRepo), nil)

	_, err := svc.PredictBatch(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)
}

func TestPredictionService_Info(t *testing.T) {
	svc, _ := newTestPredictionService(t, new(testutil.MockPredictionLogRepo), nil)

	info, err := svc.Info()
	assert.NoError(t, err)
	assert.NotEmpty(t, info.ModelVersion)
	assert.Equal(t, "y", info.Target)
	assert.Len(t, info.Features, 2)
	assert.Equal(t, 40, info.Metrics.Samples)
}

func TestPredictionService_List_DefaultLimit(t *testing.T) {
	repo := new(testutil.MockPredictionLogRepo)
	expectedFilter := ports.ListFilter{Limit: 20}
	repo.On("List", mock.Anything, expectedFilter).Return([]*domain.PredictionRecord{}, 0, nil)

	svc, _ := newTestPredictionService(t, repo, nil)

	_, _, err := svc.List(context.Background(), ports.ListFilter{})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPredictionService_RecordFeedback(t *testing.T) {
	feedback := new(testutil.MockFeedbackRepo)
	feedback.On("Create", mock.Anything, mock.AnythingOfType("*domain.Feedback")).Return(nil)

	svc, _ := newTestPredictionService(t, new(testutil.MockPredictionLogRepo), feedback)

	id := uuid.New()
	fb, err := svc.RecordFeedback(context.Background(), id, 1234.5)
	assert.NoError(t, err)
	assert.Equal(t, id, fb.PredictionID)
	assert.Equal(t, 1234.5, fb.Actual)
}

func TestPredictionService_RecordFeedback_InvalidActual(t *testing.T) {
	svc, _ := newTestPredictionService(t, new(testutil.MockPredictionLogRepo), new(testutil.MockFeedbackRepo))

	_, err := svc.RecordFeedback(context.Background(), uuid.New(), math.NaN())
	assert.ErrorIs(t, err, domain.ErrInvalidActualValue)

	_, err = svc.RecordFeedback(context.Background(), uuid.New(), math.Inf(1))
	assert.ErrorIs(t, err, domain.ErrInvalidActualValue)
}

func TestPredictionService_Reload_SwapsVersion(t *testing.T) {
	repo := new(testutil.MockPredictionLogRepo)
	svc, _ := newTestPredictionService(t, repo, nil)

	first := svc.Pipeline().Version

	trainer := NewTrainer(gradeSchema(), 0.001)
	a, err := trainer.Fit(syntheticRows(40))
	assert.NoError(t, err)
	assert.NoError(t, artifact.Save(svc.artifactPath, a))

	assert.NoError(t, svc.LoadModel())
	assert.NotEqual(t, first, svc.Pipeline().Version)
}
