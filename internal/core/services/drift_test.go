package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"model-inference-service/internal/core/domain"
	ports "model-inference-service/internal/core/ports/output"
	"model-inference-service/internal/telemetry"
	"model-inference-service/internal/testutil"
)

type stubProvider struct {
	p *domain.Pipeline
}

func (s *stubProvider) Pipeline() *domain.Pipeline { return s.p }

func driftPipeline() *domain.Pipeline {
	return &domain.Pipeline{
		Version: "v-drift",
		Schema: domain.Schema{
			Features: []domain.Feature{{Name: "x", Kind: domain.FeatureNumeric}},
			Target:   "y",
		},
		Scaler:  domain.StandardScaler{Means: []float64{0}, Stds: []float64{1}},
		Model:   domain.LinearModel{Coefficients: []float64{1}},
		Metrics: domain.TrainingMetrics{RMSE: 100},
		Reference: domain.ReferenceStats{Features: map[string]domain.FeatureReference{
			"x": {
				Edges:    []float64{1, 2, 3},
				Expected: []float64{0.25, 0.25, 0.25, 0.25},
				Median:   2,
			},
		}},
	}
}

func driftSettings() DriftSettings {
	return DriftSettings{
		PSIThreshold:     0.2,
		ConceptThreshold: 0.25,
		MinSamples:       4,
		Window:           15 * time.Minute,
	}
}

func fillWindow(w *ObservationWindow, values ...float64) {
	for _, v := range values {
		w.Add(uuid.New(), []float64{v})
	}
}

func TestDriftService_EvaluateData_NoDrift(t *testing.T) {
	reports := new(testutil.MockDriftReportRepo)
	reports.On("Create", mock.Anything, mock.AnythingOfType("*domain.DriftReport")).Return(nil)

	window := NewObservationWindow(time.Minute)
	// One value per reference bin matches the expected proportions.
	fillWindow(window, 0.5, 1.5, 2.5, 3.5)

	svc := NewDriftService(&stubProvider{p: driftPipeline()}, window, nil, reports, nil, telemetry.New(), driftSettings())

	report, err := svc.EvaluateData(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, domain.DriftKindData, report.Kind)
	assert.False(t, report.Drifted)
	assert.InDelta(t, 0, report.Score, 0.01)
	assert.Equal(t, 4, report.Samples)
	assert.Equal(t, "v-drift", report.ModelVersion)
	reports.AssertExpectations(t)
}

func TestDriftService_EvaluateData_Drifted_PublishesAlert(t *testing.T) {
	reports := new(testutil.MockDriftReportRepo)
	reports.On("Create", mock.Anything, mock.AnythingOfType("*domain.DriftReport")).Return(nil)

	alerts := new(testutil.MockAlertPublisher)
	alerts.On("PublishDriftAlert", mock.Anything, mock.AnythingOfType("*domain.DriftReport")).Return(nil)

	window := NewObservationWindow(time.Minute)
	// Everything lands in the last bin; training expected 25% there.
	fillWindow(window, 10, 11, 12, 13)

	svc := NewDriftService(&stubProvider{p: driftPipeline()}, window, nil, reports, alerts, telemetry.New(), driftSettings())

	report, err := svc.EvaluateData(context.Background())
	assert.NoError(t, err)
	assert.True(t, report.Drifted)
	assert.Greater(t, report.Score, 0.2)
	assert.Len(t, report.Detail.Features, 1)
	assert.True(t, report.Detail.Features[0].Drifted)
	alerts.AssertExpectations(t)
}

func TestDriftService_EvaluateData_NotEnoughSamples(t *testing.T) {
	window := NewObservationWindow(time.Minute)
	fillWindow(window, 1)

	svc := NewDriftService(&stubProvider{p: driftPipeline()}, window, nil, nil, nil, telemetry.New(), driftSettings())

	_, err := svc.EvaluateData(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotEnoughSamples)
}

func TestDriftService_EvaluateData_NoModel(t *testing.T) {
	svc := NewDriftService(&stubProvider{}, NewObservationWindow(time.Minute), nil, nil, nil, telemetry.New(), driftSettings())

	_, err := svc.EvaluateData(context.Background())
	assert.ErrorIs(t, err, domain.ErrModelNotLoaded)
}

func TestDriftService_EvaluateConcept_Drifted(t *testing.T) {
	reports := new(testutil.MockDriftReportRepo)
	reports.On("Create", mock.Anything, mock.AnythingOfType("*domain.DriftReport")).Return(nil)

	feedback := new(testutil.MockFeedbackRepo)
	// Every prediction is off by 200 against a baseline RMSE of 100.
	pairs := make([]domain.FeedbackPair, 6)
	for i := range pairs {
		pairs[i] = domain.FeedbackPair{Predicted: 1000, Actual: 1200}
	}
	feedback.On("ListPairs", mock.Anything, mock.AnythingOfType("time.Time")).Return(pairs, nil)

	svc := NewDriftService(&stubProvider{p: driftPipeline()}, NewObservationWindow(time.Minute), feedback, reports, nil, telemetry.New(), driftSettings())

	report, err := svc.EvaluateConcept(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, domain.DriftKindConcept, report.Kind)
	assert.True(t, report.Drifted)
	assert.InDelta(t, 1.0, report.Score, 1e-9)
	assert.InDelta(t, 200, report.Detail.RMSE, 1e-9)
	assert.InDelta(t, 100, report.Detail.BaselineRMSE, 1e-9)
}

func TestDriftService_EvaluateConcept_WithinBaseline(t *testing.T) {
	reports := new(testutil.MockDriftReportRepo)
	reports.On("Create", mock.Anything, mock.AnythingOfType("*domain.DriftReport")).Return(nil)

	feedback := new(testutil.MockFeedbackRepo)
	pairs := make([]domain.FeedbackPair, 6)
	for i := range pairs {
		pairs[i] = domain.FeedbackPair{Predicted: float64(1000 + i), Actual: float64(1000 + i + 10)}
	}
	feedback.On("ListPairs", mock.Anything, mock.AnythingOfType("time.Time")).Return(pairs, nil)

	svc := NewDriftService(&stubProvider{p: driftPipeline()}, NewObservationWindow(time.Minute), feedback, reports, nil, telemetry.New(), driftSettings())

	report, err := svc.EvaluateConcept(context.Background())
	assert.NoError(t, err)
	assert.False(t, report.Drifted)
	assert.Equal(t, 0.0, report.Score)
}

func TestDriftService_Evaluate_SkipsStarvedDetectors(t *testing.T) {
	feedback := new(testutil.MockFeedbackRepo)
	feedback.On("ListPairs", mock.Anything, mock.AnythingOfType("time.Time")).Return([]domain.FeedbackPair{}, nil)

	svc := NewDriftService(&stubProvider{p: driftPipeline()}, NewObservationWindow(time.Minute), feedback, nil, nil, telemetry.New(), driftSettings())

	reports, skipped, err := svc.Evaluate(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, reports)
	assert.ElementsMatch(t, []domain.DriftKind{domain.DriftKindData, domain.DriftKindConcept}, skipped)
}

func TestDriftService_ListReports_DefaultLimit(t *testing.T) {
	reports := new(testutil.MockDriftReportRepo)
	expectedFilter := ports.DriftListFilter{Limit: 20}
	reports.On("List", mock.Anything, expectedFilter).Return([]*domain.DriftReport{}, 0, nil)

	svc := NewDriftService(&stubProvider{}, nil, nil, reports, nil, telemetry.New(), driftSettings())

	_, _, err := svc.ListReports(context.Background(), ports.DriftListFilter{})
	assert.NoError(t, err)
	reports.AssertExpectations(t)
}

func TestPSIScore(t *testing.T) {
	edges := []float64{1, 2, 3}
	expected := []float64{0.25, 0.25, 0.25, 0.25}

	// Matching distribution scores near zero.
	matched := psiScore([]float64{0.5, 1.5, 2.5, 3.5}, edges, expected)
	assert.InDelta(t, 0, matched, 0.01)

	// Fully shifted distribution scores high.
	shifted := psiScore([]float64{10, 11, 12, 13}, edges, expected)
	assert.Greater(t, shifted, 1.0)
}

func TestBinIndex(t *testing.T) {
	edges := []float64{1, 2, 3}
	assert.Equal(t, 0, binIndex(0.5, edges))
	assert.Equal(t, 0, binIndex(1, edges))
	assert.Equal(t, 1, binIndex(1.5, edges))
	assert.Equal(t, 3, binIndex(99, edges))
}
