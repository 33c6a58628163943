package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"model-inference-service/internal/core/domain"
	"model-inference-service/internal/telemetry"
	"model-inference-service/internal/testutil"
)

func TestDriftMonitor_StartStop(t *testing.T) {
	// No model loaded: every tick is a clean skip.
	svc := NewDriftService(&stubProvider{}, NewObservationWindow(time.Minute), nil, nil, nil, telemetry.New(), driftSettings())

	m := NewDriftMonitor(svc, 5*time.Millisecond)
	m.Start()
	time.Sleep(25 * time.Millisecond)
	m.Stop()
}

func TestDriftMonitor_Evaluates(t *testing.T) {
	reports := new(testutil.MockDriftReportRepo)
	reports.On("Create", mock.Anything, mock.AnythingOfType("*domain.DriftReport")).Return(nil)

	feedback := new(testutil.MockFeedbackRepo)
	feedback.On("ListPairs", mock.Anything, mock.AnythingOfType("time.Time")).Return([]domain.FeedbackPair{}, nil)

	window := NewObservationWindow(time.Minute)
	fillWindow(window, 0.5, 1.5, 2.5, 3.5)

	svc := NewDriftService(&stubProvider{p: driftPipeline()}, window, feedback, reports, nil, telemetry.New(), driftSettings())

	m := NewDriftMonitor(svc, 5*time.Millisecond)
	m.Start()
	time.Sleep(30 * time.Millisecond)
	m.Stop()

	reports.AssertCalled(t, "Create", mock.Anything, mock.AnythingOfType("*domain.DriftReport"))
	assert.True(t, len(reports.Calls) >= 1)
}
