package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"model-inference-service/internal/core/domain"
	ports "model-inference-service/internal/core/ports/output"
	"model-inference-service/internal/testutil"
)

func TestStatsService_GetServingStats(t *testing.T) {
	prom := new(testutil.MockPrometheusClient)
	points := []ports.DataPoint{{Timestamp: time.Now(), Value: 0.05}}
	prom.On("QueryLatencyP50", mock.Anything, mock.AnythingOfType("ports.TimeRange")).Return(points, nil)
	prom.On("QueryLatencyP99", mock.Anything, mock.AnythingOfType("ports.TimeRange")).Return(points, nil)
	prom.On("QueryRequestRate", mock.Anything, mock.AnythingOfType("ports.TimeRange")).Return(points, nil)
	prom.On("QueryErrorRate", mock.Anything, mock.AnythingOfType("ports.TimeRange")).Return(points, nil)

	svc := NewStatsService(prom)

	now := time.Now()
	stats, err := svc.GetServingStats(context.Background(), ServingStatsRequest{
		From: now.Add(-time.Hour),
		To:   now,
		Step: time.Minute,
	})
	assert.NoError(t, err)
	assert.Len(t, stats.LatencyP50, 1)
	assert.Len(t, stats.ErrorRate, 1)
	prom.AssertExpectations(t)
}

func TestStatsService_NoPrometheus(t *testing.T) {
	svc := NewStatsService(nil)

	_, err := svc.GetServingStats(context.Background(), ServingStatsRequest{
		From: time.Now().Add(-time.Hour),
		To:   time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrPrometheusNotAvailable)
}

func TestStatsService_InvalidRange(t *testing.T) {
	svc := NewStatsService(new(testutil.MockPrometheusClient))

	now := time.Now()
	_, err := svc.GetServingStats(context.Background(), ServingStatsRequest{From: now, To: now})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)

	_, err = svc.GetServingStats(context.Background(), ServingStatsRequest{From: now, To: now.Add(-time.Hour)})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}
