package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"model-inference-service/internal/core/domain"
	ports "model-inference-service/internal/core/ports/output"
)

// MockPredictionLogRepo is a mock of PredictionLogRepository.
type MockPredictionLogRepo struct {
	mock.Mock
}

func (m *MockPredictionLogRepo) Create(ctx context.Context, record *domain.PredictionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPredictionLogRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PredictionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PredictionRecord), args.Error(1)
}

func (m *MockPredictionLogRepo) List(ctx context.Context, filter ports.ListFilter) ([]*domain.PredictionRecord, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.PredictionRecord), args.Int(1), args.Error(2)
}

// MockFeedbackRepo is a mock of FeedbackRepository.
type MockFeedbackRepo struct {
	mock.Mock
}

func (m *MockFeedbackRepo) Create(ctx context.Context, feedback *domain.Feedback) error {
	args := m.Called(ctx, feedback)
	return args.Error(0)
}

func (m *MockFeedbackRepo) ListPairs(ctx context.Context, since time.Time) ([]domain.FeedbackPair, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FeedbackPair), args.Error(1)
}

// MockDriftReportRepo is a mock of DriftReportRepository.
type MockDriftReportRepo struct {
	mock.Mock
}

func (m *MockDriftReportRepo) Create(ctx context.Context, report *domain.DriftReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockDriftReportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DriftReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DriftReport), args.Error(1)
}

func (m *MockDriftReportRepo) List(ctx context.Context, filter ports.DriftListFilter) ([]*domain.DriftReport, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.DriftReport), args.Int(1), args.Error(2)
}

// MockAlertPublisher is a mock of AlertPublisher.
type MockAlertPublisher struct {
	mock.Mock
}

func (m *MockAlertPublisher) PublishDriftAlert(ctx context.Context, report *domain.DriftReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockAlertPublisher) Close() {
	m.Called()
}

// MockPrometheusClient is a mock of PrometheusClient.
type MockPrometheusClient struct {
	mock.Mock
}

func (m *MockPrometheusClient) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockPrometheusClient) QueryLatencyP50(ctx context.Context, tr ports.TimeRange) ([]ports.DataPoint, error) {
	args := m.Called(ctx, tr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.DataPoint), args.Error(1)
}

func (m *MockPrometheusClient) QueryLatencyP99(ctx context.Context, tr ports.TimeRange) ([]ports.DataPoint, error) {
	args := m.Called(ctx, tr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.DataPoint), args.Error(1)
}

func (m *MockPrometheusClient) QueryRequestRate(ctx context.Context, tr ports.TimeRange) ([]ports.DataPoint, error) {
	args := m.Called(ctx, tr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.DataPoint), args.Error(1)
}

func (m *MockPrometheusClient) QueryErrorRate(ctx context.Context, tr ports.TimeRange) ([]ports.DataPoint, error) {
	args := m.Called(ctx, tr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.DataPoint), args.Error(1)
}
