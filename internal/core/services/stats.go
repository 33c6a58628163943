package services

import (
	"context"
	"time"

	"model-inference-service/internal/core/domain"
	ports "model-inference-service/internal/core/ports/output"
)

type ServingStatsRequest struct {
	From time.Time
	To   time.Time
	Step time.Duration
}

type ServingStats struct {
	LatencyP50  []ports.DataPoint `json:"latency_p50"`
	LatencyP99  []ports.DataPoint `json:"latency_p99"`
	RequestRate []ports.DataPoint `json:"request_rate"`
	ErrorRate   []ports.DataPoint `json:"error_rate"`
}

// StatsService answers serving-history questions from the Prometheus
// server that scrapes this service's /metrics endpoint.
type StatsService struct {
	prom ports.PrometheusClient
}

func NewStatsService(prom ports.PrometheusClient) *StatsService {
	return &StatsService{prom: prom}
}

func (s *StatsService) GetServingStats(ctx context.Context, req ServingStatsRequest) (*ServingStats, error) {
	if s.prom == nil {
		return nil, domain.ErrPrometheusNotAvailable
	}
	if !req.From.Before(req.To) {
		return nil, domain.ErrInvalidTimeRange
	}

	tr := ports.TimeRange{Start: req.From, End: req.To, Step: req.Step}

	p50, err := s.prom.QueryLatencyP50(ctx, tr)
	if err != nil {
		return nil, err
	}
	p99, err := s.prom.QueryLatencyP99(ctx, tr)
	if err != nil {
		return nil, err
	}
	rate, err := s.prom.QueryRequestRate(ctx, tr)
	if err != nil {
		return nil, err
	}
	errRate, err := s.prom.QueryErrorRate(ctx, tr)
	if err != nil {
		return nil, err
	}

	return &ServingStats{
		LatencyP50:  p50,
		LatencyP99:  p99,
		RequestRate: rate,
		ErrorRate:   errRate,
	}, nil
}
