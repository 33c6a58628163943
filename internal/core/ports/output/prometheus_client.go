package ports

import (
	"context"
	"time"
)

type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

type TimeRange struct {
	Start time.Time
	End   time.Time
	Step  time.Duration
}

// PrometheusClient reads back the serving metrics this service exports,
// from a Prometheus server that scrapes /metrics.
type PrometheusClient interface {
	IsAvailable() bool
	QueryLatencyP50(ctx context.Context, tr TimeRange) ([]DataPoint, error)
	QueryLatencyP99(ctx context.Context, tr TimeRange) ([]DataPoint, error)
	QueryRequestRate(ctx context.Context, tr TimeRange) ([]DataPoint, error)
	QueryErrorRate(ctx context.Context, tr TimeRange) ([]DataPoint, error)
}
