// Package telemetry owns the service metric registry and its
// Prometheus text exposition.
package telemetry

import (
	"context"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// Registry metric names. Dots become underscores in the exposition;
// counters additionally get a _total suffix and timers _seconds.
const (
	MetricPredictRequests = "predict.requests"
	MetricPredictErrors   = "predict.errors"
	MetricPredictLatency  = "predict.latency"
	MetricModelReloads    = "model.reloads"
	MetricDataDrift       = "drift.data.score"
	MetricConceptDrift    = "drift.concept.score"
)

type Metrics struct {
	Registry gometrics.Registry

	PredictRequests gometrics.Counter
	PredictErrors   gometrics.Counter
	PredictLatency  gometrics.Timer
	ModelReloads    gometrics.Counter
	DataDrift       gometrics.GaugeFloat64
	ConceptDrift    gometrics.GaugeFloat64
}

func New() *Metrics {
	r := gometrics.NewRegistry()
	return &Metrics{
		Registry:        r,
		PredictRequests: gometrics.GetOrRegisterCounter(MetricPredictRequests, r),
		PredictErrors:   gometrics.GetOrRegisterCounter(MetricPredictErrors, r),
		PredictLatency:  gometrics.GetOrRegisterTimer(MetricPredictLatency, r),
		ModelReloads:    gometrics.GetOrRegisterCounter(MetricModelReloads, r),
		DataDrift:       gometrics.GetOrRegisterGaugeFloat64(MetricDataDrift, r),
		ConceptDrift:    gometrics.GetOrRegisterGaugeFloat64(MetricConceptDrift, r),
	}
}

// CaptureRuntime registers the Go runtime memstats gauges and samples
// them on the given interval until the context is cancelled.
func (m *Metrics) CaptureRuntime(ctx context.Context, interval time.Duration) {
	gometrics.RegisterRuntimeMemStats(m.Registry)
	gometrics.CaptureRuntimeMemStatsOnce(m.Registry)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gometrics.CaptureRuntimeMemStatsOnce(m.Registry)
		}
	}
}
