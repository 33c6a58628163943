package services

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"model-inference-service/internal/core/domain"
)

// DriftMonitor runs both drift detectors on a fixed interval, the
// serving-time counterpart of the original scheduled monitoring job.
type DriftMonitor struct {
	drift    *DriftService
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewDriftMonitor(drift *DriftService, interval time.Duration) *DriftMonitor {
	return &DriftMonitor{
		drift:    drift,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (m *DriftMonitor) Start() {
	go m.run()
	log.Infof("drift monitor started (interval %s)", m.interval)
}

// Stop signals the loop and waits for the in-flight evaluation.
func (m *DriftMonitor) Stop() {
	close(m.stop)
	<-m.done
	log.Info("drift monitor stopped")
}

func (m *DriftMonitor) run() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.evaluate()
		}
	}
}

func (m *DriftMonitor) evaluate() {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()

	reports, skipped, err := m.drift.Evaluate(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrModelNotLoaded) {
			log.Debug("drift evaluation skipped: no model loaded")
			return
		}
		log.WithError(err).Error("drift evaluation failed")
		return
	}

	for _, kind := range skipped {
		log.Debugf("%s drift skipped: not enough samples", kind)
	}
	for _, report := range reports {
		log.WithFields(log.Fields{
			"kind":    report.Kind,
			"score":   report.Score,
			"drifted": report.Drifted,
			"samples": report.Samples,
		}).Info("drift evaluated")
	}
}
