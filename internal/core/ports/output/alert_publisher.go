package ports

import (
	"context"

	"model-inference-service/internal/core/domain"
)

// AlertPublisher notifies external consumers about drifted reports.
type AlertPublisher interface {
	PublishDriftAlert(ctx context.Context, report *domain.DriftReport) error
	Close()
}
