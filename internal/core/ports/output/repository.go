package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"model-inference-service/internal/core/domain"
)

// ListFilter pages the prediction log, optionally bounded in time.
type ListFilter struct {
	Limit  int
	Offset int
	From   time.Time
	To     time.Time
}

// DriftListFilter pages drift reports, optionally by kind.
type DriftListFilter struct {
	Limit  int
	Offset int
	Kind   domain.DriftKind
}

type PredictionLogRepository interface {
	Create(ctx context.Context, record *domain.PredictionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PredictionRecord, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.PredictionRecord, int, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	// ListPairs returns prediction/actual pairs recorded since the
	// given time, for concept drift evaluation.
	ListPairs(ctx context.Context, since time.Time) ([]domain.FeedbackPair, error)
}

type DriftReportRepository interface {
	Create(ctx context.Context, report *domain.DriftReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DriftReport, error)
	List(ctx context.Context, filter DriftListFilter) ([]*domain.DriftReport, int, error)
}
