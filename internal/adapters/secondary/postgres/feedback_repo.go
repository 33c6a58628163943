package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"model-inference-service/internal/core/domain"
	ports "model-inference-service/internal/core/ports/output"
)

type feedbackRepo struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepository(pool *pgxpool.Pool) ports.FeedbackRepository {
	return &feedbackRepo{pool: pool}
}

func (r *feedbackRepo) Create(ctx context.Context, feedback *domain.Feedback) error {
	query := `
		INSERT INTO prediction_feedback (prediction_id, actual, created_at)
		VALUES ($1,$2,$3)
	`
	_, err := r.pool.Exec(ctx, query, feedback.PredictionID, feedback.Actual, feedback.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return domain.ErrFeedbackAlreadyRecorded
			case "23503":
				return domain.ErrPredictionNotFound
			}
		}
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

func (r *feedbackRepo) ListPairs(ctx context.Context, since time.Time) ([]domain.FeedbackPair, error) {
	query := `
		SELECT pl.predicted, f.actual
		FROM prediction_feedback f
		JOIN prediction_log pl ON pl.id = f.prediction_id
		WHERE f.created_at >= $1
		ORDER BY f.created_at
	`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list feedback pairs: %w", err)
	}
	defer rows.Close()

	var pairs []domain.FeedbackPair
	for rows.Next() {
		var pair domain.FeedbackPair
		if err := rows.Scan(&pair.Predicted, &pair.Actual); err != nil {
			return nil, fmt.Errorf("scan feedback pair: %w", err)
		}
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback rows: %w", err)
	}

	return pairs, nil
}
