package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"model-inference-service/internal/core/domain"
	ports "model-inference-service/internal/core/ports/output"
)

type predictionLogRepo struct {
	pool *pgxpool.Pool
}

func NewPredictionLogRepository(pool *pgxpool.Pool) ports.PredictionLogRepository {
	return &predictionLogRepo{pool: pool}
}

func (r *predictionLogRepo) Create(ctx context.Context, record *domain.PredictionRecord) error {
	featuresJSON, err := json.Marshal(record.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}
	inputsJSON, err := json.Marshal(record.Inputs)
	if err != nil {
		return fmt.Errorf("marshal inputs: %w", err)
	}

	query := `
		INSERT INTO prediction_log
			(id, created_at, features, inputs, predicted, latency_ms, model_version)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err = r.pool.Exec(ctx, query,
		record.ID, record.CreatedAt, featuresJSON, inputsJSON,
		record.Predicted, record.LatencyMs, record.ModelVersion,
	)
	if err != nil {
		return fmt.Errorf("create prediction log: %w", err)
	}
	return nil
}

func (r *predictionLogRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PredictionRecord, error) {
	query := `
		SELECT id, created_at, features, inputs, predicted, latency_ms, model_version
		FROM prediction_log
		WHERE id = $1
	`
	record, err := scanPrediction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPredictionNotFound
		}
		return nil, fmt.Errorf("get prediction by id: %w", err)
	}
	return record, nil
}

func (r *predictionLogRepo) List(ctx context.Context, filter ports.ListFilter) ([]*domain.PredictionRecord, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if !filter.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argPos))
		args = append(args, filter.From)
		argPos++
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argPos))
		args = append(args, filter.To)
		argPos++
	}

	whereClause := "1=1"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM prediction_log WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count predictions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, created_at, features, inputs, predicted, latency_ms, model_version
		FROM prediction_log
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	var records []*domain.PredictionRecord
	for rows.Next() {
		record, err := scanPrediction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan prediction row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate prediction rows: %w", err)
	}

	return records, total, nil
}

func scanPrediction(row pgx.Row) (*domain.PredictionRecord, error) {
	var record domain.PredictionRecord
	var featuresJSON, inputsJSON []byte

	err := row.Scan(
		&record.ID, &record.CreatedAt, &featuresJSON, &inputsJSON,
		&record.Predicted, &record.LatencyMs, &record.ModelVersion,
	)
	if err != nil {
		return nil, err
	}

	if len(featuresJSON) > 0 {
		if err := json.Unmarshal(featuresJSON, &record.Features); err != nil {
			return nil, fmt.Errorf("unmarshal features: %w", err)
		}
	}
	if len(inputsJSON) > 0 {
		if err := json.Unmarshal(inputsJSON, &record.Inputs); err != nil {
			return nil, fmt.Errorf("unmarshal inputs: %w", err)
		}
	}
	return &record, nil
}
