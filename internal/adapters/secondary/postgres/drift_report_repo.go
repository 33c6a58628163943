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

type driftReportRepo struct {
	pool *pgxpool.Pool
}

func NewDriftReportRepository(pool *pgxpool.Pool) ports.DriftReportRepository {
	return &driftReportRepo{pool: pool}
}

func (r *driftReportRepo) Create(ctx context.Context, report *domain.DriftReport) error {
	detailJSON, err := json.Marshal(report.Detail)
	if err != nil {
		return fmt.Errorf("marshal drift detail: %w", err)
	}

	query := `
		INSERT INTO drift_report
			(id, created_at, kind, score, threshold, drifted,
			 window_start, window_end, samples, model_version, detail)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	_, err = r.pool.Exec(ctx, query,
		report.ID, report.CreatedAt, string(report.Kind),
		report.Score, report.Threshold, report.Drifted,
		report.WindowStart, report.WindowEnd, report.Samples,
		report.ModelVersion, detailJSON,
	)
	if err != nil {
		return fmt.Errorf("create drift report: %w", err)
	}
	return nil
}

func (r *driftReportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DriftReport, error) {
	query := `
		SELECT id, created_at, kind, score, threshold, drifted,
			   window_start, window_end, samples, model_version, detail
		FROM drift_report
		WHERE id = $1
	`
	report, err := scanDriftReport(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDriftReportNotFound
		}
		return nil, fmt.Errorf("get drift report by id: %w", err)
	}
	return report, nil
}

func (r *driftReportRepo) List(ctx context.Context, filter ports.DriftListFilter) ([]*domain.DriftReport, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if filter.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argPos))
		args = append(args, string(filter.Kind))
		argPos++
	}

	whereClause := "1=1"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM drift_report WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count drift reports: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, created_at, kind, score, threshold, drifted,
			   window_start, window_end, samples, model_version, detail
		FROM drift_report
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list drift reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.DriftReport
	for rows.Next() {
		report, err := scanDriftReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan drift report row: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate drift report rows: %w", err)
	}

	return reports, total, nil
}

func scanDriftReport(row pgx.Row) (*domain.DriftReport, error) {
	var report domain.DriftReport
	var kind string
	var detailJSON []byte

	err := row.Scan(
		&report.ID, &report.CreatedAt, &kind, &report.Score,
		&report.Threshold, &report.Drifted, &report.WindowStart,
		&report.WindowEnd, &report.Samples, &report.ModelVersion, &detailJSON,
	)
	if err != nil {
		return nil, err
	}
	report.Kind = domain.DriftKind(kind)

	if len(detailJSON) > 0 {
		if err := json.Unmarshal(detailJSON, &report.Detail); err != nil {
			return nil, fmt.Errorf("unmarshal drift detail: %w", err)
		}
	}
	return &report, nil
}
