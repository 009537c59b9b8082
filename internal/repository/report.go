package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/community_alert_engine/internal/models"
	"github.com/shenikar/community_alert_engine/internal/service"
)

type ReportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) service.ReportRepository {
	return &ReportRepository{db: db}
}

// Upsert сохраняет сигнал; повторный сигнал того же пользователя по той же
// тревоге заменяет тип и причину вместо вставки дубликата
func (r *ReportRepository) Upsert(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (alert_id, reporter_id, type, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (alert_id, reporter_id) DO UPDATE SET
			type = EXCLUDED.type,
			reason = EXCLUDED.reason
		RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		report.AlertID,
		report.ReporterID,
		report.Type,
		report.Reason,
	).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert report: %w", err)
	}
	return nil
}

// ListByAlert возвращает все сигналы по тревоге
func (r *ReportRepository) ListByAlert(ctx context.Context, alertID uuid.UUID) ([]*models.Report, error) {
	query := `
		SELECT id, alert_id, reporter_id, type, reason, created_at
		FROM reports
		WHERE alert_id = $1
		ORDER BY created_at;
	`
	rows, err := r.db.Query(ctx, query, alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*models.Report, 0)
	for rows.Next() {
		report := &models.Report{}
		err := rows.Scan(
			&report.ID,
			&report.AlertID,
			&report.ReporterID,
			&report.Type,
			&report.Reason,
			&report.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reports iteration: %w", err)
	}
	return reports, nil
}

// CountByAlert возвращает общее число сигналов и число сигналов false_alarm
// одним запросом - ровно то, что нужно формуле рейтинга
func (r *ReportRepository) CountByAlert(ctx context.Context, alertID uuid.UUID) (int, int, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE type = 'false_alarm')
		FROM reports
		WHERE alert_id = $1;
	`
	var total, falseAlarm int
	if err := r.db.QueryRow(ctx, query, alertID).Scan(&total, &falseAlarm); err != nil {
		return 0, 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return total, falseAlarm, nil
}
