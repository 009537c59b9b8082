package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/community_alert_engine/internal/models"
	"github.com/shenikar/community_alert_engine/internal/service"
)

type StatisticsRepository struct {
	db *pgxpool.Pool
}

func NewStatisticsRepository(db *pgxpool.Pool) service.StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// Upsert сохраняет сводку идемпотентно: ключ (bucket_type, period_start,
// period_end) перезаписывается, а не дублируется. Структурные разбивки
// хранятся одним jsonb-полем - их читает только слой отчетности.
func (r *StatisticsRepository) Upsert(ctx context.Context, stat *models.AggregatedStatistic) error {
	payload, err := json.Marshal(stat)
	if err != nil {
		return fmt.Errorf("failed to marshal statistic: %w", err)
	}

	query := `
		INSERT INTO alert_statistics (bucket_type, period_start, period_end, payload, generated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (bucket_type, period_start, period_end) DO UPDATE SET
			payload = EXCLUDED.payload,
			generated_at = EXCLUDED.generated_at;
	`
	if _, err := r.db.Exec(ctx, query,
		stat.BucketType,
		stat.PeriodStart,
		stat.PeriodEnd,
		payload,
		stat.GeneratedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert statistic: %w", err)
	}
	return nil
}
