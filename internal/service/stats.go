package service

import (
	"context"
	"time"

	"github.com/shenikar/community_alert_engine/internal/models"
	"github.com/sirupsen/logrus"
)

// statsService строит сводки по тревогам за период.
// Агрегация идемпотентна: повторный вызов с тем же ключом (bucket, start, end)
// перезаписывает запись, а не дублирует ее.
type statsService struct {
	alerts AlertRepository
	stats  StatisticsRepository
	logger *logrus.Logger
}

func NewStatsService(alerts AlertRepository, stats StatisticsRepository, logger *logrus.Logger) StatsService {
	return &statsService{
		alerts: alerts,
		stats:  stats,
		logger: logger,
	}
}

// Aggregate считает сводку по тревогам, созданным в [start, end).
// Пустой период дает нулевую статистику, это не ошибка.
func (s *statsService) Aggregate(ctx context.Context, bucket models.BucketType, start, end time.Time) (*models.AggregatedStatistic, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "stats",
		"method":  "Aggregate",
		"bucket":  bucket,
		"start":   start,
		"end":     end,
	})
	log.Info("Aggregating alert statistics")

	if !bucket.Valid() {
		return nil, &ValidationError{Field: "bucket_type", Reason: "must be one of daily, weekly, monthly"}
	}
	if !end.After(start) {
		return nil, &ValidationError{Field: "period", Reason: "period end must be after period start"}
	}

	alerts, err := s.alerts.ListCreatedBetween(ctx, start, end)
	if err != nil {
		log.WithError(err).Error("Failed to list alerts for aggregation")
		return nil, repoErr("list alerts in range", err)
	}

	stat := &models.AggregatedStatistic{
		BucketType:      bucket,
		PeriodStart:     start,
		PeriodEnd:       end,
		CategoryCounts:  make(map[models.AlertCategory]int),
		GeographyCounts: make(map[string]int),
		GeneratedAt:     time.Now().UTC(),
	}

	var scoreSum float64
	var resolutionSum time.Duration
	var resolvedWithTimestamp int

	for _, a := range alerts {
		if err := ctx.Err(); err != nil {
			// Частичная сводка при отмене не сохраняется
			return nil, err
		}

		stat.TotalCount++
		stat.CategoryCounts[a.Category]++
		scoreSum += a.ReliabilityScore

		switch a.Status {
		case models.StatusResolved:
			stat.ResolvedCount++
			if a.ResolvedAt != nil {
				resolutionSum += a.ResolvedAt.Sub(a.CreatedAt)
				resolvedWithTimestamp++
			}
		case models.StatusFalseAlarm:
			stat.FalseAlarmCount++
		}

		area := a.Neighborhood
		if area == "" {
			area = a.City
		}
		if area == "" {
			area = "unknown"
		}
		stat.GeographyCounts[area]++
	}

	if stat.TotalCount > 0 {
		stat.AvgReliability = scoreSum / float64(stat.TotalCount)
	}
	if resolvedWithTimestamp > 0 {
		stat.AvgResolutionHours = resolutionSum.Hours() / float64(resolvedWithTimestamp)
	}

	if err := s.stats.Upsert(ctx, stat); err != nil {
		log.WithError(err).Error("Failed to persist aggregated statistic")
		return nil, repoErr("upsert statistic", err)
	}

	log.WithField("total", stat.TotalCount).Info("Statistics aggregated successfully")
	return stat, nil
}
