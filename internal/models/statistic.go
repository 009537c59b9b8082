package models

import "time"

// BucketType - гранулярность агрегации статистики
type BucketType string

const (
	BucketDaily   BucketType = "daily"
	BucketWeekly  BucketType = "weekly"
	BucketMonthly BucketType = "monthly"
)

// Valid проверяет тип бакета
func (b BucketType) Valid() bool {
	switch b {
	case BucketDaily, BucketWeekly, BucketMonthly:
		return true
	}
	return false
}

// AggregatedStatistic - сводка по тревогам за период.
// Пересчет с тем же ключом (bucket, start, end) перезаписывает запись.
type AggregatedStatistic struct {
	BucketType         BucketType            `json:"bucket_type"`
	PeriodStart        time.Time             `json:"period_start"`
	PeriodEnd          time.Time             `json:"period_end"`
	TotalCount         int                   `json:"total_count"`
	ResolvedCount      int                   `json:"resolved_count"`
	FalseAlarmCount    int                   `json:"false_alarm_count"`
	CategoryCounts     map[AlertCategory]int `json:"category_counts"`
	GeographyCounts    map[string]int        `json:"geography_counts"`
	AvgReliability     float64               `json:"avg_reliability"`
	AvgResolutionHours float64               `json:"avg_resolution_hours"`
	GeneratedAt        time.Time             `json:"generated_at"`
}

// AuthorTrust - производный рейтинг доверия автора, считается по запросу
// по всей истории его тревог и нигде не хранится.
type AuthorTrust struct {
	AlertCount       int     `json:"alert_count"`
	FalseAlarmRate   float64 `json:"false_alarm_rate"`
	ConfirmationRate float64 `json:"confirmation_rate"`
	Score            float64 `json:"score"`
}
