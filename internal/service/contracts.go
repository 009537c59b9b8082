package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/community_alert_engine/internal/models"
)

//go:generate mockgen -source=contracts.go -destination=mocks/mock_contracts.go -package=mocks

// AlertRepository определяет контракт для работы с бд тревог
type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	UpdateStatus(ctx context.Context, alert *models.Alert) error
	UpdateScore(ctx context.Context, id uuid.UUID, score float64) error
	List(ctx context.Context, page, pageSize int, status models.AlertStatus, category models.AlertCategory) ([]*models.Alert, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Alert, error)
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]*models.Alert, error)
	GetAlertFromCache(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	SetAlertCache(ctx context.Context, alert *models.Alert) error
	InvalidateAlertCache(ctx context.Context, id uuid.UUID) error
}

// ReportRepository определяет контракт для работы с сигналами пользователей.
// Upsert обеспечивает уникальность пары (alert, reporter): повторный сигнал
// от того же пользователя заменяет предыдущий.
type ReportRepository interface {
	Upsert(ctx context.Context, report *models.Report) error
	ListByAlert(ctx context.Context, alertID uuid.UUID) ([]*models.Report, error)
	CountByAlert(ctx context.Context, alertID uuid.UUID) (total int, falseAlarm int, err error)
}

// HelpOfferRepository определяет контракт для предложений помощи,
// уникальных на пару (alert, helper)
type HelpOfferRepository interface {
	Upsert(ctx context.Context, offer *models.HelpOffer) error
	ListActiveByAlert(ctx context.Context, alertID uuid.UUID) ([]*models.HelpOffer, error)
	MarkAccepted(ctx context.Context, alertID, helperID uuid.UUID) error
}

// PreferenceRepository отдает настройки уведомлений получателей пачкой,
// чтобы рассылка не ходила в хранилище по одному пользователю
type PreferenceRepository interface {
	EnabledForCategory(ctx context.Context, category models.AlertCategory, userIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// LocationRepository отдает последнюю известную позицию пользователя;
// nil без ошибки означает, что позиция не сохранена
type LocationRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserLocation, error)
}

// NotificationLogRepository хранит факты доставки для идемпотентной повторной
// рассылки: пара (alert, status) не уведомляет одного получателя дважды
type NotificationLogRepository interface {
	NotifiedRecipients(ctx context.Context, alertID uuid.UUID, status models.AlertStatus) (map[uuid.UUID]bool, error)
	MarkNotified(ctx context.Context, alertID, recipientID uuid.UUID, status models.AlertStatus) error
}

// StatisticsRepository сохраняет сводки идемпотентно по ключу (bucket, start, end)
type StatisticsRepository interface {
	Upsert(ctx context.Context, stat *models.AggregatedStatistic) error
}

// GeoIndex - поиск кандидатов в радиусе с предвычисленной дистанцией
type GeoIndex interface {
	FindWithinRadius(ctx context.Context, centerLat, centerLon, radiusKm float64) ([]*models.CandidateUser, error)
}

// EventPublisher доставляет доменные события внешним потребителям.
// Ядро формирует события как данные; сбой публикации не откатывает операцию.
type EventPublisher interface {
	Publish(ctx context.Context, events ...models.DomainEvent) error
}

// IntentQueue принимает вычисленные намерения уведомлений для асинхронной доставки
type IntentQueue interface {
	Enqueue(ctx context.Context, intents []*models.NotificationIntent) error
}

// AlertService определяет контракт бизнес-логики управления тревогами
type AlertService interface {
	CreateAlert(ctx context.Context, alert *models.Alert) error
	GetAlert(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	ListAlerts(ctx context.Context, page, pageSize int, status models.AlertStatus, category models.AlertCategory) ([]*models.Alert, error)
	TransitionStatus(ctx context.Context, alertID uuid.UUID, target models.AlertStatus, actorID *uuid.UUID) (*models.Alert, error)
	SubmitReport(ctx context.Context, report *models.Report) (*models.Alert, error)
	SubmitHelpOffer(ctx context.Context, offer *models.HelpOffer) (*models.NotificationIntent, error)
	AcceptHelpOffer(ctx context.Context, alertID, helperID uuid.UUID) error
	AuthorTrust(ctx context.Context, authorID uuid.UUID) (*models.AuthorTrust, error)
}

// FanoutService вычисляет получателей и содержимое уведомлений по тревоге
type FanoutService interface {
	Fanout(ctx context.Context, alertID uuid.UUID) ([]*models.NotificationIntent, error)
}

// StatsService строит сводную статистику за период
type StatsService interface {
	Aggregate(ctx context.Context, bucket models.BucketType, start, end time.Time) (*models.AggregatedStatistic, error)
}
