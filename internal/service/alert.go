package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/community_alert_engine/internal/geo"
	"github.com/shenikar/community_alert_engine/internal/metrics"
	"github.com/shenikar/community_alert_engine/internal/models"
	"github.com/sirupsen/logrus"
)

type alertService struct {
	alerts     AlertRepository
	reports    ReportRepository
	helpOffers HelpOfferRepository
	scorer     *Scorer
	publisher  EventPublisher
	locks      *keyedMutex
	logger     *logrus.Logger
}

// NewAlertService собирает сервис тревог. publisher может быть nil -
// тогда доменные события никуда не отправляются.
func NewAlertService(
	alerts AlertRepository,
	reports ReportRepository,
	helpOffers HelpOfferRepository,
	scorer *Scorer,
	publisher EventPublisher,
	logger *logrus.Logger,
) AlertService {
	return &alertService{
		alerts:     alerts,
		reports:    reports,
		helpOffers: helpOffers,
		scorer:     scorer,
		publisher:  publisher,
		locks:      newKeyedMutex(),
		logger:     logger,
	}
}

// CreateAlert создает тревогу. Начальный статус всегда pending,
// начальный рейтинг достоверности 100.
func (s *alertService) CreateAlert(ctx context.Context, alert *models.Alert) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "CreateAlert",
		"category": alert.Category,
	})
	log.Info("Attempting to create a new alert")

	if !alert.Category.Valid() {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", alert.Category)}
	}
	if strings.TrimSpace(alert.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if alert.AuthorID == uuid.Nil {
		return &ValidationError{Field: "author_id", Reason: "must not be empty"}
	}
	// Координаты либо обе, либо ни одной
	if (alert.Latitude == nil) != (alert.Longitude == nil) {
		return &ValidationError{Field: "coordinates", Reason: "latitude and longitude must be provided together"}
	}
	if alert.HasCoordinates() {
		if err := geo.ValidateCoordinate(*alert.Latitude, *alert.Longitude); err != nil {
			return &ValidationError{Field: "coordinates", Reason: err.Error()}
		}
	}

	alert.Status = models.StatusPending
	alert.ReliabilityScore = 100.0

	if err := s.alerts.Create(ctx, alert); err != nil {
		log.WithError(err).Error("Failed to create alert in repository")
		return repoErr("create alert", err)
	}

	metrics.AlertsCreated.WithLabelValues(string(alert.Category)).Inc()
	s.publish(ctx, models.DomainEvent{
		Type:       models.EventAlertCreated,
		AlertID:    alert.ID,
		ActorID:    &alert.AuthorID,
		OccurredAt: time.Now().UTC(),
	})

	log.WithField("alert_id", alert.ID).Info("Alert created successfully")
	return nil
}

// GetAlert получает тревогу по ID через кеш
func (s *alertService) GetAlert(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "GetAlert",
		"alert_id": id,
	})

	cached, err := s.alerts.GetAlertFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Alert cache lookup failed, falling back to database")
	}
	if cached != nil {
		return cached, nil
	}

	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get alert from repository")
		return nil, err
	}

	if err := s.alerts.SetAlertCache(ctx, alert); err != nil {
		log.WithError(err).Warn("Failed to cache alert")
	}
	return alert, nil
}

// ListAlerts возвращает список тревог с пагинацией и необязательными фильтрами
func (s *alertService) ListAlerts(ctx context.Context, page, pageSize int, status models.AlertStatus, category models.AlertCategory) ([]*models.Alert, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "alert",
		"method":    "ListAlerts",
		"page":      page,
		"page_size": pageSize,
	})

	alerts, err := s.alerts.List(ctx, page, pageSize, status, category)
	if err != nil {
		log.WithError(err).Error("Failed to list alerts from repository")
		return nil, repoErr("list alerts", err)
	}

	log.WithField("count", len(alerts)).Info("Alerts listed successfully")
	return alerts, nil
}

// TransitionStatus переводит тревогу в новый статус по таблице переходов.
// Запрещенный переход возвращает InvalidTransitionError и не меняет тревогу.
func (s *alertService) TransitionStatus(ctx context.Context, alertID uuid.UUID, target models.AlertStatus, actorID *uuid.UUID) (*models.Alert, error) {
	s.locks.Lock(alertID)
	defer s.locks.Unlock(alertID)

	return s.transitionLocked(ctx, alertID, target, actorID)
}

// transitionLocked выполняет переход; вызывающий обязан держать замок тревоги
func (s *alertService) transitionLocked(ctx context.Context, alertID uuid.UUID, target models.AlertStatus, actorID *uuid.UUID) (*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "TransitionStatus",
		"alert_id": alertID,
		"target":   target,
	})
	log.Info("Attempting status transition")

	if !ValidStatus(target) {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", target)}
	}

	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		log.WithError(err).Warn("Attempted to transition a non-existent alert")
		return nil, err
	}

	if !CanTransition(alert.Status, target) {
		log.WithField("current", alert.Status).Warn("Transition rejected by lifecycle table")
		return nil, &InvalidTransitionError{AlertID: alertID, From: alert.Status, To: target}
	}

	from := alert.Status
	alert.Status = target
	now := time.Now().UTC()
	alert.UpdatedAt = now
	if target == models.StatusResolved {
		alert.ResolvedAt = &now
		alert.ResolvedBy = actorID
	}

	if err := s.alerts.UpdateStatus(ctx, alert); err != nil {
		log.WithError(err).Error("Failed to persist status transition")
		return nil, repoErr("update status", err)
	}
	if err := s.alerts.InvalidateAlertCache(ctx, alertID); err != nil {
		log.WithError(err).Warn("Failed to invalidate alert cache after transition")
	}

	metrics.StatusTransitions.WithLabelValues(string(from), string(target)).Inc()
	s.publish(ctx, models.NewStatusChangedEvent(alertID, from, target, actorID))

	log.WithField("from", from).Info("Status transition applied")
	return alert, nil
}

// SubmitReport принимает сигнал о достоверности тревоги, пересчитывает рейтинг
// и при падении ниже порога автоматически демотирует тревогу в false_alarm.
// Вся цепочка сигнал -> пересчет -> переход выполняется под замком тревоги,
// поэтому сигналы для одной тревоги применяются строго по порядку поступления.
func (s *alertService) SubmitReport(ctx context.Context, report *models.Report) (*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "alert",
		"method":      "SubmitReport",
		"alert_id":    report.AlertID,
		"report_type": report.Type,
	})
	log.Info("Submitting veracity report")

	if !report.Type.Valid() {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown report type %q", report.Type)}
	}
	if report.ReporterID == uuid.Nil {
		return nil, &ValidationError{Field: "reporter_id", Reason: "must not be empty"}
	}

	s.locks.Lock(report.AlertID)
	defer s.locks.Unlock(report.AlertID)

	alert, err := s.alerts.GetByID(ctx, report.AlertID)
	if err != nil {
		log.WithError(err).Warn("Report submitted for a non-existent alert")
		return nil, err
	}

	if err := s.reports.Upsert(ctx, report); err != nil {
		log.WithError(err).Error("Failed to upsert report")
		return nil, repoErr("upsert report", err)
	}
	metrics.ReportsSubmitted.WithLabelValues(string(report.Type)).Inc()

	score, err := s.scorer.Recompute(ctx, report.AlertID)
	if err != nil {
		log.WithError(err).Error("Failed to recompute reliability score")
		return nil, err
	}
	alert.ReliabilityScore = score

	s.publish(ctx,
		models.DomainEvent{
			Type:       models.EventReportSubmitted,
			AlertID:    report.AlertID,
			ActorID:    &report.ReporterID,
			OccurredAt: time.Now().UTC(),
		},
		models.DomainEvent{
			Type:       models.EventScoreRecomputed,
			AlertID:    report.AlertID,
			Score:      &score,
			OccurredAt: time.Now().UTC(),
		},
	)

	// Автодемоция: упавший ниже порога рейтинг переводит тревогу в false_alarm,
	// но только пока она в pending или confirmed - дальше решает человек
	autoDemotable := alert.Status == models.StatusPending || alert.Status == models.StatusConfirmed
	if !IsReliable(score) && autoDemotable {
		demoted, err := s.transitionLocked(ctx, report.AlertID, models.StatusFalseAlarm, nil)
		if err != nil {
			log.WithError(err).Error("Failed to auto-demote unreliable alert")
			return nil, err
		}
		log.WithField("score", score).Info("Alert auto-demoted to false_alarm")
		return demoted, nil
	}

	log.WithField("score", score).Info("Report applied")
	return alert, nil
}

// SubmitHelpOffer сохраняет предложение помощи и возвращает намерение
// уведомить автора тревоги о новом предложении
func (s *alertService) SubmitHelpOffer(ctx context.Context, offer *models.HelpOffer) (*models.NotificationIntent, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "SubmitHelpOffer",
		"alert_id": offer.AlertID,
	})
	log.Info("Submitting help offer")

	if offer.HelperID == uuid.Nil {
		return nil, &ValidationError{Field: "helper_id", Reason: "must not be empty"}
	}

	alert, err := s.alerts.GetByID(ctx, offer.AlertID)
	if err != nil {
		log.WithError(err).Warn("Help offer submitted for a non-existent alert")
		return nil, err
	}

	offer.Active = true
	if err := s.helpOffers.Upsert(ctx, offer); err != nil {
		log.WithError(err).Error("Failed to upsert help offer")
		return nil, repoErr("upsert help offer", err)
	}

	s.publish(ctx, models.DomainEvent{
		Type:       models.EventHelpOffered,
		AlertID:    offer.AlertID,
		ActorID:    &offer.HelperID,
		OccurredAt: time.Now().UTC(),
	})

	// Автор своей тревоги о предложении помощи уведомляется всегда,
	// кроме случая, когда он предлагает помощь сам себе
	if offer.HelperID == alert.AuthorID {
		return nil, nil
	}

	intent := &models.NotificationIntent{
		AlertID:     alert.ID,
		RecipientID: alert.AuthorID,
		Kind:        models.IntentHelpOffer,
		AlertStatus: alert.Status,
		Urgent:      alert.IsUrgent(),
		Message:     fmt.Sprintf("Someone offered to help with %q", alert.Title),
		CreatedAt:   time.Now().UTC(),
	}
	metrics.NotificationIntents.WithLabelValues(string(intent.Kind), strconv.FormatBool(intent.Urgent)).Inc()
	return intent, nil
}

// AcceptHelpOffer отмечает предложение принятым
func (s *alertService) AcceptHelpOffer(ctx context.Context, alertID, helperID uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "AcceptHelpOffer",
		"alert_id": alertID,
	})

	if err := s.helpOffers.MarkAccepted(ctx, alertID, helperID); err != nil {
		log.WithError(err).Error("Failed to accept help offer")
		return err
	}
	log.Info("Help offer accepted")
	return nil
}

// AuthorTrust пересчитывает производный рейтинг автора по его истории тревог
func (s *alertService) AuthorTrust(ctx context.Context, authorID uuid.UUID) (*models.AuthorTrust, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "alert",
		"method":    "AuthorTrust",
		"author_id": authorID,
	})

	alerts, err := s.alerts.ListByAuthor(ctx, authorID)
	if err != nil {
		log.WithError(err).Error("Failed to list author alerts")
		return nil, repoErr("list author alerts", err)
	}

	trust := ComputeAuthorTrust(alerts)
	log.WithField("score", trust.Score).Info("Author trust computed")
	return trust, nil
}

// publish отправляет события; сбой публикации логируется и не откатывает операцию
func (s *alertService) publish(ctx context.Context, events ...models.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.WithError(err).Warn("Failed to publish domain events")
	}
}
