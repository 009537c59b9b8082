package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shenikar/community_alert_engine/internal/models"
	"github.com/sirupsen/logrus"
)

// Scorer пересчитывает рейтинг достоверности тревоги по накопленным сигналам.
// Формула намеренно простая и проверяемая: score = max(0, 100 - доля false_alarm
// в процентах). Пересчет идемпотентен - повторный вызов на тех же данных
// дает тот же результат.
type Scorer struct {
	alerts  AlertRepository
	reports ReportRepository
	logger  *logrus.Logger
}

func NewScorer(alerts AlertRepository, reports ReportRepository, logger *logrus.Logger) *Scorer {
	return &Scorer{
		alerts:  alerts,
		reports: reports,
		logger:  logger,
	}
}

// Recompute пересчитывает и сохраняет рейтинг тревоги.
// Ноль сигналов возвращает рейтинг к 100 (презумпция достоверности).
func (s *Scorer) Recompute(ctx context.Context, alertID uuid.UUID) (float64, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "reliability",
		"method":   "Recompute",
		"alert_id": alertID,
	})

	total, falseAlarm, err := s.reports.CountByAlert(ctx, alertID)
	if err != nil {
		log.WithError(err).Error("Failed to count reports")
		return 0, repoErr("count reports", err)
	}

	score := ComputeScore(total, falseAlarm)

	if err := s.alerts.UpdateScore(ctx, alertID, score); err != nil {
		log.WithError(err).Error("Failed to persist reliability score")
		return 0, repoErr("update score", err)
	}
	if err := s.alerts.InvalidateAlertCache(ctx, alertID); err != nil {
		log.WithError(err).Warn("Failed to invalidate alert cache after rescoring")
	}

	log.WithField("score", score).Info("Reliability score recomputed")
	return score, nil
}

// ComputeScore - чистая функция рейтинга: 0 <= score <= 100
func ComputeScore(total, falseAlarm int) float64 {
	if total <= 0 {
		return 100.0
	}
	falsePercentage := float64(falseAlarm) / float64(total) * 100.0
	score := 100.0 - falsePercentage
	if score < 0 {
		return 0
	}
	return score
}

// IsReliable - порог доверия, включительно на границе
func IsReliable(score float64) bool {
	return score >= models.ReliableScoreThreshold
}

// ComputeAuthorTrust - производный рейтинг автора по всей истории его тревог.
// Нигде не хранится и пересчитывается по запросу.
func ComputeAuthorTrust(alerts []*models.Alert) *models.AuthorTrust {
	trust := &models.AuthorTrust{AlertCount: len(alerts), Score: 100.0}
	if len(alerts) == 0 {
		return trust
	}

	var falseAlarms, confirmed int
	for _, a := range alerts {
		switch a.Status {
		case models.StatusFalseAlarm:
			falseAlarms++
		case models.StatusConfirmed, models.StatusInProgress, models.StatusResolved:
			confirmed++
		}
	}

	trust.FalseAlarmRate = float64(falseAlarms) / float64(len(alerts)) * 100.0
	trust.ConfirmationRate = float64(confirmed) / float64(len(alerts)) * 100.0

	base := 100.0 - trust.FalseAlarmRate
	if base < 0 {
		base = 0
	}
	score := base + trust.ConfirmationRate*0.2
	if score > 100 {
		score = 100
	}
	trust.Score = score
	return trust
}
