package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/community_alert_engine/internal/geo"
	"github.com/shenikar/community_alert_engine/internal/metrics"
	"github.com/shenikar/community_alert_engine/internal/models"
	"github.com/sirupsen/logrus"
)

// fanoutService вычисляет, кого и о чем уведомить по тревоге.
// Чистое вычисление с точки зрения ядра: результат - данные, их доставкой
// занимается внешний коллаборатор, ядро не блокируется на сетевом вводе-выводе.
type fanoutService struct {
	alerts     AlertRepository
	helpOffers HelpOfferRepository
	prefs      PreferenceRepository
	locations  LocationRepository
	notifLog   NotificationLogRepository
	index      GeoIndex
	logger     *logrus.Logger
}

func NewFanoutService(
	alerts AlertRepository,
	helpOffers HelpOfferRepository,
	prefs PreferenceRepository,
	locations LocationRepository,
	notifLog NotificationLogRepository,
	index GeoIndex,
	logger *logrus.Logger,
) FanoutService {
	return &fanoutService{
		alerts:     alerts,
		helpOffers: helpOffers,
		prefs:      prefs,
		locations:  locations,
		notifLog:   notifLog,
		index:      index,
		logger:     logger,
	}
}

// Fanout строит список намерений уведомлений для тревоги.
// Тревога без координат дает пустой результат, не ошибку. Автор никогда
// не попадает в получатели. Повторная рассылка для той же пары
// (тревога, статус) не дублирует уже доставленные уведомления.
func (s *fanoutService) Fanout(ctx context.Context, alertID uuid.UUID) ([]*models.NotificationIntent, error) {
	started := time.Now()
	defer func() {
		metrics.FanoutDuration.Observe(time.Since(started).Seconds())
	}()

	log := s.logger.WithFields(logrus.Fields{
		"service":  "fanout",
		"method":   "Fanout",
		"alert_id": alertID,
	})
	log.Info("Computing notification fan-out")

	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		log.WithError(err).Warn("Fan-out requested for a non-existent alert")
		return nil, err
	}

	if !alert.HasCoordinates() {
		log.Info("Alert has no coordinates, skipping proximity fan-out")
		return []*models.NotificationIntent{}, nil
	}

	radius := s.radiusFor(alert)
	candidates, err := s.index.FindWithinRadius(ctx, *alert.Latitude, *alert.Longitude, radius)
	if err != nil {
		log.WithError(err).Error("Geo index query failed")
		return nil, fmt.Errorf("fanout: geo query failed: %w", err)
	}

	kind := models.IntentNewAlert
	if alert.Status != models.StatusPending {
		kind = models.IntentStatusUpdate
	}

	// Смена статуса адресуется не только соседям по радиусу, но и всем,
	// кто предложил помощь по этой тревоге
	if kind == models.IntentStatusUpdate {
		candidates, err = s.appendHelpers(ctx, alert, candidates)
		if err != nil {
			return nil, err
		}
	}

	recipients := make([]*models.CandidateUser, 0, len(candidates))
	ids := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		if c.UserID == alert.AuthorID {
			continue
		}
		recipients = append(recipients, c)
		ids = append(ids, c.UserID)
	}
	if len(recipients) == 0 {
		return []*models.NotificationIntent{}, nil
	}

	enabled, err := s.prefs.EnabledForCategory(ctx, alert.Category, ids)
	if err != nil {
		log.WithError(err).Error("Failed to load notification preferences")
		return nil, repoErr("load preferences", err)
	}

	delivered, err := s.notifLog.NotifiedRecipients(ctx, alertID, alert.Status)
	if err != nil {
		log.WithError(err).Error("Failed to load notification log")
		return nil, repoErr("load notification log", err)
	}

	message := buildMessage(alert, kind)
	intents := make([]*models.NotificationIntent, 0, len(recipients))
	now := time.Now().UTC()
	for _, r := range recipients {
		if err := ctx.Err(); err != nil {
			// Частичный результат при отмене отбрасывается
			return nil, err
		}
		if !enabled[r.UserID] {
			continue
		}
		if delivered[r.UserID] {
			continue
		}
		intents = append(intents, &models.NotificationIntent{
			AlertID:     alert.ID,
			RecipientID: r.UserID,
			Kind:        kind,
			AlertStatus: alert.Status,
			DistanceKm:  r.DistanceKm,
			Urgent:      alert.IsUrgent(),
			Message:     message,
			CreatedAt:   now,
		})
	}

	sort.Slice(intents, func(i, j int) bool {
		if intents[i].DistanceKm != intents[j].DistanceKm {
			return intents[i].DistanceKm < intents[j].DistanceKm
		}
		return intents[i].RecipientID.String() < intents[j].RecipientID.String()
	})

	metrics.NotificationIntents.WithLabelValues(string(kind), strconv.FormatBool(alert.IsUrgent())).
		Add(float64(len(intents)))
	log.WithFields(logrus.Fields{
		"radius_km": radius,
		"intents":   len(intents),
	}).Info("Fan-out computed")
	return intents, nil
}

// radiusFor выбирает радиус рассылки. Расширенный радиус получают только
// срочные категории с рейтингом не ниже порога; тревога в false_alarm
// исключена из расширения навсегда.
func (s *fanoutService) radiusFor(alert *models.Alert) float64 {
	if alert.IsUrgent() && alert.IsReliable() && alert.Status != models.StatusFalseAlarm {
		return UrgentRadiusKm
	}
	return StandardRadiusKm
}

// appendHelpers добавляет к кандидатам помощников по тревоге, которых не нашел
// радиусный поиск. Дистанция считается по сохраненной позиции помощника,
// при ее отсутствии остается нулевой.
func (s *fanoutService) appendHelpers(ctx context.Context, alert *models.Alert, candidates []*models.CandidateUser) ([]*models.CandidateUser, error) {
	offers, err := s.helpOffers.ListActiveByAlert(ctx, alert.ID)
	if err != nil {
		return nil, repoErr("list help offers", err)
	}

	seen := make(map[uuid.UUID]bool, len(candidates))
	for _, c := range candidates {
		seen[c.UserID] = true
	}

	for _, offer := range offers {
		if seen[offer.HelperID] {
			continue
		}
		seen[offer.HelperID] = true

		helper := &models.CandidateUser{UserID: offer.HelperID}
		loc, err := s.locations.GetByUserID(ctx, offer.HelperID)
		if err != nil {
			return nil, repoErr("get helper location", err)
		}
		if loc != nil {
			if dist, derr := geo.DistanceKm(*alert.Latitude, *alert.Longitude, loc.Latitude, loc.Longitude); derr == nil {
				helper.Latitude = loc.Latitude
				helper.Longitude = loc.Longitude
				helper.DistanceKm = dist
			}
		}
		candidates = append(candidates, helper)
	}
	return candidates, nil
}

// buildMessage собирает человекочитаемый текст уведомления из категории,
// заголовка и района/города
func buildMessage(alert *models.Alert, kind models.IntentKind) string {
	area := alert.Neighborhood
	if area == "" {
		area = alert.City
	}

	switch kind {
	case models.IntentStatusUpdate:
		if area != "" {
			return fmt.Sprintf("%s: %q (%s) is now %s", alert.Category.DisplayName(), alert.Title, area, alert.Status)
		}
		return fmt.Sprintf("%s: %q is now %s", alert.Category.DisplayName(), alert.Title, alert.Status)
	default:
		if area != "" {
			return fmt.Sprintf("%s: %s (%s)", alert.Category.DisplayName(), alert.Title, area)
		}
		return fmt.Sprintf("%s: %s", alert.Category.DisplayName(), alert.Title)
	}
}
