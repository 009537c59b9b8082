package dispatch

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/community_alert_engine/internal/config"
	"github.com/shenikar/community_alert_engine/internal/models"
	"github.com/shenikar/community_alert_engine/internal/service"
	"github.com/sirupsen/logrus"
)

// Worker снимает намерения уведомлений с очереди и доставляет их push-шлюзу.
// После успешной доставки отмечает получателя в журнале, чтобы повторная
// рассылка для той же пары (тревога, статус) его не дублировала.
type Worker struct {
	redisClient *redis.Client
	notifLog    service.NotificationLogRepository
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
}

func NewWorker(redisClient *redis.Client, notifLog service.NotificationLogRepository, logger *logrus.Logger, cfg *config.Config) *Worker {
	return &Worker{
		redisClient: redisClient,
		notifLog:    notifLog,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.PushTimeout,
		},
	}
}

// Start запускает горутину обработки очереди
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting notification dispatch worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping notification dispatch worker.")
				return
			default:
				// BRPop - блокирующее извлечение из правой части списка,
				// 0 означает бесконечное ожидание
				result, err := w.redisClient.BRPop(ctx, 0, intentQueueKey).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue
					}
					w.logger.WithError(err).Error("Failed to pop notification intent from Redis")
					time.Sleep(w.cfg.PushTimeout)
					continue
				}

				payload := result[1]
				var intent models.NotificationIntent
				if err := json.Unmarshal([]byte(payload), &intent); err != nil {
					w.logger.WithError(err).Error("Failed to unmarshal notification intent from Redis")
					continue
				}

				w.deliverIntent(ctx, intent, payload)
			}
		}
	}()
}

func (w *Worker) deliverIntent(ctx context.Context, intent models.NotificationIntent, rawPayload string) {
	log := w.logger.WithFields(logrus.Fields{
		"alert_id":     intent.AlertID,
		"recipient_id": intent.RecipientID,
		"kind":         intent.Kind,
	})
	log.Debug("Delivering notification intent...")

	if w.cfg.PushGatewayURL == "" {
		log.Warn("Push gateway URL is not configured. Skipping notification delivery.")
		return
	}

	maxRetries := w.cfg.PushMaxRetries
	baseDelay := w.cfg.PushBaseDelay

	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, "POST", w.cfg.PushGatewayURL, bytes.NewBufferString(rawPayload))
		if err != nil {
			log.WithError(err).Errorf("Failed to create push request. Retries left: %d", maxRetries-1-i)
			continue
		}

		req.Header.Set("Content-Type", "application/json")

		// HMAC подпись, если секрет задан
		if w.cfg.PushGatewaySecret != "" {
			signature := generateHMACSHA256(rawPayload, w.cfg.PushGatewaySecret)
			req.Header.Set("X-Notification-Signature", signature)
		}

		resp, err := w.httpClient.Do(req)
		if err != nil {
			log.WithError(err).Warnf("Failed to deliver notification. Retrying in %v. Retries left: %d", baseDelay, maxRetries-1-i)
			time.Sleep(baseDelay)
			baseDelay *= 2 // Экспоненциальная задержка
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			// Фиксация доставки делает повторную рассылку идемпотентной
			if err := w.notifLog.MarkNotified(ctx, intent.AlertID, intent.RecipientID, intent.AlertStatus); err != nil {
				log.WithError(err).Error("Delivered notification but failed to mark it in the log")
				return
			}
			log.Info("Notification delivered successfully.")
			return
		}

		log.Warnf("Notification delivery failed with status code %d. Retrying in %v. Retries left: %d", resp.StatusCode, baseDelay, maxRetries-1-i)
		time.Sleep(baseDelay)
		baseDelay *= 2 // Экспоненциальная задержка
	}

	log.Errorf("Failed to deliver notification after %d retries.", maxRetries)
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
