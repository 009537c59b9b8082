package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/community_alert_engine/internal/models"
	"github.com/shenikar/community_alert_engine/internal/service"
)

const intentQueueKey = "notification_intents"

// RedisIntentQueue - очередь намерений уведомлений на списке Redis.
// Наполняется на границе HTTP/сервиса, вычисление рассылки остается чистым.
type RedisIntentQueue struct {
	redisClient *redis.Client
}

func NewRedisIntentQueue(client *redis.Client) service.IntentQueue {
	return &RedisIntentQueue{
		redisClient: client,
	}
}

// Enqueue помещает намерения в очередь доставки. Порядок сохраняется:
// ближние получатели уходят в доставку первыми.
func (q *RedisIntentQueue) Enqueue(ctx context.Context, intents []*models.NotificationIntent) error {
	for _, intent := range intents {
		payload, err := json.Marshal(intent)
		if err != nil {
			return fmt.Errorf("failed to marshal notification intent: %w", err)
		}

		if err := q.redisClient.LPush(ctx, intentQueueKey, payload).Err(); err != nil {
			return fmt.Errorf("failed to enqueue notification intent: %w", err)
		}
	}
	return nil
}
