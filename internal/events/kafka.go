package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/shenikar/community_alert_engine/internal/models"
)

// KafkaPublisher пишет доменные события жизненного цикла тревог в Kafka-топик
// для внешних потребителей (статистика, аудит). Ключ сообщения - id тревоги,
// поэтому события одной тревоги попадают в одну партицию и сохраняют порядок.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

// Publish отправляет пачку событий одним вызовом
func (p *KafkaPublisher) Publish(ctx context.Context, events ...models.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal domain event: %w", err)
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(event.AlertID.String()),
			Value: payload,
		})
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("failed to publish domain events: %w", err)
	}
	return nil
}

// Close закрывает врайтер
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
