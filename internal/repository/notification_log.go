package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/community_alert_engine/internal/models"
	"github.com/shenikar/community_alert_engine/internal/service"
)

// NotificationLogRepository хранит факты доставки уведомлений.
// Запись на тройку (alert, recipient, status) делает повторную рассылку
// идемпотентной.
type NotificationLogRepository struct {
	db *pgxpool.Pool
}

func NewNotificationLogRepository(db *pgxpool.Pool) service.NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

// NotifiedRecipients возвращает получателей, уже уведомленных для пары
// (тревога, статус)
func (r *NotificationLogRepository) NotifiedRecipients(ctx context.Context, alertID uuid.UUID, status models.AlertStatus) (map[uuid.UUID]bool, error) {
	query := `
		SELECT recipient_id
		FROM notification_log
		WHERE alert_id = $1 AND status = $2;
	`
	rows, err := r.db.Query(ctx, query, alertID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification log: %w", err)
	}
	defer rows.Close()

	notified := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan notification log row: %w", err)
		}
		notified[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error notification log iteration: %w", err)
	}
	return notified, nil
}

// MarkNotified фиксирует успешную доставку; повторная отметка не ошибка
func (r *NotificationLogRepository) MarkNotified(ctx context.Context, alertID, recipientID uuid.UUID, status models.AlertStatus) error {
	query := `
		INSERT INTO notification_log (alert_id, recipient_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (alert_id, recipient_id, status) DO NOTHING;
	`
	if _, err := r.db.Exec(ctx, query, alertID, recipientID, status); err != nil {
		return fmt.Errorf("failed to mark notification delivered: %w", err)
	}
	return nil
}
