package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType - тип доменного события жизненного цикла тревоги
type EventType string

const (
	EventAlertCreated    EventType = "alert_created"
	EventStatusChanged   EventType = "status_changed"
	EventScoreRecomputed EventType = "score_recomputed"
	EventReportSubmitted EventType = "report_submitted"
	EventHelpOffered     EventType = "help_offered"
)

// DomainEvent - событие, возвращаемое операциями ядра.
// Ядро только формирует события; публикацией во внешний поток занимается
// диспетчер на уровне composition root (паттерн outbox).
type DomainEvent struct {
	Type       EventType    `json:"type"`
	AlertID    uuid.UUID    `json:"alert_id"`
	ActorID    *uuid.UUID   `json:"actor_id,omitempty"`
	FromStatus *AlertStatus `json:"from_status,omitempty"`
	ToStatus   *AlertStatus `json:"to_status,omitempty"`
	Score      *float64     `json:"score,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// NewStatusChangedEvent создает событие смены статуса
func NewStatusChangedEvent(alertID uuid.UUID, from, to AlertStatus, actorID *uuid.UUID) DomainEvent {
	return DomainEvent{
		Type:       EventStatusChanged,
		AlertID:    alertID,
		ActorID:    actorID,
		FromStatus: &from,
		ToStatus:   &to,
		OccurredAt: time.Now().UTC(),
	}
}
