package models

import (
	"time"

	"github.com/google/uuid"
)

// IntentKind - вид уведомления
type IntentKind string

const (
	IntentNewAlert     IntentKind = "new_alert"
	IntentStatusUpdate IntentKind = "status_update"
	IntentHelpOffer    IntentKind = "help_offer"
)

// NotificationIntent - вычисленное намерение уведомить получателя.
// Ядро только строит эти записи; фактическую доставку выполняет внешний
// push-шлюз через воркер диспетчеризации.
type NotificationIntent struct {
	AlertID     uuid.UUID   `json:"alert_id"`
	RecipientID uuid.UUID   `json:"recipient_id"`
	Kind        IntentKind  `json:"kind"`
	AlertStatus AlertStatus `json:"alert_status"`
	DistanceKm  float64     `json:"distance_km"`
	Urgent      bool        `json:"urgent"`
	Message     string      `json:"message"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CandidateUser - пользователь, попавший в радиус поиска, с предвычисленной дистанцией
type CandidateUser struct {
	UserID     uuid.UUID `json:"user_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	DistanceKm float64   `json:"distance_km"`
}

// UserLocation - последняя известная геопозиция пользователя.
// Пользователи без координат никогда не становятся кандидатами.
type UserLocation struct {
	UserID    uuid.UUID `json:"user_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}
