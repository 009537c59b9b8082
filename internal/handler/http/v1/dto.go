package v1

import (
	"time"

	"github.com/google/uuid"
)

// CreateAlertRequest DTO для создания тревоги
// @Description DTO для создания тревоги
type CreateAlertRequest struct {
	Category     string   `json:"category" validate:"required,oneof=fire power_outage road_blocked security medical flood gas_leak noise vandalism other"`
	Title        string   `json:"title" validate:"required,min=2,max=255"`
	Description  string   `json:"description,omitempty"`
	AuthorID     string   `json:"author_id" validate:"required,uuid"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Address      string   `json:"address,omitempty"`
	City         string   `json:"city,omitempty"`
	Neighborhood string   `json:"neighborhood,omitempty"`
}

// TransitionStatusRequest DTO для смены статуса тревоги
// @Description DTO для смены статуса тревоги
type TransitionStatusRequest struct {
	Status       string `json:"status" validate:"required,oneof=pending confirmed in_progress resolved false_alarm"`
	ActingUserID string `json:"acting_user_id,omitempty" validate:"omitempty,uuid"`
}

// SubmitReportRequest DTO для сигнала о достоверности
// @Description DTO для сигнала о достоверности
type SubmitReportRequest struct {
	ReporterID string `json:"reporter_id" validate:"required,uuid"`
	Type       string `json:"type" validate:"required,oneof=false_alarm confirmed inappropriate duplicate resolved"`
	Reason     string `json:"reason,omitempty" validate:"max=1000"`
}

// SubmitHelpOfferRequest DTO для предложения помощи
// @Description DTO для предложения помощи
type SubmitHelpOfferRequest struct {
	HelperID    string `json:"helper_id" validate:"required,uuid"`
	OfferType   string `json:"offer_type" validate:"required,min=2,max=64"`
	Description string `json:"description,omitempty" validate:"max=1000"`
	Contact     string `json:"contact,omitempty" validate:"max=255"`
}

// AlertResponse DTO для ответа с информацией о тревоге
// @Description DTO для ответа с информацией о тревоге
type AlertResponse struct {
	ID               uuid.UUID  `json:"id"`
	Category         string     `json:"category"`
	Status           string     `json:"status"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	AuthorID         uuid.UUID  `json:"author_id"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	Address          string     `json:"address,omitempty"`
	City             string     `json:"city,omitempty"`
	Neighborhood     string     `json:"neighborhood,omitempty"`
	ReliabilityScore float64    `json:"reliability_score"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy       *uuid.UUID `json:"resolved_by,omitempty"`
}

// NotificationIntentResponse DTO для намерения уведомления
// @Description DTO для намерения уведомления
type NotificationIntentResponse struct {
	AlertID     uuid.UUID `json:"alert_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Kind        string    `json:"kind"`
	AlertStatus string    `json:"alert_status"`
	DistanceKm  float64   `json:"distance_km"`
	Urgent      bool      `json:"urgent"`
	Message     string    `json:"message"`
}

// StatisticResponse DTO для сводной статистики
// @Description DTO для сводной статистики
type StatisticResponse struct {
	BucketType         string         `json:"bucket_type"`
	PeriodStart        time.Time      `json:"period_start"`
	PeriodEnd          time.Time      `json:"period_end"`
	TotalCount         int            `json:"total_count"`
	ResolvedCount      int            `json:"resolved_count"`
	FalseAlarmCount    int            `json:"false_alarm_count"`
	CategoryCounts     map[string]int `json:"category_counts"`
	GeographyCounts    map[string]int `json:"geography_counts"`
	AvgReliability     float64        `json:"avg_reliability"`
	AvgResolutionHours float64        `json:"avg_resolution_hours"`
}

// AuthorTrustResponse DTO для рейтинга доверия автора
// @Description DTO для рейтинга доверия автора
type AuthorTrustResponse struct {
	AlertCount       int     `json:"alert_count"`
	FalseAlarmRate   float64 `json:"false_alarm_rate"`
	ConfirmationRate float64 `json:"confirmation_rate"`
	Score            float64 `json:"score"`
}
