package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertCategory - категория инцидента
type AlertCategory string

const (
	CategoryFire        AlertCategory = "fire"
	CategoryPowerOutage AlertCategory = "power_outage"
	CategoryRoadBlocked AlertCategory = "road_blocked"
	CategorySecurity    AlertCategory = "security"
	CategoryMedical     AlertCategory = "medical"
	CategoryFlood       AlertCategory = "flood"
	CategoryGasLeak     AlertCategory = "gas_leak"
	CategoryNoise       AlertCategory = "noise"
	CategoryVandalism   AlertCategory = "vandalism"
	CategoryOther       AlertCategory = "other"
)

// AlertStatus - статус жизненного цикла тревоги
type AlertStatus string

const (
	StatusPending    AlertStatus = "pending"
	StatusConfirmed  AlertStatus = "confirmed"
	StatusInProgress AlertStatus = "in_progress"
	StatusResolved   AlertStatus = "resolved"
	StatusFalseAlarm AlertStatus = "false_alarm"
)

var categoryDisplayNames = map[AlertCategory]string{
	CategoryFire:        "Fire",
	CategoryPowerOutage: "Power outage",
	CategoryRoadBlocked: "Road blocked",
	CategorySecurity:    "Security incident",
	CategoryMedical:     "Medical emergency",
	CategoryFlood:       "Flood",
	CategoryGasLeak:     "Gas leak",
	CategoryNoise:       "Noise complaint",
	CategoryVandalism:   "Vandalism",
	CategoryOther:       "Incident",
}

// DisplayName возвращает человекочитаемое название категории
func (c AlertCategory) DisplayName() string {
	if name, ok := categoryDisplayNames[c]; ok {
		return name
	}
	return categoryDisplayNames[CategoryOther]
}

// Valid проверяет, что категория входит в список поддерживаемых
func (c AlertCategory) Valid() bool {
	_, ok := categoryDisplayNames[c]
	return ok
}

// IsUrgent - срочные категории получают расширенный радиус оповещения
func (c AlertCategory) IsUrgent() bool {
	switch c {
	case CategoryFire, CategoryMedical, CategoryGasLeak, CategorySecurity:
		return true
	}
	return false
}

// Alert - одиночный инцидент, о котором сообщил пользователь
type Alert struct {
	ID               uuid.UUID     `json:"id"`
	Category         AlertCategory `json:"category"`
	Status           AlertStatus   `json:"status"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	AuthorID         uuid.UUID     `json:"author_id"`
	Latitude         *float64      `json:"latitude,omitempty"`
	Longitude        *float64      `json:"longitude,omitempty"`
	Address          string        `json:"address,omitempty"`
	City             string        `json:"city,omitempty"`
	Neighborhood     string        `json:"neighborhood,omitempty"`
	ReliabilityScore float64       `json:"reliability_score"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	ResolvedAt       *time.Time    `json:"resolved_at,omitempty"`
	ResolvedBy       *uuid.UUID    `json:"resolved_by,omitempty"`
}

// HasCoordinates - тревога без координат не участвует в geo-рассылке
func (a *Alert) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// IsUrgent проверяет срочность по категории
func (a *Alert) IsUrgent() bool {
	return a.Category.IsUrgent()
}

// IsReliable - порог доверия, открывающий расширение радиуса для срочных тревог
func (a *Alert) IsReliable() bool {
	return a.ReliabilityScore >= ReliableScoreThreshold
}

// IsTerminal - из resolved и false_alarm переходов больше нет
func (s AlertStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusFalseAlarm
}

// ReliableScoreThreshold - граница рейтинга, ниже которой тревога считается недостоверной
const ReliableScoreThreshold = 70.0
