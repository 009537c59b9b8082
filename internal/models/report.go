package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportType - тип пользовательского сигнала о тревоге
type ReportType string

const (
	ReportFalseAlarm    ReportType = "false_alarm"
	ReportConfirmed     ReportType = "confirmed"
	ReportInappropriate ReportType = "inappropriate"
	ReportDuplicate     ReportType = "duplicate"
	ReportResolved      ReportType = "resolved"
)

// Valid проверяет тип сигнала
func (t ReportType) Valid() bool {
	switch t {
	case ReportFalseAlarm, ReportConfirmed, ReportInappropriate, ReportDuplicate, ReportResolved:
		return true
	}
	return false
}

// Report - сигнал пользователя о достоверности тревоги.
// На пару (alert, reporter) существует не более одной записи: повторная
// отправка заменяет тип и причину, а не создает дубликат.
type Report struct {
	ID         uuid.UUID  `json:"id"`
	AlertID    uuid.UUID  `json:"alert_id"`
	ReporterID uuid.UUID  `json:"reporter_id"`
	Type       ReportType `json:"type"`
	Reason     string     `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// HelpOffer - предложение помощи по конкретной тревоге.
// Уникально на пару (alert, helper).
type HelpOffer struct {
	ID          uuid.UUID  `json:"id"`
	AlertID     uuid.UUID  `json:"alert_id"`
	HelperID    uuid.UUID  `json:"helper_id"`
	OfferType   string     `json:"offer_type"`
	Description string     `json:"description,omitempty"`
	Contact     string     `json:"contact,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
}
