package service

import "github.com/shenikar/community_alert_engine/internal/models"

// allowedTransitions - таблица разрешенных переходов статуса.
// Счастливый путь pending -> confirmed -> in_progress -> resolved,
// false_alarm достижим из любого нетерминального статуса,
// оба конечных статуса терминальны.
var allowedTransitions = map[models.AlertStatus][]models.AlertStatus{
	models.StatusPending:    {models.StatusConfirmed, models.StatusFalseAlarm},
	models.StatusConfirmed:  {models.StatusInProgress, models.StatusFalseAlarm},
	models.StatusInProgress: {models.StatusResolved, models.StatusFalseAlarm},
	models.StatusResolved:   {},
	models.StatusFalseAlarm: {},
}

// CanTransition проверяет переход по таблице
func CanTransition(from, to models.AlertStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidStatus проверяет, что статус известен таблице переходов
func ValidStatus(s models.AlertStatus) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Радиусы рассылки в километрах: расширенный для срочных категорий,
// стандартный для всех остальных
const (
	UrgentRadiusKm   = 10.0
	StandardRadiusKm = 5.0
)
