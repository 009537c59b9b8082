package v1

import (
	"github.com/google/uuid"
	"github.com/shenikar/community_alert_engine/internal/models"
)

// DTOToAlertModel преобразует DTO создания в доменную модель.
// Валидность author_id гарантирует validate-тег, поэтому ошибка парсинга
// здесь не проверяется повторно.
func DTOToAlertModel(dto CreateAlertRequest) *models.Alert {
	authorID, _ := uuid.Parse(dto.AuthorID)
	return &models.Alert{
		Category:     models.AlertCategory(dto.Category),
		Title:        dto.Title,
		Description:  dto.Description,
		AuthorID:     authorID,
		Latitude:     dto.Latitude,
		Longitude:    dto.Longitude,
		Address:      dto.Address,
		City:         dto.City,
		Neighborhood: dto.Neighborhood,
	}
}

// ModelToAlertResponse преобразует доменную модель в DTO для ответа
func ModelToAlertResponse(model *models.Alert) *AlertResponse {
	return &AlertResponse{
		ID:               model.ID,
		Category:         string(model.Category),
		Status:           string(model.Status),
		Title:            model.Title,
		Description:      model.Description,
		AuthorID:         model.AuthorID,
		Latitude:         model.Latitude,
		Longitude:        model.Longitude,
		Address:          model.Address,
		City:             model.City,
		Neighborhood:     model.Neighborhood,
		ReliabilityScore: model.ReliabilityScore,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
		ResolvedAt:       model.ResolvedAt,
		ResolvedBy:       model.ResolvedBy,
	}
}

// ModelsToAlertResponses преобразует слайс моделей в слайс DTO
func ModelsToAlertResponses(alerts []*models.Alert) []*AlertResponse {
	responses := make([]*AlertResponse, len(alerts))
	for i, alert := range alerts {
		responses[i] = ModelToAlertResponse(alert)
	}
	return responses
}

// IntentsToResponses преобразует намерения уведомлений в DTO
func IntentsToResponses(intents []*models.NotificationIntent) []*NotificationIntentResponse {
	responses := make([]*NotificationIntentResponse, len(intents))
	for i, intent := range intents {
		responses[i] = &NotificationIntentResponse{
			AlertID:     intent.AlertID,
			RecipientID: intent.RecipientID,
			Kind:        string(intent.Kind),
			AlertStatus: string(intent.AlertStatus),
			DistanceKm:  intent.DistanceKm,
			Urgent:      intent.Urgent,
			Message:     intent.Message,
		}
	}
	return responses
}

// StatisticToResponse преобразует сводку в DTO
func StatisticToResponse(stat *models.AggregatedStatistic) *StatisticResponse {
	categories := make(map[string]int, len(stat.CategoryCounts))
	for category, count := range stat.CategoryCounts {
		categories[string(category)] = count
	}
	return &StatisticResponse{
		BucketType:         string(stat.BucketType),
		PeriodStart:        stat.PeriodStart,
		PeriodEnd:          stat.PeriodEnd,
		TotalCount:         stat.TotalCount,
		ResolvedCount:      stat.ResolvedCount,
		FalseAlarmCount:    stat.FalseAlarmCount,
		CategoryCounts:     categories,
		GeographyCounts:    stat.GeographyCounts,
		AvgReliability:     stat.AvgReliability,
		AvgResolutionHours: stat.AvgResolutionHours,
	}
}
