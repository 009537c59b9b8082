package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршрут Health-check остается открытым
	api.GET("/system/health", h.healthCheck)

	if len(h.cfg.APIKeys) > 0 {
		api.Use(APIKeyAuthMiddleware(h.cfg, h.logger))
	}

	// Маршруты управления тревогами и их жизненным циклом
	alerts := api.Group("/alerts")
	{
		alerts.POST("", h.createAlert)
		alerts.GET("", h.listAlerts)
		alerts.GET("/:id", h.getAlert)
		alerts.POST("/:id/status", h.transitionStatus)
		alerts.POST("/:id/reports", h.submitReport)
		alerts.POST("/:id/help-offers", h.submitHelpOffer)
		alerts.POST("/:id/help-offers/:helperId/accept", h.acceptHelpOffer)
		alerts.POST("/:id/fanout", h.fanout)
	}

	// Маршрут сводной статистики для внешнего планировщика
	api.GET("/stats/aggregate", h.aggregateStats)

	// Маршрут производного рейтинга автора
	api.GET("/users/:id/trust", h.authorTrust)
}
