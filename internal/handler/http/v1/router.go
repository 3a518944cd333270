package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Синхронизированный набор активных инцидентов
	incidents := api.Group("/incidents")
	{
		incidents.GET("", h.listIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.POST("/:id/resolve", APIKeyAuthMiddleware(h.cfg.APIKeys, h.logger), h.resolveIncident)
	}

	// Кнопка SOS
	dispatch := api.Group("/dispatch")
	{
		dispatch.GET("", h.getDispatch)
		dispatch.POST("", h.confirmDispatch)
		dispatch.POST("/retry", h.retryDispatch)
		dispatch.POST("/cancel", h.cancelDispatch)
	}

	// Поток изменений для карты
	api.GET("/ws", gin.WrapH(h.ws))

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
