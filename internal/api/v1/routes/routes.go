package routes

import (
	"github.com/gin-gonic/gin"

	"media-transcriber/internal/api/v1/handlers"
	"media-transcriber/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	TranscriptionService services.TranscriptionService
	ProviderService      services.ProviderService
	RoutingService       services.RoutingService
	StatsService         services.StatsService
	HistoryService       services.HistoryService

	// MaxUploadBytes bounds multipart uploads; 0 means unlimited.
	MaxUploadBytes int64
}

// RegisterRoutes registers all v1 API routes. Services left nil have no routes.
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	if container.TranscriptionService != nil {
		transcriptionHandler := handlers.NewTranscriptionHandler(container.TranscriptionService, container.MaxUploadBytes)
		transcriptions := router.Group("/transcriptions")
		{
			transcriptions.POST("", transcriptionHandler.Create)
			transcriptions.POST("/upload", transcriptionHandler.Upload)
		}
	}

	providerHandler := handlers.NewProviderHandler(container.ProviderService)
	providers := router.Group("/providers")
	{
		providers.GET("", providerHandler.List)
		providers.DELETE("/cache", providerHandler.ClearCaches)
		providers.GET("/:name", providerHandler.Get)
		providers.POST("/:name/initialize", providerHandler.Initialize)
	}

	routingHandler := handlers.NewRoutingHandler(container.RoutingService)
	router.GET("/routing", routingHandler.Get)
	router.PUT("/routing", routingHandler.Update)

	if container.StatsService != nil {
		router.GET("/stats", handlers.NewStatsHandler(container.StatsService).Get)
	}

	if container.HistoryService != nil {
		historyHandler := handlers.NewHistoryHandler(container.HistoryService)
		history := router.Group("/history")
		{
			history.GET("", historyHandler.List)
			history.GET("/export", historyHandler.Export)
		}
	}
}
