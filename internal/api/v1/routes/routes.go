package routes

import (
	"github.com/gin-gonic/gin"

	"transcribe-beautifier/internal/api/v1/handlers"
	"transcribe-beautifier/internal/app/events"
	"transcribe-beautifier/internal/app/repository"
)

// HandlerContainer holds the dependencies of the v1 routes.
type HandlerContainer struct {
	Start       events.Handler
	Beautify    events.Handler
	Ledger      repository.Ledger
	Concurrency int
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *HandlerContainer) {
	eventHandler := handlers.NewEventHandler(container.Start, container.Beautify, container.Concurrency)
	eventRoutes := router.Group("/events")
	{
		eventRoutes.POST("/start", eventHandler.Start)
		eventRoutes.POST("/beautify", eventHandler.Beautify)
	}
	router.POST("/objects", eventHandler.Trigger)

	if container.Ledger != nil {
		historyHandler := handlers.NewHistoryHandler(container.Ledger)
		router.GET("/history", historyHandler.List)
	}
}
