package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"media-transcriber/internal/api/middleware"
	"media-transcriber/internal/api/v1/dto"
	"media-transcriber/internal/api/v1/services"
)

// RoutingHandler exposes the fallback chain configuration.
type RoutingHandler struct {
	service services.RoutingService
}

func NewRoutingHandler(service services.RoutingService) *RoutingHandler {
	return &RoutingHandler{service: service}
}

// Get handles GET /api/v1/routing
func (h *RoutingHandler) Get(c *gin.Context) {
	routing, err := h.service.GetRouting(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, routing)
}

// Update handles PUT /api/v1/routing
// The change applies to the next transcription request.
func (h *RoutingHandler) Update(c *gin.Context) {
	var req dto.UpdateRoutingRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	routing, err := h.service.UpdateRouting(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, routing)
}
