package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"media-transcriber/internal/api/middleware"
	"media-transcriber/internal/api/v1/services"
)

// ProviderHandler handles provider-related API endpoints
type ProviderHandler struct {
	service services.ProviderService
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(service services.ProviderService) *ProviderHandler {
	return &ProviderHandler{
		service: service,
	}
}

// List handles GET /api/v1/providers
func (h *ProviderHandler) List(c *gin.Context) {
	providers, err := h.service.ListProviders(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, providers)
}

// Get handles GET /api/v1/providers/:name
func (h *ProviderHandler) Get(c *gin.Context) {
	p, err := h.service.GetProvider(c.Request.Context(), c.Param("name"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Initialize handles POST /api/v1/providers/:name/initialize
// A failed initialization is reported in the body, not as an error status;
// the manager retries it on the next request anyway.
func (h *ProviderHandler) Initialize(c *gin.Context) {
	result, err := h.service.InitializeProvider(c.Request.Context(), c.Param("name"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ClearCaches handles DELETE /api/v1/providers/cache
func (h *ProviderHandler) ClearCaches(c *gin.Context) {
	result, err := h.service.ClearCaches(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
