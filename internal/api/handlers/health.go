// Package handlers provides HTTP handlers for the API.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tripwise/travel-agent/internal/api/dto"
	"github.com/tripwise/travel-agent/internal/api/middleware"
	"github.com/tripwise/travel-agent/internal/core/cache"
	"github.com/tripwise/travel-agent/internal/core/docdb"
	domainerrors "github.com/tripwise/travel-agent/internal/domain/errors"
)

const pingTimeout = 2 * time.Second

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	cacheClient cache.Client
	docDBClient docdb.Client
}

// NewHealthHandler creates a new HealthHandler. docDBClient is nil when
// guard auditing is disabled.
func NewHealthHandler(cacheClient cache.Client, docDBClient docdb.Client) *HealthHandler {
	return &HealthHandler{
		cacheClient: cacheClient,
		docDBClient: docDBClient,
	}
}

func (h *HealthHandler) components(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	components := map[string]string{"lookup": "healthy"}
	healthy := true

	if err := h.cacheClient.Ping(ctx); err != nil {
		components["cache"] = "unhealthy"
		healthy = false
	} else {
		components["cache"] = "healthy"
	}

	// The audit store is optional: an outage degrades auditing, not chat.
	if h.docDBClient != nil {
		if err := h.docDBClient.Ping(ctx); err != nil {
			components["docdb"] = "degraded"
		} else {
			components["docdb"] = "healthy"
		}
	}
	return components, healthy
}

// Health handles the /api/health endpoint.
// @Summary Health check
// @Description Returns the overall health status and component statuses
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service healthy"
// @Failure 503 {object} dto.HealthResponse "Service unhealthy"
// @Router /api/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	components, healthy := h.components(c.Request.Context())

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, dto.HealthResponse{
		Status:     status,
		Components: components,
	})
}

// Ready handles the /api/ready endpoint.
// @Summary Readiness check
// @Description Returns 200 if the service is ready to accept traffic
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Service ready"
// @Failure 503 {object} dto.ErrorResponse "Service not ready"
// @Router /api/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	if err := h.cacheClient.Ping(ctx); err != nil {
		middleware.HandleError(c, domainerrors.NewServiceUnavailableError("cache", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// Live handles the /api/live endpoint.
// @Summary Liveness check
// @Description Returns 200 if the service is alive
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Service alive"
// @Router /api/live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
