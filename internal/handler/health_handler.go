package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports process liveness. The payload carries no storage
// state; a database outage surfaces on the data endpoints, not here.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a HealthHandler anchored at process start.
func NewHealthHandler(startedAt time.Time) *HealthHandler {
	return &HealthHandler{startedAt: startedAt}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Server is healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startedAt).Seconds(),
	})
}

// RegisterHealthRoutes registers the health endpoint at the root, outside the
// versioned API group.
func (h *HealthHandler) RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
}
