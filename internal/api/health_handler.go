package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/profmatch-api/internal/logger"
)

// HealthChecker is satisfied by *database.DB
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler reports whether the service can reach its database
type HealthHandler struct {
	db     HealthChecker
	logger logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db HealthChecker, log logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: log}
}

// GetHealth answers 200 when the database responds and 503 otherwise
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.HealthCheck(ctx); err != nil {
		h.logger.Warn("health check failed", "error", err.Error())
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"timestamp": time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}
