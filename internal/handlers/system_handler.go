package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ArowuTest/outline-analytics-backend/internal/apperror"
	"github.com/ArowuTest/outline-analytics-backend/internal/logging"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the health probe and the error code catalogue
type SystemHandler struct {
	db Pinger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger) *SystemHandler {
	return &SystemHandler{db: db}
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logging.Ctx(c.Request.Context()).Warn().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ErrorCodes handles GET /error_codes
func (h *SystemHandler) ErrorCodes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "error_codes": apperror.Codes()})
}
