package handlers

import (
	"errors"
	"net/http"

	"github.com/ArowuTest/outline-analytics-backend/internal/apperror"
	"github.com/ArowuTest/outline-analytics-backend/internal/logging"
	"github.com/gin-gonic/gin"
)

// respondError writes the error envelope. Errors without a client facing
// code are logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if status := appErr.Status(); status != http.StatusInternalServerError {
			c.AbortWithStatusJSON(status, gin.H{
				"success": false,
				"code":    appErr.Code,
				"message": appErr.Message,
			})
			return
		}
	}

	_ = c.Error(err)
	logging.Ctx(c.Request.Context()).Error().Err(err).
		Str("method", c.Request.Method).
		Str("route", c.FullPath()).
		Msg("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"code":    http.StatusInternalServerError,
		"message": apperror.InternalMessage,
	})
}

// NoRoute answers unknown paths
func NoRoute(c *gin.Context) {
	respondError(c, apperror.NoEndpoint)
}
