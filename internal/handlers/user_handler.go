package handlers

import (
	"context"
	"net/http"

	"github.com/ArowuTest/outline-analytics-backend/internal/apperror"
	"github.com/ArowuTest/outline-analytics-backend/internal/middleware"
	"github.com/ArowuTest/outline-analytics-backend/internal/models"
	"github.com/gin-gonic/gin"
)

// ProfileService reads and changes account details
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateName(ctx context.Context, userID, name string) (*models.User, error)
	SetStatus(ctx context.Context, userID string, status models.UserStatus) (*models.User, error)
}

// UserHandler handles account requests of a signed in user
type UserHandler struct {
	profiles ProfileService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profiles ProfileService) *UserHandler {
	return &UserHandler{
		profiles: profiles,
	}
}

// GetMe handles GET /v1/user/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.profiles.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Profile()})
}

// UpdateUser handles PATCH /v1/user/update
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.InvalidBody)
		return
	}

	user, err := h.profiles.UpdateName(c.Request.Context(), middleware.UserID(c), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Profile()})
}

// SetUserStatus handles PATCH /admin/user/:id/status
func (h *UserHandler) SetUserStatus(c *gin.Context) {
	var req models.UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.InvalidBody)
		return
	}

	user, err := h.profiles.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Profile()})
}
