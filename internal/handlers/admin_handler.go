package handlers

import (
	"context"
	"net/http"

	"github.com/ArowuTest/outline-analytics-backend/internal/models"
	"github.com/gin-gonic/gin"
)

// AppAdministration holds the App registry operations with no owner check
type AppAdministration interface {
	ResumeApp(ctx context.Context, id string) (*models.App, error)
	PauseApp(ctx context.Context, id string) (*models.App, error)
	SuspendApp(ctx context.Context, id string) (*models.App, error)
	PermanentlyDeleteApp(ctx context.Context, id string) error
	ListDeletedApps(ctx context.Context, owner string) ([]*models.AppSummary, error)
}

// AdminHandler handles the administrative App routes
type AdminHandler struct {
	apps AppAdministration
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(apps AppAdministration) *AdminHandler {
	return &AdminHandler{apps: apps}
}

// ResumeApp handles POST /admin/app/:id/resume
func (h *AdminHandler) ResumeApp(c *gin.Context) {
	h.transition(c, h.apps.ResumeApp)
}

// PauseApp handles POST /admin/app/:id/pause
func (h *AdminHandler) PauseApp(c *gin.Context) {
	h.transition(c, h.apps.PauseApp)
}

// SuspendApp handles POST /admin/app/:id/suspend
func (h *AdminHandler) SuspendApp(c *gin.Context) {
	h.transition(c, h.apps.SuspendApp)
}

// DeleteApp handles DELETE /admin/app/:id
func (h *AdminHandler) DeleteApp(c *gin.Context) {
	if err := h.apps.PermanentlyDeleteApp(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListDeletedApps handles GET /admin/user/:id/apps/deleted
func (h *AdminHandler) ListDeletedApps(c *gin.Context) {
	apps, err := h.apps.ListDeletedApps(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "apps": apps})
}

func (h *AdminHandler) transition(c *gin.Context, move func(context.Context, string) (*models.App, error)) {
	app, err := move(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "app": app})
}
