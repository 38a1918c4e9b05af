package handlers

import (
	"context"
	"net/http"

	"github.com/ArowuTest/outline-analytics-backend/internal/apperror"
	"github.com/ArowuTest/outline-analytics-backend/internal/middleware"
	"github.com/ArowuTest/outline-analytics-backend/internal/models"
	"github.com/ArowuTest/outline-analytics-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// AppRegistry is the owner facing App registry
type AppRegistry interface {
	CreateApp(ctx context.Context, owner, name, domain string) (*models.App, error)
	GetApp(ctx context.Context, id, owner string) (*models.App, error)
	ListApps(ctx context.Context, owner string) ([]*models.AppSummary, error)
	UpdateApp(ctx context.Context, id, owner string, req models.UpdateAppRequest) (*models.App, error)
	SoftDeleteApp(ctx context.Context, id, owner string) (*models.App, error)
	AddEvent(ctx context.Context, id, owner string, req models.EventDefinitionRequest) (*models.App, error)
	UpdateEvent(ctx context.Context, id, owner, eventID string, req models.EventDefinitionRequest) (*models.App, error)
	DeleteEvents(ctx context.Context, id, owner string, eventIDs []string) (*models.App, error)
}

// AppHandler handles App registry requests of a signed in user
type AppHandler struct {
	apps AppRegistry
}

// NewAppHandler creates a new AppHandler
func NewAppHandler(apps AppRegistry) *AppHandler {
	return &AppHandler{
		apps: apps,
	}
}

// CreateApp handles POST /v1/app/create
func (h *AppHandler) CreateApp(c *gin.Context) {
	var req models.CreateAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.InvalidBody)
		return
	}

	app, err := h.apps.CreateApp(c.Request.Context(), middleware.UserID(c), req.Name, req.Domain)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"app":     gin.H{"id": app.ID, "name": app.Name, "domain": app.Domain},
	})
}

// GetApp handles GET /v1/app/:id
func (h *AppHandler) GetApp(c *gin.Context) {
	app, err := h.apps.GetApp(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	h.respondApp(c, app, err)
}

// ListApps handles GET /v1/apps
func (h *AppHandler) ListApps(c *gin.Context) {
	apps, err := h.apps.ListApps(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "apps": apps})
}

// UpdateApp handles PATCH /v1/app/:id/update
func (h *AppHandler) UpdateApp(c *gin.Context) {
	var req models.UpdateAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.InvalidBody)
		return
	}

	app, err := h.apps.UpdateApp(c.Request.Context(), c.Param("id"), middleware.UserID(c), req)
	h.respondApp(c, app, err)
}

// DeleteApp handles DELETE /v1/app/:id
func (h *AppHandler) DeleteApp(c *gin.Context) {
	app, err := h.apps.SoftDeleteApp(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	h.respondApp(c, app, err)
}

// AddEvent handles PUT /v1/app/:id/events/add
func (h *AppHandler) AddEvent(c *gin.Context) {
	var req models.EventDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.InvalidBody)
		return
	}

	app, err := h.apps.AddEvent(c.Request.Context(), c.Param("id"), middleware.UserID(c), req)
	h.respondApp(c, app, err)
}

// UpdateEvent handles PATCH /v1/app/:id/events/:eventId/update
func (h *AppHandler) UpdateEvent(c *gin.Context) {
	var req models.EventDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.InvalidBody)
		return
	}

	app, err := h.apps.UpdateEvent(c.Request.Context(), c.Param("id"), middleware.UserID(c), c.Param("eventId"), req)
	h.respondApp(c, app, err)
}

// DeleteEvents handles PUT /v1/app/:id/events/delete
func (h *AppHandler) DeleteEvents(c *gin.Context) {
	var req models.DeleteEventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, services.ErrInvalidEventIDs)
		return
	}

	app, err := h.apps.DeleteEvents(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.EventIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "app": app, "deletedEvents": req.EventIDs})
}

func (h *AppHandler) respondApp(c *gin.Context, app *models.App, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "app": app})
}
