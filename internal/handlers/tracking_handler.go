package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ArowuTest/outline-analytics-backend/internal/models"
	"github.com/ArowuTest/outline-analytics-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// BrowserOverrideHeader lets first party embeds name their own browser
const BrowserOverrideHeader = "X-Outline-Browser"

// BeaconIngester records beacons and serves the event feed
type BeaconIngester interface {
	TrackEvent(ctx context.Context, appID string, client services.Client, req models.BeaconRequest) (*models.TrackingEvent, error)
	TrackSession(ctx context.Context, appID string, client services.Client, req models.BeaconRequest) (*models.TrackingEvent, error)
	Events(ctx context.Context, appID string, page, limit int64) ([]*models.TrackingEvent, int64, int64, error)
}

// EventConfigSource serves the event definitions the tracker binds to
type EventConfigSource interface {
	EventsByAppID(ctx context.Context, id string) ([]models.EventDefinition, error)
}

// TrackingHandler handles the public tracking routes
type TrackingHandler struct {
	beacons BeaconIngester
	configs EventConfigSource
}

// NewTrackingHandler creates a new TrackingHandler
func NewTrackingHandler(beacons BeaconIngester, configs EventConfigSource) *TrackingHandler {
	return &TrackingHandler{
		beacons: beacons,
		configs: configs,
	}
}

// TrackEvent handles POST /v1/:analyticsId/event
func (h *TrackingHandler) TrackEvent(c *gin.Context) {
	h.ingest(c, h.beacons.TrackEvent)
}

// TrackSession handles POST /v1/:analyticsId/session
func (h *TrackingHandler) TrackSession(c *gin.Context) {
	h.ingest(c, h.beacons.TrackSession)
}

// GetEvents handles GET /v1/:analyticsId/events
func (h *TrackingHandler) GetEvents(c *gin.Context) {
	page, err := queryInt(c, "page")
	if err != nil {
		respondError(c, services.ErrInvalidPagination)
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, services.ErrInvalidPagination)
		return
	}

	events, page, limit, err := h.beacons.Events(c.Request.Context(), c.Param("analyticsId"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": events, "page": page, "limit": limit})
}

// GetConfig handles GET /v1/:analyticsId/config
func (h *TrackingHandler) GetConfig(c *gin.Context) {
	events, err := h.configs.EventsByAppID(c.Request.Context(), c.Param("analyticsId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": events})
}

type ingestFunc func(context.Context, string, services.Client, models.BeaconRequest) (*models.TrackingEvent, error)

func (h *TrackingHandler) ingest(c *gin.Context, track ingestFunc) {
	var req models.BeaconRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, services.ErrInvalidBeacon)
		return
	}

	client := services.Client{
		UserAgent:       c.Request.UserAgent(),
		BrowserOverride: c.GetHeader(BrowserOverrideHeader),
		IP:              c.ClientIP(),
	}
	if _, err := track(c.Request.Context(), c.Param("analyticsId"), client, req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// queryInt reads an optional integer query parameter; absent means zero
func queryInt(c *gin.Context, key string) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
