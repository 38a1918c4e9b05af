package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ArowuTest/outline-analytics-backend/internal/browsing"
	"github.com/ArowuTest/outline-analytics-backend/internal/metrics"
	"github.com/ArowuTest/outline-analytics-backend/internal/models"
	"github.com/ArowuTest/outline-analytics-backend/internal/repositories"
	"github.com/ArowuTest/outline-analytics-backend/internal/utils"
	"github.com/rs/zerolog/log"
)

const (
	sessionEventName = "session"
	defaultPageSize  = 10
)

// BrowsingEnricher derives the client environment of a beacon
type BrowsingEnricher interface {
	BrowsingData(userAgent, browserOverride, clientIP string) models.BrowsingData
}

// Client identifies the sender of a beacon
type Client struct {
	UserAgent       string
	BrowserOverride string
	IP              string
}

// TrackingService ingests beacons and serves the per-app event feed
type TrackingService struct {
	eventRepo   repositories.TrackingEventRepository
	enricher    BrowsingEnricher
	maxPageSize int64
	now         func() time.Time
}

// NewTrackingService creates a new TrackingService
func NewTrackingService(eventRepo repositories.TrackingEventRepository, enricher BrowsingEnricher, maxPageSize int64) *TrackingService {
	return &TrackingService{
		eventRepo:   eventRepo,
		enricher:    enricher,
		maxPageSize: maxPageSize,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// TrackEvent records a pageview, click or custom event beacon
func (s *TrackingService) TrackEvent(ctx context.Context, appID string, client Client, req models.BeaconRequest) (*models.TrackingEvent, error) {
	event, err := s.newEvent(appID, client, req)
	if err != nil {
		return nil, err
	}
	event.Event = req.Event
	event.EventType = models.ParseEventType(req.EventType)
	if event.Event == "" {
		event.Event = string(event.EventType)
	}
	return event, s.store(ctx, event)
}

// TrackSession records a session beacon with its visit window
func (s *TrackingService) TrackSession(ctx context.Context, appID string, client Client, req models.BeaconRequest) (*models.TrackingEvent, error) {
	event, err := s.newEvent(appID, client, req)
	if err != nil {
		return nil, err
	}
	event.Event = sessionEventName
	event.EventType = models.EventTypeSession
	event.SessionID = req.SessionID
	event.VisitedAt = fromMillis(req.VisitedAt)
	event.LeftAt = fromMillis(req.LeftAt)
	return event, s.store(ctx, event)
}

// Events returns a page of the app's events, most recent first. Zero page
// and limit select the defaults.
func (s *TrackingService) Events(ctx context.Context, appID string, page, limit int64) ([]*models.TrackingEvent, int64, int64, error) {
	if !utils.IsAppID(appID) {
		return nil, 0, 0, ErrInvalidAnalyticsID
	}
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultPageSize
	}
	if page < 1 || limit < 1 || limit > s.maxPageSize {
		return nil, 0, 0, ErrInvalidPagination
	}
	// the skip offset (page-1)*limit must fit in an int64
	if page > math.MaxInt64/limit {
		return nil, 0, 0, ErrInvalidPagination
	}
	events, err := s.eventRepo.FindByApp(ctx, appID, page, limit)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("find events: %w", err)
	}
	return events, page, limit, nil
}

func (s *TrackingService) newEvent(appID string, client Client, req models.BeaconRequest) (*models.TrackingEvent, error) {
	if !utils.IsAppID(appID) {
		return nil, ErrInvalidAnalyticsID
	}
	if req.UID == "" {
		return nil, ErrInvalidBeacon
	}

	event := &models.TrackingEvent{
		App:          appID,
		User:         req.UID,
		BrowsingData: s.enricher.BrowsingData(client.UserAgent, client.BrowserOverride, client.IP),
		CapturedAt:   s.now(),
	}
	if req.Page != nil {
		page, utm, err := browsing.ParsePage(req.Page.Fullpath, req.Page.Title, req.Page.Meta)
		if err != nil {
			if errors.Is(err, browsing.ErrInvalidPageURL) {
				return nil, ErrInvalidBeacon
			}
			return nil, err
		}
		event.Page = page
		event.UTM = utm
		event.Referrer = req.Page.Referrer
	}
	if len(req.Data) > 0 && string(req.Data) != "null" {
		if data, ok := models.NewPayload(req.Data); ok {
			event.Data = data
		} else {
			metrics.BeaconPayloadsDropped.Inc()
		}
	}
	return event, nil
}

func (s *TrackingService) store(ctx context.Context, event *models.TrackingEvent) error {
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("store beacon: %w", err)
	}
	metrics.BeaconsIngested.WithLabelValues(string(event.EventType)).Inc()
	log.Ctx(ctx).Debug().Str("app", event.App).Str("event", event.Event).Msg("beacon stored")
	return nil
}

func fromMillis(ms int64) *time.Time {
	if ms <= 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}
