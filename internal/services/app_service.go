package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ArowuTest/outline-analytics-backend/internal/models"
	"github.com/ArowuTest/outline-analytics-backend/internal/repositories"
	"github.com/ArowuTest/outline-analytics-backend/internal/utils"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppService manages the App registry and the event definitions embedded in
// each App. Owner scoped operations never see DELETED apps.
type AppService struct {
	appRepo    repositories.AppRepository
	maxPerUser int64
}

// NewAppService creates a new AppService
func NewAppService(appRepo repositories.AppRepository, maxPerUser int64) *AppService {
	return &AppService{
		appRepo:    appRepo,
		maxPerUser: maxPerUser,
	}
}

// CreateApp registers a new ACTIVE app for owner. The quota check and the
// insert are separate round trips, so concurrent creates may overshoot by one.
func (s *AppService) CreateApp(ctx context.Context, owner, name, domain string) (*models.App, error) {
	name, err := appName(name)
	if err != nil {
		return nil, err
	}
	domain = strings.TrimSpace(domain)
	if domain != "" && !ValidDomain(domain) {
		return nil, ErrInvalidAppDomain
	}

	count, err := s.appRepo.CountByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("count apps: %w", err)
	}
	if count >= s.maxPerUser {
		return nil, ErrMaxAppsReached
	}

	app := &models.App{
		ID:     utils.NewAppID(),
		Owner:  owner,
		Name:   name,
		Domain: domain,
		Status: models.AppStatusActive,
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("create app: %w", err)
	}
	log.Ctx(ctx).Info().Str("app", app.ID).Str("owner", owner).Msg("app created")
	return app, nil
}

// GetApp returns a non-deleted app of owner with its event definitions
func (s *AppService) GetApp(ctx context.Context, id, owner string) (*models.App, error) {
	if !utils.IsAppID(id) {
		return nil, ErrInvalidAppID
	}
	app, err := s.appRepo.FindByIDAndOwner(ctx, id, owner)
	return s.appResult(app, err, "find app")
}

// ListApps returns summaries of the owner's non-deleted apps
func (s *AppService) ListApps(ctx context.Context, owner string) ([]*models.AppSummary, error) {
	apps, err := s.appRepo.FindAllByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}
	return apps, nil
}

// UpdateApp changes the supplied fields of an ACTIVE app. An empty domain
// clears it.
func (s *AppService) UpdateApp(ctx context.Context, id, owner string, req models.UpdateAppRequest) (*models.App, error) {
	if !utils.IsAppID(id) {
		return nil, ErrInvalidAppID
	}
	var patch models.AppPatch
	if req.Name != nil {
		name, err := appName(*req.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if req.Domain != nil {
		domain := strings.TrimSpace(*req.Domain)
		if domain != "" && !ValidDomain(domain) {
			return nil, ErrInvalidAppDomain
		}
		patch.Domain = &domain
	}
	if patch.Name == nil && patch.Domain == nil {
		return nil, ErrEmptyUpdate
	}

	app, err := s.appRepo.Update(ctx, id, owner, patch)
	return s.appResult(app, err, "update app")
}

// SoftDeleteApp marks the app DELETED. Deleting an already deleted app succeeds.
func (s *AppService) SoftDeleteApp(ctx context.Context, id, owner string) (*models.App, error) {
	if !utils.IsAppID(id) {
		return nil, ErrInvalidAppID
	}
	app, err := s.appRepo.SoftDelete(ctx, id, owner)
	return s.appResult(app, err, "delete app")
}

// AddEvent appends a new event definition to an ACTIVE app
func (s *AppService) AddEvent(ctx context.Context, id, owner string, req models.EventDefinitionRequest) (*models.App, error) {
	if !utils.IsAppID(id) {
		return nil, ErrInvalidAppID
	}
	def, err := newEventDefinition(req)
	if err != nil {
		return nil, err
	}
	app, err := s.appRepo.AddEvent(ctx, id, owner, def)
	return s.eventResult(app, err, "add event")
}

// UpdateEvent changes the supplied fields of one event definition
func (s *AppService) UpdateEvent(ctx context.Context, id, owner, eventID string, req models.EventDefinitionRequest) (*models.App, error) {
	if !utils.IsAppID(id) {
		return nil, ErrInvalidAppID
	}
	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return nil, ErrInvalidEventID
	}
	patch, err := newEventPatch(req)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, ErrEmptyUpdate
	}
	app, err := s.appRepo.UpdateEvent(ctx, id, owner, oid, patch)
	return s.eventResult(app, err, "update event")
}

// DeleteEvents removes every listed definition. Ids that match nothing are
// ignored, so the result cannot tell which ids were actually removed.
func (s *AppService) DeleteEvents(ctx context.Context, id, owner string, eventIDs []string) (*models.App, error) {
	if !utils.IsAppID(id) {
		return nil, ErrInvalidAppID
	}
	if len(eventIDs) == 0 {
		return nil, ErrInvalidEventIDs
	}
	oids := make([]primitive.ObjectID, 0, len(eventIDs))
	for _, raw := range eventIDs {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, ErrInvalidEventIDs
		}
		oids = append(oids, oid)
	}
	app, err := s.appRepo.DeleteEvents(ctx, id, owner, oids)
	return s.appResult(app, err, "delete events")
}

// EventsByAppID returns the event definitions of an ACTIVE app for the
// public tracker. It is not owner scoped.
func (s *AppService) EventsByAppID(ctx context.Context, id string) ([]models.EventDefinition, error) {
	if !utils.IsAppID(id) {
		return nil, ErrInvalidAnalyticsID
	}
	events, err := s.appRepo.FindEventsByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppNotFound
		}
		return nil, fmt.Errorf("find events: %w", err)
	}
	return events, nil
}

// ResumeApp moves an app back to ACTIVE. Administrative use only.
func (s *AppService) ResumeApp(ctx context.Context, id string) (*models.App, error) {
	return s.setStatus(ctx, id, models.AppStatusActive)
}

// PauseApp moves an app to PAUSED. Administrative use only.
func (s *AppService) PauseApp(ctx context.Context, id string) (*models.App, error) {
	return s.setStatus(ctx, id, models.AppStatusPaused)
}

// SuspendApp moves an app to SUSPENDED. Administrative use only.
func (s *AppService) SuspendApp(ctx context.Context, id string) (*models.App, error) {
	return s.setStatus(ctx, id, models.AppStatusSuspended)
}

// PermanentlyDeleteApp removes an app for good. Administrative use only.
func (s *AppService) PermanentlyDeleteApp(ctx context.Context, id string) error {
	if !utils.IsAppID(id) {
		return ErrInvalidAppID
	}
	if err := s.appRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAppNotFound
		}
		return fmt.Errorf("delete app: %w", err)
	}
	log.Ctx(ctx).Warn().Str("app", id).Msg("app permanently deleted")
	return nil
}

// ListDeletedApps returns the soft deleted apps of owner. Administrative use only.
func (s *AppService) ListDeletedApps(ctx context.Context, owner string) ([]*models.AppSummary, error) {
	if _, err := primitive.ObjectIDFromHex(owner); err != nil {
		return nil, ErrUserNotFound
	}
	apps, err := s.appRepo.FindDeletedByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list deleted apps: %w", err)
	}
	return apps, nil
}

func (s *AppService) setStatus(ctx context.Context, id string, to models.AppStatus) (*models.App, error) {
	if !utils.IsAppID(id) {
		return nil, ErrInvalidAppID
	}
	app, err := s.appRepo.SetStatus(ctx, id, to, models.SourcesFor(to))
	if errors.Is(err, repositories.ErrStatusConflict) {
		return nil, ErrStatusTransition
	}
	app, err = s.appResult(app, err, "set app status")
	if err == nil {
		log.Ctx(ctx).Info().Str("app", id).Str("status", string(to)).Msg("app status changed")
	}
	return app, err
}

func (s *AppService) appResult(app *models.App, err error, op string) (*models.App, error) {
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return app, nil
}

func (s *AppService) eventResult(app *models.App, err error, op string) (*models.App, error) {
	switch {
	case errors.Is(err, repositories.ErrDuplicateEvent):
		return nil, ErrEventAlreadyExists
	case errors.Is(err, repositories.ErrEventNotFound):
		return nil, ErrEventNotFound
	}
	return s.appResult(app, err, op)
}

func appName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrAppNameRequired
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", ErrAppNameInvalid
	}
	return name, nil
}

// newEventDefinition validates a complete definition
func newEventDefinition(req models.EventDefinitionRequest) (models.EventDefinition, error) {
	def := models.EventDefinition{ID: primitive.NewObjectID()}
	if def.Event = trimmed(req.Event); def.Event == "" {
		return def, ErrEventRequired
	}
	st := trimmed(req.SelectorType)
	if st == "" {
		return def, ErrSelectorTypeMissing
	}
	if def.SelectorType = models.SelectorType(st); !def.SelectorType.Valid() {
		return def, ErrSelectorTypeInvalid
	}
	if def.Selector = trimmed(req.Selector); def.Selector == "" {
		return def, ErrSelectorRequired
	}
	if def.Trigger = trimmed(req.Trigger); def.Trigger == "" {
		return def, ErrTriggerRequired
	}
	if def.Text = trimmed(req.Text); utf8.RuneCountInString(def.Text) > maxTextLength {
		return def, ErrInvalidText
	}
	if def.Page = trimmed(req.Page); def.Page != "" && !validPage(def.Page) {
		return def, ErrInvalidPage
	}
	return def, nil
}

// newEventPatch validates the supplied fields of a partial update. Required
// fields may not be blanked; optional ones are cleared by an empty string.
func newEventPatch(req models.EventDefinitionRequest) (models.EventPatch, error) {
	var patch models.EventPatch
	if req.Event != nil {
		v := strings.TrimSpace(*req.Event)
		if v == "" {
			return patch, ErrEventRequired
		}
		patch.Event = &v
	}
	if req.SelectorType != nil {
		st := models.SelectorType(strings.TrimSpace(*req.SelectorType))
		if st == "" {
			return patch, ErrSelectorTypeMissing
		}
		if !st.Valid() {
			return patch, ErrSelectorTypeInvalid
		}
		patch.SelectorType = &st
	}
	if req.Selector != nil {
		v := strings.TrimSpace(*req.Selector)
		if v == "" {
			return patch, ErrSelectorRequired
		}
		patch.Selector = &v
	}
	if req.Trigger != nil {
		v := strings.TrimSpace(*req.Trigger)
		if v == "" {
			return patch, ErrTriggerRequired
		}
		patch.Trigger = &v
	}
	if req.Text != nil {
		v := strings.TrimSpace(*req.Text)
		if utf8.RuneCountInString(v) > maxTextLength {
			return patch, ErrInvalidText
		}
		patch.Text = &v
	}
	if req.Page != nil {
		v := strings.TrimSpace(*req.Page)
		if v != "" && !validPage(v) {
			return patch, ErrInvalidPage
		}
		patch.Page = &v
	}
	return patch, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
