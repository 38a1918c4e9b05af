package repositories

import (
	"context"
	"errors"

	"github.com/ArowuTest/outline-analytics-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound means no document matched the filter, including its
	// ownership and status predicates.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate means a unique index rejected the write.
	ErrDuplicate = errors.New("duplicate document")
	// ErrDuplicateEvent means a sibling event definition already uses the name.
	ErrDuplicateEvent = errors.New("event name already exists")
	// ErrEventNotFound means the app exists but has no event with that id.
	ErrEventNotFound = errors.New("event definition not found")
	// ErrStatusConflict means the app exists but its status cannot move to the target.
	ErrStatusConflict = errors.New("status transition not allowed")
)

// UserRepository defines the interface for account data operations.
// Every mutation is a single conditional document update.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindVisibleByID returns UNVERIFIED or ACTIVE accounts only.
	FindVisibleByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// ReplaceOTP overwrites the outstanding code of an account in one of statuses.
	ReplaceOTP(ctx context.Context, id primitive.ObjectID, otp models.OTP, statuses []models.UserStatus) (*models.User, error)
	// IncrementOTPAttempts counts one failed attempt against the code value
	// while fewer than maxAttempts have been recorded.
	IncrementOTPAttempts(ctx context.Context, id primitive.ObjectID, value string, maxAttempts int) error
	// ConsumeOTP clears the code if it still holds value and has attempts
	// left. A non-nil trial also moves an UNVERIFIED account to ACTIVE and
	// stamps the trial.
	ConsumeOTP(ctx context.Context, id primitive.ObjectID, value string, maxAttempts int, trial *models.Trial) (*models.User, error)
	UpdateName(ctx context.Context, id primitive.ObjectID, name string) (*models.User, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.UserStatus) (*models.User, error)
}

// AppRepository defines the interface for the App registry. Owner scoped
// reads and writes never match DELETED apps.
type AppRepository interface {
	Create(ctx context.Context, app *models.App) error
	CountByOwner(ctx context.Context, owner string) (int64, error)
	FindByIDAndOwner(ctx context.Context, id, owner string) (*models.App, error)
	FindAllByOwner(ctx context.Context, owner string) ([]*models.AppSummary, error)
	// Update applies patch to an ACTIVE app.
	Update(ctx context.Context, id, owner string, patch models.AppPatch) (*models.App, error)
	// SoftDelete marks the app DELETED whatever its current status.
	SoftDelete(ctx context.Context, id, owner string) (*models.App, error)
	// AddEvent appends def unless a sibling already uses def.Event.
	AddEvent(ctx context.Context, id, owner string, def models.EventDefinition) (*models.App, error)
	UpdateEvent(ctx context.Context, id, owner string, eventID primitive.ObjectID, patch models.EventPatch) (*models.App, error)
	DeleteEvents(ctx context.Context, id, owner string, eventIDs []primitive.ObjectID) (*models.App, error)
	// FindEventsByID serves the public tracker; only ACTIVE apps match.
	FindEventsByID(ctx context.Context, id string) ([]models.EventDefinition, error)

	// Administrative operations, not owner scoped.
	SetStatus(ctx context.Context, id string, to models.AppStatus, from []models.AppStatus) (*models.App, error)
	Delete(ctx context.Context, id string) error
	FindDeletedByOwner(ctx context.Context, owner string) ([]*models.AppSummary, error)
}

// TrackingEventRepository stores ingested beacons
type TrackingEventRepository interface {
	Create(ctx context.Context, event *models.TrackingEvent) error
	// FindByApp returns events most recent first. page starts at 1.
	FindByApp(ctx context.Context, appID string, page, limit int64) ([]*models.TrackingEvent, error)
}
