//go:build integration

package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/ArowuTest/outline-analytics-backend/internal/models"
	"github.com/ArowuTest/outline-analytics-backend/internal/repositories"
	"github.com/ArowuTest/outline-analytics-backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func newTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcmongo.Run(ctx, "mongo:6")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database("outline_test")
	require.NoError(t, EnsureIndexes(ctx, db))
	return db
}

func newDefinition(name string) models.EventDefinition {
	return models.EventDefinition{
		ID:           primitive.NewObjectID(),
		Event:        name,
		SelectorType: models.SelectorTypeID,
		Selector:     "#" + name,
		Trigger:      "click",
	}
}

func TestAppRepositoryIntegration(t *testing.T) {
	ctx := context.Background()
	repo := NewAppRepository(newTestDB(t))

	app := &models.App{ID: utils.NewAppID(), Owner: "owner-1", Name: "Site", Status: models.AppStatusActive}
	require.NoError(t, repo.Create(ctx, app))

	signup := newDefinition("signup")
	_, err := repo.AddEvent(ctx, app.ID, "owner-1", signup)
	require.NoError(t, err)

	t.Run("duplicate event name", func(t *testing.T) {
		_, err := repo.AddEvent(ctx, app.ID, "owner-1", newDefinition("signup"))
		assert.ErrorIs(t, err, repositories.ErrDuplicateEvent)
	})

	t.Run("foreign owner", func(t *testing.T) {
		_, err := repo.AddEvent(ctx, app.ID, "owner-2", newDefinition("other"))
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("rename guard", func(t *testing.T) {
		buy := newDefinition("buy")
		_, err := repo.AddEvent(ctx, app.ID, "owner-1", buy)
		require.NoError(t, err)

		taken := "signup"
		_, err = repo.UpdateEvent(ctx, app.ID, "owner-1", buy.ID, models.EventPatch{Event: &taken})
		assert.ErrorIs(t, err, repositories.ErrDuplicateEvent)

		same := "buy"
		selector := ".buy"
		updated, err := repo.UpdateEvent(ctx, app.ID, "owner-1", buy.ID, models.EventPatch{Event: &same, Selector: &selector})
		require.NoError(t, err)
		assert.Equal(t, ".buy", updated.Events[1].Selector)

		_, err = repo.UpdateEvent(ctx, app.ID, "owner-1", primitive.NewObjectID(), models.EventPatch{Selector: &selector})
		assert.ErrorIs(t, err, repositories.ErrEventNotFound)
	})

	t.Run("delete events ignores unknown ids", func(t *testing.T) {
		updated, err := repo.DeleteEvents(ctx, app.ID, "owner-1", []primitive.ObjectID{signup.ID, primitive.NewObjectID()})
		require.NoError(t, err)
		require.Len(t, updated.Events, 1)
		assert.Equal(t, "buy", updated.Events[0].Event)
	})

	t.Run("soft delete hides and is idempotent", func(t *testing.T) {
		_, err := repo.SoftDelete(ctx, app.ID, "owner-1")
		require.NoError(t, err)
		_, err = repo.SoftDelete(ctx, app.ID, "owner-1")
		require.NoError(t, err)

		_, err = repo.FindByIDAndOwner(ctx, app.ID, "owner-1")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		list, err := repo.FindAllByOwner(ctx, "owner-1")
		require.NoError(t, err)
		assert.Empty(t, list)
		n, err := repo.CountByOwner(ctx, "owner-1")
		require.NoError(t, err)
		assert.Zero(t, n)

		deleted, err := repo.FindDeletedByOwner(ctx, "owner-1")
		require.NoError(t, err)
		assert.Len(t, deleted, 1)
	})

	t.Run("admin transitions", func(t *testing.T) {
		_, err := repo.SetStatus(ctx, app.ID, models.AppStatusPaused, models.SourcesFor(models.AppStatusPaused))
		assert.ErrorIs(t, err, repositories.ErrStatusConflict)

		resumed, err := repo.SetStatus(ctx, app.ID, models.AppStatusActive, models.SourcesFor(models.AppStatusActive))
		require.NoError(t, err)
		assert.Equal(t, models.AppStatusActive, resumed.Status)

		require.NoError(t, repo.Delete(ctx, app.ID))
		assert.ErrorIs(t, repo.Delete(ctx, app.ID), repositories.ErrNotFound)
	})
}

func TestUserRepositoryIntegration(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	user := &models.User{
		Email:  "jane@example.com",
		Status: models.UserStatusUnverified,
		OTP:    &models.OTP{Value: "123456", ExpiresAt: time.Now().Add(10 * time.Minute)},
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.ErrorIs(t, repo.Create(ctx, &models.User{Email: "jane@example.com"}), repositories.ErrDuplicate)

	require.NoError(t, repo.IncrementOTPAttempts(ctx, user.ID, "123456", 5))
	found, err := repo.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, found.OTP.Attempts)

	trial := &models.Trial{Start: time.Now(), End: time.Now().Add(time.Hour), TotalEvents: 10}
	_, err = repo.ConsumeOTP(ctx, user.ID, "000000", 5, trial)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	active, err := repo.ConsumeOTP(ctx, user.ID, "123456", 5, trial)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, active.Status)
	assert.Nil(t, active.OTP)
	assert.NotNil(t, active.Trial)
}

func TestTrackingEventRepositoryIntegration(t *testing.T) {
	ctx := context.Background()
	repo := NewTrackingEventRepository(newTestDB(t))

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.TrackingEvent{
			App:        "OA-1",
			Event:      "pageview",
			EventType:  models.EventTypePageview,
			CapturedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	page, err := repo.FindByApp(ctx, "OA-1", 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].CapturedAt.After(page[1].CapturedAt))

	rest, err := repo.FindByApp(ctx, "OA-1", 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
