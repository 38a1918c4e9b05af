package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/outline-analytics-backend/internal/models"
	"github.com/ArowuTest/outline-analytics-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure TrackingEventRepository implements the interface
var _ repositories.TrackingEventRepository = (*TrackingEventRepository)(nil)

// TrackingEventRepository handles MongoDB operations for ingested beacons
type TrackingEventRepository struct {
	collection *mongo.Collection
}

// NewTrackingEventRepository creates a new TrackingEventRepository
func NewTrackingEventRepository(db *mongo.Database) *TrackingEventRepository {
	return &TrackingEventRepository{
		collection: db.Collection("events"),
	}
}

// Create inserts one beacon
func (r *TrackingEventRepository) Create(ctx context.Context, event *models.TrackingEvent) error {
	now := time.Now().UTC()
	event.ID = primitive.NewObjectID()
	event.CreatedAt = now
	event.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, event)
	return err
}

// FindByApp returns a page of the app's events, most recently captured first
func (r *TrackingEventRepository) FindByApp(ctx context.Context, appID string, page, limit int64) ([]*models.TrackingEvent, error) {
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "capturedAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"app": appID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*models.TrackingEvent
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*models.TrackingEvent{}
	}
	return events, nil
}
