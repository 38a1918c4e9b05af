package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/outline-analytics-backend/internal/models"
	"github.com/ArowuTest/outline-analytics-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure AppRepository implements the interface
var _ repositories.AppRepository = (*AppRepository)(nil)

var (
	notDeleted   = bson.M{"$ne": models.AppStatusDeleted}
	hideOwner    = bson.M{"owner": 0}
	summaryView  = bson.M{"owner": 0, "events": 0}
	recentFirst  = bson.D{{Key: "updatedAt", Value: -1}}
	returnUpdate = options.After
)

// AppRepository handles MongoDB operations for App
type AppRepository struct {
	collection *mongo.Collection
}

// NewAppRepository creates a new AppRepository
func NewAppRepository(db *mongo.Database) *AppRepository {
	return &AppRepository{
		collection: db.Collection("apps"),
	}
}

// Create inserts a new app
func (r *AppRepository) Create(ctx context.Context, app *models.App) error {
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Events == nil {
		app.Events = []models.EventDefinition{}
	}
	if _, err := r.collection.InsertOne(ctx, app); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repositories.ErrDuplicate
		}
		return err
	}
	return nil
}

// CountByOwner counts the owner's non-deleted apps
func (r *AppRepository) CountByOwner(ctx context.Context, owner string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"owner": owner, "status": notDeleted})
}

// FindByIDAndOwner finds a non-deleted app of owner
func (r *AppRepository) FindByIDAndOwner(ctx context.Context, id, owner string) (*models.App, error) {
	var app models.App
	filter := bson.M{"_id": id, "owner": owner, "status": notDeleted}
	err := r.collection.FindOne(ctx, filter, options.FindOne().SetProjection(hideOwner)).Decode(&app)
	if err != nil {
		return nil, notFound(err)
	}
	return &app, nil
}

// FindAllByOwner lists the owner's non-deleted apps, most recently updated first
func (r *AppRepository) FindAllByOwner(ctx context.Context, owner string) ([]*models.AppSummary, error) {
	return r.findSummaries(ctx, bson.M{"owner": owner, "status": notDeleted})
}

// FindDeletedByOwner lists the owner's soft deleted apps
func (r *AppRepository) FindDeletedByOwner(ctx context.Context, owner string) ([]*models.AppSummary, error) {
	return r.findSummaries(ctx, bson.M{"owner": owner, "status": models.AppStatusDeleted})
}

// Update applies the supplied fields to an ACTIVE app
func (r *AppRepository) Update(ctx context.Context, id, owner string, patch models.AppPatch) (*models.App, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	unset := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Domain != nil {
		if *patch.Domain == "" {
			unset["domain"] = ""
		} else {
			set["domain"] = *patch.Domain
		}
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	filter := bson.M{"_id": id, "owner": owner, "status": models.AppStatusActive}
	return r.findOneAndUpdate(ctx, filter, update, nil)
}

// SoftDelete marks the app DELETED regardless of its status
func (r *AppRepository) SoftDelete(ctx context.Context, id, owner string) (*models.App, error) {
	filter := bson.M{"_id": id, "owner": owner}
	update := bson.M{"$set": bson.M{"status": models.AppStatusDeleted, "updatedAt": time.Now().UTC()}}
	return r.findOneAndUpdate(ctx, filter, update, nil)
}

// AddEvent appends an event definition when no sibling shares its name
func (r *AppRepository) AddEvent(ctx context.Context, id, owner string, def models.EventDefinition) (*models.App, error) {
	filter := bson.M{
		"_id":          id,
		"owner":        owner,
		"status":       models.AppStatusActive,
		"events.event": bson.M{"$ne": def.Event},
	}
	update := bson.M{
		"$push": bson.M{"events": def},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	app, err := r.findOneAndUpdate(ctx, filter, update, nil)
	if !errors.Is(err, repositories.ErrNotFound) {
		return app, err
	}
	return nil, r.explainEventMiss(ctx, id, owner, nil)
}

// UpdateEvent changes the supplied fields of one event definition. A new
// name must not be used by any other definition of the app.
func (r *AppRepository) UpdateEvent(ctx context.Context, id, owner string, eventID primitive.ObjectID, patch models.EventPatch) (*models.App, error) {
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "owner", Value: owner},
		{Key: "status", Value: models.AppStatusActive},
		{Key: "events._id", Value: eventID},
	}
	if patch.Event != nil {
		filter = append(filter, bson.E{Key: "events", Value: bson.M{
			"$not": bson.M{"$elemMatch": bson.M{"event": *patch.Event, "_id": bson.M{"$ne": eventID}}},
		}})
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	unset := bson.M{}
	setField := func(field string, v *string, optional bool) {
		if v == nil {
			return
		}
		if optional && *v == "" {
			unset["events.$[e]."+field] = ""
			return
		}
		set["events.$[e]."+field] = *v
	}
	setField("event", patch.Event, false)
	setField("selector", patch.Selector, false)
	setField("trigger", patch.Trigger, false)
	setField("text", patch.Text, true)
	setField("page", patch.Page, true)
	if patch.SelectorType != nil {
		set["events.$[e].selectorType"] = *patch.SelectorType
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	opts := options.FindOneAndUpdate()
	if !patch.Empty() {
		opts.SetArrayFilters(options.ArrayFilters{Filters: []interface{}{bson.M{"e._id": eventID}}})
	}
	app, err := r.findOneAndUpdate(ctx, filter, update, opts)
	if !errors.Is(err, repositories.ErrNotFound) {
		return app, err
	}
	return nil, r.explainEventMiss(ctx, id, owner, &eventID)
}

// DeleteEvents pulls every definition whose id is listed. Unknown ids are ignored.
func (r *AppRepository) DeleteEvents(ctx context.Context, id, owner string, eventIDs []primitive.ObjectID) (*models.App, error) {
	filter := bson.M{"_id": id, "owner": owner, "status": models.AppStatusActive}
	update := bson.M{
		"$pull": bson.M{"events": bson.M{"_id": bson.M{"$in": eventIDs}}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.findOneAndUpdate(ctx, filter, update, nil)
}

// FindEventsByID returns the event definitions of an ACTIVE app
func (r *AppRepository) FindEventsByID(ctx context.Context, id string) ([]models.EventDefinition, error) {
	var doc struct {
		Events []models.EventDefinition `bson:"events"`
	}
	filter := bson.M{"_id": id, "status": models.AppStatusActive}
	opts := options.FindOne().SetProjection(bson.M{"events": 1})
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	if doc.Events == nil {
		doc.Events = []models.EventDefinition{}
	}
	return doc.Events, nil
}

// SetStatus moves an app to status to when its current status is one of from
func (r *AppRepository) SetStatus(ctx context.Context, id string, to models.AppStatus, from []models.AppStatus) (*models.App, error) {
	filter := bson.M{"_id": id, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}}
	app, err := r.findOneAndUpdate(ctx, filter, update, nil)
	if !errors.Is(err, repositories.ErrNotFound) {
		return app, err
	}
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, repositories.ErrStatusConflict
	}
	return nil, repositories.ErrNotFound
}

// Delete permanently removes an app
func (r *AppRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// explainEventMiss finds out why a conditional event write matched nothing.
// It only reads, so the write itself stays a single atomic operation.
func (r *AppRepository) explainEventMiss(ctx context.Context, id, owner string, eventID *primitive.ObjectID) error {
	filter := bson.M{"_id": id, "owner": owner, "status": models.AppStatusActive}
	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	if eventID != nil {
		filter["events._id"] = *eventID
		if n, err = r.collection.CountDocuments(ctx, filter); err != nil {
			return err
		}
		if n == 0 {
			return repositories.ErrEventNotFound
		}
	}
	return repositories.ErrDuplicateEvent
}

func (r *AppRepository) findOneAndUpdate(ctx context.Context, filter, update interface{}, opts *options.FindOneAndUpdateOptions) (*models.App, error) {
	if opts == nil {
		opts = options.FindOneAndUpdate()
	}
	opts.SetReturnDocument(returnUpdate).SetProjection(hideOwner)
	var app models.App
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&app); err != nil {
		return nil, notFound(err)
	}
	return &app, nil
}

func (r *AppRepository) findSummaries(ctx context.Context, filter bson.M) ([]*models.AppSummary, error) {
	opts := options.Find().SetSort(recentFirst).SetProjection(summaryView)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var apps []*models.AppSummary
	if err = cursor.All(ctx, &apps); err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []*models.AppSummary{}
	}
	return apps, nil
}
