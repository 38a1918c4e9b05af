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

// Compile-time check to ensure UserRepository implements the interface
var _ repositories.UserRepository = (*UserRepository)(nil)

// UserRepository handles MongoDB operations for User
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repositories.ErrDuplicate
		}
		return err
	}
	return nil
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindVisibleByID finds an UNVERIFIED or ACTIVE user by ID
func (r *UserRepository) FindVisibleByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{
		"_id":    id,
		"status": bson.M{"$in": []models.UserStatus{models.UserStatusUnverified, models.UserStatusActive}},
	})
}

// ReplaceOTP overwrites the outstanding OTP
func (r *UserRepository) ReplaceOTP(ctx context.Context, id primitive.ObjectID, otp models.OTP, statuses []models.UserStatus) (*models.User, error) {
	filter := bson.M{"_id": id, "status": bson.M{"$in": statuses}}
	update := bson.M{"$set": bson.M{"otp": otp, "updatedAt": time.Now().UTC()}}
	return r.findOneAndUpdate(ctx, filter, update)
}

// IncrementOTPAttempts counts a failed attempt against the code still holding value
func (r *UserRepository) IncrementOTPAttempts(ctx context.Context, id primitive.ObjectID, value string, maxAttempts int) error {
	filter := bson.M{"_id": id, "otp.value": value, "otp.attempts": bson.M{"$lt": maxAttempts}}
	update := bson.M{
		"$inc": bson.M{"otp.attempts": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// ConsumeOTP clears the OTP if it still holds value, activating the account when trial is set
func (r *UserRepository) ConsumeOTP(ctx context.Context, id primitive.ObjectID, value string, maxAttempts int, trial *models.Trial) (*models.User, error) {
	filter := bson.M{"_id": id, "otp.value": value, "otp.attempts": bson.M{"$lt": maxAttempts}}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if trial != nil {
		filter["status"] = models.UserStatusUnverified
		set["status"] = models.UserStatusActive
		set["trial"] = trial
	}
	update := bson.M{"$set": set, "$unset": bson.M{"otp": ""}}
	return r.findOneAndUpdate(ctx, filter, update)
}

// UpdateName changes the display name of a visible user
func (r *UserRepository) UpdateName(ctx context.Context, id primitive.ObjectID, name string) (*models.User, error) {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": []models.UserStatus{models.UserStatusUnverified, models.UserStatusActive}},
	}
	update := bson.M{"$set": bson.M{"name": name, "updatedAt": time.Now().UTC()}}
	return r.findOneAndUpdate(ctx, filter, update)
}

// UpdateStatus sets the account status
func (r *UserRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.UserStatus) (*models.User, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// notFound maps the driver's no-document error to the repository sentinel
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repositories.ErrNotFound
	}
	return err
}
