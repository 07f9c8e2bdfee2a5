package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ritujaab/workout-planner/internal/domain"
	"github.com/ritujaab/workout-planner/internal/repository"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
		now:        time.Now,
	}
}

// Create inserts a new workout and stamps its id and timestamps.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID || workout.Title == "" {
		return primitive.NilObjectID, errors.New("workout requires userId and title")
	}
	workout.ID = primitive.NewObjectID()
	now := r.now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, fmt.Errorf("insert workout: %w", err)
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout owned by owner.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, owner, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	filter := bson.M{"_id": id, "userId": owner}
	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find workout: %w", err)
	}
	return &workout, nil
}

// ListByOwner retrieves the owner's workouts, newest first, optionally for one weekday.
func (r *mongoWorkoutRepository) ListByOwner(ctx context.Context, owner primitive.ObjectID, day string) ([]domain.Workout, error) {
	filter := bson.M{"userId": owner}
	if day != "" {
		filter["dayOfWeek"] = day
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, fmt.Errorf("decode workouts: %w", err)
	}
	return workouts, nil
}

// FindByTitleKey returns another workout of the owner with the same
// lower-cased title on the same weekday, or ErrNotFound.
func (r *mongoWorkoutRepository) FindByTitleKey(ctx context.Context, owner primitive.ObjectID, titleKey, day string, excludeID primitive.ObjectID) (*domain.Workout, error) {
	filter := bson.M{
		"userId":    owner,
		"titleKey":  titleKey,
		"dayOfWeek": day,
	}
	if excludeID != primitive.NilObjectID {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	var workout domain.Workout
	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find workout by title: %w", err)
	}
	return &workout, nil
}

// Replace overwrites the stored document with workout. The owner is part of
// the filter so a document can never move between users.
func (r *mongoWorkoutRepository) Replace(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return errors.New("workout ID is required for replace")
	}
	workout.UpdatedAt = r.now().UTC()

	filter := bson.M{"_id": workout.ID, "userId": workout.UserID}
	result, err := r.collection.ReplaceOne(ctx, filter, workout)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("replace workout: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a workout owned by owner and returns the removed document.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, owner, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	filter := bson.M{"_id": id, "userId": owner}
	err := r.collection.FindOneAndDelete(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("delete workout: %w", err)
	}
	return &workout, nil
}

// EnsureWorkoutIndexes creates the workout indexes. Call during startup.
// The unique index backs the one-title-per-weekday rule.
func EnsureWorkoutIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "dayOfWeek", Value: 1}, {Key: "titleKey", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_owner_day_title"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("owner_created"),
		},
	}
	if _, err := db.Collection(workoutCollectionName).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create workout indexes: %w", err)
	}
	return nil
}
