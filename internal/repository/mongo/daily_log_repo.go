package mongo

import (
	"context"
	"errors"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dailyLogCollectionName = "daily_logs"

// mongoDailyLogRepository implements repository.DailyLogRepository
type mongoDailyLogRepository struct {
	collection *mongo.Collection
}

// NewMongoDailyLogRepository creates a new DailyLog repository backed by MongoDB.
func NewMongoDailyLogRepository(db *mongo.Database) repository.DailyLogRepository {
	return &mongoDailyLogRepository{
		collection: db.Collection(dailyLogCollectionName),
	}
}

// dayWindow returns the [00:00, 24:00) UTC window containing the given day.
func dayWindow(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// UpsertByDay applies the patch to the user's log for the day covering the
// given date, creating the log at UTC midnight when absent.
func (r *mongoDailyLogRepository) UpsertByDay(ctx context.Context, userID primitive.ObjectID, day time.Time, patch repository.DailyLogPatch) (*domain.DailyLog, error) {
	start, end := dayWindow(day)
	now := time.Now().UTC()

	filter := bson.M{
		"user": userID,
		"date": bson.M{"$gte": start, "$lt": end},
	}

	set := bson.M{"updatedAt": now}
	if patch.MealsCompleted != nil {
		set["mealsCompleted"] = *patch.MealsCompleted
	}
	if patch.WorkoutCompleted != nil {
		set["workoutCompleted"] = *patch.WorkoutCompleted
	}
	if patch.CheckIn != nil {
		set["checkIn"] = *patch.CheckIn
	}
	if patch.WaterIntake != nil {
		set["waterIntake"] = *patch.WaterIntake
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}

	update := bson.M{
		"$set": set,
		// "user" is carried into the inserted document from the equality
		// part of the filter; listing it again here would conflict.
		"$setOnInsert": bson.M{
			"date":      start,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var log domain.DailyLog
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&log)
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// GetByDay returns the user's log for the day covering the given date.
func (r *mongoDailyLogRepository) GetByDay(ctx context.Context, userID primitive.ObjectID, day time.Time) (*domain.DailyLog, error) {
	start, end := dayWindow(day)
	filter := bson.M{
		"user": userID,
		"date": bson.M{"$gte": start, "$lt": end},
	}

	var log domain.DailyLog
	err := r.collection.FindOne(ctx, filter).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// EnsureDailyLogIndexes creates necessary indexes for the daily_logs collection.
func EnsureDailyLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One log per user per day; dates are stored at UTC midnight.
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
