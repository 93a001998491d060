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

const progressCollectionName = "progress"

// mongoProgressRepository implements repository.ProgressRepository
type mongoProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressRepository creates a new Progress repository backed by MongoDB.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
	}
}

// Create inserts a new progress sample.
func (r *mongoProgressRepository) Create(ctx context.Context, progress *domain.Progress) (primitive.ObjectID, error) {
	if progress.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("progress requires a user")
	}

	progress.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if progress.Date.IsZero() {
		progress.Date = now
	}
	progress.CreatedAt = now
	progress.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, progress)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted progress ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single progress sample.
func (r *mongoProgressRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Progress, error) {
	var progress domain.Progress
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&progress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// GetByUser returns the user's progress history, newest first.
func (r *mongoProgressRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Progress, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var history []domain.Progress
	if err = cursor.All(ctx, &history); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return history, nil
}

// GetLatestByUser returns the newest sample, used for the dashboard BMI.
func (r *mongoProgressRepository) GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Progress, error) {
	findOptions := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})

	var progress domain.Progress
	err := r.collection.FindOne(ctx, bson.M{"user": userID}, findOptions).Decode(&progress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// SetFeedback stores trainer feedback on a sample.
func (r *mongoProgressRepository) SetFeedback(ctx context.Context, id primitive.ObjectID, feedback string) error {
	update := bson.M{
		"$set": bson.M{
			"trainerFeedback": feedback,
			"updatedAt":       time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProgressIndexes creates necessary indexes for the progress collection.
func EnsureProgressIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
