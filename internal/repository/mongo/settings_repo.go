package mongo

import (
	"context"
	"errors"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const settingsCollectionName = "settings"

// mongoSettingsRepository implements repository.SettingsRepository
type mongoSettingsRepository struct {
	collection *mongo.Collection
}

// NewMongoSettingsRepository creates a new Settings repository backed by MongoDB.
func NewMongoSettingsRepository(db *mongo.Database) repository.SettingsRepository {
	return &mongoSettingsRepository{
		collection: db.Collection(settingsCollectionName),
	}
}

// GetByType retrieves the singleton settings document for the given key.
func (r *mongoSettingsRepository) GetByType(ctx context.Context, settingsType string) (*domain.Settings, error) {
	var settings domain.Settings
	err := r.collection.FindOne(ctx, bson.M{"type": settingsType}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &settings, nil
}

// Upsert replaces the settings document for its type, creating it when absent.
func (r *mongoSettingsRepository) Upsert(ctx context.Context, settings *domain.Settings) (*domain.Settings, error) {
	now := time.Now().UTC()
	filter := bson.M{"type": settings.Type}
	update := bson.M{
		"$set": bson.M{
			"upiId":     settings.UPIID,
			"amount":    settings.Amount,
			"currency":  settings.Currency,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved domain.Settings
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// EnsureSettingsIndexes creates necessary indexes for the settings collection.
func EnsureSettingsIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "type", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
