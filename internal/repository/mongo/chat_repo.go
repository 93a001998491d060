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

const chatCollectionName = "chats"

// mongoChatRepository implements repository.ChatRepository
type mongoChatRepository struct {
	collection *mongo.Collection
}

// NewMongoChatRepository creates a new Chat repository backed by MongoDB.
func NewMongoChatRepository(db *mongo.Database) repository.ChatRepository {
	return &mongoChatRepository{
		collection: db.Collection(chatCollectionName),
	}
}

// participantsFilter matches a conversation containing both participants,
// regardless of insertion order.
func participantsFilter(a, b primitive.ObjectID) bson.M {
	return bson.M{"participants": bson.M{"$all": bson.A{a, b}}}
}

// GetByParticipants returns the conversation between two users.
func (r *mongoChatRepository) GetByParticipants(ctx context.Context, a, b primitive.ObjectID) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.collection.FindOne(ctx, participantsFilter(a, b)).Decode(&chat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &chat, nil
}

// GetOrCreateByParticipants returns the conversation between two users,
// creating an empty one when none exists.
func (r *mongoChatRepository) GetOrCreateByParticipants(ctx context.Context, a, b primitive.ObjectID) (*domain.Chat, error) {
	chat, err := r.GetByParticipants(ctx, a, b)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	newChat := &domain.Chat{
		ID:           primitive.NewObjectID(),
		Participants: []primitive.ObjectID{a, b},
		Messages:     []domain.ChatMessage{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.collection.InsertOne(ctx, newChat); err != nil {
		return nil, err
	}
	return newChat, nil
}

// AppendMessage pushes a message onto a conversation and refreshes the
// denormalized last-message preview.
func (r *mongoChatRepository) AppendMessage(ctx context.Context, chatID primitive.ObjectID, msg domain.ChatMessage) error {
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set": bson.M{
			"lastMessage": domain.LastMessage{Content: msg.Content, CreatedAt: msg.CreatedAt},
			"updatedAt":   time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": chatID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListForUser returns every conversation the user participates in, most
// recently active first.
func (r *mongoChatRepository) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Chat, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"participants": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var chats []domain.Chat
	if err = cursor.All(ctx, &chats); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return chats, nil
}

// EnsureChatIndexes creates necessary indexes for the chats collection.
func EnsureChatIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "participants", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "updatedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
