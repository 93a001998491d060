package service

import (
	"context"
	"errors"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrChatNotFound      = errors.New("conversation not found")
	ErrMessageEmpty      = errors.New("message content is required")
	ErrChatSelfMessage   = errors.New("cannot start a conversation with yourself")
	ErrChatNoCounterpart = errors.New("no trainer assigned to chat with")
)

// ChatService defines the interface for user-trainer conversations.
type ChatService interface {
	// GetMyConversation opens (or creates) the user's conversation with their
	// assigned trainer, falling back to an admin when none is assigned.
	GetMyConversation(ctx context.Context, userID primitive.ObjectID) (*domain.Chat, error)
	GetConversationWith(ctx context.Context, a, b primitive.ObjectID) (*domain.Chat, error)
	SendMessage(ctx context.Context, senderID, recipientID primitive.ObjectID, content string) (*domain.ChatMessage, error)
	ListConversations(ctx context.Context, userID primitive.ObjectID) ([]domain.Chat, error)
}

// --- Service Implementation ---

type chatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
}

// NewChatService creates a new instance of chatService.
func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository) ChatService {
	return &chatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
	}
}

// counterpartFor picks who a regular user talks to: their assigned trainer,
// or any admin when no trainer is assigned yet.
func (s *chatService) counterpartFor(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.AssignedTrainer != nil {
		return *user.AssignedTrainer, nil
	}
	admins, err := s.userRepo.List(ctx, domain.RoleAdmin)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if len(admins) == 0 {
		return primitive.NilObjectID, ErrChatNoCounterpart
	}
	return admins[0].ID, nil
}

func (s *chatService) GetMyConversation(ctx context.Context, userID primitive.ObjectID) (*domain.Chat, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	counterpart, err := s.counterpartFor(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.chatRepo.GetOrCreateByParticipants(ctx, userID, counterpart)
}

func (s *chatService) GetConversationWith(ctx context.Context, a, b primitive.ObjectID) (*domain.Chat, error) {
	return s.chatRepo.GetOrCreateByParticipants(ctx, a, b)
}

func (s *chatService) SendMessage(ctx context.Context, senderID, recipientID primitive.ObjectID, content string) (*domain.ChatMessage, error) {
	if content == "" {
		return nil, ErrMessageEmpty
	}
	if senderID == recipientID {
		return nil, ErrChatSelfMessage
	}

	chat, err := s.chatRepo.GetOrCreateByParticipants(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}

	msg := domain.ChatMessage{
		SenderID:  senderID,
		Content:   content,
		Type:      "text",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.chatRepo.AppendMessage(ctx, chat.ID, msg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return &msg, nil
}

func (s *chatService) ListConversations(ctx context.Context, userID primitive.ObjectID) ([]domain.Chat, error) {
	chats, err := s.chatRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if chats == nil {
		chats = []domain.Chat{}
	}
	return chats, nil
}
