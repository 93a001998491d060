package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMessage is a single message embedded in a Chat.
type ChatMessage struct {
	SenderID  primitive.ObjectID `bson:"sender" json:"sender"`
	Content   string             `bson:"content" json:"content"`
	Type      string             `bson:"type,omitempty" json:"type,omitempty"` // "text", "image"
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// LastMessage is a denormalized preview of the newest message.
type LastMessage struct {
	Content   string    `bson:"content,omitempty" json:"content,omitempty"`
	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// Chat is a conversation between two participants (user and trainer/admin)
// with messages embedded on the conversation document.
type Chat struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	Messages     []ChatMessage        `bson:"messages,omitempty" json:"messages,omitempty"`
	LastMessage  LastMessage          `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}
