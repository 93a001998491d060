package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettingsTypePayment is the singleton key for the payment configuration.
const SettingsTypePayment = "payment_config"

// Settings is a singleton configuration document keyed by Type. Today the
// only settings are the manual-payment details shown to subscribing users.
type Settings struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type      string             `bson:"type" json:"type"` // unique
	UPIID     string             `bson:"upiId,omitempty" json:"upiId,omitempty"`
	Amount    float64            `bson:"amount,omitempty" json:"amount,omitempty"`
	Currency  string             `bson:"currency,omitempty" json:"currency,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
