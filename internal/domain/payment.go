package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus type for the payment ledger lifecycle
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed" // rejected by admin
	PaymentRefunded PaymentStatus = "refunded"
)

// Payment is one ledger row per (user, month, year). A unique index on that
// triple prevents double-billing a calendar month. Payments are submitted by
// users with a screenshot of the bank transfer and approved manually.
type Payment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user" json:"user"`
	Amount          float64            `bson:"amount" json:"amount"`
	Currency        string             `bson:"currency" json:"currency"`
	Month           int                `bson:"month" json:"month"` // 1-12
	Year            int                `bson:"year" json:"year"`
	Status          PaymentStatus      `bson:"status" json:"status"`
	Method          string             `bson:"method,omitempty" json:"method,omitempty"` // "manual", "upi", ...
	TransactionID   string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	BillingCycle    string             `bson:"billingCycle,omitempty" json:"billingCycle,omitempty"`
	PaidAt          *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	ScreenshotURL   string             `bson:"screenshotUrl,omitempty" json:"screenshotUrl,omitempty"`
	RejectionReason string             `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
