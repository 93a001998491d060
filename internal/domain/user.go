package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
	RoleUser    Role = "user"
)

// SubscriptionPlan is the tier a user is on.
type SubscriptionPlan string

const (
	PlanFree    SubscriptionPlan = "free"
	PlanPremium SubscriptionPlan = "premium"
)

// SubscriptionStatus tracks whether a premium subscription is usable.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionExpired  SubscriptionStatus = "expired"
)

// Subscription is embedded on the user record. Expiry is recomputed lazily
// on access (login, home fetch), never by a background job.
type Subscription struct {
	Plan      SubscriptionPlan   `bson:"plan" json:"plan"`
	Status    SubscriptionStatus `bson:"status" json:"status"`
	StartDate *time.Time         `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate   *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
}

// User represents an account in the system (admin, trainer or regular user).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"` // Unique
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose via JSON
	Role         Role               `bson:"role" json:"role"`

	// Profile
	Avatar            string   `bson:"avatar,omitempty" json:"avatar,omitempty"`               // URL
	Height            float64  `bson:"height,omitempty" json:"height,omitempty"`               // cm
	CurrentWeight     float64  `bson:"currentWeight,omitempty" json:"currentWeight,omitempty"` // kg
	TargetWeight      float64  `bson:"targetWeight,omitempty" json:"targetWeight,omitempty"`   // kg
	Gender            string   `bson:"gender,omitempty" json:"gender,omitempty"`
	Age               int      `bson:"age,omitempty" json:"age,omitempty"`
	FitnessGoal       string   `bson:"fitnessGoal,omitempty" json:"fitnessGoal,omitempty"`
	ActivityLevel     string   `bson:"activityLevel,omitempty" json:"activityLevel,omitempty"`
	MedicalConditions []string `bson:"medicalConditions,omitempty" json:"medicalConditions,omitempty"`

	Subscription Subscription `bson:"subscription" json:"subscription"`

	// Trainer-specific
	Specialization string `bson:"specialization,omitempty" json:"specialization,omitempty"`

	// User-specific
	AssignedTrainer *primitive.ObjectID `bson:"assignedTrainer,omitempty" json:"assignedTrainer,omitempty"`

	// Verification / moderation
	IsVerified bool       `bson:"isVerified" json:"isVerified"`
	IsBlocked  bool       `bson:"isBlocked" json:"isBlocked"`
	OTP        string     `bson:"otp,omitempty" json:"-"`
	OTPExpires *time.Time `bson:"otpExpires,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

// IsPremium reports whether premium content is visible to this user.
// The plan tag alone is not enough: an expired subscription keeps the
// premium tag on the record but grants no premium access.
func (u *User) IsPremium() bool {
	return u.Subscription.Plan == PlanPremium && u.Subscription.Status != SubscriptionExpired
}
