package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Measurements holds optional body measurements in cm.
type Measurements struct {
	Chest  float64 `bson:"chest,omitempty" json:"chest,omitempty"`
	Waist  float64 `bson:"waist,omitempty" json:"waist,omitempty"`
	Hips   float64 `bson:"hips,omitempty" json:"hips,omitempty"`
	Arms   float64 `bson:"arms,omitempty" json:"arms,omitempty"`
	Thighs float64 `bson:"thighs,omitempty" json:"thighs,omitempty"`
}

// ProgressPhoto is a stored photo reference with its angle.
type ProgressPhoto struct {
	URL  string `bson:"url" json:"url"`
	Type string `bson:"type,omitempty" json:"type,omitempty"` // "front", "back", "side"
}

// Progress is a per-user body measurement sample.
type Progress struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user" json:"user"`
	Date            time.Time          `bson:"date" json:"date"`
	Weight          float64            `bson:"weight,omitempty" json:"weight,omitempty"` // kg
	Measurements    Measurements       `bson:"measurements,omitempty" json:"measurements,omitempty"`
	Photos          []ProgressPhoto    `bson:"photos,omitempty" json:"photos,omitempty"`
	TrainerFeedback string             `bson:"trainerFeedback,omitempty" json:"trainerFeedback,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DailyLog holds per-day completion flags for a user. One log exists per
// user per calendar day; writes upsert by day-range match.
type DailyLog struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"user" json:"user"`
	Date             time.Time          `bson:"date" json:"date"`
	MealsCompleted   bool               `bson:"mealsCompleted" json:"mealsCompleted"`
	WorkoutCompleted bool               `bson:"workoutCompleted" json:"workoutCompleted"`
	CheckIn          bool               `bson:"checkIn" json:"checkIn"`
	WaterIntake      float64            `bson:"waterIntake,omitempty" json:"waterIntake,omitempty"` // liters
	Notes            string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
