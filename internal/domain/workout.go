package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media is an image/video/gif attachment embedded on content entities.
type Media struct {
	Type string `bson:"type,omitempty" json:"type,omitempty"` // "image", "video", "gif"
	URL  string `bson:"url,omitempty" json:"url,omitempty"`
	Name string `bson:"name,omitempty" json:"name,omitempty"`
}

// Exercise is a single exercise embedded in a Workout.
type Exercise struct {
	Name           string  `bson:"name" json:"name"`
	Sets           int     `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps           int     `bson:"reps,omitempty" json:"reps,omitempty"`
	Duration       int     `bson:"duration,omitempty" json:"duration,omitempty"` // seconds, for cardio/timed
	CaloriesBurned float64 `bson:"caloriesBurned,omitempty" json:"caloriesBurned,omitempty"`
	Rest           int     `bson:"rest,omitempty" json:"rest,omitempty"` // seconds
	Media          []Media `bson:"media,omitempty" json:"media,omitempty"`
	SetType        string  `bson:"setType,omitempty" json:"setType,omitempty"` // "Normal", "Super Set", ...
	Instructions   string  `bson:"instructions,omitempty" json:"instructions,omitempty"`
}

// Workout is an authored workout plan owned by a trainer or admin.
type Workout struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Level       string               `bson:"level,omitempty" json:"level,omitempty"` // "beginner", "intermediate", "advanced"
	Exercises   []Exercise           `bson:"exercises,omitempty" json:"exercises,omitempty"`
	Media       []Media              `bson:"media,omitempty" json:"media,omitempty"`
	CreatedBy   primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	AssignedTo  []primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"` // legacy direct assignment, superseded by Schedule
	IsPublic    bool                 `bson:"isPublic" json:"isPublic"`                         // free-tier sample content
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// TargetCalories sums the estimated calories burned across all exercises.
func (w *Workout) TargetCalories() float64 {
	var total float64
	for _, ex := range w.Exercises {
		total += ex.CaloriesBurned
	}
	return total
}
