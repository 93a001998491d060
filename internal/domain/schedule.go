package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanSlot names one of the two plan-type slots a schedule record can carry.
// One record may legitimately carry both a workout and a meal plan for the
// same date/tier; clearing one slot must not delete the record while the
// other slot is still set.
type PlanSlot string

const (
	SlotWorkout  PlanSlot = "workout"
	SlotMealPlan PlanSlot = "mealPlan"
)

// Schedule maps a calendar date to plan content, either globally (with a
// free/premium tier) or for a single user. Dates are normalized to UTC
// midnight. At most one global record exists per (date, isPublic) pair and
// at most one personal record per (date, user).
type Schedule struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	WorkoutID  *primitive.ObjectID `bson:"workout,omitempty" json:"workout,omitempty"`
	MealPlanID *primitive.ObjectID `bson:"mealPlan,omitempty" json:"mealPlan,omitempty"`
	Date       time.Time           `bson:"date" json:"date"`
	UserID     *primitive.ObjectID `bson:"user,omitempty" json:"user,omitempty"` // set iff personal
	IsGlobal   bool                `bson:"isGlobal" json:"isGlobal"`
	IsPublic   bool                `bson:"isPublic" json:"isPublic"` // meaningful only when IsGlobal
	AssignedBy primitive.ObjectID  `bson:"assignedBy" json:"assignedBy"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// PlanID returns the plan reference held in the given slot, or nil.
func (s *Schedule) PlanID(slot PlanSlot) *primitive.ObjectID {
	if slot == SlotMealPlan {
		return s.MealPlanID
	}
	return s.WorkoutID
}

// SetPlanID stores a plan reference into the given slot.
func (s *Schedule) SetPlanID(slot PlanSlot, id *primitive.ObjectID) {
	if slot == SlotMealPlan {
		s.MealPlanID = id
		return
	}
	s.WorkoutID = id
}

// HasSlot reports whether the given slot holds a plan reference.
func (s *Schedule) HasSlot(slot PlanSlot) bool {
	return s.PlanID(slot) != nil
}

// IsEmpty reports whether neither slot holds a plan reference.
func (s *Schedule) IsEmpty() bool {
	return s.WorkoutID == nil && s.MealPlanID == nil
}
