package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FoodItem is a single food entry inside a meal.
type FoodItem struct {
	Name     string  `bson:"name" json:"name"`
	Quantity string  `bson:"quantity,omitempty" json:"quantity,omitempty"` // e.g. "100g", "1 cup"
	Calories float64 `bson:"calories,omitempty" json:"calories,omitempty"`
	Protein  float64 `bson:"protein,omitempty" json:"protein,omitempty"`
	Carbs    float64 `bson:"carbs,omitempty" json:"carbs,omitempty"`
	Fats     float64 `bson:"fats,omitempty" json:"fats,omitempty"`
}

// Meal is a single meal embedded in a MealPlan.
type Meal struct {
	Name          string     `bson:"name" json:"name"` // e.g. "Oatmeal with Berries"
	Type          string     `bson:"type,omitempty" json:"type,omitempty"` // "breakfast", "lunch", "dinner", "snack"
	Items         []FoodItem `bson:"items,omitempty" json:"items,omitempty"`
	TotalCalories float64    `bson:"totalCalories,omitempty" json:"totalCalories,omitempty"`
	Image         string     `bson:"image,omitempty" json:"image,omitempty"`
	Instructions  string     `bson:"instructions,omitempty" json:"instructions,omitempty"`
}

// MealPlan is an authored nutrition plan owned by a trainer or admin.
type MealPlan struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Meals       []Meal               `bson:"meals,omitempty" json:"meals,omitempty"`
	Media       []Media              `bson:"media,omitempty" json:"media,omitempty"`
	CreatedBy   primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	AssignedTo  []primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"` // legacy direct assignment, superseded by Schedule
	IsPublic    bool                 `bson:"isPublic" json:"isPublic"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// TargetCalories sums the calories across all meals in the plan.
func (m *MealPlan) TargetCalories() float64 {
	var total float64
	for _, meal := range m.Meals {
		if meal.TotalCalories > 0 {
			total += meal.TotalCalories
			continue
		}
		for _, item := range meal.Items {
			total += item.Calories
		}
	}
	return total
}
