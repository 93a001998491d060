package service

import (
	"context"
	"errors"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrMealPlanNotFound = errors.New("meal plan not found")
	ErrMealPlanTitle    = errors.New("meal plan title is required")
)

// MealPlanInput carries the authorable fields of a meal plan.
type MealPlanInput struct {
	Title       string
	Description string
	Meals       []domain.Meal
	Media       []domain.Media
	IsPublic    bool
}

// MealPlanService defines the interface for meal plan management.
type MealPlanService interface {
	Create(ctx context.Context, creatorID primitive.ObjectID, input MealPlanInput) (*domain.MealPlan, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error)
	List(ctx context.Context) ([]domain.MealPlan, error)
	ListVisibleToUser(ctx context.Context, userID primitive.ObjectID) ([]domain.MealPlan, error)
	Update(ctx context.Context, id, editorID primitive.ObjectID, isAdmin bool, input MealPlanInput) (*domain.MealPlan, error)
	Delete(ctx context.Context, id, editorID primitive.ObjectID, isAdmin bool) error
}

// --- Service Implementation ---

type mealPlanService struct {
	mealPlanRepo repository.MealPlanRepository
	schedules    ScheduleService
}

// NewMealPlanService creates a new instance of mealPlanService.
func NewMealPlanService(mealPlanRepo repository.MealPlanRepository, schedules ScheduleService) MealPlanService {
	return &mealPlanService{
		mealPlanRepo: mealPlanRepo,
		schedules:    schedules,
	}
}

func (s *mealPlanService) Create(ctx context.Context, creatorID primitive.ObjectID, input MealPlanInput) (*domain.MealPlan, error) {
	if input.Title == "" {
		return nil, ErrMealPlanTitle
	}
	plan := &domain.MealPlan{
		Title:       input.Title,
		Description: input.Description,
		Meals:       input.Meals,
		Media:       input.Media,
		IsPublic:    input.IsPublic,
		CreatedBy:   creatorID,
	}
	id, err := s.mealPlanRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = id
	return plan, nil
}

func (s *mealPlanService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error) {
	plan, err := s.mealPlanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *mealPlanService) List(ctx context.Context) ([]domain.MealPlan, error) {
	plans, err := s.mealPlanRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []domain.MealPlan{}
	}
	return plans, nil
}

func (s *mealPlanService) ListVisibleToUser(ctx context.Context, userID primitive.ObjectID) ([]domain.MealPlan, error) {
	plans, err := s.mealPlanRepo.GetVisibleToUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []domain.MealPlan{}
	}
	return plans, nil
}

func (s *mealPlanService) Update(ctx context.Context, id, editorID primitive.ObjectID, isAdmin bool, input MealPlanInput) (*domain.MealPlan, error) {
	plan, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && plan.CreatedBy != editorID {
		return nil, ErrNotOwner
	}
	if input.Title == "" {
		return nil, ErrMealPlanTitle
	}

	plan.Title = input.Title
	plan.Description = input.Description
	plan.Meals = input.Meals
	plan.Media = input.Media
	plan.IsPublic = input.IsPublic

	if err := s.mealPlanRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *mealPlanService) Delete(ctx context.Context, id, editorID primitive.ObjectID, isAdmin bool) error {
	plan, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && plan.CreatedBy != editorID {
		return ErrNotOwner
	}
	if err := s.mealPlanRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.schedules.DeletePlanAssignments(ctx, domain.SlotMealPlan, id)
}
