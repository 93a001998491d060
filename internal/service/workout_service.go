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
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrWorkoutTitle    = errors.New("workout title is required")
	ErrNotOwner        = errors.New("not the owner of this resource")
)

// WorkoutInput carries the authorable fields of a workout plan.
type WorkoutInput struct {
	Title       string
	Description string
	Level       string
	Exercises   []domain.Exercise
	Media       []domain.Media
	IsPublic    bool
}

// WorkoutService defines the interface for workout plan management.
type WorkoutService interface {
	Create(ctx context.Context, creatorID primitive.ObjectID, input WorkoutInput) (*domain.Workout, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	List(ctx context.Context) ([]domain.Workout, error)
	// ListVisibleToUser returns public plans plus plans directly assigned to
	// the user through the legacy assignedTo list.
	ListVisibleToUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	Update(ctx context.Context, id, editorID primitive.ObjectID, isAdmin bool, input WorkoutInput) (*domain.Workout, error)
	// Delete removes the plan and cascades into schedule assignments that
	// reference it.
	Delete(ctx context.Context, id, editorID primitive.ObjectID, isAdmin bool) error
}

// --- Service Implementation ---

type workoutService struct {
	workoutRepo repository.WorkoutRepository
	schedules   ScheduleService
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, schedules ScheduleService) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
		schedules:   schedules,
	}
}

func (s *workoutService) Create(ctx context.Context, creatorID primitive.ObjectID, input WorkoutInput) (*domain.Workout, error) {
	if input.Title == "" {
		return nil, ErrWorkoutTitle
	}
	workout := &domain.Workout{
		Title:       input.Title,
		Description: input.Description,
		Level:       input.Level,
		Exercises:   input.Exercises,
		Media:       input.Media,
		IsPublic:    input.IsPublic,
		CreatedBy:   creatorID,
	}
	id, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = id
	return workout, nil
}

func (s *workoutService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

func (s *workoutService) List(ctx context.Context) ([]domain.Workout, error) {
	workouts, err := s.workoutRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if workouts == nil {
		workouts = []domain.Workout{}
	}
	return workouts, nil
}

func (s *workoutService) ListVisibleToUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	workouts, err := s.workoutRepo.GetVisibleToUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if workouts == nil {
		workouts = []domain.Workout{}
	}
	return workouts, nil
}

func (s *workoutService) Update(ctx context.Context, id, editorID primitive.ObjectID, isAdmin bool, input WorkoutInput) (*domain.Workout, error) {
	workout, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && workout.CreatedBy != editorID {
		return nil, ErrNotOwner
	}
	if input.Title == "" {
		return nil, ErrWorkoutTitle
	}

	workout.Title = input.Title
	workout.Description = input.Description
	workout.Level = input.Level
	workout.Exercises = input.Exercises
	workout.Media = input.Media
	workout.IsPublic = input.IsPublic

	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *workoutService) Delete(ctx context.Context, id, editorID primitive.ObjectID, isAdmin bool) error {
	workout, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && workout.CreatedBy != editorID {
		return ErrNotOwner
	}
	if err := s.workoutRepo.Delete(ctx, id); err != nil {
		return err
	}
	// Orphaned schedule slots would otherwise surface as dangling references.
	return s.schedules.DeletePlanAssignments(ctx, domain.SlotWorkout, id)
}
