package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidID = errors.New("invalid id")
)

// parseObjectID converts a hex string into an ObjectID.
func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// SubscriptionDisplay classifies the subscription for the dashboard banner.
type SubscriptionDisplay string

const (
	SubscriptionDisplayFree         SubscriptionDisplay = "free"
	SubscriptionDisplayActive       SubscriptionDisplay = "active"
	SubscriptionDisplayExpiringSoon SubscriptionDisplay = "expiring_soon"
	SubscriptionDisplayExpired      SubscriptionDisplay = "expired"
)

// HomeCalories summarizes the day's calorie targets and completion.
type HomeCalories struct {
	WorkoutTarget    float64 `json:"workoutTarget"`
	MealTarget       float64 `json:"mealTarget"`
	WorkoutCompleted bool    `json:"workoutCompleted"`
	MealsCompleted   bool    `json:"mealsCompleted"`
}

// HomeSubscription is the dashboard's subscription banner payload.
type HomeSubscription struct {
	Plan     domain.SubscriptionPlan `json:"plan"`
	Display  SubscriptionDisplay     `json:"display"`
	EndDate  *time.Time              `json:"endDate,omitempty"`
	DaysLeft int                     `json:"daysLeft"`
}

// HomeView is the aggregated dashboard for one user, computed for "today" in
// the business timezone.
type HomeView struct {
	User         *domain.User      `json:"user"`
	Date         time.Time         `json:"date"`
	Today        *DaySchedule      `json:"today"`
	DailyLog     *domain.DailyLog  `json:"dailyLog"`
	Calories     HomeCalories      `json:"calories"`
	BMI          float64           `json:"bmi"`
	Subscription HomeSubscription  `json:"subscription"`
	Progress     []domain.Progress `json:"recentProgress"`
}

// AdminOverview summarizes the user base for the admin dashboard.
type AdminOverview struct {
	TotalUsers    int64         `json:"totalUsers"`
	TotalTrainers int64         `json:"totalTrainers"`
	RecentUsers   []domain.User `json:"recentUsers"`
}

// UserService defines the interface for user management and the dashboard.
type UserService interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.User, error)
	SetBlocked(ctx context.Context, id string, blocked bool) error
	Delete(ctx context.Context, id string) error
	AssignTrainer(ctx context.Context, userID, trainerID string) (*domain.User, error)

	// GetHome aggregates the dashboard: today's resolved schedule, the daily
	// log, calorie targets, BMI and the subscription banner.
	GetHome(ctx context.Context, userID string) (*HomeView, error)

	// GetAdminOverview returns user/trainer counts and the newest signups.
	GetAdminOverview(ctx context.Context) (*AdminOverview, error)
}

// ProfileUpdate carries the profile fields a user or admin may change.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name              *string
	Phone             *string
	Avatar            *string
	Height            *float64
	CurrentWeight     *float64
	TargetWeight      *float64
	Gender            *string
	Age               *int
	FitnessGoal       *string
	ActivityLevel     *string
	MedicalConditions *[]string
	Specialization    *string
}

// --- Service Implementation ---

type userService struct {
	userRepo      repository.UserRepository
	progressRepo  repository.ProgressRepository
	dailyLogRepo  repository.DailyLogRepository
	schedules     ScheduleService
	subscriptions SubscriptionService
	timezone      *time.Location
}

// NewUserService creates a new instance of userService.
func NewUserService(
	userRepo repository.UserRepository,
	progressRepo repository.ProgressRepository,
	dailyLogRepo repository.DailyLogRepository,
	schedules ScheduleService,
	subscriptions SubscriptionService,
	timezone *time.Location,
) UserService {
	if timezone == nil {
		timezone = time.UTC
	}
	return &userService{
		userRepo:      userRepo,
		progressRepo:  progressRepo,
		dailyLogRepo:  dailyLogRepo,
		schedules:     schedules,
		subscriptions: subscriptions,
		timezone:      timezone,
	}
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx, role)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// UpdateProfile applies the non-nil fields of the update to the user.
func (s *userService) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}
	if update.Height != nil {
		user.Height = *update.Height
	}
	if update.CurrentWeight != nil {
		user.CurrentWeight = *update.CurrentWeight
	}
	if update.TargetWeight != nil {
		user.TargetWeight = *update.TargetWeight
	}
	if update.Gender != nil {
		user.Gender = *update.Gender
	}
	if update.Age != nil {
		user.Age = *update.Age
	}
	if update.FitnessGoal != nil {
		user.FitnessGoal = *update.FitnessGoal
	}
	if update.ActivityLevel != nil {
		user.ActivityLevel = *update.ActivityLevel
	}
	if update.MedicalConditions != nil {
		user.MedicalConditions = *update.MedicalConditions
	}
	if update.Specialization != nil {
		user.Specialization = *update.Specialization
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) SetBlocked(ctx context.Context, id string, blocked bool) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	err = s.userRepo.SetBlocked(ctx, oid, blocked)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *userService) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	err = s.userRepo.Delete(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// AssignTrainer links a trainer to a user.
func (s *userService) AssignTrainer(ctx context.Context, userID, trainerID string) (*domain.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	trainer, err := s.GetByID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	if trainer.Role != domain.RoleTrainer && trainer.Role != domain.RoleAdmin {
		return nil, errors.New("assignee is not a trainer")
	}

	user.AssignedTrainer = &trainer.ID
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetAdminOverview returns user/trainer counts and the five newest signups.
func (s *userService) GetAdminOverview(ctx context.Context) (*AdminOverview, error) {
	totalUsers, err := s.userRepo.CountByRole(ctx, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	totalTrainers, err := s.userRepo.CountByRole(ctx, domain.RoleTrainer)
	if err != nil {
		return nil, err
	}

	recent, err := s.userRepo.List(ctx, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	if recent == nil {
		recent = []domain.User{}
	}

	return &AdminOverview{
		TotalUsers:    totalUsers,
		TotalTrainers: totalTrainers,
		RecentUsers:   recent,
	}, nil
}

// bmi computes body mass index from height in cm and weight in kg, rounded
// to one decimal. Zero when either input is missing.
func bmi(heightCm, weightKg float64) float64 {
	if heightCm <= 0 || weightKg <= 0 {
		return 0
	}
	meters := heightCm / 100
	return math.Round(weightKg/(meters*meters)*10) / 10
}

// classifySubscription maps a subscription onto the dashboard banner state.
// "Expiring soon" means two days or fewer remain.
func classifySubscription(sub domain.Subscription, now time.Time) HomeSubscription {
	view := HomeSubscription{Plan: sub.Plan, EndDate: sub.EndDate}
	if sub.Plan != domain.PlanPremium {
		view.Display = SubscriptionDisplayFree
		return view
	}
	if sub.Status == domain.SubscriptionExpired || (sub.EndDate != nil && !sub.EndDate.After(now)) {
		view.Display = SubscriptionDisplayExpired
		return view
	}
	view.Display = SubscriptionDisplayActive
	if sub.EndDate != nil {
		left := int(math.Ceil(sub.EndDate.Sub(now).Hours() / 24))
		if left < 0 {
			left = 0
		}
		view.DaysLeft = left
		if left <= 2 {
			view.Display = SubscriptionDisplayExpiringSoon
		}
	}
	return view
}

// GetHome aggregates the dashboard for "today" in the business timezone.
func (s *userService) GetHome(ctx context.Context, userID string) (*HomeView, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user, err = s.subscriptions.CheckExpiry(ctx, user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	today := businessToday(now, s.timezone)

	// Expired premium users fall back to the free sample track; their
	// personal and premium assignments are hidden until they renew.
	suppressPersonal := user.Subscription.Plan == domain.PlanPremium &&
		user.Subscription.Status == domain.SubscriptionExpired

	resolved, err := s.schedules.ResolveForUser(ctx, user, today, suppressPersonal)
	if err != nil {
		return nil, err
	}

	dailyLog, err := s.dailyLogRepo.GetByDay(ctx, user.ID, today)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	progress, err := s.progressRepo.GetByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(progress) > 5 {
		progress = progress[:5]
	}
	if progress == nil {
		progress = []domain.Progress{}
	}

	calories := HomeCalories{}
	if resolved != nil {
		if resolved.Workout != nil {
			calories.WorkoutTarget = resolved.Workout.TargetCalories()
		}
		if resolved.MealPlan != nil {
			calories.MealTarget = resolved.MealPlan.TargetCalories()
		}
	}
	if dailyLog != nil {
		calories.WorkoutCompleted = dailyLog.WorkoutCompleted
		calories.MealsCompleted = dailyLog.MealsCompleted
	}

	weight := user.CurrentWeight
	if len(progress) > 0 && progress[0].Weight > 0 {
		weight = progress[0].Weight
	}

	return &HomeView{
		User:         user,
		Date:         today,
		Today:        resolved,
		DailyLog:     dailyLog,
		Calories:     calories,
		BMI:          bmi(user.Height, weight),
		Subscription: classifySubscription(user.Subscription, now),
		Progress:     progress,
	}, nil
}
