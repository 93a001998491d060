package repository

import (
	"context"
	"time"

	"fitcoach/backend/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate record")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	List(ctx context.Context, role domain.Role) ([]domain.User, error) // role "" lists everyone
	Update(ctx context.Context, user *domain.User) error
	UpdateSubscription(ctx context.Context, userID primitive.ObjectID, sub domain.Subscription) error
	SetBlocked(ctx context.Context, userID primitive.ObjectID, blocked bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}

// WorkoutRepository defines the interface for interacting with workout plans.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	List(ctx context.Context) ([]domain.Workout, error)
	GetVisibleToUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MealPlanRepository defines the interface for interacting with meal plans.
type MealPlanRepository interface {
	Create(ctx context.Context, plan *domain.MealPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error)
	List(ctx context.Context) ([]domain.MealPlan, error)
	GetVisibleToUser(ctx context.Context, userID primitive.ObjectID) ([]domain.MealPlan, error)
	Update(ctx context.Context, plan *domain.MealPlan) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ScheduleRepository defines the interface for interacting with assignment
// records. Upserts return the affected record so callers never build
// storage-specific queries for the find-or-create idiom.
type ScheduleRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Schedule, error)
	// FindForUserInRange returns records whose date falls in [start, end]
	// and that are either global or personal to the given user.
	FindForUserInRange(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]domain.Schedule, error)
	// FindByDay returns every record (all tiers, all users) for one day.
	FindByDay(ctx context.Context, day time.Time) ([]domain.Schedule, error)
	// FindGlobalBySlotPlanInRange returns global records of one tier whose
	// given slot references the given plan, within [start, end].
	FindGlobalBySlotPlanInRange(ctx context.Context, slot domain.PlanSlot, planID primitive.ObjectID, isPublic bool, start, end time.Time) ([]domain.Schedule, error)
	// UpsertGlobal sets the slot's plan reference on the global record keyed
	// by (date, isGlobal=true, isPublic), creating it when absent. Legacy
	// records missing the isPublic field match the isPublic=false key.
	UpsertGlobal(ctx context.Context, date time.Time, isPublic bool, slot domain.PlanSlot, planID, assignedBy primitive.ObjectID) (*domain.Schedule, error)
	// UpsertPersonal sets the slot's plan reference on the personal record
	// keyed by (date, user, isGlobal=false), creating it when absent.
	UpsertPersonal(ctx context.Context, date time.Time, userID primitive.ObjectID, slot domain.PlanSlot, planID, assignedBy primitive.ObjectID) (*domain.Schedule, error)
	// ClearSlot unsets one slot on a record, keeping the record itself.
	ClearSlot(ctx context.Context, id primitive.ObjectID, slot domain.PlanSlot) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeleteByPlan clears the slot on every record referencing the plan and
	// removes records left with neither slot set. Used when a plan is deleted.
	DeleteByPlan(ctx context.Context, slot domain.PlanSlot, planID primitive.ObjectID) error
}

// PaymentFilter narrows payment history queries.
type PaymentFilter struct {
	Status domain.PaymentStatus
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

// PaymentStats is the aggregated admin overview of the payment ledger.
type PaymentStats struct {
	TotalEarning    float64 `json:"totalEarning"`
	TotalPending    float64 `json:"totalPending"`
	MonthCollection float64 `json:"monthCollection"`
	MonthPending    float64 `json:"monthPending"`
}

// PaymentRepository defines the interface for the payment ledger.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error)
	FindPending(ctx context.Context) ([]domain.Payment, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID, filter PaymentFilter) ([]domain.Payment, int64, error)
	FindByMonth(ctx context.Context, month, year int) ([]domain.Payment, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.PaymentStatus, paidAt *time.Time, rejectionReason string) error
	Stats(ctx context.Context, month, year int) (*PaymentStats, error)
}

// ProgressRepository defines the interface for body measurement samples.
type ProgressRepository interface {
	Create(ctx context.Context, progress *domain.Progress) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Progress, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Progress, error) // newest first
	GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Progress, error)
	SetFeedback(ctx context.Context, id primitive.ObjectID, feedback string) error
}

// DailyLogPatch carries the fields of a daily log being set; nil fields are
// left untouched on an existing log.
type DailyLogPatch struct {
	MealsCompleted   *bool
	WorkoutCompleted *bool
	CheckIn          *bool
	WaterIntake      *float64
	Notes            *string
}

// DailyLogRepository defines the interface for per-day completion logs.
type DailyLogRepository interface {
	// UpsertByDay applies the patch to the user's log for the day covering
	// the given date, creating the log when absent. One log per user per day.
	UpsertByDay(ctx context.Context, userID primitive.ObjectID, day time.Time, patch DailyLogPatch) (*domain.DailyLog, error)
	GetByDay(ctx context.Context, userID primitive.ObjectID, day time.Time) (*domain.DailyLog, error)
}

// ChatRepository defines the interface for conversations.
type ChatRepository interface {
	GetOrCreateByParticipants(ctx context.Context, a, b primitive.ObjectID) (*domain.Chat, error)
	GetByParticipants(ctx context.Context, a, b primitive.ObjectID) (*domain.Chat, error)
	AppendMessage(ctx context.Context, chatID primitive.ObjectID, msg domain.ChatMessage) error
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Chat, error)
}

// SettingsRepository defines the interface for singleton settings documents.
type SettingsRepository interface {
	GetByType(ctx context.Context, settingsType string) (*domain.Settings, error)
	Upsert(ctx context.Context, settings *domain.Settings) (*domain.Settings, error)
}
