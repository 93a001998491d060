package service

import (
	"context"
	"errors"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrScheduleValidation = errors.New("schedule requires a plan id and a date")
	ErrScheduleUserNeeded = errors.New("user id is required for non-global assignment")
	ErrScheduleNotFound   = errors.New("schedule assignment not found")
	ErrPlanNotFound       = errors.New("referenced plan not found")
	ErrUserNotFound       = errors.New("user not found")
)

// AssignScheduleInput is the single-date assignment command.
type AssignScheduleInput struct {
	Slot       domain.PlanSlot
	PlanID     primitive.ObjectID
	Date       time.Time
	UserID     *primitive.ObjectID // personal target; nil when global
	IsGlobal   bool
	AssignedBy primitive.ObjectID
}

// SyncGlobalInput is the bulk range assign/unassign command for one tier.
type SyncGlobalInput struct {
	Slot       domain.PlanSlot
	PlanID     primitive.ObjectID
	IsPublic   bool
	StartDate  time.Time
	EndDate    time.Time
	Dates      []time.Time // target dates within the window
	AssignedBy primitive.ObjectID
}

// SyncResult reports how many dates the sync touched.
type SyncResult struct {
	Assigned int `json:"assigned"`
	Removed  int `json:"removed"`
}

// DaySchedule is the effective content for one user on one calendar day.
// It is the single-date response shape, which carries no lock flag.
type DaySchedule struct {
	Date     time.Time        `json:"date"`
	Workout  *domain.Workout  `json:"workout"`
	MealPlan *domain.MealPlan `json:"mealPlan"`
}

// ResolvedDay is one entry of a range response: the day's content plus the
// future-day lock flag.
type ResolvedDay struct {
	DaySchedule
	Locked bool `json:"locked"`
}

// DayPlans is a hydrated workout/mealPlan pair for the admin daily view.
type DayPlans struct {
	ScheduleID primitive.ObjectID `json:"scheduleId"`
	Workout    *domain.Workout    `json:"workout"`
	MealPlan   *domain.MealPlan   `json:"mealPlan"`
}

// PersonalAssignment is one user's personal record in the admin daily view.
type PersonalAssignment struct {
	DayPlans
	UserID primitive.ObjectID `json:"userId"`
}

// AdminDaySchedule is every tier's content for one day.
type AdminDaySchedule struct {
	Date     time.Time            `json:"date"`
	Free     *DayPlans            `json:"free"`
	Premium  *DayPlans            `json:"premium"`
	Personal []PersonalAssignment `json:"personal"`
}

// ScheduleService owns assignment writes and schedule resolution.
type ScheduleService interface {
	AssignSingle(ctx context.Context, input AssignScheduleInput) (*domain.Schedule, error)
	SyncGlobal(ctx context.Context, input SyncGlobalInput) (*SyncResult, error)
	DeleteAssignment(ctx context.Context, id primitive.ObjectID) error
	// DeletePlanAssignments cascades a plan deletion into the schedule.
	DeletePlanAssignments(ctx context.Context, slot domain.PlanSlot, planID primitive.ObjectID) error

	// GetMyScheduleRange resolves one entry per calendar day in [start, end]
	// inclusive, with the future-day lock flag for non-premium users.
	GetMyScheduleRange(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]ResolvedDay, error)
	// GetMyScheduleSingle is the legacy single-date mode: one entry without
	// the lock flag, or nil when neither slot resolves.
	GetMyScheduleSingle(ctx context.Context, userID primitive.ObjectID, date time.Time) (*DaySchedule, error)
	// ResolveForUser resolves one day against an already-loaded user. When
	// suppressPersonal is set, personal and premium-track records are
	// ignored (used for expired-subscription dashboards).
	ResolveForUser(ctx context.Context, user *domain.User, day time.Time, suppressPersonal bool) (*DaySchedule, error)

	GetAdminDaily(ctx context.Context, date time.Time) (*AdminDaySchedule, error)
}

// --- Service Implementation ---

type scheduleService struct {
	scheduleRepo repository.ScheduleRepository
	workoutRepo  repository.WorkoutRepository
	mealPlanRepo repository.MealPlanRepository
	userRepo     repository.UserRepository
	timezone     *time.Location
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(
	scheduleRepo repository.ScheduleRepository,
	workoutRepo repository.WorkoutRepository,
	mealPlanRepo repository.MealPlanRepository,
	userRepo repository.UserRepository,
	timezone *time.Location,
) ScheduleService {
	if timezone == nil {
		timezone = time.UTC
	}
	return &scheduleService{
		scheduleRepo: scheduleRepo,
		workoutRepo:  workoutRepo,
		mealPlanRepo: mealPlanRepo,
		userRepo:     userRepo,
		timezone:     timezone,
	}
}

// planIsPublic resolves the referenced plan and returns its tier flag. The
// flag is inherited onto the schedule record for tier filtering.
func (s *scheduleService) planIsPublic(ctx context.Context, slot domain.PlanSlot, planID primitive.ObjectID) (bool, error) {
	switch slot {
	case domain.SlotMealPlan:
		plan, err := s.mealPlanRepo.GetByID(ctx, planID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return false, ErrPlanNotFound
			}
			return false, err
		}
		return plan.IsPublic, nil
	default:
		workout, err := s.workoutRepo.GetByID(ctx, planID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return false, ErrPlanNotFound
			}
			return false, err
		}
		return workout.IsPublic, nil
	}
}

// AssignSingle creates or overwrites one date's assignment, global or personal.
func (s *scheduleService) AssignSingle(ctx context.Context, input AssignScheduleInput) (*domain.Schedule, error) {
	if input.PlanID == primitive.NilObjectID || input.Date.IsZero() {
		return nil, ErrScheduleValidation
	}
	date := dayStartUTC(input.Date)

	isPublic, err := s.planIsPublic(ctx, input.Slot, input.PlanID)
	if err != nil {
		return nil, err
	}

	if input.IsGlobal {
		return s.scheduleRepo.UpsertGlobal(ctx, date, isPublic, input.Slot, input.PlanID, input.AssignedBy)
	}

	if input.UserID == nil || *input.UserID == primitive.NilObjectID {
		return nil, ErrScheduleUserNeeded
	}
	if _, err := s.userRepo.GetByID(ctx, *input.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.scheduleRepo.UpsertPersonal(ctx, date, *input.UserID, input.Slot, input.PlanID, input.AssignedBy)
}

// SyncGlobal reconciles one plan's global assignments for a tier inside a
// window against an explicit target date list. Re-running with the same list
// is a no-op; changing the list only touches the delta. The loop is not
// transactional: a mid-way failure leaves a partial delta that the next run
// repairs.
func (s *scheduleService) SyncGlobal(ctx context.Context, input SyncGlobalInput) (*SyncResult, error) {
	if input.PlanID == primitive.NilObjectID || input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, ErrScheduleValidation
	}
	if _, err := s.planIsPublic(ctx, input.Slot, input.PlanID); err != nil {
		return nil, err
	}

	start := dayStartUTC(input.StartDate)
	end := dayStartUTC(input.EndDate)

	target := make(map[time.Time]bool, len(input.Dates))
	for _, d := range input.Dates {
		target[dayStartUTC(d)] = true
	}

	result := &SyncResult{}

	// Unassign: clear this slot on in-window records no longer targeted.
	// A record also carrying the other plan type keeps that value.
	existing, err := s.scheduleRepo.FindGlobalBySlotPlanInRange(ctx, input.Slot, input.PlanID, input.IsPublic, start, end)
	if err != nil {
		return nil, err
	}
	other := otherSlot(input.Slot)
	for i := range existing {
		rec := &existing[i]
		if target[dayStartUTC(rec.Date)] {
			continue
		}
		if rec.HasSlot(other) {
			err = s.scheduleRepo.ClearSlot(ctx, rec.ID, input.Slot)
		} else {
			err = s.scheduleRepo.Delete(ctx, rec.ID)
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		result.Removed++
	}

	// Assign: upsert every targeted date.
	for date := range target {
		if _, err := s.scheduleRepo.UpsertGlobal(ctx, date, input.IsPublic, input.Slot, input.PlanID, input.AssignedBy); err != nil {
			return nil, err
		}
		result.Assigned++
	}

	return result, nil
}

// DeleteAssignment removes one schedule record by id.
func (s *scheduleService) DeleteAssignment(ctx context.Context, id primitive.ObjectID) error {
	err := s.scheduleRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrScheduleNotFound
	}
	return err
}

// DeletePlanAssignments cascades a plan deletion into the schedule.
func (s *scheduleService) DeletePlanAssignments(ctx context.Context, slot domain.PlanSlot, planID primitive.ObjectID) error {
	return s.scheduleRepo.DeleteByPlan(ctx, slot, planID)
}

// planCache avoids refetching the same plan document across days of a range.
type planCache struct {
	workouts  map[primitive.ObjectID]*domain.Workout
	mealPlans map[primitive.ObjectID]*domain.MealPlan
}

func newPlanCache() *planCache {
	return &planCache{
		workouts:  make(map[primitive.ObjectID]*domain.Workout),
		mealPlans: make(map[primitive.ObjectID]*domain.MealPlan),
	}
}

func (s *scheduleService) workout(ctx context.Context, cache *planCache, id primitive.ObjectID) (*domain.Workout, error) {
	if w, ok := cache.workouts[id]; ok {
		return w, nil
	}
	w, err := s.workoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Dangling reference (plan deleted without cascade); treat the
			// slot as absent rather than failing the whole request.
			cache.workouts[id] = nil
			return nil, nil
		}
		return nil, err
	}
	cache.workouts[id] = w
	return w, nil
}

func (s *scheduleService) mealPlan(ctx context.Context, cache *planCache, id primitive.ObjectID) (*domain.MealPlan, error) {
	if m, ok := cache.mealPlans[id]; ok {
		return m, nil
	}
	m, err := s.mealPlanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			cache.mealPlans[id] = nil
			return nil, nil
		}
		return nil, err
	}
	cache.mealPlans[id] = m
	return m, nil
}

// resolveDay runs the per-slot resolution for one day's records and hydrates
// the winning plan references.
func (s *scheduleService) resolveDay(ctx context.Context, cache *planCache, records []domain.Schedule, userID primitive.ObjectID, premium bool, day time.Time) (DaySchedule, error) {
	resolved := DaySchedule{Date: day}

	if rec := pickSlot(records, userID, premium, domain.SlotWorkout); rec != nil && rec.WorkoutID != nil {
		w, err := s.workout(ctx, cache, *rec.WorkoutID)
		if err != nil {
			return resolved, err
		}
		resolved.Workout = w
	}
	if rec := pickSlot(records, userID, premium, domain.SlotMealPlan); rec != nil && rec.MealPlanID != nil {
		m, err := s.mealPlan(ctx, cache, *rec.MealPlanID)
		if err != nil {
			return resolved, err
		}
		resolved.MealPlan = m
	}
	return resolved, nil
}

// GetMyScheduleRange resolves one entry per calendar day in [start, end].
func (s *scheduleService) GetMyScheduleRange(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]ResolvedDay, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	premium := user.IsPremium()

	start = dayStartUTC(start)
	end = dayStartUTC(end)
	records, err := s.scheduleRepo.FindForUserInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	grouped := groupByDay(records)

	today := businessToday(time.Now(), s.timezone)
	cache := newPlanCache()

	var days []ResolvedDay
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		resolved, err := s.resolveDay(ctx, cache, grouped[day], userID, premium, day)
		if err != nil {
			return nil, err
		}
		days = append(days, ResolvedDay{DaySchedule: resolved, Locked: isLocked(day, today, premium)})
	}
	return days, nil
}

// GetMyScheduleSingle is the legacy single-date mode.
func (s *scheduleService) GetMyScheduleSingle(ctx context.Context, userID primitive.ObjectID, date time.Time) (*DaySchedule, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.ResolveForUser(ctx, user, date, false)
}

// ResolveForUser resolves one day against an already-loaded user.
func (s *scheduleService) ResolveForUser(ctx context.Context, user *domain.User, day time.Time, suppressPersonal bool) (*DaySchedule, error) {
	day = dayStartUTC(day)
	records, err := s.scheduleRepo.FindForUserInRange(ctx, user.ID, day, day)
	if err != nil {
		return nil, err
	}
	if suppressPersonal {
		records = freeTierOnly(records)
	}

	cache := newPlanCache()
	resolved, err := s.resolveDay(ctx, cache, records, user.ID, user.IsPremium(), day)
	if err != nil {
		return nil, err
	}
	if resolved.Workout == nil && resolved.MealPlan == nil {
		return nil, nil
	}
	return &resolved, nil
}

// freeTierOnly drops personal and premium-track records, leaving the free
// global tier. Applied pre-emptively for expired-subscription dashboards.
func freeTierOnly(records []domain.Schedule) []domain.Schedule {
	filtered := records[:0]
	for _, rec := range records {
		if rec.IsGlobal && rec.IsPublic {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// GetAdminDaily returns every tier's content for one day.
func (s *scheduleService) GetAdminDaily(ctx context.Context, date time.Time) (*AdminDaySchedule, error) {
	day := dayStartUTC(date)
	records, err := s.scheduleRepo.FindByDay(ctx, day)
	if err != nil {
		return nil, err
	}

	cache := newPlanCache()
	view := &AdminDaySchedule{Date: day, Personal: []PersonalAssignment{}}

	hydrate := func(rec *domain.Schedule) (DayPlans, error) {
		plans := DayPlans{ScheduleID: rec.ID}
		if rec.WorkoutID != nil {
			w, err := s.workout(ctx, cache, *rec.WorkoutID)
			if err != nil {
				return plans, err
			}
			plans.Workout = w
		}
		if rec.MealPlanID != nil {
			m, err := s.mealPlan(ctx, cache, *rec.MealPlanID)
			if err != nil {
				return plans, err
			}
			plans.MealPlan = m
		}
		return plans, nil
	}

	for i := range records {
		rec := &records[i]
		plans, err := hydrate(rec)
		if err != nil {
			return nil, err
		}
		switch {
		case rec.IsGlobal && rec.IsPublic:
			view.Free = &plans
		case rec.IsGlobal:
			view.Premium = &plans
		case rec.UserID != nil:
			view.Personal = append(view.Personal, PersonalAssignment{DayPlans: plans, UserID: *rec.UserID})
		}
	}
	return view, nil
}

// otherSlot returns the opposite plan slot.
func otherSlot(slot domain.PlanSlot) domain.PlanSlot {
	if slot == domain.SlotWorkout {
		return domain.SlotMealPlan
	}
	return domain.SlotWorkout
}
