package service

import (
	"context"
	"testing"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeProgressRepo struct {
	entries []domain.Progress
}

func (r *fakeProgressRepo) Create(_ context.Context, progress *domain.Progress) (primitive.ObjectID, error) {
	if progress.ID.IsZero() {
		progress.ID = primitive.NewObjectID()
	}
	// Newest first, as the mongo repository sorts.
	r.entries = append([]domain.Progress{*progress}, r.entries...)
	return progress.ID, nil
}

func (r *fakeProgressRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Progress, error) {
	for i := range r.entries {
		if r.entries[i].ID == id {
			copied := r.entries[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProgressRepo) GetByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Progress, error) {
	var out []domain.Progress
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Progress, error) {
	entries, _ := r.GetByUser(ctx, userID)
	if len(entries) == 0 {
		return nil, repository.ErrNotFound
	}
	return &entries[0], nil
}

func (r *fakeProgressRepo) SetFeedback(_ context.Context, id primitive.ObjectID, feedback string) error {
	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries[i].TrainerFeedback = feedback
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeDailyLogRepo struct {
	logs map[string]*domain.DailyLog
}

func newFakeDailyLogRepo() *fakeDailyLogRepo {
	return &fakeDailyLogRepo{logs: make(map[string]*domain.DailyLog)}
}

func dailyLogKey(userID primitive.ObjectID, day time.Time) string {
	return userID.Hex() + "/" + dayStartUTC(day).Format("2006-01-02")
}

func (r *fakeDailyLogRepo) UpsertByDay(_ context.Context, userID primitive.ObjectID, day time.Time, patch repository.DailyLogPatch) (*domain.DailyLog, error) {
	key := dailyLogKey(userID, day)
	log, ok := r.logs[key]
	if !ok {
		log = &domain.DailyLog{ID: primitive.NewObjectID(), UserID: userID, Date: dayStartUTC(day)}
		r.logs[key] = log
	}
	if patch.MealsCompleted != nil {
		log.MealsCompleted = *patch.MealsCompleted
	}
	if patch.WorkoutCompleted != nil {
		log.WorkoutCompleted = *patch.WorkoutCompleted
	}
	if patch.CheckIn != nil {
		log.CheckIn = *patch.CheckIn
	}
	if patch.WaterIntake != nil {
		log.WaterIntake = *patch.WaterIntake
	}
	if patch.Notes != nil {
		log.Notes = *patch.Notes
	}
	copied := *log
	return &copied, nil
}

func (r *fakeDailyLogRepo) GetByDay(_ context.Context, userID primitive.ObjectID, day time.Time) (*domain.DailyLog, error) {
	log, ok := r.logs[dailyLogKey(userID, day)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *log
	return &copied, nil
}

func TestBMI(t *testing.T) {
	assert.InDelta(t, 22.9, bmi(175, 70), 0.05)
	assert.Equal(t, 0.0, bmi(0, 70), "missing height yields no BMI")
	assert.Equal(t, 0.0, bmi(175, 0), "missing weight yields no BMI")
}

func TestClassifySubscription(t *testing.T) {
	now := day(2026, time.March, 10)

	free := classifySubscription(domain.Subscription{Plan: domain.PlanFree}, now)
	assert.Equal(t, SubscriptionDisplayFree, free.Display)

	farEnd := day(2026, time.April, 10)
	active := classifySubscription(domain.Subscription{
		Plan: domain.PlanPremium, Status: domain.SubscriptionActive, EndDate: &farEnd,
	}, now)
	assert.Equal(t, SubscriptionDisplayActive, active.Display)
	assert.Equal(t, 31, active.DaysLeft)

	nearEnd := day(2026, time.March, 12)
	soon := classifySubscription(domain.Subscription{
		Plan: domain.PlanPremium, Status: domain.SubscriptionActive, EndDate: &nearEnd,
	}, now)
	assert.Equal(t, SubscriptionDisplayExpiringSoon, soon.Display)
	assert.Equal(t, 2, soon.DaysLeft)

	expired := classifySubscription(domain.Subscription{
		Plan: domain.PlanPremium, Status: domain.SubscriptionExpired,
	}, now)
	assert.Equal(t, SubscriptionDisplayExpired, expired.Display)

	pastEnd := day(2026, time.March, 1)
	lapsed := classifySubscription(domain.Subscription{
		Plan: domain.PlanPremium, Status: domain.SubscriptionActive, EndDate: &pastEnd,
	}, now)
	assert.Equal(t, SubscriptionDisplayExpired, lapsed.Display, "a lapsed end date classifies as expired even before the status flips")
}

func newTestUserService(userRepo *fakeUserRepo, progressRepo *fakeProgressRepo, dailyLogRepo *fakeDailyLogRepo, scheduleRepo *fakeScheduleRepo, workoutRepo *fakeWorkoutRepo, mealPlanRepo *fakeMealPlanRepo) UserService {
	schedules := NewScheduleService(scheduleRepo, workoutRepo, mealPlanRepo, userRepo, time.UTC)
	subscriptions := NewSubscriptionService(newFakePaymentRepo(), userRepo, newFakeSettingsRepo(), noopMailer{}, time.UTC, 500, "INR")
	return NewUserService(userRepo, progressRepo, dailyLogRepo, schedules, subscriptions, time.UTC)
}

func TestGetHomeAggregatesTodaysContent(t *testing.T) {
	user := freeUser()
	user.Height = 175
	user.CurrentWeight = 70

	workout := &domain.Workout{
		ID:       primitive.NewObjectID(),
		Title:    "Full Body",
		IsPublic: true,
		Exercises: []domain.Exercise{
			{Name: "Squat", CaloriesBurned: 120},
			{Name: "Push Up", CaloriesBurned: 80},
		},
	}
	mealPlan := &domain.MealPlan{
		ID:       primitive.NewObjectID(),
		Title:    "Balanced Day",
		IsPublic: true,
		Meals: []domain.Meal{
			{Name: "Breakfast", TotalCalories: 450},
			{Name: "Dinner", TotalCalories: 650},
		},
	}

	today := businessToday(time.Now(), time.UTC)
	workoutID, mealPlanID := workout.ID, mealPlan.ID
	rec := globalRecord(today, true, &workoutID, &mealPlanID)

	userRepo := newFakeUserRepo(user)
	dailyLogRepo := newFakeDailyLogRepo()
	done := true
	_, err := dailyLogRepo.UpsertByDay(context.Background(), user.ID, today, repository.DailyLogPatch{WorkoutCompleted: &done})
	require.NoError(t, err)

	svc := newTestUserService(userRepo, &fakeProgressRepo{}, dailyLogRepo, newFakeScheduleRepo(&rec), newFakeWorkoutRepo(workout), newFakeMealPlanRepo(mealPlan))

	home, err := svc.GetHome(context.Background(), user.ID.Hex())
	require.NoError(t, err)

	require.NotNil(t, home.Today)
	require.NotNil(t, home.Today.Workout)
	assert.Equal(t, workout.ID, home.Today.Workout.ID)
	require.NotNil(t, home.Today.MealPlan)

	assert.Equal(t, 200.0, home.Calories.WorkoutTarget)
	assert.Equal(t, 1100.0, home.Calories.MealTarget)
	assert.True(t, home.Calories.WorkoutCompleted)
	assert.False(t, home.Calories.MealsCompleted)

	assert.InDelta(t, 22.9, home.BMI, 0.05)
	assert.Equal(t, SubscriptionDisplayFree, home.Subscription.Display)
}

func TestGetHomeUsesLatestProgressWeightForBMI(t *testing.T) {
	user := freeUser()
	user.Height = 175
	user.CurrentWeight = 90

	progressRepo := &fakeProgressRepo{}
	_, err := progressRepo.Create(context.Background(), &domain.Progress{
		UserID: user.ID,
		Date:   time.Now(),
		Weight: 70,
	})
	require.NoError(t, err)

	svc := newTestUserService(newFakeUserRepo(user), progressRepo, newFakeDailyLogRepo(), newFakeScheduleRepo(), newFakeWorkoutRepo(), newFakeMealPlanRepo())

	home, err := svc.GetHome(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.InDelta(t, 22.9, home.BMI, 0.05, "BMI uses the latest logged weight over the profile weight")
	require.Len(t, home.Progress, 1)
}

func TestGetHomeLazilyExpiresSubscription(t *testing.T) {
	user := premiumUser()
	past := time.Now().AddDate(0, 0, -1)
	user.Subscription.EndDate = &past

	userRepo := newFakeUserRepo(user)
	svc := newTestUserService(userRepo, &fakeProgressRepo{}, newFakeDailyLogRepo(), newFakeScheduleRepo(), newFakeWorkoutRepo(), newFakeMealPlanRepo())

	home, err := svc.GetHome(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, SubscriptionDisplayExpired, home.Subscription.Display)

	persisted, err := userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionExpired, persisted.Subscription.Status)
}

func TestGetHomeExpiredPremiumFallsBackToFreeTrack(t *testing.T) {
	user := premiumUser()
	user.Subscription.Status = domain.SubscriptionExpired

	freeWorkout := &domain.Workout{ID: primitive.NewObjectID(), Title: "Sample", IsPublic: true}
	premiumWorkout := &domain.Workout{ID: primitive.NewObjectID(), Title: "Members Only"}

	today := businessToday(time.Now(), time.UTC)
	freeID, premiumID := freeWorkout.ID, premiumWorkout.ID
	recFree := globalRecord(today, true, &freeID, nil)
	recPremium := globalRecord(today, false, &premiumID, nil)
	recPersonal := personalRecord(today, user.ID, &premiumID)

	svc := newTestUserService(
		newFakeUserRepo(user),
		&fakeProgressRepo{},
		newFakeDailyLogRepo(),
		newFakeScheduleRepo(&recFree, &recPremium, &recPersonal),
		newFakeWorkoutRepo(freeWorkout, premiumWorkout),
		newFakeMealPlanRepo(),
	)

	home, err := svc.GetHome(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, home.Today)
	require.NotNil(t, home.Today.Workout)
	assert.Equal(t, freeWorkout.ID, home.Today.Workout.ID, "expired premium sees the free sample, not their assignments")
}

func TestGetAdminOverview(t *testing.T) {
	base := day(2026, time.March, 1)
	userRepo := newFakeUserRepo()
	for i := 0; i < 7; i++ {
		u := freeUser()
		u.Name = string(rune('A' + i))
		u.CreatedAt = base.AddDate(0, 0, i)
		userRepo.users[u.ID] = u
	}
	for i := 0; i < 2; i++ {
		trainer := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleTrainer}
		userRepo.users[trainer.ID] = trainer
	}

	svc := newTestUserService(userRepo, &fakeProgressRepo{}, newFakeDailyLogRepo(), newFakeScheduleRepo(), newFakeWorkoutRepo(), newFakeMealPlanRepo())

	overview, err := svc.GetAdminOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), overview.TotalUsers)
	assert.Equal(t, int64(2), overview.TotalTrainers)

	require.Len(t, overview.RecentUsers, 5, "recent signups are capped at five")
	assert.Equal(t, "G", overview.RecentUsers[0].Name, "newest signup first")
	assert.Equal(t, "C", overview.RecentUsers[4].Name)
}

func TestUpdateProfilePatchesOnlyProvidedFields(t *testing.T) {
	user := freeUser()
	user.Name = "Original"
	user.Height = 170

	userRepo := newFakeUserRepo(user)
	svc := newTestUserService(userRepo, &fakeProgressRepo{}, newFakeDailyLogRepo(), newFakeScheduleRepo(), newFakeWorkoutRepo(), newFakeMealPlanRepo())

	newName := "Updated"
	updated, err := svc.UpdateProfile(context.Background(), user.ID.Hex(), ProfileUpdate{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Name)
	assert.Equal(t, 170.0, updated.Height, "untouched fields keep their values")
}
