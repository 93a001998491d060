package service

import (
	"context"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) List(_ context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if role == "" || u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateSubscription(_ context.Context, userID primitive.ObjectID, sub domain.Subscription) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Subscription = sub
	return nil
}

func (r *fakeUserRepo) SetBlocked(_ context.Context, userID primitive.ObjectID, blocked bool) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsBlocked = blocked
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type fakeWorkoutRepo struct {
	workouts map[primitive.ObjectID]*domain.Workout
}

func newFakeWorkoutRepo(workouts ...*domain.Workout) *fakeWorkoutRepo {
	r := &fakeWorkoutRepo{workouts: make(map[primitive.ObjectID]*domain.Workout)}
	for _, w := range workouts {
		r.workouts[w.ID] = w
	}
	return r
}

func (r *fakeWorkoutRepo) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.ID.IsZero() {
		workout.ID = primitive.NewObjectID()
	}
	r.workouts[workout.ID] = workout
	return workout.ID, nil
}

func (r *fakeWorkoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *w
	return &copied, nil
}

func (r *fakeWorkoutRepo) List(_ context.Context) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, w := range r.workouts {
		out = append(out, *w)
	}
	return out, nil
}

func (r *fakeWorkoutRepo) GetVisibleToUser(_ context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, w := range r.workouts {
		if w.IsPublic {
			out = append(out, *w)
			continue
		}
		for _, id := range w.AssignedTo {
			if id == userID {
				out = append(out, *w)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeWorkoutRepo) Update(_ context.Context, workout *domain.Workout) error {
	if _, ok := r.workouts[workout.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *workout
	r.workouts[workout.ID] = &copied
	return nil
}

func (r *fakeWorkoutRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

type fakeMealPlanRepo struct {
	plans map[primitive.ObjectID]*domain.MealPlan
}

func newFakeMealPlanRepo(plans ...*domain.MealPlan) *fakeMealPlanRepo {
	r := &fakeMealPlanRepo{plans: make(map[primitive.ObjectID]*domain.MealPlan)}
	for _, p := range plans {
		r.plans[p.ID] = p
	}
	return r
}

func (r *fakeMealPlanRepo) Create(_ context.Context, plan *domain.MealPlan) (primitive.ObjectID, error) {
	if plan.ID.IsZero() {
		plan.ID = primitive.NewObjectID()
	}
	r.plans[plan.ID] = plan
	return plan.ID, nil
}

func (r *fakeMealPlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.MealPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeMealPlanRepo) List(_ context.Context) ([]domain.MealPlan, error) {
	var out []domain.MealPlan
	for _, p := range r.plans {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeMealPlanRepo) GetVisibleToUser(_ context.Context, userID primitive.ObjectID) ([]domain.MealPlan, error) {
	var out []domain.MealPlan
	for _, p := range r.plans {
		if p.IsPublic {
			out = append(out, *p)
			continue
		}
		for _, id := range p.AssignedTo {
			if id == userID {
				out = append(out, *p)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeMealPlanRepo) Update(_ context.Context, plan *domain.MealPlan) error {
	if _, ok := r.plans[plan.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *plan
	r.plans[plan.ID] = &copied
	return nil
}

func (r *fakeMealPlanRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

// fakeScheduleRepo mirrors the mongo schedule repository's upsert keys:
// (date, isGlobal=true, isPublic) for global records and (date, user) for
// personal ones.
type fakeScheduleRepo struct {
	records map[primitive.ObjectID]*domain.Schedule
}

func newFakeScheduleRepo(records ...*domain.Schedule) *fakeScheduleRepo {
	r := &fakeScheduleRepo{records: make(map[primitive.ObjectID]*domain.Schedule)}
	for _, rec := range records {
		if rec.ID.IsZero() {
			rec.ID = primitive.NewObjectID()
		}
		r.records[rec.ID] = rec
	}
	return r
}

func (r *fakeScheduleRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Schedule, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (r *fakeScheduleRepo) FindForUserInRange(_ context.Context, userID primitive.ObjectID, start, end time.Time) ([]domain.Schedule, error) {
	var out []domain.Schedule
	for _, rec := range r.records {
		if rec.Date.Before(start) || rec.Date.After(end) {
			continue
		}
		if rec.IsGlobal || (rec.UserID != nil && *rec.UserID == userID) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) FindByDay(_ context.Context, day time.Time) ([]domain.Schedule, error) {
	var out []domain.Schedule
	for _, rec := range r.records {
		if rec.Date.Equal(day) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) FindGlobalBySlotPlanInRange(_ context.Context, slot domain.PlanSlot, planID primitive.ObjectID, isPublic bool, start, end time.Time) ([]domain.Schedule, error) {
	var out []domain.Schedule
	for _, rec := range r.records {
		if !rec.IsGlobal || rec.IsPublic != isPublic {
			continue
		}
		if rec.Date.Before(start) || rec.Date.After(end) {
			continue
		}
		if id := rec.PlanID(slot); id != nil && *id == planID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) UpsertGlobal(_ context.Context, date time.Time, isPublic bool, slot domain.PlanSlot, planID, assignedBy primitive.ObjectID) (*domain.Schedule, error) {
	for _, rec := range r.records {
		if rec.IsGlobal && rec.IsPublic == isPublic && rec.Date.Equal(date) {
			rec.SetPlanID(slot, &planID)
			rec.AssignedBy = assignedBy
			copied := *rec
			return &copied, nil
		}
	}
	rec := &domain.Schedule{
		ID:         primitive.NewObjectID(),
		Date:       date,
		IsGlobal:   true,
		IsPublic:   isPublic,
		AssignedBy: assignedBy,
	}
	rec.SetPlanID(slot, &planID)
	r.records[rec.ID] = rec
	copied := *rec
	return &copied, nil
}

func (r *fakeScheduleRepo) UpsertPersonal(_ context.Context, date time.Time, userID primitive.ObjectID, slot domain.PlanSlot, planID, assignedBy primitive.ObjectID) (*domain.Schedule, error) {
	for _, rec := range r.records {
		if !rec.IsGlobal && rec.UserID != nil && *rec.UserID == userID && rec.Date.Equal(date) {
			rec.SetPlanID(slot, &planID)
			rec.AssignedBy = assignedBy
			copied := *rec
			return &copied, nil
		}
	}
	rec := &domain.Schedule{
		ID:         primitive.NewObjectID(),
		Date:       date,
		UserID:     &userID,
		IsGlobal:   false,
		AssignedBy: assignedBy,
	}
	rec.SetPlanID(slot, &planID)
	r.records[rec.ID] = rec
	copied := *rec
	return &copied, nil
}

func (r *fakeScheduleRepo) ClearSlot(_ context.Context, id primitive.ObjectID, slot domain.PlanSlot) error {
	rec, ok := r.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	rec.SetPlanID(slot, nil)
	return nil
}

func (r *fakeScheduleRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.records[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *fakeScheduleRepo) DeleteByPlan(_ context.Context, slot domain.PlanSlot, planID primitive.ObjectID) error {
	for id, rec := range r.records {
		if p := rec.PlanID(slot); p != nil && *p == planID {
			rec.SetPlanID(slot, nil)
		}
		if rec.IsEmpty() {
			delete(r.records, id)
		}
	}
	return nil
}

func (r *fakeScheduleRepo) all() []domain.Schedule {
	var out []domain.Schedule
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	return out
}
