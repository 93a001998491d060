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

func TestAddCalendarMonthPlainCase(t *testing.T) {
	got := addCalendarMonth(day(2026, time.March, 15))
	assert.Equal(t, day(2026, time.April, 15), got)
}

func TestAddCalendarMonthClampsToShorterMonth(t *testing.T) {
	// Jan 31 + 1 month lands on the last day of February.
	assert.Equal(t, day(2026, time.February, 28), addCalendarMonth(day(2026, time.January, 31)))
	// 2028 is a leap year.
	assert.Equal(t, day(2028, time.February, 29), addCalendarMonth(day(2028, time.January, 31)))
	// May 31 clamps to June 30.
	assert.Equal(t, day(2026, time.June, 30), addCalendarMonth(day(2026, time.May, 31)))
}

func TestAddCalendarMonthCrossesYearBoundary(t *testing.T) {
	assert.Equal(t, day(2027, time.January, 15), addCalendarMonth(day(2026, time.December, 15)))
}

func TestExtendSubscriptionFreshStart(t *testing.T) {
	now := day(2026, time.March, 10)
	sub := extendSubscription(domain.Subscription{Plan: domain.PlanFree, Status: domain.SubscriptionInactive}, now)

	assert.Equal(t, domain.PlanPremium, sub.Plan)
	assert.Equal(t, domain.SubscriptionActive, sub.Status)
	require.NotNil(t, sub.StartDate)
	assert.Equal(t, now, *sub.StartDate)
	require.NotNil(t, sub.EndDate)
	assert.Equal(t, day(2026, time.April, 10), *sub.EndDate)
}

func TestExtendSubscriptionStacksOnRemainingTime(t *testing.T) {
	now := day(2026, time.March, 10)
	currentEnd := day(2026, time.March, 25)
	start := day(2026, time.February, 25)

	sub := extendSubscription(domain.Subscription{
		Plan:      domain.PlanPremium,
		Status:    domain.SubscriptionActive,
		StartDate: &start,
		EndDate:   &currentEnd,
	}, now)

	require.NotNil(t, sub.EndDate)
	assert.Equal(t, day(2026, time.April, 25), *sub.EndDate, "extension builds on the unexpired end date")
	assert.Equal(t, start, *sub.StartDate, "active subscription keeps its original start")
}

func TestExtendSubscriptionIgnoresLapsedEndDate(t *testing.T) {
	now := day(2026, time.March, 10)
	lapsedEnd := day(2026, time.February, 1)

	sub := extendSubscription(domain.Subscription{
		Plan:    domain.PlanPremium,
		Status:  domain.SubscriptionExpired,
		EndDate: &lapsedEnd,
	}, now)

	require.NotNil(t, sub.EndDate)
	assert.Equal(t, day(2026, time.April, 10), *sub.EndDate, "a lapsed end date does not extend the base")
	assert.Equal(t, domain.SubscriptionActive, sub.Status)
	require.NotNil(t, sub.StartDate)
	assert.Equal(t, now, *sub.StartDate)
}

type noopMailer struct{}

func (noopMailer) SendOTP(to, name, otp string)                        {}
func (noopMailer) SendPaymentApproved(to, name string, endDate string) {}
func (noopMailer) SendPaymentRejected(to, name, reason string)         {}

type fakePaymentRepo struct {
	payments map[primitive.ObjectID]*domain.Payment
}

func newFakePaymentRepo(payments ...*domain.Payment) *fakePaymentRepo {
	r := &fakePaymentRepo{payments: make(map[primitive.ObjectID]*domain.Payment)}
	for _, p := range payments {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		r.payments[p.ID] = p
	}
	return r
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *domain.Payment) (primitive.ObjectID, error) {
	for _, p := range r.payments {
		if p.UserID == payment.UserID && p.Month == payment.Month && p.Year == payment.Year {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	payment.ID = primitive.NewObjectID()
	r.payments[payment.ID] = payment
	return payment.ID, nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePaymentRepo) FindPending(_ context.Context) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range r.payments {
		if p.Status == domain.PaymentPending {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) FindByUser(_ context.Context, userID primitive.ObjectID, _ repository.PaymentFilter) ([]domain.Payment, int64, error) {
	var out []domain.Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePaymentRepo) FindByMonth(_ context.Context, month, year int) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range r.payments {
		if p.Month == month && p.Year == year {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.PaymentStatus, paidAt *time.Time, rejectionReason string) error {
	p, ok := r.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = status
	p.PaidAt = paidAt
	p.RejectionReason = rejectionReason
	return nil
}

func (r *fakePaymentRepo) Stats(_ context.Context, month, year int) (*repository.PaymentStats, error) {
	stats := &repository.PaymentStats{}
	for _, p := range r.payments {
		switch p.Status {
		case domain.PaymentPaid:
			stats.TotalEarning += p.Amount
			if p.Month == month && p.Year == year {
				stats.MonthCollection += p.Amount
			}
		case domain.PaymentPending:
			stats.TotalPending += p.Amount
			if p.Month == month && p.Year == year {
				stats.MonthPending += p.Amount
			}
		}
	}
	return stats, nil
}

type fakeSettingsRepo struct {
	settings map[string]*domain.Settings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[string]*domain.Settings)}
}

func (r *fakeSettingsRepo) GetByType(_ context.Context, settingsType string) (*domain.Settings, error) {
	s, ok := r.settings[settingsType]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSettingsRepo) Upsert(_ context.Context, settings *domain.Settings) (*domain.Settings, error) {
	copied := *settings
	r.settings[settings.Type] = &copied
	return settings, nil
}

func newTestSubscriptionService(paymentRepo *fakePaymentRepo, userRepo *fakeUserRepo) SubscriptionService {
	return NewSubscriptionService(paymentRepo, userRepo, newFakeSettingsRepo(), noopMailer{}, time.UTC, 500, "INR")
}

func TestSubmitPaymentRequiresScreenshot(t *testing.T) {
	user := freeUser()
	svc := newTestSubscriptionService(newFakePaymentRepo(), newFakeUserRepo(user))

	_, err := svc.SubmitPayment(context.Background(), user.ID, "", "", "")
	assert.ErrorIs(t, err, ErrPaymentScreenshot)
}

func TestSubmitPaymentRejectsSecondSubmissionSameMonth(t *testing.T) {
	user := freeUser()
	svc := newTestSubscriptionService(newFakePaymentRepo(), newFakeUserRepo(user))

	_, err := svc.SubmitPayment(context.Background(), user.ID, "https://cdn/shot1.png", "", "")
	require.NoError(t, err)

	_, err = svc.SubmitPayment(context.Background(), user.ID, "https://cdn/shot2.png", "", "")
	assert.ErrorIs(t, err, ErrPaymentDuplicate)
}

func TestApprovePaymentActivatesPremium(t *testing.T) {
	user := freeUser()
	userRepo := newFakeUserRepo(user)
	paymentRepo := newFakePaymentRepo()
	svc := newTestSubscriptionService(paymentRepo, userRepo)

	payment, err := svc.SubmitPayment(context.Background(), user.ID, "https://cdn/shot.png", "TXN1", "")
	require.NoError(t, err)

	approved, err := svc.ApprovePayment(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, approved.Status)
	assert.NotNil(t, approved.PaidAt)

	updated, err := userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPremium, updated.Subscription.Plan)
	assert.Equal(t, domain.SubscriptionActive, updated.Subscription.Status)
	require.NotNil(t, updated.Subscription.EndDate)
	assert.True(t, updated.Subscription.EndDate.After(time.Now()))
}

func TestApprovePaymentTwiceFails(t *testing.T) {
	user := freeUser()
	svc := newTestSubscriptionService(newFakePaymentRepo(), newFakeUserRepo(user))

	payment, err := svc.SubmitPayment(context.Background(), user.ID, "https://cdn/shot.png", "", "")
	require.NoError(t, err)

	_, err = svc.ApprovePayment(context.Background(), payment.ID)
	require.NoError(t, err)
	_, err = svc.ApprovePayment(context.Background(), payment.ID)
	assert.ErrorIs(t, err, ErrPaymentNotPending)
}

func TestRejectPaymentKeepsSubscriptionUntouched(t *testing.T) {
	user := freeUser()
	userRepo := newFakeUserRepo(user)
	svc := newTestSubscriptionService(newFakePaymentRepo(), userRepo)

	payment, err := svc.SubmitPayment(context.Background(), user.ID, "https://cdn/shot.png", "", "")
	require.NoError(t, err)

	rejected, err := svc.RejectPayment(context.Background(), payment.ID, "screenshot unreadable")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, rejected.Status)
	assert.Equal(t, "screenshot unreadable", rejected.RejectionReason)

	updated, err := userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, updated.Subscription.Plan)
}

func TestCheckExpiryFlipsLapsedPremium(t *testing.T) {
	user := premiumUser()
	past := time.Now().AddDate(0, 0, -1)
	user.Subscription.EndDate = &past
	userRepo := newFakeUserRepo(user)
	svc := newTestSubscriptionService(newFakePaymentRepo(), userRepo)

	updated, err := svc.CheckExpiry(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionExpired, updated.Subscription.Status)
	assert.Equal(t, domain.PlanPremium, updated.Subscription.Plan, "plan tag survives expiry")

	persisted, err := userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionExpired, persisted.Subscription.Status)
}

func TestCheckExpiryLeavesActivePremiumAlone(t *testing.T) {
	user := premiumUser()
	future := time.Now().AddDate(0, 1, 0)
	user.Subscription.EndDate = &future
	svc := newTestSubscriptionService(newFakePaymentRepo(), newFakeUserRepo(user))

	updated, err := svc.CheckExpiry(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, updated.Subscription.Status)
}

func TestGetAdminPaidUsersMarksDueAndPaid(t *testing.T) {
	paidUser := freeUser()
	paidUser.Email = "paid@example.com"
	dueUser := freeUser()
	dueUser.Email = "due@example.com"
	userRepo := newFakeUserRepo(paidUser, dueUser)
	paymentRepo := newFakePaymentRepo()
	svc := newTestSubscriptionService(paymentRepo, userRepo)

	payment, err := svc.SubmitPayment(context.Background(), paidUser.ID, "https://cdn/shot.png", "", "")
	require.NoError(t, err)
	_, err = svc.ApprovePayment(context.Background(), payment.ID)
	require.NoError(t, err)

	report, err := svc.GetAdminPaidUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, report, 2)

	byEmail := make(map[string]PaidUserStatus)
	for _, row := range report {
		byEmail[row.User.Email] = row
	}
	assert.Equal(t, "paid", byEmail["paid@example.com"].CurrentMonthStatus)
	assert.Equal(t, "due", byEmail["due@example.com"].CurrentMonthStatus)
}
