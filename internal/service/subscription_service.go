package service

import (
	"context"
	"errors"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/email"
	"fitcoach/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrPaymentNotPending = errors.New("payment is not pending")
	ErrPaymentDuplicate  = errors.New("a payment for this month already exists")
	ErrPaymentScreenshot = errors.New("payment screenshot is required")
)

// PaymentPage is one page of a user's payment history.
type PaymentPage struct {
	Payments []domain.Payment `json:"payments"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

// PaidUserStatus is one row of the admin collection report: a user together
// with their current-month payment state.
type PaidUserStatus struct {
	User               domain.User `json:"user"`
	CurrentMonthStatus string      `json:"currentMonthStatus"` // "paid" or "due"
	LastPaidAt         *time.Time  `json:"lastPaidAt,omitempty"`
}

// SubscriptionService owns the manual-payment ledger and subscription
// lifecycle.
type SubscriptionService interface {
	// SubmitPayment records a pending payment for the current calendar month
	// with the transfer screenshot. One submission per user per month.
	SubmitPayment(ctx context.Context, userID primitive.ObjectID, screenshotURL, transactionID, notes string) (*domain.Payment, error)
	GetPendingPayments(ctx context.Context) ([]domain.Payment, error)
	// ApprovePayment marks the payment paid and extends the user's premium
	// subscription by one calendar month.
	ApprovePayment(ctx context.Context, paymentID primitive.ObjectID) (*domain.Payment, error)
	RejectPayment(ctx context.Context, paymentID primitive.ObjectID, reason string) (*domain.Payment, error)
	GetPaymentHistory(ctx context.Context, userID primitive.ObjectID, filter repository.PaymentFilter) (*PaymentPage, error)
	GetAdminStats(ctx context.Context) (*repository.PaymentStats, error)
	GetAdminPaidUsers(ctx context.Context) ([]PaidUserStatus, error)

	// CheckExpiry lazily flips the subscription to expired when its end date
	// has passed. Returns the possibly-updated user.
	CheckExpiry(ctx context.Context, user *domain.User) (*domain.User, error)

	GetPaymentConfig(ctx context.Context) (*domain.Settings, error)
}

// --- Service Implementation ---

type subscriptionService struct {
	paymentRepo  repository.PaymentRepository
	userRepo     repository.UserRepository
	settingsRepo repository.SettingsRepository
	mailer       email.Mailer
	timezone     *time.Location
	// Fallbacks when no payment settings document exists yet.
	defaultAmount   float64
	defaultCurrency string
}

// NewSubscriptionService creates a new instance of subscriptionService.
func NewSubscriptionService(
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	settingsRepo repository.SettingsRepository,
	mailer email.Mailer,
	timezone *time.Location,
	defaultAmount float64,
	defaultCurrency string,
) SubscriptionService {
	if timezone == nil {
		timezone = time.UTC
	}
	return &subscriptionService{
		paymentRepo:     paymentRepo,
		userRepo:        userRepo,
		settingsRepo:    settingsRepo,
		mailer:          mailer,
		timezone:        timezone,
		defaultAmount:   defaultAmount,
		defaultCurrency: defaultCurrency,
	}
}

// addCalendarMonth advances a date by one calendar month, clamping to the
// last day of the target month when the source day does not exist there
// (Jan 31 -> Feb 28, or Feb 29 in a leap year).
func addCalendarMonth(t time.Time) time.Time {
	y, m, d := t.Date()
	// Day 0 of month+2 is the last day of month+1.
	lastDay := time.Date(y, m+2, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > lastDay {
		d = lastDay
	}
	h, min, sec := t.Clock()
	return time.Date(y, m+1, d, h, min, sec, t.Nanosecond(), t.Location())
}

// extendSubscription activates premium for one more calendar month. The
// extension base is the later of now and the current end date, so approving
// mid-cycle stacks onto the remaining time instead of discarding it.
func extendSubscription(sub domain.Subscription, now time.Time) domain.Subscription {
	base := now
	if sub.EndDate != nil && sub.EndDate.After(now) {
		base = *sub.EndDate
	}
	end := addCalendarMonth(base)

	// A fresh or lapsed subscription restarts its cycle now; an active one
	// keeps its original start.
	if sub.StartDate == nil || sub.Status != domain.SubscriptionActive {
		sub.StartDate = &now
	}
	sub.Plan = domain.PlanPremium
	sub.Status = domain.SubscriptionActive
	sub.EndDate = &end
	return sub
}

// SubmitPayment records a pending payment for the current calendar month.
func (s *subscriptionService) SubmitPayment(ctx context.Context, userID primitive.ObjectID, screenshotURL, transactionID, notes string) (*domain.Payment, error) {
	if screenshotURL == "" {
		return nil, ErrPaymentScreenshot
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	amount, currency := s.defaultAmount, s.defaultCurrency
	if cfg, err := s.settingsRepo.GetByType(ctx, domain.SettingsTypePayment); err == nil {
		amount, currency = cfg.Amount, cfg.Currency
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := time.Now().In(s.timezone)
	payment := &domain.Payment{
		UserID:        userID,
		Amount:        amount,
		Currency:      currency,
		Month:         int(now.Month()),
		Year:          now.Year(),
		Status:        domain.PaymentPending,
		Method:        "manual",
		TransactionID: transactionID,
		BillingCycle:  "monthly",
		ScreenshotURL: screenshotURL,
		Notes:         notes,
	}

	id, err := s.paymentRepo.Create(ctx, payment)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPaymentDuplicate
		}
		return nil, err
	}
	payment.ID = id
	return payment, nil
}

func (s *subscriptionService) GetPendingPayments(ctx context.Context) ([]domain.Payment, error) {
	return s.paymentRepo.FindPending(ctx)
}

// ApprovePayment marks the payment paid and extends the subscription.
func (s *subscriptionService) ApprovePayment(ctx context.Context, paymentID primitive.ObjectID) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.Status != domain.PaymentPending {
		return nil, ErrPaymentNotPending
	}

	user, err := s.userRepo.GetByID(ctx, payment.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.paymentRepo.UpdateStatus(ctx, paymentID, domain.PaymentPaid, &now, ""); err != nil {
		return nil, err
	}

	sub := extendSubscription(user.Subscription, now)
	if err := s.userRepo.UpdateSubscription(ctx, user.ID, sub); err != nil {
		return nil, err
	}

	s.mailer.SendPaymentApproved(user.Email, user.Name, sub.EndDate.In(s.timezone).Format("02 Jan 2006"))

	payment.Status = domain.PaymentPaid
	payment.PaidAt = &now
	return payment, nil
}

// RejectPayment marks the payment failed with the admin's reason.
func (s *subscriptionService) RejectPayment(ctx context.Context, paymentID primitive.ObjectID, reason string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.Status != domain.PaymentPending {
		return nil, ErrPaymentNotPending
	}

	if err := s.paymentRepo.UpdateStatus(ctx, paymentID, domain.PaymentFailed, nil, reason); err != nil {
		return nil, err
	}

	if user, err := s.userRepo.GetByID(ctx, payment.UserID); err == nil {
		s.mailer.SendPaymentRejected(user.Email, user.Name, reason)
	}

	payment.Status = domain.PaymentFailed
	payment.RejectionReason = reason
	return payment, nil
}

func (s *subscriptionService) GetPaymentHistory(ctx context.Context, userID primitive.ObjectID, filter repository.PaymentFilter) (*PaymentPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	payments, total, err := s.paymentRepo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	return &PaymentPage{Payments: payments, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *subscriptionService) GetAdminStats(ctx context.Context) (*repository.PaymentStats, error) {
	now := time.Now().In(s.timezone)
	return s.paymentRepo.Stats(ctx, int(now.Month()), now.Year())
}

// GetAdminPaidUsers lists regular users with their current-month payment
// state, for the admin collection report.
func (s *subscriptionService) GetAdminPaidUsers(ctx context.Context) ([]PaidUserStatus, error) {
	users, err := s.userRepo.List(ctx, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	now := time.Now().In(s.timezone)
	payments, err := s.paymentRepo.FindByMonth(ctx, int(now.Month()), now.Year())
	if err != nil {
		return nil, err
	}

	paid := make(map[primitive.ObjectID]*domain.Payment, len(payments))
	for i := range payments {
		p := &payments[i]
		if p.Status == domain.PaymentPaid {
			paid[p.UserID] = p
		}
	}

	report := make([]PaidUserStatus, 0, len(users))
	for _, u := range users {
		row := PaidUserStatus{User: u, CurrentMonthStatus: "due"}
		if p, ok := paid[u.ID]; ok {
			row.CurrentMonthStatus = "paid"
			row.LastPaidAt = p.PaidAt
		}
		report = append(report, row)
	}
	return report, nil
}

// CheckExpiry lazily flips the subscription to expired when its end date has
// passed. Called from login and the dashboard; there is no background job.
func (s *subscriptionService) CheckExpiry(ctx context.Context, user *domain.User) (*domain.User, error) {
	sub := user.Subscription
	if sub.Plan != domain.PlanPremium || sub.Status == domain.SubscriptionExpired {
		return user, nil
	}
	if sub.EndDate == nil || sub.EndDate.After(time.Now()) {
		return user, nil
	}

	sub.Status = domain.SubscriptionExpired
	if err := s.userRepo.UpdateSubscription(ctx, user.ID, sub); err != nil {
		return nil, err
	}
	user.Subscription = sub
	return user, nil
}

// GetPaymentConfig returns the manual-payment details shown to subscribing
// users, falling back to configured defaults before an admin has saved any.
func (s *subscriptionService) GetPaymentConfig(ctx context.Context) (*domain.Settings, error) {
	cfg, err := s.settingsRepo.GetByType(ctx, domain.SettingsTypePayment)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return &domain.Settings{
		Type:     domain.SettingsTypePayment,
		Amount:   s.defaultAmount,
		Currency: s.defaultCurrency,
	}, nil
}
