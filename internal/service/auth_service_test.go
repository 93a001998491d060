package service

import (
	"context"
	"testing"
	"time"

	"fitcoach/backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// captureMailer records the last OTP instead of sending it.
type captureMailer struct {
	lastOTP string
}

func (m *captureMailer) SendOTP(to, name, otp string)                        { m.lastOTP = otp }
func (m *captureMailer) SendPaymentApproved(to, name string, endDate string) {}
func (m *captureMailer) SendPaymentRejected(to, name, reason string)         {}

func newTestAuthService(userRepo *fakeUserRepo, mailer *captureMailer) AuthService {
	subscriptions := NewSubscriptionService(newFakePaymentRepo(), userRepo, newFakeSettingsRepo(), noopMailer{}, time.UTC, 500, "INR")
	return NewAuthService(userRepo, subscriptions, mailer, "test-secret", time.Hour)
}

func TestRegisterCreatesUnverifiedUserWithOTP(t *testing.T) {
	userRepo := newFakeUserRepo()
	mailer := &captureMailer{}
	svc := newTestAuthService(userRepo, mailer)

	user, err := svc.Register(context.Background(), "Asha", "asha@example.com", "9999999999", "password123")
	require.NoError(t, err)
	assert.False(t, user.IsVerified)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Len(t, mailer.lastOTP, 6)

	stored, err := userRepo.GetByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, mailer.lastOTP, stored.OTP)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
}

func TestRegisterVerifiedEmailConflicts(t *testing.T) {
	userRepo := newFakeUserRepo()
	mailer := &captureMailer{}
	svc := newTestAuthService(userRepo, mailer)

	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "", "password123")
	require.NoError(t, err)

	_, _, err = svc.VerifyOTP(context.Background(), "asha@example.com", mailer.lastOTP)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Asha Again", "asha@example.com", "", "password456")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterUnverifiedEmailResendsCode(t *testing.T) {
	userRepo := newFakeUserRepo()
	mailer := &captureMailer{}
	svc := newTestAuthService(userRepo, mailer)

	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "", "password123")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Asha", "asha@example.com", "", "password123")
	require.NoError(t, err)
	assert.Len(t, mailer.lastOTP, 6)

	// The stored code is whatever was sent last.
	stored, err := userRepo.GetByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, mailer.lastOTP, stored.OTP)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	userRepo := newFakeUserRepo()
	mailer := &captureMailer{}
	svc := newTestAuthService(userRepo, mailer)

	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "", "password123")
	require.NoError(t, err)

	wrong := "000000"
	if mailer.lastOTP == wrong {
		wrong = "000001"
	}
	_, _, err = svc.VerifyOTP(context.Background(), "asha@example.com", wrong)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyOTPExpiredCode(t *testing.T) {
	userRepo := newFakeUserRepo()
	mailer := &captureMailer{}
	svc := newTestAuthService(userRepo, mailer)

	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "", "password123")
	require.NoError(t, err)

	stored, err := userRepo.GetByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	past := time.Now().Add(-time.Minute)
	stored.OTPExpires = &past
	require.NoError(t, userRepo.Update(context.Background(), stored))

	_, _, err = svc.VerifyOTP(context.Background(), "asha@example.com", mailer.lastOTP)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyOTPSignsUserIn(t *testing.T) {
	userRepo := newFakeUserRepo()
	mailer := &captureMailer{}
	svc := newTestAuthService(userRepo, mailer)

	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "", "password123")
	require.NoError(t, err)

	user, token, err := svc.VerifyOTP(context.Background(), "asha@example.com", mailer.lastOTP)
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Empty(t, user.OTP)

	claims, err := ValidateJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestLoginRejectsUnverifiedUser(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := newTestAuthService(userRepo, &captureMailer{})

	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "", "password123")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "asha@example.com", "password123")
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestLoginRejectsBlockedUser(t *testing.T) {
	userRepo := newFakeUserRepo()
	mailer := &captureMailer{}
	svc := newTestAuthService(userRepo, mailer)

	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "", "password123")
	require.NoError(t, err)
	_, _, err = svc.VerifyOTP(context.Background(), "asha@example.com", mailer.lastOTP)
	require.NoError(t, err)

	stored, err := userRepo.GetByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	require.NoError(t, userRepo.SetBlocked(context.Background(), stored.ID, true))

	_, _, err = svc.Login(context.Background(), "asha@example.com", "password123")
	assert.ErrorIs(t, err, ErrAccountBlocked)
}

func TestLoginWrongPassword(t *testing.T) {
	userRepo := newFakeUserRepo()
	mailer := &captureMailer{}
	svc := newTestAuthService(userRepo, mailer)

	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "", "password123")
	require.NoError(t, err)
	_, _, err = svc.VerifyOTP(context.Background(), "asha@example.com", mailer.lastOTP)
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "asha@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginExpiresLapsedSubscription(t *testing.T) {
	userRepo := newFakeUserRepo()
	mailer := &captureMailer{}
	svc := newTestAuthService(userRepo, mailer)

	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "", "password123")
	require.NoError(t, err)
	_, _, err = svc.VerifyOTP(context.Background(), "asha@example.com", mailer.lastOTP)
	require.NoError(t, err)

	stored, err := userRepo.GetByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	past := time.Now().AddDate(0, 0, -1)
	require.NoError(t, userRepo.UpdateSubscription(context.Background(), stored.ID, domain.Subscription{
		Plan:    domain.PlanPremium,
		Status:  domain.SubscriptionActive,
		EndDate: &past,
	}))

	user, _, err := svc.Login(context.Background(), "asha@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionExpired, user.Subscription.Status)
	assert.False(t, user.IsPremium())
}

func TestChangePassword(t *testing.T) {
	userRepo := newFakeUserRepo()
	mailer := &captureMailer{}
	svc := newTestAuthService(userRepo, mailer)

	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "", "password123")
	require.NoError(t, err)
	user, _, err := svc.VerifyOTP(context.Background(), "asha@example.com", mailer.lastOTP)
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID.Hex(), "wrong", "newpassword1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID.Hex(), "password123", "newpassword1"))

	_, _, err = svc.Login(context.Background(), "asha@example.com", "newpassword1")
	assert.NoError(t, err)
}
