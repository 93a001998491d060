package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/email"
	"fitcoach/backend/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountBlocked     = errors.New("account is blocked")
	ErrNotVerified        = errors.New("email is not verified")
	ErrInvalidOTP         = errors.New("invalid or expired verification code")
	ErrAlreadyVerified    = errors.New("email is already verified")
)

const otpTTL = 10 * time.Minute

// Claims defines the structure of the JWT payload.
type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthService defines the interface for authentication operations.
type AuthService interface {
	// Register creates an unverified account and emails a one-time code.
	Register(ctx context.Context, name, email, phone, password string) (*domain.User, error)
	// VerifyOTP confirms the emailed code and marks the account verified.
	VerifyOTP(ctx context.Context, email, otp string) (*domain.User, string, error)
	ResendOTP(ctx context.Context, email string) error
	// Login authenticates and returns the user plus a signed JWT. Expired
	// premium subscriptions are flipped to expired here, lazily.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	ChangePassword(ctx context.Context, userID string, oldPassword, newPassword string) error
}

// --- Service Implementation ---

type authService struct {
	userRepo      repository.UserRepository
	subscriptions SubscriptionService
	mailer        email.Mailer
	jwtSecret     []byte
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	userRepo repository.UserRepository,
	subscriptions SubscriptionService,
	mailer email.Mailer,
	jwtSecret string,
	jwtExpiration time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		subscriptions: subscriptions,
		mailer:        mailer,
		jwtSecret:     []byte(jwtSecret),
		jwtExpiration: jwtExpiration,
	}
}

func generateOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

// Register creates an unverified account and emails a one-time code.
func (s *authService) Register(ctx context.Context, name, emailAddr, phone, password string) (*domain.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("error checking email existence: %w", err)
	}
	if existing != nil {
		// Re-registering an unverified account resends the code instead of
		// leaking whether the email is taken through a different error path.
		if !existing.IsVerified {
			if err := s.issueOTP(ctx, existing); err != nil {
				return nil, err
			}
			return existing, nil
		}
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	otp := generateOTP()
	otpExpires := time.Now().UTC().Add(otpTTL)

	newUser := &domain.User{
		Name:         name,
		Email:        emailAddr,
		Phone:        phone,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleUser,
		IsVerified:   false,
		OTP:          otp,
		OTPExpires:   &otpExpires,
	}

	id, err := s.userRepo.Create(ctx, newUser)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	newUser.ID = id

	s.mailer.SendOTP(newUser.Email, newUser.Name, otp)
	return newUser, nil
}

func (s *authService) issueOTP(ctx context.Context, user *domain.User) error {
	otp := generateOTP()
	otpExpires := time.Now().UTC().Add(otpTTL)
	user.OTP = otp
	user.OTPExpires = &otpExpires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.mailer.SendOTP(user.Email, user.Name, otp)
	return nil
}

// VerifyOTP confirms the emailed code, marks the account verified and signs
// the user in.
func (s *authService) VerifyOTP(ctx context.Context, emailAddr, otp string) (*domain.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidOTP
		}
		return nil, "", err
	}
	if user.IsVerified {
		return nil, "", ErrAlreadyVerified
	}
	if user.OTP == "" || user.OTP != otp || user.OTPExpires == nil || time.Now().After(*user.OTPExpires) {
		return nil, "", ErrInvalidOTP
	}

	user.IsVerified = true
	user.OTP = ""
	user.OTPExpires = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) ResendOTP(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}
	return s.issueOTP(ctx, user)
}

// Login checks user credentials and returns a JWT token upon success.
func (s *authService) Login(ctx context.Context, emailAddr, password string) (*domain.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("error fetching user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if user.IsBlocked {
		return nil, "", ErrAccountBlocked
	}
	if !user.IsVerified && user.Role == domain.RoleUser {
		return nil, "", ErrNotVerified
	}

	user, err = s.subscriptions.CheckExpiry(ctx, user)
	if err != nil {
		return nil, "", err
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// ChangePassword verifies the old password and stores a hash of the new one.
func (s *authService) ChangePassword(ctx context.Context, userID string, oldPassword, newPassword string) error {
	id, err := parseObjectID(userID)
	if err != nil {
		return ErrUserNotFound
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashed)
	return s.userRepo.Update(ctx, user)
}

// generateJWT creates a signed token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &Claims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.ID.Hex(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateJWT parses and validates a token string, returning the claims.
func ValidateJWT(tokenString string, jwtSecret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
