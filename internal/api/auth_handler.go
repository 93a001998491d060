package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// UserResponse excludes sensitive info like password hash and OTP state.
type UserResponse struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	Email             string              `json:"email"`
	Phone             string              `json:"phone,omitempty"`
	Role              domain.Role         `json:"role"`
	Avatar            string              `json:"avatar,omitempty"`
	Height            float64             `json:"height,omitempty"`
	CurrentWeight     float64             `json:"currentWeight,omitempty"`
	TargetWeight      float64             `json:"targetWeight,omitempty"`
	Gender            string              `json:"gender,omitempty"`
	Age               int                 `json:"age,omitempty"`
	FitnessGoal       string              `json:"fitnessGoal,omitempty"`
	ActivityLevel     string              `json:"activityLevel,omitempty"`
	MedicalConditions []string            `json:"medicalConditions,omitempty"`
	Specialization    string              `json:"specialization,omitempty"`
	Subscription      domain.Subscription `json:"subscription"`
	AssignedTrainer   *string             `json:"assignedTrainer,omitempty"`
	IsVerified        bool                `json:"isVerified"`
	IsBlocked         bool                `json:"isBlocked"`
	CreatedAt         time.Time           `json:"createdAt"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	resp := UserResponse{
		ID:                user.ID.Hex(),
		Name:              user.Name,
		Email:             user.Email,
		Phone:             user.Phone,
		Role:              user.Role,
		Avatar:            user.Avatar,
		Height:            user.Height,
		CurrentWeight:     user.CurrentWeight,
		TargetWeight:      user.TargetWeight,
		Gender:            user.Gender,
		Age:               user.Age,
		FitnessGoal:       user.FitnessGoal,
		ActivityLevel:     user.ActivityLevel,
		MedicalConditions: user.MedicalConditions,
		Specialization:    user.Specialization,
		Subscription:      user.Subscription,
		IsVerified:        user.IsVerified,
		IsBlocked:         user.IsBlocked,
		CreatedAt:         user.CreatedAt,
	}
	if user.AssignedTrainer != nil {
		trainerID := user.AssignedTrainer.Hex()
		resp.AssignedTrainer = &trainerID
	}
	return resp
}

// --- Handler Methods ---

// Register creates a new unverified account and emails a one-time code.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Verification code sent to your email",
		"user":    MapUserToResponse(user),
	})
}

// VerifyOTP confirms the emailed code and signs the user in.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, token, err := h.authService.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOTP):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAlreadyVerified):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during verification")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, User: MapUserToResponse(user)})
}

// ResendOTP emails a fresh verification code.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.authService.ResendOTP(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			abortWithError(c, http.StatusNotFound, "No account found for this email")
		case errors.Is(err, service.ErrAlreadyVerified):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not resend the verification code")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// Login authenticates a user and returns a JWT token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			abortWithError(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrAccountBlocked):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrNotVerified):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, User: MapUserToResponse(user)})
}

// ChangePassword verifies the old password and replaces it.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			abortWithError(c, http.StatusUnauthorized, "Old password is incorrect")
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not change the password")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}
