package api

import (
	"errors"
	"fmt"
	"net/http"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler holds the user service dependency.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// --- Request/Response Structs ---

type UpdateProfileRequest struct {
	Name              *string   `json:"name"`
	Phone             *string   `json:"phone"`
	Avatar            *string   `json:"avatar"`
	Height            *float64  `json:"height"`
	CurrentWeight     *float64  `json:"currentWeight"`
	TargetWeight      *float64  `json:"targetWeight"`
	Gender            *string   `json:"gender"`
	Age               *int      `json:"age"`
	FitnessGoal       *string   `json:"fitnessGoal"`
	ActivityLevel     *string   `json:"activityLevel"`
	MedicalConditions *[]string `json:"medicalConditions"`
	Specialization    *string   `json:"specialization"`
}

type AssignTrainerRequest struct {
	TrainerID string `json:"trainerId" binding:"required"`
}

type SetBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

func (r UpdateProfileRequest) toServiceUpdate() service.ProfileUpdate {
	return service.ProfileUpdate{
		Name:              r.Name,
		Phone:             r.Phone,
		Avatar:            r.Avatar,
		Height:            r.Height,
		CurrentWeight:     r.CurrentWeight,
		TargetWeight:      r.TargetWeight,
		Gender:            r.Gender,
		Age:               r.Age,
		FitnessGoal:       r.FitnessGoal,
		ActivityLevel:     r.ActivityLevel,
		MedicalConditions: r.MedicalConditions,
		Specialization:    r.Specialization,
	}
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrInvalidID):
		abortWithError(c, http.StatusNotFound, "User not found")
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// --- Handler Methods ---

// GetMe returns the authenticated user's profile.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateMe updates the authenticated user's profile.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req.toServiceUpdate())
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// GetHome returns the aggregated dashboard for the authenticated user.
func (h *UserHandler) GetHome(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	home, err := h.userService.GetHome(c.Request.Context(), userID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":           MapUserToResponse(home.User),
		"date":           home.Date,
		"today":          home.Today,
		"dailyLog":       home.DailyLog,
		"calories":       home.Calories,
		"bmi":            home.BMI,
		"subscription":   home.Subscription,
		"recentProgress": home.Progress,
	})
}

// ListUsers returns users, optionally filtered by role (admin only).
func (h *UserHandler) ListUsers(c *gin.Context) {
	role := domain.Role(c.Query("role"))
	users, err := h.userService.ListByRole(c.Request.Context(), role)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not list users")
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, MapUserToResponse(&users[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetAdminOverview returns the admin dashboard summary (admin only).
func (h *UserHandler) GetAdminOverview(c *gin.Context) {
	overview, err := h.userService.GetAdminOverview(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not compute overview")
		return
	}

	recent := make([]UserResponse, 0, len(overview.RecentUsers))
	for i := range overview.RecentUsers {
		recent = append(recent, MapUserToResponse(&overview.RecentUsers[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"totalUsers":    overview.TotalUsers,
		"totalTrainers": overview.TotalTrainers,
		"recentUsers":   recent,
	})
}

// GetUser returns one user by id (admin/trainer only).
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateUser updates another user's profile (admin only).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), c.Param("id"), req.toServiceUpdate())
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// SetBlocked blocks or unblocks a user (admin only).
func (h *UserHandler) SetBlocked(c *gin.Context) {
	var req SetBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.userService.SetBlocked(c.Request.Context(), c.Param("id"), req.Blocked); err != nil {
		h.handleUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": req.Blocked})
}

// DeleteUser removes a user account (admin only).
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// AssignTrainer links a trainer to a user (admin only).
func (h *UserHandler) AssignTrainer(c *gin.Context) {
	var req AssignTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.userService.AssignTrainer(c.Request.Context(), c.Param("id"), req.TrainerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}
