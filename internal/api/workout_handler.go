package api

import (
	"errors"
	"fmt"
	"net/http"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Request Structs ---

type WorkoutRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Level       string            `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Exercises   []domain.Exercise `json:"exercises"`
	Media       []domain.Media    `json:"media"`
	IsPublic    bool              `json:"isPublic"`
}

func (r WorkoutRequest) toServiceInput() service.WorkoutInput {
	return service.WorkoutInput{
		Title:       r.Title,
		Description: r.Description,
		Level:       r.Level,
		Exercises:   r.Exercises,
		Media:       r.Media,
		IsPublic:    r.IsPublic,
	}
}

// editorFromContext extracts the acting user's id and admin flag.
func editorFromContext(c *gin.Context) (primitive.ObjectID, bool, error) {
	userIDStr, err := getUserIDFromContext(c)
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	return userID, role == domain.RoleAdmin, nil
}

func (h *WorkoutHandler) handleWorkoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrWorkoutTitle):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotOwner):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// --- Handler Methods ---

// Create adds a new workout plan (trainer/admin).
func (h *WorkoutHandler) Create(c *gin.Context) {
	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	creatorID, _, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workout, err := h.workoutService.Create(c.Request.Context(), creatorID, req.toServiceInput())
	if err != nil {
		h.handleWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// List returns all workout plans (trainer/admin).
func (h *WorkoutHandler) List(c *gin.Context) {
	workouts, err := h.workoutService.List(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not list workouts")
		return
	}
	c.JSON(http.StatusOK, workouts)
}

// ListMine returns the plans visible to the authenticated user.
func (h *WorkoutHandler) ListMine(c *gin.Context) {
	userID, _, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workouts, err := h.workoutService.ListVisibleToUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not list workouts")
		return
	}
	c.JSON(http.StatusOK, workouts)
}

// Get returns one workout plan by id.
func (h *WorkoutHandler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout id")
		return
	}
	workout, err := h.workoutService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// Update replaces a workout plan's authorable fields.
func (h *WorkoutHandler) Update(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout id")
		return
	}

	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	editorID, isAdmin, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workout, err := h.workoutService.Update(c.Request.Context(), id, editorID, isAdmin, req.toServiceInput())
	if err != nil {
		h.handleWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// Delete removes a workout plan and its schedule assignments.
func (h *WorkoutHandler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout id")
		return
	}

	editorID, isAdmin, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	if err := h.workoutService.Delete(c.Request.Context(), id, editorID, isAdmin); err != nil {
		h.handleWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workout deleted"})
}
