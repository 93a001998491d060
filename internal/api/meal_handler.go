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

// MealPlanHandler holds the meal plan service dependency.
type MealPlanHandler struct {
	mealPlanService service.MealPlanService
}

// NewMealPlanHandler creates a new MealPlanHandler.
func NewMealPlanHandler(mealPlanService service.MealPlanService) *MealPlanHandler {
	return &MealPlanHandler{mealPlanService: mealPlanService}
}

// --- Request Structs ---

type MealPlanRequest struct {
	Title       string         `json:"title" binding:"required"`
	Description string         `json:"description"`
	Meals       []domain.Meal  `json:"meals"`
	Media       []domain.Media `json:"media"`
	IsPublic    bool           `json:"isPublic"`
}

func (r MealPlanRequest) toServiceInput() service.MealPlanInput {
	return service.MealPlanInput{
		Title:       r.Title,
		Description: r.Description,
		Meals:       r.Meals,
		Media:       r.Media,
		IsPublic:    r.IsPublic,
	}
}

func (h *MealPlanHandler) handleMealPlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMealPlanNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMealPlanTitle):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotOwner):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// --- Handler Methods ---

// Create adds a new meal plan (trainer/admin).
func (h *MealPlanHandler) Create(c *gin.Context) {
	var req MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	creatorID, _, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	plan, err := h.mealPlanService.Create(c.Request.Context(), creatorID, req.toServiceInput())
	if err != nil {
		h.handleMealPlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// List returns all meal plans (trainer/admin).
func (h *MealPlanHandler) List(c *gin.Context) {
	plans, err := h.mealPlanService.List(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not list meal plans")
		return
	}
	c.JSON(http.StatusOK, plans)
}

// ListMine returns the plans visible to the authenticated user.
func (h *MealPlanHandler) ListMine(c *gin.Context) {
	userID, _, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	plans, err := h.mealPlanService.ListVisibleToUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not list meal plans")
		return
	}
	c.JSON(http.StatusOK, plans)
}

// Get returns one meal plan by id.
func (h *MealPlanHandler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid meal plan id")
		return
	}
	plan, err := h.mealPlanService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleMealPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Update replaces a meal plan's authorable fields.
func (h *MealPlanHandler) Update(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid meal plan id")
		return
	}

	var req MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	editorID, isAdmin, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	plan, err := h.mealPlanService.Update(c.Request.Context(), id, editorID, isAdmin, req.toServiceInput())
	if err != nil {
		h.handleMealPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Delete removes a meal plan and its schedule assignments.
func (h *MealPlanHandler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid meal plan id")
		return
	}

	editorID, isAdmin, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	if err := h.mealPlanService.Delete(c.Request.Context(), id, editorID, isAdmin); err != nil {
		h.handleMealPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal plan deleted"})
}
