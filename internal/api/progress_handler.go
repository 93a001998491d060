package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/repository"
	"fitcoach/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressHandler holds the progress service dependency.
type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// --- Request Structs ---

type ProgressEntryRequest struct {
	Date         string                 `json:"date"` // YYYY-MM-DD, defaults to today
	Weight       float64                `json:"weight"`
	Measurements domain.Measurements    `json:"measurements"`
	Photos       []domain.ProgressPhoto `json:"photos"`
}

type DailyLogRequest struct {
	Date             string   `json:"date"` // YYYY-MM-DD, defaults to today
	MealsCompleted   *bool    `json:"mealsCompleted"`
	WorkoutCompleted *bool    `json:"workoutCompleted"`
	CheckIn          *bool    `json:"checkIn"`
	WaterIntake      *float64 `json:"waterIntake"`
	Notes            *string  `json:"notes"`
}

type FeedbackRequest struct {
	Feedback string `json:"feedback" binding:"required"`
}

func (h *ProgressHandler) handleProgressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProgressNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrProgressEmpty):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// --- Handler Methods ---

// AddEntry records a body measurement sample for the authenticated user.
func (h *ProgressHandler) AddEntry(c *gin.Context) {
	userID, _, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ProgressEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input := service.ProgressInput{
		Weight:       req.Weight,
		Measurements: req.Measurements,
		Photos:       req.Photos,
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		input.Date = date
	}

	entry, err := h.progressService.AddEntry(c.Request.Context(), userID, input)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetMyHistory returns the authenticated user's samples, newest first.
func (h *ProgressHandler) GetMyHistory(c *gin.Context) {
	userID, _, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	entries, err := h.progressService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load progress history")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetUserHistory returns another user's samples (trainer/admin).
func (h *ProgressHandler) GetUserHistory(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	entries, err := h.progressService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load progress history")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// SetFeedback attaches trainer feedback to a sample (trainer/admin).
func (h *ProgressHandler) SetFeedback(c *gin.Context) {
	progressID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid progress id")
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.progressService.SetFeedback(c.Request.Context(), progressID, req.Feedback); err != nil {
		h.handleProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback saved"})
}

// UpdateDailyLog patches the authenticated user's log for a day.
func (h *ProgressHandler) UpdateDailyLog(c *gin.Context) {
	userID, _, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req DailyLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	day := time.Now().UTC()
	if req.Date != "" {
		day, err = parseDate(req.Date)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
	}

	log, err := h.progressService.UpdateDailyLog(c.Request.Context(), userID, day, repository.DailyLogPatch{
		MealsCompleted:   req.MealsCompleted,
		WorkoutCompleted: req.WorkoutCompleted,
		CheckIn:          req.CheckIn,
		WaterIntake:      req.WaterIntake,
		Notes:            req.Notes,
	})
	if err != nil {
		h.handleProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

// GetDailyLog returns the authenticated user's log for a day.
func (h *ProgressHandler) GetDailyLog(c *gin.Context) {
	userID, _, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	day := time.Now().UTC()
	if dateStr := c.Query("date"); dateStr != "" {
		day, err = parseDate(dateStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
	}

	log, err := h.progressService.GetDailyLog(c.Request.Context(), userID, day)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}
