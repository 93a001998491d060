package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

// maxScheduleRangeDays caps the my-schedule range query.
const maxScheduleRangeDays = 92

// ScheduleHandler holds the schedule service dependency.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// --- Request/Response Structs ---

type AssignScheduleRequest struct {
	Slot     domain.PlanSlot `json:"slot" binding:"required,oneof=workout mealPlan"`
	PlanID   string          `json:"planId" binding:"required"`
	Date     string          `json:"date" binding:"required"` // YYYY-MM-DD
	UserID   string          `json:"userId"`                  // required unless isGlobal
	IsGlobal bool            `json:"isGlobal"`
}

type SyncGlobalRequest struct {
	Slot      domain.PlanSlot `json:"slot" binding:"required,oneof=workout mealPlan"`
	PlanID    string          `json:"planId" binding:"required"`
	IsPublic  bool            `json:"isPublic"`
	StartDate string          `json:"startDate" binding:"required"` // YYYY-MM-DD
	EndDate   string          `json:"endDate" binding:"required"`   // YYYY-MM-DD
	Dates     []string        `json:"dates"`                        // YYYY-MM-DD each
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleValidation), errors.Is(err, service.ErrScheduleUserNeeded):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrScheduleNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// --- Handler Methods ---

// Assign creates or overwrites one date's assignment.
func (h *ScheduleHandler) Assign(c *gin.Context) {
	var req AssignScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan id")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	assignerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	assignedBy, _ := primitive.ObjectIDFromHex(assignerID)

	input := service.AssignScheduleInput{
		Slot:       req.Slot,
		PlanID:     planID,
		Date:       date,
		IsGlobal:   req.IsGlobal,
		AssignedBy: assignedBy,
	}
	if req.UserID != "" {
		userID, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid user id")
			return
		}
		input.UserID = &userID
	}

	schedule, err := h.scheduleService.AssignSingle(c.Request.Context(), input)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// Sync reconciles a plan's global assignments for a tier inside a window.
func (h *ScheduleHandler) Sync(c *gin.Context) {
	var req SyncGlobalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan id")
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid startDate, expected YYYY-MM-DD")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid endDate, expected YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		abortWithError(c, http.StatusBadRequest, "endDate must not be before startDate")
		return
	}

	dates := make([]time.Time, 0, len(req.Dates))
	for _, d := range req.Dates {
		date, err := parseDate(d)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid date '%s', expected YYYY-MM-DD", d))
			return
		}
		if date.Before(start) || date.After(end) {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Date '%s' is outside the sync window", d))
			return
		}
		dates = append(dates, date)
	}

	assignerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	assignedBy, _ := primitive.ObjectIDFromHex(assignerID)

	result, err := h.scheduleService.SyncGlobal(c.Request.Context(), service.SyncGlobalInput{
		Slot:       req.Slot,
		PlanID:     planID,
		IsPublic:   req.IsPublic,
		StartDate:  start,
		EndDate:    end,
		Dates:      dates,
		AssignedBy: assignedBy,
	})
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Delete removes one schedule record.
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid schedule id")
		return
	}
	if err := h.scheduleService.DeleteAssignment(c.Request.Context(), id); err != nil {
		h.handleScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Assignment removed"})
}

// GetMySchedule resolves the authenticated user's schedule. With startDate
// and endDate query params it returns one entry per day including the lock
// flag; with a single date param it returns the legacy single-day shape.
func (h *ScheduleHandler) GetMySchedule(c *gin.Context) {
	userIDStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Invalid user ID in token")
		return
	}

	startStr, endStr := c.Query("startDate"), c.Query("endDate")
	if startStr != "" || endStr != "" {
		start, err := parseDate(startStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid startDate, expected YYYY-MM-DD")
			return
		}
		end, err := parseDate(endStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid endDate, expected YYYY-MM-DD")
			return
		}
		if end.Before(start) {
			abortWithError(c, http.StatusBadRequest, "endDate must not be before startDate")
			return
		}
		if end.Sub(start) > maxScheduleRangeDays*24*time.Hour {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Range exceeds %d days", maxScheduleRangeDays))
			return
		}

		days, err := h.scheduleService.GetMyScheduleRange(c.Request.Context(), userID, start, end)
		if err != nil {
			h.handleScheduleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"days": days})
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		dateStr = time.Now().UTC().Format(dateLayout)
	}
	date, err := parseDate(dateStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	day, err := h.scheduleService.GetMyScheduleSingle(c.Request.Context(), userID, date)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": day})
}

// GetDaily returns every tier's content for one day (admin view).
func (h *ScheduleHandler) GetDaily(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		dateStr = time.Now().UTC().Format(dateLayout)
	}
	date, err := parseDate(dateStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	view, err := h.scheduleService.GetAdminDaily(c.Request.Context(), date)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
