package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/repository"
	"fitcoach/backend/internal/service"
	"fitcoach/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxScreenshotSize caps payment screenshot uploads at 5 MiB.
const maxScreenshotSize = 5 << 20

// SubscriptionHandler holds the subscription service and file storage.
type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	fileStorage         storage.FileStorage
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptionService service.SubscriptionService, fileStorage storage.FileStorage) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		fileStorage:         fileStorage,
	}
}

// --- Request Structs ---

type RejectPaymentRequest struct {
	Reason string `json:"reason"`
}

func (h *SubscriptionHandler) handlePaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPaymentNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPaymentNotPending):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPaymentDuplicate):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPaymentScreenshot):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// --- Handler Methods ---

// SubmitPayment accepts a multipart form with the transfer screenshot and
// records a pending payment for the current month.
func (h *SubscriptionHandler) SubmitPayment(c *gin.Context) {
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

	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Screenshot file is required")
		return
	}
	if fileHeader.Size > maxScreenshotSize {
		abortWithError(c, http.StatusBadRequest, "Screenshot exceeds the 5MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read the uploaded file")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectKey := fmt.Sprintf("payments/%s/%s%s", userIDStr, uuid.NewString(), filepath.Ext(fileHeader.Filename))

	screenshotURL, err := h.fileStorage.Upload(c.Request.Context(), objectKey, file, contentType)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not store the screenshot")
		return
	}

	payment, err := h.subscriptionService.SubmitPayment(
		c.Request.Context(),
		userID,
		screenshotURL,
		c.PostForm("transactionId"),
		c.PostForm("notes"),
	)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// GetPending lists payments awaiting review (admin only).
func (h *SubscriptionHandler) GetPending(c *gin.Context) {
	payments, err := h.subscriptionService.GetPendingPayments(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not list pending payments")
		return
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	c.JSON(http.StatusOK, payments)
}

// Approve marks a payment paid and extends the subscription (admin only).
func (h *SubscriptionHandler) Approve(c *gin.Context) {
	paymentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid payment id")
		return
	}

	payment, err := h.subscriptionService.ApprovePayment(c.Request.Context(), paymentID)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// Reject marks a payment failed with the admin's reason (admin only).
func (h *SubscriptionHandler) Reject(c *gin.Context) {
	paymentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid payment id")
		return
	}

	// The reason is optional; an empty or absent body is fine.
	var req RejectPaymentRequest
	_ = c.ShouldBindJSON(&req)

	payment, err := h.subscriptionService.RejectPayment(c.Request.Context(), paymentID, req.Reason)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// GetHistory returns the authenticated user's payment history, paginated.
func (h *SubscriptionHandler) GetHistory(c *gin.Context) {
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

	// Admins may inspect another user's history.
	if target := c.Query("userId"); target != "" {
		role, err := getUserRoleFromContext(c)
		if err != nil || role != domain.RoleAdmin {
			abortWithError(c, http.StatusForbidden, "Only admins can view other users' payment history")
			return
		}
		userID, err = primitive.ObjectIDFromHex(target)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid user ID")
			return
		}
	}

	filter := repository.PaymentFilter{
		Status: domain.PaymentStatus(c.Query("status")),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if from, err := time.Parse(dateLayout, c.Query("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse(dateLayout, c.Query("to")); err == nil {
		// Make the upper bound inclusive of the whole day.
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}

	page, err := h.subscriptionService.GetPaymentHistory(c.Request.Context(), userID, filter)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load payment history")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetStats returns the aggregated payment overview (admin only).
func (h *SubscriptionHandler) GetStats(c *gin.Context) {
	stats, err := h.subscriptionService.GetAdminStats(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not compute payment stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetPaidUsers lists users with their current-month payment state (admin only).
func (h *SubscriptionHandler) GetPaidUsers(c *gin.Context) {
	report, err := h.subscriptionService.GetAdminPaidUsers(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not build the collection report")
		return
	}

	type row struct {
		User               UserResponse `json:"user"`
		CurrentMonthStatus string       `json:"currentMonthStatus"`
		LastPaidAt         *time.Time   `json:"lastPaidAt,omitempty"`
	}
	resp := make([]row, 0, len(report))
	for i := range report {
		resp = append(resp, row{
			User:               MapUserToResponse(&report[i].User),
			CurrentMonthStatus: report[i].CurrentMonthStatus,
			LastPaidAt:         report[i].LastPaidAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// GetPaymentConfig returns the manual-payment details shown before submitting.
func (h *SubscriptionHandler) GetPaymentConfig(c *gin.Context) {
	cfg, err := h.subscriptionService.GetPaymentConfig(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load payment configuration")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"upiId":    cfg.UPIID,
		"amount":   cfg.Amount,
		"currency": cfg.Currency,
	})
}
