package api

import (
	"errors"
	"fmt"
	"net/http"

	"fitcoach/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// SettingsHandler holds the settings service dependency.
type SettingsHandler struct {
	settingsService service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// --- Request Structs ---

type UpdatePaymentSettingsRequest struct {
	UPIID    string  `json:"upiId" binding:"required"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Currency string  `json:"currency"`
}

// --- Handler Methods ---

// GetPaymentSettings returns the payment configuration (admin only).
func (h *SettingsHandler) GetPaymentSettings(c *gin.Context) {
	settings, err := h.settingsService.GetPaymentSettings(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdatePaymentSettings replaces the payment configuration (admin only).
func (h *SettingsHandler) UpdatePaymentSettings(c *gin.Context) {
	var req UpdatePaymentSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	settings, err := h.settingsService.UpdatePaymentSettings(c.Request.Context(), req.UPIID, req.Amount, req.Currency)
	if err != nil {
		if errors.Is(err, service.ErrSettingsInvalid) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not save settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}
