package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"fitcoach/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxMediaSize caps server-side media uploads at 25 MiB.
const maxMediaSize = 25 << 20

// MediaHandler holds the file storage dependency.
type MediaHandler struct {
	fileStorage storage.FileStorage
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(fileStorage storage.FileStorage) *MediaHandler {
	return &MediaHandler{fileStorage: fileStorage}
}

// --- Request Structs ---

type PresignUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// --- Handler Methods ---

// Upload stores a file server-side and returns its public URL. Used for
// plan media and avatars uploaded through the admin panel.
func (h *MediaHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "File is required")
		return
	}
	if fileHeader.Size > maxMediaSize {
		abortWithError(c, http.StatusBadRequest, "File exceeds the 25MB limit")
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
	objectKey := fmt.Sprintf("media/%s%s", uuid.NewString(), filepath.Ext(fileHeader.Filename))

	url, err := h.fileStorage.Upload(c.Request.Context(), objectKey, file, contentType)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not store the file")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url, "key": objectKey})
}

// PresignUpload returns a temporary PUT URL so large files can go straight
// to object storage.
func (h *MediaHandler) PresignUpload(c *gin.Context) {
	var req PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	objectKey := fmt.Sprintf("media/%s%s", uuid.NewString(), filepath.Ext(req.FileName))
	url, err := h.fileStorage.GeneratePresignedUploadURL(c.Request.Context(), objectKey, req.ContentType, 15*time.Minute)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not create the upload URL")
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploadUrl": url, "key": objectKey})
}
