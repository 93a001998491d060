package api

import (
	"errors"
	"fmt"
	"net/http"

	"fitcoach/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatHandler holds the chat service dependency.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// --- Request Structs ---

type SendMessageRequest struct {
	RecipientID string `json:"recipientId" binding:"required"`
	Content     string `json:"content" binding:"required"`
}

func (h *ChatHandler) handleChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrChatNotFound), errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMessageEmpty), errors.Is(err, service.ErrChatSelfMessage):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrChatNoCounterpart):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// --- Handler Methods ---

// GetMyConversation opens the authenticated user's conversation with their
// trainer (or an admin when none is assigned).
func (h *ChatHandler) GetMyConversation(c *gin.Context) {
	userID, _, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	chat, err := h.chatService.GetMyConversation(c.Request.Context(), userID)
	if err != nil {
		h.handleChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

// GetConversationWith opens the conversation with a specific user
// (trainer/admin side).
func (h *ChatHandler) GetConversationWith(c *gin.Context) {
	me, _, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	other, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	chat, err := h.chatService.GetConversationWith(c.Request.Context(), me, other)
	if err != nil {
		h.handleChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

// SendMessage appends a message to the conversation with the recipient.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	senderID, _, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	recipientID, err := primitive.ObjectIDFromHex(req.RecipientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid recipient id")
		return
	}

	msg, err := h.chatService.SendMessage(c.Request.Context(), senderID, recipientID, req.Content)
	if err != nil {
		h.handleChatError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListConversations returns every conversation the authenticated user
// participates in (trainer/admin inbox).
func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID, _, err := editorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	chats, err := h.chatService.ListConversations(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not list conversations")
		return
	}
	c.JSON(http.StatusOK, chats)
}
