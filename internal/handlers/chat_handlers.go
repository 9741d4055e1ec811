package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"sari_pos_backend/internal/services"
	"sari_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService services.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(cs services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: cs}
}

// PostMessage handles POST /chat/messages.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req services.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	message, err := h.chatService.PostMessage(actorID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage), errors.Is(err, services.ErrValidation):
			utils.RespondValidationFailed(c, err.Error())
		default:
			utils.LogError(err, "Failed to post chat message")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to post message", ""))
		}
		return
	}
	c.JSON(http.StatusCreated, message)
}

// GetMessages handles GET /chat/messages?after_id=N&limit=M, the polling endpoint.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	afterID, err := strconv.ParseInt(c.DefaultQuery("after_id", "0"), 10, 64)
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid after_id format")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	messages, err := h.chatService.ListMessages(afterID, limit)
	if err != nil {
		utils.LogError(err, "Failed to fetch chat messages")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch messages", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": messages})
}
