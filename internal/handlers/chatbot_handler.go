package handlers

import (
	"context"
	"net/http"

	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ChatResponder answers chat messages
type ChatResponder interface {
	Reply(ctx context.Context, message string) (*models.ChatResponse, error)
}

// ChatbotHandler handles the assistant endpoint
type ChatbotHandler struct {
	chatbot ChatResponder
	logger  *logrus.Logger
}

// NewChatbotHandler creates a new ChatbotHandler
func NewChatbotHandler(chatbot ChatResponder, logger *logrus.Logger) *ChatbotHandler {
	return &ChatbotHandler{
		chatbot: chatbot,
		logger:  logger,
	}
}

// Chat handles POST /api/v1/chatbot
func (h *ChatbotHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	resp, err := h.chatbot.Reply(c.Request.Context(), req.Message)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
