package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeResponder struct {
	resp *models.ChatResponse
	err  error
}

func (f *fakeResponder) Reply(ctx context.Context, message string) (*models.ChatResponse, error) {
	if message == "" {
		return nil, models.ErrEmptyMessage
	}
	return f.resp, f.err
}

func chatRouter(responder ChatResponder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/chatbot", NewChatbotHandler(responder, quietLogger()).Chat)
	return router
}

func TestChatbotHandler(t *testing.T) {
	t.Run("Answer With Redirect", func(t *testing.T) {
		responder := &fakeResponder{resp: &models.ChatResponse{
			Answer:   "2 adet sefer bulundu.",
			Redirect: "/api/v1/trips/search?date=2026-10-16&destination=Istanbul&origin=Ankara",
		}}

		w := postJSON(chatRouter(responder), "/chatbot", `{"message":"ankara istanbul yarın"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"answer":"2 adet sefer bulundu."`)
		assert.Contains(t, w.Body.String(), `"redirect"`)
	})

	t.Run("Empty Message", func(t *testing.T) {
		w := postJSON(chatRouter(&fakeResponder{}), "/chatbot", `{"message":""}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "EMPTY_MESSAGE")
	})

	t.Run("Assistant Failure", func(t *testing.T) {
		responder := &fakeResponder{err: fmt.Errorf("%w: quota", models.ErrAssistantUnavailable)}

		w := postJSON(chatRouter(responder), "/chatbot", `{"message":"merhaba"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), assistantFailureMessage)
	})

	t.Run("Not JSON", func(t *testing.T) {
		w := postJSON(chatRouter(&fakeResponder{}), "/chatbot", `merhaba`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
