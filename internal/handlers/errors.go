package handlers

import (
	"errors"
	"net/http"

	"github.com/dogubilet/ticket-backend/internal/middleware"
	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TicketsPath is where forbidden ticket operations send the client back to
const TicketsPath = "/api/v1/tickets"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

type errorMapping struct {
	target error
	status int
	kind   string
	code   string
}

// errorTable maps domain sentinels to responses. Order matters only for
// wrapped errors matching more than one entry.
var errorTable = []errorMapping{
	{models.ErrNoSuchTrip, http.StatusNotFound, "not_found", "TRIP_NOT_FOUND"},
	{models.ErrNoSuchSeat, http.StatusNotFound, "not_found", "SEAT_NOT_FOUND"},
	{models.ErrUserNotFound, http.StatusNotFound, "not_found", "USER_NOT_FOUND"},
	{models.ErrNotFound, http.StatusNotFound, "not_found", "NOT_FOUND"},

	{models.ErrSeatOccupied, http.StatusConflict, "conflict", "SEAT_OCCUPIED"},
	{models.ErrAlreadyRefunded, http.StatusConflict, "conflict", "ALREADY_REFUNDED"},
	{models.ErrEmailTaken, http.StatusConflict, "conflict", "EMAIL_TAKEN"},

	{models.ErrForbidden, http.StatusForbidden, "forbidden", "NOT_TICKET_OWNER"},
	{models.ErrTripDeparted, http.StatusForbidden, "forbidden", "TRIP_DEPARTED"},

	{models.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized", "INVALID_CREDENTIALS"},

	{models.ErrMissingFields, http.StatusBadRequest, "validation_error", "MISSING_FIELDS"},
	{models.ErrPasswordMismatch, http.StatusBadRequest, "validation_error", "PASSWORD_MISMATCH"},
	{models.ErrWeakPassword, http.StatusBadRequest, "validation_error", "WEAK_PASSWORD"},
	{models.ErrWrongPassword, http.StatusBadRequest, "validation_error", "WRONG_PASSWORD"},
	{models.ErrInvalidInput, http.StatusBadRequest, "validation_error", "INVALID_INPUT"},
	{models.ErrEmptyMessage, http.StatusBadRequest, "validation_error", "EMPTY_MESSAGE"},
}

// assistantFailureMessage is what the chatbot shows when generation fails
const assistantFailureMessage = "Yapay zeka servisinde bir hata oluştu."

// respondError writes the response for err and logs anything unexpected
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	for _, m := range errorTable {
		if !errors.Is(err, m.target) {
			continue
		}
		resp := ErrorResponse{Error: m.kind, Message: err.Error(), Code: m.code}
		if m.status == http.StatusForbidden {
			resp.Redirect = TicketsPath
		}
		c.JSON(m.status, resp)
		return
	}

	if errors.Is(err, models.ErrAssistantUnavailable) {
		logger.WithError(err).Error("Assistant request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "assistant_error",
			Message: assistantFailureMessage,
			Code:    "ASSISTANT_UNAVAILABLE",
		})
		return
	}

	logger.WithFields(logrus.Fields{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	}).Error("Unhandled error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// badRequest writes a 400 for malformed input that never reached a service
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: message,
		Code:    "INVALID_REQUEST",
	})
}

// currentUserID returns the authenticated user's id or writes a 401
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
			Code:    "MISSING_USER_CONTEXT",
		})
		return uuid.Nil, false
	}
	return userCtx.UserID, true
}
