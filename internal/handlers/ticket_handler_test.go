package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dogubilet/ticket-backend/internal/middleware"
	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/dogubilet/ticket-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTickets struct {
	purchaseErr error
	refundErr   error
	seatMapErr  error
	lastFilter  models.TicketFilter
	lastUser    uuid.UUID
	lastTicket  int64
	lastSeat    int
}

func (f *fakeTickets) PurchaseTicket(ctx context.Context, userID uuid.UUID, tripID int64, seatNumber int) (*models.Ticket, error) {
	f.lastUser, f.lastSeat = userID, seatNumber
	if f.purchaseErr != nil {
		return nil, f.purchaseErr
	}
	return &models.Ticket{ID: 1, UserID: userID, TripID: tripID, SeatNumber: seatNumber}, nil
}

func (f *fakeTickets) RefundTicket(ctx context.Context, ticketID int64, userID uuid.UUID) error {
	f.lastTicket, f.lastUser = ticketID, userID
	return f.refundErr
}

func (f *fakeTickets) ListTickets(ctx context.Context, userID uuid.UUID, filter models.TicketFilter) ([]models.TicketWithTrip, error) {
	f.lastFilter, f.lastUser = filter, userID
	return []models.TicketWithTrip{{Ticket: models.Ticket{ID: 9}, Status: models.TicketStatusActive}}, nil
}

func (f *fakeTickets) SeatMap(ctx context.Context, tripID int64) (*models.SeatMap, error) {
	if f.seatMapErr != nil {
		return nil, f.seatMapErr
	}
	return &models.SeatMap{TripID: tripID, AllSeats: models.AllSeatNumbers(), Occupied: []int{5}}, nil
}

// ticketRouter mounts the ticket routes behind the real auth middleware
func ticketRouter(tickets TicketOperations) (*gin.Engine, string, uuid.UUID) {
	gin.SetMode(gin.TestMode)
	jwtService := jwt.NewService("test-secret", time.Hour)
	userID := uuid.New()
	token, _ := jwtService.GenerateAccessToken(userID, "ayse@example.com", models.RoleUser)

	handler := NewTicketHandler(tickets, quietLogger())
	router := gin.New()
	authed := router.Group("/api/v1", middleware.AuthMiddleware(jwtService))
	authed.GET("/trips/:id/seats", handler.GetSeatMap)
	authed.POST("/tickets", handler.Purchase)
	authed.GET("/tickets", handler.List)
	authed.POST("/tickets/:id/refund", handler.Refund)
	return router, token, userID
}

func doAuthed(router *gin.Engine, token, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTicketHandler_Purchase(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		tickets := &fakeTickets{}
		router, token, userID := ticketRouter(tickets)

		w := doAuthed(router, token, "POST", "/api/v1/tickets", `{"trip_id":1001,"seat_number":5}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"seat_number":5`)
		assert.Equal(t, userID, tickets.lastUser)
	})

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"Seat Occupied", models.ErrSeatOccupied, http.StatusConflict, "SEAT_OCCUPIED"},
		{"No Such Trip", models.ErrNoSuchTrip, http.StatusNotFound, "TRIP_NOT_FOUND"},
		{"No Such Seat", models.ErrNoSuchSeat, http.StatusNotFound, "SEAT_NOT_FOUND"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, token, _ := ticketRouter(&fakeTickets{purchaseErr: tc.err})

			w := doAuthed(router, token, "POST", "/api/v1/tickets", `{"trip_id":1001,"seat_number":41}`)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.code)
		})
	}

	t.Run("Seat Zero Reaches Service", func(t *testing.T) {
		tickets := &fakeTickets{purchaseErr: models.ErrNoSuchSeat, lastSeat: -1}
		router, token, userID := ticketRouter(tickets)

		w := doAuthed(router, token, "POST", "/api/v1/tickets", `{"trip_id":1001,"seat_number":0}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "SEAT_NOT_FOUND")
		assert.Equal(t, userID, tickets.lastUser)
		assert.Equal(t, 0, tickets.lastSeat)
	})

	t.Run("Malformed Body", func(t *testing.T) {
		router, token, _ := ticketRouter(&fakeTickets{})

		w := doAuthed(router, token, "POST", "/api/v1/tickets", `{"trip_id":"abc"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Anonymous", func(t *testing.T) {
		router, _, _ := ticketRouter(&fakeTickets{})

		req := httptest.NewRequest("POST", "/api/v1/tickets", bytes.NewBufferString(`{"trip_id":1,"seat_number":1}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTicketHandler_Refund(t *testing.T) {
	t.Run("Refunded", func(t *testing.T) {
		tickets := &fakeTickets{}
		router, token, userID := ticketRouter(tickets)

		w := doAuthed(router, token, "POST", "/api/v1/tickets/42/refund", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(42), tickets.lastTicket)
		assert.Equal(t, userID, tickets.lastUser)
	})

	tests := []struct {
		name     string
		err      error
		status   int
		redirect bool
	}{
		{"Departed", models.ErrTripDeparted, http.StatusForbidden, true},
		{"Not Owner", models.ErrForbidden, http.StatusForbidden, true},
		{"Already Refunded", models.ErrAlreadyRefunded, http.StatusConflict, false},
		{"Unknown Ticket", models.ErrNotFound, http.StatusNotFound, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, token, _ := ticketRouter(&fakeTickets{refundErr: tc.err})

			w := doAuthed(router, token, "POST", "/api/v1/tickets/42/refund", "")
			assert.Equal(t, tc.status, w.Code)
			if tc.redirect {
				assert.Contains(t, w.Body.String(), `"redirect":"/api/v1/tickets"`)
			} else {
				assert.NotContains(t, w.Body.String(), "redirect")
			}
		})
	}

	t.Run("Bad ID", func(t *testing.T) {
		router, token, _ := ticketRouter(&fakeTickets{})

		w := doAuthed(router, token, "POST", "/api/v1/tickets/abc/refund", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTicketHandler_List(t *testing.T) {
	tests := []struct {
		query    string
		expected models.TicketFilter
	}{
		{"", models.TicketFilterAll},
		{"?type=active", models.TicketFilterActive},
		{"?type=past", models.TicketFilterPast},
		{"?type=gecmis", models.TicketFilterPast},
	}
	for _, tc := range tests {
		t.Run(string(tc.expected)+tc.query, func(t *testing.T) {
			tickets := &fakeTickets{}
			router, token, _ := ticketRouter(tickets)

			w := doAuthed(router, token, "GET", "/api/v1/tickets"+tc.query, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.expected, tickets.lastFilter)
			assert.Contains(t, w.Body.String(), `"status":"active"`)
		})
	}
}

func TestTicketHandler_SeatMap(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		router, token, _ := ticketRouter(&fakeTickets{})

		w := doAuthed(router, token, "GET", "/api/v1/trips/1001/seats", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"occupied":[5]`)
	})

	t.Run("Unknown Trip", func(t *testing.T) {
		router, token, _ := ticketRouter(&fakeTickets{seatMapErr: models.ErrNoSuchTrip})

		w := doAuthed(router, token, "GET", "/api/v1/trips/1001/seats", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
