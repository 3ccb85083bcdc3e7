package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TicketOperations is the ticket ledger as seen by HTTP clients
type TicketOperations interface {
	PurchaseTicket(ctx context.Context, userID uuid.UUID, tripID int64, seatNumber int) (*models.Ticket, error)
	RefundTicket(ctx context.Context, ticketID int64, userID uuid.UUID) error
	ListTickets(ctx context.Context, userID uuid.UUID, filter models.TicketFilter) ([]models.TicketWithTrip, error)
	SeatMap(ctx context.Context, tripID int64) (*models.SeatMap, error)
}

// TicketHandler handles seat map, purchase, listing and refund endpoints
type TicketHandler struct {
	tickets TicketOperations
	logger  *logrus.Logger
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(tickets TicketOperations, logger *logrus.Logger) *TicketHandler {
	return &TicketHandler{
		tickets: tickets,
		logger:  logger,
	}
}

// GetSeatMap handles GET /api/v1/trips/:id/seats
func (h *TicketHandler) GetSeatMap(c *gin.Context) {
	tripID, ok := pathID(c)
	if !ok {
		return
	}

	seatMap, err := h.tickets.SeatMap(c.Request.Context(), tripID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, seatMap)
}

// Purchase handles POST /api/v1/tickets
func (h *TicketHandler) Purchase(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.PurchaseTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "trip_id and seat_number are required")
		return
	}

	ticket, err := h.tickets.PurchaseTicket(c.Request.Context(), userID, req.TripID, req.SeatNumber)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Bilet başarıyla satın alındı.",
		"ticket":   ticket,
		"redirect": TicketsPath,
	})
}

// List handles GET /api/v1/tickets?type=active|past
func (h *TicketHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := models.ParseTicketFilter(c.Query("type"))
	tickets, err := h.tickets.ListTickets(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filter":  filter,
		"count":   len(tickets),
		"tickets": tickets,
	})
}

// Refund handles POST /api/v1/tickets/:id/refund
func (h *TicketHandler) Refund(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ticketID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.tickets.RefundTicket(c.Request.Context(), ticketID, userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Bilet iade edildi.",
		"redirect": TicketsPath,
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "id must be a positive integer")
		return 0, false
	}
	return id, true
}
