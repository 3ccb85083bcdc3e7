package services

import (
	"context"
	"time"

	"github.com/dogubilet/ticket-backend/internal/database"
	"github.com/dogubilet/ticket-backend/internal/events"
	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TicketService sells and refunds tickets. Seat state and ticket rows
// always change in the same transaction.
type TicketService struct {
	tx        TxRunner
	trips     TripStore
	seats     SeatStore
	tickets   TicketStore
	publisher events.Publisher
	loc       *time.Location
	now       func() time.Time
	logger    *logrus.Logger
}

// NewTicketService creates a new TicketService
func NewTicketService(
	tx TxRunner,
	trips TripStore,
	seats SeatStore,
	tickets TicketStore,
	publisher events.Publisher,
	loc *time.Location,
	logger *logrus.Logger,
) *TicketService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &TicketService{
		tx:        tx,
		trips:     trips,
		seats:     seats,
		tickets:   tickets,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the wall clock, for tests
func (s *TicketService) WithClock(now func() time.Time) *TicketService {
	s.now = now
	return s
}

// Purchase reserves a seat and records a ticket for it. When two buyers race
// for the same seat exactly one succeeds and the other gets ErrSeatOccupied.
func (s *TicketService) Purchase(ctx context.Context, userID uuid.UUID, tripID int64, seatNumber int, now time.Time) (*models.Ticket, error) {
	if !models.ValidSeatNumber(seatNumber) {
		return nil, models.ErrNoSuchSeat
	}

	ticket := &models.Ticket{
		UserID:      userID,
		TripID:      tripID,
		SeatNumber:  seatNumber,
		PurchasedAt: now,
	}

	err := s.tx.WithinTx(ctx, func(q database.Queryer) error {
		trip, err := s.trips.GetForShare(ctx, q, tripID)
		if err != nil {
			return err
		}
		if trip.Retired {
			return models.ErrNoSuchTrip
		}

		if err := s.seats.Reserve(ctx, q, tripID, seatNumber); err != nil {
			return err
		}
		return s.tickets.Create(ctx, q, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"ticket_id": ticket.ID,
		"user_id":   userID,
		"trip_id":   tripID,
		"seat":      seatNumber,
	}).Info("Ticket purchased")

	s.publish(ctx, events.TicketPurchased, ticket, now)
	return ticket, nil
}

// Refund marks a ticket refunded and frees its seat. Only the owner may
// refund, and only strictly before departure.
func (s *TicketService) Refund(ctx context.Context, ticketID int64, userID uuid.UUID, now time.Time) error {
	var refunded *models.Ticket

	err := s.tx.WithinTx(ctx, func(q database.Queryer) error {
		ticket, err := s.tickets.GetForUpdate(ctx, q, ticketID)
		if err != nil {
			return err
		}
		if ticket.UserID != userID {
			return models.ErrForbidden
		}
		if ticket.Refunded {
			return models.ErrAlreadyRefunded
		}

		trip, err := s.trips.GetByID(ctx, q, ticket.TripID)
		if err != nil {
			return err
		}
		departure, err := trip.DepartureAt(s.loc)
		if err != nil {
			return err
		}
		if !now.Before(departure) {
			return models.ErrTripDeparted
		}

		if err := s.tickets.MarkRefunded(ctx, q, ticket.ID); err != nil {
			return err
		}
		if err := s.seats.Release(ctx, q, ticket.TripID, ticket.SeatNumber); err != nil {
			return err
		}

		ticket.Refunded = true
		refunded = ticket
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"ticket_id": ticketID,
		"user_id":   userID,
		"trip_id":   refunded.TripID,
		"seat":      refunded.SeatNumber,
	}).Info("Ticket refunded")

	s.publish(ctx, events.TicketRefunded, refunded, now)
	return nil
}

// Classify derives the display status of a ticket. A trip counts as
// completed from the instant departure plus duration is reached.
func (s *TicketService) Classify(ticket models.Ticket, trip models.Trip, now time.Time) models.TicketStatus {
	if ticket.Refunded {
		return models.TicketStatusRefunded
	}

	arrival, err := trip.ArrivalAt(s.loc)
	if err != nil {
		return models.TicketStatusActive
	}
	if !now.Before(arrival) {
		return models.TicketStatusCompleted
	}
	return models.TicketStatusActive
}

// ListTickets returns a user's tickets joined with their trips and
// classified, keeping those that match filter
func (s *TicketService) ListTickets(ctx context.Context, userID uuid.UUID, filter models.TicketFilter) ([]models.TicketWithTrip, error) {
	all, err := s.tickets.ListByUser(ctx, s.tx.Conn(), userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := make([]models.TicketWithTrip, 0, len(all))
	for _, t := range all {
		t.Status = s.Classify(t.Ticket, t.Trip(), now)
		if filter.Matches(t.Status) {
			result = append(result, t)
		}
	}
	return result, nil
}

// SeatMap returns every seat number of a trip and the occupied subset
func (s *TicketService) SeatMap(ctx context.Context, tripID int64) (*models.SeatMap, error) {
	conn := s.tx.Conn()
	if _, err := s.trips.GetByID(ctx, conn, tripID); err != nil {
		return nil, err
	}

	occupied, err := s.seats.ListOccupied(ctx, conn, tripID)
	if err != nil {
		return nil, err
	}

	return &models.SeatMap{
		TripID:   tripID,
		AllSeats: models.AllSeatNumbers(),
		Occupied: occupied,
	}, nil
}

// PurchaseTicket purchases at the current time
func (s *TicketService) PurchaseTicket(ctx context.Context, userID uuid.UUID, tripID int64, seatNumber int) (*models.Ticket, error) {
	return s.Purchase(ctx, userID, tripID, seatNumber, s.now())
}

// RefundTicket refunds at the current time
func (s *TicketService) RefundTicket(ctx context.Context, ticketID int64, userID uuid.UUID) error {
	return s.Refund(ctx, ticketID, userID, s.now())
}

func (s *TicketService) publish(ctx context.Context, eventType string, ticket *models.Ticket, at time.Time) {
	event := events.NewTicketEvent(eventType, ticket, at)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithFields(logrus.Fields{
			"type":      eventType,
			"ticket_id": ticket.ID,
			"error":     err.Error(),
		}).Warn("Failed to publish ticket event")
	}
}
