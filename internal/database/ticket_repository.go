package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TicketRepository handles ticket database operations
type TicketRepository struct{}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository() *TicketRepository {
	return &TicketRepository{}
}

// Create inserts a live ticket and fills in its id. A second live ticket
// for the same seat violates uq_tickets_live_seat and maps to ErrSeatOccupied.
func (r *TicketRepository) Create(ctx context.Context, q Queryer, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (user_id, trip_id, seat_number, purchased_at, refunded)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id
	`
	err := sqlx.GetContext(ctx, q, &ticket.ID, query,
		ticket.UserID, ticket.TripID, ticket.SeatNumber, ticket.PurchasedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrSeatOccupied
		}
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	ticket.Refunded = false
	return nil
}

// GetForUpdate returns a ticket and locks its row until the transaction ends
func (r *TicketRepository) GetForUpdate(ctx context.Context, q Queryer, id int64) (*models.Ticket, error) {
	var ticket models.Ticket
	query := `
		SELECT id, user_id, trip_id, seat_number, purchased_at, refunded
		FROM tickets WHERE id = $1
		FOR UPDATE
	`
	if err := sqlx.GetContext(ctx, q, &ticket, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ticket %d: %w", id, err)
	}
	return &ticket, nil
}

// MarkRefunded sets the refunded flag. The flag is never cleared.
func (r *TicketRepository) MarkRefunded(ctx context.Context, q Queryer, id int64) error {
	result, err := q.ExecContext(ctx, `UPDATE tickets SET refunded = TRUE WHERE id = $1 AND NOT refunded`, id)
	if err != nil {
		return fmt.Errorf("failed to refund ticket %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrAlreadyRefunded
	}
	return nil
}

// ListByUser returns all tickets of a user joined with their trips, newest travel first
func (r *TicketRepository) ListByUser(ctx context.Context, q Queryer, userID uuid.UUID) ([]models.TicketWithTrip, error) {
	tickets := []models.TicketWithTrip{}
	query := `
		SELECT k.id, k.user_id, k.trip_id, k.seat_number, k.purchased_at, k.refunded,
		       t.origin, t.destination, t.carrier, t.travel_date, t.departure_time,
		       t.duration_hours, t.price
		FROM tickets k
		JOIN trips t ON t.id = k.trip_id
		WHERE k.user_id = $1
		ORDER BY t.travel_date DESC, t.departure_time DESC, k.id DESC
	`
	if err := sqlx.SelectContext(ctx, q, &tickets, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}
