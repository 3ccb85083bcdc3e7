package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SeatRepository owns seat state. Every mutation is a single conditional
// statement, so callers never read-then-write a seat.
type SeatRepository struct{}

// NewSeatRepository creates a new SeatRepository
func NewSeatRepository() *SeatRepository {
	return &SeatRepository{}
}

// ListOccupied returns the occupied seat numbers of a trip in ascending order
func (r *SeatRepository) ListOccupied(ctx context.Context, q Queryer, tripID int64) ([]int, error) {
	var occupied pq.Int64Array
	query := `
		SELECT COALESCE(array_agg(seat_number ORDER BY seat_number), '{}')
		FROM seats
		WHERE trip_id = $1 AND state = 'occupied'
	`
	if err := sqlx.GetContext(ctx, q, &occupied, query, tripID); err != nil {
		return nil, fmt.Errorf("failed to list occupied seats: %w", err)
	}

	seats := make([]int, len(occupied))
	for i, n := range occupied {
		seats[i] = int(n)
	}
	return seats, nil
}

// SeatState returns the state of one seat, or ErrNoSuchSeat
func (r *SeatRepository) SeatState(ctx context.Context, q Queryer, tripID int64, seatNumber int) (models.SeatState, error) {
	var state models.SeatState
	query := `SELECT state FROM seats WHERE trip_id = $1 AND seat_number = $2`
	if err := sqlx.GetContext(ctx, q, &state, query, tripID, seatNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", models.ErrNoSuchSeat
		}
		return "", fmt.Errorf("failed to get seat state: %w", err)
	}
	return state, nil
}

// Reserve flips a free seat to occupied. Concurrent callers race on the
// conditional update and exactly one of them sees a row affected.
func (r *SeatRepository) Reserve(ctx context.Context, q Queryer, tripID int64, seatNumber int) error {
	query := `
		UPDATE seats SET state = 'occupied'
		WHERE trip_id = $1 AND seat_number = $2 AND state = 'free'
	`
	result, err := q.ExecContext(ctx, query, tripID, seatNumber)
	if err != nil {
		return fmt.Errorf("failed to reserve seat: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 1 {
		return nil
	}

	// Nothing updated: either the seat is taken or it does not exist
	if _, err := r.SeatState(ctx, q, tripID, seatNumber); err != nil {
		return err
	}
	return models.ErrSeatOccupied
}

// Release frees a seat. Releasing a free seat is a no-op.
func (r *SeatRepository) Release(ctx context.Context, q Queryer, tripID int64, seatNumber int) error {
	query := `UPDATE seats SET state = 'free' WHERE trip_id = $1 AND seat_number = $2`
	result, err := q.ExecContext(ctx, query, tripID, seatNumber)
	if err != nil {
		return fmt.Errorf("failed to release seat: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrNoSuchSeat
	}
	return nil
}

// Provision creates any missing seats 1..40 of a trip as free and returns how many were created
func (r *SeatRepository) Provision(ctx context.Context, q Queryer, tripID int64) (int64, error) {
	query := `
		INSERT INTO seats (trip_id, seat_number, state)
		SELECT $1, n, 'free' FROM generate_series(1, $2::int) AS n
		ON CONFLICT (trip_id, seat_number) DO NOTHING
	`
	result, err := q.ExecContext(ctx, query, tripID, models.SeatsPerTrip)
	if err != nil {
		return 0, fmt.Errorf("failed to provision seats for trip %d: %w", tripID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

// ProvisionAll backfills missing seats for every trip
func (r *SeatRepository) ProvisionAll(ctx context.Context, q Queryer) (int64, error) {
	query := `
		INSERT INTO seats (trip_id, seat_number, state)
		SELECT t.id, n, 'free'
		FROM trips t CROSS JOIN generate_series(1, $1::int) AS n
		ON CONFLICT (trip_id, seat_number) DO NOTHING
	`
	result, err := q.ExecContext(ctx, query, models.SeatsPerTrip)
	if err != nil {
		return 0, fmt.Errorf("failed to backfill seats: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
