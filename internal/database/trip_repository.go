package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

const tripColumns = `id, origin, destination, carrier, travel_date, departure_time, duration_hours, price, retired`

// TripRepository handles trip catalog database operations
type TripRepository struct{}

// NewTripRepository creates a new TripRepository
func NewTripRepository() *TripRepository {
	return &TripRepository{}
}

// GetByID returns a trip by id
func (r *TripRepository) GetByID(ctx context.Context, q Queryer, id int64) (*models.Trip, error) {
	var trip models.Trip
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	if err := sqlx.GetContext(ctx, q, &trip, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNoSuchTrip
		}
		return nil, fmt.Errorf("failed to get trip %d: %w", id, err)
	}
	return &trip, nil
}

// GetForShare returns a trip and holds a share lock on it until the
// transaction ends, so the trip cannot be retired or re-dated underneath a purchase.
func (r *TripRepository) GetForShare(ctx context.Context, q Queryer, id int64) (*models.Trip, error) {
	var trip models.Trip
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 FOR SHARE`
	if err := sqlx.GetContext(ctx, q, &trip, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNoSuchTrip
		}
		return nil, fmt.Errorf("failed to lock trip %d: %w", id, err)
	}
	return &trip, nil
}

// Search returns the live trips for an exact origin, destination and date
func (r *TripRepository) Search(ctx context.Context, q Queryer, origin, destination string, date models.Date) ([]models.Trip, error) {
	trips := []models.Trip{}
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE origin = $1 AND destination = $2 AND travel_date = $3 AND NOT retired
		ORDER BY departure_time, id
	`
	if err := sqlx.SelectContext(ctx, q, &trips, query, origin, destination, date); err != nil {
		return nil, fmt.Errorf("failed to search trips: %w", err)
	}
	return trips, nil
}

// SetPricing stores duration and price only if the trip is still unpriced.
// It reports whether this call wrote the values.
func (r *TripRepository) SetPricing(ctx context.Context, q Queryer, id int64, durationHours float64, price int) (bool, error) {
	query := `
		UPDATE trips SET duration_hours = $2, price = $3
		WHERE id = $1 AND price = 0
	`
	result, err := q.ExecContext(ctx, query, id, durationHours, price)
	if err != nil {
		return false, fmt.Errorf("failed to set trip pricing: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// Count returns the total number of trips, retired included
func (r *TripRepository) Count(ctx context.Context, q Queryer) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, q, &count, `SELECT COUNT(*) FROM trips`); err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}
	return count, nil
}

// LockCatalog takes a table lock that serializes catalog seeding and
// rollforward against each other. Reads and purchases are not blocked.
func (r *TripRepository) LockCatalog(ctx context.Context, q Queryer) error {
	if _, err := q.ExecContext(ctx, `LOCK TABLE trips IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("failed to lock trip catalog: %w", err)
	}
	return nil
}

// InsertBatch inserts unpriced trips in one statement
func (r *TripRepository) InsertBatch(ctx context.Context, q Queryer, trips []models.Trip) (int64, error) {
	if len(trips) == 0 {
		return 0, nil
	}
	query := `
		INSERT INTO trips (origin, destination, carrier, travel_date, departure_time, duration_hours, price)
		VALUES (:origin, :destination, :carrier, :travel_date, :departure_time, :duration_hours, :price)
	`
	result, err := sqlx.NamedExecContext(ctx, q, query, trips)
	if err != nil {
		return 0, fmt.Errorf("failed to insert trips: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

// Insert inserts one trip and returns its id
func (r *TripRepository) Insert(ctx context.Context, q Queryer, trip models.Trip) (int64, error) {
	var id int64
	query := `
		INSERT INTO trips (origin, destination, carrier, travel_date, departure_time, duration_hours, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := sqlx.GetContext(ctx, q, &id, query,
		trip.Origin, trip.Destination, trip.Carrier, trip.TravelDate,
		trip.DepartureTime, trip.DurationHours, trip.Price,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert trip: %w", err)
	}
	return id, nil
}

// ListStale locks and returns live trips dated before today, flagging those with tickets.
// has_tickets reflects the snapshot taken before the row locks were granted, so
// it can miss a ticket committed while we waited; Redate re-checks.
func (r *TripRepository) ListStale(ctx context.Context, q Queryer, today models.Date) ([]models.StaleTrip, error) {
	stale := []models.StaleTrip{}
	query := `
		SELECT t.id, t.origin, t.destination, t.carrier, t.travel_date, t.departure_time,
		       t.duration_hours, t.price, t.retired,
		       EXISTS (SELECT 1 FROM tickets k WHERE k.trip_id = t.id) AS has_tickets
		FROM trips t
		WHERE t.travel_date < $1 AND NOT t.retired
		ORDER BY t.id
		FOR UPDATE OF t
	`
	if err := sqlx.SelectContext(ctx, q, &stale, query, today); err != nil {
		return nil, fmt.Errorf("failed to list stale trips: %w", err)
	}
	return stale, nil
}

// Redate moves a trip to a new travel date unless a ticket references it.
// The caller must hold the trip's row lock; it reports false when a ticket exists.
func (r *TripRepository) Redate(ctx context.Context, q Queryer, id int64, date models.Date) (bool, error) {
	query := `
		UPDATE trips SET travel_date = $2
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM tickets WHERE trip_id = $1)
	`
	result, err := q.ExecContext(ctx, query, id, date)
	if err != nil {
		return false, fmt.Errorf("failed to redate trip %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to redate trip %d: %w", id, err)
	}
	return rows == 1, nil
}

// Retire takes a trip off sale while keeping it for ticket history
func (r *TripRepository) Retire(ctx context.Context, q Queryer, id int64) error {
	if _, err := q.ExecContext(ctx, `UPDATE trips SET retired = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to retire trip %d: %w", id, err)
	}
	return nil
}
