package database

import (
	"context"
	"fmt"
	"time"

	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// StatsRepository computes admin dashboard counters
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Dashboard returns the dashboard counters. today is the calendar date in the
// schedule timezone; dayStart and dayEnd bound it as instants.
func (r *StatsRepository) Dashboard(ctx context.Context, today models.Date, dayStart, dayEnd time.Time) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	query := `
		SELECT
			(SELECT COUNT(*) FROM users)                                   AS total_users,
			(SELECT COUNT(*) FROM trips)                                   AS total_trips,
			(SELECT COUNT(*) FROM tickets)                                 AS total_tickets,
			(SELECT COUNT(*) FROM tickets WHERE refunded)                  AS refunded_tickets,
			(SELECT COUNT(*) FROM tickets WHERE NOT refunded)              AS active_tickets,
			(SELECT COUNT(*) FROM trips WHERE travel_date = $1)            AS trips_today,
			(SELECT COUNT(*) FROM tickets
			  WHERE purchased_at >= $2 AND purchased_at < $3)              AS tickets_today
	`
	if err := r.db.GetContext(ctx, &stats, query, today, dayStart, dayEnd); err != nil {
		return nil, fmt.Errorf("failed to get dashboard counters: %w", err)
	}

	perTrip := []models.TripTicketCount{}
	perTripQuery := `
		SELECT k.trip_id, t.origin, t.destination, COUNT(*) AS tickets
		FROM tickets k
		JOIN trips t ON t.id = k.trip_id
		GROUP BY k.trip_id, t.origin, t.destination
		ORDER BY tickets DESC, k.trip_id
		LIMIT 10
	`
	if err := r.db.SelectContext(ctx, &perTrip, perTripQuery); err != nil {
		return nil, fmt.Errorf("failed to get tickets per trip: %w", err)
	}
	stats.TicketsPerTrip = perTrip

	return &stats, nil
}
