package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied in order; every statement is idempotent
var schema = []string{
	`CREATE SEQUENCE IF NOT EXISTS trips_id_seq START WITH 1001`,

	`CREATE TABLE IF NOT EXISTS trips (
		id             BIGINT PRIMARY KEY DEFAULT nextval('trips_id_seq'),
		origin         TEXT NOT NULL,
		destination    TEXT NOT NULL,
		carrier        TEXT NOT NULL,
		travel_date    DATE NOT NULL,
		departure_time TEXT NOT NULL CHECK (departure_time ~ '^[0-2][0-9]:[0-5][0-9]$'),
		duration_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
		price          INTEGER NOT NULL DEFAULT 0,
		retired        BOOLEAN NOT NULL DEFAULT FALSE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT trips_pricing_both CHECK (
			(duration_hours = 0 AND price = 0) OR (duration_hours > 0 AND price > 0)
		)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_trips_route_date
		ON trips (origin, destination, travel_date) WHERE NOT retired`,

	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL,
		birth_date    DATE NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS seats (
		id          BIGSERIAL PRIMARY KEY,
		trip_id     BIGINT NOT NULL REFERENCES trips (id),
		seat_number INTEGER NOT NULL CHECK (seat_number BETWEEN 1 AND 40),
		state       TEXT NOT NULL DEFAULT 'free' CHECK (state IN ('free', 'occupied')),
		UNIQUE (trip_id, seat_number)
	)`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id           BIGSERIAL PRIMARY KEY,
		user_id      UUID NOT NULL REFERENCES users (id),
		trip_id      BIGINT NOT NULL REFERENCES trips (id),
		seat_number  INTEGER NOT NULL,
		purchased_at TIMESTAMPTZ NOT NULL,
		refunded     BOOLEAN NOT NULL DEFAULT FALSE
	)`,

	// at most one live ticket per seat
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_tickets_live_seat
		ON tickets (trip_id, seat_number) WHERE NOT refunded`,

	`CREATE INDEX IF NOT EXISTS idx_tickets_user ON tickets (user_id)`,
}

// Migrate creates all tables and indexes that do not exist yet
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
