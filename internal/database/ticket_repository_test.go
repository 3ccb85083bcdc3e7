package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository()
	userID := uuid.New()
	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		db, mock := setupMockDB(t)

		mock.ExpectQuery(`INSERT INTO tickets`).
			WithArgs(userID, int64(1001), 5, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(77)))

		ticket := &models.Ticket{UserID: userID, TripID: 1001, SeatNumber: 5, PurchasedAt: now}
		require.NoError(t, repo.Create(ctx, db, ticket))
		assert.Equal(t, int64(77), ticket.ID)
		assert.False(t, ticket.Refunded)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Live Ticket Exists", func(t *testing.T) {
		db, mock := setupMockDB(t)

		mock.ExpectQuery(`INSERT INTO tickets`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_tickets_live_seat"})

		ticket := &models.Ticket{UserID: userID, TripID: 1001, SeatNumber: 5, PurchasedAt: now}
		err := repo.Create(ctx, db, ticket)
		assert.ErrorIs(t, err, models.ErrSeatOccupied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTicketRepository_GetForUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository()

	t.Run("Success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM tickets WHERE id = \$1\s+FOR UPDATE`).
			WithArgs(int64(77)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "trip_id", "seat_number", "purchased_at", "refunded",
			}).AddRow(int64(77), userID.String(), int64(1001), 5, now, false))

		ticket, err := repo.GetForUpdate(ctx, db, 77)
		require.NoError(t, err)
		assert.Equal(t, userID, ticket.UserID)
		assert.Equal(t, 5, ticket.SeatNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		db, mock := setupMockDB(t)

		mock.ExpectQuery(`SELECT (.+) FROM tickets WHERE id`).
			WithArgs(int64(78)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		ticket, err := repo.GetForUpdate(ctx, db, 78)
		assert.Nil(t, ticket)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTicketRepository_MarkRefunded(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository()

	t.Run("Success", func(t *testing.T) {
		db, mock := setupMockDB(t)

		mock.ExpectExec(`UPDATE tickets SET refunded = TRUE WHERE id = \$1 AND NOT refunded`).
			WithArgs(int64(77)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkRefunded(ctx, db, 77))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Refunded", func(t *testing.T) {
		db, mock := setupMockDB(t)

		mock.ExpectExec(`UPDATE tickets SET refunded = TRUE`).
			WithArgs(int64(77)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.MarkRefunded(ctx, db, 77), models.ErrAlreadyRefunded)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTicketRepository_ListByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository()
	db, mock := setupMockDB(t)
	userID := uuid.New()
	purchased := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM tickets k\s+JOIN trips t`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "trip_id", "seat_number", "purchased_at", "refunded",
			"origin", "destination", "carrier", "travel_date", "departure_time",
			"duration_hours", "price",
		}).AddRow(
			int64(77), userID.String(), int64(1001), 5, purchased, false,
			"Ankara", "İstanbul", "Metro", time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC), "08:30",
			5.5, 395,
		))

	tickets, err := repo.ListByUser(ctx, db, userID)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "Ankara", tickets[0].Origin)
	assert.Equal(t, "2025-12-08", tickets[0].TravelDate.String())
	assert.Equal(t, int64(1001), tickets[0].Trip().ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
