package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tripRowColumns = []string{
	"id", "origin", "destination", "carrier", "travel_date", "departure_time",
	"duration_hours", "price", "retired",
}

func TestTripRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository()

	t.Run("Success", func(t *testing.T) {
		db, mock := setupMockDB(t)

		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1`).
			WithArgs(int64(1001)).
			WillReturnRows(sqlmock.NewRows(tripRowColumns).AddRow(
				int64(1001), "Ankara", "Konya", "Buzlu",
				time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC), "14:45", 0.0, 0, false,
			))

		trip, err := repo.GetByID(ctx, db, 1001)
		require.NoError(t, err)
		assert.Equal(t, "Konya", trip.Destination)
		assert.Equal(t, models.NewDate(2025, time.December, 8), trip.TravelDate)
		assert.False(t, trip.IsPriced())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Trip Not Found", func(t *testing.T) {
		db, mock := setupMockDB(t)

		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id`).
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows(tripRowColumns))

		trip, err := repo.GetByID(ctx, db, 9)
		assert.Nil(t, trip)
		assert.ErrorIs(t, err, models.ErrNoSuchTrip)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTripRepository_SetPricing(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository()

	t.Run("First Writer", func(t *testing.T) {
		db, mock := setupMockDB(t)

		mock.ExpectExec(`UPDATE trips SET duration_hours = \$2, price = \$3\s+WHERE id = \$1 AND price = 0`).
			WithArgs(int64(1001), 4.3, 395).
			WillReturnResult(sqlmock.NewResult(0, 1))

		written, err := repo.SetPricing(ctx, db, 1001, 4.3, 395)
		require.NoError(t, err)
		assert.True(t, written)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Priced", func(t *testing.T) {
		db, mock := setupMockDB(t)

		mock.ExpectExec(`UPDATE trips SET duration_hours`).
			WithArgs(int64(1001), 4.3, 395).
			WillReturnResult(sqlmock.NewResult(0, 0))

		written, err := repo.SetPricing(ctx, db, 1001, 4.3, 395)
		require.NoError(t, err)
		assert.False(t, written)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTripRepository_Search(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository()
	db, mock := setupMockDB(t)
	date := models.NewDate(2025, time.December, 8)

	mock.ExpectQuery(`SELECT (.+) FROM trips\s+WHERE origin = \$1 AND destination = \$2 AND travel_date = \$3 AND NOT retired`).
		WithArgs("Ankara", "Konya", "2025-12-08").
		WillReturnRows(sqlmock.NewRows(tripRowColumns).
			AddRow(int64(1001), "Ankara", "Konya", "Buzlu", date.Time, "08:00", 2.9, 269, false).
			AddRow(int64(1002), "Ankara", "Konya", "Metro", date.Time, "14:45", 0.0, 0, false))

	trips, err := repo.Search(ctx, db, "Ankara", "Konya", date)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.True(t, trips[0].IsPriced())
	assert.False(t, trips[1].IsPriced())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_InsertBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository()

	t.Run("Empty Batch", func(t *testing.T) {
		db, mock := setupMockDB(t)

		inserted, err := repo.InsertBatch(ctx, db, nil)
		require.NoError(t, err)
		assert.Zero(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Two Trips", func(t *testing.T) {
		db, mock := setupMockDB(t)
		date := models.NewDate(2025, time.December, 8)

		mock.ExpectExec(`INSERT INTO trips`).
			WillReturnResult(sqlmock.NewResult(0, 2))

		inserted, err := repo.InsertBatch(ctx, db, []models.Trip{
			{Origin: "Adana", Destination: "Van", Carrier: "Metro", TravelDate: date, DepartureTime: "00:15"},
			{Origin: "Adana", Destination: "Kars", Carrier: "Buzlu", TravelDate: date, DepartureTime: "23:45"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTripRepository_ListStale(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository()
	db, mock := setupMockDB(t)
	today := models.NewDate(2025, time.December, 10)

	mock.ExpectQuery(`SELECT (.+) FROM trips t\s+WHERE t.travel_date < \$1 AND NOT t.retired`).
		WithArgs("2025-12-10").
		WillReturnRows(sqlmock.NewRows(append(tripRowColumns, "has_tickets")).
			AddRow(int64(1001), "Ankara", "Konya", "Buzlu", today.AddDays(-1).Time, "08:00", 0.0, 0, false, false).
			AddRow(int64(1002), "Ankara", "Bolu", "Metro", today.AddDays(-2).Time, "09:00", 2.0, 250, false, true))

	stale, err := repo.ListStale(ctx, db, today)
	require.NoError(t, err)
	require.Len(t, stale, 2)
	assert.False(t, stale[0].HasTickets)
	assert.True(t, stale[1].HasTickets)
	assert.Equal(t, "Bolu", stale[1].Destination)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_LockCatalog(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository()

	t.Run("Success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec(`LOCK TABLE trips IN SHARE ROW EXCLUSIVE MODE`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, repo.LockCatalog(ctx, db))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Lock Timeout", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec(`LOCK TABLE trips`).
			WillReturnError(fmt.Errorf("canceling statement due to lock timeout"))

		assert.Error(t, repo.LockCatalog(ctx, db))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTripRepository_Redate(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository()
	target := models.NewDate(2025, time.December, 13)

	t.Run("Unsold Trip Moves", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec(`UPDATE trips SET travel_date = \$2\s+WHERE id = \$1\s+AND NOT EXISTS \(SELECT 1 FROM tickets WHERE trip_id = \$1\)`).
			WithArgs(int64(1001), "2025-12-13").
			WillReturnResult(sqlmock.NewResult(0, 1))

		redated, err := repo.Redate(ctx, db, 1001, target)
		require.NoError(t, err)
		assert.True(t, redated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ticket Exists", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec(`UPDATE trips SET travel_date`).
			WithArgs(int64(1002), "2025-12-13").
			WillReturnResult(sqlmock.NewResult(0, 0))

		redated, err := repo.Redate(ctx, db, 1002, target)
		require.NoError(t, err)
		assert.False(t, redated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec(`UPDATE trips SET travel_date`).
			WillReturnError(fmt.Errorf("connection reset"))

		redated, err := repo.Redate(ctx, db, 1003, target)
		assert.False(t, redated)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to redate trip 1003")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
