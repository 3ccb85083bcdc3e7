package services

import (
	"context"

	"github.com/dogubilet/ticket-backend/internal/database"
	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/dogubilet/ticket-backend/internal/pricing"
	"github.com/google/uuid"
)

// TxRunner runs work inside one transaction
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(q database.Queryer) error) error
	Conn() database.Queryer
}

// TripStore is the trip catalog persistence used by the services
type TripStore interface {
	GetByID(ctx context.Context, q database.Queryer, id int64) (*models.Trip, error)
	GetForShare(ctx context.Context, q database.Queryer, id int64) (*models.Trip, error)
	Search(ctx context.Context, q database.Queryer, origin, destination string, date models.Date) ([]models.Trip, error)
	SetPricing(ctx context.Context, q database.Queryer, id int64, durationHours float64, price int) (bool, error)
	Count(ctx context.Context, q database.Queryer) (int, error)
	LockCatalog(ctx context.Context, q database.Queryer) error
	InsertBatch(ctx context.Context, q database.Queryer, trips []models.Trip) (int64, error)
	Insert(ctx context.Context, q database.Queryer, trip models.Trip) (int64, error)
	ListStale(ctx context.Context, q database.Queryer, today models.Date) ([]models.StaleTrip, error)
	Redate(ctx context.Context, q database.Queryer, id int64, date models.Date) (bool, error)
	Retire(ctx context.Context, q database.Queryer, id int64) error
}

// SeatStore is the seat ledger
type SeatStore interface {
	ListOccupied(ctx context.Context, q database.Queryer, tripID int64) ([]int, error)
	SeatState(ctx context.Context, q database.Queryer, tripID int64, seatNumber int) (models.SeatState, error)
	Reserve(ctx context.Context, q database.Queryer, tripID int64, seatNumber int) error
	Release(ctx context.Context, q database.Queryer, tripID int64, seatNumber int) error
	Provision(ctx context.Context, q database.Queryer, tripID int64) (int64, error)
	ProvisionAll(ctx context.Context, q database.Queryer) (int64, error)
}

// TicketStore is the ticket ledger
type TicketStore interface {
	Create(ctx context.Context, q database.Queryer, ticket *models.Ticket) error
	GetForUpdate(ctx context.Context, q database.Queryer, id int64) (*models.Ticket, error)
	MarkRefunded(ctx context.Context, q database.Queryer, id int64) error
	ListByUser(ctx context.Context, q database.Queryer, userID uuid.UUID) ([]models.TicketWithTrip, error)
}

// UserStore is the account persistence used by AuthService
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTakenByOther(ctx context.Context, email string, userID uuid.UUID) (bool, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	PromoteToAdmin(ctx context.Context, email string) (bool, error)
}

// PriceEstimator quotes duration and price for a city pair. It never fails.
type PriceEstimator interface {
	Estimate(ctx context.Context, origin, destination string) pricing.Quote
}

var (
	_ TxRunner       = (*database.TxManager)(nil)
	_ TripStore      = (*database.TripRepository)(nil)
	_ SeatStore      = (*database.SeatRepository)(nil)
	_ TicketStore    = (*database.TicketRepository)(nil)
	_ UserStore      = (*database.UserRepository)(nil)
	_ PriceEstimator = (*pricing.CachedOracle)(nil)
)
