package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TicketStatus is the presentation state of a ticket
type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusCompleted TicketStatus = "completed"
	TicketStatusRefunded  TicketStatus = "refunded"
)

// TicketFilter selects which tickets a listing returns
type TicketFilter string

const (
	TicketFilterAll    TicketFilter = "all"
	TicketFilterActive TicketFilter = "active"
	TicketFilterPast   TicketFilter = "past"
)

// ParseTicketFilter accepts both English and Turkish filter names; anything else lists all tickets
func ParseTicketFilter(s string) TicketFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "aktif":
		return TicketFilterActive
	case "past", "gecmis", "geçmiş":
		return TicketFilterPast
	default:
		return TicketFilterAll
	}
}

// Matches reports whether a ticket with the given status belongs in the filter
func (f TicketFilter) Matches(status TicketStatus) bool {
	switch f {
	case TicketFilterActive:
		return status == TicketStatusActive
	case TicketFilterPast:
		return status == TicketStatusCompleted || status == TicketStatusRefunded
	default:
		return true
	}
}

// Ticket binds a user to one seat of one trip
type Ticket struct {
	ID          int64     `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	TripID      int64     `json:"trip_id" db:"trip_id"`
	SeatNumber  int       `json:"seat_number" db:"seat_number"`
	PurchasedAt time.Time `json:"purchased_at" db:"purchased_at"`
	Refunded    bool      `json:"refunded" db:"refunded"`
}

// TicketWithTrip is a ticket joined with the trip it was bought for
type TicketWithTrip struct {
	Ticket
	Origin        string       `json:"origin" db:"origin"`
	Destination   string       `json:"destination" db:"destination"`
	Carrier       string       `json:"carrier" db:"carrier"`
	TravelDate    Date         `json:"travel_date" db:"travel_date"`
	DepartureTime string       `json:"departure_time" db:"departure_time"`
	DurationHours float64      `json:"duration_hours" db:"duration_hours"`
	Price         int          `json:"price" db:"price"`
	Status        TicketStatus `json:"status" db:"-"`
}

// Trip rebuilds the trip fields carried by the joined row
func (t TicketWithTrip) Trip() Trip {
	return Trip{
		ID:            t.TripID,
		Origin:        t.Origin,
		Destination:   t.Destination,
		Carrier:       t.Carrier,
		TravelDate:    t.TravelDate,
		DepartureTime: t.DepartureTime,
		DurationHours: t.DurationHours,
		Price:         t.Price,
	}
}

// PurchaseTicketRequest is the body of POST /tickets. Seat range is
// checked by the ticket service, so seat 0 is left to it.
type PurchaseTicketRequest struct {
	TripID     int64 `json:"trip_id" binding:"required"`
	SeatNumber int   `json:"seat_number"`
}
