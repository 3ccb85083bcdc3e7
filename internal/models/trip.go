package models

import (
	"fmt"
	"time"
)

// Fallback pricing used when the route oracle cannot answer
const (
	FallbackDurationHours = 6.0
	FallbackPrice         = 400
)

// Trip represents a scheduled city-to-city departure
type Trip struct {
	ID            int64   `json:"id" db:"id"`
	Origin        string  `json:"origin" db:"origin"`
	Destination   string  `json:"destination" db:"destination"`
	Carrier       string  `json:"carrier" db:"carrier"`
	TravelDate    Date    `json:"travel_date" db:"travel_date"`
	DepartureTime string  `json:"departure_time" db:"departure_time"` // HH:MM
	DurationHours float64 `json:"duration_hours" db:"duration_hours"` // 0 until priced
	Price         int     `json:"price" db:"price"`                   // 0 until priced
	Retired       bool    `json:"-" db:"retired"`
}

// IsPriced reports whether duration and price have been computed
func (t Trip) IsPriced() bool {
	return t.Price > 0 && t.DurationHours > 0
}

// DepartureAt returns the departure instant of the trip in loc
func (t Trip) DepartureAt(loc *time.Location) (time.Time, error) {
	clock, err := time.Parse("15:04", t.DepartureTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid departure time %q for trip %d: %w", t.DepartureTime, t.ID, err)
	}
	y, m, d := t.TravelDate.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// ArrivalAt returns departure plus the trip duration
func (t Trip) ArrivalAt(loc *time.Location) (time.Time, error) {
	departure, err := t.DepartureAt(loc)
	if err != nil {
		return time.Time{}, err
	}
	return departure.Add(time.Duration(t.DurationHours * float64(time.Hour))), nil
}

// StaleTrip is a trip whose travel date has passed, with whether any ticket references it
type StaleTrip struct {
	Trip
	HasTickets bool `db:"has_tickets"`
}

// RollForwardResult summarises one catalog rollforward pass
type RollForwardResult struct {
	Redated  int `json:"redated"`
	Replaced int `json:"replaced"`
}

// MaintenanceResult summarises rollforward plus seat backfill
type MaintenanceResult struct {
	RollForwardResult
	SeatsBackfilled int64 `json:"seats_backfilled"`
}

// TripSearchRequest is bound from the search query string
type TripSearchRequest struct {
	Origin      string `form:"origin" binding:"required"`
	Destination string `form:"destination" binding:"required"`
	Date        string `form:"date" binding:"required"`
}
