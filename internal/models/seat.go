package models

// SeatsPerTrip is the fixed coach capacity
const SeatsPerTrip = 40

// SeatState represents whether a seat is sold
type SeatState string

const (
	SeatStateFree     SeatState = "free"
	SeatStateOccupied SeatState = "occupied"
)

// Seat represents one numbered seat of a trip
type Seat struct {
	ID         int64     `json:"id" db:"id"`
	TripID     int64     `json:"trip_id" db:"trip_id"`
	SeatNumber int       `json:"seat_number" db:"seat_number"`
	State      SeatState `json:"state" db:"state"`
}

// SeatMap lists every seat of a trip and which of them are taken
type SeatMap struct {
	TripID   int64 `json:"trip_id"`
	AllSeats []int `json:"all_seats"`
	Occupied []int `json:"occupied"`
}

// AllSeatNumbers returns 1..SeatsPerTrip
func AllSeatNumbers() []int {
	seats := make([]int, SeatsPerTrip)
	for i := range seats {
		seats[i] = i + 1
	}
	return seats
}

// ValidSeatNumber reports whether n is within 1..SeatsPerTrip
func ValidSeatNumber(n int) bool {
	return n >= 1 && n <= SeatsPerTrip
}
