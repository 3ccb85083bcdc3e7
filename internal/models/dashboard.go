package models

// TripTicketCount is the number of tickets sold for one trip
type TripTicketCount struct {
	TripID      int64  `json:"trip_id" db:"trip_id"`
	Origin      string `json:"origin" db:"origin"`
	Destination string `json:"destination" db:"destination"`
	Tickets     int    `json:"tickets" db:"tickets"`
}

// DashboardStats holds the admin dashboard counters
type DashboardStats struct {
	TotalUsers      int               `json:"total_users" db:"total_users"`
	TotalTrips      int               `json:"total_trips" db:"total_trips"`
	TotalTickets    int               `json:"total_tickets" db:"total_tickets"`
	RefundedTickets int               `json:"refunded_tickets" db:"refunded_tickets"`
	ActiveTickets   int               `json:"active_tickets" db:"active_tickets"`
	TripsToday      int               `json:"trips_today" db:"trips_today"`
	TicketsToday    int               `json:"tickets_sold_today" db:"tickets_today"`
	TicketsPerTrip  []TripTicketCount `json:"tickets_per_trip" db:"-"`
}

// Dashboard is the admin dashboard payload
type Dashboard struct {
	Stats DashboardStats `json:"stats"`
	// ChartPNG is a base64 encoded PNG of active vs refunded tickets
	ChartPNG string `json:"chart_png"`
}
