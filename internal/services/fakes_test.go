package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dogubilet/ticket-backend/internal/database"
	"github.com/dogubilet/ticket-backend/internal/events"
	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/dogubilet/ticket-backend/internal/pricing"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// trt is Turkey time without depending on the tz database
var trt = time.FixedZone("TRT", 3*60*60)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// memQ stands in for a connection or transaction. Mutations made through a
// transaction record undo steps that run if the transaction fails.
type memQ struct {
	sqlx.ExtContext
	inTx bool
	undo []func()
}

type seatKey struct {
	trip int64
	seat int
}

// memStore is an in-memory ledger implementing TxRunner, TripStore,
// SeatStore and TicketStore. One mutex guards all state, so each store
// call is atomic the way a single SQL statement is.
type memStore struct {
	mu         sync.Mutex
	trips      map[int64]*models.Trip
	nextTrip   int64
	seats      map[seatKey]models.SeatState
	tickets    map[int64]*models.Ticket
	nextTicket int64

	// failCreate makes the next ticket insert fail, for rollback tests
	failCreate error
	// beforeSetPricing runs before a pricing write, for race tests
	beforeSetPricing func(id int64)
}

func newMemStore() *memStore {
	return &memStore{
		trips:      map[int64]*models.Trip{},
		nextTrip:   1001,
		seats:      map[seatKey]models.SeatState{},
		tickets:    map[int64]*models.Ticket{},
		nextTicket: 1,
	}
}

func (s *memStore) record(q database.Queryer, fn func()) {
	if tx, ok := q.(*memQ); ok && tx.inTx {
		tx.undo = append(tx.undo, fn)
	}
}

// addTrip stores a trip with a full set of free seats and returns its id
func (s *memStore) addTrip(trip models.Trip) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	trip.ID = s.nextTrip
	s.nextTrip++
	s.trips[trip.ID] = &trip
	for n := 1; n <= models.SeatsPerTrip; n++ {
		s.seats[seatKey{trip.ID, n}] = models.SeatStateFree
	}
	return trip.ID
}

func (s *memStore) trip(id int64) models.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.trips[id]
}

func (s *memStore) allTrips() []models.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Trip, 0, len(s.trips))
	for _, t := range s.trips {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) seatCount(tripID int64) (free, occupied int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, st := range s.seats {
		if k.trip != tripID {
			continue
		}
		if st == models.SeatStateFree {
			free++
		} else {
			occupied++
		}
	}
	return free, occupied
}

func (s *memStore) ticketCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

// TxRunner

func (s *memStore) WithinTx(ctx context.Context, fn func(q database.Queryer) error) error {
	tx := &memQ{inTx: true}
	if err := fn(tx); err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) Conn() database.Queryer {
	return &memQ{}
}

// TripStore

func (s *memStore) GetByID(ctx context.Context, q database.Queryer, id int64) (*models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[id]
	if !ok {
		return nil, models.ErrNoSuchTrip
	}
	dup := *t
	return &dup, nil
}

func (s *memStore) GetForShare(ctx context.Context, q database.Queryer, id int64) (*models.Trip, error) {
	return s.GetByID(ctx, q, id)
}

func (s *memStore) Search(ctx context.Context, q database.Queryer, origin, destination string, date models.Date) ([]models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Trip{}
	for _, t := range s.trips {
		if t.Origin == origin && t.Destination == destination && t.TravelDate.Equal(date) && !t.Retired {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartureTime != out[j].DepartureTime {
			return out[i].DepartureTime < out[j].DepartureTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memStore) SetPricing(ctx context.Context, q database.Queryer, id int64, durationHours float64, price int) (bool, error) {
	if s.beforeSetPricing != nil {
		s.beforeSetPricing(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[id]
	if !ok || t.Price != 0 {
		return false, nil
	}
	t.DurationHours = durationHours
	t.Price = price
	return true, nil
}

func (s *memStore) Count(ctx context.Context, q database.Queryer) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trips), nil
}

func (s *memStore) LockCatalog(ctx context.Context, q database.Queryer) error {
	return nil
}

func (s *memStore) InsertBatch(ctx context.Context, q database.Queryer, trips []models.Trip) (int64, error) {
	for _, t := range trips {
		if _, err := s.Insert(ctx, q, t); err != nil {
			return 0, err
		}
	}
	return int64(len(trips)), nil
}

func (s *memStore) Insert(ctx context.Context, q database.Queryer, trip models.Trip) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trip.ID = s.nextTrip
	s.nextTrip++
	s.trips[trip.ID] = &trip
	id := trip.ID
	s.record(q, func() { delete(s.trips, id) })
	return id, nil
}

func (s *memStore) ListStale(ctx context.Context, q database.Queryer, today models.Date) ([]models.StaleTrip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stale := []models.StaleTrip{}
	for _, t := range s.trips {
		if !t.TravelDate.Before(today) || t.Retired {
			continue
		}
		has := false
		for _, k := range s.tickets {
			if k.TripID == t.ID {
				has = true
				break
			}
		}
		stale = append(stale, models.StaleTrip{Trip: *t, HasTickets: has})
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].ID < stale[j].ID })
	return stale, nil
}

func (s *memStore) Redate(ctx context.Context, q database.Queryer, id int64, date models.Date) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.tickets {
		if k.TripID == id {
			return false, nil
		}
	}
	t := s.trips[id]
	old := t.TravelDate
	t.TravelDate = date
	s.record(q, func() { t.TravelDate = old })
	return true, nil
}

func (s *memStore) Retire(ctx context.Context, q database.Queryer, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.trips[id]
	t.Retired = true
	s.record(q, func() { t.Retired = false })
	return nil
}

// SeatStore

func (s *memStore) ListOccupied(ctx context.Context, q database.Queryer, tripID int64) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []int{}
	for k, st := range s.seats {
		if k.trip == tripID && st == models.SeatStateOccupied {
			out = append(out, k.seat)
		}
	}
	sort.Ints(out)
	return out, nil
}

func (s *memStore) SeatState(ctx context.Context, q database.Queryer, tripID int64, seatNumber int) (models.SeatState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.seats[seatKey{tripID, seatNumber}]
	if !ok {
		return "", models.ErrNoSuchSeat
	}
	return st, nil
}

func (s *memStore) Reserve(ctx context.Context, q database.Queryer, tripID int64, seatNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := seatKey{tripID, seatNumber}
	st, ok := s.seats[key]
	if !ok {
		return models.ErrNoSuchSeat
	}
	if st == models.SeatStateOccupied {
		return models.ErrSeatOccupied
	}
	s.seats[key] = models.SeatStateOccupied
	s.record(q, func() { s.seats[key] = models.SeatStateFree })
	return nil
}

func (s *memStore) Release(ctx context.Context, q database.Queryer, tripID int64, seatNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := seatKey{tripID, seatNumber}
	prev, ok := s.seats[key]
	if !ok {
		return models.ErrNoSuchSeat
	}
	s.seats[key] = models.SeatStateFree
	s.record(q, func() { s.seats[key] = prev })
	return nil
}

func (s *memStore) Provision(ctx context.Context, q database.Queryer, tripID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provisionLocked(q, tripID), nil
}

func (s *memStore) provisionLocked(q database.Queryer, tripID int64) int64 {
	var created int64
	for n := 1; n <= models.SeatsPerTrip; n++ {
		key := seatKey{tripID, n}
		if _, ok := s.seats[key]; ok {
			continue
		}
		s.seats[key] = models.SeatStateFree
		s.record(q, func() { delete(s.seats, key) })
		created++
	}
	return created
}

func (s *memStore) ProvisionAll(ctx context.Context, q database.Queryer) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var created int64
	for id := range s.trips {
		created += s.provisionLocked(q, id)
	}
	return created, nil
}

// TicketStore

func (s *memStore) Create(ctx context.Context, q database.Queryer, ticket *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		err := s.failCreate
		s.failCreate = nil
		return err
	}
	for _, k := range s.tickets {
		if k.TripID == ticket.TripID && k.SeatNumber == ticket.SeatNumber && !k.Refunded {
			return models.ErrSeatOccupied
		}
	}
	ticket.ID = s.nextTicket
	s.nextTicket++
	stored := *ticket
	s.tickets[stored.ID] = &stored
	id := stored.ID
	s.record(q, func() { delete(s.tickets, id) })
	return nil
}

func (s *memStore) GetForUpdate(ctx context.Context, q database.Queryer, id int64) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.tickets[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	dup := *k
	return &dup, nil
}

func (s *memStore) MarkRefunded(ctx context.Context, q database.Queryer, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.tickets[id]
	if !ok || k.Refunded {
		return models.ErrAlreadyRefunded
	}
	k.Refunded = true
	s.record(q, func() { k.Refunded = false })
	return nil
}

func (s *memStore) ListByUser(ctx context.Context, q database.Queryer, userID uuid.UUID) ([]models.TicketWithTrip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.TicketWithTrip{}
	for _, k := range s.tickets {
		if k.UserID != userID {
			continue
		}
		t := s.trips[k.TripID]
		out = append(out, models.TicketWithTrip{
			Ticket:        *k,
			Origin:        t.Origin,
			Destination:   t.Destination,
			Carrier:       t.Carrier,
			TravelDate:    t.TravelDate,
			DepartureTime: t.DepartureTime,
			DurationHours: t.DurationHours,
			Price:         t.Price,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.TravelDate.Equal(b.TravelDate) {
			return b.TravelDate.Before(a.TravelDate)
		}
		if a.DepartureTime != b.DepartureTime {
			return a.DepartureTime > b.DepartureTime
		}
		return a.ID > b.ID
	})
	return out, nil
}

// countingOracle returns a fixed quote and counts calls
type countingOracle struct {
	mu    sync.Mutex
	quote pricing.Quote
	calls int
}

func (o *countingOracle) Estimate(ctx context.Context, origin, destination string) pricing.Quote {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	return o.quote
}

func (o *countingOracle) Calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

// recordingPublisher keeps published events; err makes every publish fail
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.TicketEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.TicketEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

var errInjected = errors.New("injected failure")

var (
	_ TxRunner    = (*memStore)(nil)
	_ TripStore   = (*memStore)(nil)
	_ SeatStore   = (*memStore)(nil)
	_ TicketStore = (*memStore)(nil)
)
