package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/dogubilet/ticket-backend/internal/database"
	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/dogubilet/ticket-backend/internal/pricing"
	"github.com/sirupsen/logrus"
)

// Catalog generation parameters
const (
	TripsPerCity      = 30
	BootstrapDayRange = 3 // today+0 .. today+2
	RollForwardDays   = 3
)

var departureMinutes = []int{0, 15, 30, 45}

// CatalogService manages the trip catalog: search, pricing, seeding and rollforward
type CatalogService struct {
	tx     TxRunner
	trips  TripStore
	seats  SeatStore
	oracle PriceEstimator
	loc    *time.Location
	now    func() time.Time
	logger *logrus.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	tx TxRunner,
	trips TripStore,
	seats SeatStore,
	oracle PriceEstimator,
	loc *time.Location,
	logger *logrus.Logger,
) *CatalogService {
	return &CatalogService{
		tx:     tx,
		trips:  trips,
		seats:  seats,
		oracle: oracle,
		loc:    loc,
		now:    time.Now,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithClock replaces the wall clock, for tests
func (s *CatalogService) WithClock(now func() time.Time) *CatalogService {
	s.now = now
	return s
}

// WithRand replaces the random source used by Bootstrap
func (s *CatalogService) WithRand(rng *rand.Rand) *CatalogService {
	s.rng = rng
	return s
}

// Today returns the current calendar date in the schedule timezone
func (s *CatalogService) Today() models.Date {
	return models.DateOf(s.now().In(s.loc))
}

// FindTrips returns the live trips for an exact route and date, unpriced ones included
func (s *CatalogService) FindTrips(ctx context.Context, origin, destination string, date models.Date) ([]models.Trip, error) {
	return s.trips.Search(ctx, s.tx.Conn(), origin, destination, date)
}

// SearchTrips returns the live trips for a route and date, pricing any that are not yet priced
func (s *CatalogService) SearchTrips(ctx context.Context, origin, destination string, date models.Date) ([]models.Trip, error) {
	trips, err := s.FindTrips(ctx, origin, destination, date)
	if err != nil {
		return nil, err
	}

	// All results share one city pair, so the oracle is asked at most once
	var quote *pricing.Quote
	estimate := func(ctx context.Context, origin, destination string) pricing.Quote {
		if quote == nil {
			q := s.oracle.Estimate(ctx, origin, destination)
			quote = &q
		}
		return *quote
	}

	for i := range trips {
		priced, err := s.ensurePriced(ctx, trips[i], estimate)
		if err != nil {
			return nil, err
		}
		trips[i] = priced
	}
	return trips, nil
}

// EnsurePriced returns trip with duration and price set. Values are computed
// at most once per trip; a concurrent writer's values win and are returned.
func (s *CatalogService) EnsurePriced(ctx context.Context, trip models.Trip) (models.Trip, error) {
	return s.ensurePriced(ctx, trip, s.oracle.Estimate)
}

func (s *CatalogService) ensurePriced(
	ctx context.Context,
	trip models.Trip,
	estimate func(ctx context.Context, origin, destination string) pricing.Quote,
) (models.Trip, error) {
	if trip.IsPriced() {
		return trip, nil
	}

	conn := s.tx.Conn()
	current, err := s.trips.GetByID(ctx, conn, trip.ID)
	if err != nil {
		return models.Trip{}, err
	}
	if current.IsPriced() {
		return *current, nil
	}

	quote := estimate(ctx, current.Origin, current.Destination)
	written, err := s.trips.SetPricing(ctx, conn, current.ID, quote.DurationHours, quote.Price)
	if err != nil {
		return models.Trip{}, err
	}

	if written {
		s.logger.WithFields(logrus.Fields{
			"trip_id":  current.ID,
			"route":    current.Origin + " → " + current.Destination,
			"duration": quote.DurationHours,
			"price":    quote.Price,
			"fallback": quote.Fallback,
		}).Info("Trip priced")
		current.DurationHours = quote.DurationHours
		current.Price = quote.Price
		return *current, nil
	}

	// Lost the race: return what the winner stored
	stored, err := s.trips.GetByID(ctx, conn, current.ID)
	if err != nil {
		return models.Trip{}, err
	}
	return *stored, nil
}

// Bootstrap seeds an empty catalog with TripsPerCity unpriced trips per city,
// each with a full set of free seats. It returns the number of trips created,
// which is zero when the catalog already has trips.
func (s *CatalogService) Bootstrap(ctx context.Context, cities, carriers []string) (int, error) {
	if len(cities) < 2 {
		return 0, fmt.Errorf("bootstrap needs at least two cities, got %d", len(cities))
	}
	if len(carriers) == 0 {
		return 0, fmt.Errorf("bootstrap needs at least one carrier")
	}

	today := s.Today()
	created := 0

	err := s.tx.WithinTx(ctx, func(q database.Queryer) error {
		if err := s.trips.LockCatalog(ctx, q); err != nil {
			return err
		}

		count, err := s.trips.Count(ctx, q)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		trips := s.generateTrips(today, cities, carriers)
		inserted, err := s.trips.InsertBatch(ctx, q, trips)
		if err != nil {
			return err
		}

		if _, err := s.seats.ProvisionAll(ctx, q); err != nil {
			return err
		}

		created = int(inserted)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to bootstrap catalog: %w", err)
	}

	if created > 0 {
		s.logger.WithFields(logrus.Fields{
			"trips":  created,
			"cities": len(cities),
			"from":   today.String(),
		}).Info("Trip catalog seeded")
	}
	return created, nil
}

func (s *CatalogService) generateTrips(today models.Date, cities, carriers []string) []models.Trip {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	trips := make([]models.Trip, 0, len(cities)*TripsPerCity)
	for i, origin := range cities {
		for n := 0; n < TripsPerCity; n++ {
			// Pick among the other cities without retrying
			j := s.rng.Intn(len(cities) - 1)
			if j >= i {
				j++
			}

			trips = append(trips, models.Trip{
				Origin:        origin,
				Destination:   cities[j],
				Carrier:       carriers[s.rng.Intn(len(carriers))],
				TravelDate:    today.AddDays(s.rng.Intn(BootstrapDayRange)),
				DepartureTime: fmt.Sprintf("%02d:%02d", s.rng.Intn(24), departureMinutes[s.rng.Intn(len(departureMinutes))]),
			})
		}
	}
	return trips
}

// RollForward keeps the catalog in the future. Stale trips without tickets
// are re-dated to today+RollForwardDays. Stale trips with tickets are retired
// and replaced by a new unpriced trip on the same route, carrier and time,
// so existing tickets keep their real travel date.
func (s *CatalogService) RollForward(ctx context.Context, today models.Date) (models.RollForwardResult, error) {
	var result models.RollForwardResult
	target := today.AddDays(RollForwardDays)

	err := s.tx.WithinTx(ctx, func(q database.Queryer) error {
		if err := s.trips.LockCatalog(ctx, q); err != nil {
			return err
		}

		stale, err := s.trips.ListStale(ctx, q, today)
		if err != nil {
			return err
		}

		for _, trip := range stale {
			if !trip.HasTickets {
				redated, err := s.trips.Redate(ctx, q, trip.ID, target)
				if err != nil {
					return err
				}
				if redated {
					result.Redated++
					continue
				}
				// A ticket landed while we waited for the lock
			}

			if err := s.trips.Retire(ctx, q, trip.ID); err != nil {
				return err
			}
			replacementID, err := s.trips.Insert(ctx, q, models.Trip{
				Origin:        trip.Origin,
				Destination:   trip.Destination,
				Carrier:       trip.Carrier,
				TravelDate:    target,
				DepartureTime: trip.DepartureTime,
			})
			if err != nil {
				return err
			}
			if _, err := s.seats.Provision(ctx, q, replacementID); err != nil {
				return err
			}
			result.Replaced++
		}
		return nil
	})
	if err != nil {
		return models.RollForwardResult{}, fmt.Errorf("failed to roll catalog forward: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"today":    today.String(),
		"redated":  result.Redated,
		"replaced": result.Replaced,
	}).Info("Trip catalog rolled forward")
	return result, nil
}

// Maintain rolls the catalog forward to today and backfills missing seats
func (s *CatalogService) Maintain(ctx context.Context) (models.MaintenanceResult, error) {
	rolled, err := s.RollForward(ctx, s.Today())
	if err != nil {
		return models.MaintenanceResult{}, err
	}

	backfilled, err := s.seats.ProvisionAll(ctx, s.tx.Conn())
	if err != nil {
		return models.MaintenanceResult{}, fmt.Errorf("failed to backfill seats: %w", err)
	}
	if backfilled > 0 {
		s.logger.WithField("seats", backfilled).Warn("Backfilled missing seats")
	}

	return models.MaintenanceResult{
		RollForwardResult: rolled,
		SeatsBackfilled:   backfilled,
	}, nil
}
