package pricing

import (
	"context"
	"math"

	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/dogubilet/ticket-backend/pkg/routing"
	"github.com/sirupsen/logrus"
)

// Price bounds in lira
const (
	MinPrice = 200
	MaxPrice = 900
)

// Quote is a computed duration and price for a city pair
type Quote struct {
	DurationHours float64
	Price         int
	Fallback      bool
}

// PriceForRoute turns a route summary into a trip duration and price.
// Duration is rounded to one decimal; price is 0.9 lira per km plus 80,
// truncated and clamped to [MinPrice, MaxPrice].
func PriceForRoute(distanceMeters, durationSeconds float64) (float64, int) {
	hours := math.Round(durationSeconds/3600*10) / 10
	if hours < 0.1 {
		hours = 0.1
	}

	price := int(distanceMeters/1000*0.9 + 80)
	if price < MinPrice {
		price = MinPrice
	}
	if price > MaxPrice {
		price = MaxPrice
	}
	return hours, price
}

// FallbackQuote is used whenever the route cannot be computed
func FallbackQuote() Quote {
	return Quote{
		DurationHours: models.FallbackDurationHours,
		Price:         models.FallbackPrice,
		Fallback:      true,
	}
}

// CachedOracle prices city pairs through a Router, consulting a route cache
// first. It never fails: every error path yields FallbackQuote.
type CachedOracle struct {
	router routing.Router
	cache  RouteCache
	logger *logrus.Logger
}

// NewCachedOracle creates a pricing oracle. router may be nil when no
// API key is configured, and cache may be nil.
func NewCachedOracle(router routing.Router, cache RouteCache, logger *logrus.Logger) *CachedOracle {
	return &CachedOracle{
		router: router,
		cache:  cache,
		logger: logger,
	}
}

// Estimate returns the duration and price between two cities
func (o *CachedOracle) Estimate(ctx context.Context, origin, destination string) Quote {
	from, ok := models.LookupCity(origin)
	if !ok {
		o.logger.WithField("city", origin).Warn("Unknown origin city, using fallback price")
		return FallbackQuote()
	}
	to, ok := models.LookupCity(destination)
	if !ok {
		o.logger.WithField("city", destination).Warn("Unknown destination city, using fallback price")
		return FallbackQuote()
	}

	if o.cache != nil {
		if summary, hit := o.cache.Get(ctx, origin, destination); hit {
			hours, price := PriceForRoute(summary.DistanceMeters, summary.DurationSeconds)
			return Quote{DurationHours: hours, Price: price}
		}
	}

	if o.router == nil {
		return FallbackQuote()
	}

	summary, err := o.router.Summarize(ctx,
		routing.Coordinate{Lon: from.Lon, Lat: from.Lat},
		routing.Coordinate{Lon: to.Lon, Lat: to.Lat},
	)
	if err != nil {
		o.logger.WithFields(logrus.Fields{
			"origin":      origin,
			"destination": destination,
			"router":      o.router.GetName(),
			"error":       err.Error(),
		}).Warn("Route lookup failed, using fallback price")
		return FallbackQuote()
	}

	if o.cache != nil {
		o.cache.Set(ctx, origin, destination, summary)
	}

	hours, price := PriceForRoute(summary.DistanceMeters, summary.DurationSeconds)
	return Quote{DurationHours: hours, Price: price}
}
