package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dogubilet/ticket-backend/internal/config"
	"github.com/dogubilet/ticket-backend/pkg/routing"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RouteCache stores route summaries per city pair. Only distance and
// driving time are cached, never seat or ticket state.
type RouteCache interface {
	Get(ctx context.Context, origin, destination string) (*routing.Summary, bool)
	Set(ctx context.Context, origin, destination string, summary *routing.Summary)
}

// RedisRouteCache implements RouteCache on Redis. A nil client disables it.
type RedisRouteCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRedisRouteCache creates a route cache
func NewRedisRouteCache(rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisRouteCache {
	return &RedisRouteCache{rdb: rdb, ttl: ttl, logger: logger}
}

func routeKey(origin, destination string) string {
	return fmt.Sprintf("route:%s:%s", origin, destination)
}

// Get returns the cached summary for a city pair
func (c *RedisRouteCache) Get(ctx context.Context, origin, destination string) (*routing.Summary, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, routeKey(origin, destination)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).Warn("Route cache read failed")
		}
		return nil, false
	}

	var summary routing.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		c.logger.WithError(err).Warn("Discarding malformed route cache entry")
		return nil, false
	}
	return &summary, true
}

// Set stores a summary; failures are logged and ignored
func (c *RedisRouteCache) Set(ctx context.Context, origin, destination string, summary *routing.Summary) {
	if c == nil || c.rdb == nil || summary == nil {
		return
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, routeKey(origin, destination), raw, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("Route cache write failed")
	}
}

// NewRedisClient connects to Redis and pings it with a short timeout.
// It returns nil when Redis is disabled or unreachable, and callers
// degrade by skipping the route cache and rate limiting.
func NewRedisClient(cfg config.RedisConfig, logger *logrus.Logger) *redis.Client {
	if !cfg.Enabled || cfg.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithFields(logrus.Fields{
			"addr":  cfg.Addr,
			"error": err.Error(),
		}).Warn("Redis unavailable, route cache and rate limiting disabled")
		client.Close()
		return nil
	}

	logger.WithField("addr", cfg.Addr).Info("Connected to Redis")
	return client
}
