package main

import (
	"context"
	"os"
	"time"

	"github.com/dogubilet/ticket-backend/internal/config"
	"github.com/dogubilet/ticket-backend/internal/database"
	"github.com/dogubilet/ticket-backend/internal/pricing"
	"github.com/dogubilet/ticket-backend/internal/services"
	"github.com/dogubilet/ticket-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
)

// Creates the schema, seeds or rolls the trip catalog forward and promotes
// ADMIN_EMAIL. Safe to run repeatedly.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	db, err := database.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	loc := cfg.Location()
	userRepository := database.NewUserRepository(db)

	// Seeding never prices trips, so the oracle runs without a router
	oracle := pricing.NewCachedOracle(nil, pricing.NewRedisRouteCache(nil, cfg.Pricing.CacheTTL, logger), logger)
	catalogService := services.NewCatalogService(
		database.NewTxManager(db),
		database.NewTripRepository(),
		database.NewSeatRepository(),
		oracle,
		loc,
		logger,
	)
	authService := services.NewAuthService(userRepository, jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry), cfg.Security.BcryptCost, logger)

	bootstrapService := services.NewBootstrapService(func(ctx context.Context) error {
		return database.Migrate(ctx, db)
	}, catalogService, authService, cfg.Bootstrap.AdminEmail, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	report, err := bootstrapService.Run(ctx)
	if err != nil {
		logger.Fatalf("Bootstrap failed: %v", err)
	}

	fields := logrus.Fields{
		"seeded":         report.Seeded,
		"admin_promoted": report.AdminPromoted,
	}
	if report.Maintenance != nil {
		fields["redated"] = report.Maintenance.Redated
		fields["replaced"] = report.Maintenance.Replaced
		fields["seats_backfilled"] = report.Maintenance.SeatsBackfilled
	}
	logger.WithFields(fields).Info("Database ready")
}
