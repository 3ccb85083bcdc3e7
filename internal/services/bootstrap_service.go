package services

import (
	"context"
	"fmt"

	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// CatalogMaintainer seeds and maintains the trip catalog
type CatalogMaintainer interface {
	Bootstrap(ctx context.Context, cities, carriers []string) (int, error)
	Maintain(ctx context.Context) (models.MaintenanceResult, error)
}

// AdminPromoter grants the admin role by email
type AdminPromoter interface {
	PromoteAdmin(ctx context.Context, email string) (bool, error)
}

// BootstrapService prepares the database for serving: schema, catalog and admin account
type BootstrapService struct {
	migrate    func(ctx context.Context) error
	catalog    CatalogMaintainer
	promoter   AdminPromoter
	cities     []string
	carriers   []string
	adminEmail string
	logger     *logrus.Logger
}

// NewBootstrapService creates a new BootstrapService
func NewBootstrapService(
	migrate func(ctx context.Context) error,
	catalog CatalogMaintainer,
	promoter AdminPromoter,
	adminEmail string,
	logger *logrus.Logger,
) *BootstrapService {
	return &BootstrapService{
		migrate:    migrate,
		catalog:    catalog,
		promoter:   promoter,
		cities:     models.CityNames(),
		carriers:   models.Carriers,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// BootstrapReport summarises one bootstrap run
type BootstrapReport struct {
	Seeded        int
	Maintenance   *models.MaintenanceResult
	AdminPromoted bool
}

// Run creates missing tables, then seeds an empty catalog or rolls an
// existing one forward, and finally promotes the configured admin account.
// Running it twice is harmless.
func (s *BootstrapService) Run(ctx context.Context) (*BootstrapReport, error) {
	report := &BootstrapReport{}

	if s.migrate != nil {
		if err := s.migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	seeded, err := s.catalog.Bootstrap(ctx, s.cities, s.carriers)
	if err != nil {
		return nil, err
	}
	report.Seeded = seeded

	if seeded == 0 {
		result, err := s.catalog.Maintain(ctx)
		if err != nil {
			return nil, err
		}
		report.Maintenance = &result
	}

	if s.adminEmail != "" {
		promoted, err := s.promoter.PromoteAdmin(ctx, s.adminEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to promote admin: %w", err)
		}
		report.AdminPromoted = promoted
		if !promoted {
			s.logger.WithField("email", s.adminEmail).Warn("ADMIN_EMAIL has no account yet; sign up and rerun bootstrap")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"seeded":         report.Seeded,
		"admin_promoted": report.AdminPromoted,
	}).Info("Bootstrap complete")
	return report, nil
}
