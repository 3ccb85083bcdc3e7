package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// maintenanceTimeout bounds one scheduled maintenance run
const maintenanceTimeout = 5 * time.Minute

// Maintainer runs catalog maintenance
type Maintainer interface {
	Maintain(ctx context.Context) (models.MaintenanceResult, error)
}

// CronService manages scheduled background jobs
type CronService struct {
	cron       *cron.Cron
	maintainer Maintainer
	schedule   string
	logger     *logrus.Logger
}

// NewCronService creates a new CronService. Schedules use seconds
// precision and fire in loc.
func NewCronService(maintainer Maintainer, schedule string, loc *time.Location, logger *logrus.Logger) *CronService {
	c := cron.New(cron.WithSeconds(), cron.WithLocation(loc))

	return &CronService{
		cron:       c,
		maintainer: maintainer,
		schedule:   schedule,
		logger:     logger,
	}
}

// Start starts all cron jobs
func (s *CronService) Start() error {
	s.logger.Info("Starting cron service...")

	// Roll the catalog forward and backfill seats, daily at 00:05 by default
	if _, err := s.cron.AddFunc(s.schedule, s.maintenanceJob); err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}
	s.logger.WithField("schedule", s.schedule).Info("Scheduled: catalog maintenance")

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops all cron jobs and waits for running ones
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) maintenanceJob() {
	s.logger.Info("[CRON] Starting catalog maintenance job...")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
	defer cancel()

	result, err := s.maintainer.Maintain(ctx)
	if err != nil {
		s.logger.WithError(err).Error("[CRON ERROR] Catalog maintenance failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"redated":          result.Redated,
		"replaced":         result.Replaced,
		"seats_backfilled": result.SeatsBackfilled,
		"duration":         time.Since(startTime).String(),
	}).Info("[CRON] Catalog maintenance finished")
}

// RunMaintenanceNow runs the maintenance job immediately
func (s *CronService) RunMaintenanceNow(ctx context.Context) (models.MaintenanceResult, error) {
	s.logger.Info("[MANUAL] Running catalog maintenance now...")
	return s.maintainer.Maintain(ctx)
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
