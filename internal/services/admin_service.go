package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Chart geometry in pixels
const (
	chartWidth   = 320
	chartHeight  = 240
	chartPadding = 20
	barWidth     = 80
)

var (
	chartBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	chartAxis       = color.NRGBA{R: 60, G: 60, B: 60, A: 255}
	activeBarColor  = color.NRGBA{R: 46, G: 125, B: 50, A: 255}
	refundBarColor  = color.NRGBA{R: 198, G: 40, B: 40, A: 255}
)

// StatsSource computes dashboard counters
type StatsSource interface {
	Dashboard(ctx context.Context, today models.Date, dayStart, dayEnd time.Time) (*models.DashboardStats, error)
}

// AdminService builds the admin dashboard
type AdminService struct {
	stats  StatsSource
	loc    *time.Location
	now    func() time.Time
	logger *logrus.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(stats StatsSource, loc *time.Location, logger *logrus.Logger) *AdminService {
	return &AdminService{
		stats:  stats,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the wall clock, for tests
func (s *AdminService) WithClock(now func() time.Time) *AdminService {
	s.now = now
	return s
}

// Dashboard returns the counters for today in the schedule timezone plus
// a bar chart of active against refunded tickets
func (s *AdminService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	today := models.DateOf(s.now().In(s.loc))
	dayStart := today.In(s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	stats, err := s.stats.Dashboard(ctx, today, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	png, err := RenderTicketChart(stats.ActiveTickets, stats.RefundedTickets)
	if err != nil {
		// The counters are still useful without the picture
		s.logger.WithError(err).Warn("Failed to render dashboard chart")
		return &models.Dashboard{Stats: *stats}, nil
	}

	return &models.Dashboard{
		Stats:    *stats,
		ChartPNG: base64.StdEncoding.EncodeToString(png),
	}, nil
}

// RenderTicketChart draws two bars, active then refunded, scaled to the
// larger of the two, and returns the PNG bytes
func RenderTicketChart(active, refunded int) ([]byte, error) {
	canvas := imaging.New(chartWidth, chartHeight, chartBackground)

	baseline := chartHeight - chartPadding
	axis := imaging.New(chartWidth-2*chartPadding, 2, chartAxis)
	canvas = imaging.Paste(canvas, axis, image.Pt(chartPadding, baseline))

	maxValue := active
	if refunded > maxValue {
		maxValue = refunded
	}
	usable := baseline - chartPadding

	bars := []struct {
		value int
		color color.NRGBA
	}{
		{active, activeBarColor},
		{refunded, refundBarColor},
	}

	gap := (chartWidth - 2*chartPadding - len(bars)*barWidth) / (len(bars) + 1)
	for i, bar := range bars {
		if bar.value <= 0 || maxValue == 0 {
			continue
		}
		height := bar.value * usable / maxValue
		if height < 1 {
			height = 1
		}
		x := chartPadding + gap + i*(barWidth+gap)
		rect := imaging.New(barWidth, height, bar.color)
		canvas = imaging.Paste(canvas, rect, image.Pt(x, baseline-height))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
