package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TripCatalog finds priced trips
type TripCatalog interface {
	SearchTrips(ctx context.Context, origin, destination string, date models.Date) ([]models.Trip, error)
}

// TripHandler handles city and trip search endpoints
type TripHandler struct {
	catalog TripCatalog
	logger  *logrus.Logger
}

// NewTripHandler creates a new TripHandler
func NewTripHandler(catalog TripCatalog, logger *logrus.Logger) *TripHandler {
	return &TripHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ListCities handles GET /api/v1/cities
func (h *TripHandler) ListCities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"cities":   models.Cities,
		"carriers": models.Carriers,
	})
}

// SearchTrips handles GET /api/v1/trips/search?origin=&destination=&date=
func (h *TripHandler) SearchTrips(c *gin.Context) {
	var req models.TripSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, h.logger, models.ErrMissingFields)
		return
	}

	date, err := models.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}

	trips, err := h.catalog.SearchTrips(c.Request.Context(), req.Origin, req.Destination, date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"origin":      req.Origin,
		"destination": req.Destination,
		"date":        date,
		"count":       len(trips),
		"trips":       trips,
	})
}
