package handlers

import (
	"context"
	"net/http"

	"github.com/dogubilet/ticket-backend/internal/middleware"
	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DashboardProvider builds the admin dashboard
type DashboardProvider interface {
	Dashboard(ctx context.Context) (*models.Dashboard, error)
}

// MaintenanceRunner triggers and reports on catalog maintenance
type MaintenanceRunner interface {
	RunMaintenanceNow(ctx context.Context) (models.MaintenanceResult, error)
	GetJobStatus() map[string]interface{}
}

// AdminHandler handles admin-only endpoints
type AdminHandler struct {
	dashboard   DashboardProvider
	maintenance MaintenanceRunner
	logger      *logrus.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(dashboard DashboardProvider, maintenance MaintenanceRunner, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		dashboard:   dashboard,
		maintenance: maintenance,
		logger:      logger,
	}
}

// GetDashboard handles GET /api/v1/admin/dashboard
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.dashboard.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// RunRollForward handles POST /api/v1/admin/maintenance/rollforward
func (h *AdminHandler) RunRollForward(c *gin.Context) {
	admin, _ := middleware.GetUserContext(c)
	h.logger.WithField("admin_id", admin.UserID).Info("Manual catalog maintenance requested")

	result, err := h.maintenance.RunMaintenanceNow(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Catalog maintenance completed",
		"result":  result,
	})
}

// GetMaintenanceStatus handles GET /api/v1/admin/maintenance/status
func (h *AdminHandler) GetMaintenanceStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.maintenance.GetJobStatus())
}
