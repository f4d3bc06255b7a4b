// internal/handlers/dashboard/dashboard_handler.go
package dashboard

import (
	"net/http"
	"strconv"

	"isp-billing-service/internal/pkg/response"
	service "isp-billing-service/internal/service/dashboard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, logger: logger}
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// GetRevenueChart handles GET /dashboard/revenue-chart?year=; no year means the current one.
func (h *DashboardHandler) GetRevenueChart(c *gin.Context) {
	var year int
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.ValidationError(c, "Invalid year")
			return
		}
		year = parsed
	}

	points, err := h.dashboardService.RevenueChart(c.Request.Context(), year)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, points)
}
