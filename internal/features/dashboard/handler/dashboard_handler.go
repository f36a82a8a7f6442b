package handler

import (
	"net/http"

	"storefront-admin/internal/core/logger"
	"storefront-admin/internal/features/dashboard/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DashboardHandler handles HTTP requests for the analytics dashboard.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new instance of DashboardHandler.
func NewDashboardHandler(s *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		service: s,
	}
}

// GetSummary handles GET /dashboard/summary.
// @Summary Get the dashboard summary
// @Description Returns sales totals and per-status order counts, cached briefly.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.Summary
// @Failure 502 {object} map[string]string
// @Router /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.Context())
	if err != nil {
		logger.Get().Error("Failed to fetch dashboard summary", zap.Error(err))
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{
			"error": "Upstream commerce API unavailable",
		})
	}

	return c.Status(http.StatusOK).JSON(summary)
}
