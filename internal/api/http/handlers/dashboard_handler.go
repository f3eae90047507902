package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/road-damage-service/internal/auth"
	"github.com/spec-kit/road-damage-service/internal/service"
	apperrors "github.com/spec-kit/road-damage-service/pkg/util"
)

// DashboardHandler serves aggregate counters.
type DashboardHandler struct {
	stats *service.StatsService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(statsService *service.StatsService) *DashboardHandler {
	return &DashboardHandler{stats: statsService}
}

// Stats GET /dashboard/stats.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	stats, err := h.stats.Stats(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
