package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/road-damage-service/internal/api/dto"
	"github.com/spec-kit/road-damage-service/internal/auth"
	"github.com/spec-kit/road-damage-service/internal/domain"
	"github.com/spec-kit/road-damage-service/internal/service"
	apperrors "github.com/spec-kit/road-damage-service/pkg/util"
)

// AdminTicketsHandler exposes triage endpoints. The write_status capability
// is enforced again inside the service, so these routes fail closed even
// if a route registration slips.
type AdminTicketsHandler struct {
	service *service.TicketService
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(ticketService *service.TicketService) *AdminTicketsHandler {
	return &AdminTicketsHandler{service: ticketService}
}

// List GET /admin/tickets. Owner contact fields are included.
func (h *AdminTicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	filter := parseTicketQuery(c)
	if ownerID := c.Query("owner_id"); ownerID != "" {
		filter.OwnerID = &ownerID
	}
	tickets, err := h.service.List(c.UserContext(), principal, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// UpdateStatus PATCH /admin/tickets/:id/status.
func (h *AdminTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	ticket, err := h.service.UpdateStatus(c.UserContext(), principal, c.Params("id"),
		domain.TicketStatus(req.Status), req.AdminNotes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}
