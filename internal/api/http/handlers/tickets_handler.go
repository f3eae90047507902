package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/road-damage-service/internal/api/dto"
	"github.com/spec-kit/road-damage-service/internal/auth"
	"github.com/spec-kit/road-damage-service/internal/domain"
	"github.com/spec-kit/road-damage-service/internal/service"
	apperrors "github.com/spec-kit/road-damage-service/pkg/util"
)

// TicketsHandler manages citizen-facing ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketCreateInput{
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		ImagePath:      req.ImagePath,
		AnnotatedImage: req.AnnotatedImage,
	}
	if req.DamagePercentage != nil || req.TotalDetections != nil || req.DamagedAreaPx != nil {
		metrics := domain.DamageMetrics{}
		if req.DamagePercentage != nil {
			metrics.Percentage = *req.DamagePercentage
		}
		if req.TotalDetections != nil {
			metrics.TotalDetections = *req.TotalDetections
		}
		if req.DamagedAreaPx != nil {
			metrics.DamagedAreaPx = *req.DamagedAreaPx
		}
		input.Damage = &metrics
	}

	ticket, err := h.service.Create(c.UserContext(), principal, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	tickets, err := h.service.List(c.UserContext(), principal, parseTicketQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	ticket, err := h.service.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// History GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	limit := parseIntQuery(c.Query("limit"), 100)
	offset := parseIntQuery(c.Query("offset"), 0)
	entries, err := h.service.History(c.UserContext(), principal, c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.TicketHistoryResponse{
			ID:        entry.ID,
			ActorID:   entry.ActorID,
			OldStatus: entry.OldStatus,
			NewStatus: entry.NewStatus,
			Notes:     entry.Notes,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	filter.Page = parseIntQuery(c.Query("page"), 1)
	filter.PageSize = parseIntQuery(c.Query("page_size"), 0)
	return filter
}

func parseIntQuery(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:               ticket.ID,
		OwnerID:          ticket.OwnerID,
		Title:            ticket.Title,
		Description:      ticket.Description,
		Location:         ticket.Location,
		Latitude:         ticket.Latitude,
		Longitude:        ticket.Longitude,
		Status:           ticket.Status,
		Priority:         ticket.Priority,
		DamagePercentage: ticket.Damage.Percentage,
		TotalDetections:  ticket.Damage.TotalDetections,
		DamagedAreaPx:    ticket.Damage.DamagedAreaPx,
		ImagePath:        ticket.ImagePath,
		AnnotatedImage:   ticket.AnnotatedImage,
		AdminNotes:       ticket.AdminNotes,
		CreatedAt:        ticket.CreatedAt,
		UpdatedAt:        ticket.UpdatedAt,
	}
	if ticket.OwnerUsername != nil || ticket.OwnerFullName != nil {
		resp.Owner = &dto.TicketOwner{
			Username: ticket.OwnerUsername,
			FullName: ticket.OwnerFullName,
			Email:    ticket.OwnerEmail,
			Phone:    ticket.OwnerPhone,
		}
	}
	return resp
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return items
}
