package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/road-damage-service/internal/auth"
	"github.com/spec-kit/road-damage-service/internal/config"
	"github.com/spec-kit/road-damage-service/internal/domain"
	"github.com/spec-kit/road-damage-service/internal/events"
	"github.com/spec-kit/road-damage-service/internal/repository"
	apperrors "github.com/spec-kit/road-damage-service/pkg/util"
)

// TicketService is the ticket lifecycle engine. All status transitions,
// priority derivation and ownership checks happen here; handlers never
// touch the repositories directly.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	priority   config.PriorityConfig
	pagination config.PaginationConfig
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes a new damage report. Damage metrics come
// from the upstream detector and are frozen on the ticket; callers cannot
// set status or priority.
type TicketCreateInput struct {
	Title          string
	Description    string
	Location       string
	Latitude       *float64
	Longitude      *float64
	Damage         *domain.DamageMetrics
	ImagePath      *string
	AnnotatedImage *string
}

// TicketListFilter describes listing parameters. OwnerID is honored for
// admins only; regular users are always scoped to their own tickets.
type TicketListFilter struct {
	OwnerID    *string
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Page       int
	PageSize   int
}

// NewTicketService constructs the service.
func NewTicketService(cfg config.Config, deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		priority:   cfg.Priority,
		pagination: cfg.Pagination,
		dispatcher: deps.Dispatcher,
	}
}

// Create opens a ticket in state pending with priority derived from the
// damage percentage.
func (s *TicketService) Create(ctx context.Context, actor *domain.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, auth.CapWriteOwnCreate); err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	if input.Title == "" || input.Description == "" || input.Location == "" {
		return nil, apperrors.NewValidationError("title, description, location required", nil)
	}

	var damage domain.DamageMetrics
	if input.Damage != nil {
		damage = *input.Damage
		if damage.Percentage < 0 || damage.Percentage > 100 {
			return nil, apperrors.NewValidationError("damage percentage out of range", map[string]any{
				"field": "damage_percentage",
			})
		}
		if damage.TotalDetections < 0 || damage.DamagedAreaPx < 0 {
			return nil, apperrors.NewValidationError("damage metrics must be non-negative", nil)
		}
	}

	ticket := &domain.Ticket{
		OwnerID:        actor.UserID,
		Title:          input.Title,
		Description:    input.Description,
		Location:       input.Location,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		Status:         domain.TicketStatusPending,
		Priority:       s.priorityFor(damage.Percentage),
		Damage:         damage,
		ImagePath:      input.ImagePath,
		AnnotatedImage: input.AnnotatedImage,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actor.UserID,
		Payload: events.TicketCreatedPayload{
			Title:            ticket.Title,
			Location:         ticket.Location,
			Priority:         ticket.Priority,
			DamagePercentage: ticket.Damage.Percentage,
			TotalDetections:  ticket.Damage.TotalDetections,
		},
	})
	return ticket, nil
}

// Get returns a single ticket. Admins see any; owners see their own;
// everyone else gets Forbidden.
func (s *TicketService) Get(ctx context.Context, actor *domain.Principal, ticketID string) (*domain.Ticket, error) {
	if auth.Can(actor, auth.CapReadAll) {
		ticket, err := s.tickets.GetByID(ctx, ticketID, true)
		if err != nil {
			return nil, s.mapTicketErr(err)
		}
		return ticket, nil
	}
	if err := auth.Authorize(actor, auth.CapReadOwn); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID, false)
	if err != nil {
		return nil, s.mapTicketErr(err)
	}
	if ticket.OwnerID != actor.UserID {
		return nil, apperrors.NewForbidden("ticket belongs to another user")
	}
	return ticket, nil
}

// List returns tickets visible to the actor, newest first.
func (s *TicketService) List(ctx context.Context, actor *domain.Principal, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
	}

	if auth.Can(actor, auth.CapReadAll) {
		repoFilter.OwnerID = filter.OwnerID
		repoFilter.IncludeOwner = true
	} else {
		if err := auth.Authorize(actor, auth.CapReadOwn); err != nil {
			return nil, err
		}
		ownerID := actor.UserID
		repoFilter.OwnerID = &ownerID
	}

	repoFilter.Limit, repoFilter.Offset = s.pageBounds(filter.Page, filter.PageSize)

	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// UpdateStatus moves a ticket to a new status, recording the change in the
// audit log within the same transaction. Any status may move to any other:
// re-triage of resolved and rejected tickets is allowed.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.Principal, ticketID string, newStatus domain.TicketStatus, notes *string) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, auth.CapWriteStatus); err != nil {
		return nil, err
	}
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(newStatus)})
	}

	ticket, err := s.tickets.UpdateStatus(ctx, repository.StatusUpdate{
		TicketID:   ticketID,
		ActorID:    actor.UserID,
		NewStatus:  newStatus,
		AdminNotes: notes,
	})
	if err != nil {
		return nil, s.mapTicketErr(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  actor.UserID,
		Payload: events.TicketStatusChangedPayload{
			NewStatus: newStatus,
			Notes:     notes,
		},
	})
	return ticket, nil
}

// History returns the audit trail for a ticket the actor may see.
func (s *TicketService) History(ctx context.Context, actor *domain.Principal, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	if _, err := s.Get(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *TicketService) priorityFor(percentage float64) domain.TicketPriority {
	switch {
	case percentage >= s.priority.HighThreshold:
		return domain.TicketPriorityHigh
	case percentage >= s.priority.MediumThreshold:
		return domain.TicketPriorityMedium
	default:
		return domain.TicketPriorityLow
	}
}

func (s *TicketService) pageBounds(page, pageSize int) (limit, offset int) {
	if pageSize <= 0 {
		pageSize = s.pagination.DefaultPageSize
	}
	if s.pagination.MaxPageSize > 0 && pageSize > s.pagination.MaxPageSize {
		pageSize = s.pagination.MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}

func (s *TicketService) mapTicketErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("ticket", nil)
	}
	return apperrors.MapError(err)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
