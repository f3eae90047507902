package service

import (
	"context"

	"github.com/spec-kit/road-damage-service/internal/auth"
	"github.com/spec-kit/road-damage-service/internal/domain"
	"github.com/spec-kit/road-damage-service/internal/repository"
	apperrors "github.com/spec-kit/road-damage-service/pkg/util"
)

// DashboardStats carries per-status counters over the actor's visible
// scope. TotalUsers is populated for admins only.
type DashboardStats struct {
	TotalTickets int64  `json:"total_tickets"`
	Pending      int64  `json:"pending"`
	InProgress   int64  `json:"in_progress"`
	Resolved     int64  `json:"resolved"`
	Rejected     int64  `json:"rejected"`
	TotalUsers   *int64 `json:"total_users,omitempty"`
}

// StatsService is the aggregation reporter over the ticket store.
type StatsService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
}

// NewStatsService constructs the service.
func NewStatsService(tickets repository.TicketRepository, users repository.UserRepository) *StatsService {
	return &StatsService{tickets: tickets, users: users}
}

// Stats computes dashboard counters from the live store. Admins see all
// tickets plus the citizen account count; users see only their own.
func (s *StatsService) Stats(ctx context.Context, actor *domain.Principal) (*DashboardStats, error) {
	var ownerScope *string
	admin := auth.Can(actor, auth.CapReadAll)
	if !admin {
		if err := auth.Authorize(actor, auth.CapReadOwn); err != nil {
			return nil, err
		}
		ownerID := actor.UserID
		ownerScope = &ownerID
	}

	counts, err := s.tickets.CountByStatus(ctx, ownerScope)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &DashboardStats{
		Pending:    counts[domain.TicketStatusPending],
		InProgress: counts[domain.TicketStatusInProgress],
		Resolved:   counts[domain.TicketStatusResolved],
		Rejected:   counts[domain.TicketStatusRejected],
	}
	stats.TotalTickets = stats.Pending + stats.InProgress + stats.Resolved + stats.Rejected

	if admin {
		userCount, err := s.users.CountByRole(ctx, domain.RoleUser)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		stats.TotalUsers = &userCount
	}
	return stats, nil
}
