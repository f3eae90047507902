package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/road-damage-service/internal/domain"
)

// MemoryStore is an in-memory implementation of the repository interfaces.
// It backs the service tests and mirrors the Postgres semantics: missing
// rows surface as pgx.ErrNoRows and UpdateStatus is all-or-nothing under a
// single lock.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	tickets map[string]*domain.Ticket
	history []domain.TicketHistory
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]*domain.User),
		tickets: make(map[string]*domain.Ticket),
	}
}

// Users returns the UserRepository view of the store.
func (s *MemoryStore) Users() UserRepository { return (*memoryUserRepo)(s) }

// Tickets returns the TicketRepository view of the store.
func (s *MemoryStore) Tickets() TicketRepository { return (*memoryTicketRepo)(s) }

// History returns the TicketHistoryRepository view of the store.
func (s *MemoryStore) History() TicketHistoryRepository { return (*memoryHistoryRepo)(s) }

type memoryUserRepo MemoryStore

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if user, ok := r.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, user := range r.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

type memoryTicketRepo MemoryStore

func (r *memoryTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memoryTicketRepo) GetByID(_ context.Context, id string, includeOwner bool) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	if includeOwner {
		r.attachOwner(&clone)
	}
	return &clone, nil
}

func (r *memoryTicketRepo) ListWithFilter(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		if filter.OwnerID != nil && ticket.OwnerID != *filter.OwnerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, ticket.Priority) {
			continue
		}
		clone := *ticket
		if filter.IncludeOwner {
			r.attachOwner(&clone)
		}
		matched = append(matched, clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *memoryTicketRepo) UpdateStatus(_ context.Context, update StatusUpdate) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[update.TicketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	oldStatus := ticket.Status
	ticket.Status = update.NewStatus
	if update.AdminNotes != nil {
		notes := *update.AdminNotes
		ticket.AdminNotes = &notes
	}
	ticket.UpdatedAt = time.Now()

	r.history = append(r.history, domain.TicketHistory{
		ID:        uuid.NewString(),
		TicketID:  update.TicketID,
		ActorID:   update.ActorID,
		OldStatus: oldStatus,
		NewStatus: update.NewStatus,
		Notes:     update.AdminNotes,
		CreatedAt: time.Now(),
	})

	clone := *ticket
	return &clone, nil
}

func (r *memoryTicketRepo) CountByStatus(_ context.Context, ownerID *string) (map[domain.TicketStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domain.TicketStatus]int64, 4)
	for _, ticket := range r.tickets {
		if ownerID != nil && ticket.OwnerID != *ownerID {
			continue
		}
		counts[ticket.Status]++
	}
	return counts, nil
}

func (r *memoryTicketRepo) attachOwner(ticket *domain.Ticket) {
	owner, ok := r.users[ticket.OwnerID]
	if !ok {
		return
	}
	ticket.OwnerUsername = &owner.Username
	ticket.OwnerFullName = &owner.FullName
	ticket.OwnerEmail = &owner.Email
	ticket.OwnerPhone = owner.Phone
}

type memoryHistoryRepo MemoryStore

func (r *memoryHistoryRepo) ListByTicket(_ context.Context, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	var matched []domain.TicketHistory
	for _, entry := range r.history {
		if entry.TicketID == ticketID {
			matched = append(matched, entry)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func containsStatus(haystack []domain.TicketStatus, needle domain.TicketStatus) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsPriority(haystack []domain.TicketPriority, needle domain.TicketPriority) bool {
	for _, p := range haystack {
		if p == needle {
			return true
		}
	}
	return false
}
