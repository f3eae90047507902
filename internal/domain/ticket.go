package domain

import "time"

// TicketStatus enumerates lifecycle states for damage reports.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusRejected   TicketStatus = "rejected"
)

// Valid reports whether the status is a known value.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusPending, TicketStatusInProgress, TicketStatusResolved, TicketStatusRejected:
		return true
	}
	return false
}

// Statuses lists every lifecycle state, in dashboard ordering.
func Statuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusPending,
		TicketStatusInProgress,
		TicketStatusResolved,
		TicketStatusRejected,
	}
}

// TicketPriority is the severity tier derived from damage metrics.
// It is never accepted from callers.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// DamageMetrics is produced once by the upstream detection model and
// frozen on the ticket at creation time.
type DamageMetrics struct {
	Percentage      float64
	TotalDetections int
	DamagedAreaPx   int64
}

// Ticket is the aggregate for a citizen-reported road damage case.
// OwnerID and CreatedAt are immutable; Status and AdminNotes change only
// through the lifecycle service.
type Ticket struct {
	ID             string
	OwnerID        string
	Title          string
	Description    string
	Location       string
	Latitude       *float64
	Longitude      *float64
	Status         TicketStatus
	Priority       TicketPriority
	Damage         DamageMetrics
	ImagePath      *string
	AnnotatedImage *string
	AdminNotes     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Owner fields are populated on admin listings only.
	OwnerUsername *string
	OwnerFullName *string
	OwnerEmail    *string
	OwnerPhone    *string
}
