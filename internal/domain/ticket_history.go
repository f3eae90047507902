package domain

import "time"

// TicketHistory is an immutable audit trail entry recorded for every
// status change. Entries are appended in the same transaction as the
// status update itself.
type TicketHistory struct {
	ID        string
	TicketID  string
	ActorID   string
	OldStatus TicketStatus
	NewStatus TicketStatus
	Notes     *string
	CreatedAt time.Time
}
