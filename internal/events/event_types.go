package events

import (
	"time"

	"github.com/spec-kit/road-damage-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event represents a domain event emitted by services. Events stay inside
// the process; external delivery is out of scope.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title            string                `json:"title"`
	Location         string                `json:"location"`
	Priority         domain.TicketPriority `json:"priority"`
	DamagePercentage float64               `json:"damage_percentage"`
	TotalDetections  int                   `json:"total_detections"`
}

// TicketStatusChangedPayload payload. The prior status lives in the
// ticket history row written in the same transaction.
type TicketStatusChangedPayload struct {
	NewStatus domain.TicketStatus `json:"new_status"`
	Notes     *string             `json:"notes,omitempty"`
}
