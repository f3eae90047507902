package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/road-damage-service/internal/events"
)

// AuditService writes a structured log line for every domain event. It is
// the only event consumer in this process; delivery to external systems is
// someone else's job.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketCreated, a.handleEvent)
	a.dispatcher.Subscribe(events.EventTicketStatusChanged, a.handleEvent)
}

func (a *AuditService) handleEvent(_ context.Context, event events.Event) error {
	a.logger.Info("domain event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload),
	)
	return nil
}
