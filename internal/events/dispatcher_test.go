package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var created []Event
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		created = append(created, e)
		return nil
	})
	var changed []Event
	d.Subscribe(EventTicketStatusChanged, func(_ context.Context, e Event) error {
		changed = append(changed, e)
		return nil
	})

	event := Event{ID: "e1", Type: EventTicketCreated, TicketID: "t1", ActorID: "u1"}
	if err := d.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(created) != 1 || created[0].ID != "e1" {
		t.Errorf("created handler: want 1 delivery, got %d", len(created))
	}
	if len(changed) != 0 {
		t.Errorf("other event types must not be delivered, got %d", len(changed))
	}
}

func TestDispatcherHandlerErrorDoesNotStopDelivery(t *testing.T) {
	d := NewInMemoryDispatcher()

	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		return errors.New("boom")
	})
	delivered := false
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !delivered {
		t.Error("a failing handler must not block later handlers")
	}
}

func TestDispatcherNoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventTicketStatusChanged}); err != nil {
		t.Errorf("publishing without subscribers: %v", err)
	}
}
