package realtime

import (
	"context"

	"go.uber.org/zap"

	"github.com/shopmena/helpdesk/internal/events"
)

// RegisterEventBridge wires domain events onto the change feed. Every
// service mutation already publishes a domain event; the bridge turns
// those into full-row feed deliveries so clients patch local state
// instead of refetching.
func RegisterEventBridge(dispatcher events.Dispatcher, publisher Publisher, logger *zap.Logger) {
	publish := func(ctx context.Context, ev ChangeEvent) {
		if err := publisher.Publish(ctx, ev); err != nil {
			logger.Warn("feed publish failed", zap.String("channel", ev.Channel), zap.Error(err))
		}
	}

	dispatcher.Subscribe(events.EventTicketCreated, func(ctx context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.TicketCreatedPayload); ok {
			publish(ctx, TicketInserted(payload.Ticket))
		}
		return nil
	})
	dispatcher.Subscribe(events.EventTicketUpdated, func(ctx context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.TicketUpdatedPayload); ok {
			publish(ctx, TicketUpdated(payload.Old, payload.New))
		}
		return nil
	})
	dispatcher.Subscribe(events.EventTicketMessageAdded, func(ctx context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.TicketMessageAddedPayload); ok {
			publish(ctx, MessageInserted(payload.Message))
		}
		return nil
	})
	dispatcher.Subscribe(events.EventNotificationCreated, func(ctx context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.NotificationCreatedPayload); ok {
			publish(ctx, NotificationInserted(payload.Notification))
		}
		return nil
	})
	dispatcher.Subscribe(events.EventNotificationUpdated, func(ctx context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.NotificationUpdatedPayload); ok {
			publish(ctx, NotificationUpdated(payload.Old, payload.New))
		}
		return nil
	})
	dispatcher.Subscribe(events.EventNotificationDeleted, func(ctx context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.NotificationDeletedPayload); ok {
			publish(ctx, NotificationDeleted(payload.Notification))
		}
		return nil
	})
}
