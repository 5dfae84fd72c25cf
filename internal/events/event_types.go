package events

import (
	"time"

	"github.com/shopmena/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketMessageAdded  EventType = "ticket_message_added"
	EventNotificationCreated EventType = "notification_created"
	EventNotificationUpdated EventType = "notification_updated"
	EventNotificationDeleted EventType = "notification_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role   domain.Role `json:"role"`
	UserID *string     `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services. Payloads carry
// full row snapshots so the change feed can deliver old and new records
// without refetching.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Ticket domain.Ticket `json:"ticket"`
}

// TicketUpdatedPayload carries both the previous and the new row so
// subscribers can run status-change detection without local history.
type TicketUpdatedPayload struct {
	Old domain.Ticket `json:"old"`
	New domain.Ticket `json:"new"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	Message domain.TicketMessage `json:"message"`
}

// NotificationCreatedPayload payload.
type NotificationCreatedPayload struct {
	Notification domain.Notification `json:"notification"`
}

// NotificationUpdatedPayload payload.
type NotificationUpdatedPayload struct {
	Old domain.Notification `json:"old"`
	New domain.Notification `json:"new"`
}

// NotificationDeletedPayload payload.
type NotificationDeletedPayload struct {
	Notification domain.Notification `json:"notification"`
}
