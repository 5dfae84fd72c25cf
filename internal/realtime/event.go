package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/shopmena/helpdesk/internal/domain"
)

// Op is the change operation carried by a feed event.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// RecordKind identifies the row type inside a change event.
type RecordKind string

const (
	KindTicket       RecordKind = "ticket"
	KindMessage      RecordKind = "message"
	KindNotification RecordKind = "notification"
)

// ChannelTickets carries ticket row changes for list views.
const ChannelTickets = "tickets"

// TicketChannel carries message rows for a single ticket conversation.
func TicketChannel(ticketID string) string {
	return "ticket:" + ticketID
}

// NotificationsChannel carries one user's notification feed.
func NotificationsChannel(userID string) string {
	return "notifications:" + userID
}

// ChangeEvent is one feed delivery. New and Old are full-row snapshots,
// not diffs; Old is present only for updates and deletes.
type ChangeEvent struct {
	ID        string          `json:"id"`
	Channel   string          `json:"channel"`
	Kind      RecordKind      `json:"kind"`
	Op        Op              `json:"op"`
	New       json.RawMessage `json:"new,omitempty"`
	Old       json.RawMessage `json:"old,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func newEvent(channel string, kind RecordKind, op Op, newRow, oldRow any) ChangeEvent {
	ev := ChangeEvent{
		ID:        uuid.NewString(),
		Channel:   channel,
		Kind:      kind,
		Op:        op,
		Timestamp: time.Now().UTC(),
	}
	if newRow != nil {
		ev.New, _ = json.Marshal(newRow)
	}
	if oldRow != nil {
		ev.Old, _ = json.Marshal(oldRow)
	}
	return ev
}

// TicketInserted builds an insert event for the ticket list channel.
func TicketInserted(t domain.Ticket) ChangeEvent {
	return newEvent(ChannelTickets, KindTicket, OpInsert, t, nil)
}

// TicketUpdated builds an update event carrying old and new rows.
func TicketUpdated(old, updated domain.Ticket) ChangeEvent {
	return newEvent(ChannelTickets, KindTicket, OpUpdate, updated, old)
}

// MessageInserted builds an insert event on the ticket's own channel.
func MessageInserted(m domain.TicketMessage) ChangeEvent {
	return newEvent(TicketChannel(m.TicketID), KindMessage, OpInsert, m, nil)
}

// NotificationInserted builds an insert event on the owner's channel.
func NotificationInserted(n domain.Notification) ChangeEvent {
	return newEvent(NotificationsChannel(n.UserID), KindNotification, OpInsert, n, nil)
}

// NotificationUpdated builds an update event (read-flag flips).
func NotificationUpdated(old, updated domain.Notification) ChangeEvent {
	return newEvent(NotificationsChannel(updated.UserID), KindNotification, OpUpdate, updated, old)
}

// NotificationDeleted builds a delete event.
func NotificationDeleted(n domain.Notification) ChangeEvent {
	return newEvent(NotificationsChannel(n.UserID), KindNotification, OpDelete, nil, n)
}

// DecodeTicket unmarshals the new and old ticket snapshots.
func (ev ChangeEvent) DecodeTicket() (newRow, oldRow *domain.Ticket, err error) {
	if len(ev.New) > 0 {
		newRow = &domain.Ticket{}
		if err = json.Unmarshal(ev.New, newRow); err != nil {
			return nil, nil, err
		}
	}
	if len(ev.Old) > 0 {
		oldRow = &domain.Ticket{}
		if err = json.Unmarshal(ev.Old, oldRow); err != nil {
			return nil, nil, err
		}
	}
	return newRow, oldRow, nil
}

// DecodeMessage unmarshals the new message snapshot.
func (ev ChangeEvent) DecodeMessage() (*domain.TicketMessage, error) {
	if len(ev.New) == 0 {
		return nil, nil
	}
	msg := &domain.TicketMessage{}
	if err := json.Unmarshal(ev.New, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodeNotification unmarshals the new and old notification snapshots.
func (ev ChangeEvent) DecodeNotification() (newRow, oldRow *domain.Notification, err error) {
	if len(ev.New) > 0 {
		newRow = &domain.Notification{}
		if err = json.Unmarshal(ev.New, newRow); err != nil {
			return nil, nil, err
		}
	}
	if len(ev.Old) > 0 {
		oldRow = &domain.Notification{}
		if err = json.Unmarshal(ev.Old, oldRow); err != nil {
			return nil, nil, err
		}
	}
	return newRow, oldRow, nil
}
