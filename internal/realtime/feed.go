package realtime

import (
	"context"
	"fmt"
)

// ScopeKind selects which rows a subscription delivers.
type ScopeKind string

const (
	// ScopeAllTickets delivers every ticket row change visible to the
	// caller's role. Used by list views and stat screens.
	ScopeAllTickets ScopeKind = "all_tickets"
	// ScopeTicket delivers message rows for one ticket conversation.
	ScopeTicket ScopeKind = "ticket"
	// ScopeNotifications delivers one user's notification feed.
	ScopeNotifications ScopeKind = "notifications"
)

// Scope is the filter identifying which rows a subscription should
// deliver events for.
type Scope struct {
	Kind     ScopeKind `json:"kind"`
	TicketID string    `json:"ticket_id,omitempty"`
	UserID   string    `json:"user_id,omitempty"`
}

// Channel maps a scope to its underlying feed channel.
func (s Scope) Channel() string {
	switch s.Kind {
	case ScopeTicket:
		return TicketChannel(s.TicketID)
	case ScopeNotifications:
		return NotificationsChannel(s.UserID)
	default:
		return ChannelTickets
	}
}

// Validate checks the scope's selector fields.
func (s Scope) Validate() error {
	switch s.Kind {
	case ScopeAllTickets:
		return nil
	case ScopeTicket:
		if s.TicketID == "" {
			return fmt.Errorf("ticket scope requires ticket_id")
		}
		return nil
	case ScopeNotifications:
		if s.UserID == "" {
			return fmt.Errorf("notifications scope requires user_id")
		}
		return nil
	default:
		return fmt.Errorf("unknown scope kind %q", s.Kind)
	}
}

// Handlers receive change events for one subscription. Any handler may
// be nil; events of that op are then dropped.
type Handlers struct {
	OnInsert func(ChangeEvent)
	OnUpdate func(ChangeEvent)
	OnDelete func(ChangeEvent)
}

func (h Handlers) dispatch(ev ChangeEvent) {
	switch ev.Op {
	case OpInsert:
		if h.OnInsert != nil {
			h.OnInsert(ev)
		}
	case OpUpdate:
		if h.OnUpdate != nil {
			h.OnUpdate(ev)
		}
	case OpDelete:
		if h.OnDelete != nil {
			h.OnDelete(ev)
		}
	}
}

// Subscription is a live feed handle. Close releases it; once Close
// returns no further callback fires.
type Subscription interface {
	Close()
}

// Feed opens push subscriptions. Events strictly before subscription
// establishment are never replayed; initial state comes from a separate
// fetch-on-mount call.
type Feed interface {
	Subscribe(ctx context.Context, scope Scope, handlers Handlers) (Subscription, error)
}

// Publisher emits change events onto the feed.
type Publisher interface {
	Publish(ctx context.Context, ev ChangeEvent) error
}
