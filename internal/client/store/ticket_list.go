// Package store holds per-view in-memory collections for mounted
// client views. Each view owns its own store instance; two views
// showing the same rows can transiently disagree until each receives
// its own feed echo.
package store

import (
	"sync"

	"github.com/shopmena/helpdesk/internal/domain"
)

// TicketList is the backing collection for a ticket list view,
// ordered newest-first. Feed events patch it in delivery order.
type TicketList struct {
	mu      sync.Mutex
	tickets []domain.Ticket
	closed  bool
}

// NewTicketList constructs an empty list store.
func NewTicketList() *TicketList {
	return &TicketList{}
}

// SetAll replaces the collection with the fetch-on-mount result.
func (s *TicketList) SetAll(tickets []domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.tickets = append([]domain.Ticket(nil), tickets...)
}

// ApplyInsert prepends the ticket and reports whether it was applied.
// A row already present by id is left untouched so a duplicate
// delivery cannot double-insert, and the caller must not re-surface it.
func (s *TicketList) ApplyInsert(ticket domain.Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if s.indexOf(ticket.ID) >= 0 {
		return false
	}
	s.tickets = append([]domain.Ticket{ticket}, s.tickets...)
	return true
}

// ApplyUpdate replaces the matching row with the new snapshot. Rows not
// in this view's window are dropped silently. A snapshot older than the
// held row (by updated_at) is ignored, so out-of-order delivery cannot
// roll a row backwards.
func (s *TicketList) ApplyUpdate(updated domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	i := s.indexOf(updated.ID)
	if i < 0 {
		return
	}
	if updated.UpdatedAt.Before(s.tickets[i].UpdatedAt) {
		return
	}
	s.tickets[i] = updated
}

// ApplyDelete removes the matching row; no-op if absent.
func (s *TicketList) ApplyDelete(ticketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	i := s.indexOf(ticketID)
	if i < 0 {
		return
	}
	s.tickets = append(s.tickets[:i], s.tickets[i+1:]...)
}

// Patch applies fn to the matching row in place. Used for optimistic
// field patches after a confirmed mutation, outside the event path.
func (s *TicketList) Patch(ticketID string, fn func(*domain.Ticket)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	i := s.indexOf(ticketID)
	if i < 0 {
		return false
	}
	fn(&s.tickets[i])
	return true
}

// Snapshot returns a copy of the current collection.
func (s *TicketList) Snapshot() []domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Ticket(nil), s.tickets...)
}

// Len returns the current entry count.
func (s *TicketList) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

// CountByStatus recomputes per-status buckets from the collection.
func (s *TicketList) CountByStatus() domain.TicketStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := domain.TicketStats{}
	for _, t := range s.tickets {
		stats.Total++
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusWaitingUser:
			stats.WaitingUser++
		case domain.TicketStatusResolved:
			stats.Resolved++
		case domain.TicketStatusClosed:
			stats.Closed++
		}
	}
	return stats
}

// Close marks the store defunct. Every mutation after Close is a no-op,
// guarding against events that race a view unmount.
func (s *TicketList) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *TicketList) indexOf(id string) int {
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			return i
		}
	}
	return -1
}

// StatusChanged reports whether a ticket update event crossed a status
// boundary. Callers use it to trigger stat refreshes or toasts.
func StatusChanged(old, updated *domain.Ticket) bool {
	if old == nil || updated == nil {
		return false
	}
	return old.Status != updated.Status
}
