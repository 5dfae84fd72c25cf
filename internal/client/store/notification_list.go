package store

import (
	"sync"

	"github.com/shopmena/helpdesk/internal/domain"
)

// NotificationList is the backing collection for the notification
// center, ordered newest-first.
type NotificationList struct {
	mu     sync.Mutex
	rows   []domain.Notification
	closed bool
}

// NewNotificationList constructs an empty store.
func NewNotificationList() *NotificationList {
	return &NotificationList{}
}

// SetAll replaces the collection with the fetch-on-mount result.
func (s *NotificationList) SetAll(rows []domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.rows = append([]domain.Notification(nil), rows...)
}

// ApplyInsert prepends the notification and reports whether it was
// applied; duplicate ids are dropped and must not re-surface.
func (s *NotificationList) ApplyInsert(n domain.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if s.indexOf(n.ID) >= 0 {
		return false
	}
	s.rows = append([]domain.Notification{n}, s.rows...)
	return true
}

// ApplyUpdate replaces the matching row (read-flag flips). Unknown rows
// and stale snapshots are dropped.
func (s *NotificationList) ApplyUpdate(updated domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	i := s.indexOf(updated.ID)
	if i < 0 {
		return
	}
	if updated.UpdatedAt.Before(s.rows[i].UpdatedAt) {
		return
	}
	s.rows[i] = updated
}

// ApplyDelete removes the matching row; no-op if absent.
func (s *NotificationList) ApplyDelete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
}

// MarkAllRead flips every held row to read. Used for the optimistic
// patch after a confirmed mark-all mutation.
func (s *NotificationList) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for i := range s.rows {
		s.rows[i].IsRead = true
	}
}

// Snapshot returns a copy of the current collection.
func (s *NotificationList) Snapshot() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Notification(nil), s.rows...)
}

// UnreadCount recomputes the unread badge from the collection.
func (s *NotificationList) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for i := range s.rows {
		if !s.rows[i].IsRead {
			count++
		}
	}
	return count
}

// Close marks the store defunct; mutations after Close are no-ops.
func (s *NotificationList) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *NotificationList) indexOf(id string) int {
	for i := range s.rows {
		if s.rows[i].ID == id {
			return i
		}
	}
	return -1
}
