package store

import (
	"sync"

	"github.com/shopmena/helpdesk/internal/domain"
)

// MessageThread is the backing collection for one ticket conversation,
// ordered oldest-first (append order). A thread built for the ticket
// owner drops internal notes on every path; admin threads keep them.
type MessageThread struct {
	mu       sync.Mutex
	role     domain.Role
	messages []domain.TicketMessage
	unread   int
	closed   bool
}

// NewMessageThread constructs a thread store for the viewing role.
func NewMessageThread(role domain.Role) *MessageThread {
	return &MessageThread{role: role}
}

// SetAll replaces the thread with a full fetch result. The unread
// badge resets with the collection: a refetched thread starts from the
// caught-up state, same as a fresh mount.
func (s *MessageThread) SetAll(messages []domain.TicketMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.unread = 0
	s.messages = s.messages[:0]
	for _, msg := range messages {
		if s.visible(msg) {
			s.messages = append(s.messages, msg)
		}
	}
}

// AppendPending inserts an optimistic local message ahead of the feed
// echo. The caller builds it with a placeholder id derived from the
// correlation id attached to the outbound request.
func (s *MessageThread) AppendPending(msg domain.TicketMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.visible(msg) {
		return
	}
	s.messages = append(s.messages, msg)
}

// ApplyInsert appends a feed-delivered message. An echo carrying the
// correlation id of a pending local entry replaces that entry in place
// instead of appending a duplicate; a message already present by
// server id is left untouched.
func (s *MessageThread) ApplyInsert(msg domain.TicketMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.visible(msg) {
		return
	}
	if msg.CorrelationID != nil {
		if i := s.indexOfPending(*msg.CorrelationID); i >= 0 {
			s.messages[i] = msg
			return
		}
	}
	if s.indexOf(msg.ID) >= 0 {
		return
	}
	s.messages = append(s.messages, msg)
	if s.countsAsUnread(msg) {
		s.unread++
	}
}

// Snapshot returns a copy of the visible conversation.
func (s *MessageThread) Snapshot() []domain.TicketMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.TicketMessage(nil), s.messages...)
}

// Len returns the current entry count.
func (s *MessageThread) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Unread returns the unread-badge counter.
func (s *MessageThread) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// MarkRead resets the unread counter. Only an explicit viewer signal
// (scrolled to bottom) calls this; it never resets on its own.
func (s *MessageThread) MarkRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unread = 0
}

// Close marks the store defunct; mutations after Close are no-ops.
func (s *MessageThread) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *MessageThread) visible(msg domain.TicketMessage) bool {
	if msg.IsInternal && s.role != domain.RoleAdmin {
		return false
	}
	return true
}

// countsAsUnread reports whether an inbound message bumps the badge:
// the counterpart role's messages do, the viewer's own echoes do not.
func (s *MessageThread) countsAsUnread(msg domain.TicketMessage) bool {
	if s.role == domain.RoleAdmin {
		return msg.SenderType == domain.SenderTypeUser
	}
	return msg.SenderType == domain.SenderTypeAdmin && !msg.IsInternal
}

func (s *MessageThread) indexOf(id string) int {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MessageThread) indexOfPending(correlationID string) int {
	for i := range s.messages {
		msg := s.messages[i]
		if msg.CorrelationID != nil && *msg.CorrelationID == correlationID && domain.IsPendingMessageID(msg.ID) {
			return i
		}
	}
	return -1
}
