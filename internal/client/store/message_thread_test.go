package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmena/helpdesk/internal/domain"
)

func messageRow(id string, sender domain.SenderType, internal bool) domain.TicketMessage {
	return domain.TicketMessage{
		ID:         id,
		TicketID:   "T1",
		SenderType: sender,
		Body:       "body " + id,
		IsInternal: internal,
		CreatedAt:  time.Now(),
	}
}

func TestMessageThreadAppendsInDeliveryOrder(t *testing.T) {
	s := NewMessageThread(domain.RoleAdmin)

	s.ApplyInsert(messageRow("m1", domain.SenderTypeUser, false))
	s.ApplyInsert(messageRow("m2", domain.SenderTypeAdmin, false))

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "m1", snapshot[0].ID)
	assert.Equal(t, "m2", snapshot[1].ID)
}

func TestMessageThreadOwnerNeverHoldsInternalNotes(t *testing.T) {
	s := NewMessageThread(domain.RoleUser)

	s.SetAll([]domain.TicketMessage{
		messageRow("m1", domain.SenderTypeUser, false),
		messageRow("m2", domain.SenderTypeAdmin, true),
	})
	s.ApplyInsert(messageRow("m3", domain.SenderTypeAdmin, true))
	s.ApplyInsert(messageRow("m4", domain.SenderTypeAdmin, false))

	for _, msg := range s.Snapshot() {
		assert.False(t, msg.IsInternal)
	}
	assert.Equal(t, 2, s.Len())
}

func TestMessageThreadAdminSeesInternalNotes(t *testing.T) {
	s := NewMessageThread(domain.RoleAdmin)

	s.ApplyInsert(messageRow("m1", domain.SenderTypeAdmin, true))
	assert.Equal(t, 1, s.Len())
}

func TestMessageThreadEchoReconcilesPendingByCorrelationID(t *testing.T) {
	s := NewMessageThread(domain.RoleAdmin)
	corr := "corr-42"

	pending := messageRow(domain.PendingMessageID(corr), domain.SenderTypeAdmin, false)
	pending.CorrelationID = &corr
	s.AppendPending(pending)
	require.Equal(t, 1, s.Len())

	echo := messageRow("server-id-9", domain.SenderTypeAdmin, false)
	echo.CorrelationID = &corr
	s.ApplyInsert(echo)

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "server-id-9", snapshot[0].ID)

	// Duplicate echo delivery stays a single entry.
	s.ApplyInsert(echo)
	assert.Equal(t, 1, s.Len())
}

func TestMessageThreadUnreadCounter(t *testing.T) {
	s := NewMessageThread(domain.RoleUser)

	s.ApplyInsert(messageRow("m1", domain.SenderTypeAdmin, false))
	s.ApplyInsert(messageRow("m2", domain.SenderTypeAdmin, false))
	// The viewer's own message never bumps the badge.
	s.ApplyInsert(messageRow("m3", domain.SenderTypeUser, false))
	assert.Equal(t, 2, s.Unread())

	// Only the explicit scrolled-to-bottom signal resets it.
	s.MarkRead()
	assert.Equal(t, 0, s.Unread())

	s.ApplyInsert(messageRow("m4", domain.SenderTypeAdmin, false))
	assert.Equal(t, 1, s.Unread())
}

func TestMessageThreadSetAllResetsUnread(t *testing.T) {
	s := NewMessageThread(domain.RoleUser)

	s.ApplyInsert(messageRow("m1", domain.SenderTypeAdmin, false))
	s.ApplyInsert(messageRow("m2", domain.SenderTypeAdmin, false))
	require.Equal(t, 2, s.Unread())

	// A refetch hands back the full thread; the badge starts over from
	// the caught-up state.
	s.SetAll([]domain.TicketMessage{
		messageRow("m1", domain.SenderTypeAdmin, false),
		messageRow("m2", domain.SenderTypeAdmin, false),
	})
	assert.Equal(t, 0, s.Unread())
	assert.Equal(t, 2, s.Len())
}

func TestMessageThreadClosedStoreIgnoresEvents(t *testing.T) {
	s := NewMessageThread(domain.RoleAdmin)
	s.ApplyInsert(messageRow("m1", domain.SenderTypeUser, false))
	s.Close()

	s.ApplyInsert(messageRow("m2", domain.SenderTypeUser, false))
	assert.Equal(t, 1, s.Len())
}
