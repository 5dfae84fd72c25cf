package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmena/helpdesk/internal/domain"
)

func ticketRow(id string, status domain.TicketStatus, updatedAt time.Time) domain.Ticket {
	return domain.Ticket{
		ID:        id,
		Subject:   "subject " + id,
		Status:    status,
		Priority:  domain.TicketPriorityNormal,
		UpdatedAt: updatedAt,
	}
}

func TestTicketListInsertIsNewestFirst(t *testing.T) {
	s := NewTicketList()
	now := time.Now()

	s.ApplyInsert(ticketRow("T1", domain.TicketStatusOpen, now))
	s.ApplyInsert(ticketRow("T2", domain.TicketStatusOpen, now))

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "T2", snapshot[0].ID)
	assert.Equal(t, "T1", snapshot[1].ID)
}

func TestTicketListInsertDropsDuplicateID(t *testing.T) {
	s := NewTicketList()
	now := time.Now()

	assert.True(t, s.ApplyInsert(ticketRow("T1", domain.TicketStatusOpen, now)))
	assert.False(t, s.ApplyInsert(ticketRow("T1", domain.TicketStatusOpen, now)))

	assert.Equal(t, 1, s.Len())
}

func TestTicketListUpdateIsIdempotent(t *testing.T) {
	s := NewTicketList()
	now := time.Now()
	s.ApplyInsert(ticketRow("T1", domain.TicketStatusOpen, now))

	updated := ticketRow("T1", domain.TicketStatusInProgress, now.Add(time.Second))
	s.ApplyUpdate(updated)
	once := s.Snapshot()

	s.ApplyUpdate(updated)
	twice := s.Snapshot()

	assert.Equal(t, once, twice)
	assert.Equal(t, domain.TicketStatusInProgress, twice[0].Status)
}

func TestTicketListDanglingUpdateIsNoOp(t *testing.T) {
	s := NewTicketList()
	s.ApplyInsert(ticketRow("T1", domain.TicketStatusOpen, time.Now()))

	s.ApplyUpdate(ticketRow("ghost", domain.TicketStatusClosed, time.Now()))

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "T1", s.Snapshot()[0].ID)
}

func TestTicketListStaleUpdateIsIgnored(t *testing.T) {
	s := NewTicketList()
	now := time.Now()
	s.ApplyInsert(ticketRow("T1", domain.TicketStatusInProgress, now))

	// A snapshot older than the held row must not roll it backwards.
	s.ApplyUpdate(ticketRow("T1", domain.TicketStatusOpen, now.Add(-time.Minute)))

	assert.Equal(t, domain.TicketStatusInProgress, s.Snapshot()[0].Status)
}

func TestTicketListDelete(t *testing.T) {
	s := NewTicketList()
	now := time.Now()
	s.ApplyInsert(ticketRow("T1", domain.TicketStatusOpen, now))
	s.ApplyInsert(ticketRow("T2", domain.TicketStatusOpen, now))

	s.ApplyDelete("T1")
	s.ApplyDelete("ghost")

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "T2", snapshot[0].ID)
}

func TestTicketListClosedStoreIgnoresEvents(t *testing.T) {
	s := NewTicketList()
	s.ApplyInsert(ticketRow("T1", domain.TicketStatusOpen, time.Now()))
	s.Close()

	s.ApplyInsert(ticketRow("T2", domain.TicketStatusOpen, time.Now()))
	s.ApplyUpdate(ticketRow("T1", domain.TicketStatusClosed, time.Now().Add(time.Hour)))
	s.ApplyDelete("T1")

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, domain.TicketStatusOpen, snapshot[0].Status)
}

func TestTicketListPatch(t *testing.T) {
	s := NewTicketList()
	s.ApplyInsert(ticketRow("T1", domain.TicketStatusOpen, time.Now()))

	ok := s.Patch("T1", func(ticket *domain.Ticket) {
		ticket.Priority = domain.TicketPriorityUrgent
	})
	assert.True(t, ok)
	assert.Equal(t, domain.TicketPriorityUrgent, s.Snapshot()[0].Priority)

	assert.False(t, s.Patch("ghost", func(*domain.Ticket) {}))
}

func TestTicketListCountByStatus(t *testing.T) {
	s := NewTicketList()
	now := time.Now()
	s.ApplyInsert(ticketRow("T1", domain.TicketStatusOpen, now))
	s.ApplyInsert(ticketRow("T2", domain.TicketStatusOpen, now))
	s.ApplyInsert(ticketRow("T3", domain.TicketStatusResolved, now))

	stats := s.CountByStatus()
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Open)
	assert.Equal(t, int64(1), stats.Resolved)
}

func TestStatusChanged(t *testing.T) {
	open := ticketRow("T1", domain.TicketStatusOpen, time.Now())
	waiting := ticketRow("T1", domain.TicketStatusWaitingUser, time.Now())
	alsoOpen := ticketRow("T1", domain.TicketStatusOpen, time.Now())

	assert.True(t, StatusChanged(&open, &waiting))
	assert.False(t, StatusChanged(&open, &alsoOpen))
	assert.False(t, StatusChanged(nil, &waiting))
	assert.False(t, StatusChanged(&open, nil))
}
