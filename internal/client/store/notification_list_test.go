package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmena/helpdesk/internal/domain"
)

func notificationRow(id string, read bool) domain.Notification {
	return domain.Notification{
		ID:        id,
		UserID:    "user-1",
		Type:      domain.NotificationTypeSystem,
		TitleEn:   "title " + id,
		IsRead:    read,
		UpdatedAt: time.Now(),
	}
}

func TestNotificationListInsertAndUnreadCount(t *testing.T) {
	s := NewNotificationList()

	assert.True(t, s.ApplyInsert(notificationRow("n1", false)))
	assert.True(t, s.ApplyInsert(notificationRow("n2", false)))
	assert.False(t, s.ApplyInsert(notificationRow("n2", false)))

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "n2", snapshot[0].ID)
	assert.Equal(t, 2, s.UnreadCount())
}

func TestNotificationListReadFlagUpdate(t *testing.T) {
	s := NewNotificationList()
	s.ApplyInsert(notificationRow("n1", false))

	updated := notificationRow("n1", true)
	updated.UpdatedAt = time.Now().Add(time.Second)
	s.ApplyUpdate(updated)

	assert.Equal(t, 0, s.UnreadCount())

	// Unknown rows are dropped.
	s.ApplyUpdate(notificationRow("ghost", true))
	assert.Len(t, s.Snapshot(), 1)
}

func TestNotificationListDeleteAndMarkAllRead(t *testing.T) {
	s := NewNotificationList()
	s.ApplyInsert(notificationRow("n1", false))
	s.ApplyInsert(notificationRow("n2", false))
	s.ApplyInsert(notificationRow("n3", false))

	s.ApplyDelete("n2")
	assert.Len(t, s.Snapshot(), 2)

	s.MarkAllRead()
	assert.Equal(t, 0, s.UnreadCount())
}

func TestNotificationListClosedStoreIgnoresEvents(t *testing.T) {
	s := NewNotificationList()
	s.ApplyInsert(notificationRow("n1", false))
	s.Close()

	s.ApplyInsert(notificationRow("n2", false))
	s.MarkAllRead()

	assert.Len(t, s.Snapshot(), 1)
	assert.Equal(t, 1, s.UnreadCount())
}
