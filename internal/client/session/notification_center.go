package session

import (
	"context"
	"sync"

	"github.com/shopmena/helpdesk/internal/client/api"
	"github.com/shopmena/helpdesk/internal/client/store"
	"github.com/shopmena/helpdesk/internal/client/surfacer"
	"github.com/shopmena/helpdesk/internal/domain"
	"github.com/shopmena/helpdesk/internal/realtime"
)

// NotificationCenter drives the per-user notification feed view.
type NotificationCenter struct {
	client    *api.Client
	feed      realtime.Feed
	presenter Presenter
	userID    string

	mu      sync.Mutex
	mounted bool
	store   *store.NotificationList
	sub     realtime.Subscription
	effects *surfacer.Surfacer
}

// NewNotificationCenter constructs an unmounted center for userID.
func NewNotificationCenter(client *api.Client, feed realtime.Feed, presenter Presenter, role domain.Role, lang domain.Language, userID string) *NotificationCenter {
	return &NotificationCenter{
		client:    client,
		feed:      feed,
		presenter: presenter,
		userID:    userID,
		effects:   surfacer.New(role, lang),
	}
}

// Mount fetches the feed and opens the per-user subscription.
func (s *NotificationCenter) Mount(ctx context.Context) error {
	rows, err := s.client.ListNotifications(ctx, false, 0, 0)
	if err != nil {
		present(s.presenter, s.effects.OnMutationFailed(err))
		return err
	}

	listStore := store.NewNotificationList()
	listStore.SetAll(toDomainNotifications(rows))

	sub, err := s.feed.Subscribe(ctx, realtime.Scope{Kind: realtime.ScopeNotifications, UserID: s.userID}, realtime.Handlers{
		OnInsert: s.onInsert,
		OnUpdate: s.onUpdate,
		OnDelete: s.onDelete,
	})
	if err != nil {
		present(s.presenter, s.effects.OnMutationFailed(err))
		return err
	}

	s.mu.Lock()
	s.store = listStore
	s.sub = sub
	s.mounted = true
	s.mu.Unlock()
	return nil
}

// Unmount releases the subscription synchronously.
func (s *NotificationCenter) Unmount() {
	s.mu.Lock()
	sub := s.sub
	listStore := s.store
	s.sub = nil
	s.mounted = false
	s.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	if listStore != nil {
		listStore.Close()
	}
}

// Refresh refetches the feed and replaces held state; missed events are
// not replayed, so this is the recovery path after a transport gap.
func (s *NotificationCenter) Refresh(ctx context.Context) error {
	listStore := s.liveStore()
	if listStore == nil {
		return ErrNotMounted
	}

	rows, err := s.client.ListNotifications(ctx, false, 0, 0)
	if err != nil {
		present(s.presenter, s.effects.OnMutationFailed(err))
		return err
	}
	listStore.SetAll(toDomainNotifications(rows))
	return nil
}

// Snapshot returns the feed, newest-first.
func (s *NotificationCenter) Snapshot() []domain.Notification {
	s.mu.Lock()
	listStore := s.store
	s.mu.Unlock()
	if listStore == nil {
		return nil
	}
	return listStore.Snapshot()
}

// UnreadCount recomputes the badge from the held collection.
func (s *NotificationCenter) UnreadCount() int {
	s.mu.Lock()
	listStore := s.store
	s.mu.Unlock()
	if listStore == nil {
		return 0
	}
	return listStore.UnreadCount()
}

// MarkRead flips one notification. On confirmed success the returned
// row patches the store ahead of the feed echo.
func (s *NotificationCenter) MarkRead(ctx context.Context, notificationID string) error {
	listStore := s.liveStore()
	if listStore == nil {
		return ErrNotMounted
	}
	updated, err := s.client.MarkNotificationRead(ctx, notificationID)
	if err != nil {
		present(s.presenter, s.effects.OnMutationFailed(err))
		return err
	}
	listStore.ApplyUpdate(toDomainNotification(*updated))
	return nil
}

// MarkAllRead flips every unread notification.
func (s *NotificationCenter) MarkAllRead(ctx context.Context) error {
	listStore := s.liveStore()
	if listStore == nil {
		return ErrNotMounted
	}
	if err := s.client.MarkAllNotificationsRead(ctx); err != nil {
		present(s.presenter, s.effects.OnMutationFailed(err))
		return err
	}
	listStore.MarkAllRead()
	return nil
}

// Delete removes one notification.
func (s *NotificationCenter) Delete(ctx context.Context, notificationID string) error {
	listStore := s.liveStore()
	if listStore == nil {
		return ErrNotMounted
	}
	if err := s.client.DeleteNotification(ctx, notificationID); err != nil {
		present(s.presenter, s.effects.OnMutationFailed(err))
		return err
	}
	listStore.ApplyDelete(notificationID)
	return nil
}

func (s *NotificationCenter) onInsert(ev realtime.ChangeEvent) {
	listStore := s.liveStore()
	if listStore == nil || ev.Kind != realtime.KindNotification {
		return
	}
	newRow, _, err := ev.DecodeNotification()
	if err != nil || newRow == nil {
		return
	}
	// A duplicate delivery the store dropped surfaces nothing.
	if listStore.ApplyInsert(*newRow) {
		present(s.presenter, s.effects.OnNotificationInserted(*newRow))
	}
}

func (s *NotificationCenter) onUpdate(ev realtime.ChangeEvent) {
	listStore := s.liveStore()
	if listStore == nil || ev.Kind != realtime.KindNotification {
		return
	}
	newRow, _, err := ev.DecodeNotification()
	if err != nil || newRow == nil {
		return
	}
	listStore.ApplyUpdate(*newRow)
}

func (s *NotificationCenter) onDelete(ev realtime.ChangeEvent) {
	listStore := s.liveStore()
	if listStore == nil || ev.Kind != realtime.KindNotification {
		return
	}
	_, oldRow, err := ev.DecodeNotification()
	if err != nil || oldRow == nil {
		return
	}
	listStore.ApplyDelete(oldRow.ID)
}

func (s *NotificationCenter) liveStore() *store.NotificationList {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return nil
	}
	return s.store
}
