package session

import (
	"context"
	"errors"
	"sync"

	"github.com/shopmena/helpdesk/internal/client/api"
	"github.com/shopmena/helpdesk/internal/client/store"
	"github.com/shopmena/helpdesk/internal/client/surfacer"
	"github.com/shopmena/helpdesk/internal/domain"
	"github.com/shopmena/helpdesk/internal/realtime"
)

// ErrNotMounted is returned by session operations before Mount or
// after Unmount.
var ErrNotMounted = errors.New("session not mounted")

// ErrSendInFlight rejects re-submission while a send is outstanding.
var ErrSendInFlight = errors.New("a send is already in flight")

// TicketListSession drives a ticket list view: fetch on mount, patch
// from the feed, surface effects, release on unmount.
type TicketListSession struct {
	client    *api.Client
	feed      realtime.Feed
	presenter Presenter
	role      domain.Role
	query     api.TicketQuery

	mu      sync.Mutex
	mounted bool
	store   *store.TicketList
	sub     realtime.Subscription
	effects *surfacer.Surfacer
}

// NewTicketListSession constructs an unmounted session.
func NewTicketListSession(client *api.Client, feed realtime.Feed, presenter Presenter, role domain.Role, lang domain.Language, query api.TicketQuery) *TicketListSession {
	return &TicketListSession{
		client:    client,
		feed:      feed,
		presenter: presenter,
		role:      role,
		query:     query,
		effects:   surfacer.New(role, lang),
	}
}

// Mount fetches the initial listing and opens the feed subscription.
// Events before subscription establishment are not replayed; the fetch
// is the source of initial state.
func (s *TicketListSession) Mount(ctx context.Context) error {
	tickets, err := s.client.ListTickets(ctx, s.role == domain.RoleAdmin, s.query)
	if err != nil {
		present(s.presenter, s.effects.OnMutationFailed(err))
		return err
	}

	listStore := store.NewTicketList()
	listStore.SetAll(toDomainTickets(tickets))

	sub, err := s.feed.Subscribe(ctx, realtime.Scope{Kind: realtime.ScopeAllTickets}, realtime.Handlers{
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

// Unmount releases the subscription synchronously. When it returns no
// further callback fires and the store is defunct.
func (s *TicketListSession) Unmount() {
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

// Snapshot returns the current listing, newest-first.
func (s *TicketListSession) Snapshot() []domain.Ticket {
	s.mu.Lock()
	listStore := s.store
	s.mu.Unlock()
	if listStore == nil {
		return nil
	}
	return listStore.Snapshot()
}

// Stats recomputes status buckets from the held collection.
func (s *TicketListSession) Stats() domain.TicketStats {
	s.mu.Lock()
	listStore := s.store
	s.mu.Unlock()
	if listStore == nil {
		return domain.TicketStats{}
	}
	return listStore.CountByStatus()
}

// Refresh refetches the listing and replaces held state. Intended for
// recovery after a transport gap, since missed events are not replayed.
func (s *TicketListSession) Refresh(ctx context.Context) error {
	listStore := s.liveStore()
	if listStore == nil {
		return ErrNotMounted
	}

	tickets, err := s.client.ListTickets(ctx, s.role == domain.RoleAdmin, s.query)
	if err != nil {
		present(s.presenter, s.effects.OnMutationFailed(err))
		return err
	}
	listStore.SetAll(toDomainTickets(tickets))
	return nil
}

// UpdateTicket issues a status/priority mutation as an admin and, on
// confirmed success, patches the held row directly ahead of the echo.
// On failure local state stays untouched and an error toast surfaces.
func (s *TicketListSession) UpdateTicket(ctx context.Context, ticketID string, status *domain.TicketStatus, priority *domain.TicketPriority) error {
	listStore := s.liveStore()
	if listStore == nil {
		return ErrNotMounted
	}

	var statusStr, priorityStr *string
	if status != nil {
		v := string(*status)
		statusStr = &v
	}
	if priority != nil {
		v := string(*priority)
		priorityStr = &v
	}

	updated, err := s.client.UpdateTicket(ctx, ticketID, statusStr, priorityStr)
	if err != nil {
		present(s.presenter, s.effects.OnMutationFailed(err))
		return err
	}

	row := toDomainTicket(*updated)
	listStore.Patch(ticketID, func(ticket *domain.Ticket) {
		*ticket = row
	})
	return nil
}

func (s *TicketListSession) onInsert(ev realtime.ChangeEvent) {
	listStore := s.liveStore()
	if listStore == nil || ev.Kind != realtime.KindTicket {
		return
	}
	newRow, _, err := ev.DecodeTicket()
	if err != nil || newRow == nil {
		return
	}
	// A duplicate delivery the store dropped surfaces nothing.
	if listStore.ApplyInsert(*newRow) {
		present(s.presenter, s.effects.OnTicketInserted(*newRow))
	}
}

func (s *TicketListSession) onUpdate(ev realtime.ChangeEvent) {
	listStore := s.liveStore()
	if listStore == nil || ev.Kind != realtime.KindTicket {
		return
	}
	newRow, oldRow, err := ev.DecodeTicket()
	if err != nil || newRow == nil {
		return
	}
	listStore.ApplyUpdate(*newRow)
	present(s.presenter, s.effects.OnTicketUpdated(oldRow, newRow))
}

func (s *TicketListSession) onDelete(ev realtime.ChangeEvent) {
	listStore := s.liveStore()
	if listStore == nil || ev.Kind != realtime.KindTicket {
		return
	}
	_, oldRow, err := ev.DecodeTicket()
	if err != nil || oldRow == nil {
		return
	}
	listStore.ApplyDelete(oldRow.ID)
}

// liveStore returns the store only while mounted; the liveness check
// keeps a late event from touching a defunct view.
func (s *TicketListSession) liveStore() *store.TicketList {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return nil
	}
	return s.store
}
