package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopmena/helpdesk/internal/client/api"
	"github.com/shopmena/helpdesk/internal/client/store"
	"github.com/shopmena/helpdesk/internal/client/surfacer"
	"github.com/shopmena/helpdesk/internal/domain"
	"github.com/shopmena/helpdesk/internal/realtime"
)

// TicketDetailSession drives one ticket conversation view. Outbound
// replies are confirmed by the API first, then inserted optimistically
// with a placeholder id; the feed echo later swaps in the server row
// via the correlation id.
type TicketDetailSession struct {
	client    *api.Client
	feed      realtime.Feed
	presenter Presenter
	role      domain.Role
	userName  string
	ticketID  string

	mu      sync.Mutex
	mounted bool
	ticket  domain.Ticket
	thread  *store.MessageThread
	sub     realtime.Subscription
	sending bool
	effects *surfacer.Surfacer
}

// NewTicketDetailSession constructs an unmounted session for ticketID.
func NewTicketDetailSession(client *api.Client, feed realtime.Feed, presenter Presenter, role domain.Role, lang domain.Language, userName, ticketID string) *TicketDetailSession {
	return &TicketDetailSession{
		client:    client,
		feed:      feed,
		presenter: presenter,
		role:      role,
		userName:  userName,
		ticketID:  ticketID,
		effects:   surfacer.New(role, lang),
	}
}

// Mount fetches the conversation and opens the per-ticket feed.
func (s *TicketDetailSession) Mount(ctx context.Context) error {
	detail, err := s.client.GetTicket(ctx, s.role == domain.RoleAdmin, s.ticketID)
	if err != nil {
		present(s.presenter, s.effects.OnMutationFailed(err))
		return err
	}

	thread := store.NewMessageThread(s.role)
	thread.SetAll(toDomainMessages(detail.Messages))

	sub, err := s.feed.Subscribe(ctx, realtime.Scope{Kind: realtime.ScopeTicket, TicketID: s.ticketID}, realtime.Handlers{
		OnInsert: s.onMessageInsert,
	})
	if err != nil {
		present(s.presenter, s.effects.OnMutationFailed(err))
		return err
	}

	s.mu.Lock()
	s.ticket = toDomainTicket(detail.Ticket)
	s.thread = thread
	s.sub = sub
	s.mounted = true
	s.mu.Unlock()
	return nil
}

// Unmount releases the subscription synchronously.
func (s *TicketDetailSession) Unmount() {
	s.mu.Lock()
	sub := s.sub
	thread := s.thread
	s.sub = nil
	s.mounted = false
	s.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	if thread != nil {
		thread.Close()
	}
}

// Ticket returns the held ticket row.
func (s *TicketDetailSession) Ticket() domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticket
}

// Messages returns the visible conversation in append order.
func (s *TicketDetailSession) Messages() []domain.TicketMessage {
	s.mu.Lock()
	thread := s.thread
	s.mu.Unlock()
	if thread == nil {
		return nil
	}
	return thread.Snapshot()
}

// Unread returns the unread-badge counter.
func (s *TicketDetailSession) Unread() int {
	s.mu.Lock()
	thread := s.thread
	s.mu.Unlock()
	if thread == nil {
		return 0
	}
	return thread.Unread()
}

// MarkRead resets the unread badge on the explicit scrolled-to-bottom
// signal.
func (s *TicketDetailSession) MarkRead() {
	s.mu.Lock()
	thread := s.thread
	s.mu.Unlock()
	if thread != nil {
		thread.MarkRead()
	}
}

// SendReply posts a reply for the session's role. One send may be in
// flight at a time; re-submission while pending is rejected. On
// confirmed success the message is inserted locally with a placeholder
// id ahead of the feed echo.
func (s *TicketDetailSession) SendReply(ctx context.Context, body string, isInternal bool) error {
	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return ErrNotMounted
	}
	if s.sending {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	s.sending = true
	thread := s.thread
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()

	correlationID := uuid.NewString()
	var sent *api.Message
	var err error
	if s.role == domain.RoleAdmin {
		sent, err = s.client.ReplyToTicket(ctx, s.ticketID, body, isInternal, correlationID)
	} else {
		sent, err = s.client.AddUserMessage(ctx, s.ticketID, body, correlationID)
	}
	if err != nil {
		present(s.presenter, s.effects.OnMutationFailed(err))
		return err
	}

	// The view may have unmounted while the call was in flight; the
	// store's closed flag discards the result in that case.
	optimistic := domain.TicketMessage{
		ID:         domain.PendingMessageID(correlationID),
		TicketID:   s.ticketID,
		SenderType: senderTypeFor(s.role),
		SenderName: s.userName,
		Body:       body,
		IsInternal: isInternal,
		CreatedAt:  time.Now(),
	}
	optimistic.CorrelationID = &correlationID
	if sent != nil && sent.CorrelationID != "" {
		corr := sent.CorrelationID
		optimistic.CorrelationID = &corr
	}
	thread.AppendPending(optimistic)
	return nil
}

func (s *TicketDetailSession) onMessageInsert(ev realtime.ChangeEvent) {
	thread := s.liveThread()
	if thread == nil || ev.Kind != realtime.KindMessage {
		return
	}
	msg, err := ev.DecodeMessage()
	if err != nil || msg == nil {
		return
	}

	before := thread.Len()
	thread.ApplyInsert(*msg)
	// An echo that merely reconciled a pending entry or a duplicate
	// delivery surfaces nothing.
	if thread.Len() > before {
		present(s.presenter, s.effects.OnMessageInserted(*msg))
	}
}

func (s *TicketDetailSession) liveThread() *store.MessageThread {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return nil
	}
	return s.thread
}

func senderTypeFor(role domain.Role) domain.SenderType {
	if role == domain.RoleAdmin {
		return domain.SenderTypeAdmin
	}
	return domain.SenderTypeUser
}
