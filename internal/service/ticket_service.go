package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopmena/helpdesk/internal/domain"
	"github.com/shopmena/helpdesk/internal/events"
	"github.com/shopmena/helpdesk/internal/repository"
)

// ErrTicketClosed signals a customer reply against a closed ticket.
var ErrTicketClosed = errors.New("ticket is closed")

// ErrAccessDenied signals a caller acting on a ticket they do not own.
var ErrAccessDenied = errors.New("access denied")

// ErrInvalidTransition signals a disallowed status change.
var ErrInvalidTransition = errors.New("invalid status transition")

// TicketService coordinates ticket workflows. Every mutation publishes
// a domain event carrying full row snapshots for the change feed.
type TicketService struct {
	tickets    repository.TicketRepository
	messages   repository.TicketMessageRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.TicketMessageRepository
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject  string
	Category string
	Priority domain.TicketPriority
	Body     string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Category    *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketUpdateInput carries the mutable admin-facing fields.
type TicketUpdateInput struct {
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket creates a ticket plus its opening message for a customer.
func (s *TicketService) CreateTicket(ctx context.Context, user *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		TicketNumber:   generateTicketNumber(),
		RequesterID:    user.ID,
		RequesterName:  user.Name,
		RequesterEmail: user.Email,
		Subject:        strings.TrimSpace(input.Subject),
		Category:       strings.TrimSpace(input.Category),
		Status:         domain.TicketStatusOpen,
		Priority:       input.Priority,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityNormal
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	if body := strings.TrimSpace(input.Body); body != "" {
		senderID := user.ID
		msg := &domain.TicketMessage{
			TicketID:   ticket.ID,
			SenderType: domain.SenderTypeUser,
			SenderID:   &senderID,
			SenderName: user.Name,
			Body:       body,
		}
		if err := s.messages.Create(ctx, msg); err != nil {
			return nil, err
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    userActor(user.ID),
		Payload:  events.TicketCreatedPayload{Ticket: *ticket},
	})
	return ticket, nil
}

// ListTicketsForUser returns paginated tickets owned by the requester.
func (s *TicketService) ListTicketsForUser(ctx context.Context, userID string, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := s.repoFilter(filter)
	repoFilter.RequesterID = &userID
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// ListTicketsForAdmin returns tickets across all requesters.
func (s *TicketService) ListTicketsForAdmin(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	return s.tickets.ListWithFilter(ctx, s.repoFilter(filter))
}

// GetTicketForUser fetches a ticket ensuring ownership. Internal notes
// are excluded before the conversation leaves the service.
func (s *TicketService) GetTicketForUser(ctx context.Context, userID, ticketID string) (*domain.Ticket, []domain.TicketMessage, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.RequesterID != userID {
		return nil, nil, ErrAccessDenied
	}
	msgs, err := s.messages.ListByTicket(ctx, ticket.ID, false)
	if err != nil {
		return nil, nil, err
	}
	return ticket, msgs, nil
}

// GetTicketForAdmin fetches a ticket with the full conversation.
func (s *TicketService) GetTicketForAdmin(ctx context.Context, ticketID string) (*domain.Ticket, []domain.TicketMessage, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.messages.ListByTicket(ctx, ticket.ID, true)
	if err != nil {
		return nil, nil, err
	}
	return ticket, msgs, nil
}

// AddUserMessage appends a customer reply. Replying to a ticket that is
// waiting on the customer implicitly reopens it; a closed ticket
// accepts no customer messages at all. The caller's correlation id,
// when present, is stored and echoed on the change feed so the sending
// client can reconcile its optimistic insert.
func (s *TicketService) AddUserMessage(ctx context.Context, user *domain.User, ticketID, body, correlationID string) (*domain.TicketMessage, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.RequesterID != user.ID {
		return nil, ErrAccessDenied
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, ErrTicketClosed
	}

	senderID := user.ID
	msg := &domain.TicketMessage{
		TicketID:   ticket.ID,
		SenderType: domain.SenderTypeUser,
		SenderID:   &senderID,
		SenderName: user.Name,
		Body:       strings.TrimSpace(body),
	}
	if correlationID != "" {
		msg.CorrelationID = &correlationID
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		Actor:    userActor(user.ID),
		Payload:  events.TicketMessageAddedPayload{Message: *msg},
	})

	if ticket.Status == domain.TicketStatusWaitingUser {
		old := *ticket
		ticket.Status = domain.TicketStatusOpen
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, err
		}
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketUpdated,
			TicketID: ticket.ID,
			Actor:    userActor(user.ID),
			Payload:  events.TicketUpdatedPayload{Old: old, New: *ticket},
		})
	}
	return msg, nil
}

// ReplyAsAdmin appends an admin reply or internal note. The caller's
// correlation id, when present, is stored and echoed on the change feed
// so the sending client can reconcile its optimistic insert.
func (s *TicketService) ReplyAsAdmin(ctx context.Context, admin *domain.User, ticketID, body string, isInternal bool, correlationID string) (*domain.TicketMessage, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	senderID := admin.ID
	msg := &domain.TicketMessage{
		TicketID:   ticket.ID,
		SenderType: domain.SenderTypeAdmin,
		SenderID:   &senderID,
		SenderName: admin.Name,
		Body:       strings.TrimSpace(body),
		IsInternal: isInternal,
	}
	if correlationID != "" {
		msg.CorrelationID = &correlationID
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		Actor:    adminActor(admin.ID),
		Payload:  events.TicketMessageAddedPayload{Message: *msg},
	})
	return msg, nil
}

// UpdateTicket changes status and/or priority by an admin.
func (s *TicketService) UpdateTicket(ctx context.Context, admin *domain.User, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	old := *ticket
	changed := false

	if input.Status != nil && *input.Status != ticket.Status {
		if !domain.ValidStatus(*input.Status) || !isValidTransition(ticket.Status, *input.Status) {
			return nil, ErrInvalidTransition
		}
		ticket.Status = *input.Status
		if ticket.Status == domain.TicketStatusClosed {
			now := time.Now()
			ticket.ClosedAt = &now
		} else if ticket.ClosedAt != nil {
			ticket.ClosedAt = nil
		}
		changed = true
	}
	if input.Priority != nil && *input.Priority != ticket.Priority {
		if !domain.ValidPriority(*input.Priority) {
			return nil, errors.New("invalid priority")
		}
		ticket.Priority = *input.Priority
		changed = true
	}
	if !changed {
		return ticket, nil
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Actor:    adminActor(admin.ID),
		Payload:  events.TicketUpdatedPayload{Old: old, New: *ticket},
	})
	return ticket, nil
}

// StatsForUser aggregates ticket counts scoped to a requester.
func (s *TicketService) StatsForUser(ctx context.Context, userID string) (*domain.TicketStats, error) {
	return s.tickets.CountByStatus(ctx, &userID)
}

// StatsForAdmin aggregates ticket counts across all requesters.
func (s *TicketService) StatsForAdmin(ctx context.Context) (*domain.TicketStats, error) {
	return s.tickets.CountByStatus(ctx, nil)
}

func (s *TicketService) repoFilter(filter TicketListFilter) repository.TicketFilter {
	return repository.TicketFilter{
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		Category:    filter.Category,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
}

func generateTicketNumber() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func userActor(userID string) events.Actor {
	return events.Actor{Role: domain.RoleUser, UserID: &userID}
}

func adminActor(userID string) events.Actor {
	return events.Actor{Role: domain.RoleAdmin, UserID: &userID}
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:        {domain.TicketStatusInProgress, domain.TicketStatusWaitingUser, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusInProgress:  {domain.TicketStatusOpen, domain.TicketStatusWaitingUser, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusWaitingUser: {domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusResolved:    {domain.TicketStatusInProgress, domain.TicketStatusClosed},
	domain.TicketStatusClosed:      {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
