package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmena/helpdesk/internal/domain"
	"github.com/shopmena/helpdesk/internal/events"
)

func newTicketFixture() (*TicketService, *fakeTicketRepo, *fakeMessageRepo, *recordingDispatcher) {
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		MessageRepo: messages,
		Dispatcher:  dispatcher,
	})
	return svc, tickets, messages, dispatcher
}

func customer() *domain.User {
	return &domain.User{
		ID:       "user-42",
		Name:     "Layla Hassan",
		Email:    "layla@example.com",
		Role:     domain.RoleUser,
		Language: domain.LanguageArabic,
		Status:   domain.UserStatusActive,
	}
}

func adminUser() *domain.User {
	return &domain.User{
		ID:     "admin-1",
		Name:   "Omar Said",
		Email:  "omar@example.com",
		Role:   domain.RoleAdmin,
		Status: domain.UserStatusActive,
	}
}

func TestCreateTicketPublishesCreatedEvent(t *testing.T) {
	svc, _, messages, dispatcher := newTicketFixture()

	ticket, err := svc.CreateTicket(context.Background(), customer(), TicketCreateInput{
		Subject:  "Order never arrived",
		Category: "shipping",
		Body:     "It has been two weeks.",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityNormal, ticket.Priority)
	assert.NotEmpty(t, ticket.TicketNumber)
	assert.Equal(t, "layla@example.com", ticket.RequesterEmail)

	msgs, err := messages.ListByTicket(context.Background(), ticket.ID, true)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.SenderTypeUser, msgs[0].SenderType)

	created := dispatcher.eventsOfType(events.EventTicketCreated)
	require.Len(t, created, 1)
	payload := created[0].Payload.(events.TicketCreatedPayload)
	assert.Equal(t, ticket.ID, payload.Ticket.ID)
}

func TestGetTicketForUserRejectsForeignTicket(t *testing.T) {
	svc, _, _, _ := newTicketFixture()

	ticket, err := svc.CreateTicket(context.Background(), customer(), TicketCreateInput{Subject: "Refund"})
	require.NoError(t, err)

	_, _, err = svc.GetTicketForUser(context.Background(), "someone-else", ticket.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetTicketForUserHidesInternalNotes(t *testing.T) {
	svc, _, _, _ := newTicketFixture()
	owner := customer()

	ticket, err := svc.CreateTicket(context.Background(), owner, TicketCreateInput{Subject: "Refund", Body: "please"})
	require.NoError(t, err)

	_, err = svc.ReplyAsAdmin(context.Background(), adminUser(), ticket.ID, "checking with warehouse", true, "")
	require.NoError(t, err)
	_, err = svc.ReplyAsAdmin(context.Background(), adminUser(), ticket.ID, "refund issued", false, "")
	require.NoError(t, err)

	_, userMsgs, err := svc.GetTicketForUser(context.Background(), owner.ID, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, userMsgs, 2)
	for _, msg := range userMsgs {
		assert.False(t, msg.IsInternal)
	}

	_, adminMsgs, err := svc.GetTicketForAdmin(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, adminMsgs, 3)
}

func TestAddUserMessageReopensWaitingTicket(t *testing.T) {
	svc, tickets, _, dispatcher := newTicketFixture()
	owner := customer()

	ticket, err := svc.CreateTicket(context.Background(), owner, TicketCreateInput{Subject: "Refund"})
	require.NoError(t, err)

	waiting := domain.TicketStatusWaitingUser
	_, err = svc.UpdateTicket(context.Background(), adminUser(), ticket.ID, TicketUpdateInput{Status: &waiting})
	require.NoError(t, err)

	_, err = svc.AddUserMessage(context.Background(), owner, ticket.ID, "here is the receipt", "")
	require.NoError(t, err)

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)

	updates := dispatcher.eventsOfType(events.EventTicketUpdated)
	require.Len(t, updates, 2)
	last := updates[1].Payload.(events.TicketUpdatedPayload)
	assert.Equal(t, domain.TicketStatusWaitingUser, last.Old.Status)
	assert.Equal(t, domain.TicketStatusOpen, last.New.Status)
}

func TestAddUserMessageRejectsClosedTicket(t *testing.T) {
	svc, _, _, _ := newTicketFixture()
	owner := customer()

	ticket, err := svc.CreateTicket(context.Background(), owner, TicketCreateInput{Subject: "Refund"})
	require.NoError(t, err)

	closed := domain.TicketStatusClosed
	_, err = svc.UpdateTicket(context.Background(), adminUser(), ticket.ID, TicketUpdateInput{Status: &closed})
	require.NoError(t, err)

	_, err = svc.AddUserMessage(context.Background(), owner, ticket.ID, "wait, one more thing", "")
	assert.ErrorIs(t, err, ErrTicketClosed)

	// Admins may still annotate closed tickets.
	_, err = svc.ReplyAsAdmin(context.Background(), adminUser(), ticket.ID, "archived", true, "")
	assert.NoError(t, err)
}

func TestReplyAsAdminEchoesCorrelationID(t *testing.T) {
	svc, _, _, dispatcher := newTicketFixture()

	ticket, err := svc.CreateTicket(context.Background(), customer(), TicketCreateInput{Subject: "Refund"})
	require.NoError(t, err)

	msg, err := svc.ReplyAsAdmin(context.Background(), adminUser(), ticket.ID, "on it", false, "client-corr-7")
	require.NoError(t, err)
	require.NotNil(t, msg.CorrelationID)
	assert.Equal(t, "client-corr-7", *msg.CorrelationID)

	added := dispatcher.eventsOfType(events.EventTicketMessageAdded)
	require.NotEmpty(t, added)
	payload := added[len(added)-1].Payload.(events.TicketMessageAddedPayload)
	require.NotNil(t, payload.Message.CorrelationID)
	assert.Equal(t, "client-corr-7", *payload.Message.CorrelationID)
}

func TestAddUserMessageEchoesCorrelationID(t *testing.T) {
	svc, _, _, dispatcher := newTicketFixture()
	owner := customer()

	ticket, err := svc.CreateTicket(context.Background(), owner, TicketCreateInput{Subject: "Refund"})
	require.NoError(t, err)

	msg, err := svc.AddUserMessage(context.Background(), owner, ticket.ID, "any update?", "client-corr-9")
	require.NoError(t, err)
	require.NotNil(t, msg.CorrelationID)
	assert.Equal(t, "client-corr-9", *msg.CorrelationID)

	added := dispatcher.eventsOfType(events.EventTicketMessageAdded)
	require.NotEmpty(t, added)
	payload := added[len(added)-1].Payload.(events.TicketMessageAddedPayload)
	require.NotNil(t, payload.Message.CorrelationID)
	assert.Equal(t, "client-corr-9", *payload.Message.CorrelationID)
}

func TestUpdateTicketRejectsInvalidTransition(t *testing.T) {
	svc, _, _, _ := newTicketFixture()

	ticket, err := svc.CreateTicket(context.Background(), customer(), TicketCreateInput{Subject: "Refund"})
	require.NoError(t, err)

	closed := domain.TicketStatusClosed
	_, err = svc.UpdateTicket(context.Background(), adminUser(), ticket.ID, TicketUpdateInput{Status: &closed})
	require.NoError(t, err)

	open := domain.TicketStatusOpen
	_, err = svc.UpdateTicket(context.Background(), adminUser(), ticket.ID, TicketUpdateInput{Status: &open})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateTicketSetsAndClearsClosedAt(t *testing.T) {
	svc, _, _, _ := newTicketFixture()

	ticket, err := svc.CreateTicket(context.Background(), customer(), TicketCreateInput{Subject: "Refund"})
	require.NoError(t, err)

	resolved := domain.TicketStatusResolved
	updated, err := svc.UpdateTicket(context.Background(), adminUser(), ticket.ID, TicketUpdateInput{Status: &resolved})
	require.NoError(t, err)
	assert.Nil(t, updated.ClosedAt)

	closed := domain.TicketStatusClosed
	updated, err = svc.UpdateTicket(context.Background(), adminUser(), ticket.ID, TicketUpdateInput{Status: &closed})
	require.NoError(t, err)
	assert.NotNil(t, updated.ClosedAt)
}

func TestListTicketsForUserScopesToRequester(t *testing.T) {
	svc, _, _, _ := newTicketFixture()
	owner := customer()
	other := &domain.User{ID: "user-99", Name: "Rana", Email: "rana@example.com", Role: domain.RoleUser, Status: domain.UserStatusActive}

	_, err := svc.CreateTicket(context.Background(), owner, TicketCreateInput{Subject: "Mine"})
	require.NoError(t, err)
	_, err = svc.CreateTicket(context.Background(), other, TicketCreateInput{Subject: "Theirs"})
	require.NoError(t, err)

	mine, err := svc.ListTicketsForUser(context.Background(), owner.ID, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Mine", mine[0].Subject)

	all, err := svc.ListTicketsForAdmin(context.Background(), TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStatsForUser(t *testing.T) {
	svc, _, _, _ := newTicketFixture()
	owner := customer()

	ticket, err := svc.CreateTicket(context.Background(), owner, TicketCreateInput{Subject: "A"})
	require.NoError(t, err)
	_, err = svc.CreateTicket(context.Background(), owner, TicketCreateInput{Subject: "B"})
	require.NoError(t, err)

	inProgress := domain.TicketStatusInProgress
	_, err = svc.UpdateTicket(context.Background(), adminUser(), ticket.ID, TicketUpdateInput{Status: &inProgress})
	require.NoError(t, err)

	stats, err := svc.StatsForUser(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Open)
	assert.Equal(t, int64(1), stats.InProgress)
}
