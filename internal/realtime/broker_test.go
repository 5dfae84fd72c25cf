package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmena/helpdesk/internal/domain"
)

func ticketFixture(id string, status domain.TicketStatus) domain.Ticket {
	return domain.Ticket{
		ID:           id,
		TicketNumber: "TKT-" + id,
		RequesterID:  "user-1",
		Subject:      "order never arrived",
		Status:       status,
		Priority:     domain.TicketPriorityNormal,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestBrokerDeliversToMatchingChannelOnly(t *testing.T) {
	broker := NewBroker()

	var listEvents, threadEvents []ChangeEvent
	listSub, err := broker.Subscribe(context.Background(), Scope{Kind: ScopeAllTickets}, Handlers{
		OnInsert: func(ev ChangeEvent) { listEvents = append(listEvents, ev) },
	})
	require.NoError(t, err)
	defer listSub.Close()

	threadSub, err := broker.Subscribe(context.Background(), Scope{Kind: ScopeTicket, TicketID: "t1"}, Handlers{
		OnInsert: func(ev ChangeEvent) { threadEvents = append(threadEvents, ev) },
	})
	require.NoError(t, err)
	defer threadSub.Close()

	require.NoError(t, broker.Publish(context.Background(), TicketInserted(ticketFixture("t1", domain.TicketStatusOpen))))
	require.NoError(t, broker.Publish(context.Background(), MessageInserted(domain.TicketMessage{
		ID: "m1", TicketID: "t1", SenderType: domain.SenderTypeUser, Body: "hello",
	})))

	assert.Len(t, listEvents, 1)
	assert.Equal(t, KindTicket, listEvents[0].Kind)
	assert.Len(t, threadEvents, 1)
	assert.Equal(t, KindMessage, threadEvents[0].Kind)
}

func TestBrokerFansOutInRegistrationOrder(t *testing.T) {
	broker := NewBroker()

	var order []string
	for _, name := range []string{"first", "second", "third", "fourth"} {
		name := name
		sub, err := broker.Subscribe(context.Background(), Scope{Kind: ScopeAllTickets}, Handlers{
			OnInsert: func(ChangeEvent) { order = append(order, name) },
		})
		require.NoError(t, err)
		defer sub.Close()
	}

	require.NoError(t, broker.Publish(context.Background(), TicketInserted(ticketFixture("t1", domain.TicketStatusOpen))))
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, order)
}

func TestBrokerPreservesDeliveryOrder(t *testing.T) {
	broker := NewBroker()

	var seen []string
	sub, err := broker.Subscribe(context.Background(), Scope{Kind: ScopeAllTickets}, Handlers{
		OnInsert: func(ev ChangeEvent) {
			newRow, _, decodeErr := ev.DecodeTicket()
			require.NoError(t, decodeErr)
			seen = append(seen, newRow.ID)
		},
	})
	require.NoError(t, err)
	defer sub.Close()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, broker.Publish(context.Background(), TicketInserted(ticketFixture(id, domain.TicketStatusOpen))))
	}
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestBrokerCloseStopsDeliverySynchronously(t *testing.T) {
	broker := NewBroker()

	delivered := 0
	sub, err := broker.Subscribe(context.Background(), Scope{Kind: ScopeAllTickets}, Handlers{
		OnInsert: func(ChangeEvent) { delivered++ },
	})
	require.NoError(t, err)

	require.NoError(t, broker.Publish(context.Background(), TicketInserted(ticketFixture("t1", domain.TicketStatusOpen))))
	sub.Close()
	require.NoError(t, broker.Publish(context.Background(), TicketInserted(ticketFixture("t2", domain.TicketStatusOpen))))

	assert.Equal(t, 1, delivered)
}

func TestBrokerContextCancelClosesSubscription(t *testing.T) {
	broker := NewBroker()
	ctx, cancel := context.WithCancel(context.Background())

	delivered := make(chan ChangeEvent, 8)
	_, err := broker.Subscribe(ctx, Scope{Kind: ScopeNotifications, UserID: "user-1"}, Handlers{
		OnInsert: func(ev ChangeEvent) { delivered <- ev },
	})
	require.NoError(t, err)

	cancel()
	// Close runs on a goroutine watching ctx; give it a moment.
	assert.Eventually(t, func() bool {
		for len(delivered) > 0 {
			<-delivered
		}
		_ = broker.Publish(context.Background(), NotificationInserted(domain.Notification{
			ID: "n1", UserID: "user-1", Type: domain.NotificationTypeSystem,
		}))
		return len(delivered) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestScopeValidation(t *testing.T) {
	assert.NoError(t, Scope{Kind: ScopeAllTickets}.Validate())
	assert.Error(t, Scope{Kind: ScopeTicket}.Validate())
	assert.Error(t, Scope{Kind: ScopeNotifications}.Validate())
	assert.Error(t, Scope{Kind: "bogus"}.Validate())
	assert.Equal(t, "ticket:t1", Scope{Kind: ScopeTicket, TicketID: "t1"}.Channel())
	assert.Equal(t, "notifications:u1", Scope{Kind: ScopeNotifications, UserID: "u1"}.Channel())
}
