package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventTicketCreated, func(_ context.Context, ev Event) error {
		got = append(got, ev)
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "ev-1", Type: EventTicketCreated})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ev-1", got[0].ID)
}

func TestDispatcherFiltersByType(t *testing.T) {
	d := NewInMemoryDispatcher()

	calls := 0
	d.Subscribe(EventTicketUpdated, func(_ context.Context, _ Event) error {
		calls++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	assert.Zero(t, calls)

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketUpdated}))
	assert.Equal(t, 1, calls)
}

func TestDispatcherContinuesPastFailingHandler(t *testing.T) {
	d := NewInMemoryDispatcher()

	d.Subscribe(EventNotificationCreated, func(_ context.Context, _ Event) error {
		return errors.New("boom")
	})
	reached := false
	d.Subscribe(EventNotificationCreated, func(_ context.Context, _ Event) error {
		reached = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventNotificationCreated}))
	assert.True(t, reached)
}
