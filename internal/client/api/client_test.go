package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmena/helpdesk/internal/domain"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, New(server.URL, "test-token")
}

func TestListTicketsDecodesEnvelope(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/tickets", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "open,in_progress", r.URL.Query().Get("status"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))

		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"id": "T2", "subject": "Second", "status": "open"},
			{"id": "T1", "subject": "First", "status": "in_progress"},
		}})
	})

	tickets, err := client.ListTickets(context.Background(), false, TicketQuery{
		Statuses: []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress},
		Limit:    20,
	})
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "T2", tickets[0].ID)
	assert.Equal(t, "in_progress", tickets[1].Status)
}

func TestReplyToTicketSendsCorrelationID(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/tickets/T1/messages", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "on it", payload["body"])
		assert.Equal(t, true, payload["is_internal"])
		assert.Equal(t, "corr-9", payload["correlation_id"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"id": "server-1", "ticket_id": "T1", "sender_type": "admin",
			"body": "on it", "is_internal": true, "correlation_id": "corr-9",
		}})
	})

	msg, err := client.ReplyToTicket(context.Background(), "T1", "on it", true, "corr-9")
	require.NoError(t, err)
	assert.Equal(t, "server-1", msg.ID)
	assert.Equal(t, "corr-9", msg.CorrelationID)
}

func TestUpdateTicketSendsOnlyProvidedFields(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "resolved", payload["status"])
		_, hasPriority := payload["priority"]
		assert.False(t, hasPriority)

		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"id": "T1", "status": "resolved"}})
	})

	status := "resolved"
	ticket, err := client.UpdateTicket(context.Background(), "T1", &status, nil)
	require.NoError(t, err)
	assert.Equal(t, "resolved", ticket.Status)
}

func TestErrorEnvelopeDecoding(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{
			"code": "CONFLICT", "message": "ticket is closed",
		}})
	})

	_, err := client.AddUserMessage(context.Background(), "T1", "hello?", "")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "CONFLICT", apiErr.Code)
	assert.Equal(t, "ticket is closed", apiErr.Message)
}

func TestErrorWithoutEnvelopeStillSurfaces(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	err := client.MarkAllNotificationsRead(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "REQUEST_FAILED", apiErr.Code)
}

func TestDeleteNotificationAcceptsNoContent(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/notifications/n1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.DeleteNotification(context.Background(), "n1"))
}

func TestNotificationStats(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notifications/stats", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"total": 7, "unread": 3}})
	})

	stats, err := client.NotificationStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.Total)
	assert.Equal(t, int64(3), stats.Unread)
}
