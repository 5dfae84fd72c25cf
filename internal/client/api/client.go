// Package api is the request/response client for the helpdesk HTTP
// API. It covers fetch-on-mount reads and the four mutation families;
// realtime delivery is a separate transport.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopmena/helpdesk/internal/domain"
)

// Error is a decoded API error envelope.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %s (%d): %s", e.Code, e.Status, e.Message)
}

// Client issues authenticated calls against the helpdesk API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New constructs a client with a sane default timeout.
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// TicketQuery filters ticket listings.
type TicketQuery struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Category   string
	Search     string
	Limit      int
	Offset     int
}

// Ticket is the wire shape of a ticket row.
type Ticket struct {
	ID             string     `json:"id"`
	TicketNumber   string     `json:"ticket_number"`
	RequesterID    string     `json:"requester_id"`
	RequesterName  string     `json:"requester_name"`
	RequesterEmail string     `json:"requester_email"`
	Subject        string     `json:"subject"`
	Category       string     `json:"category"`
	Status         string     `json:"status"`
	StatusLabel    string     `json:"status_label"`
	Priority       string     `json:"priority"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ClosedAt       *time.Time `json:"closed_at"`
}

// Message is the wire shape of a conversation entry.
type Message struct {
	ID            string    `json:"id"`
	TicketID      string    `json:"ticket_id"`
	SenderType    string    `json:"sender_type"`
	SenderName    string    `json:"sender_name"`
	Body          string    `json:"body"`
	IsInternal    bool      `json:"is_internal"`
	CorrelationID string    `json:"correlation_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// TicketDetail is a ticket with its visible conversation.
type TicketDetail struct {
	Ticket
	Messages []Message `json:"messages"`
}

// Notification is the wire shape of a notification row.
type Notification struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	TitleEn   string         `json:"title_en"`
	TitleAr   string         `json:"title_ar"`
	BodyEn    string         `json:"body_en"`
	BodyAr    string         `json:"body_ar"`
	Payload   map[string]any `json:"payload"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListTickets fetches the caller's ticket listing. Admin tokens list
// across requesters via the console route.
func (c *Client) ListTickets(ctx context.Context, admin bool, query TicketQuery) ([]Ticket, error) {
	path := "/tickets"
	if admin {
		path = "/admin/tickets"
	}
	var out []Ticket
	err := c.call(ctx, http.MethodGet, path+ticketQueryString(query), nil, &out)
	return out, err
}

// GetTicket fetches one ticket with its conversation.
func (c *Client) GetTicket(ctx context.Context, admin bool, ticketID string) (*TicketDetail, error) {
	path := "/tickets/" + url.PathEscape(ticketID)
	if admin {
		path = "/admin/tickets/" + url.PathEscape(ticketID)
	}
	var out TicketDetail
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTicket opens a new ticket as the calling customer.
func (c *Client) CreateTicket(ctx context.Context, subject, category, priority, body string) (*Ticket, error) {
	payload := map[string]any{"subject": subject, "category": category, "priority": priority, "body": body}
	var out Ticket
	if err := c.call(ctx, http.MethodPost, "/tickets", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddUserMessage appends a customer reply to their own ticket. The
// correlation id travels with the request and comes back on the feed
// echo, same as the admin path.
func (c *Client) AddUserMessage(ctx context.Context, ticketID, body, correlationID string) (*Message, error) {
	payload := map[string]any{"body": body, "correlation_id": correlationID}
	var out Message
	err := c.call(ctx, http.MethodPost, "/tickets/"+url.PathEscape(ticketID)+"/messages", payload, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ReplyToTicket posts an admin reply or internal note. The correlation
// id travels with the request and comes back on the feed echo.
func (c *Client) ReplyToTicket(ctx context.Context, ticketID, body string, isInternal bool, correlationID string) (*Message, error) {
	payload := map[string]any{"body": body, "is_internal": isInternal, "correlation_id": correlationID}
	var out Message
	err := c.call(ctx, http.MethodPost, "/admin/tickets/"+url.PathEscape(ticketID)+"/messages", payload, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTicket changes status and/or priority as an admin. Nil fields
// are left untouched.
func (c *Client) UpdateTicket(ctx context.Context, ticketID string, status, priority *string) (*Ticket, error) {
	payload := map[string]any{}
	if status != nil {
		payload["status"] = *status
	}
	if priority != nil {
		payload["priority"] = *priority
	}
	var out Ticket
	err := c.call(ctx, http.MethodPatch, "/admin/tickets/"+url.PathEscape(ticketID), payload, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TicketStats fetches per-status bucket counts.
func (c *Client) TicketStats(ctx context.Context, admin bool) (*domain.TicketStats, error) {
	path := "/tickets/stats"
	if admin {
		path = "/admin/tickets/stats"
	}
	var out domain.TicketStats
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListNotifications fetches the caller's notification feed.
func (c *Client) ListNotifications(ctx context.Context, unreadOnly bool, limit, offset int) ([]Notification, error) {
	values := url.Values{}
	if unreadOnly {
		values.Set("unread_only", "true")
	}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		values.Set("offset", strconv.Itoa(offset))
	}
	path := "/notifications"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var out []Notification
	err := c.call(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// MarkNotificationRead flips one notification to read.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) (*Notification, error) {
	var out Notification
	err := c.call(ctx, http.MethodPost, "/notifications/"+url.PathEscape(notificationID)+"/read", nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkAllNotificationsRead flips every unread notification.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/notifications/read-all", nil, nil)
}

// DeleteNotification removes one notification.
func (c *Client) DeleteNotification(ctx context.Context, notificationID string) error {
	return c.call(ctx, http.MethodDelete, "/notifications/"+url.PathEscape(notificationID), nil, nil)
}

// NotificationStats fetches total and unread counts.
func (c *Client) NotificationStats(ctx context.Context) (*domain.NotificationStats, error) {
	var out domain.NotificationStats
	if err := c.call(ctx, http.MethodGet, "/notifications/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func ticketQueryString(query TicketQuery) string {
	values := url.Values{}
	if len(query.Statuses) > 0 {
		parts := make([]string, 0, len(query.Statuses))
		for _, s := range query.Statuses {
			parts = append(parts, string(s))
		}
		values.Set("status", strings.Join(parts, ","))
	}
	if len(query.Priorities) > 0 {
		parts := make([]string, 0, len(query.Priorities))
		for _, p := range query.Priorities {
			parts = append(parts, string(p))
		}
		values.Set("priority", strings.Join(parts, ","))
	}
	if query.Category != "" {
		values.Set("category", query.Category)
	}
	if query.Search != "" {
		values.Set("q", query.Search)
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		values.Set("offset", strconv.Itoa(query.Offset))
	}
	if encoded := values.Encode(); encoded != "" {
		return "?" + encoded
	}
	return ""
}

func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return json.Unmarshal(envelope.Data, out)
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode, Code: "REQUEST_FAILED", Message: resp.Status}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}
