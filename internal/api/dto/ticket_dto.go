package dto

import (
	"time"

	"github.com/shopmena/helpdesk/internal/domain"
	"github.com/shopmena/helpdesk/internal/i18n"
)

// CreateTicketRequest payload for POST /tickets.
type CreateTicketRequest struct {
	Subject  string `json:"subject"`
	Category string `json:"category"`
	Priority string `json:"priority"`
	Body     string `json:"body"`
}

// AddMessageRequest payload for POST /tickets/:id/messages. The
// correlation id, when the client sends one, is echoed on the change
// feed so the optimistic insert can be reconciled.
type AddMessageRequest struct {
	Body          string `json:"body"`
	CorrelationID string `json:"correlation_id"`
}

// AdminReplyRequest payload for POST /admin/tickets/:id/messages. The
// correlation id is chosen by the client and echoed on the change feed
// so optimistic inserts can be reconciled.
type AdminReplyRequest struct {
	Body          string `json:"body"`
	IsInternal    bool   `json:"is_internal"`
	CorrelationID string `json:"correlation_id"`
}

// UpdateTicketRequest payload for PATCH /admin/tickets/:id.
type UpdateTicketRequest struct {
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
}

// TicketSummary is the listing view of a ticket.
type TicketSummary struct {
	ID             string     `json:"id"`
	TicketNumber   string     `json:"ticket_number"`
	RequesterID    string     `json:"requester_id"`
	RequesterName  string     `json:"requester_name"`
	RequesterEmail string     `json:"requester_email"`
	Subject        string     `json:"subject"`
	Category       string     `json:"category,omitempty"`
	Status         string     `json:"status"`
	StatusLabel    string     `json:"status_label"`
	Priority       string     `json:"priority"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
}

// MessageResponse is a single conversation entry.
type MessageResponse struct {
	ID            string    `json:"id"`
	TicketID      string    `json:"ticket_id"`
	SenderType    string    `json:"sender_type"`
	SenderName    string    `json:"sender_name"`
	Body          string    `json:"body"`
	IsInternal    bool      `json:"is_internal"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TicketDetail is a ticket with its visible conversation.
type TicketDetail struct {
	TicketSummary
	Messages []MessageResponse `json:"messages"`
}

// TicketStatsResponse mirrors domain.TicketStats.
type TicketStatsResponse struct {
	Total       int64 `json:"total"`
	Open        int64 `json:"open"`
	InProgress  int64 `json:"in_progress"`
	WaitingUser int64 `json:"waiting_user"`
	Resolved    int64 `json:"resolved"`
	Closed      int64 `json:"closed"`
}

// NewTicketSummary maps a domain ticket for the given UI language.
func NewTicketSummary(ticket *domain.Ticket, lang domain.Language) TicketSummary {
	return TicketSummary{
		ID:             ticket.ID,
		TicketNumber:   ticket.TicketNumber,
		RequesterID:    ticket.RequesterID,
		RequesterName:  ticket.RequesterName,
		RequesterEmail: ticket.RequesterEmail,
		Subject:        ticket.Subject,
		Category:       ticket.Category,
		Status:         string(ticket.Status),
		StatusLabel:    i18n.StatusLabel(ticket.Status, lang),
		Priority:       string(ticket.Priority),
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
		ClosedAt:       ticket.ClosedAt,
	}
}

// NewMessageResponse maps a domain message.
func NewMessageResponse(msg *domain.TicketMessage) MessageResponse {
	out := MessageResponse{
		ID:         msg.ID,
		TicketID:   msg.TicketID,
		SenderType: string(msg.SenderType),
		SenderName: msg.SenderName,
		Body:       msg.Body,
		IsInternal: msg.IsInternal,
		CreatedAt:  msg.CreatedAt,
	}
	if msg.CorrelationID != nil {
		out.CorrelationID = *msg.CorrelationID
	}
	return out
}
