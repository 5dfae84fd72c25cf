package domain

import (
	"strings"
	"time"
)

// SenderType indicates who authored a ticket message.
type SenderType string

const (
	SenderTypeUser  SenderType = "user"
	SenderTypeAdmin SenderType = "admin"
	SenderTypeBot   SenderType = "bot"
)

// TicketMessage captures one entry in a ticket conversation. Internal
// messages are admin-only notes and must never reach the ticket owner.
type TicketMessage struct {
	ID            string     `json:"id"`
	TicketID      string     `json:"ticket_id"`
	SenderType    SenderType `json:"sender_type"`
	SenderID      *string    `json:"sender_id,omitempty"`
	SenderName    string     `json:"sender_name,omitempty"`
	Body          string     `json:"body"`
	IsInternal    bool       `json:"is_internal"`
	CorrelationID *string    `json:"correlation_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

const pendingIDPrefix = "pending-"

// PendingMessageID builds a placeholder id for an optimistic local message.
func PendingMessageID(correlationID string) string {
	return pendingIDPrefix + correlationID
}

// IsPendingMessageID reports whether id is a client-generated placeholder.
func IsPendingMessageID(id string) bool {
	return strings.HasPrefix(id, pendingIDPrefix)
}
