package dto

import (
	"time"

	"github.com/shopmena/helpdesk/internal/domain"
)

// BroadcastRequest payload for POST /admin/notifications/broadcast.
type BroadcastRequest struct {
	Type    string         `json:"type"`
	TitleEn string         `json:"title_en"`
	TitleAr string         `json:"title_ar"`
	BodyEn  string         `json:"body_en"`
	BodyAr  string         `json:"body_ar"`
	Payload map[string]any `json:"payload"`
}

// NotificationResponse is a localized view of a notification row. The
// raw bilingual pair travels alongside so clients can re-render on a
// language switch without refetching.
type NotificationResponse struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	TitleEn   string         `json:"title_en"`
	TitleAr   string         `json:"title_ar"`
	BodyEn    string         `json:"body_en"`
	BodyAr    string         `json:"body_ar"`
	Payload   map[string]any `json:"payload,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

// NotificationStatsResponse mirrors domain.NotificationStats.
type NotificationStatsResponse struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

// NewNotificationResponse maps a domain notification for lang.
func NewNotificationResponse(n *domain.Notification, lang domain.Language) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title(lang),
		Body:      n.Body(lang),
		TitleEn:   n.TitleEn,
		TitleAr:   n.TitleAr,
		BodyEn:    n.BodyEn,
		BodyAr:    n.BodyAr,
		Payload:   n.Payload,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
