package domain

import "time"

// NotificationType enumerates the per-user feed entry kinds.
type NotificationType string

const (
	NotificationTypeWelcome      NotificationType = "welcome"
	NotificationTypeOrderUpdate  NotificationType = "order_update"
	NotificationTypeAdminMessage NotificationType = "admin_message"
	NotificationTypePromotion    NotificationType = "promotion"
	NotificationTypeSystem       NotificationType = "system"
)

// Notification is a per-user feed entry, distinct from ticket messages.
// Title and body are stored as a bilingual pair; the client picks one
// via i18n at render time.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	TitleEn   string           `json:"title_en"`
	TitleAr   string           `json:"title_ar"`
	BodyEn    string           `json:"body_en"`
	BodyAr    string           `json:"body_ar"`
	Payload   map[string]any   `json:"payload,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Title returns the localized title for lang, falling back to English.
func (n *Notification) Title(lang Language) string {
	if lang == LanguageArabic && n.TitleAr != "" {
		return n.TitleAr
	}
	return n.TitleEn
}

// Body returns the localized body for lang, falling back to English.
func (n *Notification) Body(lang Language) string {
	if lang == LanguageArabic && n.BodyAr != "" {
		return n.BodyAr
	}
	return n.BodyEn
}
