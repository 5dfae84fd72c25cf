// Package i18n provides static bilingual string lookup. Language is an
// explicit parameter everywhere; there is no ambient locale.
package i18n

import "github.com/shopmena/helpdesk/internal/domain"

var translations = map[domain.Language]map[string]string{
	domain.LanguageEnglish: {
		"status.open":         "Open",
		"status.in_progress":  "In progress",
		"status.waiting_user": "Waiting for you",
		"status.resolved":     "Resolved",
		"status.closed":       "Closed",

		"toast.new_ticket":        "New support ticket received",
		"toast.new_user_message":  "New message from customer",
		"toast.new_admin_message": "Support replied to your ticket",
		"toast.status_changed":    "Ticket status changed to %s",
		"toast.request_failed":    "Something went wrong, please try again",
		"toast.notification":      "You have a new notification",
	},
	domain.LanguageArabic: {
		"status.open":         "مفتوحة",
		"status.in_progress":  "قيد المعالجة",
		"status.waiting_user": "بانتظار ردك",
		"status.resolved":     "تم الحل",
		"status.closed":       "مغلقة",

		"toast.new_ticket":        "تم استلام تذكرة دعم جديدة",
		"toast.new_user_message":  "رسالة جديدة من العميل",
		"toast.new_admin_message": "رد فريق الدعم على تذكرتك",
		"toast.status_changed":    "تغيرت حالة التذكرة إلى %s",
		"toast.request_failed":    "حدث خطأ ما، يرجى المحاولة مرة أخرى",
		"toast.notification":      "لديك إشعار جديد",
	},
}

// Localize resolves key for the given language, falling back to English
// and finally to the key itself so a missing entry stays visible.
func Localize(key string, lang domain.Language) string {
	if table, ok := translations[lang]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	if s, ok := translations[domain.LanguageEnglish][key]; ok {
		return s
	}
	return key
}

// StatusLabel returns the localized label for a ticket status.
func StatusLabel(status domain.TicketStatus, lang domain.Language) string {
	return Localize("status."+string(status), lang)
}
