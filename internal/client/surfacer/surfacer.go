// Package surfacer turns applied feed events into presentation
// effects: toasts, sound cues, badge bumps, stat refreshes. It only
// reads store output and never mutates a store.
package surfacer

import (
	"fmt"

	"github.com/shopmena/helpdesk/internal/client/store"
	"github.com/shopmena/helpdesk/internal/domain"
	"github.com/shopmena/helpdesk/internal/i18n"
)

// EffectKind enumerates presentation side effects.
type EffectKind string

const (
	EffectToast        EffectKind = "toast"
	EffectSound        EffectKind = "sound"
	EffectBadge        EffectKind = "badge"
	EffectStatRefresh  EffectKind = "stat_refresh"
	EffectErrorToast   EffectKind = "error_toast"
	EffectNotification EffectKind = "notification_badge"
)

// Effect is one presentation instruction for the view layer.
type Effect struct {
	Kind    EffectKind
	Message string
}

// Surfacer holds the viewer's role and language, fixed per view.
type Surfacer struct {
	role domain.Role
	lang domain.Language
}

// New constructs a surfacer for the viewing role and language.
func New(role domain.Role, lang domain.Language) *Surfacer {
	return &Surfacer{role: role, lang: lang}
}

// OnTicketInserted handles a new ticket row on a list view. Only the
// console announces new tickets; a customer created it themselves.
func (s *Surfacer) OnTicketInserted(domain.Ticket) []Effect {
	if s.role != domain.RoleAdmin {
		return nil
	}
	return []Effect{{Kind: EffectToast, Message: i18n.Localize("toast.new_ticket", s.lang)}}
}

// OnTicketUpdated handles a ticket row update on a list view. A status
// change means bucket membership moved: admins refresh stats silently,
// the owner gets a toast naming the new status.
func (s *Surfacer) OnTicketUpdated(old, updated *domain.Ticket) []Effect {
	if !store.StatusChanged(old, updated) {
		return nil
	}
	if s.role == domain.RoleAdmin {
		return []Effect{{Kind: EffectStatRefresh}}
	}
	label := i18n.StatusLabel(updated.Status, s.lang)
	return []Effect{
		{Kind: EffectToast, Message: fmt.Sprintf(i18n.Localize("toast.status_changed", s.lang), label)},
		{Kind: EffectStatRefresh},
	}
}

// OnMessageInserted handles a conversation insert on a detail view.
// The sender's own echo stays silent; internal notes never surface to
// the owner (the store already dropped them, this is the second gate).
func (s *Surfacer) OnMessageInserted(msg domain.TicketMessage) []Effect {
	if s.role == domain.RoleAdmin {
		if msg.SenderType != domain.SenderTypeUser {
			return nil
		}
		return []Effect{{Kind: EffectToast, Message: i18n.Localize("toast.new_user_message", s.lang)}}
	}

	if msg.IsInternal || msg.SenderType != domain.SenderTypeAdmin {
		return nil
	}
	return []Effect{
		{Kind: EffectToast, Message: i18n.Localize("toast.new_admin_message", s.lang)},
		{Kind: EffectSound},
		{Kind: EffectBadge},
	}
}

// OnNotificationInserted handles a new row in the notification center.
func (s *Surfacer) OnNotificationInserted(n domain.Notification) []Effect {
	title := n.Title(s.lang)
	if title == "" {
		title = i18n.Localize("toast.notification", s.lang)
	}
	return []Effect{
		{Kind: EffectToast, Message: title},
		{Kind: EffectNotification},
	}
}

// OnMutationFailed maps a failed remote call to a localized error
// toast. No local state changes on failure.
func (s *Surfacer) OnMutationFailed(error) []Effect {
	return []Effect{{Kind: EffectErrorToast, Message: i18n.Localize("toast.request_failed", s.lang)}}
}
