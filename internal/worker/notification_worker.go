package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shopmena/helpdesk/internal/domain"
	"github.com/shopmena/helpdesk/internal/events"
	"github.com/shopmena/helpdesk/internal/i18n"
	"github.com/shopmena/helpdesk/internal/repository"
	"github.com/shopmena/helpdesk/internal/service"
)

// NotificationWorker listens to ticket events and materializes
// notification rows for the affected requester. It runs inline on the
// synchronous dispatcher, so handlers must stay cheap.
type NotificationWorker struct {
	notifications *service.NotificationService
	tickets       repository.TicketRepository
	logger        *zap.Logger
}

// NewNotificationWorker constructs the worker.
func NewNotificationWorker(notifications *service.NotificationService, tickets repository.TicketRepository, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{
		notifications: notifications,
		tickets:       tickets,
		logger:        logger,
	}
}

// Register attaches the worker's handlers to the dispatcher.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketMessageAdded, w.onMessageAdded)
	dispatcher.Subscribe(events.EventTicketUpdated, w.onTicketUpdated)
}

// onMessageAdded notifies the requester when an admin posts a public
// reply. Internal notes and the customer's own messages are skipped.
func (w *NotificationWorker) onMessageAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketMessageAddedPayload)
	if !ok {
		return nil
	}
	msg := payload.Message
	if msg.SenderType != domain.SenderTypeAdmin || msg.IsInternal {
		return nil
	}

	ticket, err := w.tickets.GetByID(ctx, msg.TicketID)
	if err != nil {
		w.logger.Warn("reply notification skipped, ticket lookup failed",
			zap.String("ticket_id", msg.TicketID),
			zap.Error(err),
		)
		return nil
	}

	_, err = w.notifications.Notify(ctx, ticket.RequesterID, service.NotificationInput{
		Type:    domain.NotificationTypeAdminMessage,
		TitleEn: fmt.Sprintf("New reply on %s", ticket.TicketNumber),
		TitleAr: fmt.Sprintf("رد جديد على %s", ticket.TicketNumber),
		BodyEn:  fmt.Sprintf("Support replied to your ticket %q.", ticket.Subject),
		BodyAr:  fmt.Sprintf("رد فريق الدعم على تذكرتك %q.", ticket.Subject),
		Payload: map[string]any{"ticket_id": ticket.ID, "message_id": msg.ID},
	})
	if err != nil {
		w.logger.Warn("reply notification failed",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err),
		)
	}
	return nil
}

// onTicketUpdated notifies the requester about status changes made by
// an admin. Changes the customer triggered themselves stay silent.
func (w *NotificationWorker) onTicketUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	if !ok {
		return nil
	}
	if payload.Old.Status == payload.New.Status {
		return nil
	}
	if event.Actor.Role != domain.RoleAdmin {
		return nil
	}

	ticket := payload.New
	_, err := w.notifications.Notify(ctx, ticket.RequesterID, service.NotificationInput{
		Type:    domain.NotificationTypeSystem,
		TitleEn: fmt.Sprintf("Ticket %s updated", ticket.TicketNumber),
		TitleAr: fmt.Sprintf("تم تحديث التذكرة %s", ticket.TicketNumber),
		BodyEn:  fmt.Sprintf("Status changed to %s.", i18n.StatusLabel(ticket.Status, domain.LanguageEnglish)),
		BodyAr:  fmt.Sprintf("تغيرت الحالة إلى %s.", i18n.StatusLabel(ticket.Status, domain.LanguageArabic)),
		Payload: map[string]any{"ticket_id": ticket.ID, "status": string(ticket.Status)},
	})
	if err != nil {
		w.logger.Warn("status notification failed",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err),
		)
	}
	return nil
}
