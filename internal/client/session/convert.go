package session

import (
	"github.com/shopmena/helpdesk/internal/client/api"
	"github.com/shopmena/helpdesk/internal/domain"
)

func toDomainTicket(t api.Ticket) domain.Ticket {
	return domain.Ticket{
		ID:             t.ID,
		TicketNumber:   t.TicketNumber,
		RequesterID:    t.RequesterID,
		RequesterName:  t.RequesterName,
		RequesterEmail: t.RequesterEmail,
		Subject:        t.Subject,
		Category:       t.Category,
		Status:         domain.TicketStatus(t.Status),
		Priority:       domain.TicketPriority(t.Priority),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		ClosedAt:       t.ClosedAt,
	}
}

func toDomainTickets(tickets []api.Ticket) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toDomainTicket(t))
	}
	return out
}

func toDomainMessage(m api.Message) domain.TicketMessage {
	msg := domain.TicketMessage{
		ID:         m.ID,
		TicketID:   m.TicketID,
		SenderType: domain.SenderType(m.SenderType),
		SenderName: m.SenderName,
		Body:       m.Body,
		IsInternal: m.IsInternal,
		CreatedAt:  m.CreatedAt,
	}
	if m.CorrelationID != "" {
		corr := m.CorrelationID
		msg.CorrelationID = &corr
	}
	return msg
}

func toDomainMessages(messages []api.Message) []domain.TicketMessage {
	out := make([]domain.TicketMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, toDomainMessage(m))
	}
	return out
}

func toDomainNotification(n api.Notification) domain.Notification {
	return domain.Notification{
		ID:        n.ID,
		Type:      domain.NotificationType(n.Type),
		TitleEn:   n.TitleEn,
		TitleAr:   n.TitleAr,
		BodyEn:    n.BodyEn,
		BodyAr:    n.BodyAr,
		Payload:   n.Payload,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func toDomainNotifications(rows []api.Notification) []domain.Notification {
	out := make([]domain.Notification, 0, len(rows))
	for _, n := range rows {
		out = append(out, toDomainNotification(n))
	}
	return out
}
