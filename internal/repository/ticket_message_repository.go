package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopmena/helpdesk/internal/domain"
)

// TicketMessageRepository encapsulates conversation persistence.
type TicketMessageRepository interface {
	Create(ctx context.Context, msg *domain.TicketMessage) error
	ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.TicketMessage, error)
}

type ticketMessageRepository struct {
	pool *pgxpool.Pool
}

// NewTicketMessageRepository instantiates repository.
func NewTicketMessageRepository(pool *pgxpool.Pool) TicketMessageRepository {
	return &ticketMessageRepository{pool: pool}
}

func (r *ticketMessageRepository) Create(ctx context.Context, msg *domain.TicketMessage) error {
	const query = `
        INSERT INTO ticket_messages (ticket_id, sender_type, sender_id, sender_name, body, is_internal, correlation_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.TicketID,
		msg.SenderType,
		msg.SenderID,
		msg.SenderName,
		msg.Body,
		msg.IsInternal,
		msg.CorrelationID,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *ticketMessageRepository) ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.TicketMessage, error) {
	query := `
        SELECT id, ticket_id, sender_type, sender_id, sender_name, body, is_internal, correlation_id, created_at
        FROM ticket_messages WHERE ticket_id=$1`
	if !includeInternal {
		query += " AND is_internal=FALSE"
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]domain.TicketMessage, 0)
	for rows.Next() {
		var msg domain.TicketMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.SenderType,
			&msg.SenderID,
			&msg.SenderName,
			&msg.Body,
			&msg.IsInternal,
			&msg.CorrelationID,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}
