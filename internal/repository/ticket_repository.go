package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopmena/helpdesk/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	RequesterID *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Category    *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountByStatus(ctx context.Context, requesterID *string) (*domain.TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, requester_id, requester_name, requester_email, subject, category, status, priority)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.RequesterID,
		ticket.RequesterName,
		ticket.RequesterEmail,
		ticket.Subject,
		ticket.Category,
		ticket.Status,
		ticket.Priority,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, category=$2, status=$3, priority=$4, closed_at=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Category,
		ticket.Status,
		ticket.Priority,
		ticket.ClosedAt,
		ticket.ID,
	).Scan(&ticket.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return pgx.ErrNoRows
		}
		return err
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, ticket_number, requester_id, requester_name, requester_email,
               subject, category, status, priority, created_at, updated_at, closed_at
        FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	const query = `
        SELECT id, ticket_number, requester_id, requester_name, requester_email,
               subject, category, status, priority, created_at, updated_at, closed_at
        FROM tickets WHERE ticket_number=$1`
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.RequesterID,
		&ticket.RequesterName,
		&ticket.RequesterEmail,
		&ticket.Subject,
		&ticket.Category,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	var (
		conditions []string
		args       []any
	)

	addArg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.RequesterID != nil {
		conditions = append(conditions, "requester_id="+addArg(*filter.RequesterID))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			placeholders = append(placeholders, addArg(status))
		}
		conditions = append(conditions, "status IN ("+strings.Join(placeholders, ",")+")")
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, 0, len(filter.Priorities))
		for _, priority := range filter.Priorities {
			placeholders = append(placeholders, addArg(priority))
		}
		conditions = append(conditions, "priority IN ("+strings.Join(placeholders, ",")+")")
	}
	if filter.Category != nil {
		conditions = append(conditions, "category="+addArg(*filter.Category))
	}
	if filter.SearchTerm != nil {
		placeholder := addArg("%" + *filter.SearchTerm + "%")
		conditions = append(conditions, "(subject ILIKE "+placeholder+" OR ticket_number ILIKE "+placeholder+")")
	}
	if filter.CreatedFrom != nil {
		conditions = append(conditions, "created_at >= "+addArg(*filter.CreatedFrom))
	}
	if filter.CreatedTo != nil {
		conditions = append(conditions, "created_at <= "+addArg(*filter.CreatedTo))
	}

	query := `
        SELECT id, ticket_number, requester_id, requester_name, requester_email,
               subject, category, status, priority, created_at, updated_at, closed_at
        FROM tickets`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += " LIMIT " + addArg(limit)
	if filter.Offset > 0 {
		query += " OFFSET " + addArg(filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketNumber,
			&ticket.RequesterID,
			&ticket.RequesterName,
			&ticket.RequesterEmail,
			&ticket.Subject,
			&ticket.Category,
			&ticket.Status,
			&ticket.Priority,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ClosedAt,
		); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) CountByStatus(ctx context.Context, requesterID *string) (*domain.TicketStats, error) {
	query := `
        SELECT status, COUNT(*) FROM tickets`
	var args []any
	if requesterID != nil {
		query += " WHERE requester_id=$1"
		args = append(args, *requesterID)
	}
	query += " GROUP BY status"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.TicketStats{}
	for rows.Next() {
		var (
			status domain.TicketStatus
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		switch status {
		case domain.TicketStatusOpen:
			stats.Open = count
		case domain.TicketStatusInProgress:
			stats.InProgress = count
		case domain.TicketStatusWaitingUser:
			stats.WaitingUser = count
		case domain.TicketStatusResolved:
			stats.Resolved = count
		case domain.TicketStatusClosed:
			stats.Closed = count
		}
	}
	return stats, rows.Err()
}
