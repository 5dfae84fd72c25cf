package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopmena/helpdesk/internal/domain"
)

// NotificationFilter captures feed listing parameters.
type NotificationFilter struct {
	UnreadOnly bool
	Types      []domain.NotificationType
	Limit      int
	Offset     int
}

// NotificationRepository encapsulates notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, filter NotificationFilter) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
	CountByUser(ctx context.Context, userID string) (*domain.NotificationStats, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (user_id, type, title_en, title_ar, body_en, body_ar, payload, is_read)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		n.UserID,
		n.Type,
		n.TitleEn,
		n.TitleAr,
		n.BodyEn,
		n.BodyAr,
		n.Payload,
		n.IsRead,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	const query = `
        SELECT id, user_id, type, title_en, title_ar, body_en, body_ar, payload, is_read, created_at, updated_at
        FROM notifications WHERE id=$1`
	var n domain.Notification
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.Type,
		&n.TitleEn, &n.TitleAr, &n.BodyEn, &n.BodyAr,
		&n.Payload, &n.IsRead, &n.CreatedAt, &n.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, filter NotificationFilter) ([]domain.Notification, error) {
	query := `
        SELECT id, user_id, type, title_en, title_ar, body_en, body_ar, payload, is_read, created_at, updated_at
        FROM notifications WHERE user_id=$1`
	args := []any{userID}
	if filter.UnreadOnly {
		query += " AND is_read=FALSE"
	}
	if len(filter.Types) > 0 {
		query += " AND type = ANY($2)"
		types := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			types = append(types, string(t))
		}
		args = append(args, types)
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	args = append(args, limit)
	query += " LIMIT $" + strconv.Itoa(len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Type,
			&n.TitleEn, &n.TitleAr, &n.BodyEn, &n.BodyAr,
			&n.Payload, &n.IsRead, &n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	const query = `
        UPDATE notifications SET is_read=TRUE, updated_at=NOW() WHERE id=$1
        RETURNING id, user_id, type, title_en, title_ar, body_en, body_ar, payload, is_read, created_at, updated_at`
	var n domain.Notification
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.Type,
		&n.TitleEn, &n.TitleAr, &n.BodyEn, &n.BodyAr,
		&n.Payload, &n.IsRead, &n.CreatedAt, &n.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	const query = `UPDATE notifications SET is_read=TRUE, updated_at=NOW() WHERE user_id=$1 AND is_read=FALSE`
	cmd, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *notificationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM notifications WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *notificationRepository) CountByUser(ctx context.Context, userID string) (*domain.NotificationStats, error) {
	const query = `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_read)
        FROM notifications WHERE user_id=$1`
	stats := &domain.NotificationStats{}
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&stats.Total, &stats.Unread); err != nil {
		return nil, err
	}
	return stats, nil
}

