package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopmena/helpdesk/internal/domain"
	"github.com/shopmena/helpdesk/internal/events"
	"github.com/shopmena/helpdesk/internal/repository"
)

// NotificationService owns notification persistence plus fan-out.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NotificationDependencies bundles what the service needs.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// NotificationInput carries both language variants of a notification.
type NotificationInput struct {
	Type    domain.NotificationType
	TitleEn string
	TitleAr string
	BodyEn  string
	BodyAr  string
	Payload map[string]any
}

// NotificationListFilter describes listing filters.
type NotificationListFilter struct {
	UnreadOnly bool
	Types      []domain.NotificationType
	Limit      int
	Offset     int
}

// NewNotificationService constructs the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
	}
}

// Notify stores a notification row for one user and publishes it.
func (s *NotificationService) Notify(ctx context.Context, userID string, input NotificationInput) (*domain.Notification, error) {
	notification := &domain.Notification{
		UserID:  userID,
		Type:    input.Type,
		TitleEn: input.TitleEn,
		TitleAr: input.TitleAr,
		BodyEn:  input.BodyEn,
		BodyAr:  input.BodyAr,
		Payload: input.Payload,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventNotificationCreated,
		Payload: events.NotificationCreatedPayload{Notification: *notification},
	})
	return notification, nil
}

// Broadcast stores a copy of the notification for every active customer.
// Per-user failures are logged and skipped so one bad row cannot abort
// the whole fan-out.
func (s *NotificationService) Broadcast(ctx context.Context, input NotificationInput) (int, error) {
	userIDs, err := s.users.ListIDs(ctx, domain.RoleUser)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, userID := range userIDs {
		if _, err := s.Notify(ctx, userID, input); err != nil {
			s.logger.Warn("broadcast notification failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		delivered++
	}
	return delivered, nil
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, filter NotificationListFilter) ([]domain.Notification, error) {
	return s.notifications.ListByUser(ctx, userID, repository.NotificationFilter{
		UnreadOnly: filter.UnreadOnly,
		Types:      filter.Types,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// MarkRead flips a notification to read. Marking an already-read row is
// a no-op that returns the row unchanged.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*domain.Notification, error) {
	existing, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrAccessDenied
	}
	if existing.IsRead {
		return existing, nil
	}

	updated, err := s.notifications.MarkRead(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventNotificationUpdated,
		Payload: events.NotificationUpdatedPayload{Old: *existing, New: *updated},
	})
	return updated, nil
}

// MarkAllRead flips every unread notification for the user and returns
// how many rows changed. Subscribed views pick the change up as a
// refetch trigger rather than a per-row event stream.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}

// Delete removes a notification owned by the user.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	existing, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return ErrAccessDenied
	}
	if err := s.notifications.Delete(ctx, notificationID); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventNotificationDeleted,
		Payload: events.NotificationDeletedPayload{Notification: *existing},
	})
	return nil
}

// Stats returns total and unread counts for the user.
func (s *NotificationService) Stats(ctx context.Context, userID string) (*domain.NotificationStats, error) {
	return s.notifications.CountByUser(ctx, userID)
}

func (s *NotificationService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
