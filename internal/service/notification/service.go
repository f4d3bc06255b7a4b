// internal/service/notification/service.go
package notification

import (
	"context"
	"strings"

	"isp-billing-service/internal/domain/notification"
	ws "isp-billing-service/internal/domain/websocket"
	xerrors "isp-billing-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// CountData is the payload of notification:count events.
type CountData struct {
	Unread int64 `json:"unread"`
}

// NotificationService handles notification business logic
type NotificationService struct {
	repo      notification.Repository
	publisher ws.Publisher
	logger    *zap.Logger
}

func NewNotificationService(repo notification.Repository, publisher ws.Publisher, logger *zap.Logger) *NotificationService {
	if publisher == nil {
		publisher = ws.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, publisher: publisher, logger: logger}
}

// CreateAndPush creates a notification and pushes it to connected dashboards
func (s *NotificationService) CreateAndPush(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" || n.Message == "" {
		return nil, xerrors.Validation("Title and message are required")
	}
	if n.Type == "" {
		n.Type = notification.TypeSystem
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.publisher.Publish(ws.EventNotificationCreated, n)
	s.pushCount(ctx)
	return n, nil
}

// GetLatest returns the newest notifications, capped at notification.LatestLimit
func (s *NotificationService) GetLatest(ctx context.Context) ([]notification.Notification, error) {
	return s.repo.ListLatest(ctx, notification.LatestLimit)
}

// MarkAsRead marks a notification as read
func (s *NotificationService) MarkAsRead(ctx context.Context, id int64) (*notification.Notification, error) {
	n, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return nil, err
	}
	s.pushCount(ctx)
	return n, nil
}

// MarkAllAsRead marks every notification as read and returns how many changed
func (s *NotificationService) MarkAllAsRead(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.pushCount(ctx)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.pushCount(ctx)
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	return s.repo.UnreadCount(ctx)
}

// pushCount broadcasts the unread badge; failures are only logged.
func (s *NotificationService) pushCount(ctx context.Context) {
	count, err := s.repo.UnreadCount(ctx)
	if err != nil {
		s.logger.Warn("failed to get unread count", zap.Error(err))
		return
	}
	s.publisher.Publish(ws.EventTypeNotificationCount, CountData{Unread: count})
}
