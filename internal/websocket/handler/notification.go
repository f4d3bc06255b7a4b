// internal/websocket/handler/notification.go
package handler

import (
	"context"
	"fmt"

	"isp-billing-service/internal/domain/notification"
	wstypes "isp-billing-service/internal/domain/websocket"
	"isp-billing-service/internal/pkg/response"
	ws "isp-billing-service/internal/websocket"
)

// NotificationService is the part of the notification service the socket exposes.
type NotificationService interface {
	GetLatest(ctx context.Context) ([]notification.Notification, error)
	MarkAsRead(ctx context.Context, id int64) (*notification.Notification, error)
	MarkAllAsRead(ctx context.Context) (int64, error)
	UnreadCount(ctx context.Context) (int64, error)
}

type NotificationHandler struct {
	notifications NotificationService
}

func NewNotificationHandler(notifications NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{
		wstypes.EventTypeNotificationRead,
		wstypes.EventTypeNotificationReadAll,
		wstypes.EventTypeNotificationList,
		wstypes.EventTypeNotificationCount,
	}
}

func (h *NotificationHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	switch msg.Type {
	case wstypes.EventTypeNotificationRead:
		return h.handleMarkAsRead(ctx, client, msg)
	case wstypes.EventTypeNotificationReadAll:
		return h.handleMarkAllAsRead(ctx, client)
	case wstypes.EventTypeNotificationList:
		return h.handleList(ctx, client)
	case wstypes.EventTypeNotificationCount:
		return h.handleCount(ctx, client)
	default:
		return fmt.Errorf("unsupported event type: %s", msg.Type)
	}
}

func (h *NotificationHandler) handleMarkAsRead(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	var req struct {
		NotificationID int64 `json:"notification_id"`
	}
	if err := ws.MapToStruct(msg.Data, &req); err != nil || req.NotificationID <= 0 {
		client.SendError("invalid_request", "notification_id is required", "")
		return nil
	}

	n, err := h.notifications.MarkAsRead(ctx, req.NotificationID)
	if err != nil {
		_, message := response.Status(err)
		client.SendError("mark_read_failed", message, "")
		return err
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeNotificationRead, map[string]interface{}{
		"notification": n,
		"success":      true,
	}))
	return nil
}

func (h *NotificationHandler) handleMarkAllAsRead(ctx context.Context, client *ws.Client) error {
	updated, err := h.notifications.MarkAllAsRead(ctx)
	if err != nil {
		client.SendError("mark_all_read_failed", "Failed to mark all as read", "")
		return err
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeNotificationReadAll, map[string]interface{}{
		"success": true,
		"updated": updated,
	}))
	return nil
}

func (h *NotificationHandler) handleList(ctx context.Context, client *ws.Client) error {
	items, err := h.notifications.GetLatest(ctx)
	if err != nil {
		client.SendError("list_failed", "Failed to get notifications", "")
		return err
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeNotificationList, map[string]interface{}{
		"notifications": items,
		"count":         len(items),
	}))
	return nil
}

func (h *NotificationHandler) handleCount(ctx context.Context, client *ws.Client) error {
	count, err := h.notifications.UnreadCount(ctx)
	if err != nil {
		client.SendError("count_failed", "Failed to get unread count", "")
		return err
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeNotificationCount, map[string]interface{}{
		"unread": count,
	}))
	return nil
}
