// internal/handlers/notification/notification_handler.go
package notification

import (
	"net/http"

	"isp-billing-service/internal/domain/notification"
	"isp-billing-service/internal/pkg/response"
	service "isp-billing-service/internal/service/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// GetNotifications returns the latest notifications, newest first
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	items, err := h.notificationService.GetLatest(c.Request.Context())
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	if items == nil {
		items = []notification.Notification{}
	}
	response.Success(c, http.StatusOK, items)
}

// GetUnreadCount returns the unread badge count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	count, err := h.notificationService.UnreadCount(c.Request.Context())
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, service.CountData{Unread: count})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, ok := response.IDParam(c)
	if !ok {
		return
	}

	n, err := h.notificationService.MarkAsRead(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, n)
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if _, err := h.notificationService.MarkAllAsRead(c.Request.Context()); err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Message(c, http.StatusOK, "All notifications marked as read")
}

// DeleteNotification deletes a notification
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id, ok := response.IDParam(c)
	if !ok {
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Notification deleted successfully")
}
