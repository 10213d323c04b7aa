package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/inventory-dashboard/internal/service"
)

// NotificationHandler serves the notification snapshot and proxies
// notification actions to the platform API.
type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// GetNotifications returns the store snapshot with the unread count
// GET /api/v1/state/notifications
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.notificationService.Snapshot())
}

// Refresh re-fetches the notification list from the platform
// POST /api/v1/notifications/refresh
func (h *NotificationHandler) Refresh(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	if err := h.notificationService.Refresh(c.Request.Context(), page, limit); err != nil {
		h.logger.Error("Failed to refresh notifications", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to refresh notifications"})
		return
	}
	c.JSON(http.StatusOK, h.notificationService.Snapshot())
}

// MarkRead marks one notification as read
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id := c.Param("id")

	if err := h.notificationService.MarkRead(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to mark notification as read",
			zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to mark notification as read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": h.notificationService.Snapshot().UnreadCount})
}

// MarkAllRead marks every notification as read
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationService.MarkAllRead(c.Request.Context()); err != nil {
		h.logger.Error("Failed to mark all notifications as read", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to mark all notifications as read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": 0})
}

// Delete removes one notification
// DELETE /api/v1/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.notificationService.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to delete notification",
			zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to delete notification"})
		return
	}
	c.Status(http.StatusNoContent)
}

// SendTest asks the platform to emit a test push event
// POST /api/v1/notifications/test
func (h *NotificationHandler) SendTest(c *gin.Context) {
	if err := h.notificationService.SendTest(c.Request.Context()); err != nil {
		h.logger.Error("Failed to trigger test notification", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to trigger test notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
