package handlers

import (
	"net/http"

	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.POST("/notifications", h.CreateNotification)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:id", h.UpdateStatus)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// GetNotifications returns the pending notifications of the current user, each with its sender
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	notifications, err := h.notificationService.GetNotifications(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, echo.Map{"notifications": notifications})
}

// CreateNotification records a social event from the current user
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	var req models.CreateNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	n, err := h.notificationService.CreateNotification(c.Request().Context(), getUserIDFromContext(c), req.Recipient, req.Type, req.TargetID)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusCreated, n)
}

// GetUnreadCount returns the number of pending notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notificationService.UnreadCount(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, echo.Map{"unread_count": count})
}

// MarkAllAsRead marks every pending notification except friend requests as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	marked, err := h.notificationService.MarkAllRead(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, echo.Map{"marked": marked})
}

// UpdateStatus moves a notification out of pending
func (h *NotificationHandler) UpdateStatus(c echo.Context) error {
	var req models.UpdateNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	n, err := h.notificationService.UpdateNotificationStatus(c.Request().Context(), getUserIDFromContext(c), c.Param("id"), req.Status)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, n)
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	if err := h.notificationService.DeleteNotification(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
