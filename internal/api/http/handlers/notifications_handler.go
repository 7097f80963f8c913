package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/api/dto"
	"github.com/civicdesk/complaint-service/internal/service"
)

// NotificationsHandler serves the citizen inbox.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List GET /api/citizen/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	page, size := pageParams(c)
	result, err := h.notifications.List(c.UserContext(), principal.UserID, page, size)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.PageResponse[dto.NotificationResponse]{
		Items: dto.NewNotificationResponses(result.Items),
		Total: result.Total,
		Page:  result.Page,
		Size:  result.Size,
	})
}

// UnreadCount GET /api/citizen/notifications/unread-count.
func (h *NotificationsHandler) UnreadCount(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.UnreadCount(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, fiber.Map{"count": count})
}

// MarkRead POST /api/citizen/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.UserContext(), principal.UserID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// MarkAllRead POST /api/citizen/notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	changed, err := h.notifications.MarkAllRead(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, fiber.Map{"updated": changed})
}
