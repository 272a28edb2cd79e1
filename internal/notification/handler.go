package notification

import (
	"net/http"

	"CareerConnect/internal/access"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	service *NotificationService
}

func NewNotificationHandler(service *NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) List(c echo.Context) error {
	notifications, err := h.service.List(c.Request().Context(), access.FromEcho(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	count, err := h.service.UnreadCount(c.Request().Context(), access.FromEcho(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": count})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid notification ID"})
	}
	n, err := h.service.MarkRead(c.Request().Context(), access.FromEcho(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	if err := h.service.MarkAllRead(c.Request().Context(), access.FromEcho(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
