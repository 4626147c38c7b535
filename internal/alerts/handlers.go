package alerts

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	mware "github.com/nullityv3/home-hero-sub002/internal/middleware"
	"github.com/nullityv3/home-hero-sub002/internal/port"
)

type Handler struct {
	notifications port.NotificationRepository
}

func NewHandler(n port.NotificationRepository) *Handler {
	return &Handler{notifications: n}
}

func (h *Handler) Register(g *echo.Group) {
	g.GET("/notifications", h.ListNotifications)
	g.POST("/notifications/:id/read", h.MarkNotificationRead)
}

// ListNotifications returns current user's notifications, newest first
func (h *Handler) ListNotifications(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	limit, _ := mware.Page(c)
	items, err := h.notifications.ListByUser(c.Request().Context(), uid, limit)
	if err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": items})
}

// MarkNotificationRead marks specific notification as read
func (h *Handler) MarkNotificationRead(c echo.Context) error {
	uid, ok := mware.UserID(c)
	if !ok {
		return mware.Unauthorized(c)
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return mware.WriteError(c, domain.Invalid("id", "must be a uuid"))
	}
	if err := h.notifications.MarkRead(c.Request().Context(), id, uid, time.Now().UTC()); err != nil {
		return mware.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}
