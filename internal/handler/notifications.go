package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-agency/internal/model"
	"github.com/iliyamo/travel-agency/internal/service"
)

type NotificationsHandler struct {
	Notifications *service.Notifications
}

func NewNotificationsHandler(n *service.Notifications) *NotificationsHandler {
	return &NotificationsHandler{Notifications: n}
}

// List returns the caller's notifications, newest first.  ?unread=true
// keeps only unread ones.
func (h *NotificationsHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	unreadOnly := false
	if v := c.QueryParam("unread"); v != "" {
		unreadOnly, err = strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unread must be a boolean"})
		}
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Notifications.List(ctx, uid, unreadOnly)
	if err != nil {
		return respondError(c, err)
	}
	if list == nil {
		list = []model.Notification{}
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": list})
}

func (h *NotificationsHandler) MarkRead(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	n, err := h.Notifications.MarkRead(ctx, c.Param("id"), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notification": n})
}
