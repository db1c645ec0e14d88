package handler // handler defines http handlers

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-agency/internal/middleware"
)

// dbTimeout bounds the store work done for one request.
const dbTimeout = 5 * time.Second

var errNoUser = errors.New("missing user_id in context")

// getUserID returns the authenticated user set by the JWT middleware.
func getUserID(c echo.Context) (string, error) {
	id := middleware.CurrentUserID(c)
	if id == "" {
		return "", errNoUser
	}
	return id, nil
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}
