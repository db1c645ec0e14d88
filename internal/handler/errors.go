package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-agency/internal/service"
)

// respondError writes the JSON error for err.  Domain errors keep their
// message; anything else is logged and reported as a generic 500.
func respondError(c echo.Context, err error) error {
	var exists *service.CodeExistsError
	switch {
	case errors.Is(err, errNoUser):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.As(err, &exists):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "friend code already exists", "friendCode": exists.Code})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrInvalidCode):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrSelfRequest),
		errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrAlreadyJoined),
		errors.Is(err, service.ErrCancelled):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrGenerationExhausted):
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	default:
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
