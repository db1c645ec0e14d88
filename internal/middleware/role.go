package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// RequireRole admits identities whose role claim is one of roles.  It runs
// after JWTAuth; a request that reaches it without an identity is 401.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUserID(c) == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			role, _ := c.Get(ContextRole).(string)
			if !slices.Contains(roles, role) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RoleIfAuthenticated applies the RequireRole check only when OptionalJWT
// found an identity.  Anonymous requests pass through.
func RoleIfAuthenticated(roles ...string) echo.MiddlewareFunc {
	require := RequireRole(roles...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		checked := require(next)
		return func(c echo.Context) error {
			if CurrentUserID(c) == "" {
				return next(c)
			}
			return checked(c)
		}
	}
}
