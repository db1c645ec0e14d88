package middleware

import "github.com/labstack/echo/v4"

// CurrentUserID returns the authenticated user id stored by JWTAuth or
// OptionalJWT, or "" for anonymous requests.
func CurrentUserID(c echo.Context) string {
	if s, ok := c.Get(ContextUserID).(string); ok {
		return s
	}
	return ""
}

// subject is the rate limit identity: the user id, or "anon".
func subject(c echo.Context) string {
	if id := CurrentUserID(c); id != "" {
		return id
	}
	return "anon"
}
