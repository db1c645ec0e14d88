package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-agency/internal/handler"
	"github.com/iliyamo/travel-agency/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// authenticated returns the middleware chain shared by every bearer-only
// route: a valid access token carrying a known role.
func authenticated(jwtSecret string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleCustomer, handler.RoleAdmin),
	}
}

// RegisterAuth registers the authentication routes.  Token operations live
// under /v1/auth without a session; profile endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)              // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // keeps the refresh token
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", authenticated(jwtSecret)...)
	auth.GET("/me", a.Me)
	auth.PATCH("/me", a.UpdateMe)

	// logout also works with only a refresh token, so it stays outside the
	// protected group
	e.POST("/v1/logout", a.Logout)
}
