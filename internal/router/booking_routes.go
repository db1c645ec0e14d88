package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-agency/internal/handler"
	"github.com/iliyamo/travel-agency/internal/middleware"
)

// RegisterBookings registers group bookings.  The share-token routes are
// public: the preview goes through cache, and join accepts an optional
// bearer so members join under their account instead of as a guest.
func RegisterBookings(e *echo.Echo, b *handler.BookingsHandler, jwtSecret string, cache, limit echo.MiddlewareFunc) {
	e.GET(handler.SharedPathPrefix+":token", b.Shared, cache)
	e.POST(handler.SharedPathPrefix+":token/join", b.Join,
		middleware.OptionalJWT(jwtSecret),
		middleware.RoleIfAuthenticated(handler.RoleCustomer, handler.RoleAdmin),
		limit)

	g := e.Group("/v1/bookings", authenticated(jwtSecret)...)
	g.POST("", b.Create)
	g.GET("", b.List)
	g.GET("/:id", b.Get)
	g.POST("/:id/cancel", b.Cancel)
	g.GET("/:id/share", b.Share)
}
