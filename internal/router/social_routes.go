package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-agency/internal/handler"
)

// RegisterSocial registers friend codes, friend requests, notifications
// and wishlists.  limit guards the endpoints that mint or spend friend
// codes.
func RegisterSocial(e *echo.Echo, f *handler.FriendsHandler, n *handler.NotificationsHandler, w *handler.WishlistHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/friends", authenticated(jwtSecret)...)

	// ---- Codes ----
	g.POST("/code/generate", f.GenerateCode, limit)
	g.GET("/code", f.GetCode)

	// ---- Requests ----
	g.POST("/request", f.SendRequest, limit)
	g.GET("/requests", f.ListRequests)
	g.POST("/accept/:friendshipId", f.Accept)
	g.POST("/reject/:friendshipId", f.Reject)

	// ---- Friends ----
	g.GET("", f.ListFriends)
	g.DELETE("/:friendshipId", f.Remove)
	g.GET("/shared/wishlist/:friendId", f.SharedWishlist)

	// ---- Notifications ----
	g.GET("/notifications", n.List)
	g.PATCH("/notifications/:id/read", n.MarkRead)

	wl := e.Group("/v1/wishlist", authenticated(jwtSecret)...)
	wl.GET("", w.List)
	wl.POST("", w.Add)
	wl.DELETE("/:itemType/:itemId", w.Remove)
}
