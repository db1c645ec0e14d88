// Package app assembles repositories, services, handlers and routes into
// one Echo instance.  cmd/server and the end-to-end tests build the API
// the same way.
package app

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/travel-agency/internal/config"
	"github.com/iliyamo/travel-agency/internal/handler"
	"github.com/iliyamo/travel-agency/internal/middleware"
	"github.com/iliyamo/travel-agency/internal/repository"
	"github.com/iliyamo/travel-agency/internal/router"
	"github.com/iliyamo/travel-agency/internal/service"
)

// Deps are the external resources the API runs on.  Redis and Events are
// optional: without Redis rate limiting and caching are off, without
// Events domain events are discarded.
type Deps struct {
	Config    config.Config
	DB        *sql.DB
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Events    service.EventPublisher
}

// New returns a fully routed Echo instance.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())

	users := repository.NewUserRepo(d.DB)
	tokens := repository.NewTokenRepo(d.DB)
	friendships := repository.NewFriendshipRepo(d.DB)

	codes := service.NewFriendCodes(repository.NewFriendCodeRepo(d.DB), d.Config.Friends.CodeMaxAttempts)
	notes := service.NewNotifications(repository.NewNotificationRepo(d.DB))
	friends := service.NewFriendships(friendships, users, codes, notes, d.Events, d.Config.Friends)
	wishlists := service.NewWishlists(repository.NewWishlistRepo(d.DB), friendships)
	bookings := service.NewBookings(repository.NewBookingRepo(d.DB), users, d.Events)

	cache := middleware.NewResponseCache(d.Cache, d.Redis)
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(d.Config, users, tokens), d.Config.JWTSecret)
	router.RegisterSocial(e,
		handler.NewFriendsHandler(codes, friends, wishlists),
		handler.NewNotificationsHandler(notes),
		handler.NewWishlistHandler(wishlists),
		d.Config.JWTSecret, limit)
	router.RegisterBookings(e, handler.NewBookingsHandler(bookings, cache), d.Config.JWTSecret, cache.Middleware(), limit)
	return e
}
