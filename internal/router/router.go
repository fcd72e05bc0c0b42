// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/iliyamo/meeting-room-booking/internal/config"
	"github.com/iliyamo/meeting-room-booking/internal/handler"
	"github.com/iliyamo/meeting-room-booking/internal/middleware"
)

// Deps carries everything the routes need. Redis is optional; without it
// rate limiting and response caching are skipped.
type Deps struct {
	Config   config.Config
	Log      zerolog.Logger
	DB       *gorm.DB
	Redis    *redis.Client
	Verifier middleware.TokenVerifier

	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Rooms    *handler.RoomHandler
	Bookings *handler.BookingHandler
	Guests   *handler.GuestUserHandler
	Articles *handler.ArticleHandler
}

// RegisterRoutes registers every route of the API on e.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(d.DB))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	auth := middleware.JWTAuth(d.Verifier)
	limit := middleware.NewTokenBucket(d.Config.RateLimit, d.Redis, d.Log)

	e.POST("/token", d.Auth.Token, limit)
	e.GET("/me", d.Auth.Me, auth)

	registerUsers(e, d.Users, auth)
	registerRooms(e, d, auth)
	registerGuests(e, d.Guests, auth)
	registerBookings(e, d.Bookings, auth, limit)
	registerArticles(e, d, auth)
}
