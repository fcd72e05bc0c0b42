package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/handler"
	"github.com/iliyamo/meeting-room-booking/internal/middleware"
	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// registerUsers: reads for any authenticated caller, writes for admins.
func registerUsers(e *echo.Echo, h *handler.UserHandler, auth echo.MiddlewareFunc) {
	admin := middleware.RequireRole(model.RoleAdministrator)

	g := e.Group("/users", auth)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, admin)
	g.PUT("/:id", h.Update, admin)
	g.PATCH("/:id", h.Update, admin)
	g.DELETE("/:id", h.Delete, admin)
}

// registerRooms caches room reads in Redis and drops the cache on writes.
func registerRooms(e *echo.Echo, d Deps, auth echo.MiddlewareFunc) {
	h := d.Rooms
	admin := middleware.RequireRole(model.RoleAdministrator)
	cache := middleware.NewResponseCache(d.Config.Cache, d.Redis, "rooms", d.Log)
	read, purge := cache.Middleware(), cache.Invalidate()

	g := e.Group("/rooms", auth)
	g.GET("", h.List, read)
	g.GET("/executive", h.ListExecutive, read)
	g.GET("/:id", h.Get, read)
	g.GET("/:id/availability", h.Availability)
	g.POST("", h.Create, admin, purge)
	g.PUT("/:id", h.Update, admin, purge)
	g.PATCH("/:id", h.Update, admin, purge)
	g.DELETE("/:id", h.Delete, admin, purge)
}

func registerGuests(e *echo.Echo, h *handler.GuestUserHandler, auth echo.MiddlewareFunc) {
	g := e.Group("/guest_users", auth)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
