package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/handler"
)

// registerBookings mounts booking admission. Writes are rate limited.
func registerBookings(e *echo.Echo, h *handler.BookingHandler, auth, limit echo.MiddlewareFunc) {
	g := e.Group("/bookings", auth)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, limit)
	g.PUT("/:id", h.Update, limit)
	g.DELETE("/:id", h.Delete, limit)
}
