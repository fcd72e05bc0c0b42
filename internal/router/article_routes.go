package router

import (
	"github.com/labstack/echo/v4"
)

// registerArticles: public reads, authenticated writes.
func registerArticles(e *echo.Echo, d Deps, auth echo.MiddlewareFunc) {
	h := d.Articles
	e.GET("/articles", h.List)
	e.GET("/articles/:id", h.Get)
	e.POST("/articles", h.Create, auth)
	e.PUT("/articles/:id", h.Update, auth)
	e.DELETE("/articles/:id", h.Delete, auth)
}
