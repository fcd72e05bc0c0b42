package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/middleware"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
	"github.com/iliyamo/meeting-room-booking/internal/service"
)

const (
	defaultLimit        = 100
	defaultArticleLimit = 10
	maxLimit            = 500
)

// getUserID extracts the user_id set by JWTAuth and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// actor returns the authenticated caller, or 401 when the route is not
// behind JWTAuth.
func actor(c echo.Context) (*service.Principal, error) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return &p, nil
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// pageParams reads skip and limit from the query string. limit falls back
// to def and must lie in 1..maxLimit.
func pageParams(c echo.Context, def int) (repository.Page, error) {
	p := repository.Page{Limit: def}
	if s := c.QueryParam("skip"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return p, echo.NewHTTPError(http.StatusBadRequest, "skip must be a non-negative integer")
		}
		p.Skip = n
	}
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxLimit {
			return p, echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 500")
		}
		p.Limit = n
	}
	return p, nil
}

// bindValid binds the request body into dst and runs the validator.
func bindValid(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return c.Validate(dst)
}

func deleted(c echo.Context, what string) error {
	return c.JSON(http.StatusOK, echo.Map{"message": what + " deleted"})
}
