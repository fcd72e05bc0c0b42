package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/meeting-room-booking/internal/repository"
	"github.com/iliyamo/meeting-room-booking/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

// notFoundOrder lists not-found sentinels from most to least specific; the
// first match names the missing entity in the response.
var notFoundOrder = []error{
	service.ErrPrimaryUserNotFound,
	service.ErrMemberNotFound,
	repository.ErrUserNotFound,
	repository.ErrRoomNotFound,
	repository.ErrBookingNotFound,
	repository.ErrGuestNotFound,
	repository.ErrArticleNotFound,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps service
// errors to status codes and renders {"error": "<message>"}. Unexpected
// errors are logged and answered with a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := resolveError(err, log, c)
		if code == http.StatusUnauthorized {
			c.Response().Header().Set("WWW-Authenticate", "Bearer")
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			return he.Code, m
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Error()
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		for _, target := range notFoundOrder {
			if errors.Is(err, target) {
				return http.StatusNotFound, target.Error()
			}
		}
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrCapacityExceeded):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, service.ErrRoomUnavailable):
		return http.StatusConflict, service.ErrRoomUnavailable.Error()
	case errors.Is(err, service.ErrEmployeeNumberTaken):
		return http.StatusConflict, "employee number already exists"
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict, "already exists"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")
	return http.StatusInternalServerError, "internal server error"
}
