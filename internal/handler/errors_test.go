package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/meeting-room-booking/internal/repository"
	"github.com/iliyamo/meeting-room-booking/internal/service"
)

func TestResolveError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"primary user", fmt.Errorf("admit: %w", service.ErrPrimaryUserNotFound), http.StatusNotFound, "primary user not found"},
		{"member", service.ErrMemberNotFound, http.StatusNotFound, "member user not found"},
		{"room", service.ErrRoomNotFound, http.StatusNotFound, "room not found"},
		{"guest", repository.ErrGuestNotFound, http.StatusNotFound, "guest user not found"},
		{"bare not found", service.ErrNotFound, http.StatusNotFound, "not found"},
		{"access", fmt.Errorf("%w: executive room", service.ErrAccessDenied), http.StatusForbidden, "access denied: executive room"},
		{"capacity", service.ErrCapacityExceeded, http.StatusBadRequest, "room capacity exceeded"},
		{"capacity reason", fmt.Errorf("%w: 3 attendees for 2 seats", service.ErrCapacityExceeded), http.StatusBadRequest, "room capacity exceeded: 3 attendees for 2 seats"},
		{"validation", &service.ValidationError{Field: "end_datetime", Reason: "must be after start"}, http.StatusBadRequest, "end_datetime: must be after start"},
		{"unauthorized", service.ErrUnauthorized, http.StatusUnauthorized, "invalid credentials"},
		{"overlap", service.ErrRoomUnavailable, http.StatusConflict, service.ErrRoomUnavailable.Error()},
		{"employee number", service.ErrEmployeeNumberTaken, http.StatusConflict, "employee number already exists"},
		{"duplicate", repository.ErrDuplicate, http.StatusConflict, "already exists"},
		{"echo", echo.NewHTTPError(http.StatusTeapot, "short and stout"), http.StatusTeapot, "short and stout"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}
	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			code, msg := resolveError(tc.err, zerolog.Nop(), c)
			assert.Equal(t, tc.code, code)
			assert.Equal(t, tc.msg, msg)
		})
	}
}

func TestErrorHandlerSetsChallengeOn401(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/token", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(service.ErrUnauthorized, c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"error":"invalid credentials"}`, rec.Body.String())
}

func TestPageParams(t *testing.T) {
	e := echo.New()
	ctx := func(q string) echo.Context {
		return e.NewContext(httptest.NewRequest(http.MethodGet, "/x"+q, nil), httptest.NewRecorder())
	}

	p, err := pageParams(ctx(""), defaultLimit)
	assert.NoError(t, err)
	assert.Equal(t, repository.Page{Skip: 0, Limit: 100}, p)

	p, err = pageParams(ctx("?skip=20&limit=5"), defaultArticleLimit)
	assert.NoError(t, err)
	assert.Equal(t, repository.Page{Skip: 20, Limit: 5}, p)

	for _, q := range []string{"?skip=-1", "?limit=0", "?limit=501", "?skip=x"} {
		_, err = pageParams(ctx(q), defaultLimit)
		assert.Error(t, err, q)
	}
}
