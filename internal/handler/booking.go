package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
	"github.com/iliyamo/meeting-room-booking/internal/service"
)

// BookingHandler exposes booking admission over HTTP. Every route runs
// behind JWTAuth; the caller is passed to the admission service as actor.
type BookingHandler struct {
	Admission *service.Admission
}

func NewBookingHandler(a *service.Admission) *BookingHandler {
	if a == nil {
		panic("nil admission passed to NewBookingHandler")
	}
	return &BookingHandler{Admission: a}
}

// List returns bookings ordered by id, optionally narrowed by room_id and
// user_id query parameters.
func (h *BookingHandler) List(c echo.Context) error {
	p, err := pageParams(c, defaultLimit)
	if err != nil {
		return err
	}
	f := repository.BookingFilter{Page: p}
	if f.RoomID, err = optionalID(c, "room_id"); err != nil {
		return err
	}
	if f.UserID, err = optionalID(c, "user_id"); err != nil {
		return err
	}
	bookings, err := h.Admission.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.Admission.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Create(c echo.Context) error {
	var in model.BookingInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	who, err := actor(c)
	if err != nil {
		return err
	}
	b, err := h.Admission.Admit(c.Request().Context(), service.RequestFromInput(in, who))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b)
}

// Update overwrites the booking and replaces its members and guests.
func (h *BookingHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in model.BookingInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	who, err := actor(c)
	if err != nil {
		return err
	}
	b, err := h.Admission.Readmit(c.Request().Context(), id, service.RequestFromInput(in, who))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	who, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.Admission.Cancel(c.Request().Context(), id, who); err != nil {
		return err
	}
	return deleted(c, "booking")
}

func optionalID(c echo.Context, name string) (uint64, error) {
	s := c.QueryParam(name)
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
