package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/service"
)

type GuestUserHandler struct {
	Guests *service.GuestService
}

func NewGuestUserHandler(guests *service.GuestService) *GuestUserHandler {
	if guests == nil {
		panic("nil service passed to NewGuestUserHandler")
	}
	return &GuestUserHandler{Guests: guests}
}

func (h *GuestUserHandler) List(c echo.Context) error {
	p, err := pageParams(c, defaultLimit)
	if err != nil {
		return err
	}
	guests, err := h.Guests.List(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, guests)
}

func (h *GuestUserHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	g, err := h.Guests.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

// Create stores a guest. A booking_id that does not exist yields 404, one
// held by someone else 403 and one whose room is full 400.
func (h *GuestUserHandler) Create(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	var in model.GuestInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	g, err := h.Guests.Create(c.Request().Context(), in, who)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, g)
}

func (h *GuestUserHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	who, err := actor(c)
	if err != nil {
		return err
	}
	var patch model.GuestPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	g, err := h.Guests.Update(c.Request().Context(), id, patch, who)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

func (h *GuestUserHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	who, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.Guests.Delete(c.Request().Context(), id, who); err != nil {
		return err
	}
	return deleted(c, "guest user")
}
