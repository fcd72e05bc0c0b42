package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

// RoomHandler serves room CRUD and the availability check.
type RoomHandler struct {
	Rooms    *repository.RoomRepo
	Bookings *repository.BookingRepo
}

func NewRoomHandler(rooms *repository.RoomRepo, bookings *repository.BookingRepo) *RoomHandler {
	if rooms == nil || bookings == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, Bookings: bookings}
}

func (h *RoomHandler) List(c echo.Context) error { return h.list(c, false) }

// ListExecutive returns only rooms reserved for executives.
func (h *RoomHandler) ListExecutive(c echo.Context) error { return h.list(c, true) }

func (h *RoomHandler) list(c echo.Context, executiveOnly bool) error {
	p, err := pageParams(c, defaultLimit)
	if err != nil {
		return err
	}
	rooms, err := h.Rooms.List(c.Request().Context(), p, executiveOnly)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rooms)
}

func (h *RoomHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, room)
}

func (h *RoomHandler) Create(c echo.Context) error {
	var in model.RoomInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	room := in.Room()
	if err := h.Rooms.Create(c.Request().Context(), &room); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, room)
}

func (h *RoomHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var patch model.RoomPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	ctx := c.Request().Context()
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := patch.Apply(room); err != nil {
		return err
	}
	if err := h.Rooms.Update(ctx, room); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, room)
}

// Delete removes the room. Its bookings stay with room_id cleared.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Rooms.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return deleted(c, "room")
}

type availabilityResp struct {
	RoomID    uint64    `json:"room_id"`
	Start     time.Time `json:"start_datetime"`
	End       time.Time `json:"end_datetime"`
	Available bool      `json:"available"`
}

// Availability reports whether the room has no booking intersecting the
// [start, end) window given as RFC 3339 query parameters.
func (h *RoomHandler) Availability(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start must be an RFC 3339 timestamp")
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end must be an RFC 3339 timestamp")
	}
	if !end.After(start) {
		return echo.NewHTTPError(http.StatusBadRequest, "end must be after start")
	}

	ctx := c.Request().Context()
	if _, err := h.Rooms.GetByID(ctx, id); err != nil {
		return err
	}
	start, end = start.UTC(), end.UTC()
	busy, err := h.Bookings.Overlaps(ctx, id, start, end, 0)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, availabilityResp{RoomID: id, Start: start, End: end, Available: !busy})
}
