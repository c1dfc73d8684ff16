package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/model"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/repository"
)

// StaffHandler bundles the repositories backing the front-desk
// dashboard: reservation and booking listings, the room board, and
// discount code management.  Routes using it sit behind the STAFF role
// middleware.
type StaffHandler struct {
	Reservations *repository.ReservationRepo
	Rooms        *repository.RoomRepo
	Bookings     *repository.BookingRepo
	Discounts    *repository.DiscountRepo
	Log          *slog.Logger
}

// NewStaffHandler constructs a StaffHandler and panics if any dependency
// is nil.
func NewStaffHandler(reservations *repository.ReservationRepo, rooms *repository.RoomRepo, bookings *repository.BookingRepo, discounts *repository.DiscountRepo, log *slog.Logger) *StaffHandler {
	if reservations == nil || rooms == nil || bookings == nil || discounts == nil || log == nil {
		panic("nil dependency passed to NewStaffHandler")
	}
	return &StaffHandler{
		Reservations: reservations,
		Rooms:        rooms,
		Bookings:     bookings,
		Discounts:    discounts,
		Log:          log,
	}
}

// ListReservations handles GET /v1/staff/reservations.
func (h *StaffHandler) ListReservations(c echo.Context) error {
	items, err := h.Reservations.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListBookings handles GET /v1/staff/bookings.
func (h *StaffHandler) ListBookings(c echo.Context) error {
	items, err := h.Bookings.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListRooms handles GET /v1/staff/rooms.  The room board shows every
// room with its type and current status.
func (h *StaffHandler) ListRooms(c echo.Context) error {
	items, err := h.Rooms.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rooms"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// DepartingToday handles GET /v1/staff/departing-today.  It lists the
// non-cancelled reservations whose check-out date is today (UTC), the
// rooms the housekeeping crew should expect back.
func (h *StaffHandler) DepartingToday(c echo.Context) error {
	items, err := h.Reservations.DepartingOn(c.Request().Context(), time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load departures"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateRoomStatus handles PATCH /v1/staff/rooms/:id/status.  Only the
// front-desk transitions are allowed (check-in, check-out, maintenance
// in and out); anything else returns 409.
func (h *StaffHandler) UpdateRoomStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status := strings.ToUpper(strings.TrimSpace(body.Status))
	switch status {
	case model.RoomStatusAvailable, model.RoomStatusReserved, model.RoomStatusOccupied, model.RoomStatusMaintenance:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	if err := h.Rooms.UpdateStatus(c.Request().Context(), id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "transition not allowed"})
		}
		h.Log.Error("update room status failed", "room_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update room"})
	}
	return c.JSON(http.StatusOK, echo.Map{"room_id": id, "status": status})
}

// CreateDiscount handles POST /v1/staff/discounts.  Percent is given as
// basis points (1000 = 10%) and must stay below 10000; expiry is a
// YYYY-MM-DD date after which the code stops working.
func (h *StaffHandler) CreateDiscount(c echo.Context) error {
	var body struct {
		Code      string `json:"code"`
		PercentBP int    `json:"percent_bp"`
		ExpiresAt string `json:"expires_at"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	code := strings.ToUpper(strings.TrimSpace(body.Code))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}
	if body.PercentBP < 0 || body.PercentBP >= model.BasisPointsDenominator {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "percent_bp must be in [0, 10000)"})
	}
	expires, err := time.ParseInLocation(model.DateLayout, body.ExpiresAt, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "expires_at must be YYYY-MM-DD"})
	}
	// Codes stay valid through their expiry day.
	expires = expires.Add(24 * time.Hour)

	id, err := h.Discounts.Create(c.Request().Context(), code, body.PercentBP, expires)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "code already exists"})
		}
		h.Log.Error("create discount failed", "code", code, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create discount"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "code": code, "percent_bp": body.PercentBP})
}

// ListDiscounts handles GET /v1/staff/discounts.
func (h *StaffHandler) ListDiscounts(c echo.Context) error {
	items, err := h.Discounts.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load discounts"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
