package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/engine"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/model"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/queue"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/repository"
	queue_publisher "github.com/romannmaypbalingbing/hotel-room-reservation/internal/service"
)

// GuestHandler groups everything a guest needs to work a reservation
// from creation to the printed receipt.  All methods assume JWT
// authentication and role validation have already run in middleware.
// Ownership is enforced on every per-reservation endpoint: a caller may
// only touch their own reservations unless they hold the STAFF role.
type GuestHandler struct {
	Engine       *engine.Engine
	Reservations *repository.ReservationRepo
	Guests       *repository.GuestRepo
	Payments     *repository.PaymentRepo
	Discounts    *repository.DiscountRepo
	Bookings     *repository.BookingRepo
	Log          *slog.Logger
}

// NewGuestHandler constructs a GuestHandler with the provided
// dependencies.  All of them must be non-nil.
func NewGuestHandler(eng *engine.Engine, reservations *repository.ReservationRepo, guests *repository.GuestRepo, payments *repository.PaymentRepo, discounts *repository.DiscountRepo, bookings *repository.BookingRepo, log *slog.Logger) *GuestHandler {
	if eng == nil || reservations == nil || guests == nil || payments == nil || discounts == nil || bookings == nil || log == nil {
		panic("nil dependency passed to NewGuestHandler")
	}
	return &GuestHandler{
		Engine:       eng,
		Reservations: reservations,
		Guests:       guests,
		Payments:     payments,
		Discounts:    discounts,
		Bookings:     bookings,
		Log:          log,
	}
}

// reservationID parses the :id route parameter.
func reservationID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid reservation id")
	}
	return id, nil
}

// authorize checks that the caller may operate on the reservation.
// Staff always may. A reservation created without an account has no
// owner; holding its id is the credential, so anyone presenting it is
// allowed. An owned reservation requires the owner's JWT. Returns the
// HTTP status to respond with when access is denied, or 0 when access
// is allowed.
func (h *GuestHandler) authorize(c echo.Context, resID uint64) int {
	if isStaff(c) {
		return 0
	}
	owner, err := h.Reservations.OwnerUserID(c.Request().Context(), resID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	}
	if owner == 0 {
		return 0
	}
	userID, err := getUserID(c)
	if err != nil {
		return http.StatusUnauthorized
	}
	if owner != userID {
		return http.StatusForbidden
	}
	return 0
}

// CreateReservation handles POST /v1/reservations.  The body carries the
// stay dates and party size; the reservation starts in PENDING with no
// rooms and no cost.  Signed-in guests get the reservation bound to
// their account; without a token the reservation has no owner and the
// rest of the flow runs on its id alone.
func (h *GuestHandler) CreateReservation(c echo.Context) error {
	var owner *uint64
	if userID, err := getUserID(c); err == nil {
		owner = &userID
	}
	var body struct {
		CheckInDate  string `json:"check_in_date"`
		CheckOutDate string `json:"check_out_date"`
		Adults       int    `json:"adults"`
		Children     int    `json:"children"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	stay, err := model.ParseStayRange(body.CheckInDate, body.CheckOutDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in_date must be before check_out_date (YYYY-MM-DD)"})
	}

	id, err := h.Engine.CreateReservation(c.Request().Context(), stay, body.Adults, body.Children, owner)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidPartySize) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one adult is required"})
		}
		if errors.Is(err, model.ErrInvalidDateRange) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date range"})
		}
		h.Log.Error("create reservation failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"reservation_id": id,
		"status":         model.ReservationStatusPending,
		"check_in_date":  stay.CheckInString(),
		"check_out_date": stay.CheckOutString(),
		"nights":         stay.Nights(),
	})
}

// AssignRooms handles POST /v1/reservations/:id/rooms.  The body lists
// requested room types with quantities plus an optional discount code.
// Every requested unit comes back either as a concrete room assignment
// or as a shortfall entry naming the type that could not be fulfilled;
// partial fulfillment is reported, not rejected.  The reservation cost
// is recomputed from whatever was assigned.
func (h *GuestHandler) AssignRooms(c echo.Context) error {
	resID, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if code := h.authorize(c, resID); code != 0 {
		return c.JSON(code, echo.Map{"error": http.StatusText(code)})
	}
	var body struct {
		Rooms []engine.RoomTypeRequest `json:"rooms"`
		Code  string                   `json:"discount_code"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.Rooms) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rooms is required"})
	}
	ctx := c.Request().Context()

	var discountBP int64
	if code := strings.TrimSpace(body.Code); code != "" {
		d, err := h.Discounts.GetActiveByCode(ctx, code)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown or expired discount code"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		discountBP = int64(d.PercentBP)
	}

	result, err := h.Engine.AssignRooms(ctx, resID, body.Rooms)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrReservationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, engine.ErrReservationNotPayable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is cancelled"})
		case errors.Is(err, engine.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room type not found"})
		}
		h.Log.Error("assign rooms failed", "reservation_id", resID, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to assign rooms"})
	}

	total, err := h.Engine.PriceAssignments(ctx, resID, result.Assigned, discountBP)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidDiscount) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid discount"})
		}
		h.Log.Error("price assignments failed", "reservation_id", resID, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute cost"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"assigned":    result.Assigned,
		"shortfalls":  result.Shortfalls,
		"total_cents": total,
		"total":       model.FormatCents(total),
	})
}

// SetGuests handles POST /v1/reservations/:id/guests.  The body carries
// the full guest list; the first entry becomes the reservor.  Repeated
// calls replace the list wholesale.
func (h *GuestHandler) SetGuests(c echo.Context) error {
	resID, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if code := h.authorize(c, resID); code != 0 {
		return c.JSON(code, echo.Map{"error": http.StatusText(code)})
	}
	var body struct {
		Guests []model.Guest `json:"guests"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.Guests) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "guests is required"})
	}
	for _, g := range body.Guests {
		if strings.TrimSpace(g.FirstName) == "" || strings.TrimSpace(g.LastName) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each guest needs first_name and last_name"})
		}
	}
	if err := h.Guests.ReplaceForReservation(c.Request().Context(), resID, body.Guests); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest list cannot be empty"})
		}
		h.Log.Error("set guests failed", "reservation_id", resID, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save guests"})
	}
	return c.JSON(http.StatusOK, echo.Map{"saved": len(body.Guests)})
}

// ListGuests handles GET /v1/reservations/:id/guests.
func (h *GuestHandler) ListGuests(c echo.Context) error {
	resID, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if code := h.authorize(c, resID); code != 0 {
		return c.JSON(code, echo.Map{"error": http.StatusText(code)})
	}
	guests, err := h.Guests.ListByReservation(c.Request().Context(), resID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load guests"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": guests})
}

// RecordPayment handles POST /v1/reservations/:id/payment.  Only a
// payment method and an opaque gateway token are accepted; raw card
// numbers never reach this service.  A reservation takes exactly one
// payment, a second attempt returns 409.
func (h *GuestHandler) RecordPayment(c echo.Context) error {
	resID, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if code := h.authorize(c, resID); code != 0 {
		return c.JSON(code, echo.Map{"error": http.StatusText(code)})
	}
	var body struct {
		Method   string `json:"method"`
		TokenRef string `json:"token_ref"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Method = strings.ToUpper(strings.TrimSpace(body.Method))
	body.TokenRef = strings.TrimSpace(body.TokenRef)
	if body.Method == "" || body.TokenRef == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "method and token_ref are required"})
	}

	p := model.Payment{ReservationID: resID, Method: body.Method, TokenRef: body.TokenRef}
	if err := h.Payments.Create(c.Request().Context(), &p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "payment already recorded"})
		}
		h.Log.Error("record payment failed", "reservation_id", resID, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record payment"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"payment_id": p.ID})
}

// FinalizeBooking handles POST /v1/reservations/:id/booking.  The
// operation is idempotent: repeated calls return the same booking
// number and never create a second booking row.  On first confirmation
// a BookingConfirmedEvent is published for downstream consumers; a
// publish failure is logged but does not fail the request.
func (h *GuestHandler) FinalizeBooking(c echo.Context) error {
	resID, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if code := h.authorize(c, resID); code != 0 {
		return c.JSON(code, echo.Map{"error": http.StatusText(code)})
	}
	ctx := c.Request().Context()

	// A booking needs a payment on file first.
	if _, err := h.Payments.GetByReservation(ctx, resID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "payment required before booking"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	booking, err := h.Engine.FinalizeBooking(ctx, resID)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrReservationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, engine.ErrReservationNotPayable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is cancelled"})
		}
		h.Log.Error("finalize booking failed", "reservation_id", resID, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to finalize booking"})
	}

	h.publishConfirmation(c, resID, booking)

	return c.JSON(http.StatusOK, echo.Map{
		"booking_no": booking.BookingNo,
		"status":     booking.Status,
	})
}

// publishConfirmation emits the BookingConfirmedEvent best-effort.
func (h *GuestHandler) publishConfirmation(c echo.Context, resID uint64, booking model.Booking) {
	ctx := c.Request().Context()
	userID, _ := getUserID(c)
	ev := queue.BookingConfirmedEvent{
		ReservationID: resID,
		BookingNo:     booking.BookingNo,
		UserID:        userID,
		ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if rec, err := h.Bookings.BuildReceipt(ctx, resID); err == nil {
		ev.GuestName = rec.GuestName
		ev.CheckInDate = rec.CheckInDate
		ev.CheckOutDate = rec.CheckOutDate
		ev.Nights = rec.Nights
		ev.TotalCents = rec.TotalCents
		for _, line := range rec.Rooms {
			ev.RoomNumbers = append(ev.RoomNumbers, fmt.Sprintf("%s x%d", line.TypeName, line.Qty))
		}
	}
	if err := queue_publisher.PublishBookingConfirmed(ctx, ev); err != nil {
		h.Log.Warn("booking event publish failed", "reservation_id", resID, "err", err)
	}
}

// GetReceipt handles GET /v1/reservations/:id/receipt.  404 until the
// booking exists.
func (h *GuestHandler) GetReceipt(c echo.Context) error {
	resID, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if code := h.authorize(c, resID); code != 0 {
		return c.JSON(code, echo.Map{"error": http.StatusText(code)})
	}
	rec, err := h.Bookings.BuildReceipt(c.Request().Context(), resID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no booking for this reservation"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build receipt"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": rec})
}

// CancelReservation handles DELETE /v1/reservations/:id.  The
// reservation is marked CANCELLED and every assigned room is released,
// so the freed rooms stop blocking availability immediately.  Cancelling
// twice is a no-op.
func (h *GuestHandler) CancelReservation(c echo.Context) error {
	resID, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if code := h.authorize(c, resID); code != 0 {
		return c.JSON(code, echo.Map{"error": http.StatusText(code)})
	}
	if err := h.Engine.CancelReservation(c.Request().Context(), resID); err != nil {
		if errors.Is(err, engine.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		h.Log.Error("cancel reservation failed", "reservation_id", resID, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel reservation"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListReservations handles GET /v1/my-reservations.  It returns all
// reservations created by the current user with their assigned rooms.
// When no reservations exist, it returns an empty array.
func (h *GuestHandler) ListReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": details})
}
