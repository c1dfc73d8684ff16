package router

import (
	"github.com/labstack/echo/v4"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/handler"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/middleware"
)

// RegisterGuest registers the checkout flow and the guest's account
// pages under /v1. A JWT is optional on the flow itself so visitors can
// book without an account: an anonymous reservation is operated by
// whoever holds its id, while a reservation created under an account is
// guarded by the ownership check inside the handlers. The
// my-reservations listing is account data and requires a valid JWT.
// Extra middleware (the rate limiter) applies to every route.
func RegisterGuest(e *echo.Echo, h *handler.GuestHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
	flow := e.Group("/v1", middleware.OptionalJWT(jwtSecret))
	flow.Use(mw...)
	flow.POST("/reservations", h.CreateReservation)
	flow.POST("/reservations/:id/rooms", h.AssignRooms)
	flow.POST("/reservations/:id/guests", h.SetGuests)
	flow.GET("/reservations/:id/guests", h.ListGuests)
	flow.POST("/reservations/:id/payment", h.RecordPayment)
	flow.POST("/reservations/:id/booking", h.FinalizeBooking)
	flow.GET("/reservations/:id/receipt", h.GetReceipt)
	flow.DELETE("/reservations/:id", h.CancelReservation)

	mine := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("GUEST", "STAFF"),
	)
	mine.Use(mw...)
	mine.GET("/my-reservations", h.ListReservations)
}
