package router

import (
	"github.com/labstack/echo/v4"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/handler"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/middleware"
)

// RegisterStaff registers STAFF-scoped endpoints under /v1/staff.
// All routes require a valid JWT and the STAFF role. The front desk
// sees every reservation and booking, works the room board, and manages
// discount codes.
func RegisterStaff(e *echo.Echo, s *handler.StaffHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/staff",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("STAFF"),
	)
	g.Use(mw...)
	g.GET("/reservations", s.ListReservations)
	g.GET("/bookings", s.ListBookings)
	g.GET("/rooms", s.ListRooms)
	g.GET("/departing-today", s.DepartingToday)
	g.PATCH("/rooms/:id/status", s.UpdateRoomStatus)
	g.POST("/discounts", s.CreateDiscount)
	g.GET("/discounts", s.ListDiscounts)
}
