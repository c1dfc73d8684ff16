// Package handler exposes HTTP handlers for both authenticated and public
// endpoints. This file defines handlers for the public browsing API. These
// routes allow unauthenticated users to browse room types and check
// availability for a stay without requiring authentication.

package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/engine"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/model"
)

// PublicHandler aggregates dependencies needed for unauthenticated browsing.
type PublicHandler struct {
	Engine *engine.Engine
	Store  engine.Store
}

// NewPublicHandler constructs a PublicHandler. Both dependencies must be
// non-nil.
func NewPublicHandler(eng *engine.Engine, store engine.Store) *PublicHandler {
	if eng == nil || store == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Engine: eng, Store: store}
}

// PublicRoomType represents a room type exposed via the public API.
type PublicRoomType struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	NightlyRate string `json:"nightly_rate"`
	RateCents   int64  `json:"rate_cents"`
	Capacity    uint32 `json:"capacity"`
	TotalCount  uint32 `json:"total_count"`
}

// AvailabilityItem is one room type together with the rooms free for the
// requested stay.
type AvailabilityItem struct {
	PublicRoomType
	AvailableRooms []uint64 `json:"available_room_ids"`
	Available      int      `json:"available"`
}

// GetRoomTypes returns every room type with its nightly rate. Response
// JSON contains an "items" array of PublicRoomType.
func (h *PublicHandler) GetRoomTypes(c echo.Context) error {
	ctx := c.Request().Context()
	types, err := h.Store.RoomTypes(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicRoomType, 0, len(types))
	for _, rt := range types {
		out = append(out, PublicRoomType{
			ID:          rt.ID,
			Name:        rt.Name,
			NightlyRate: model.FormatCents(rt.NightlyRateCents),
			RateCents:   rt.NightlyRateCents,
			Capacity:    rt.Capacity,
			TotalCount:  rt.TotalCount,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetAvailability lists, for each room type, the rooms free for the whole
// stay given by the check_in and check_out query parameters (YYYY-MM-DD,
// half-open: checkout day is not part of the stay). An optional
// room_type_id parameter restricts the answer to one type.
func (h *PublicHandler) GetAvailability(c echo.Context) error {
	ctx := c.Request().Context()
	stay, err := model.ParseStayRange(c.QueryParam("check_in"), c.QueryParam("check_out"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in and check_out must be valid dates with check_in before check_out"})
	}

	var types []model.RoomType
	if raw := c.QueryParam("room_type_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room_type_id"})
		}
		rt, err := h.Store.RoomTypeByID(ctx, id)
		if err != nil {
			if err == engine.ErrNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "room type not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		types = []model.RoomType{rt}
	} else {
		types, err = h.Store.RoomTypes(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}

	items := make([]AvailabilityItem, 0, len(types))
	for _, rt := range types {
		rooms, err := h.Engine.FindAvailableRooms(ctx, rt.ID, stay)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		ids := make([]uint64, 0, len(rooms))
		for _, rm := range rooms {
			ids = append(ids, rm.ID)
		}
		items = append(items, AvailabilityItem{
			PublicRoomType: PublicRoomType{
				ID:          rt.ID,
				Name:        rt.Name,
				NightlyRate: model.FormatCents(rt.NightlyRateCents),
				RateCents:   rt.NightlyRateCents,
				Capacity:    rt.Capacity,
				TotalCount:  rt.TotalCount,
			},
			AvailableRooms: ids,
			Available:      len(ids),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"check_in_date":  stay.CheckInString(),
		"check_out_date": stay.CheckOutString(),
		"nights":         stay.Nights(),
		"items":          items,
	})
}
