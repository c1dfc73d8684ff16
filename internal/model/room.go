package model

import "time"

// Room status values.  AVAILABLE and RESERVED are managed by the
// assignment engine; OCCUPIED and AVAILABLE are also toggled by the
// front desk at check-in/check-out, and MAINTENANCE is set manually.
const (
	RoomStatusAvailable   = "AVAILABLE"
	RoomStatusReserved    = "RESERVED"
	RoomStatusOccupied    = "OCCUPIED"
	RoomStatusMaintenance = "MAINTENANCE"
)

// RoomType is immutable reference data describing a category of rooms
// that share a nightly rate and capacity (e.g. "Deluxe King").
//
// Fields:
//  ID               – primary key identifier.
//  Name             – display name of the category.
//  NightlyRateCents – price per night in cents.
//  Capacity         – maximum number of occupants per room.
//  TotalCount       – physical inventory of this type.
type RoomType struct {
	ID               uint64 `json:"id"`                 // room_types.id
	Name             string `json:"name"`               // room_types.name
	NightlyRateCents int64  `json:"nightly_rate_cents"` // room_types.nightly_rate_cents
	Capacity         uint32 `json:"capacity"`           // room_types.capacity
	TotalCount       uint32 `json:"total_count"`        // room_types.total_count
}

// Room is one specific physical room belonging to exactly one RoomType.
// Its Status is shared mutable state contended by concurrent bookings;
// only the engine's claim path and the front desk may change it.
//
// Fields:
//  ID         – primary key identifier.
//  RoomTypeID – the category this room belongs to.
//  Number     – human-facing room number (e.g. "204").
//  Status     – AVAILABLE, RESERVED, OCCUPIED or MAINTENANCE.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Room struct {
	ID         uint64    `json:"id"`           // rooms.id
	RoomTypeID uint64    `json:"room_type_id"` // rooms.room_type_id
	Number     string    `json:"number"`       // rooms.number
	Status     string    `json:"status"`       // rooms.status
	CreatedAt  time.Time `json:"-"`            // rooms.created_at
	UpdatedAt  time.Time `json:"-"`            // rooms.updated_at
}
