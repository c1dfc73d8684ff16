package model

import "time"

// Guest is one person staying under a reservation.  Every reservation
// has 1..N guests and exactly one of them is flagged as the reservor,
// the primary contact printed on the receipt.  Shuttle fields record an
// optional airport pickup.
//
// Fields:
//  ID             – primary key identifier.
//  ReservationID  – owning reservation.
//  FirstName      – given name.
//  LastName       – family name.
//  Email          – contact email.
//  ContactNo      – phone number.
//  Address        – street address.
//  Country        – country of residence.
//  Requests       – free-form notes and requests.
//  IsReservor     – true for the primary contact.
//  ShuttleService – whether airport shuttle was requested.
//  ArrivalDate    – shuttle pickup date, nullable.
//  ArrivalTime    – shuttle pickup time (HH:MM), nullable.
type Guest struct {
	ID             uint64  `json:"id"`              // guests.id
	ReservationID  uint64  `json:"reservation_id"`  // guests.reservation_id
	FirstName      string  `json:"first_name"`      // guests.first_name
	LastName       string  `json:"last_name"`       // guests.last_name
	Email          string  `json:"email"`           // guests.email
	ContactNo      string  `json:"contact_no"`      // guests.contact_no
	Address        string  `json:"address"`         // guests.address
	Country        string  `json:"country"`         // guests.country
	Requests       string  `json:"requests"`        // guests.requests
	IsReservor     bool    `json:"is_reservor"`     // guests.is_reservor
	ShuttleService bool    `json:"shuttle_service"` // guests.shuttle_service
	ArrivalDate    *string `json:"arrival_date"`    // guests.arrival_date (nullable)
	ArrivalTime    *string `json:"arrival_time"`    // guests.arrival_time (nullable)

	CreatedAt time.Time `json:"-"` // guests.created_at
}
