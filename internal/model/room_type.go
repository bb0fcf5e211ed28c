package model

import "time"

// RoomType is a class of room within a hotel (e.g. "Deluxe Suite"),
// not an individual physical room. TotalRooms is the nominal capacity
// for every calendar day; it can be lowered after reservations exist,
// which triggers oversell reconciliation.
//
// Fields:
//  ID                 – primary key identifier.
//  HotelID            – owning hotel.
//  Name               – display name of the room class.
//  Amenities          – comma separated amenity tags.
//  PricePerNightCents – nightly price in cents.
//  TotalRooms         – nominal capacity per day.
//  Beds               – number of beds per room.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type RoomType struct {
	ID                 uint64    // room_types.id
	HotelID            uint64    // room_types.hotel_id
	Name               string    // room_types.name
	Amenities          string    // room_types.amenities
	PricePerNightCents int64     // room_types.price_per_night_cents
	TotalRooms         int       // room_types.total_rooms
	Beds               int       // room_types.beds
	CreatedAt          time.Time // room_types.created_at
	UpdatedAt          time.Time // room_types.updated_at
}
