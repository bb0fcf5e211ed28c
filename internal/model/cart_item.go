package model

import "time"

// CartItem is the pre-booking staging area. Each user has at most one
// cart item (unique on UserID) holding an in-progress room selection
// with dates and/or outbound and return flight leg IDs. Promoting the
// cart into a booking clears it.
type CartItem struct {
	ID                uint64     // cart_items.id
	UserID            uint64     // cart_items.user_id (unique)
	RoomTypeID        *uint64    // cart_items.room_type_id (nullable)
	CheckInDate       *time.Time // cart_items.check_in_date (nullable)
	CheckOutDate      *time.Time // cart_items.check_out_date (nullable)
	OutboundFlightIDs []string   // cart_items.outbound_flight_ids (JSON)
	ReturnFlightIDs   []string   // cart_items.return_flight_ids (JSON)
	UpdatedAt         time.Time  // cart_items.updated_at
}
