package model

import "time"

// Hotel represents a property listed by an owner. Room types belong
// to a hotel, and ownership checks on management operations go
// through the hotel's OwnerID.
type Hotel struct {
	ID         uint64    // hotels.id
	OwnerID    uint64    // hotels.owner_id
	Name       string    // hotels.name
	Address    string    // hotels.address
	City       string    // hotels.city
	StarRating uint8     // hotels.star_rating
	CreatedAt  time.Time // hotels.created_at
}
