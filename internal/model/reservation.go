package model

import "time"

// Reservation statuses. A reservation is RESERVED from creation until
// it is cancelled by the guest, the hotel owner, or the capacity
// reconciler. CANCELLED is terminal.
const (
	ReservationReserved  = "RESERVED"
	ReservationCancelled = "CANCELLED"
)

// Reservation records one hotel stay: a room type held for a user
// over [CheckInDate, CheckOutDate). The checkout day itself is not
// occupied. Its lifecycle is independent of the Booking that may
// reference it; cancelling a reservation detaches it from the parent
// booking but does not delete the booking.
//
// Fields:
//  ID              – primary key identifier.
//  RoomTypeID      – room type being reserved.
//  UserID          – guest who made the reservation.
//  CheckInDate     – first night of the stay (inclusive).
//  CheckOutDate    – departure date (exclusive).
//  TotalPriceCents – price_per_night_cents × nights at reservation time.
//  Status          – RESERVED or CANCELLED.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64    // reservations.id
	RoomTypeID      uint64    // reservations.room_type_id
	UserID          uint64    // reservations.user_id
	CheckInDate     time.Time // reservations.check_in_date (DATE)
	CheckOutDate    time.Time // reservations.check_out_date (DATE)
	TotalPriceCents int64     // reservations.total_price_cents
	Status          string    // reservations.status
	CreatedAt       time.Time // reservations.created_at
	UpdatedAt       time.Time // reservations.updated_at
}

// Nights returns the number of nights covered by the stay.
func (r *Reservation) Nights() int {
	return int(r.CheckOutDate.Sub(r.CheckInDate).Hours() / 24)
}
