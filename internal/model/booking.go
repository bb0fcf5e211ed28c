package model

import "time"

// Booking statuses. BOOKED is the initial state; checkout moves a
// booking to PAID, an explicit deferral to PAY_LATER. CANCELLED is
// terminal and is reached when both component references are gone or
// on explicit full cancellation.
const (
	BookingBooked    = "BOOKED"
	BookingPaid      = "PAID"
	BookingPayLater  = "PAY_LATER"
	BookingCancelled = "CANCELLED"
)

// Booking is the user-facing unit of purchase. It ties together an
// optional local hotel Reservation and an optional external flight
// booking reference. Either reference may independently become nil as
// its component is cancelled; a booking with both references nil must
// be CANCELLED.
//
// Fields:
//  ID              – primary key identifier.
//  Reference       – public reference code handed to the user.
//  UserID          – purchasing user.
//  ReservationID   – local hotel reservation, if any (nullable).
//  FlightReference – external flight system booking reference (nullable).
//  LastName        – passenger last name kept for flight lookups (nullable).
//  Status          – BOOKED, PAID, PAY_LATER or CANCELLED.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Booking struct {
	ID              uint64    // bookings.id
	Reference       string    // bookings.reference
	UserID          uint64    // bookings.user_id
	ReservationID   *uint64   // bookings.reservation_id (nullable)
	FlightReference *string   // bookings.flight_reference (nullable)
	LastName        *string   // bookings.last_name (nullable)
	Status          string    // bookings.status
	CreatedAt       time.Time // bookings.created_at
	UpdatedAt       time.Time // bookings.updated_at
}

// Empty reports whether both component references are absent.
func (b *Booking) Empty() bool {
	return b.ReservationID == nil && b.FlightReference == nil
}
