// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when a checkout completes. It
// carries enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type BookingCreatedEvent struct {
	BookingID       uint64 `json:"booking_id"`
	Reference       string `json:"reference"`
	UserID          uint64 `json:"user_id"`
	ReservationID   uint64 `json:"reservation_id,omitempty"`
	FlightReference string `json:"flight_reference,omitempty"`
	RoomTypeID      uint64 `json:"room_type_id,omitempty"`
	CheckInDate     string `json:"check_in_date,omitempty"`
	CheckOutDate    string `json:"check_out_date,omitempty"`
	TotalPriceCents int64  `json:"total_price_cents,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// ReservationCreatedEvent is published when a standalone reservation
// is created outside the composite checkout flow.
type ReservationCreatedEvent struct {
	ReservationID   uint64 `json:"reservation_id"`
	RoomTypeID      uint64 `json:"room_type_id"`
	UserID          uint64 `json:"user_id"`
	CheckInDate     string `json:"check_in_date"`
	CheckOutDate    string `json:"check_out_date"`
	TotalPriceCents int64  `json:"total_price_cents"`
	CreatedAt       string `json:"created_at"`
}

// ReservationCancelledEvent is published for every cancelled
// reservation, whether the guest, the owner or the capacity
// reconciler triggered it.
type ReservationCancelledEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	RoomTypeID    uint64 `json:"room_type_id"`
	UserID        uint64 `json:"user_id"`
	CheckInDate   string `json:"check_in_date"`
	CheckOutDate  string `json:"check_out_date"`
	Origin        string `json:"origin"` // guest, owner or reconciler
	CancelledAt   string `json:"cancelled_at"`
}
