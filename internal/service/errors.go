package service

import (
	"errors"
	"time"
)

var (
	// ErrNotFound reports that the addressed record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized reports that the requesting user is neither the
	// guest nor the owning hotel's owner.
	ErrUnauthorized = errors.New("not allowed")

	// ErrInvalidDateRange reports a degenerate or inverted stay range.
	ErrInvalidDateRange = errors.New("check-out must be after check-in")

	// ErrStayTooLong reports a stay exceeding the maximum bookable
	// length.
	ErrStayTooLong = errors.New("stay exceeds the maximum length")

	// ErrAlreadyCancelled reports a cancellation of something already
	// cancelled.
	ErrAlreadyCancelled = errors.New("already cancelled")

	// ErrBookingCancelled reports an operation against a booking in
	// its terminal CANCELLED state.
	ErrBookingCancelled = errors.New("booking is cancelled")

	// ErrNothingToCancel reports a booking cancellation whose flags,
	// after normalization against the booking's actual legs, name
	// nothing.
	ErrNothingToCancel = errors.New("nothing to cancel")

	// ErrNothingToBook reports a checkout with neither a hotel nor a
	// flight leg.
	ErrNothingToBook = errors.New("nothing to book")

	// ErrPassengerRequired reports a flight checkout without passenger
	// details.
	ErrPassengerRequired = errors.New("passenger details required for flight booking")

	// ErrFlightNotFound reports that the external flight system has no
	// booking under the given reference and last name.
	ErrFlightNotFound = errors.New("flight booking not found")

	// ErrExternalBooking wraps a failed external flight booking call.
	// The checkout is aborted with no local state created.
	ErrExternalBooking = errors.New("external flight booking failed")

	// ErrInvalidCapacity reports a capacity adjustment below zero.
	ErrInvalidCapacity = errors.New("total rooms must not be negative")
)

// RoomUnavailableError reports the first fully booked day that blocked
// a reservation attempt.
type RoomUnavailableError struct {
	Date time.Time
}

func (e *RoomUnavailableError) Error() string {
	return "room unavailable on " + e.Date.Format("2006-01-02")
}
