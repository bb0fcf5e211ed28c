// Package service holds the inventory, reservation, capacity and
// booking engines. All persistence goes through the Store and Tx
// interfaces so the engines can be tested against an in-memory
// implementation while production wires in MySQL.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/avelora/travel-booking/internal/model"
)

// isTxDone reports the rollback-after-commit error from database/sql,
// which the deferred rollback pattern ignores.
func isTxDone(err error) bool {
	return errors.Is(err, sql.ErrTxDone)
}

// Store opens transactions and serves the plain reads the engines need
// outside a transaction. Implementations report missing rows as
// ErrNotFound.
type Store interface {
	Begin(ctx context.Context) (Tx, error)

	Room(ctx context.Context, id uint64) (model.RoomType, error)
	Hotel(ctx context.Context, id uint64) (model.Hotel, error)
	Reservation(ctx context.Context, id uint64) (model.Reservation, error)
	Booking(ctx context.Context, id uint64) (model.Booking, error)
}

// Tx is one transaction over the booking state. RoomForUpdate locks
// the room type row; every mutation of a room's availability ledger
// must happen under that lock, which serializes concurrent
// reservations and capacity reconciliations per room.
type Tx interface {
	Commit() error
	Rollback() error

	RoomForUpdate(ctx context.Context, roomID uint64) (model.RoomType, error)
	SetTotalRooms(ctx context.Context, roomID uint64, total int) error
	DeleteRoom(ctx context.Context, roomID uint64) error
	Hotel(ctx context.Context, id uint64) (model.Hotel, error)

	// Day reports the stored ledger counter for one calendar day.
	// ok=false means no row exists, which the engines interpret as
	// fully available (the room's total capacity).
	Day(ctx context.Context, roomID uint64, day time.Time) (int, bool, error)
	Debit(ctx context.Context, roomID uint64, day time.Time, totalRooms int) error
	CreditRange(ctx context.Context, roomID uint64, from, to time.Time) error
	Shift(ctx context.Context, roomID uint64, diff int) error
	FirstOversold(ctx context.Context, roomID uint64) (model.AvailabilityDay, bool, error)
	SetDayRooms(ctx context.Context, dayID uint64, rooms int) error
	DeleteDaysForRoom(ctx context.Context, roomID uint64) error

	CreateReservation(ctx context.Context, res *model.Reservation) error
	Reservation(ctx context.Context, id uint64) (model.Reservation, error)
	MarkReservationCancelled(ctx context.Context, id uint64) (bool, error)
	Overlapping(ctx context.Context, roomID uint64, day time.Time, limit int) ([]model.Reservation, error)
	ActiveReservations(ctx context.Context, roomID uint64) ([]model.Reservation, error)

	CreateBooking(ctx context.Context, b *model.Booking) error
	Booking(ctx context.Context, id uint64) (model.Booking, error)
	BookingByReservation(ctx context.Context, reservationID uint64) (model.Booking, bool, error)
	UpdateBookingRefs(ctx context.Context, b *model.Booking) error
}

// dateOnly truncates a timestamp to its calendar day in UTC. All
// ledger arithmetic works on these normalized values.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// eachDay calls fn for every calendar day in [from, to). The checkout
// day is excluded: the guest has left and the room can be resold.
func eachDay(from, to time.Time, fn func(day time.Time) error) error {
	for d := dateOnly(from); d.Before(dateOnly(to)); d = d.AddDate(0, 0, 1) {
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}

// nights returns the number of nights between check-in and check-out.
func nights(checkIn, checkOut time.Time) int {
	return int(dateOnly(checkOut).Sub(dateOnly(checkIn)).Hours() / 24)
}
