package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/avelora/travel-booking/internal/metrics"
	"github.com/avelora/travel-booking/internal/model"
)

// ReservationService creates and cancels hotel reservations, keeping
// the availability ledger consistent. All ledger mutations for a
// reserve or cancel happen in one transaction under the room type's
// row lock, so two concurrent attempts for the last room cannot both
// succeed.
type ReservationService struct {
	store    Store
	notifier Notifier
}

func NewReservationService(store Store, notifier Notifier) *ReservationService {
	return &ReservationService{store: store, notifier: notifier}
}

// Reserve books one room of the given type for [checkIn, checkOut).
// Fails with RoomUnavailableError naming the first exhausted day, or
// ErrInvalidDateRange for a degenerate range.
func (s *ReservationService) Reserve(ctx context.Context, userID, roomID uint64, checkIn, checkOut time.Time) (model.Reservation, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return model.Reservation{}, err
	}
	defer rollbackUnlessCommitted(tx)

	res, ownerID, err := reserveLocked(ctx, tx, userID, roomID, checkIn, checkOut)
	if err != nil {
		return model.Reservation{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Reservation{}, err
	}

	metrics.ReservationsCreated.Inc()
	notify(ctx, s.notifier, ownerID, "New reservation",
		fmt.Sprintf("Room type %d was reserved from %s to %s.",
			roomID, res.CheckInDate.Format("2006-01-02"), res.CheckOutDate.Format("2006-01-02")))
	return res, nil
}

// Cancel cancels a reservation on behalf of requesterID, who must be
// the guest or the owner of the hotel the room belongs to. Credits the
// ledger for every night of the stay and detaches the reservation from
// its parent booking, cancelling the booking when its flight leg is
// also gone.
func (s *ReservationService) Cancel(ctx context.Context, reservationID, requesterID uint64) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer rollbackUnlessCommitted(tx)

	res, err := tx.Reservation(ctx, reservationID)
	if err != nil {
		return err
	}
	room, err := tx.RoomForUpdate(ctx, res.RoomTypeID)
	if err != nil {
		return err
	}
	hotel, err := tx.Hotel(ctx, room.HotelID)
	if err != nil {
		return err
	}
	if requesterID != res.UserID && requesterID != hotel.OwnerID {
		return ErrUnauthorized
	}
	if err := cancelLocked(ctx, tx, res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	origin := "guest"
	if requesterID != res.UserID {
		origin = "owner"
	}
	metrics.ReservationsCancelled.WithLabelValues(origin).Inc()
	notify(ctx, s.notifier, res.UserID, "Reservation cancelled",
		fmt.Sprintf("Your reservation from %s to %s was cancelled.",
			res.CheckInDate.Format("2006-01-02"), res.CheckOutDate.Format("2006-01-02")))
	return nil
}

// maxStayNights bounds a single stay so one reservation cannot
// materialize an unbounded number of ledger rows in one transaction.
// Matches the availability report's one-year range cap.
const maxStayNights = 366

// reserveLocked runs the reserve steps inside an open transaction:
// lock the room, verify every night is sellable, insert the
// reservation and debit the ledger. Returns the new reservation and
// the hotel owner's user ID for the post-commit notification.
func reserveLocked(ctx context.Context, tx Tx, userID, roomID uint64, checkIn, checkOut time.Time) (model.Reservation, uint64, error) {
	checkIn, checkOut = dateOnly(checkIn), dateOnly(checkOut)
	if !checkIn.Before(checkOut) {
		return model.Reservation{}, 0, ErrInvalidDateRange
	}
	if nights(checkIn, checkOut) > maxStayNights {
		return model.Reservation{}, 0, ErrStayTooLong
	}

	room, err := tx.RoomForUpdate(ctx, roomID)
	if err != nil {
		return model.Reservation{}, 0, err
	}
	hotel, err := tx.Hotel(ctx, room.HotelID)
	if err != nil {
		return model.Reservation{}, 0, err
	}

	// A day with no ledger row defaults to the room's full capacity.
	// The default must be applied explicitly: a zero-capacity room has
	// nothing to sell even though no row exists yet.
	err = eachDay(checkIn, checkOut, func(day time.Time) error {
		avail, ok, err := tx.Day(ctx, roomID, day)
		if err != nil {
			return err
		}
		if !ok {
			avail = room.TotalRooms
		}
		if avail <= 0 {
			return &RoomUnavailableError{Date: day}
		}
		return nil
	})
	if err != nil {
		return model.Reservation{}, 0, err
	}

	res := model.Reservation{
		RoomTypeID:      roomID,
		UserID:          userID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		TotalPriceCents: room.PricePerNightCents * int64(nights(checkIn, checkOut)),
		Status:          model.ReservationReserved,
	}
	if err := tx.CreateReservation(ctx, &res); err != nil {
		return model.Reservation{}, 0, err
	}
	err = eachDay(checkIn, checkOut, func(day time.Time) error {
		return tx.Debit(ctx, roomID, day, room.TotalRooms)
	})
	if err != nil {
		return model.Reservation{}, 0, err
	}
	return res, hotel.OwnerID, nil
}

// cancelLocked flips a reservation to CANCELLED inside an open
// transaction that already holds the room lock, credits its full date
// range back to the ledger and normalizes the parent booking. The
// conditional status update makes concurrent cancellations of the same
// reservation fail with ErrAlreadyCancelled instead of double
// crediting.
func cancelLocked(ctx context.Context, tx Tx, res model.Reservation) error {
	ok, err := tx.MarkReservationCancelled(ctx, res.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyCancelled
	}
	if err := tx.CreditRange(ctx, res.RoomTypeID, res.CheckInDate, res.CheckOutDate); err != nil {
		return err
	}
	return detachReservation(ctx, tx, res.ID)
}

// detachReservation nulls the reservation reference on the parent
// booking, if one exists, and cancels the booking once both of its
// legs are gone.
func detachReservation(ctx context.Context, tx Tx, reservationID uint64) error {
	b, found, err := tx.BookingByReservation(ctx, reservationID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	b.ReservationID = nil
	if b.Empty() {
		b.Status = model.BookingCancelled
	}
	return tx.UpdateBookingRefs(ctx, &b)
}

// rollbackUnlessCommitted discards the transaction on any early
// return. Rolling back after a successful commit is a no-op error that
// is deliberately ignored.
func rollbackUnlessCommitted(tx Tx) {
	if err := tx.Rollback(); err != nil && !isTxDone(err) {
		log.WithError(err).Warn("transaction rollback failed")
	}
}
