package service

import (
	"context"
	"fmt"

	"github.com/avelora/travel-booking/internal/metrics"
	"github.com/avelora/travel-booking/internal/model"
)

// CapacityService applies owner capacity changes to a room type and
// reconciles the availability ledger afterwards. Lowering capacity
// below what is already booked oversells some days; the reconciler
// resolves that by forcibly cancelling the latest-starting overlapping
// reservations until every ledger day is non-negative again. The whole
// adjustment runs in one transaction under the room's row lock, so no
// reservation can slip in while days are transiently negative.
type CapacityService struct {
	store    Store
	notifier Notifier
}

func NewCapacityService(store Store, notifier Notifier) *CapacityService {
	return &CapacityService{store: store, notifier: notifier}
}

// AdjustCapacity sets the room type's total capacity and returns the
// reservations the reconciler had to cancel to keep the ledger
// consistent. Only the hotel owner may adjust capacity.
func (s *CapacityService) AdjustCapacity(ctx context.Context, ownerID, roomID uint64, newTotal int) ([]model.Reservation, error) {
	if newTotal < 0 {
		return nil, ErrInvalidCapacity
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollbackUnlessCommitted(tx)

	room, err := tx.RoomForUpdate(ctx, roomID)
	if err != nil {
		return nil, err
	}
	hotel, err := tx.Hotel(ctx, room.HotelID)
	if err != nil {
		return nil, err
	}
	if hotel.OwnerID != ownerID {
		return nil, ErrUnauthorized
	}

	diff := newTotal - room.TotalRooms
	if diff == 0 {
		return nil, tx.Commit()
	}

	// Shift every materialized day by the capacity delta so already
	// booked rooms stay booked; days without a row follow the new
	// total implicitly.
	if err := tx.Shift(ctx, roomID, diff); err != nil {
		return nil, err
	}
	if err := tx.SetTotalRooms(ctx, roomID, newTotal); err != nil {
		return nil, err
	}

	cancelled, clamped, err := reconcileOversold(ctx, tx, roomID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.OversoldDaysReconciled.Add(float64(clamped))
	for _, res := range cancelled {
		metrics.ReservationsCancelled.WithLabelValues("reconciler").Inc()
		notify(ctx, s.notifier, res.UserID, "Reservation cancelled",
			fmt.Sprintf("Your reservation from %s to %s was cancelled because the hotel reduced its room capacity.",
				res.CheckInDate.Format("2006-01-02"), res.CheckOutDate.Format("2006-01-02")))
	}
	return cancelled, nil
}

// reconcileOversold drains negative ledger days for one room inside an
// open transaction holding the room lock. Each round re-queries for a
// negative day rather than working off a cached list: crediting a
// cancelled reservation's full range can heal other days too, and a
// stale list would cancel more stays than necessary.
func reconcileOversold(ctx context.Context, tx Tx, roomID uint64) (cancelled []model.Reservation, clamped int, err error) {
	for {
		day, ok, err := tx.FirstOversold(ctx, roomID)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			return cancelled, clamped, nil
		}

		// Latest check-in first: guests who booked the furthest out
		// keep their rooms.
		victims, err := tx.Overlapping(ctx, roomID, day.Date, -day.AvailableRooms)
		if err != nil {
			return nil, 0, err
		}
		for _, res := range victims {
			ok, err := tx.MarkReservationCancelled(ctx, res.ID)
			if err != nil {
				return nil, 0, err
			}
			if !ok {
				continue
			}
			if err := tx.CreditRange(ctx, res.RoomTypeID, res.CheckInDate, res.CheckOutDate); err != nil {
				return nil, 0, err
			}
			if err := detachReservation(ctx, tx, res.ID); err != nil {
				return nil, 0, err
			}
			cancelled = append(cancelled, res)
		}

		// Cancelling a victim credits this day by exactly one, so the
		// counter can land at zero but never above it. When fewer
		// overlapping reservations exist than rooms were removed, the
		// day stays negative and is clamped to zero; the row then
		// never reappears in the oversold query, which is what makes
		// the loop terminate.
		avail, exists, err := tx.Day(ctx, roomID, day.Date)
		if err != nil {
			return nil, 0, err
		}
		if exists && avail < 0 {
			if err := tx.SetDayRooms(ctx, day.ID, 0); err != nil {
				return nil, 0, err
			}
			clamped++
		}
	}
}

// DeleteRoomType removes a room type entirely: cancels its remaining
// reservations, drops its ledger rows and deletes the row itself.
// Returns the cancelled reservations so callers can report them.
func (s *CapacityService) DeleteRoomType(ctx context.Context, ownerID, roomID uint64) ([]model.Reservation, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollbackUnlessCommitted(tx)

	room, err := tx.RoomForUpdate(ctx, roomID)
	if err != nil {
		return nil, err
	}
	hotel, err := tx.Hotel(ctx, room.HotelID)
	if err != nil {
		return nil, err
	}
	if hotel.OwnerID != ownerID {
		return nil, ErrUnauthorized
	}

	victims, err := tx.ActiveReservations(ctx, roomID)
	if err != nil {
		return nil, err
	}
	for _, res := range victims {
		ok, err := tx.MarkReservationCancelled(ctx, res.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := detachReservation(ctx, tx, res.ID); err != nil {
			return nil, err
		}
	}
	if err := tx.DeleteDaysForRoom(ctx, roomID); err != nil {
		return nil, err
	}
	if err := tx.DeleteRoom(ctx, roomID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	for _, res := range victims {
		metrics.ReservationsCancelled.WithLabelValues("owner").Inc()
		notify(ctx, s.notifier, res.UserID, "Reservation cancelled",
			fmt.Sprintf("Your reservation at %s was cancelled because the room type was removed.", hotel.Name))
	}
	return victims, nil
}
