package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avelora/travel-booking/internal/model"
)

func newCapacityFixture(t *testing.T, totalRooms int) (*CapacityService, *ReservationService, *memStore, uint64, *memNotifier) {
	t.Helper()
	store := newMemStore()
	hotelID := store.addHotel(ownerID)
	roomID := store.addRoom(hotelID, totalRooms, 10000)
	notifier := &memNotifier{}
	return NewCapacityService(store, notifier), NewReservationService(store, notifier), store, roomID, notifier
}

func TestAdjustCapacityShiftsExistingRows(t *testing.T) {
	capSvc, resSvc, store, roomID, _ := newCapacityFixture(t, 3)
	ctx := context.Background()

	if _, err := resSvc.Reserve(ctx, guestA, roomID, date(2026, time.May, 1), date(2026, time.May, 2)); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	// 3 total, 1 booked: row at 2. Raising to 5 keeps 1 booked: row at 4.
	cancelled, err := capSvc.AdjustCapacity(ctx, ownerID, roomID, 5)
	if err != nil {
		t.Fatalf("AdjustCapacity: %v", err)
	}
	if len(cancelled) != 0 {
		t.Fatalf("raising capacity cancelled %d reservations", len(cancelled))
	}
	if got := store.available(roomID, date(2026, time.May, 1)); got != 4 {
		t.Errorf("May 1 available = %d, want 4", got)
	}
	// Untouched days follow the new total implicitly.
	if got := store.available(roomID, date(2026, time.May, 9)); got != 5 {
		t.Errorf("untouched day available = %d, want 5", got)
	}
}

func TestAdjustCapacityCancelsLatestCheckInsFirst(t *testing.T) {
	capSvc, resSvc, store, roomID, notifier := newCapacityFixture(t, 3)
	ctx := context.Background()

	early, err := resSvc.Reserve(ctx, guestA, roomID, date(2026, time.July, 1), date(2026, time.July, 3))
	if err != nil {
		t.Fatalf("Reserve early: %v", err)
	}
	late, err := resSvc.Reserve(ctx, guestB, roomID, date(2026, time.July, 2), date(2026, time.July, 4))
	if err != nil {
		t.Fatalf("Reserve late: %v", err)
	}

	// July 2 has both stays: counter 1. Dropping capacity to 1 makes
	// it -1, so exactly one reservation must go, and it must be the
	// latest-starting one.
	cancelled, err := capSvc.AdjustCapacity(ctx, ownerID, roomID, 1)
	if err != nil {
		t.Fatalf("AdjustCapacity: %v", err)
	}
	if len(cancelled) != 1 {
		t.Fatalf("cancelled %d reservations, want 1", len(cancelled))
	}
	if cancelled[0].ID != late.ID {
		t.Errorf("cancelled reservation %d, want latest check-in %d", cancelled[0].ID, late.ID)
	}

	stored, err := store.Reservation(ctx, early.ID)
	if err != nil || stored.Status != model.ReservationReserved {
		t.Errorf("early reservation status = %q (%v), want RESERVED", stored.Status, err)
	}
	for _, day := range []time.Time{date(2026, time.July, 1), date(2026, time.July, 2), date(2026, time.July, 3)} {
		if got := store.available(roomID, day); got < 0 {
			t.Errorf("%s left negative: %d", day.Format("2006-01-02"), got)
		}
	}
	// Only the evicted guest is notified of the forced cancellation.
	if got := notifier.countFor(guestB); got != 1 {
		t.Errorf("evicted guest notifications = %d, want 1", got)
	}
}

func TestAdjustCapacityCancelsMinimumNeeded(t *testing.T) {
	capSvc, resSvc, store, roomID, _ := newCapacityFixture(t, 3)
	ctx := context.Background()

	// Two stays on disjoint days, one room each: both rows at 2.
	a, err := resSvc.Reserve(ctx, guestA, roomID, date(2026, time.August, 1), date(2026, time.August, 2))
	if err != nil {
		t.Fatalf("Reserve A: %v", err)
	}
	b, err := resSvc.Reserve(ctx, guestB, roomID, date(2026, time.August, 5), date(2026, time.August, 6))
	if err != nil {
		t.Fatalf("Reserve B: %v", err)
	}

	// Dropping to 1 shifts both rows to 0: nothing oversold, nothing
	// cancelled.
	cancelled, err := capSvc.AdjustCapacity(ctx, ownerID, roomID, 1)
	if err != nil {
		t.Fatalf("AdjustCapacity: %v", err)
	}
	if len(cancelled) != 0 {
		t.Fatalf("cancelled %d reservations, want 0", len(cancelled))
	}
	for _, id := range []uint64{a.ID, b.ID} {
		res, err := store.Reservation(ctx, id)
		if err != nil || res.Status != model.ReservationReserved {
			t.Errorf("reservation %d status = %q (%v), want RESERVED", id, res.Status, err)
		}
	}
	for _, day := range []time.Time{date(2026, time.August, 1), date(2026, time.August, 5)} {
		if got := store.available(roomID, day); got != 0 {
			t.Errorf("%s available = %d, want 0", day.Format("2006-01-02"), got)
		}
	}
}

// When a day is deeper oversold than the reservations overlapping it
// can explain (ledger drift), cancelling everything available still
// leaves the counter negative and the reconciler must clamp it to
// zero instead of looping forever.
func TestAdjustCapacityClampsDriftedDays(t *testing.T) {
	capSvc, resSvc, store, roomID, _ := newCapacityFixture(t, 3)
	ctx := context.Background()

	day := date(2026, time.September, 1)
	var ids []uint64
	for _, guest := range []uint64{guestA, guestB, guestB + 1} {
		res, err := resSvc.Reserve(ctx, guest, roomID, day, day.AddDate(0, 0, 1))
		if err != nil {
			t.Fatalf("Reserve: %v", err)
		}
		ids = append(ids, res.ID)
	}

	// Flip two reservations to CANCELLED behind the ledger's back so
	// the day reads 0 while only one active stay overlaps it.
	store.mu.Lock()
	for _, id := range ids[:2] {
		store.reservations[id].Status = model.ReservationCancelled
	}
	store.mu.Unlock()

	// Shift to -2 with one cancellable reservation: the credit brings
	// the day to -1 and the clamp must finish the job.
	cancelled, err := capSvc.AdjustCapacity(ctx, ownerID, roomID, 1)
	if err != nil {
		t.Fatalf("AdjustCapacity: %v", err)
	}
	if len(cancelled) != 1 || cancelled[0].ID != ids[2] {
		t.Fatalf("cancelled = %+v, want just the remaining active reservation", cancelled)
	}
	if got := store.available(roomID, day); got != 0 {
		t.Errorf("clamped day available = %d, want 0", got)
	}
}

func TestAdjustCapacityRequiresOwner(t *testing.T) {
	capSvc, _, _, roomID, _ := newCapacityFixture(t, 3)
	ctx := context.Background()

	if _, err := capSvc.AdjustCapacity(ctx, guestA, roomID, 1); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
	if _, err := capSvc.AdjustCapacity(ctx, ownerID, roomID, -1); !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("got %v, want ErrInvalidCapacity", err)
	}
}

func TestDeleteRoomTypeCancelsActiveReservations(t *testing.T) {
	capSvc, resSvc, store, roomID, notifier := newCapacityFixture(t, 2)
	ctx := context.Background()

	res, err := resSvc.Reserve(ctx, guestA, roomID, date(2026, time.October, 1), date(2026, time.October, 3))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	victims, err := capSvc.DeleteRoomType(ctx, ownerID, roomID)
	if err != nil {
		t.Fatalf("DeleteRoomType: %v", err)
	}
	if len(victims) != 1 || victims[0].ID != res.ID {
		t.Fatalf("victims = %+v, want the one active reservation", victims)
	}
	stored, err := store.Reservation(ctx, res.ID)
	if err != nil || stored.Status != model.ReservationCancelled {
		t.Errorf("reservation status = %q (%v), want CANCELLED", stored.Status, err)
	}
	if _, err := store.Room(ctx, roomID); !errors.Is(err, ErrNotFound) {
		t.Errorf("room still present after delete: %v", err)
	}
	if got := notifier.countFor(guestA); got != 1 {
		t.Errorf("guest notifications = %d, want 1", got)
	}
}
