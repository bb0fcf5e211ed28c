package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memNotifier struct {
	mu      sync.Mutex
	entries []struct {
		UserID uint64
		Title  string
	}
}

func (n *memNotifier) Create(ctx context.Context, userID uint64, title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, struct {
		UserID uint64
		Title  string
	}{userID, title})
	return nil
}

func (n *memNotifier) countFor(userID uint64) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.entries {
		if e.UserID == userID {
			c++
		}
	}
	return c
}

const (
	ownerID = uint64(100)
	guestA  = uint64(200)
	guestB  = uint64(201)
)

func newReservationFixture(t *testing.T, totalRooms int) (*ReservationService, *memStore, uint64, *memNotifier) {
	t.Helper()
	store := newMemStore()
	hotelID := store.addHotel(ownerID)
	roomID := store.addRoom(hotelID, totalRooms, 10000)
	notifier := &memNotifier{}
	return NewReservationService(store, notifier), store, roomID, notifier
}

func TestReserveDebitsEveryNightExceptCheckout(t *testing.T) {
	svc, store, roomID, _ := newReservationFixture(t, 1)
	ctx := context.Background()

	res, err := svc.Reserve(ctx, guestA, roomID, date(2026, time.January, 1), date(2026, time.January, 3))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if res.TotalPriceCents != 20000 {
		t.Errorf("total price = %d, want 20000 (2 nights x 10000)", res.TotalPriceCents)
	}
	if got := store.available(roomID, date(2026, time.January, 1)); got != 0 {
		t.Errorf("Jan 1 available = %d, want 0", got)
	}
	if got := store.available(roomID, date(2026, time.January, 2)); got != 0 {
		t.Errorf("Jan 2 available = %d, want 0", got)
	}
	if store.hasDayRow(roomID, date(2026, time.January, 3)) {
		t.Error("checkout day Jan 3 should have no ledger row")
	}
}

func TestReserveFailsOnExhaustedDay(t *testing.T) {
	svc, _, roomID, _ := newReservationFixture(t, 1)
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, guestA, roomID, date(2026, time.January, 1), date(2026, time.January, 3)); err != nil {
		t.Fatalf("first Reserve: %v", err)
	}
	_, err := svc.Reserve(ctx, guestB, roomID, date(2026, time.January, 2), date(2026, time.January, 4))
	var unavail *RoomUnavailableError
	if !errors.As(err, &unavail) {
		t.Fatalf("expected RoomUnavailableError, got %v", err)
	}
	if !unavail.Date.Equal(date(2026, time.January, 2)) {
		t.Errorf("blocking date = %s, want 2026-01-02", unavail.Date.Format("2006-01-02"))
	}
}

// A room whose capacity was reduced to zero has nothing to sell even
// on days the ledger never materialized; the sparse default must not
// be mistaken for availability.
func TestReserveFailsOnZeroCapacityRoom(t *testing.T) {
	svc, store, roomID, notifier := newReservationFixture(t, 1)
	caps := NewCapacityService(store, notifier)
	ctx := context.Background()

	if _, err := caps.AdjustCapacity(ctx, ownerID, roomID, 0); err != nil {
		t.Fatalf("AdjustCapacity: %v", err)
	}

	_, err := svc.Reserve(ctx, guestA, roomID, date(2026, time.January, 1), date(2026, time.January, 2))
	var unavail *RoomUnavailableError
	if !errors.As(err, &unavail) {
		t.Fatalf("expected RoomUnavailableError on a zero-capacity room, got %v", err)
	}
	if !unavail.Date.Equal(date(2026, time.January, 1)) {
		t.Errorf("blocking date = %s, want 2026-01-01", unavail.Date.Format("2006-01-02"))
	}
	if store.hasDayRow(roomID, date(2026, time.January, 1)) {
		t.Error("failed reserve must not materialize a ledger row")
	}
}

func TestReserveRejectsExcessiveStay(t *testing.T) {
	svc, _, roomID, _ := newReservationFixture(t, 1)
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, guestA, roomID, date(2026, time.January, 1), date(2027, time.March, 1)); !errors.Is(err, ErrStayTooLong) {
		t.Fatalf("14-month stay: got %v, want ErrStayTooLong", err)
	}
	// A stay at the bound itself is accepted.
	if _, err := svc.Reserve(ctx, guestA, roomID, date(2026, time.January, 1), date(2027, time.January, 2)); err != nil {
		t.Fatalf("366-night stay: %v", err)
	}
}

func TestCancelRestoresAvailability(t *testing.T) {
	svc, store, roomID, _ := newReservationFixture(t, 1)
	ctx := context.Background()

	res, err := svc.Reserve(ctx, guestA, roomID, date(2026, time.January, 1), date(2026, time.January, 3))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := svc.Cancel(ctx, res.ID, guestA); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got := store.available(roomID, date(2026, time.January, 1)); got != 1 {
		t.Errorf("Jan 1 available after cancel = %d, want 1", got)
	}
	if got := store.available(roomID, date(2026, time.January, 2)); got != 1 {
		t.Errorf("Jan 2 available after cancel = %d, want 1", got)
	}

	// The previously blocked range is sellable again.
	if _, err := svc.Reserve(ctx, guestB, roomID, date(2026, time.January, 2), date(2026, time.January, 4)); err != nil {
		t.Fatalf("Reserve after cancel: %v", err)
	}
}

func TestReserveRejectsDegenerateRange(t *testing.T) {
	svc, _, roomID, _ := newReservationFixture(t, 1)
	ctx := context.Background()

	for _, tc := range []struct {
		name    string
		in, out time.Time
	}{
		{"equal", date(2026, time.March, 1), date(2026, time.March, 1)},
		{"inverted", date(2026, time.March, 2), date(2026, time.March, 1)},
	} {
		if _, err := svc.Reserve(ctx, guestA, roomID, tc.in, tc.out); !errors.Is(err, ErrInvalidDateRange) {
			t.Errorf("%s range: got %v, want ErrInvalidDateRange", tc.name, err)
		}
	}
}

func TestCancelAuthorization(t *testing.T) {
	svc, _, roomID, _ := newReservationFixture(t, 2)
	ctx := context.Background()

	res, err := svc.Reserve(ctx, guestA, roomID, date(2026, time.January, 1), date(2026, time.January, 2))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := svc.Cancel(ctx, res.ID, guestB); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("stranger cancel: got %v, want ErrUnauthorized", err)
	}
	// The hotel owner may cancel a guest's reservation.
	if err := svc.Cancel(ctx, res.ID, ownerID); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
}

func TestCancelIsIdempotentGuard(t *testing.T) {
	svc, _, roomID, _ := newReservationFixture(t, 1)
	ctx := context.Background()

	res, err := svc.Reserve(ctx, guestA, roomID, date(2026, time.January, 1), date(2026, time.January, 2))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := svc.Cancel(ctx, res.ID, guestA); err != nil {
		t.Fatalf("first Cancel: %v", err)
	}
	if err := svc.Cancel(ctx, res.ID, guestA); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("second Cancel: got %v, want ErrAlreadyCancelled", err)
	}
	if err := svc.Cancel(ctx, 9999, guestA); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing reservation: got %v, want ErrNotFound", err)
	}
}

func TestReserveNotifiesOwner(t *testing.T) {
	svc, _, roomID, notifier := newReservationFixture(t, 1)
	ctx := context.Background()

	res, err := svc.Reserve(ctx, guestA, roomID, date(2026, time.January, 1), date(2026, time.January, 2))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if got := notifier.countFor(ownerID); got != 1 {
		t.Errorf("owner notifications = %d, want 1", got)
	}
	if err := svc.Cancel(ctx, res.ID, guestA); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got := notifier.countFor(guestA); got != 1 {
		t.Errorf("guest notifications = %d, want 1", got)
	}
}

// Two goroutines racing for the last room on the same night: exactly
// one wins.
func TestConcurrentReservesDoNotOversell(t *testing.T) {
	svc, store, roomID, _ := newReservationFixture(t, 1)
	ctx := context.Background()

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(user uint64) {
			defer wg.Done()
			_, err := svc.Reserve(ctx, user, roomID, date(2026, time.June, 10), date(2026, time.June, 11))
			errs <- err
		}(guestA + uint64(i))
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			var unavail *RoomUnavailableError
			if !errors.As(err, &unavail) {
				t.Errorf("unexpected error: %v", err)
			}
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d reservations succeeded for 1 room, want exactly 1", succeeded)
	}
	if got := store.available(roomID, date(2026, time.June, 10)); got != 0 {
		t.Errorf("available = %d, want 0", got)
	}
}
