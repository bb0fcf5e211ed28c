package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avelora/travel-booking/internal/afs"
	"github.com/avelora/travel-booking/internal/model"
	"github.com/avelora/travel-booking/internal/utils"
)

// fakeFlights is a scriptable FlightSystem.
type fakeFlights struct {
	createErr   error
	retrieveErr error
	created     []afs.BookingRequest
	cancelled   []string
	nextRef     string
}

func (f *fakeFlights) CreateBooking(ctx context.Context, req afs.BookingRequest) (afs.Booking, error) {
	if f.createErr != nil {
		return afs.Booking{}, f.createErr
	}
	f.created = append(f.created, req)
	ref := f.nextRef
	if ref == "" {
		ref = "FLT001"
	}
	return afs.Booking{BookingReference: ref, LastName: req.LastName, Status: "CONFIRMED"}, nil
}

func (f *fakeFlights) RetrieveBooking(ctx context.Context, reference, lastName string) (afs.Booking, error) {
	if f.retrieveErr != nil {
		return afs.Booking{}, f.retrieveErr
	}
	return afs.Booking{BookingReference: reference, LastName: lastName, Status: "CONFIRMED"}, nil
}

func (f *fakeFlights) CancelBooking(ctx context.Context, reference, lastName string) (afs.Booking, error) {
	f.cancelled = append(f.cancelled, reference)
	return afs.Booking{BookingReference: reference, Status: "CANCELLED"}, nil
}

func newBookingFixture(t *testing.T, totalRooms int) (*BookingService, *fakeFlights, *memStore, uint64) {
	t.Helper()
	store := newMemStore()
	hotelID := store.addHotel(ownerID)
	roomID := store.addRoom(hotelID, totalRooms, 10000)
	flights := &fakeFlights{}
	return NewBookingService(store, flights, &memNotifier{}), flights, store, roomID
}

var testUser = model.User{ID: guestA, FirstName: "Ada", LastName: "Miller", Email: "ada@example.com"}

func testPassenger() afs.Passenger {
	return afs.Passenger{Email: testUser.Email, FirstName: testUser.FirstName, LastName: testUser.LastName, PassportNumber: "P1234567"}
}

func TestCheckoutHotelOnly(t *testing.T) {
	svc, _, store, roomID := newBookingFixture(t, 1)
	ctx := context.Background()

	b, err := svc.Checkout(ctx, testUser, CheckoutInput{
		RoomTypeID:   roomID,
		CheckInDate:  date(2026, time.April, 1),
		CheckOutDate: date(2026, time.April, 3),
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if b.ReservationID == nil || b.FlightReference != nil {
		t.Fatalf("legs = %+v, want hotel only", b)
	}
	if b.Status != model.BookingBooked {
		t.Errorf("status = %q, want BOOKED", b.Status)
	}
	if got := store.available(roomID, date(2026, time.April, 1)); got != 0 {
		t.Errorf("available = %d, want 0", got)
	}
}

func TestCheckoutRequiresALeg(t *testing.T) {
	svc, _, _, _ := newBookingFixture(t, 1)
	ctx := context.Background()

	if _, err := svc.Checkout(ctx, testUser, CheckoutInput{}); !errors.Is(err, ErrNothingToBook) {
		t.Fatalf("got %v, want ErrNothingToBook", err)
	}
	if _, err := svc.Checkout(ctx, testUser, CheckoutInput{FlightIDs: []string{"FL-1"}}); !errors.Is(err, ErrPassengerRequired) {
		t.Fatalf("got %v, want ErrPassengerRequired", err)
	}
}

// Flight leg fails first: nothing local may be created.
func TestCheckoutFlightFailureCreatesNoLocalState(t *testing.T) {
	svc, flights, store, roomID := newBookingFixture(t, 1)
	flights.createErr = errors.New("upstream down")
	ctx := context.Background()

	_, err := svc.Checkout(ctx, testUser, CheckoutInput{
		RoomTypeID:   roomID,
		CheckInDate:  date(2026, time.April, 1),
		CheckOutDate: date(2026, time.April, 2),
		FlightIDs:    []string{"FL-1"},
		Passenger:    testPassenger(),
	})
	if !errors.Is(err, ErrExternalBooking) {
		t.Fatalf("got %v, want ErrExternalBooking", err)
	}
	if got := store.available(roomID, date(2026, time.April, 1)); got != 1 {
		t.Errorf("ledger touched despite failed checkout: available = %d", got)
	}
}

// Hotel leg fails after the flights were booked: the flight booking
// must be compensated away.
func TestCheckoutCompensatesFlightWhenHotelFails(t *testing.T) {
	svc, flights, _, roomID := newBookingFixture(t, 1)
	ctx := context.Background()

	// Fill the room first so the hotel leg is guaranteed to fail.
	if _, err := svc.Checkout(ctx, testUser, CheckoutInput{
		RoomTypeID:   roomID,
		CheckInDate:  date(2026, time.April, 1),
		CheckOutDate: date(2026, time.April, 2),
	}); err != nil {
		t.Fatalf("setup checkout: %v", err)
	}

	_, err := svc.Checkout(ctx, model.User{ID: guestB, LastName: "Nguyen", Email: "n@example.com"}, CheckoutInput{
		RoomTypeID:   roomID,
		CheckInDate:  date(2026, time.April, 1),
		CheckOutDate: date(2026, time.April, 2),
		FlightIDs:    []string{"FL-9"},
		Passenger:    afs.Passenger{Email: "n@example.com", LastName: "Nguyen"},
	})
	var unavail *RoomUnavailableError
	if !errors.As(err, &unavail) {
		t.Fatalf("got %v, want RoomUnavailableError", err)
	}
	if len(flights.cancelled) != 1 || flights.cancelled[0] != "FLT001" {
		t.Fatalf("compensating cancellations = %v, want [FLT001]", flights.cancelled)
	}
}

func TestPayTransitions(t *testing.T) {
	svc, _, _, roomID := newBookingFixture(t, 1)
	ctx := context.Background()

	b, err := svc.Checkout(ctx, testUser, CheckoutInput{
		RoomTypeID:   roomID,
		CheckInDate:  date(2026, time.April, 1),
		CheckOutDate: date(2026, time.April, 2),
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	card := utils.Card{Number: "4242424242424242", Expiry: "12/30"}
	if _, err := svc.Pay(ctx, b.ID, testUser.ID, utils.Card{Number: "1234", Expiry: "12/30"}); !errors.Is(err, utils.ErrInvalidCardNumber) {
		t.Fatalf("bad card: got %v, want ErrInvalidCardNumber", err)
	}
	if _, err := svc.Pay(ctx, b.ID, guestB, card); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("stranger pay: got %v, want ErrUnauthorized", err)
	}

	paid, err := svc.Pay(ctx, b.ID, testUser.ID, card)
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}
	if paid.Status != model.BookingPaid {
		t.Errorf("status = %q, want PAID", paid.Status)
	}
	if _, err := svc.Pay(ctx, b.ID, testUser.ID, card); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("double pay: got %v, want ErrAlreadyPaid", err)
	}

	deferred, err := svc.PayLater(ctx, b.ID, testUser.ID)
	if err != nil {
		t.Fatalf("PayLater: %v", err)
	}
	if deferred.Status != model.BookingPayLater {
		t.Errorf("status = %q, want PAY_LATER", deferred.Status)
	}
}

// Cancelling the hotel leg detaches the reservation but keeps the
// booking alive while the flight reference remains; cancelling the
// flight leg afterwards makes the booking CANCELLED.
func TestCancelLegsSequentially(t *testing.T) {
	svc, _, store, roomID := newBookingFixture(t, 1)
	ctx := context.Background()

	b, err := svc.Checkout(ctx, testUser, CheckoutInput{
		RoomTypeID:   roomID,
		CheckInDate:  date(2026, time.April, 1),
		CheckOutDate: date(2026, time.April, 3),
		FlightIDs:    []string{"FL-1"},
		Passenger:    testPassenger(),
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	resID := *b.ReservationID

	after, err := svc.Cancel(ctx, b.ID, testUser.ID, CancelFlags{Hotel: true}, testUser.LastName)
	if err != nil {
		t.Fatalf("Cancel hotel leg: %v", err)
	}
	if after.ReservationID != nil {
		t.Error("reservation reference not detached")
	}
	if after.Status == model.BookingCancelled {
		t.Error("booking cancelled while flight leg remains")
	}
	res, err := store.Reservation(ctx, resID)
	if err != nil || res.Status != model.ReservationCancelled {
		t.Errorf("reservation status = %q (%v), want CANCELLED", res.Status, err)
	}
	if got := store.available(roomID, date(2026, time.April, 1)); got != 1 {
		t.Errorf("ledger not credited back: available = %d", got)
	}

	final, err := svc.Cancel(ctx, b.ID, testUser.ID, CancelFlags{Flight: true}, testUser.LastName)
	if err != nil {
		t.Fatalf("Cancel flight leg: %v", err)
	}
	if final.Status != model.BookingCancelled {
		t.Errorf("status = %q, want CANCELLED once both legs are gone", final.Status)
	}
	if _, err := svc.Cancel(ctx, b.ID, testUser.ID, CancelFlags{Flight: true}, testUser.LastName); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("cancel of cancelled booking: got %v, want ErrAlreadyCancelled", err)
	}
}

func TestCancelNormalizesFlags(t *testing.T) {
	svc, flights, _, roomID := newBookingFixture(t, 1)
	ctx := context.Background()

	b, err := svc.Checkout(ctx, testUser, CheckoutInput{
		RoomTypeID:   roomID,
		CheckInDate:  date(2026, time.April, 1),
		CheckOutDate: date(2026, time.April, 2),
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	// No flight leg exists, so a flight-only request names nothing.
	if _, err := svc.Cancel(ctx, b.ID, testUser.ID, CancelFlags{Flight: true}, testUser.LastName); !errors.Is(err, ErrNothingToCancel) {
		t.Fatalf("got %v, want ErrNothingToCancel", err)
	}
	if len(flights.cancelled) != 0 {
		t.Errorf("flight system touched for a hotel-only booking")
	}
}

func TestCancelFlightLegVerifiesExternally(t *testing.T) {
	svc, flights, _, _ := newBookingFixture(t, 1)
	ctx := context.Background()

	b, err := svc.Checkout(ctx, testUser, CheckoutInput{
		FlightIDs: []string{"FL-1"},
		Passenger: testPassenger(),
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	flights.retrieveErr = afs.ErrNotFound
	if _, err := svc.Cancel(ctx, b.ID, testUser.ID, CancelFlags{Flight: true}, testUser.LastName); !errors.Is(err, ErrFlightNotFound) {
		t.Fatalf("got %v, want ErrFlightNotFound", err)
	}

	flights.retrieveErr = nil
	final, err := svc.Cancel(ctx, b.ID, testUser.ID, CancelFlags{Flight: true}, testUser.LastName)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if final.Status != model.BookingCancelled {
		t.Errorf("status = %q, want CANCELLED", final.Status)
	}
	// Leg detachment is local; the external booking is only verified,
	// never cancelled from here.
	if len(flights.cancelled) != 0 {
		t.Errorf("external cancellation requested: %v", flights.cancelled)
	}
}
