package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/avelora/travel-booking/internal/afs"
	"github.com/avelora/travel-booking/internal/metrics"
	"github.com/avelora/travel-booking/internal/model"
	"github.com/avelora/travel-booking/internal/utils"
)

// FlightSystem is the slice of the external flight API the booking
// coordinator needs. Satisfied by the afs client in production.
type FlightSystem interface {
	CreateBooking(ctx context.Context, req afs.BookingRequest) (afs.Booking, error)
	RetrieveBooking(ctx context.Context, reference, lastName string) (afs.Booking, error)
	CancelBooking(ctx context.Context, reference, lastName string) (afs.Booking, error)
}

// ErrAlreadyPaid reports a payment against a booking that is PAID.
var ErrAlreadyPaid = errors.New("booking is already paid")

// BookingService is the composite booking coordinator: it ties an
// external flight reference and a local hotel reservation into one
// user-facing booking, and drives partial cancellation of either leg
// while keeping the booking status consistent.
type BookingService struct {
	store    Store
	flights  FlightSystem
	notifier Notifier
}

func NewBookingService(store Store, flights FlightSystem, notifier Notifier) *BookingService {
	return &BookingService{store: store, flights: flights, notifier: notifier}
}

// CheckoutInput describes what is being bought. RoomTypeID of zero
// means no hotel leg; an empty FlightIDs slice means no flight leg.
type CheckoutInput struct {
	RoomTypeID   uint64
	CheckInDate  time.Time
	CheckOutDate time.Time
	FlightIDs    []string
	Passenger    afs.Passenger
}

// Checkout creates a booking from the input, in two phases: the
// external flight booking is made first, and the local reservation is
// only committed after the flight leg confirmed. If the hotel leg
// fails after the flights were booked, the flight booking is cancelled
// again so no external booking is left without a local counterpart.
func (s *BookingService) Checkout(ctx context.Context, user model.User, in CheckoutInput) (model.Booking, error) {
	hotelLeg := in.RoomTypeID != 0
	flightLeg := len(in.FlightIDs) > 0
	if !hotelLeg && !flightLeg {
		return model.Booking{}, ErrNothingToBook
	}
	if flightLeg && (in.Passenger.LastName == "" || in.Passenger.Email == "") {
		return model.Booking{}, ErrPassengerRequired
	}

	b := model.Booking{
		Reference: uuid.NewString(),
		UserID:    user.ID,
		Status:    model.BookingBooked,
	}

	if flightLeg {
		fb, err := s.flights.CreateBooking(ctx, afs.BookingRequest{
			Passenger: in.Passenger,
			FlightIDs: in.FlightIDs,
		})
		if err != nil {
			return model.Booking{}, fmt.Errorf("%w: %v", ErrExternalBooking, err)
		}
		b.FlightReference = &fb.BookingReference
		ln := in.Passenger.LastName
		b.LastName = &ln
	}

	var ownerID uint64
	err := func() error {
		tx, err := s.store.Begin(ctx)
		if err != nil {
			return err
		}
		defer rollbackUnlessCommitted(tx)

		if hotelLeg {
			res, owner, err := reserveLocked(ctx, tx, user.ID, in.RoomTypeID, in.CheckInDate, in.CheckOutDate)
			if err != nil {
				return err
			}
			b.ReservationID = &res.ID
			ownerID = owner
		}
		if err := tx.CreateBooking(ctx, &b); err != nil {
			return err
		}
		return tx.Commit()
	}()
	if err != nil {
		s.compensateFlight(ctx, b)
		return model.Booking{}, err
	}

	switch {
	case hotelLeg && flightLeg:
		metrics.BookingsCreated.WithLabelValues("both").Inc()
	case hotelLeg:
		metrics.BookingsCreated.WithLabelValues("hotel").Inc()
	default:
		metrics.BookingsCreated.WithLabelValues("flight").Inc()
	}
	if hotelLeg {
		metrics.ReservationsCreated.Inc()
		notify(ctx, s.notifier, ownerID, "New reservation",
			fmt.Sprintf("Room type %d was reserved from %s to %s.",
				in.RoomTypeID, dateOnly(in.CheckInDate).Format("2006-01-02"), dateOnly(in.CheckOutDate).Format("2006-01-02")))
	}
	notify(ctx, s.notifier, user.ID, "Booking confirmed",
		fmt.Sprintf("Your booking %s was created.", b.Reference))
	return b, nil
}

// compensateFlight cancels the external flight booking after the local
// leg failed. A failed compensation leaves an orphaned external
// booking, which is logged loudly for manual follow-up.
func (s *BookingService) compensateFlight(ctx context.Context, b model.Booking) {
	if b.FlightReference == nil || b.LastName == nil {
		return
	}
	if _, err := s.flights.CancelBooking(ctx, *b.FlightReference, *b.LastName); err != nil {
		log.WithError(err).WithField("flight_reference", *b.FlightReference).
			Error("compensating flight cancellation failed; external booking is orphaned")
	}
}

// Pay marks a booking PAID after validating the card. No charge is
// made against a real payment provider.
func (s *BookingService) Pay(ctx context.Context, bookingID, userID uint64, card utils.Card) (model.Booking, error) {
	if err := utils.ValidateCard(card); err != nil {
		return model.Booking{}, err
	}
	return s.transition(ctx, bookingID, userID, model.BookingPaid)
}

// PayLater defers payment on a booking.
func (s *BookingService) PayLater(ctx context.Context, bookingID, userID uint64) (model.Booking, error) {
	return s.transition(ctx, bookingID, userID, model.BookingPayLater)
}

func (s *BookingService) transition(ctx context.Context, bookingID, userID uint64, to string) (model.Booking, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return model.Booking{}, err
	}
	defer rollbackUnlessCommitted(tx)

	b, err := tx.Booking(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if b.UserID != userID {
		return model.Booking{}, ErrUnauthorized
	}
	switch b.Status {
	case model.BookingCancelled:
		return model.Booking{}, ErrBookingCancelled
	case model.BookingPaid:
		if to == model.BookingPaid {
			return model.Booking{}, ErrAlreadyPaid
		}
	}
	b.Status = to
	if err := tx.UpdateBookingRefs(ctx, &b); err != nil {
		return model.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// CancelFlags selects which legs of a booking to cancel.
type CancelFlags struct {
	Flight bool
	Hotel  bool
}

// Cancel cancels one or both legs of a booking. Flags are normalized
// against the legs the booking actually has. The hotel leg credits the
// ledger and detaches the reservation; the flight leg verifies the
// external booking still exists and then detaches the reference;
// cancellation inside the flight system itself is a separate agency
// workflow and is not requested from here. Once both references are
// gone the booking becomes CANCELLED, which is terminal.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID uint64, flags CancelFlags, lastName string) (model.Booking, error) {
	pre, err := s.store.Booking(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if pre.UserID != userID {
		return model.Booking{}, ErrUnauthorized
	}
	if pre.Status == model.BookingCancelled {
		return model.Booking{}, ErrAlreadyCancelled
	}

	flags.Hotel = flags.Hotel && pre.ReservationID != nil
	flags.Flight = flags.Flight && pre.FlightReference != nil
	if !flags.Hotel && !flags.Flight {
		return model.Booking{}, ErrNothingToCancel
	}

	// Verify the external booking before touching local state; the
	// network call stays outside the transaction.
	if flags.Flight {
		ln := lastName
		if pre.LastName != nil {
			ln = *pre.LastName
		}
		if _, err := s.flights.RetrieveBooking(ctx, *pre.FlightReference, ln); err != nil {
			if errors.Is(err, afs.ErrNotFound) {
				return model.Booking{}, ErrFlightNotFound
			}
			return model.Booking{}, err
		}
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return model.Booking{}, err
	}
	defer rollbackUnlessCommitted(tx)

	b, err := tx.Booking(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if b.Status == model.BookingCancelled {
		return model.Booking{}, ErrAlreadyCancelled
	}

	var cancelledRes *model.Reservation
	if flags.Hotel && b.ReservationID != nil {
		res, err := tx.Reservation(ctx, *b.ReservationID)
		if err != nil {
			return model.Booking{}, err
		}
		if _, err := tx.RoomForUpdate(ctx, res.RoomTypeID); err != nil {
			return model.Booking{}, err
		}
		ok, err := tx.MarkReservationCancelled(ctx, res.ID)
		if err != nil {
			return model.Booking{}, err
		}
		if !ok {
			return model.Booking{}, ErrAlreadyCancelled
		}
		if err := tx.CreditRange(ctx, res.RoomTypeID, res.CheckInDate, res.CheckOutDate); err != nil {
			return model.Booking{}, err
		}
		b.ReservationID = nil
		cancelledRes = &res
	}
	if flags.Flight {
		b.FlightReference = nil
	}
	if b.Empty() {
		b.Status = model.BookingCancelled
	}
	if err := tx.UpdateBookingRefs(ctx, &b); err != nil {
		return model.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, err
	}

	if cancelledRes != nil {
		metrics.ReservationsCancelled.WithLabelValues("guest").Inc()
	}
	var legs []string
	if flags.Hotel {
		legs = append(legs, "hotel")
	}
	if flags.Flight {
		legs = append(legs, "flight")
	}
	notify(ctx, s.notifier, userID, "Booking updated",
		fmt.Sprintf("The %s leg of booking %s was cancelled.", strings.Join(legs, " and "), b.Reference))
	return b, nil
}
