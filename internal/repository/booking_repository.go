package repository

import (
	"context"
	"database/sql"

	"github.com/avelora/travel-booking/internal/model"
)

// BookingRepo provides access to the user-facing bookings that tie a
// local hotel reservation and an external flight reference together.
type BookingRepo struct{ db *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = "id, reference, user_id, reservation_id, flight_reference, last_name, status, created_at, updated_at"

func scanBooking(scan func(dest ...interface{}) error) (model.Booking, error) {
	var (
		b         model.Booking
		resID     sql.NullInt64
		flightRef sql.NullString
		lastName  sql.NullString
	)
	err := scan(&b.ID, &b.Reference, &b.UserID, &resID, &flightRef, &lastName, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	if resID.Valid {
		v := uint64(resID.Int64)
		b.ReservationID = &v
	}
	if flightRef.Valid {
		v := flightRef.String
		b.FlightReference = &v
	}
	if lastName.Valid {
		v := lastName.String
		b.LastName = &v
	}
	return b, nil
}

// CreateTx inserts a booking inside tx and populates its generated ID.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	out, err := tx.ExecContext(ctx,
		"INSERT INTO bookings (reference, user_id, reservation_id, flight_reference, last_name, status) VALUES (?,?,?,?,?,?)",
		b.Reference, b.UserID, b.ReservationID, b.FlightReference, b.LastName, b.Status)
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByIDTx loads one booking inside tx.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Booking, error) {
	return scanBooking(tx.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=?", id).Scan)
}

// GetByID loads one booking outside any transaction.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=?", id).Scan)
}

// GetByReservationTx finds the booking that references a reservation,
// if any. Reservations can exist without a parent booking while they
// sit in a cart, so absence is not an error.
func (r *BookingRepo) GetByReservationTx(ctx context.Context, tx *sql.Tx, reservationID uint64) (model.Booking, bool, error) {
	b, err := scanBooking(tx.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE reservation_id=?", reservationID).Scan)
	if err == sql.ErrNoRows {
		return model.Booking{}, false, nil
	}
	if err != nil {
		return model.Booking{}, false, err
	}
	return b, true, nil
}

// GetByFlightReference finds the booking holding an external flight
// reference. sql.ErrNoRows when absent.
func (r *BookingRepo) GetByFlightReference(ctx context.Context, ref string) (model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE flight_reference=?", ref).Scan)
}

// UpdateRefsTx rewrites a booking's component references and status
// inside tx. Detaching a cancelled leg means writing the nil pointer
// through here.
func (r *BookingRepo) UpdateRefsTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE bookings SET reservation_id=?, flight_reference=?, status=? WHERE id=?",
		b.ReservationID, b.FlightReference, b.Status, b.ID)
	return err
}

// ListByUser returns a user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
