package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/avelora/travel-booking/internal/model"
)

// ReservationRepo provides CRUD operations for hotel reservations.
// Status transitions happen through MarkCancelledTx so that the
// "already cancelled" check and the update are one atomic statement.
type ReservationRepo struct{ db *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = "id, room_type_id, user_id, check_in_date, check_out_date, total_price_cents, status, created_at, updated_at"

func scanReservation(scan func(dest ...interface{}) error) (model.Reservation, error) {
	var res model.Reservation
	err := scan(&res.ID, &res.RoomTypeID, &res.UserID, &res.CheckInDate, &res.CheckOutDate, &res.TotalPriceCents, &res.Status, &res.CreatedAt, &res.UpdatedAt)
	return res, err
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and populates the generated ID on the provided record.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	out, err := tx.ExecContext(ctx,
		"INSERT INTO reservations (room_type_id, user_id, check_in_date, check_out_date, total_price_cents, status) VALUES (?,?,?,?,?,?)",
		res.RoomTypeID, res.UserID, res.CheckInDate.Format(dateLayout), res.CheckOutDate.Format(dateLayout), res.TotalPriceCents, res.Status)
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// GetByIDTx loads one reservation inside tx. sql.ErrNoRows when absent.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error) {
	return scanReservation(tx.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id=?", id).Scan)
}

// GetByID loads one reservation outside any transaction.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	return scanReservation(r.db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id=?", id).Scan)
}

// MarkCancelledTx flips a reservation to CANCELLED. It reports false
// when the row was already cancelled (or missing), which callers
// translate into their own conflict error. The status guard in the
// WHERE clause keeps two concurrent cancellations from both
// succeeding.
func (r *ReservationRepo) MarkCancelledTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE reservations SET status=? WHERE id=? AND status<>?",
		model.ReservationCancelled, id, model.ReservationCancelled)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// OverlappingTx returns up to limit non-cancelled reservations whose
// stay covers the given day, ordered by check-in date descending.
// The ordering is the forced-cancellation policy: latest-starting
// stays are sacrificed first, so guests who booked the furthest out
// keep their rooms. Callers must not reorder the result.
func (r *ReservationRepo) OverlappingTx(ctx context.Context, tx *sql.Tx, roomID uint64, day time.Time, limit int) ([]model.Reservation, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT "+reservationColumns+` FROM reservations
		 WHERE room_type_id=? AND status<>? AND check_in_date <= ? AND check_out_date > ?
		 ORDER BY check_in_date DESC, id DESC LIMIT ?`,
		roomID, model.ReservationCancelled, day.Format(dateLayout), day.Format(dateLayout), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListActiveByRoomTx returns every non-cancelled reservation of a
// room type, used when the owner deletes the room type outright.
func (r *ReservationRepo) ListActiveByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) ([]model.Reservation, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE room_type_id=? AND status<>?",
		roomID, model.ReservationCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListByUser returns a user's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
