package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/avelora/travel-booking/internal/model"
)

// dateLayout is the format used for DATE columns in queries.
const dateLayout = "2006-01-02"

// AvailabilityRepo is the persistence side of the inventory ledger:
// per (room type, calendar day) counters of rooms still sellable.
// Rows are sparse; a missing row means the day is fully available at
// the room type's nominal capacity, never that it is sold out. All
// mutating operations run inside a transaction that already holds the
// room type's row lock.
type AvailabilityRepo struct{ db *sql.DB }

func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

// GetDayTx returns the stored counter for one day. The second return
// value reports whether a row exists; callers apply the sparse
// default (total_rooms) when it does not.
func (r *AvailabilityRepo) GetDayTx(ctx context.Context, tx *sql.Tx, roomID uint64, day time.Time) (int, bool, error) {
	var rooms int
	err := tx.QueryRowContext(ctx,
		"SELECT available_rooms FROM availability_days WHERE room_type_id=? AND date=?",
		roomID, day.Format(dateLayout)).Scan(&rooms)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rooms, true, nil
}

// DebitTx takes one room out of inventory for a single day. An
// existing row is decremented; otherwise the row is materialized at
// totalRooms-1. The UNIQUE(room_type_id, date) key plus the caller's
// room lock make the upsert race-free.
func (r *AvailabilityRepo) DebitTx(ctx context.Context, tx *sql.Tx, roomID uint64, day time.Time, totalRooms int) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO availability_days (room_type_id, date, available_rooms) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE available_rooms = available_rooms - 1`,
		roomID, day.Format(dateLayout), totalRooms-1)
	return err
}

// CreditRangeTx returns one room to inventory for every day in
// [from, to) that has a row. Days without a row are already at full
// capacity and are deliberately left alone.
func (r *AvailabilityRepo) CreditRangeTx(ctx context.Context, tx *sql.Tx, roomID uint64, from, to time.Time) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE availability_days SET available_rooms = available_rooms + 1 WHERE room_type_id=? AND date >= ? AND date < ?",
		roomID, from.Format(dateLayout), to.Format(dateLayout))
	return err
}

// ShiftTx moves every existing row for the room by diff. Used when
// the nominal capacity changes so that partially booked days keep the
// same number of booked rooms.
func (r *AvailabilityRepo) ShiftTx(ctx context.Context, tx *sql.Tx, roomID uint64, diff int) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE availability_days SET available_rooms = available_rooms + ? WHERE room_type_id=?",
		diff, roomID)
	return err
}

// FirstOversoldTx returns any day left negative for the room, or
// ok=false when none remain. The reconciliation loop re-queries this
// after every cancellation round instead of caching a list.
func (r *AvailabilityRepo) FirstOversoldTx(ctx context.Context, tx *sql.Tx, roomID uint64) (model.AvailabilityDay, bool, error) {
	var d model.AvailabilityDay
	err := tx.QueryRowContext(ctx,
		"SELECT id, room_type_id, date, available_rooms FROM availability_days WHERE room_type_id=? AND available_rooms < 0 ORDER BY date LIMIT 1",
		roomID).Scan(&d.ID, &d.RoomTypeID, &d.Date, &d.AvailableRooms)
	if err == sql.ErrNoRows {
		return model.AvailabilityDay{}, false, nil
	}
	if err != nil {
		return model.AvailabilityDay{}, false, err
	}
	return d, true, nil
}

// SetRoomsTx forces one row to an exact counter value. The
// reconciler uses this to clamp an oversold day to zero.
func (r *AvailabilityRepo) SetRoomsTx(ctx context.Context, tx *sql.Tx, dayID uint64, rooms int) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE availability_days SET available_rooms=? WHERE id=?", rooms, dayID)
	return err
}

// Range returns the stored rows for [from, to] ordered by date. Days
// absent from the result are fully available; the handler fills in
// the default when building the owner's availability report.
func (r *AvailabilityRepo) Range(ctx context.Context, roomID uint64, from, to time.Time) ([]model.AvailabilityDay, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, room_type_id, date, available_rooms FROM availability_days WHERE room_type_id=? AND date >= ? AND date <= ? ORDER BY date",
		roomID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AvailabilityDay, 0)
	for rows.Next() {
		var d model.AvailabilityDay
		if err := rows.Scan(&d.ID, &d.RoomTypeID, &d.Date, &d.AvailableRooms); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteForRoomTx removes every ledger row of a room type. Used when
// the owner deletes the room type entirely.
func (r *AvailabilityRepo) DeleteForRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM availability_days WHERE room_type_id=?", roomID)
	return err
}
