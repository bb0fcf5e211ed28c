package repository

import (
	"context"
	"database/sql"

	"github.com/avelora/travel-booking/internal/model"
)

// RoomTypeRepo encapsulates database operations for room_types. The
// ...Tx variants run inside an existing transaction; GetForUpdateTx
// additionally takes a row lock on the room type, which is how the
// reservation and capacity paths serialize all inventory mutations
// for one room.
type RoomTypeRepo struct{ db *sql.DB }

func NewRoomTypeRepo(db *sql.DB) *RoomTypeRepo { return &RoomTypeRepo{db: db} }

const roomTypeColumns = "id, hotel_id, name, amenities, price_per_night_cents, total_rooms, beds, created_at, updated_at"

// Create inserts a room type and populates its generated ID.
func (r *RoomTypeRepo) Create(ctx context.Context, rt *model.RoomType) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO room_types (hotel_id, name, amenities, price_per_night_cents, total_rooms, beds) VALUES (?,?,?,?,?,?)",
		rt.HotelID, rt.Name, rt.Amenities, rt.PricePerNightCents, rt.TotalRooms, rt.Beds)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	return nil
}

func scanRoomType(scan func(dest ...interface{}) error) (model.RoomType, error) {
	var rt model.RoomType
	err := scan(&rt.ID, &rt.HotelID, &rt.Name, &rt.Amenities, &rt.PricePerNightCents, &rt.TotalRooms, &rt.Beds, &rt.CreatedAt, &rt.UpdatedAt)
	return rt, err
}

// GetByID returns one room type. sql.ErrNoRows when absent.
func (r *RoomTypeRepo) GetByID(ctx context.Context, id uint64) (model.RoomType, error) {
	return scanRoomType(r.db.QueryRowContext(ctx,
		"SELECT "+roomTypeColumns+" FROM room_types WHERE id=?", id).Scan)
}

// GetForUpdateTx loads a room type inside tx with a FOR UPDATE row
// lock. Every caller that is about to mutate the room's availability
// ledger must go through this, so that concurrent reservation and
// reconciliation attempts for the same room serialize on the lock.
func (r *RoomTypeRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.RoomType, error) {
	return scanRoomType(tx.QueryRowContext(ctx,
		"SELECT "+roomTypeColumns+" FROM room_types WHERE id=? FOR UPDATE", id).Scan)
}

// ListByHotel returns the room types of one hotel.
func (r *RoomTypeRepo) ListByHotel(ctx context.Context, hotelID uint64) ([]model.RoomType, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+roomTypeColumns+" FROM room_types WHERE hotel_id=? ORDER BY id", hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RoomType, 0)
	for rows.Next() {
		rt, err := scanRoomType(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// Update rewrites the descriptive fields of a room type. Capacity
// changes do not go through here; they take the reconciliation path
// via UpdateTotalRoomsTx.
func (r *RoomTypeRepo) Update(ctx context.Context, rt *model.RoomType) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE room_types SET name=?, amenities=?, price_per_night_cents=?, beds=? WHERE id=?",
		rt.Name, rt.Amenities, rt.PricePerNightCents, rt.Beds, rt.ID)
	return err
}

// UpdateTotalRoomsTx sets the nominal capacity inside tx.
func (r *RoomTypeRepo) UpdateTotalRoomsTx(ctx context.Context, tx *sql.Tx, id uint64, total int) error {
	_, err := tx.ExecContext(ctx, "UPDATE room_types SET total_rooms=? WHERE id=?", total, id)
	return err
}

// DeleteTx removes a room type row inside tx. Callers are expected to
// have cancelled its reservations and removed its availability rows
// first.
func (r *RoomTypeRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM room_types WHERE id=?", id)
	return err
}
