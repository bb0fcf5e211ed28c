package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/avelora/travel-booking/internal/model"
)

// CartRepo manages the single pre-booking cart item each user has.
// Flight leg ID lists are stored as JSON columns; hotel and flight
// selections can coexist and are promoted into one booking at
// checkout time.
type CartRepo struct{ db *sql.DB }

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{db: db} }

// Get returns the user's cart item. ok=false when the cart is empty.
func (r *CartRepo) Get(ctx context.Context, userID uint64) (model.CartItem, bool, error) {
	var (
		item     model.CartItem
		roomID   sql.NullInt64
		checkIn  sql.NullTime
		checkOut sql.NullTime
		outbound sql.NullString
		ret      sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, room_type_id, check_in_date, check_out_date, outbound_flight_ids, return_flight_ids, updated_at FROM cart_items WHERE user_id=?",
		userID).Scan(&item.ID, &item.UserID, &roomID, &checkIn, &checkOut, &outbound, &ret, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.CartItem{}, false, nil
	}
	if err != nil {
		return model.CartItem{}, false, err
	}
	if roomID.Valid {
		v := uint64(roomID.Int64)
		item.RoomTypeID = &v
	}
	if checkIn.Valid {
		t := checkIn.Time
		item.CheckInDate = &t
	}
	if checkOut.Valid {
		t := checkOut.Time
		item.CheckOutDate = &t
	}
	if outbound.Valid && outbound.String != "" {
		if err := json.Unmarshal([]byte(outbound.String), &item.OutboundFlightIDs); err != nil {
			return model.CartItem{}, false, err
		}
	}
	if ret.Valid && ret.String != "" {
		if err := json.Unmarshal([]byte(ret.String), &item.ReturnFlightIDs); err != nil {
			return model.CartItem{}, false, err
		}
	}
	return item, true, nil
}

// SetRoom upserts the hotel selection of the user's cart, leaving any
// flight selection in place.
func (r *CartRepo) SetRoom(ctx context.Context, userID, roomID uint64, checkIn, checkOut time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, room_type_id, check_in_date, check_out_date)
		 VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE room_type_id=VALUES(room_type_id), check_in_date=VALUES(check_in_date), check_out_date=VALUES(check_out_date)`,
		userID, roomID, checkIn.Format(dateLayout), checkOut.Format(dateLayout))
	return err
}

// SetFlights upserts the flight selection of the user's cart, leaving
// any hotel selection in place.
func (r *CartRepo) SetFlights(ctx context.Context, userID uint64, outbound, ret []string) error {
	ob, err := json.Marshal(outbound)
	if err != nil {
		return err
	}
	rt, err := json.Marshal(ret)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, outbound_flight_ids, return_flight_ids)
		 VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE outbound_flight_ids=VALUES(outbound_flight_ids), return_flight_ids=VALUES(return_flight_ids)`,
		userID, string(ob), string(rt))
	return err
}

// Clear removes the user's cart item, typically right after its
// contents were promoted into a booking.
func (r *CartRepo) Clear(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id=?", userID)
	return err
}
