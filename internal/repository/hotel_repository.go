package repository

import (
	"context"
	"database/sql"

	"github.com/avelora/travel-booking/internal/model"
)

// HotelRepo provides CRUD operations for hotels. Ownership checks on
// management endpoints resolve through OwnerID here.
type HotelRepo struct{ db *sql.DB }

func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

const hotelColumns = "id, owner_id, name, address, city, star_rating, created_at"

// Create inserts a hotel and populates its generated ID.
func (r *HotelRepo) Create(ctx context.Context, h *model.Hotel) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO hotels (owner_id, name, address, city, star_rating) VALUES (?,?,?,?,?)",
		h.OwnerID, h.Name, h.Address, h.City, h.StarRating)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

func scanHotel(row *sql.Row) (model.Hotel, error) {
	var h model.Hotel
	err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Address, &h.City, &h.StarRating, &h.CreatedAt)
	return h, err
}

// GetByID returns one hotel. sql.ErrNoRows when absent.
func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (model.Hotel, error) {
	return scanHotel(r.db.QueryRowContext(ctx,
		"SELECT "+hotelColumns+" FROM hotels WHERE id=?", id))
}

// GetByIDTx returns one hotel inside tx.
func (r *HotelRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Hotel, error) {
	return scanHotel(tx.QueryRowContext(ctx,
		"SELECT "+hotelColumns+" FROM hotels WHERE id=?", id))
}

// ListByOwner returns every hotel belonging to an owner, newest first.
func (r *HotelRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Hotel, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+hotelColumns+" FROM hotels WHERE owner_id=? ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHotels(rows)
}

// List returns hotels for public browsing, optionally filtered by city.
func (r *HotelRepo) List(ctx context.Context, city string) ([]model.Hotel, error) {
	q := "SELECT " + hotelColumns + " FROM hotels"
	args := []interface{}{}
	if city != "" {
		q += " WHERE city=?"
		args = append(args, city)
	}
	q += " ORDER BY star_rating DESC, name"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHotels(rows)
}

func collectHotels(rows *sql.Rows) ([]model.Hotel, error) {
	out := make([]model.Hotel, 0)
	for rows.Next() {
		var h model.Hotel
		if err := rows.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Address, &h.City, &h.StarRating, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
