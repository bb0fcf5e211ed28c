package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/avelora/travel-booking/internal/model"
	"github.com/avelora/travel-booking/internal/service"
)

// SQLStore implements service.Store on MySQL by delegating to the
// repositories. It translates sql.ErrNoRows into service.ErrNotFound
// so the engines never see driver-level sentinels.
type SQLStore struct {
	db           *sql.DB
	hotels       *HotelRepo
	rooms        *RoomTypeRepo
	availability *AvailabilityRepo
	reservations *ReservationRepo
	bookings     *BookingRepo
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		db:           db,
		hotels:       NewHotelRepo(db),
		rooms:        NewRoomTypeRepo(db),
		availability: NewAvailabilityRepo(db),
		reservations: NewReservationRepo(db),
		bookings:     NewBookingRepo(db),
	}
}

func mapNotFound(err error) error {
	if err == sql.ErrNoRows {
		return service.ErrNotFound
	}
	return err
}

// Begin opens a transaction. The returned Tx holds no lock until the
// caller asks for one via RoomForUpdate.
func (s *SQLStore) Begin(ctx context.Context) (service.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{store: s, tx: tx}, nil
}

func (s *SQLStore) Room(ctx context.Context, id uint64) (model.RoomType, error) {
	rt, err := s.rooms.GetByID(ctx, id)
	return rt, mapNotFound(err)
}

func (s *SQLStore) Hotel(ctx context.Context, id uint64) (model.Hotel, error) {
	h, err := s.hotels.GetByID(ctx, id)
	return h, mapNotFound(err)
}

func (s *SQLStore) Reservation(ctx context.Context, id uint64) (model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	return res, mapNotFound(err)
}

func (s *SQLStore) Booking(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	return b, mapNotFound(err)
}

type sqlTx struct {
	store *SQLStore
	tx    *sql.Tx
}

func (t *sqlTx) Commit() error   { return t.tx.Commit() }
func (t *sqlTx) Rollback() error { return t.tx.Rollback() }

func (t *sqlTx) RoomForUpdate(ctx context.Context, roomID uint64) (model.RoomType, error) {
	rt, err := t.store.rooms.GetForUpdateTx(ctx, t.tx, roomID)
	return rt, mapNotFound(err)
}

func (t *sqlTx) SetTotalRooms(ctx context.Context, roomID uint64, total int) error {
	return t.store.rooms.UpdateTotalRoomsTx(ctx, t.tx, roomID, total)
}

func (t *sqlTx) DeleteRoom(ctx context.Context, roomID uint64) error {
	return t.store.rooms.DeleteTx(ctx, t.tx, roomID)
}

func (t *sqlTx) Hotel(ctx context.Context, id uint64) (model.Hotel, error) {
	h, err := t.store.hotels.GetByIDTx(ctx, t.tx, id)
	return h, mapNotFound(err)
}

func (t *sqlTx) Day(ctx context.Context, roomID uint64, day time.Time) (int, bool, error) {
	return t.store.availability.GetDayTx(ctx, t.tx, roomID, day)
}

func (t *sqlTx) Debit(ctx context.Context, roomID uint64, day time.Time, totalRooms int) error {
	return t.store.availability.DebitTx(ctx, t.tx, roomID, day, totalRooms)
}

func (t *sqlTx) CreditRange(ctx context.Context, roomID uint64, from, to time.Time) error {
	return t.store.availability.CreditRangeTx(ctx, t.tx, roomID, from, to)
}

func (t *sqlTx) Shift(ctx context.Context, roomID uint64, diff int) error {
	return t.store.availability.ShiftTx(ctx, t.tx, roomID, diff)
}

func (t *sqlTx) FirstOversold(ctx context.Context, roomID uint64) (model.AvailabilityDay, bool, error) {
	return t.store.availability.FirstOversoldTx(ctx, t.tx, roomID)
}

func (t *sqlTx) SetDayRooms(ctx context.Context, dayID uint64, rooms int) error {
	return t.store.availability.SetRoomsTx(ctx, t.tx, dayID, rooms)
}

func (t *sqlTx) DeleteDaysForRoom(ctx context.Context, roomID uint64) error {
	return t.store.availability.DeleteForRoomTx(ctx, t.tx, roomID)
}

func (t *sqlTx) CreateReservation(ctx context.Context, res *model.Reservation) error {
	return t.store.reservations.CreateTx(ctx, t.tx, res)
}

func (t *sqlTx) Reservation(ctx context.Context, id uint64) (model.Reservation, error) {
	res, err := t.store.reservations.GetByIDTx(ctx, t.tx, id)
	return res, mapNotFound(err)
}

func (t *sqlTx) MarkReservationCancelled(ctx context.Context, id uint64) (bool, error) {
	return t.store.reservations.MarkCancelledTx(ctx, t.tx, id)
}

func (t *sqlTx) Overlapping(ctx context.Context, roomID uint64, day time.Time, limit int) ([]model.Reservation, error) {
	return t.store.reservations.OverlappingTx(ctx, t.tx, roomID, day, limit)
}

func (t *sqlTx) ActiveReservations(ctx context.Context, roomID uint64) ([]model.Reservation, error) {
	return t.store.reservations.ListActiveByRoomTx(ctx, t.tx, roomID)
}

func (t *sqlTx) CreateBooking(ctx context.Context, b *model.Booking) error {
	return t.store.bookings.CreateTx(ctx, t.tx, b)
}

func (t *sqlTx) Booking(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := t.store.bookings.GetByIDTx(ctx, t.tx, id)
	return b, mapNotFound(err)
}

func (t *sqlTx) BookingByReservation(ctx context.Context, reservationID uint64) (model.Booking, bool, error) {
	return t.store.bookings.GetByReservationTx(ctx, t.tx, reservationID)
}

func (t *sqlTx) UpdateBookingRefs(ctx context.Context, b *model.Booking) error {
	return t.store.bookings.UpdateRefsTx(ctx, t.tx, b)
}
