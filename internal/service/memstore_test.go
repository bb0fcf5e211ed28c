package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/avelora/travel-booking/internal/model"
)

// memStore is an in-memory Store used by the engine tests. A
// transaction holds the store's mutex from Begin until Commit or
// Rollback, which mirrors the per-room row lock coarsely: everything
// inside a transaction is serialized against every other transaction.
// Mutations apply directly, so rollback does not undo writes; the
// engines only mutate after their checks pass, which is what the tests
// rely on.
type memStore struct {
	mu           sync.Mutex
	hotels       map[uint64]model.Hotel
	rooms        map[uint64]model.RoomType
	days         map[uint64]map[string]*model.AvailabilityDay
	reservations map[uint64]*model.Reservation
	bookings     map[uint64]*model.Booking
	nextID       uint64
}

const memDateLayout = "2006-01-02"

func newMemStore() *memStore {
	return &memStore{
		hotels:       make(map[uint64]model.Hotel),
		rooms:        make(map[uint64]model.RoomType),
		days:         make(map[uint64]map[string]*model.AvailabilityDay),
		reservations: make(map[uint64]*model.Reservation),
		bookings:     make(map[uint64]*model.Booking),
	}
}

func (s *memStore) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addHotel(ownerID uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.hotels[id] = model.Hotel{ID: id, OwnerID: ownerID, Name: "Test Hotel"}
	return id
}

func (s *memStore) addRoom(hotelID uint64, totalRooms int, priceCents int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.rooms[id] = model.RoomType{
		ID:                 id,
		HotelID:            hotelID,
		Name:               "Standard",
		PricePerNightCents: priceCents,
		TotalRooms:         totalRooms,
	}
	s.days[id] = make(map[string]*model.AvailabilityDay)
	return id
}

// available reports the effective counter for a day, applying the
// sparse default.
func (s *memStore) available(roomID uint64, day time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.days[roomID][day.Format(memDateLayout)]; ok {
		return d.AvailableRooms
	}
	return s.rooms[roomID].TotalRooms
}

func (s *memStore) hasDayRow(roomID uint64, day time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.days[roomID][day.Format(memDateLayout)]
	return ok
}

func (s *memStore) Begin(ctx context.Context) (Tx, error) {
	s.mu.Lock()
	return &memTx{s: s}, nil
}

func (s *memStore) Room(ctx context.Context, id uint64) (model.RoomType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.rooms[id]
	if !ok {
		return model.RoomType{}, ErrNotFound
	}
	return rt, nil
}

func (s *memStore) Hotel(ctx context.Context, id uint64) (model.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok {
		return model.Hotel{}, ErrNotFound
	}
	return h, nil
}

func (s *memStore) Reservation(ctx context.Context, id uint64) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[id]
	if !ok {
		return model.Reservation{}, ErrNotFound
	}
	return *res, nil
}

func (s *memStore) Booking(ctx context.Context, id uint64) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	return *b, nil
}

type memTx struct {
	s    *memStore
	done bool
}

func (t *memTx) finish() {
	if !t.done {
		t.done = true
		t.s.mu.Unlock()
	}
}

func (t *memTx) Commit() error   { t.finish(); return nil }
func (t *memTx) Rollback() error { t.finish(); return nil }

func (t *memTx) RoomForUpdate(ctx context.Context, roomID uint64) (model.RoomType, error) {
	rt, ok := t.s.rooms[roomID]
	if !ok {
		return model.RoomType{}, ErrNotFound
	}
	return rt, nil
}

func (t *memTx) SetTotalRooms(ctx context.Context, roomID uint64, total int) error {
	rt := t.s.rooms[roomID]
	rt.TotalRooms = total
	t.s.rooms[roomID] = rt
	return nil
}

func (t *memTx) DeleteRoom(ctx context.Context, roomID uint64) error {
	delete(t.s.rooms, roomID)
	return nil
}

func (t *memTx) Hotel(ctx context.Context, id uint64) (model.Hotel, error) {
	h, ok := t.s.hotels[id]
	if !ok {
		return model.Hotel{}, ErrNotFound
	}
	return h, nil
}

func (t *memTx) Day(ctx context.Context, roomID uint64, day time.Time) (int, bool, error) {
	d, ok := t.s.days[roomID][day.Format(memDateLayout)]
	if !ok {
		return 0, false, nil
	}
	return d.AvailableRooms, true, nil
}

func (t *memTx) Debit(ctx context.Context, roomID uint64, day time.Time, totalRooms int) error {
	key := day.Format(memDateLayout)
	if d, ok := t.s.days[roomID][key]; ok {
		d.AvailableRooms--
		return nil
	}
	t.s.days[roomID][key] = &model.AvailabilityDay{
		ID:             t.s.id(),
		RoomTypeID:     roomID,
		Date:           day,
		AvailableRooms: totalRooms - 1,
	}
	return nil
}

func (t *memTx) CreditRange(ctx context.Context, roomID uint64, from, to time.Time) error {
	for _, d := range t.s.days[roomID] {
		if !d.Date.Before(from) && d.Date.Before(to) {
			d.AvailableRooms++
		}
	}
	return nil
}

func (t *memTx) Shift(ctx context.Context, roomID uint64, diff int) error {
	for _, d := range t.s.days[roomID] {
		d.AvailableRooms += diff
	}
	return nil
}

func (t *memTx) FirstOversold(ctx context.Context, roomID uint64) (model.AvailabilityDay, bool, error) {
	var found *model.AvailabilityDay
	for _, d := range t.s.days[roomID] {
		if d.AvailableRooms >= 0 {
			continue
		}
		if found == nil || d.Date.Before(found.Date) {
			found = d
		}
	}
	if found == nil {
		return model.AvailabilityDay{}, false, nil
	}
	return *found, true, nil
}

func (t *memTx) SetDayRooms(ctx context.Context, dayID uint64, rooms int) error {
	for _, byDate := range t.s.days {
		for _, d := range byDate {
			if d.ID == dayID {
				d.AvailableRooms = rooms
				return nil
			}
		}
	}
	return ErrNotFound
}

func (t *memTx) DeleteDaysForRoom(ctx context.Context, roomID uint64) error {
	delete(t.s.days, roomID)
	return nil
}

func (t *memTx) CreateReservation(ctx context.Context, res *model.Reservation) error {
	res.ID = t.s.id()
	cp := *res
	t.s.reservations[res.ID] = &cp
	return nil
}

func (t *memTx) Reservation(ctx context.Context, id uint64) (model.Reservation, error) {
	res, ok := t.s.reservations[id]
	if !ok {
		return model.Reservation{}, ErrNotFound
	}
	return *res, nil
}

func (t *memTx) MarkReservationCancelled(ctx context.Context, id uint64) (bool, error) {
	res, ok := t.s.reservations[id]
	if !ok || res.Status == model.ReservationCancelled {
		return false, nil
	}
	res.Status = model.ReservationCancelled
	return true, nil
}

func (t *memTx) Overlapping(ctx context.Context, roomID uint64, day time.Time, limit int) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, res := range t.s.reservations {
		if res.RoomTypeID != roomID || res.Status == model.ReservationCancelled {
			continue
		}
		if !res.CheckInDate.After(day) && res.CheckOutDate.After(day) {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckInDate.Equal(out[j].CheckInDate) {
			return out[i].CheckInDate.After(out[j].CheckInDate)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *memTx) ActiveReservations(ctx context.Context, roomID uint64) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, res := range t.s.reservations {
		if res.RoomTypeID == roomID && res.Status != model.ReservationCancelled {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) CreateBooking(ctx context.Context, b *model.Booking) error {
	b.ID = t.s.id()
	cp := *b
	t.s.bookings[b.ID] = &cp
	return nil
}

func (t *memTx) Booking(ctx context.Context, id uint64) (model.Booking, error) {
	b, ok := t.s.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	return *b, nil
}

func (t *memTx) BookingByReservation(ctx context.Context, reservationID uint64) (model.Booking, bool, error) {
	for _, b := range t.s.bookings {
		if b.ReservationID != nil && *b.ReservationID == reservationID {
			return *b, true, nil
		}
	}
	return model.Booking{}, false, nil
}

func (t *memTx) UpdateBookingRefs(ctx context.Context, b *model.Booking) error {
	stored, ok := t.s.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	stored.ReservationID = b.ReservationID
	stored.FlightReference = b.FlightReference
	stored.Status = b.Status
	return nil
}

// date builds a UTC calendar day for tests.
func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
