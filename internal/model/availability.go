package model

import "time"

// AvailabilityDay is the inventory ledger's unit: the number of rooms
// still sellable for one room type on one calendar date. Rows are
// created lazily on the first debit; the absence of a row means the
// day is fully available (available_rooms == the room type's
// TotalRooms), never that it is sold out. AvailableRooms may go
// transiently negative while a capacity reduction is being
// reconciled, and must be back to >= 0 before that transaction
// commits.
type AvailabilityDay struct {
	ID             uint64    // availability_days.id
	RoomTypeID     uint64    // availability_days.room_type_id
	Date           time.Time // availability_days.date (DATE, UTC midnight)
	AvailableRooms int       // availability_days.available_rooms
}
