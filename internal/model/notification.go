package model

import "time"

// Notification is a user-visible event record: new booking,
// cancellation, forced cancellation by the hotel. Writing one is
// fire-and-forget from the caller's point of view; a failed insert
// never rolls back the state change that triggered it.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id
	Title     string    // notifications.title
	Message   string    // notifications.message
	Read      bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}
