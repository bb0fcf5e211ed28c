package service

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Notifier records user-visible events. Satisfied by the notifications
// repository in production.
type Notifier interface {
	Create(ctx context.Context, userID uint64, title, message string) error
}

// notify is fire-and-forget: a failed notification write is logged and
// never rolls back the state change that triggered it.
func notify(ctx context.Context, n Notifier, userID uint64, title, message string) {
	if n == nil {
		return
	}
	if err := n.Create(ctx, userID, title, message); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"title":   title,
		}).Warn("notification write failed")
	}
}
