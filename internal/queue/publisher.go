package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const (
	bookingQueueName      = "booking.created"
	reservationQueueName  = "reservation.created"
	cancellationQueueName = "reservation.cancelled"
)

// PublishBookingCreated publishes a BookingCreatedEvent to the
// booking.created queue. Errors are logged and returned so callers can
// ignore failures without interrupting the request flow; messages are
// marked persistent so they survive broker restarts.
func PublishBookingCreated(ctx context.Context, brokerURL string, event BookingCreatedEvent) error {
	return publish(ctx, brokerURL, bookingQueueName, event)
}

// PublishReservationCreated publishes a ReservationCreatedEvent to the
// reservation.created queue.
func PublishReservationCreated(ctx context.Context, brokerURL string, event ReservationCreatedEvent) error {
	return publish(ctx, brokerURL, reservationQueueName, event)
}

// PublishReservationCancelled publishes a ReservationCancelledEvent to
// the reservation.cancelled queue.
func PublishReservationCancelled(ctx context.Context, brokerURL string, event ReservationCancelledEvent) error {
	return publish(ctx, brokerURL, cancellationQueueName, event)
}

func publish(ctx context.Context, brokerURL, queueName string, event interface{}) error {
	conn, err := amqp.Dial(brokerURL)
	if err != nil {
		log.WithError(err).Warn("rabbitmq dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.WithError(err).WithField("queue", queueName).Warn("rabbitmq queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Warn("event marshal failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.WithError(err).WithField("queue", queueName).Warn("rabbitmq publish failed")
		return err
	}
	return nil
}
