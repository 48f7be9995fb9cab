package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const guestDeletedQueueName = "guestlist.guest.deleted"

// GuestDeletedHandler processes one inbound guest-deletion event.
// Returning an error rejects the message without requeueing.
type GuestDeletedHandler func(ev GuestDeletedEvent) error

// StartGuestDeletedConsumer connects to RabbitMQ, declares the durable
// guestlist.guest.deleted queue and feeds each message to the handler.
// It runs a reconnect loop with doubling backoff and keeps running
// through broker restarts; processing errors are logged and the
// offending message is rejected so consumption continues.
func StartGuestDeletedConsumer(handler GuestDeletedHandler) error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("guest-deleted-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeGuestDeleted(conn, handler); err != nil {
			log.Printf("guest-deleted-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeGuestDeleted(conn *amqp.Connection, handler GuestDeletedHandler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("guest-deleted-consumer: set QoS failed: %v", err)
	}

	if _, err = ch.QueueDeclare(guestDeletedQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(guestDeletedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		var ev GuestDeletedEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			log.Printf("guest-deleted-consumer: unmarshal failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		if err := handler(ev); err != nil {
			log.Printf("guest-deleted-consumer: handle %s/%s failed: %v", ev.WeddingID, ev.GuestID, err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}
