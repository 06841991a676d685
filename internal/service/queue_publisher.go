// Package queue_publisher provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow: a draw that committed to the database
// must not be rolled back because the broker was briefly unavailable.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/event-lottery/internal/queue"
)

// PublishEntrantSelected publishes one EntrantSelectedEvent to the
// lottery.selected queue. Messages are marked persistent.
func PublishEntrantSelected(ctx context.Context, ev q.EntrantSelectedEvent) error {
	return publish(ctx, q.SelectedQueueName, ev)
}

// PublishEntrantRemoved publishes an EntrantRemovedEvent to the
// lottery.removed queue.
func PublishEntrantRemoved(ctx context.Context, ev q.EntrantRemovedEvent) error {
	return publish(ctx, q.RemovedQueueName, ev)
}

// publish opens a short-lived connection, declares the durable queue
// (idempotent) and publishes the JSON-encoded payload. It never panics; any
// error is logged and returned so the caller can choose to ignore it.
func publish(ctx context.Context, queueName string, payload any) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
