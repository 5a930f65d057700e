package driven

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumeOptions tune how the broker queue is read.
type ConsumeOptions struct {
	Prefetch     int  // messages held without ack
	AutoAck      bool // auto-acknowledge (keep false)
	QueueDurable bool // queue survives broker restarts
}

// INotificationBroker reads order notifications published by the backend.
type INotificationBroker interface {
	// Consume subscribes the queue to the given binding key and returns the
	// delivery channel the consumer reads from.
	Consume(ctx context.Context, queueName, bindingKey string, opts ConsumeOptions) (<-chan amqp.Delivery, error)

	// IsAlive reports the connection state.
	IsAlive() bool

	// Close shuts the channel and connection down.
	Close() error
}
