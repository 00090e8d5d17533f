// Package rabbitmq provides the AMQP implementation of the notification
// sink. Events are published to a durable queue; publish failures are the
// caller's to log and never to propagate into the originating operation.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/events"
)

// Notifier publishes events to a RabbitMQ queue.
type Notifier struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	logger *slog.Logger
}

// Ensure Notifier implements events.Emitter
var _ events.Emitter = (*Notifier)(nil)

// NewNotifier dials the broker and declares a durable queue.
func NewNotifier(url, queue string, logger *slog.Logger) (*Notifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial AMQP broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", queue, err)
	}

	return &Notifier{
		conn:   conn,
		ch:     ch,
		queue:  queue,
		logger: logger.With(slog.String("component", "amqp_notifier")),
	}, nil
}

// EmitEvent implements events.Emitter.EmitEvent
func (n *Notifier) EmitEvent(ctx context.Context, event *events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = n.ch.PublishWithContext(ctx,
		"",      // default exchange
		n.queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Type:         event.Name,
			Timestamp:    event.CreatedAt,
			Body:         body,
		},
	)
	if err != nil {
		n.logger.Error("failed to publish event",
			"error", err,
			"event_id", event.ID,
			"event_name", event.Name)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close releases the channel and connection.
func (n *Notifier) Close() error {
	if n == nil {
		return nil
	}
	if n.ch != nil {
		if err := n.ch.Close(); err != nil {
			_ = n.conn.Close()
			return fmt.Errorf("failed to close AMQP channel: %w", err)
		}
	}
	if n.conn != nil {
		if err := n.conn.Close(); err != nil {
			return fmt.Errorf("failed to close AMQP connection: %w", err)
		}
	}
	return nil
}
