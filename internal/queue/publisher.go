package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers task events.
type Publisher interface {
	Publish(ctx context.Context, ev TaskEvent) error
}

// NopPublisher drops every event.  It is used when publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, TaskEvent) error { return nil }

// DefaultDialTimeout bounds connecting to the broker.  Publishing happens
// while the client waits for its response, so it is kept short.
const DefaultDialTimeout = 2 * time.Second

// AMQPPublisher publishes events as persistent JSON messages to a durable
// queue on the default exchange.  Each call dials its own connection, so the
// publisher holds no long-lived broker state.
type AMQPPublisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
	dial        func(url string, timeout time.Duration) (*amqp.Connection, error)
}

// NewAMQPPublisher returns a publisher for the named queue at url.
func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	return &AMQPPublisher{url: url, queue: queue, dialTimeout: DefaultDialTimeout, dial: dialBroker}
}

func dialBroker(url string, timeout time.Duration) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// connectTimeout is the dial timeout capped by ctx's deadline.
func (p *AMQPPublisher) connectTimeout(ctx context.Context) (time.Duration, error) {
	timeout := p.dialTimeout
	if dl, ok := ctx.Deadline(); ok {
		left := time.Until(dl)
		if left <= 0 {
			return 0, context.DeadlineExceeded
		}
		if left < timeout {
			timeout = left
		}
	}
	return timeout, nil
}

// Publish marshals ev and sends it.  Errors are returned to the caller, who
// decides whether they matter; nothing is retried.
func (p *AMQPPublisher) Publish(ctx context.Context, ev TaskEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	timeout, err := p.connectTimeout(ctx)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	conn, err := p.dial(p.url, timeout)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
