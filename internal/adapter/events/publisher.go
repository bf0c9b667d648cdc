// Package events publishes catalogue events to RabbitMQ so staff tooling
// can react to new inquiries and reviews.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys.
const (
	TopicInquiryCreated  = "inquiry.created"
	TopicReviewSubmitted = "review.submitted"
)

// Envelope is the message body.
type Envelope struct {
	ID         uuid.UUID `json:"id"`
	Topic      string    `json:"topic"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// AMQP publishes JSON envelopes to a durable topic exchange.
type AMQP struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      *slog.Logger

	mu sync.Mutex
}

// NewAMQP dials the broker and declares the exchange.
func NewAMQP(url, exchange string, logger *slog.Logger) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQP{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		log:      logger.With("service", "events"),
	}, nil
}

// Publish sends data under topic as a persistent message.
func (p *AMQP) Publish(ctx context.Context, topic string, data any) error {
	body, err := json.Marshal(newEnvelope(topic, data))
	if err != nil {
		return fmt.Errorf("events.Publish: marshal: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, p.exchange, topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("events.Publish %s: %w", topic, err)
	}
	p.log.DebugContext(ctx, "event published", slog.String("topic", topic))
	return nil
}

// Close closes the channel and the connection.
func (p *AMQP) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, string, any) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }

func newEnvelope(topic string, data any) Envelope {
	return Envelope{
		ID:         uuid.New(),
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}
