package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Event types
const (
	TicketPurchased = "ticket.purchased"
	TicketRefunded  = "ticket.refunded"
)

// TicketEvent is published after a purchase or refund commits
type TicketEvent struct {
	Type       string    `json:"type"`
	TicketID   int64     `json:"ticket_id"`
	UserID     uuid.UUID `json:"user_id"`
	TripID     int64     `json:"trip_id"`
	SeatNumber int       `json:"seat_number"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewTicketEvent builds an event of the given type for a ticket
func NewTicketEvent(eventType string, ticket *models.Ticket, at time.Time) TicketEvent {
	return TicketEvent{
		Type:       eventType,
		TicketID:   ticket.ID,
		UserID:     ticket.UserID,
		TripID:     ticket.TripID,
		SeatNumber: ticket.SeatNumber,
		OccurredAt: at.UTC(),
	}
}

// Publisher delivers ticket events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, event TicketEvent) error
	Close() error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

// Publish does nothing
func (NoopPublisher) Publish(ctx context.Context, event TicketEvent) error { return nil }

// Close does nothing
func (NoopPublisher) Close() error { return nil }

// AMQPPublisher publishes events to a durable queue on the default exchange
type AMQPPublisher struct {
	url    string
	queue  string
	logger *logrus.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher dials the broker and declares the queue
func NewAMQPPublisher(url, queue string, logger *logrus.Logger) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, queue: queue, logger: logger}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect must be called with mu held or before the publisher is shared
func (p *AMQPPublisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare queue %s: %w", p.queue, err)
	}

	p.conn = conn
	p.ch = ch
	return nil
}

// Publish sends one persistent JSON message. A closed connection is
// re-dialled once before giving up.
func (p *AMQPPublisher) Publish(ctx context.Context, event TicketEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		if err := p.connect(); err != nil {
			return err
		}
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    uuid.NewString(),
		Type:         event.Type,
		Body:         body,
	}

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.WithFields(logrus.Fields{
		"type":      event.Type,
		"ticket_id": event.TicketID,
		"queue":     p.queue,
	}).Debug("Ticket event published")
	return nil
}

// Close closes the channel and the connection
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NewPublisher returns an AMQP publisher when url is set, and a NoopPublisher
// otherwise or when the broker cannot be reached.
func NewPublisher(url, queue string, logger *logrus.Logger) Publisher {
	if url == "" {
		logger.Info("AMQP_URL not set, ticket events disabled")
		return NoopPublisher{}
	}

	p, err := NewAMQPPublisher(url, queue, logger)
	if err != nil {
		logger.WithError(err).Warn("Broker unavailable, ticket events disabled")
		return NoopPublisher{}
	}

	logger.WithField("queue", queue).Info("Publishing ticket events")
	return p
}
