package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher implements Publisher over a NATS connection.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to the NATS server at url and publishes order
// events on subject (SubjectOrderCreated when empty).
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if subject == "" {
		subject = SubjectOrderCreated
	}

	conn, err := nats.Connect(url,
		nats.Name("kickz-checkout"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// PublishOrderCreated publishes the event as JSON.
func (p *NATSPublisher) PublishOrderCreated(ctx context.Context, ev OrderCreated) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderCreated: %w", err)
	}
	if err := p.conn.Publish(p.subject, body); err != nil {
		return fmt.Errorf("publish OrderCreated: %w", err)
	}
	return nil
}

// Close drains the connection, flushing buffered publishes.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
