package pubsub

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSBus mirrors events to NATS subjects.
type NATSBus struct {
	conn *nats.Conn
}

// ConnectNATS dials the NATS server at url.
func ConnectNATS(url, name string) (*NATSBus, error) {
	conn, err := nats.Connect(url, nats.Name(name))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSBus{conn: conn}, nil
}

// Publish implements Bus.
func (b *NATSBus) Publish(subject string, payload []byte) error {
	if err := b.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close implements Bus.
func (b *NATSBus) Close() error {
	return b.conn.Drain()
}
