// Package pubsub mirrors outbound room events to an external message bus so
// other consumers (history workers, additional nodes) can observe the stream.
// Local delivery never depends on the mirror.
package pubsub

// Bus publishes room-scoped events to external subscribers.
type Bus interface {
	// Publish sends payload under the given subject. Implementations must be
	// safe for concurrent use.
	Publish(subject string, payload []byte) error

	// Close releases the underlying connection.
	Close() error
}

// Noop is the single-node default: events are delivered locally only.
type Noop struct{}

// Publish implements Bus.
func (Noop) Publish(string, []byte) error { return nil }

// Close implements Bus.
func (Noop) Close() error { return nil }
