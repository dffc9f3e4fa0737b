// Package publisher defines the audit sink for integrated channel transmissions.
package publisher

import "context"

// Publisher publishes transmission events to an external sink.
type Publisher interface {
	// Publish sends one event.
	Publish(ctx context.Context, event *Event) error

	// Close releases publisher resources.
	Close() error
}
