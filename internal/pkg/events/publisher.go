package events

import "context"

// Publisher emits domain events to an external stream. Implementations must
// be safe for concurrent use; publishing failures are logged, never fatal.
type Publisher interface {
	Publish(ctx context.Context, eventType string, event any) error
	Close() error
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
func (NoopPublisher) Close() error                               { return nil }
