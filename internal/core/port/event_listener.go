package port

import "context"

// EventListenerPort is an inbound adapter driven by the application loop.
// Start blocks until ctx is cancelled or the listener fails.
type EventListenerPort interface {
	Start(ctx context.Context) error
	Close() error
}
