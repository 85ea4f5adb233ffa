package port

import (
	"context"
	"rental-project/internal/core/domain"
)

// ListingEventsPort publishes listing change notifications.
type ListingEventsPort interface {
	Publish(ctx context.Context, event domain.ListingEvent) error
}
