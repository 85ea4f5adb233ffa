package usecase

import (
	"context"
	"log"
	"rental-project/internal/core/domain"
	"rental-project/internal/core/port"
	"time"

	"github.com/google/uuid"
)

// eventNotifier publishes listing changes on a best-effort basis: the
// mutation has already happened, so a failed publish is only logged.
type eventNotifier struct {
	publisher port.ListingEventsPort
}

func newEventNotifier(p port.ListingEventsPort) *eventNotifier {
	return &eventNotifier{publisher: p}
}

func (n *eventNotifier) notify(ctx context.Context, eventType domain.ListingEventType, listingID, actorID string) {
	if n == nil || n.publisher == nil {
		return
	}
	event := domain.ListingEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		ListingID:  listingID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
	if err := n.publisher.Publish(ctx, event); err != nil {
		log.Printf("ListingEvents: Failed to publish %s event for listing %s: %v\n", eventType, listingID, err)
	}
}
