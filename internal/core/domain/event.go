package domain

import "time"

type ListingEventType string

const (
	ListingCreated     ListingEventType = "created"
	ListingUpdated     ListingEventType = "updated"
	ListingActivated   ListingEventType = "activated"
	ListingDeactivated ListingEventType = "deactivated"
	ListingDeleted     ListingEventType = "deleted"
)

// ListingEvent announces an admin mutation of a listing.
type ListingEvent struct {
	ID         string           `json:"id"`
	Type       ListingEventType `json:"type"`
	ListingID  string           `json:"listing_id"`
	ActorID    string           `json:"actor_id"`
	OccurredAt time.Time        `json:"occurred_at"`
}
