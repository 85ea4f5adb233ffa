package constants

const ExchangeListings = "rental_exchange"

// Queue names
const (
	QueueListingChanges = "listing_changes"
)

// Routing keys
const (
	RoutingKeyListingChanged = "listings.changed"
)
