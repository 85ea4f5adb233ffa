package usecase

import (
	"context"
	"fmt"
	"log"
	"rental-project/internal/constants"
	"rental-project/internal/core/domain"
	"rental-project/internal/core/port"
	"sync"
	"time"
)

// AdminCatalog is the admin's view of every listing, active or not.
// ToggleActive and Delete write one row and then patch the local list
// without refetching; Refresh replaces the local list wholesale.
type AdminCatalog struct {
	gateway port.GatewayPort
	events  *eventNotifier
	now     func() time.Time

	mu       sync.Mutex
	listings []domain.Listing
}

func NewAdminCatalog(gateway port.GatewayPort, events port.ListingEventsPort) (*AdminCatalog, error) {
	if gateway == nil {
		return nil, fmt.Errorf("admin catalog: gateway cannot be nil")
	}
	return &AdminCatalog{
		gateway: gateway,
		events:  newEventNotifier(events),
		now:     time.Now,
	}, nil
}

// Refresh reloads all listings, newest first.
func (c *AdminCatalog) Refresh(ctx context.Context) ([]domain.Listing, error) {
	listings, err := loadListingPage(ctx, c.gateway, domain.Query{
		Table: constants.TableProperties,
		Sort:  newestFirst(),
	})
	if err != nil {
		return nil, fmt.Errorf("admin catalog: refresh: %w", err)
	}

	c.mu.Lock()
	c.listings = listings
	c.mu.Unlock()

	log.Printf("AdminCatalog: Loaded %d listings\n", len(listings))
	return c.Listings(), nil
}

// Listings returns a copy of the local list.
func (c *AdminCatalog) Listings() []domain.Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Listing{}, c.listings...)
}

// ToggleActive flips is_active of one listing and returns it as now held
// locally.
func (c *AdminCatalog) ToggleActive(ctx context.Context, actor domain.Profile, listingID string) (domain.Listing, error) {
	if !actor.IsAdmin() {
		return domain.Listing{}, domain.ErrNotAdmin
	}

	current, err := c.lookup(ctx, listingID)
	if err != nil {
		return domain.Listing{}, err
	}
	next := !current.IsActive
	now := c.now().UTC()

	err = c.gateway.Update(ctx, constants.TableProperties, listingID, domain.Row{
		"is_active":  next,
		"updated_at": now,
	})
	if err != nil {
		return domain.Listing{}, fmt.Errorf("admin catalog: toggle listing %s: %w", listingID, err)
	}

	current.IsActive = next
	current.UpdatedAt = now
	c.mu.Lock()
	for i := range c.listings {
		if c.listings[i].ID == listingID {
			c.listings[i].IsActive = next
			c.listings[i].UpdatedAt = now
		}
	}
	c.mu.Unlock()

	eventType := domain.ListingDeactivated
	if next {
		eventType = domain.ListingActivated
	}
	log.Printf("AdminCatalog: Listing %s is now %s\n", listingID, eventType)
	c.events.notify(ctx, eventType, listingID, actor.ID)
	return current, nil
}

// Delete removes one listing. Its images and amenity links go with it.
func (c *AdminCatalog) Delete(ctx context.Context, actor domain.Profile, listingID string) error {
	if !actor.IsAdmin() {
		return domain.ErrNotAdmin
	}
	if err := c.gateway.Delete(ctx, constants.TableProperties, listingID); err != nil {
		return fmt.Errorf("admin catalog: delete listing %s: %w", listingID, err)
	}

	c.mu.Lock()
	kept := c.listings[:0]
	for _, l := range c.listings {
		if l.ID != listingID {
			kept = append(kept, l)
		}
	}
	c.listings = kept
	c.mu.Unlock()

	log.Printf("AdminCatalog: Listing %s deleted\n", listingID)
	c.events.notify(ctx, domain.ListingDeleted, listingID, actor.ID)
	return nil
}

// lookup prefers the local list and falls back to reading the row.
func (c *AdminCatalog) lookup(ctx context.Context, listingID string) (domain.Listing, error) {
	c.mu.Lock()
	for _, l := range c.listings {
		if l.ID == listingID {
			c.mu.Unlock()
			return l, nil
		}
	}
	c.mu.Unlock()

	rows, err := c.gateway.Query(ctx, domain.Query{
		Table:  constants.TableProperties,
		Filter: domain.Filter{All: []domain.Predicate{domain.Eq("id", listingID)}},
	})
	if err != nil {
		return domain.Listing{}, fmt.Errorf("admin catalog: read listing %s: %w", listingID, err)
	}
	if len(rows) == 0 {
		return domain.Listing{}, domain.ErrListingNotFound
	}
	return domain.ListingFromRow(rows[0]), nil
}
