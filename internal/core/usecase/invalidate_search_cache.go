package usecase

import (
	"context"
	"fmt"
	"log"
	"rental-project/internal/core/domain"
	"rental-project/internal/core/port"
)

// InvalidateSearchCacheUseCase drops cached search pages when a listing
// changes anywhere in the deployment.
type InvalidateSearchCacheUseCase struct {
	cache port.SearchCachePort
}

func NewInvalidateSearchCacheUseCase(cache port.SearchCachePort) *InvalidateSearchCacheUseCase {
	return &InvalidateSearchCacheUseCase{cache: cache}
}

func (uc *InvalidateSearchCacheUseCase) Execute(ctx context.Context, event domain.ListingEvent) error {
	if uc.cache == nil {
		log.Printf("InvalidateSearchCacheUseCase: No cache configured, ignoring %s event for listing %s\n", event.Type, event.ListingID)
		return nil
	}
	if err := uc.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate search cache after %s of listing %s: %w", event.Type, event.ListingID, err)
	}
	log.Printf("InvalidateSearchCacheUseCase: Search cache invalidated after %s of listing %s\n", event.Type, event.ListingID)
	return nil
}
