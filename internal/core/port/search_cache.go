package port

import "context"

// SearchCachePort drops every cached search page.
type SearchCachePort interface {
	Invalidate(ctx context.Context) error
}
