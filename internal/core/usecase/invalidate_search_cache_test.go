package usecase

import (
	"context"
	"errors"
	"rental-project/internal/core/domain"
	"testing"
)

type fakeCache struct {
	calls int
	err   error
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.calls++
	return c.err
}

func TestInvalidateSearchCache(t *testing.T) {
	event := domain.ListingEvent{Type: domain.ListingDeleted, ListingID: "p1"}

	cache := &fakeCache{}
	if err := NewInvalidateSearchCacheUseCase(cache).Execute(context.Background(), event); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if cache.calls != 1 {
		t.Fatalf("Invalidate calls = %d, want 1", cache.calls)
	}

	failing := &fakeCache{err: errors.New("redis down")}
	if err := NewInvalidateSearchCacheUseCase(failing).Execute(context.Background(), event); err == nil {
		t.Fatalf("Execute() error = nil, want cache error")
	}

	if err := NewInvalidateSearchCacheUseCase(nil).Execute(context.Background(), event); err != nil {
		t.Fatalf("Execute() without cache error = %v", err)
	}
}
