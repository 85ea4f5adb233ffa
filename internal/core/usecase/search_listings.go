package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"rental-project/internal/constants"
	"rental-project/internal/core/domain"
	"rental-project/internal/core/port"
	"sync"
)

// errStaleResponse marks a page that arrived after the criteria it was
// fetched for had been replaced. It never leaves the engine.
var errStaleResponse = errors.New("stale search response discarded")

// SearchEngine turns search criteria into incrementally loaded pages of
// active listings. ApplyCriteria starts a new result set; LoadNextPage
// appends to it. Pages fetched for criteria that have since been replaced
// are dropped when they arrive.
//
// A SearchEngine is safe for concurrent use. The gateway call itself runs
// outside the lock.
type SearchEngine struct {
	gateway  port.GatewayPort
	pageSize int

	mu         sync.Mutex
	criteria   *domain.SearchCriteria
	category   *string
	results    []domain.Listing
	pageCursor int
	isLoading  bool
	hasMore    bool
	generation uint64
	lastErr    error
	// errShown is set once a failure has been reported through State or
	// Snapshot.
	errShown bool
}

// NewSearchEngine creates an engine with no criteria applied yet.
// A pageSize below 1 falls back to constants.DefaultPageSize.
func NewSearchEngine(gateway port.GatewayPort, pageSize int) (*SearchEngine, error) {
	if gateway == nil {
		return nil, fmt.Errorf("search engine: gateway cannot be nil")
	}
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	return &SearchEngine{
		gateway:  gateway,
		pageSize: pageSize,
		hasMore:  true,
	}, nil
}

// ApplyCriteria replaces criteria and category, clears the results and
// loads the first page. Either argument may be nil to drop that filter.
func (e *SearchEngine) ApplyCriteria(ctx context.Context, criteria *domain.SearchCriteria, category *string) error {
	e.mu.Lock()
	e.criteria = copyCriteria(criteria)
	e.category = copyString(category)
	e.results = nil
	e.pageCursor = 0
	e.hasMore = true
	e.isLoading = true
	e.lastErr = nil
	e.errShown = false
	e.generation++
	gen := e.generation
	q := BuildSearchQuery(e.criteria, e.category, 0, e.pageSize)
	e.mu.Unlock()

	log.Printf("SearchEngine: Applying criteria %s (generation %d)\n", describeFilters(criteria, category), gen)
	return e.fetch(ctx, gen, q)
}

// LoadNextPage appends the next page. It does nothing when a load is
// already in flight or the previous page came back short.
func (e *SearchEngine) LoadNextPage(ctx context.Context) error {
	e.mu.Lock()
	if !e.hasMore || e.isLoading {
		e.mu.Unlock()
		return nil
	}
	e.isLoading = true
	e.lastErr = nil
	e.errShown = false
	gen := e.generation
	page := e.pageCursor
	q := BuildSearchQuery(e.criteria, e.category, page, e.pageSize)
	e.mu.Unlock()

	log.Printf("SearchEngine: Loading page %d (generation %d)\n", page, gen)
	return e.fetch(ctx, gen, q)
}

func (e *SearchEngine) fetch(ctx context.Context, gen uint64, q domain.Query) error {
	listings, err := loadListingPage(ctx, e.gateway, q)

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		log.Printf("SearchEngine: %v (generation %d, current %d)\n", errStaleResponse, gen, e.generation)
		return nil
	}
	e.isLoading = false

	if err != nil {
		e.lastErr = err
		e.errShown = false
		log.Printf("SearchEngine: Failed to load page %d: %v\n", e.pageCursor, err)
		return fmt.Errorf("search engine: load page %d: %w", e.pageCursor, err)
	}

	e.results = append(e.results, listings...)
	e.pageCursor++
	e.hasMore = len(listings) == e.pageSize
	log.Printf("SearchEngine: Page loaded with %d listings (total %d, hasMore %v)\n", len(listings), len(e.results), e.hasMore)
	return nil
}

// Snapshot returns a copy of the engine state.
func (e *SearchEngine) Snapshot() domain.SearchPage {
	e.mu.Lock()
	defer e.mu.Unlock()

	return domain.SearchPage{
		Criteria:       copyCriteria(e.criteria),
		ActiveCategory: copyString(e.category),
		Results:        append([]domain.Listing{}, e.results...),
		PageCursor:     e.pageCursor,
		IsLoading:      e.isLoading,
		HasMore:        e.hasMore,
		State:          e.reportStateLocked(),
	}
}

// State reports Loading while a fetch is in flight and Idle otherwise. A
// failed fetch shows as Error exactly once, through State or Snapshot,
// and then returns to Idle.
func (e *SearchEngine) State() domain.SearchState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reportStateLocked()
}

// LastError is the failure of the most recent fetch, if any. It outlives
// the Error state.
func (e *SearchEngine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *SearchEngine) reportStateLocked() domain.SearchState {
	switch {
	case e.isLoading:
		return domain.SearchLoading
	case e.lastErr != nil && !e.errShown:
		e.errShown = true
		return domain.SearchError
	default:
		return domain.SearchIdle
	}
}

// BuildSearchQuery is the properties query for one page of results.
func BuildSearchQuery(criteria *domain.SearchCriteria, category *string, page, pageSize int) domain.Query {
	filter := domain.Filter{
		All: []domain.Predicate{domain.Eq("is_active", true)},
	}
	if category != nil && *category != "" {
		filter.All = append(filter.All, domain.Eq("category_id", *category))
	}
	if criteria != nil {
		if criteria.Location != "" {
			filter.AnyOf = []domain.Predicate{
				domain.Contains("location", criteria.Location),
				domain.Contains("location_bn", criteria.Location),
			}
		}
		if criteria.Guests > 0 {
			filter.All = append(filter.All, domain.Gte("max_guests", criteria.Guests))
		}
	}

	r := domain.PageRange(page, pageSize)
	return domain.Query{
		Table:  constants.TableProperties,
		Filter: filter,
		Sort:   newestFirst(),
		Range:  &r,
	}
}

func newestFirst() []domain.SortSpec {
	return []domain.SortSpec{
		{Column: "created_at", Descending: true},
		{Column: "id", Descending: true},
	}
}

func describeFilters(criteria *domain.SearchCriteria, category *string) string {
	s := "{no criteria}"
	if criteria != nil {
		s = fmt.Sprintf("{location:%q guests:%d}", criteria.Location, criteria.Guests)
	}
	if category != nil {
		s += fmt.Sprintf(" category=%s", *category)
	}
	return s
}

func copyCriteria(c *domain.SearchCriteria) *domain.SearchCriteria {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
