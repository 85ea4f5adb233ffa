package usecase

import (
	"context"
	"errors"
	"rental-project/internal/constants"
	"rental-project/internal/core/domain"
	"testing"
)

func newTestEngine(t *testing.T, gw *scriptedGateway) *SearchEngine {
	t.Helper()
	engine, err := NewSearchEngine(gw, constants.DefaultPageSize)
	if err != nil {
		t.Fatalf("NewSearchEngine() error = %v", err)
	}
	return engine
}

func pagedScript(pages ...[]domain.Row) func(q domain.Query) ([]domain.Row, error) {
	return func(q domain.Query) ([]domain.Row, error) {
		page := q.Range.From / constants.DefaultPageSize
		if page < len(pages) {
			return pages[page], nil
		}
		return []domain.Row{}, nil
	}
}

func TestBuildSearchQuery(t *testing.T) {
	category := "cat-1"
	q := BuildSearchQuery(&domain.SearchCriteria{Location: "dhaka", Guests: 2}, &category, 2, 12)

	if q.Table != constants.TableProperties {
		t.Fatalf("Table = %q, want %q", q.Table, constants.TableProperties)
	}
	wantAll := []domain.Predicate{
		domain.Eq("is_active", true),
		domain.Eq("category_id", "cat-1"),
		domain.Gte("max_guests", 2),
	}
	if len(q.Filter.All) != len(wantAll) {
		t.Fatalf("All = %v, want %v", q.Filter.All, wantAll)
	}
	for i := range wantAll {
		if q.Filter.All[i] != wantAll[i] {
			t.Fatalf("All[%d] = %v, want %v", i, q.Filter.All[i], wantAll[i])
		}
	}
	wantAny := []domain.Predicate{domain.Contains("location", "dhaka"), domain.Contains("location_bn", "dhaka")}
	if len(q.Filter.AnyOf) != 2 || q.Filter.AnyOf[0] != wantAny[0] || q.Filter.AnyOf[1] != wantAny[1] {
		t.Fatalf("AnyOf = %v, want %v", q.Filter.AnyOf, wantAny)
	}
	if *q.Range != (domain.Range{From: 24, To: 35}) {
		t.Fatalf("Range = %v, want 24..35", *q.Range)
	}
	if len(q.Sort) != 2 || q.Sort[0] != (domain.SortSpec{Column: "created_at", Descending: true}) || q.Sort[1] != (domain.SortSpec{Column: "id", Descending: true}) {
		t.Fatalf("Sort = %v, want created_at desc, id desc", q.Sort)
	}
}

func TestBuildSearchQueryWithoutFilters(t *testing.T) {
	q := BuildSearchQuery(&domain.SearchCriteria{}, nil, 0, 12)
	if len(q.Filter.All) != 1 || q.Filter.All[0] != domain.Eq("is_active", true) {
		t.Fatalf("All = %v, want only is_active", q.Filter.All)
	}
	if len(q.Filter.AnyOf) != 0 {
		t.Fatalf("AnyOf = %v, want empty", q.Filter.AnyOf)
	}
}

func TestSearchDhakaTwoGuestsLoadsSeventeen(t *testing.T) {
	ctx := context.Background()
	gw := newScriptedGateway()
	gw.script = pagedScript(listingRows("a", 12), listingRows("b", 5))
	engine := newTestEngine(t, gw)

	criteria := domain.NewSearchCriteria("  dhaka ", 1, 1)
	if err := engine.ApplyCriteria(ctx, &criteria, nil); err != nil {
		t.Fatalf("ApplyCriteria() error = %v", err)
	}
	snap := engine.Snapshot()
	if len(snap.Results) != 12 || !snap.HasMore || snap.PageCursor != 1 {
		t.Fatalf("after first page: results=%d hasMore=%v cursor=%d, want 12 true 1", len(snap.Results), snap.HasMore, snap.PageCursor)
	}

	if err := engine.LoadNextPage(ctx); err != nil {
		t.Fatalf("LoadNextPage() error = %v", err)
	}
	snap = engine.Snapshot()
	if len(snap.Results) != 17 {
		t.Fatalf("results = %d, want 17", len(snap.Results))
	}
	if snap.HasMore {
		t.Fatalf("hasMore = true after short page, want false")
	}
	if snap.State != domain.SearchIdle {
		t.Fatalf("state = %q, want idle", snap.State)
	}
	if got := listingIDs(snap.Results); got[0] != "a-00" || got[11] != "a-11" || got[12] != "b-00" || got[16] != "b-04" {
		t.Fatalf("results not appended in page order: %v", got)
	}

	queries := gw.propertyQueries()
	if len(queries) != 2 {
		t.Fatalf("properties queries = %d, want 2", len(queries))
	}
	if *queries[0].Range != (domain.Range{From: 0, To: 11}) || *queries[1].Range != (domain.Range{From: 12, To: 23}) {
		t.Fatalf("ranges = %v, %v, want 0..11 and 12..23", *queries[0].Range, *queries[1].Range)
	}
	if queries[0].Filter.AnyOf[0].Value != "dhaka" {
		t.Fatalf("location fragment = %v, want trimmed dhaka", queries[0].Filter.AnyOf[0].Value)
	}
	if queries[0].Filter.All[1] != domain.Gte("max_guests", 2) {
		t.Fatalf("guest predicate = %v, want max_guests >= 2", queries[0].Filter.All[1])
	}

	if err := engine.LoadNextPage(ctx); err != nil {
		t.Fatalf("LoadNextPage() after end error = %v", err)
	}
	if n := len(gw.propertyQueries()); n != 2 {
		t.Fatalf("properties queries after end = %d, want no new query", n)
	}
}

func TestSearchExactlyFullLastPageNeedsOneMoreLoad(t *testing.T) {
	ctx := context.Background()
	gw := newScriptedGateway()
	gw.script = pagedScript(listingRows("a", 12))
	engine := newTestEngine(t, gw)

	if err := engine.ApplyCriteria(ctx, nil, nil); err != nil {
		t.Fatalf("ApplyCriteria() error = %v", err)
	}
	if !engine.Snapshot().HasMore {
		t.Fatalf("hasMore = false after full page")
	}
	if err := engine.LoadNextPage(ctx); err != nil {
		t.Fatalf("LoadNextPage() error = %v", err)
	}
	snap := engine.Snapshot()
	if snap.HasMore || len(snap.Results) != 12 {
		t.Fatalf("after empty page: hasMore=%v results=%d, want false 12", snap.HasMore, len(snap.Results))
	}
}

func TestSearchStaleResponseIsDiscarded(t *testing.T) {
	for _, olderFirst := range []bool{true, false} {
		ctx := context.Background()
		gw := newScriptedGateway()
		engine := newTestEngine(t, gw)

		a := domain.SearchCriteria{Location: "sylhet"}
		b := domain.SearchCriteria{Location: "dhaka"}

		errA := make(chan error, 1)
		go func() { errA <- engine.ApplyCriteria(ctx, &a, nil) }()
		pendingA := <-gw.pending

		errB := make(chan error, 1)
		go func() { errB <- engine.ApplyCriteria(ctx, &b, nil) }()
		pendingB := <-gw.pending

		snap := engine.Snapshot()
		if len(snap.Results) != 0 || snap.PageCursor != 0 || !snap.IsLoading {
			t.Fatalf("while B in flight: results=%d cursor=%d loading=%v, want 0 0 true", len(snap.Results), snap.PageCursor, snap.IsLoading)
		}

		if olderFirst {
			pendingA.reply <- queryResult{rows: listingRows("a", 12)}
			if err := <-errA; err != nil {
				t.Fatalf("stale ApplyCriteria() error = %v, want nil", err)
			}
			if !engine.Snapshot().IsLoading {
				t.Fatalf("stale response cleared the loading flag")
			}
			pendingB.reply <- queryResult{rows: listingRows("b", 5)}
			if err := <-errB; err != nil {
				t.Fatalf("ApplyCriteria(B) error = %v", err)
			}
		} else {
			pendingB.reply <- queryResult{rows: listingRows("b", 5)}
			if err := <-errB; err != nil {
				t.Fatalf("ApplyCriteria(B) error = %v", err)
			}
			pendingA.reply <- queryResult{rows: listingRows("a", 12)}
			if err := <-errA; err != nil {
				t.Fatalf("stale ApplyCriteria() error = %v, want nil", err)
			}
		}

		snap = engine.Snapshot()
		if len(snap.Results) != 5 {
			t.Fatalf("olderFirst=%v: results = %d, want only B's 5", olderFirst, len(snap.Results))
		}
		for _, l := range snap.Results {
			if l.ID[0] != 'b' {
				t.Fatalf("olderFirst=%v: result %s came from stale criteria", olderFirst, l.ID)
			}
		}
		if snap.HasMore || snap.IsLoading || snap.PageCursor != 1 {
			t.Fatalf("olderFirst=%v: hasMore=%v loading=%v cursor=%d, want false false 1", olderFirst, snap.HasMore, snap.IsLoading, snap.PageCursor)
		}
		if snap.Criteria == nil || snap.Criteria.Location != "dhaka" {
			t.Fatalf("criteria = %v, want dhaka", snap.Criteria)
		}
	}
}

func TestSearchLoadNextPageIsNoOpWhileLoading(t *testing.T) {
	ctx := context.Background()
	gw := newScriptedGateway()
	engine := newTestEngine(t, gw)

	done := make(chan error, 1)
	go func() { done <- engine.ApplyCriteria(ctx, nil, nil) }()
	pending := <-gw.pending

	if err := engine.LoadNextPage(ctx); err != nil {
		t.Fatalf("LoadNextPage() while loading error = %v", err)
	}
	if n := len(gw.propertyQueries()); n != 1 {
		t.Fatalf("properties queries = %d, want 1", n)
	}
	if engine.State() != domain.SearchLoading {
		t.Fatalf("state = %q, want loading", engine.State())
	}

	pending.reply <- queryResult{rows: listingRows("a", 3)}
	if err := <-done; err != nil {
		t.Fatalf("ApplyCriteria() error = %v", err)
	}
	if got := len(engine.Snapshot().Results); got != 3 {
		t.Fatalf("results = %d, want 3", got)
	}
}

func TestSearchFailureKeepsResults(t *testing.T) {
	ctx := context.Background()
	gw := newScriptedGateway()
	fail := true
	gw.script = func(q domain.Query) ([]domain.Row, error) {
		if q.Range.From == 0 {
			return listingRows("a", 12), nil
		}
		if fail {
			return nil, errors.New("connection reset")
		}
		return listingRows("b", 2), nil
	}
	engine := newTestEngine(t, gw)

	if err := engine.ApplyCriteria(ctx, nil, nil); err != nil {
		t.Fatalf("ApplyCriteria() error = %v", err)
	}

	err := engine.LoadNextPage(ctx)
	if err == nil {
		t.Fatalf("LoadNextPage() error = nil, want gateway error")
	}
	if !domain.IsGatewayError(err) {
		t.Fatalf("LoadNextPage() error = %v, want a GatewayError", err)
	}
	snap := engine.Snapshot()
	if len(snap.Results) != 12 || !snap.HasMore || snap.IsLoading || snap.PageCursor != 1 {
		t.Fatalf("after failure: results=%d hasMore=%v loading=%v cursor=%d, want 12 true false 1", len(snap.Results), snap.HasMore, snap.IsLoading, snap.PageCursor)
	}
	if snap.State != domain.SearchError {
		t.Fatalf("state = %q, want error", snap.State)
	}
	if got := engine.State(); got != domain.SearchIdle {
		t.Fatalf("state after the failure was reported = %q, want idle", got)
	}
	if !domain.IsGatewayError(engine.LastError()) {
		t.Fatalf("LastError() = %v, want the gateway failure kept", engine.LastError())
	}

	fail = false
	if err := engine.LoadNextPage(ctx); err != nil {
		t.Fatalf("retry LoadNextPage() error = %v", err)
	}
	snap = engine.Snapshot()
	if len(snap.Results) != 14 || snap.HasMore || snap.State != domain.SearchIdle {
		t.Fatalf("after retry: results=%d hasMore=%v state=%q, want 14 false idle", len(snap.Results), snap.HasMore, snap.State)
	}
}

func TestSearchApplyCriteriaResetsWholesale(t *testing.T) {
	ctx := context.Background()
	gw := newScriptedGateway()
	gw.script = pagedScript(listingRows("a", 12), listingRows("a2", 12))
	engine := newTestEngine(t, gw)

	first := domain.SearchCriteria{Location: "dhaka", Guests: 4}
	if err := engine.ApplyCriteria(ctx, &first, nil); err != nil {
		t.Fatalf("ApplyCriteria() error = %v", err)
	}
	if err := engine.LoadNextPage(ctx); err != nil {
		t.Fatalf("LoadNextPage() error = %v", err)
	}

	category := "villa"
	second := domain.SearchCriteria{Location: "sylhet"}
	if err := engine.ApplyCriteria(ctx, &second, &category); err != nil {
		t.Fatalf("ApplyCriteria() error = %v", err)
	}
	snap := engine.Snapshot()
	if len(snap.Results) != 12 || snap.PageCursor != 1 {
		t.Fatalf("results=%d cursor=%d, want 12 1", len(snap.Results), snap.PageCursor)
	}

	queries := gw.propertyQueries()
	last := queries[len(queries)-1]
	for _, p := range last.Filter.All {
		if p.Column == "max_guests" {
			t.Fatalf("guest filter from replaced criteria leaked into %v", last.Filter.All)
		}
	}
	if *last.Range != (domain.Range{From: 0, To: 11}) {
		t.Fatalf("range = %v, want page 0", *last.Range)
	}
	if snap.ActiveCategory == nil || *snap.ActiveCategory != "villa" {
		t.Fatalf("active category = %v, want villa", snap.ActiveCategory)
	}
}

func TestSearchAttachesImagesAndCategories(t *testing.T) {
	ctx := context.Background()
	gw := &detailGateway{scriptedGateway: newScriptedGateway()}
	gw.script = pagedScript(listingRows("a", 2))
	engine, _ := NewSearchEngine(gw, 12)

	if err := engine.ApplyCriteria(ctx, nil, nil); err != nil {
		t.Fatalf("ApplyCriteria() error = %v", err)
	}
	first := engine.Snapshot().Results[0]
	if len(first.Images) != 2 || first.Images[0].ImageURL != "front.jpg" || first.Images[1].ImageURL != "back.jpg" {
		t.Fatalf("images = %+v, want front.jpg then back.jpg", first.Images)
	}
	if first.Category == nil || first.Category.Name != "Apartment" {
		t.Fatalf("category = %+v, want Apartment", first.Category)
	}
}

// detailGateway serves fixed image and category rows for listing a-00.
type detailGateway struct {
	*scriptedGateway
}

func (g *detailGateway) Query(ctx context.Context, q domain.Query) ([]domain.Row, error) {
	switch q.Table {
	case constants.TablePropertyImages:
		return []domain.Row{
			{"id": "i2", "property_id": "a-00", "image_url": "back.jpg", "display_order": int32(1)},
			{"id": "i1", "property_id": "a-00", "image_url": "front.jpg", "display_order": int32(0)},
		}, nil
	case constants.TableCategories:
		return []domain.Row{{"id": "cat", "name": "Apartment", "name_bn": "অ্যাপার্টমেন্ট"}}, nil
	case constants.TableProperties:
		rows, err := g.scriptedGateway.Query(ctx, q)
		for _, r := range rows {
			r["category_id"] = "cat"
		}
		return rows, err
	}
	return g.scriptedGateway.Query(ctx, q)
}
