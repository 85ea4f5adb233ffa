package usecase

import (
	"context"
	"fmt"
	"rental-project/internal/constants"
	"rental-project/internal/core/domain"
	"rental-project/internal/core/port"
	"sync"
	"time"
)

// pendingQuery is a properties query parked until the test answers it.
type pendingQuery struct {
	q     domain.Query
	reply chan queryResult
}

type queryResult struct {
	rows []domain.Row
	err  error
}

// scriptedGateway answers properties queries through a script function or,
// when none is set, by parking them on pending. Every other table reads as
// empty. Mutations are recorded but not applied.
type scriptedGateway struct {
	mu      sync.Mutex
	calls   []string
	queries []domain.Query
	script  func(q domain.Query) ([]domain.Row, error)
	pending chan pendingQuery
}

func newScriptedGateway() *scriptedGateway {
	return &scriptedGateway{pending: make(chan pendingQuery, 16)}
}

func (g *scriptedGateway) record(call string) {
	g.mu.Lock()
	g.calls = append(g.calls, call)
	g.mu.Unlock()
}

func (g *scriptedGateway) propertyQueries() []domain.Query {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []domain.Query
	for _, q := range g.queries {
		if q.Table == constants.TableProperties {
			out = append(out, q)
		}
	}
	return out
}

func (g *scriptedGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *scriptedGateway) Query(ctx context.Context, q domain.Query) ([]domain.Row, error) {
	g.record("query " + q.Table)
	g.mu.Lock()
	g.queries = append(g.queries, q)
	script := g.script
	g.mu.Unlock()

	if q.Table != constants.TableProperties {
		return []domain.Row{}, nil
	}
	if script != nil {
		return script(q)
	}
	p := pendingQuery{q: q, reply: make(chan queryResult, 1)}
	g.pending <- p
	select {
	case r := <-p.reply:
		return r.rows, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *scriptedGateway) Insert(_ context.Context, table string, row domain.Row) (domain.Row, error) {
	g.record("insert " + table)
	return row, nil
}

func (g *scriptedGateway) Update(_ context.Context, table, id string, _ domain.Row) error {
	g.record("update " + table + " " + id)
	return nil
}

func (g *scriptedGateway) Delete(_ context.Context, table, id string) error {
	g.record("delete " + table + " " + id)
	return nil
}

func (g *scriptedGateway) DeleteWhere(_ context.Context, table string, _ domain.Filter) error {
	g.record("delete-where " + table)
	return nil
}

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// listingRows builds n active properties rows with ids prefix-0..prefix-(n-1),
// newest first.
func listingRows(prefix string, n int) []domain.Row {
	rows := make([]domain.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, domain.Row{
			"id":              fmt.Sprintf("%s-%02d", prefix, i),
			"title":           fmt.Sprintf("%s listing %d", prefix, i),
			"location":        "Dhaka",
			"location_bn":     "ঢাকা",
			"max_guests":      int32(4),
			"price_per_night": 2500.0,
			"is_active":       true,
			"created_at":      testEpoch.Add(-time.Duration(i) * time.Hour),
		})
	}
	return rows
}

func listingIDs(listings []domain.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

// countingGateway wraps another gateway and counts every call.
type countingGateway struct {
	inner port.GatewayPort
	mu    sync.Mutex
	calls int
}

func (g *countingGateway) inc() {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
}

func (g *countingGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *countingGateway) Query(ctx context.Context, q domain.Query) ([]domain.Row, error) {
	g.inc()
	return g.inner.Query(ctx, q)
}

func (g *countingGateway) Insert(ctx context.Context, table string, row domain.Row) (domain.Row, error) {
	g.inc()
	return g.inner.Insert(ctx, table, row)
}

func (g *countingGateway) Update(ctx context.Context, table, id string, patch domain.Row) error {
	g.inc()
	return g.inner.Update(ctx, table, id, patch)
}

func (g *countingGateway) Delete(ctx context.Context, table, id string) error {
	g.inc()
	return g.inner.Delete(ctx, table, id)
}

func (g *countingGateway) DeleteWhere(ctx context.Context, table string, filter domain.Filter) error {
	g.inc()
	return g.inner.DeleteWhere(ctx, table, filter)
}
