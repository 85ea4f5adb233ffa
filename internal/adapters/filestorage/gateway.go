package filestorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"rental-project/internal/constants"
	"rental-project/internal/core/domain"
	"sync"
	"time"

	"github.com/google/uuid"
)

// columnDefaults mirror the column defaults of the SQL schema.
var columnDefaults = map[string]domain.Row{
	constants.TableProperties: {
		"is_active":    true,
		"rating":       0.0,
		"review_count": 0,
	},
	constants.TableProfiles: {
		"role": string(domain.RoleUser),
	},
	constants.TablePropertyImages: {
		"display_order": 0,
	},
}

// Gateway implements port.GatewayPort over in-memory tables. When a file
// name is given the tables are loaded from it on open and rewritten after
// every mutation.
type Gateway struct {
	filename string
	now      func() time.Time

	mu     sync.RWMutex
	tables map[string][]domain.Row
}

// NewGateway opens the store. An empty filename keeps everything in memory.
func NewGateway(filename string) (*Gateway, error) {
	g := &Gateway{
		filename: filename,
		now:      time.Now,
		tables:   make(map[string][]domain.Row),
	}
	if filename == "" {
		return g, nil
	}

	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("FileStorageGateway: %s does not exist yet, starting empty\n", filename)
		if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for '%s': %w", filename, err)
		}
		return g, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data file '%s': %w", filename, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &g.tables); err != nil {
			return nil, fmt.Errorf("failed to decode data file '%s': %w", filename, err)
		}
	}
	log.Printf("FileStorageGateway: Loaded %d tables from %s\n", len(g.tables), filename)
	return g, nil
}

func (g *Gateway) Query(_ context.Context, q domain.Query) ([]domain.Row, error) {
	if err := checkQuery(q); err != nil {
		return nil, &domain.GatewayError{Op: "query", Table: q.Table, Code: "invalid_query", Err: err}
	}

	g.mu.RLock()
	var matched []domain.Row
	for _, row := range g.tables[q.Table] {
		if matchFilter(row, q.Filter) {
			matched = append(matched, row.Clone())
		}
	}
	g.mu.RUnlock()

	sortRows(matched, q.Sort)

	if q.Range != nil {
		from, to := q.Range.From, q.Range.To+1
		if from >= len(matched) || from < 0 || to <= from {
			return []domain.Row{}, nil
		}
		if to > len(matched) {
			to = len(matched)
		}
		matched = matched[from:to]
	}
	if matched == nil {
		matched = []domain.Row{}
	}
	return matched, nil
}

func (g *Gateway) Insert(_ context.Context, table string, row domain.Row) (domain.Row, error) {
	if err := checkColumns(table, row); err != nil {
		return nil, &domain.GatewayError{Op: "insert", Table: table, Code: "invalid_row", Err: err}
	}

	stored := make(domain.Row, len(constants.Columns[table]))
	for _, col := range constants.Columns[table] {
		stored[col] = nil
	}
	for col, v := range columnDefaults[table] {
		stored[col] = v
	}
	for col, v := range row {
		stored[col] = v
	}
	if stored.String("id") == "" {
		stored["id"] = uuid.NewString()
	}
	now := g.now().UTC()
	if _, ok := stored["created_at"]; ok && stored["created_at"] == nil {
		stored["created_at"] = now
	}
	if _, ok := stored["updated_at"]; ok && stored["updated_at"] == nil {
		stored["updated_at"] = now
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, existing := range g.tables[table] {
		if existing.String("id") == stored.String("id") {
			return nil, &domain.GatewayError{Op: "insert", Table: table, Code: "duplicate_id", Message: fmt.Sprintf("id %s already exists", stored.String("id"))}
		}
	}
	g.tables[table] = append(g.tables[table], stored)
	if err := g.persistLocked(); err != nil {
		return nil, &domain.GatewayError{Op: "insert", Table: table, Err: err}
	}
	return stored.Clone(), nil
}

// Update patches the row with the given id. A missing row is not an error.
func (g *Gateway) Update(_ context.Context, table, id string, patch domain.Row) error {
	if err := checkColumns(table, patch); err != nil {
		return &domain.GatewayError{Op: "update", Table: table, Code: "invalid_row", Err: err}
	}
	if _, ok := patch["id"]; ok {
		return &domain.GatewayError{Op: "update", Table: table, Code: "invalid_row", Message: "id cannot be updated"}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, row := range g.tables[table] {
		if row.String("id") == id {
			for col, v := range patch {
				row[col] = v
			}
		}
	}
	if err := g.persistLocked(); err != nil {
		return &domain.GatewayError{Op: "update", Table: table, Err: err}
	}
	return nil
}

// Delete removes the row with the given id and every child row referencing
// it. A missing row is not an error.
func (g *Gateway) Delete(_ context.Context, table, id string) error {
	if !constants.HasTable(table) {
		return &domain.GatewayError{Op: "delete", Table: table, Code: "invalid_query", Message: "unknown table"}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeLocked(table, domain.Filter{All: []domain.Predicate{domain.Eq("id", id)}})
	for _, child := range constants.ChildTables[table] {
		g.removeLocked(child.Table, domain.Filter{All: []domain.Predicate{domain.Eq(child.Column, id)}})
	}
	if err := g.persistLocked(); err != nil {
		return &domain.GatewayError{Op: "delete", Table: table, Err: err}
	}
	return nil
}

func (g *Gateway) DeleteWhere(_ context.Context, table string, filter domain.Filter) error {
	if err := checkQuery(domain.Query{Table: table, Filter: filter}); err != nil {
		return &domain.GatewayError{Op: "delete", Table: table, Code: "invalid_query", Err: err}
	}
	if filter.IsEmpty() {
		return &domain.GatewayError{Op: "delete", Table: table, Code: "invalid_query", Message: "refusing to delete without a filter"}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeLocked(table, filter)
	if err := g.persistLocked(); err != nil {
		return &domain.GatewayError{Op: "delete", Table: table, Err: err}
	}
	return nil
}

// FindByEmail implements port.ProfileRepositoryPort over the profiles table.
func (g *Gateway) FindByEmail(ctx context.Context, email string) (domain.Profile, error) {
	rows, err := g.Query(ctx, domain.Query{
		Table:  constants.TableProfiles,
		Filter: domain.Filter{All: []domain.Predicate{domain.Eq("email", email)}},
	})
	if err != nil {
		return domain.Profile{}, err
	}
	if len(rows) == 0 {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return domain.ProfileFromRow(rows[0]), nil
}

func (g *Gateway) removeLocked(table string, filter domain.Filter) {
	rows := g.tables[table]
	kept := rows[:0]
	for _, row := range rows {
		if !matchFilter(row, filter) {
			kept = append(kept, row)
		}
	}
	for i := len(kept); i < len(rows); i++ {
		rows[i] = nil
	}
	g.tables[table] = kept
}

// persistLocked rewrites the data file through a temporary file so a crash
// never leaves it half written.
func (g *Gateway) persistLocked() error {
	if g.filename == "" {
		return nil
	}
	data, err := json.MarshalIndent(g.tables, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tables: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(g.filename), ".rental-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file next to '%s': %w", g.filename, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), g.filename); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace '%s': %w", g.filename, err)
	}
	return nil
}
