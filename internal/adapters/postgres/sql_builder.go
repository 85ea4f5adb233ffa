package postgres

import (
	"fmt"
	"rental-project/internal/constants"
	"rental-project/internal/core/domain"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// likeEscaper makes a user fragment match literally inside ILIKE.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// sqlBuilder accumulates positional arguments while a statement is built.
type sqlBuilder struct {
	table string
	args  []any
}

func newSQLBuilder(table string) (*sqlBuilder, error) {
	if !constants.HasTable(table) {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return &sqlBuilder{table: table}, nil
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *sqlBuilder) ident(column string) (string, error) {
	if !constants.HasColumn(b.table, column) {
		return "", fmt.Errorf("unknown column %q on %s", column, b.table)
	}
	return pgx.Identifier{column}.Sanitize(), nil
}

func (b *sqlBuilder) tableIdent() string {
	return pgx.Identifier{b.table}.Sanitize()
}

func (b *sqlBuilder) predicate(p domain.Predicate) (string, error) {
	col, err := b.ident(p.Column)
	if err != nil {
		return "", err
	}
	switch p.Op {
	case domain.OpEq:
		return fmt.Sprintf("%s = %s", col, b.arg(p.Value)), nil
	case domain.OpContains:
		pattern := "%" + likeEscaper.Replace(fmt.Sprint(p.Value)) + "%"
		return fmt.Sprintf("%s ILIKE %s", col, b.arg(pattern)), nil
	case domain.OpGte:
		return fmt.Sprintf("%s >= %s", col, b.arg(p.Value)), nil
	case domain.OpIn:
		values, ok := p.Value.([]string)
		if !ok {
			return "", fmt.Errorf("operator in on %q needs a []string value", p.Column)
		}
		return fmt.Sprintf("%s = ANY(%s)", col, b.arg(values)), nil
	}
	return "", fmt.Errorf("unsupported operator %q", p.Op)
}

// where renders the filter, or "" when it is empty.
func (b *sqlBuilder) where(f domain.Filter) (string, error) {
	var clauses []string
	for _, p := range f.All {
		c, err := b.predicate(p)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, c)
	}
	if len(f.AnyOf) > 0 {
		var alternatives []string
		for _, p := range f.AnyOf {
			c, err := b.predicate(p)
			if err != nil {
				return "", err
			}
			alternatives = append(alternatives, c)
		}
		clauses = append(clauses, "("+strings.Join(alternatives, " OR ")+")")
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), nil
}

func buildSelect(q domain.Query) (string, []any, error) {
	b, err := newSQLBuilder(q.Table)
	if err != nil {
		return "", nil, err
	}
	where, err := b.where(q.Filter)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(b.tableIdent())
	sb.WriteString(where)

	if len(q.Sort) > 0 {
		order := make([]string, 0, len(q.Sort))
		for _, s := range q.Sort {
			col, err := b.ident(s.Column)
			if err != nil {
				return "", nil, err
			}
			if s.Descending {
				order = append(order, col+" DESC")
			} else {
				order = append(order, col+" ASC")
			}
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(order, ", "))
	}

	if q.Range != nil {
		if q.Range.From < 0 || q.Range.To < q.Range.From {
			return "", nil, fmt.Errorf("invalid range %d..%d", q.Range.From, q.Range.To)
		}
		sb.WriteString(fmt.Sprintf(" LIMIT %s OFFSET %s", b.arg(q.Range.Limit()), b.arg(q.Range.From)))
	}
	return sb.String(), b.args, nil
}

func buildInsert(table string, row domain.Row) (string, []any, error) {
	b, err := newSQLBuilder(table)
	if err != nil {
		return "", nil, err
	}
	if len(row) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING *", b.tableIdent()), nil, nil
	}

	columns := sortedKeys(row)
	idents := make([]string, 0, len(columns))
	placeholders := make([]string, 0, len(columns))
	for _, c := range columns {
		ident, err := b.ident(c)
		if err != nil {
			return "", nil, err
		}
		idents = append(idents, ident)
		placeholders = append(placeholders, b.arg(row[c]))
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		b.tableIdent(), strings.Join(idents, ", "), strings.Join(placeholders, ", "))
	return sql, b.args, nil
}

func buildUpdate(table, id string, patch domain.Row) (string, []any, error) {
	b, err := newSQLBuilder(table)
	if err != nil {
		return "", nil, err
	}
	if len(patch) == 0 {
		return "", nil, fmt.Errorf("empty update of %s", table)
	}
	if _, ok := patch["id"]; ok {
		return "", nil, fmt.Errorf("id cannot be updated")
	}

	columns := sortedKeys(patch)
	sets := make([]string, 0, len(columns))
	for _, c := range columns {
		ident, err := b.ident(c)
		if err != nil {
			return "", nil, err
		}
		sets = append(sets, fmt.Sprintf("%s = %s", ident, b.arg(patch[c])))
	}
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		b.tableIdent(), strings.Join(sets, ", "), pgx.Identifier{"id"}.Sanitize(), b.arg(id))
	return sql, b.args, nil
}

func buildDelete(table string, filter domain.Filter) (string, []any, error) {
	b, err := newSQLBuilder(table)
	if err != nil {
		return "", nil, err
	}
	if filter.IsEmpty() {
		return "", nil, fmt.Errorf("refusing to delete from %s without a filter", table)
	}
	where, err := b.where(filter)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + b.tableIdent() + where, b.args, nil
}

func sortedKeys(row domain.Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
