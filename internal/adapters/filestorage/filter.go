package filestorage

import (
	"fmt"
	"rental-project/internal/constants"
	"rental-project/internal/core/domain"
	"sort"
	"strings"
	"time"
)

func checkQuery(q domain.Query) error {
	if !constants.HasTable(q.Table) {
		return fmt.Errorf("unknown table %q", q.Table)
	}
	preds := append(append([]domain.Predicate{}, q.Filter.All...), q.Filter.AnyOf...)
	for _, p := range preds {
		if !constants.HasColumn(q.Table, p.Column) {
			return fmt.Errorf("unknown column %q", p.Column)
		}
		switch p.Op {
		case domain.OpEq, domain.OpContains, domain.OpGte:
		case domain.OpIn:
			if _, ok := p.Value.([]string); !ok {
				return fmt.Errorf("operator in on %q needs a []string value", p.Column)
			}
		default:
			return fmt.Errorf("unsupported operator %q", p.Op)
		}
	}
	for _, s := range q.Sort {
		if !constants.HasColumn(q.Table, s.Column) {
			return fmt.Errorf("unknown sort column %q", s.Column)
		}
	}
	if q.Range != nil && (q.Range.From < 0 || q.Range.To < q.Range.From) {
		return fmt.Errorf("invalid range %d..%d", q.Range.From, q.Range.To)
	}
	return nil
}

func checkColumns(table string, row domain.Row) error {
	if !constants.HasTable(table) {
		return fmt.Errorf("unknown table %q", table)
	}
	for col := range row {
		if !constants.HasColumn(table, col) {
			return fmt.Errorf("unknown column %q", col)
		}
	}
	return nil
}

func matchFilter(row domain.Row, f domain.Filter) bool {
	for _, p := range f.All {
		if !matchPredicate(row, p) {
			return false
		}
	}
	if len(f.AnyOf) == 0 {
		return true
	}
	for _, p := range f.AnyOf {
		if matchPredicate(row, p) {
			return true
		}
	}
	return false
}

func matchPredicate(row domain.Row, p domain.Predicate) bool {
	v := row[p.Column]
	switch p.Op {
	case domain.OpEq:
		if v == nil || p.Value == nil {
			return false
		}
		return compareValues(v, p.Value) == 0
	case domain.OpContains:
		if v == nil {
			return false
		}
		fragment := strings.ToLower(fmt.Sprint(p.Value))
		return strings.Contains(strings.ToLower(row.String(p.Column)), fragment)
	case domain.OpGte:
		if v == nil || p.Value == nil {
			return false
		}
		return compareValues(v, p.Value) >= 0
	case domain.OpIn:
		s := row.String(p.Column)
		for _, candidate := range p.Value.([]string) {
			if s == candidate {
				return true
			}
		}
	}
	return false
}

// sortRows orders rows stably. Nulls sort as the largest value, so they
// come last ascending and first descending.
func sortRows(rows []domain.Row, specs []domain.SortSpec) {
	if len(specs) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, s := range specs {
			c := compareValues(rows[i][s.Column], rows[j][s.Column])
			if c == 0 {
				continue
			}
			if s.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareValues orders values of the kinds found in rows: numbers of any
// width, bools, times (or RFC3339 strings) and strings.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		if !ok {
			return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
		}
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	}

	if isNumber(a) || isNumber(b) {
		af, aok := domain.ToFloat(a)
		bf, bok := domain.ToFloat(b)
		if aok && bok {
			return compareFloats(af, bf)
		}
	}

	if isTime(a) || isTime(b) || (looksLikeTime(a) && looksLikeTime(b)) {
		at, aok := domain.ToTime(a)
		bt, bok := domain.ToTime(b)
		if aok && bok {
			return at.Compare(bt)
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func isTime(v any) bool {
	switch v.(type) {
	case time.Time, *time.Time:
		return true
	}
	return false
}

func looksLikeTime(v any) bool {
	s, ok := v.(string)
	if !ok || len(s) < len("2006-01-02T15:04:05Z") {
		return false
	}
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}
