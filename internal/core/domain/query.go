package domain

// Operator is a comparison understood by every gateway adapter.
type Operator string

const (
	OpEq       Operator = "eq"
	OpContains Operator = "ilike" // case-insensitive substring; the value is matched literally
	OpGte      Operator = "gte"
	OpIn       Operator = "in" // value is a []string
)

// Predicate compares one column with a value.
type Predicate struct {
	Column string
	Op     Operator
	Value  any
}

func Eq(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpEq, Value: value}
}

func Contains(column, fragment string) Predicate {
	return Predicate{Column: column, Op: OpContains, Value: fragment}
}

func Gte(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpGte, Value: value}
}

func In(column string, values []string) Predicate {
	return Predicate{Column: column, Op: OpIn, Value: values}
}

// Filter is a conjunction of All plus, when AnyOf is not empty, one
// disjunction group ANDed with the rest.
type Filter struct {
	All   []Predicate
	AnyOf []Predicate
}

func (f Filter) IsEmpty() bool {
	return len(f.All) == 0 && len(f.AnyOf) == 0
}

// SortSpec orders by one column. Specs are applied in sequence, so later
// entries break ties of earlier ones.
type SortSpec struct {
	Column     string
	Descending bool
}

// Range selects rows From..To inclusive, zero-indexed.
type Range struct {
	From int
	To   int
}

// PageRange returns the inclusive range covering page p of the given size.
func PageRange(page, size int) Range {
	return Range{From: page * size, To: page*size + size - 1}
}

// Limit is the number of rows the range covers.
func (r Range) Limit() int {
	return r.To - r.From + 1
}

// Query is a read request against a single table. A nil Range reads every
// matching row.
type Query struct {
	Table  string
	Filter Filter
	Sort   []SortSpec
	Range  *Range
}
