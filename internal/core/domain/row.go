package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Row is one record crossing the data gateway, keyed by column name.
// Adapters hand back whatever kinds their driver produces (int32 from pgx,
// float64 and RFC3339 strings after a JSON round trip); the accessors below
// normalize them.
type Row map[string]any

// String returns the column as a string, or "" when absent or null.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// OptString returns nil for absent, null or empty columns.
func (r Row) OptString(col string) *string {
	s := r.String(col)
	if s == "" {
		return nil
	}
	return &s
}

func (r Row) Int(col string) int {
	v, _ := ToFloat(r[col])
	return int(v)
}

func (r Row) Float(col string) float64 {
	v, _ := ToFloat(r[col])
	return v
}

func (r Row) OptFloat(col string) *float64 {
	v, ok := ToFloat(r[col])
	if !ok {
		return nil
	}
	return &v
}

func (r Row) Bool(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func (r Row) Time(col string) time.Time {
	t, _ := ToTime(r[col])
	return t
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ToFloat converts any numeric kind (or a numeric string) to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// ToTime accepts time.Time values and RFC3339 strings.
func ToTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		return parsed, err == nil
	}
	return time.Time{}, false
}
