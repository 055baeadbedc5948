package aggregate

import (
	"fmt"
	"sort"
	"strings"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts asc or desc; empty means desc.
func ParseDirection(raw string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(raw))) {
	case "", Desc:
		return Desc, nil
	case Asc:
		return Asc, nil
	default:
		return "", fmt.Errorf("invalid order_direction %q, expected asc or desc", raw)
	}
}

// Comparator returns <0, 0 or >0 like strings.Compare.
type Comparator[T any] func(a, b T) int

// Orderings maps an order_by name to its comparator.
type Orderings[T any] map[string]Comparator[T]

// Resolve returns the comparator for field, falling back to the fallback
// field when field is empty or unknown. The returned name is the one applied.
func (o Orderings[T]) Resolve(field, fallback string) (string, Comparator[T]) {
	if cmp, ok := o[field]; ok {
		return field, cmp
	}
	return fallback, o[fallback]
}

// Sort stably sorts rows by field in dir and returns the field actually used.
// Equal elements keep their input order in both directions.
func Sort[T any](rows []T, o Orderings[T], field, fallback string, dir Direction) string {
	applied, cmp := o.Resolve(field, fallback)
	if cmp == nil {
		return applied
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := cmp(rows[i], rows[j])
		if dir == Asc {
			return c < 0
		}
		return c > 0
	})
	return applied
}

// Limit returns at most n leading rows; n <= 0 means no cap.
func Limit[T any](rows []T, n int) []T {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	return rows[:n]
}

// CompareInt64 orders int64 ascending.
func CompareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CompareFold orders strings case-insensitively, then by raw bytes.
func CompareFold(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
