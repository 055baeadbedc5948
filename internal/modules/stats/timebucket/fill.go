package timebucket

import (
	"sort"
	"time"
)

// Period is one entry of a dense series.
type Period[V any] struct {
	Key   string
	Value V
}

// Fill walks from `from` to `to` (inclusive) at granularity g and returns one
// entry per period, taking the value from sparse or zero() when absent.
//
// Steps are +1 day, +7 days or +1 calendar month from `from`. Month steps keep
// the day of month, so a walk starting on the 31st can skip a short month;
// that month still appears when sparse has data for it. The period containing
// `to` is always included. Sparse keys the walk never produced are kept, and
// the result is ordered by key, which is chronological for all three formats.
func Fill[V any](sparse map[string]V, from, to time.Time, g Granularity, zero func() V) []Period[V] {
	seen := make(map[string]struct{}, len(sparse))
	keys := make([]string, 0, len(sparse))
	add := func(key string) {
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	from, to = from.UTC(), to.UTC()
	if !from.After(to) {
		for cur := from; !cur.After(to); cur = step(cur, g) {
			add(Key(g, cur))
		}
		add(Key(g, to))
	}
	for key := range sparse {
		add(key)
	}
	sort.Strings(keys)

	out := make([]Period[V], 0, len(keys))
	for _, key := range keys {
		value, ok := sparse[key]
		if !ok {
			value = zero()
		}
		out = append(out, Period[V]{Key: key, Value: value})
	}
	return out
}

// FillCounts is Fill for plain counters.
func FillCounts(sparse map[string]int64, from, to time.Time, g Granularity) []Period[int64] {
	return Fill(sparse, from, to, g, func() int64 { return 0 })
}

// ToMap turns a filled series back into a map, e.g. to re-fill it.
func ToMap[V any](periods []Period[V]) map[string]V {
	out := make(map[string]V, len(periods))
	for _, p := range periods {
		out[p.Key] = p.Value
	}
	return out
}

func step(t time.Time, g Granularity) time.Time {
	switch g {
	case Week:
		return t.AddDate(0, 0, 7)
	case Month:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}
