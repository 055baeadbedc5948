// Package joiner attaches article, author and category metadata to
// log-derived view counts. Lookups are issued in bounded batches so large key
// sets never build an oversized IN clause.
package joiner

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize = 100
	maxInFlight      = 4
)

// Batch splits keys into chunks of at most size and calls fetch for each
// chunk, at most four at a time. Results are concatenated in chunk order.
// The first failing chunk cancels the rest and its error is returned.
func Batch[K, V any](ctx context.Context, keys []K, size int, fetch func(context.Context, []K) ([]V, error)) ([]V, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if size <= 0 {
		size = DefaultBatchSize
	}

	chunks := Chunk(keys, size)
	results := make([][]V, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)
	for i, chunk := range chunks {
		g.Go(func() error {
			rows, err := fetch(gctx, chunk)
			if err != nil {
				return fmt.Errorf("batch %d/%d: %w", i+1, len(chunks), err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, rows := range results {
		total += len(rows)
	}
	out := make([]V, 0, total)
	for _, rows := range results {
		out = append(out, rows...)
	}
	return out, nil
}

// Chunk splits keys into consecutive slices of at most size elements.
func Chunk[K any](keys []K, size int) [][]K {
	if size <= 0 {
		size = DefaultBatchSize
	}
	chunks := make([][]K, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		chunks = append(chunks, keys[start:end])
	}
	return chunks
}

// NormalizeKey renders a numeric or string identifier as the string form used
// for map lookups, so 123 and "123" compare equal.
func NormalizeKey(v any) string {
	switch k := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(k)
	case int:
		return strconv.FormatInt(int64(k), 10)
	case int32:
		return strconv.FormatInt(int64(k), 10)
	case int64:
		return strconv.FormatInt(k, 10)
	case uint:
		return strconv.FormatUint(uint64(k), 10)
	case uint64:
		return strconv.FormatUint(k, 10)
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64)
	case fmt.Stringer:
		return strings.TrimSpace(k.String())
	default:
		return strings.TrimSpace(fmt.Sprint(k))
	}
}

// NumericKeys parses keys that can match an integer column. Keys that are
// not integers are returned separately; they can never join.
func NumericKeys(keys []string) (ids []int64, rejected []string) {
	for _, key := range keys {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			rejected = append(rejected, key)
			continue
		}
		ids = append(ids, id)
	}
	return ids, rejected
}
