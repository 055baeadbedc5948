package joiner_test

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/joiner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchSplitsWithoutLoss(t *testing.T) {
	keys := make([]int, 250)
	for i := range keys {
		keys[i] = i
	}

	var mu sync.Mutex
	var sizes []int
	out, err := joiner.Batch(context.Background(), keys, joiner.DefaultBatchSize, func(_ context.Context, chunk []int) ([]string, error) {
		mu.Lock()
		sizes = append(sizes, len(chunk))
		mu.Unlock()
		rows := make([]string, len(chunk))
		for i, k := range chunk {
			rows[i] = strconv.Itoa(k)
		}
		return rows, nil
	})
	require.NoError(t, err)

	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	assert.Equal(t, []int{100, 100, 50}, sizes)
	require.Len(t, out, 250)
	for i, v := range out {
		assert.Equal(t, strconv.Itoa(i), v, "results keep batch order")
	}
}

func TestBatchBoundsConcurrency(t *testing.T) {
	keys := make([]int, 1000)
	var inFlight, peak atomic.Int32
	_, err := joiner.Batch(context.Background(), keys, 10, func(_ context.Context, chunk []int) ([]int, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer inFlight.Add(-1)
		return chunk, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(4))
}

func TestBatchFailsOnFirstError(t *testing.T) {
	boom := errors.New("store unavailable")
	out, err := joiner.Batch(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, chunk []int) ([]int, error) {
		if chunk[0] == 2 {
			return nil, boom
		}
		return chunk, nil
	})
	require.ErrorIs(t, err, boom)
	assert.Nil(t, out)
}

func TestBatchEmpty(t *testing.T) {
	called := false
	out, err := joiner.Batch(context.Background(), nil, 10, func(context.Context, []string) ([]string, error) {
		called = true
		return nil, nil
	})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.False(t, called)
}

func TestChunk(t *testing.T) {
	chunks := joiner.Chunk([]string{"a", "b", "c"}, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, chunks)
	assert.Empty(t, joiner.Chunk([]string{}, 2))
}

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{123, "123"},
		{int64(123), "123"},
		{uint(123), "123"},
		{"123", "123"},
		{" 123 ", "123"},
		{float64(123), "123"},
		{nil, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, joiner.NormalizeKey(tc.in), "%#v", tc.in)
	}
	assert.Equal(t, joiner.NormalizeKey(123), joiner.NormalizeKey("123"))
}

func TestNumericKeys(t *testing.T) {
	ids, rejected := joiner.NumericKeys([]string{"123", "abc", " 7 ", "12.5"})
	assert.Equal(t, []int64{123, 7}, ids)
	assert.Equal(t, []string{"abc", "12.5"}, rejected)
}
