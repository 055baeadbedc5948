package timebucket_test

import (
	"testing"

	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/timebucket"
	"github.com/stretchr/testify/assert"
)

func keysOf[V any](periods []timebucket.Period[V]) []string {
	out := make([]string, len(periods))
	for i, p := range periods {
		out[i] = p.Key
	}
	return out
}

func TestFillDailyZeroFills(t *testing.T) {
	got := timebucket.FillCounts(map[string]int64{"2024-01-02": 5}, date(2024, 1, 1), date(2024, 1, 3), timebucket.Day)

	assert.Equal(t, []timebucket.Period[int64]{
		{Key: "2024-01-01", Value: 0},
		{Key: "2024-01-02", Value: 5},
		{Key: "2024-01-03", Value: 0},
	}, got)
}

func TestFillIsIdempotent(t *testing.T) {
	sparse := map[string]int64{"2024-W02": 3, "2024-W05": 9}
	from, to := date(2024, 1, 3), date(2024, 2, 7)

	for _, g := range []timebucket.Granularity{timebucket.Day, timebucket.Week, timebucket.Month} {
		once := timebucket.FillCounts(sparse, from, to, g)
		twice := timebucket.FillCounts(timebucket.ToMap(once), from, to, g)
		assert.Equal(t, once, twice, string(g))
	}
}

func TestFillWeeklyIncludesEndWeek(t *testing.T) {
	// Wednesday to the Monday twelve days later spans three ISO weeks.
	got := timebucket.FillCounts(nil, date(2024, 1, 3), date(2024, 1, 15), timebucket.Week)
	assert.Equal(t, []string{"2024-W01", "2024-W02", "2024-W03"}, keysOf(got))
}

func TestFillMonthlyHoldsDayOfMonth(t *testing.T) {
	// Jan 31 + 1 month normalises to Mar 2, so February is only present
	// when it has data.
	got := timebucket.FillCounts(nil, date(2024, 1, 31), date(2024, 3, 15), timebucket.Month)
	assert.Equal(t, []string{"2024-01", "2024-03"}, keysOf(got))

	withData := timebucket.FillCounts(map[string]int64{"2024-02": 4}, date(2024, 1, 31), date(2024, 3, 15), timebucket.Month)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, keysOf(withData))
}

func TestFillCompositeZeroValue(t *testing.T) {
	type bucket struct{ Total int }
	got := timebucket.Fill(map[string]*bucket{"2024-01-02": {Total: 2}}, date(2024, 1, 1), date(2024, 1, 2), timebucket.Day,
		func() *bucket { return &bucket{} })

	assert.Equal(t, 0, got[0].Value.Total)
	assert.Equal(t, 2, got[1].Value.Total)
}

func TestFillKeepsOutOfRangeData(t *testing.T) {
	got := timebucket.FillCounts(map[string]int64{"2023-12-31": 1}, date(2024, 1, 1), date(2024, 1, 1), timebucket.Day)
	assert.Equal(t, []string{"2023-12-31", "2024-01-01"}, keysOf(got))
}

func TestFillReversedRangeReturnsSparseOnly(t *testing.T) {
	got := timebucket.FillCounts(map[string]int64{"2024-01-05": 1}, date(2024, 2, 1), date(2024, 1, 1), timebucket.Day)
	assert.Equal(t, []string{"2024-01-05"}, keysOf(got))
	assert.Empty(t, timebucket.FillCounts(nil, date(2024, 2, 1), date(2024, 1, 1), timebucket.Day))
}
