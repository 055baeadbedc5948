package aggregate_test

import (
	"testing"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/aggregate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func articleVisit(articleID, slug, createdAt string) models.AnalyticsLogModel {
	rec := visit("v", createdAt)
	rec.ArticleID = articleID
	rec.ArticleSlug = slug
	return rec
}

func TestArticleViews(t *testing.T) {
	records := []models.AnalyticsLogModel{
		articleVisit("123", "", "2024-01-01T00:00:00Z"),
		articleVisit("123", "hello", "2024-01-03T00:00:00Z"),
		articleVisit("", "ignored", "2024-01-03T00:00:00Z"),
		articleVisit("  ", "ignored", "2024-01-03T00:00:00Z"),
		articleVisit("77", "", "2024-01-02T00:00:00Z"),
	}
	rows := aggregate.ArticleViews(records)
	require.Len(t, rows, 2)
	assert.Equal(t, aggregate.KeyCount{Key: "123", Slug: "hello", Count: 2, Latest: "2024-01-03T00:00:00.000Z"}, rows[0])
	assert.Equal(t, "unknown", rows[1].Slug)
}

func TestCategoryViews(t *testing.T) {
	a := visit("v", "2024-01-01T00:00:00Z")
	a.CategorySlug = "Politik"
	b := visit("v", "2024-01-02T00:00:00Z")
	b.CategorySlug = "Politik"
	c := visit("v", "2024-01-02T00:00:00Z")

	rows := aggregate.CategoryViews([]models.AnalyticsLogModel{a, b, c})
	require.Len(t, rows, 1)
	assert.EqualValues(t, 2, rows[0].Count)
	assert.Empty(t, rows[0].Slug)
}

func TestAdPositionBreakdown(t *testing.T) {
	mk := func(position, event string) models.AnalyticsLogModel {
		return models.AnalyticsLogModel{AdPosition: position, EventType: event}
	}
	stats := aggregate.AdPositionBreakdown([]models.AnalyticsLogModel{
		mk("top", "click"),
		mk("top", "CLICK"),
		mk("top", "touch"),
		mk("sidebar", "impression"),
		mk("sidebar", ""),
		mk("", "click"),
	})

	assert.Equal(t, aggregate.AdCounts{Click: 2, Touch: 1}, stats.Positions["top"])
	assert.Equal(t, aggregate.AdCounts{Other: 2}, stats.Positions["sidebar"])
	assert.Equal(t, aggregate.AdCounts{Click: 2, Touch: 1, Other: 2}, stats.Total)
}

func TestLimitAndDirection(t *testing.T) {
	assert.Equal(t, []int{1, 2}, aggregate.Limit([]int{1, 2, 3}, 2))
	assert.Equal(t, []int{1}, aggregate.Limit([]int{1}, 5))
	assert.Equal(t, []int{1, 2}, aggregate.Limit([]int{1, 2}, 0))

	d, err := aggregate.ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, aggregate.Desc, d)
	_, err = aggregate.ParseDirection("sideways")
	assert.Error(t, err)
}
