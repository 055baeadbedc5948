package aggregate

import (
	"sort"
	"strings"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
)

const unknownSlug = "unknown"

// KeyCount is the view count of one article or category key.
type KeyCount struct {
	Key    string `json:"key"`
	Slug   string `json:"slug,omitempty"`
	Count  int64  `json:"count"`
	Latest string `json:"latest"`
}

// ArticleViews counts records per article id. Records without an article id
// are skipped. The slug is the first non-empty one seen, else "unknown".
func ArticleViews(records []models.AnalyticsLogModel) []KeyCount {
	rows := countBy(records, func(r *models.AnalyticsLogModel) (string, string) {
		return strings.TrimSpace(r.ArticleID), r.ArticleSlug
	})
	for i := range rows {
		if rows[i].Slug == "" {
			rows[i].Slug = unknownSlug
		}
	}
	return rows
}

// CategoryViews counts records per category_slug value.
func CategoryViews(records []models.AnalyticsLogModel) []KeyCount {
	return countBy(records, func(r *models.AnalyticsLogModel) (string, string) {
		return strings.TrimSpace(r.CategorySlug), ""
	})
}

func countBy(records []models.AnalyticsLogModel, keyOf func(*models.AnalyticsLogModel) (key, slug string)) []KeyCount {
	groups := make(map[string]*KeyCount)
	for i := range records {
		key, slug := keyOf(&records[i])
		if key == "" {
			continue
		}
		seen := FormatTimestamp(records[i].CreatedAt)
		kc, ok := groups[key]
		if !ok {
			kc = &KeyCount{Key: key, Latest: seen}
			groups[key] = kc
		}
		kc.Count++
		if kc.Slug == "" {
			kc.Slug = slug
		}
		if seen > kc.Latest {
			kc.Latest = seen
		}
	}

	out := make([]KeyCount, 0, len(groups))
	for _, kc := range groups {
		out = append(out, *kc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// IndexByKey maps each KeyCount by its key.
func IndexByKey(rows []KeyCount) map[string]KeyCount {
	out := make(map[string]KeyCount, len(rows))
	for _, r := range rows {
		out[r.Key] = r
	}
	return out
}
