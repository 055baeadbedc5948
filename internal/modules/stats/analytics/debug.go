package analytics

import (
	"context"
	"fmt"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/aggregate"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/joiner"
)

const (
	nullOrEmptySlug    = "NULL_OR_EMPTY"
	debugLogSample     = 200
	debugArticleSample = 20
	debugKeySample     = 10
	debugCategoryLimit = 50
	debugPreview       = 10
)

type CategoryDebugReport struct {
	Analytics struct {
		TotalLogs             int                        `json:"totalLogs"`
		TotalWithCategory     int                        `json:"totalWithCategory"`
		TotalWithoutCategory  int                        `json:"totalWithoutCategory"`
		SampleLogs            []models.AnalyticsLogModel `json:"sampleLogs"`
		AllCategorySlugCounts map[string]int64           `json:"allCategorySlugCounts"`
	} `json:"analytics"`
	Categories struct {
		TotalCategories  int                    `json:"totalCategories"`
		SampleCategories []models.CategoryModel `json:"sampleCategories"`
	} `json:"categories"`
}

// CategoryDebug shows how recent log rows distribute over category_slug values
// next to the known categories, to spot values that never join.
func (s *Service) CategoryDebug(ctx context.Context) (*CategoryDebugReport, error) {
	records, err := s.reader.Read(ctx, LogQuery{
		Columns:     []string{"category_slug", "article_id", "article_slug", "created_at"},
		NewestFirst: true,
		Limit:       debugLogSample,
	})
	if err != nil {
		return nil, err
	}

	var categories []models.CategoryModel
	if err := s.db.WithContext(ctx).Order("id ASC").Limit(debugCategoryLimit).Find(&categories).Error; err != nil {
		return nil, err
	}

	out := &CategoryDebugReport{}
	out.Analytics.TotalLogs = len(records)
	out.Analytics.AllCategorySlugCounts = make(map[string]int64)
	for _, rec := range records {
		slug := rec.CategorySlug
		if slug == "" {
			slug = nullOrEmptySlug
			out.Analytics.TotalWithoutCategory++
		} else {
			out.Analytics.TotalWithCategory++
		}
		out.Analytics.AllCategorySlugCounts[slug]++
	}
	out.Analytics.SampleLogs = aggregate.Limit(records, debugPreview)
	out.Categories.TotalCategories = len(categories)
	out.Categories.SampleCategories = aggregate.Limit(categories, debugPreview)
	return out, nil
}

type IDMatch struct {
	AnalyticsID     string `json:"analyticsId"`
	FoundInArticles bool   `json:"foundInArticles"`
	ArticleID       *int64 `json:"articleId"`
	StringMatch     bool   `json:"stringMatch"`
}

type IDTypeSample struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	IsEmpty     bool   `json:"isEmpty"`
	StringValue string `json:"stringValue"`
}

type ArticleDebugReport struct {
	Analytics struct {
		TotalLogs        int                  `json:"totalLogs"`
		UniqueArticleIDs int                  `json:"uniqueArticleIds"`
		ViewCounts       []aggregate.KeyCount `json:"viewCounts"`
	} `json:"analytics"`
	Articles struct {
		TotalArticles   int                   `json:"totalArticles"`
		SampleArticles  []models.ArticleModel `json:"sampleArticles"`
		MissingArticles []string              `json:"missingArticles"`
		MissingCount    int                   `json:"missingCount"`
	} `json:"articles"`
	IDMatching []IDMatch `json:"idMatching"`
	TypeCheck  struct {
		AnalyticsIDTypes []IDTypeSample `json:"analyticsIdTypes"`
		ArticleIDTypes   []IDTypeSample `json:"articleIdTypes"`
	} `json:"typeCheck"`
}

// ArticleDebug joins a small sample of logged article ids and reports which
// ones have no article, which is how view counts go missing.
func (s *Service) ArticleDebug(ctx context.Context) (*ArticleDebugReport, error) {
	records, err := s.reader.Read(ctx, LogQuery{
		Present:     []string{"article_id"},
		Columns:     []string{"article_id", "article_slug", "created_at"},
		NewestFirst: true,
		Limit:       debugArticleSample,
	})
	if err != nil {
		return nil, err
	}

	counts := aggregate.Limit(aggregate.ArticleViews(records), debugKeySample)
	joined, err := s.joiner.JoinArticles(ctx, counts)
	if err != nil {
		return nil, err
	}

	out := &ArticleDebugReport{}
	out.Analytics.TotalLogs = len(records)
	out.Analytics.UniqueArticleIDs = len(counts)
	out.Analytics.ViewCounts = counts

	out.Articles.TotalArticles = len(joined.Found)
	out.Articles.SampleArticles = aggregate.Limit(joined.Found, 5)
	out.Articles.MissingArticles = joined.Orphans
	if out.Articles.MissingArticles == nil {
		out.Articles.MissingArticles = []string{}
	}
	out.Articles.MissingCount = len(joined.Orphans)

	byKey := make(map[string]int64, len(joined.Found))
	for _, a := range joined.Found {
		byKey[joiner.NormalizeKey(a.ArticleID)] = a.ArticleID
	}
	out.IDMatching = make([]IDMatch, 0, len(counts))
	for _, kc := range counts {
		m := IDMatch{AnalyticsID: kc.Key}
		if id, ok := byKey[joiner.NormalizeKey(kc.Key)]; ok {
			m.FoundInArticles = true
			m.ArticleID = &id
			m.StringMatch = joiner.NormalizeKey(id) == kc.Key
		}
		out.IDMatching = append(out.IDMatching, m)
	}

	for _, rec := range aggregate.Limit(records, 3) {
		out.TypeCheck.AnalyticsIDTypes = append(out.TypeCheck.AnalyticsIDTypes, IDTypeSample{
			ID:          rec.ArticleID,
			Type:        fmt.Sprintf("%T", rec.ArticleID),
			IsEmpty:     rec.ArticleID == "",
			StringValue: rec.ArticleID,
		})
	}
	for _, a := range aggregate.Limit(joined.Found, 3) {
		out.TypeCheck.ArticleIDTypes = append(out.TypeCheck.ArticleIDTypes, IDTypeSample{
			ID:          joiner.NormalizeKey(a.ArticleID),
			Type:        fmt.Sprintf("%T", a.ArticleID),
			StringValue: joiner.NormalizeKey(a.ArticleID),
		})
	}
	return out, nil
}
