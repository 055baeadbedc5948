package joiner

import (
	"context"
	"strings"
	"time"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/aggregate"
)

const unknownAuthor = "Unknown"

// AuthorName picks the first usable display name of u.
func AuthorName(u *models.UserModel) string {
	if u == nil {
		return unknownAuthor
	}
	if name := strings.TrimSpace(u.Fullname); name != "" {
		return name
	}
	if name := strings.TrimSpace(u.Username); name != "" {
		return name
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return unknownAuthor
}

// ArticleView is an article with the views counted from the visit log.
type ArticleView struct {
	ArticleID      int64              `json:"articleId"`
	Title          string             `json:"title"`
	Slug           string             `json:"slug"`
	Category       models.StringArray `json:"category"`
	AuthorName     string             `json:"authorName"`
	CreatedAt      time.Time          `json:"createdAt"`
	ViewCount      int64              `json:"viewCount"`
	TotalCount     int64              `json:"totalCount"`
	LatestViewDate string             `json:"latestViewDate,omitempty"`
}

// CategoryView is a category with the views counted from the visit log.
type CategoryView struct {
	CategoryID   uint   `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	CategorySlug string `json:"categorySlug"`
	ViewCount    int64  `json:"viewCount"`
}

// ArticleJoin is the result of JoinArticles. Orphans are view keys with no
// matching article.
type ArticleJoin struct {
	Articles []ArticleView
	Found    []models.ArticleModel
	Orphans  []string
}

// Joiner resolves view counts against a Store.
type Joiner struct {
	store     Store
	batchSize int
}

func New(store Store, batchSize int) *Joiner {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Joiner{store: store, batchSize: batchSize}
}

// JoinArticles looks up the articles and authors behind counts. Counts whose
// key does not resolve to an article are dropped from Articles.
func (j *Joiner) JoinArticles(ctx context.Context, counts []aggregate.KeyCount) (*ArticleJoin, error) {
	byKey, ids, rejected := mergeNumericCounts(counts)

	articles, err := Batch(ctx, ids, j.batchSize, j.store.ArticlesByArticleID)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]uint, 0, len(articles))
	seenAuthor := make(map[uint]struct{})
	for _, a := range articles {
		if a.AuthorID == nil {
			continue
		}
		if _, ok := seenAuthor[*a.AuthorID]; ok {
			continue
		}
		seenAuthor[*a.AuthorID] = struct{}{}
		authorIDs = append(authorIDs, *a.AuthorID)
	}
	authors, err := Batch(ctx, authorIDs, j.batchSize, j.store.UsersByID)
	if err != nil {
		return nil, err
	}
	authorByID := make(map[uint]*models.UserModel, len(authors))
	for i := range authors {
		authorByID[authors[i].UserID] = &authors[i]
	}

	found := make(map[string]struct{}, len(articles))
	out := &ArticleJoin{Articles: make([]ArticleView, 0, len(articles)), Found: articles}
	for _, a := range articles {
		key := NormalizeKey(a.ArticleID)
		found[key] = struct{}{}
		kc := byKey[key]

		var author *models.UserModel
		if a.AuthorID != nil {
			author = authorByID[*a.AuthorID]
		}
		out.Articles = append(out.Articles, ArticleView{
			ArticleID:      a.ArticleID,
			Title:          a.Title,
			Slug:           a.Slug,
			Category:       a.Category,
			AuthorName:     AuthorName(author),
			CreatedAt:      a.CreatedAt,
			ViewCount:      kc.Count,
			TotalCount:     a.Views,
			LatestViewDate: kc.Latest,
		})
	}

	out.Orphans = append(out.Orphans, rejected...)
	for _, id := range ids {
		key := NormalizeKey(id)
		if _, ok := found[key]; !ok {
			out.Orphans = append(out.Orphans, key)
		}
	}
	return out, nil
}

// mergeNumericCounts folds keys naming the same integer ("0123" and "123")
// into one count keyed by the canonical decimal form.
func mergeNumericCounts(counts []aggregate.KeyCount) (map[string]aggregate.KeyCount, []int64, []string) {
	merged := make(map[string]aggregate.KeyCount, len(counts))
	ids := make([]int64, 0, len(counts))
	var rejected []string
	for _, kc := range counts {
		parsed, bad := NumericKeys([]string{kc.Key})
		if len(bad) > 0 {
			rejected = append(rejected, bad...)
			continue
		}
		key := NormalizeKey(parsed[0])
		cur, ok := merged[key]
		if !ok {
			ids = append(ids, parsed[0])
			kc.Key = key
			merged[key] = kc
			continue
		}
		cur.Count += kc.Count
		if cur.Slug == "" {
			cur.Slug = kc.Slug
		}
		if kc.Latest > cur.Latest {
			cur.Latest = kc.Latest
		}
		merged[key] = cur
	}
	return merged, ids, rejected
}

// JoinCategories matches counts to categories by name or slug. When several
// categories match a key the first one returned wins, and each category
// appears at most once.
func (j *Joiner) JoinCategories(ctx context.Context, counts []aggregate.KeyCount) ([]CategoryView, error) {
	keys := make([]string, len(counts))
	for i, kc := range counts {
		keys[i] = kc.Key
	}
	categories, err := Batch(ctx, keys, j.batchSize, j.store.CategoriesByNameOrSlug)
	if err != nil {
		return nil, err
	}

	byKey := aggregate.IndexByKey(counts)
	claimed := make(map[string]struct{}, len(counts))
	seenCategory := make(map[uint]struct{}, len(categories))
	out := make([]CategoryView, 0, len(counts))
	for _, cat := range categories {
		if _, ok := seenCategory[cat.ID]; ok {
			continue
		}
		key := cat.CategoryName
		kc, ok := byKey[key]
		if !ok {
			key = cat.CategorySlug
			kc, ok = byKey[key]
		}
		if !ok {
			continue
		}
		if _, taken := claimed[key]; taken {
			continue
		}
		claimed[key] = struct{}{}
		seenCategory[cat.ID] = struct{}{}
		out = append(out, CategoryView{
			CategoryID:   cat.ID,
			CategoryName: cat.CategoryName,
			CategorySlug: cat.CategorySlug,
			ViewCount:    kc.Count,
		})
	}
	return out, nil
}
