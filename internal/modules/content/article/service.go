package article

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/pagination"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	defaultSortBy    = "created_at"
	defaultSortOrder = "desc"
	mostViewedLimit  = 5
	mostViewedWindow = 3 * 24 * time.Hour
	createAttempts   = 3
)

var sortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"date":       true,
	"title":      true,
	"views":      true,
	"article_id": true,
	"status":     true,
}

type Options struct {
	// Location decides the calendar day encoded in generated article ids.
	Location *time.Location
	Cards    CardPresenter
	Now      func() time.Time
}

type Service struct {
	db    *gorm.DB
	loc   *time.Location
	cards CardPresenter
	now   func() time.Time
}

func NewService(db *gorm.DB, opts Options) *Service {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	cards := opts.Cards
	if cards.Location == nil {
		cards.Location = loc
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{db: db, loc: loc, cards: cards, now: now}
}

// List returns non-deleted articles matching lq. The meta echoes the sort
// actually applied.
func (s *Service) List(ctx context.Context, q pagination.Query, lq ListQuery) ([]models.ArticleModel, response.Meta, error) {
	sortBy, sortOrder := normalizeSort(lq.SortBy, lq.SortOrder)

	tx := s.db.WithContext(ctx).Model(&models.ArticleModel{}).Where("is_deleted = ?", false)
	if lq.Status != "" {
		tx = tx.Where("status = ?", lq.Status)
	}
	if lq.PlatformID != nil {
		tx = tx.Where("platform_id = ?", *lq.PlatformID)
	}
	if search := strings.ToLower(strings.TrimSpace(lq.Search)); search != "" {
		like := "%" + search + "%"
		tx = tx.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	tx = whereContainsAll(tx, "tags", lq.Tags)
	tx = whereContainsAll(tx, "category", lq.Categories)
	tx = tx.Order(sortBy + " " + sortOrder).Order("_id " + sortOrder)

	var articles []models.ArticleModel
	meta, err := pagination.Paginate(tx, q, &articles)
	meta.SortBy = sortBy
	meta.SortOrder = sortOrder
	return articles, meta, err
}

// whereContainsAll matches JSON string-array columns holding every value.
func whereContainsAll(tx *gorm.DB, column string, values []string) *gorm.DB {
	for _, v := range values {
		encoded, err := json.Marshal(v)
		if err != nil {
			continue
		}
		tx = tx.Where(column+" LIKE ?", "%"+string(encoded)+"%")
	}
	return tx
}

func normalizeSort(sortBy, sortOrder string) (string, string) {
	sortBy = strings.ToLower(strings.TrimSpace(sortBy))
	if !sortColumns[sortBy] {
		sortBy = defaultSortBy
	}
	sortOrder = strings.ToLower(strings.TrimSpace(sortOrder))
	if sortOrder != "asc" {
		sortOrder = defaultSortOrder
	}
	return sortBy, sortOrder
}

// GetByID loads an article by its storage key, with the author.
func (s *Service) GetByID(ctx context.Context, id string) (*models.ArticleModel, error) {
	var a models.ArticleModel
	err := s.db.WithContext(ctx).Preload("Author").
		Where("_id = ? AND is_deleted = ?", id, false).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateArticleDTO) (*models.ArticleModel, error) {
	platformID := *dto.PlatformID
	if platformID < 0 || platformID > maxPlatformID {
		return nil, errInvalidPlatform
	}
	if taken, err := s.slugTaken(ctx, dto.Slug, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, errSlugTaken
	}

	a := newArticle(dto, s.now())
	for attempt := 0; attempt < createAttempts; attempt++ {
		if dto.ArticleID != nil {
			a.ArticleID = *dto.ArticleID
		} else {
			id, err := nextArticleID(ctx, s.db, platformID, s.now().In(s.loc))
			if err != nil {
				return nil, err
			}
			a.ArticleID = id
		}

		err := s.db.WithContext(ctx).Create(a).Error
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		if taken, terr := s.slugTaken(ctx, dto.Slug, 0); terr == nil && taken {
			return nil, errSlugTaken
		}
		if dto.ArticleID != nil {
			return nil, errArticleIDTaken
		}
		// Another writer took the generated id; try the next sequence.
	}
	return nil, errArticleIDTaken
}

func newArticle(dto *CreateArticleDTO, now time.Time) *models.ArticleModel {
	a := &models.ArticleModel{
		PlatformID:       *dto.PlatformID,
		Title:            dto.Title,
		Caption:          dto.Caption,
		Type:             dto.Type,
		Image:            dto.Image,
		ImageAlt:         dto.ImageAlt,
		ImageDescription: dto.ImageDescription,
		MetaTitle:        dto.MetaTitle,
		ScheduledAt:      dto.ScheduledAt,
		Slug:             dto.Slug,
		Content:          dto.Content,
		Description:      dto.Description,
		Tags:             dto.Tags,
		Category:         dto.Category,
		AuthorID:         dto.AuthorID,
		Status:           dto.Status,
		ApprovedBy:       dto.ApprovedBy,
	}
	if a.Type == "" {
		a.Type = "post"
	}
	if a.Status == "" {
		a.Status = "draft"
	}
	if a.Tags == nil {
		a.Tags = models.StringArray{}
	}
	if a.Category == nil {
		a.Category = models.StringArray{}
	}
	a.Date = now.UTC()
	if dto.Date != nil {
		a.Date = dto.Date.UTC()
	}
	return a
}

// Update applies a partial update to the article with the given public id.
func (s *Service) Update(ctx context.Context, articleID string, dto *UpdateArticleDTO) (*models.ArticleModel, error) {
	var a models.ArticleModel
	if err := s.db.WithContext(ctx).Where("article_id = ? AND is_deleted = ?", articleID, false).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	setString := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	setString("title", dto.Title)
	setString("caption", dto.Caption)
	setString("type", dto.Type)
	setString("image", dto.Image)
	setString("image_alt", dto.ImageAlt)
	setString("image_description", dto.ImageDescription)
	setString("meta_title", dto.MetaTitle)
	setString("content", dto.Content)
	setString("description", dto.Description)
	setString("status", dto.Status)
	if dto.Slug != nil {
		taken, err := s.slugTaken(ctx, *dto.Slug, a.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errSlugTaken
		}
		updates["slug"] = *dto.Slug
	}
	if dto.Tags != nil {
		updates["tags"] = *dto.Tags
	}
	if dto.Category != nil {
		updates["category"] = *dto.Category
	}
	if dto.ScheduledAt != nil {
		updates["scheduled_at"] = dto.ScheduledAt.UTC()
	}
	if dto.Date != nil {
		updates["date"] = dto.Date.UTC()
	}
	if dto.AuthorID != nil {
		updates["author_id"] = *dto.AuthorID
	}
	if dto.ApprovedBy != nil {
		updates["approved_by"] = *dto.ApprovedBy
	}
	if dto.ApprovedAt != nil {
		updates["approved_at"] = dto.ApprovedAt.UTC()
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&a).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, strconv.FormatUint(uint64(a.ID), 10))
}

// SoftDelete flags the article as deleted. It reports false when no live
// article has the id.
func (s *Service) SoftDelete(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.ArticleModel{}).
		Where("_id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	return res.RowsAffected > 0, res.Error
}

// MostViewed returns the five most viewed articles dated within the last
// three days.
func (s *Service) MostViewed(ctx context.Context) ([]*Card, error) {
	since := s.now().Add(-mostViewedWindow).UTC()
	var articles []models.ArticleModel
	err := s.db.WithContext(ctx).Preload("Author").
		Where("is_deleted = ? AND date > ?", false, since).
		Order("views DESC").Order("_id DESC").
		Limit(mostViewedLimit).Find(&articles).Error
	if err != nil {
		return nil, err
	}
	cards := make([]*Card, 0, len(articles))
	for i := range articles {
		cards = append(cards, s.cards.Card(&articles[i]))
	}
	return cards, nil
}

func (s *Service) slugTaken(ctx context.Context, slug string, exceptID uint) (bool, error) {
	tx := s.db.WithContext(ctx).Model(&models.ArticleModel{}).Where("slug = ?", slug)
	if exceptID != 0 {
		tx = tx.Where("_id <> ?", exceptID)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
