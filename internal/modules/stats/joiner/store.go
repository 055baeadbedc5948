package joiner

import (
	"context"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"gorm.io/gorm"
)

// Store looks up the entities that view counts are joined with.
type Store interface {
	ArticlesByArticleID(ctx context.Context, ids []int64) ([]models.ArticleModel, error)
	UsersByID(ctx context.Context, ids []uint) ([]models.UserModel, error)
	CategoriesByNameOrSlug(ctx context.Context, keys []string) ([]models.CategoryModel, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewGormStore returns a Store backed by db.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) ArticlesByArticleID(ctx context.Context, ids []int64) ([]models.ArticleModel, error) {
	var rows []models.ArticleModel
	err := s.db.WithContext(ctx).
		Select("_id", "article_id", "title", "slug", "category", "author_id", "views", "created_at").
		Where("article_id IN ?", ids).
		Find(&rows).Error
	return rows, err
}

func (s *gormStore) UsersByID(ctx context.Context, ids []uint) ([]models.UserModel, error) {
	var rows []models.UserModel
	err := s.db.WithContext(ctx).
		Select("user_id", "username", "email", "fullname", "first_name", "last_name").
		Where("user_id IN ?", ids).
		Find(&rows).Error
	return rows, err
}

func (s *gormStore) CategoriesByNameOrSlug(ctx context.Context, keys []string) ([]models.CategoryModel, error) {
	var rows []models.CategoryModel
	err := s.db.WithContext(ctx).
		Where("category_name IN ? OR category_slug IN ?", keys, keys).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
