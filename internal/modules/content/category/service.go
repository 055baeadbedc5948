package category

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"gorm.io/gorm"
)

const defaultPlatformID = "xyzonemedia"

var errSlugTaken = errors.New("category slug already exists")

type CreateCategoryDTO struct {
	CategoryName  string `json:"category_name"  binding:"required"`
	CategorySlug  string `json:"category_slug"  binding:"required"`
	CategoryDesc  string `json:"category_desc"`
	CategoryCount int    `json:"category_count"`
	PlatformID    string `json:"platform_id"`
}

type UpdateCategoryDTO struct {
	CategoryName  *string `json:"category_name"`
	CategorySlug  *string `json:"category_slug"`
	CategoryDesc  *string `json:"category_desc"`
	CategoryCount *int    `json:"category_count"`
	PlatformID    *string `json:"platform_id"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(ctx context.Context, platformID string) ([]models.CategoryModel, error) {
	var cats []models.CategoryModel
	tx := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if platformID != "" {
		tx = tx.Where("platform_id = ?", platformID)
	}
	return cats, tx.Find(&cats).Error
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	if err := s.db.WithContext(ctx).First(&cat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

// GetByQuery resolves a numeric id first, then a slug or name.
func (s *Service) GetByQuery(ctx context.Context, query string) (*models.CategoryModel, error) {
	if _, err := strconv.ParseUint(query, 10, 64); err == nil {
		if cat, err := s.GetByID(ctx, query); err != nil || cat != nil {
			return cat, err
		}
	}

	var cat models.CategoryModel
	err := s.db.WithContext(ctx).
		Where("category_slug = ? OR category_name = ?", query, query).
		Order("id ASC").First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateCategoryDTO) (*models.CategoryModel, error) {
	if taken, err := s.slugTaken(ctx, dto.CategorySlug, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, errSlugTaken
	}

	cat := models.CategoryModel{
		CategoryName:  strings.TrimSpace(dto.CategoryName),
		CategorySlug:  strings.TrimSpace(dto.CategorySlug),
		CategoryDesc:  dto.CategoryDesc,
		CategoryCount: dto.CategoryCount,
		PlatformID:    strings.TrimSpace(dto.PlatformID),
	}
	if cat.PlatformID == "" {
		cat.PlatformID = defaultPlatformID
	}
	if err := s.db.WithContext(ctx).Create(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errSlugTaken
		}
		return nil, err
	}
	return &cat, nil
}

func (s *Service) Update(ctx context.Context, id string, dto *UpdateCategoryDTO) (*models.CategoryModel, error) {
	cat, err := s.GetByID(ctx, id)
	if err != nil || cat == nil {
		return cat, err
	}
	updates := map[string]interface{}{}
	if dto.CategoryName != nil {
		updates["category_name"] = strings.TrimSpace(*dto.CategoryName)
	}
	if dto.CategorySlug != nil {
		slug := strings.TrimSpace(*dto.CategorySlug)
		taken, err := s.slugTaken(ctx, slug, cat.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errSlugTaken
		}
		updates["category_slug"] = slug
	}
	if dto.CategoryDesc != nil {
		updates["category_desc"] = *dto.CategoryDesc
	}
	if dto.CategoryCount != nil {
		updates["category_count"] = *dto.CategoryCount
	}
	if dto.PlatformID != nil {
		updates["platform_id"] = strings.TrimSpace(*dto.PlatformID)
	}
	if len(updates) == 0 {
		return cat, nil
	}
	if err := s.db.WithContext(ctx).Model(cat).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes the category. Articles keep their category labels.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&models.CategoryModel{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (s *Service) slugTaken(ctx context.Context, slug string, exceptID uint) (bool, error) {
	tx := s.db.WithContext(ctx).Model(&models.CategoryModel{}).Where("category_slug = ?", strings.TrimSpace(slug))
	if exceptID != 0 {
		tx = tx.Where("id <> ?", exceptID)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
