package platform

import (
	"context"
	"errors"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"gorm.io/gorm"
)

var errPlatformExists = errors.New("platform already exists")

type CreatePlatformDTO struct {
	PlatformID   *int   `json:"platform_id"   binding:"required,min=0"`
	PlatformName string `json:"platform_name" binding:"required"`
	PlatformDesc string `json:"platform_desc"`
	LogoURL      string `json:"logo_url"`
}

type UpdatePlatformDTO struct {
	PlatformName *string `json:"platform_name"`
	PlatformDesc *string `json:"platform_desc"`
	LogoURL      *string `json:"logo_url"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(ctx context.Context) ([]models.PlatformModel, error) {
	var platforms []models.PlatformModel
	return platforms, s.db.WithContext(ctx).Order("platform_id ASC").Find(&platforms).Error
}

func (s *Service) Get(ctx context.Context, id string) (*models.PlatformModel, error) {
	var p models.PlatformModel
	if err := s.db.WithContext(ctx).First(&p, "platform_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) Create(ctx context.Context, dto *CreatePlatformDTO) (*models.PlatformModel, error) {
	p := models.PlatformModel{
		PlatformID:   *dto.PlatformID,
		PlatformName: dto.PlatformName,
		PlatformDesc: dto.PlatformDesc,
		LogoURL:      dto.LogoURL,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errPlatformExists
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) Update(ctx context.Context, id string, dto *UpdatePlatformDTO) (*models.PlatformModel, error) {
	p, err := s.Get(ctx, id)
	if err != nil || p == nil {
		return p, err
	}
	updates := map[string]interface{}{}
	if dto.PlatformName != nil {
		updates["platform_name"] = *dto.PlatformName
	}
	if dto.PlatformDesc != nil {
		updates["platform_desc"] = *dto.PlatformDesc
	}
	if dto.LogoURL != nil {
		updates["logo_url"] = *dto.LogoURL
	}
	if len(updates) == 0 {
		return p, nil
	}
	if err := s.db.WithContext(ctx).Model(p).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the platform together with its access grants.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("platform_id = ?", id).Delete(&models.PlatformAccessModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("platform_id = ?", id).Delete(&models.PlatformModel{})
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}
