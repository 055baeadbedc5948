package access

import (
	"context"
	"errors"
	"strconv"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"gorm.io/gorm"
)

var (
	errGrantExists     = errors.New("platform access already exists")
	errUnknownUser     = errors.New("user does not exist")
	errUnknownPlatform = errors.New("platform does not exist")
)

type CreateAccessDTO struct {
	UserID     uint `json:"user_id"     binding:"required"`
	PlatformID *int `json:"platform_id" binding:"required"`
}

type UpdateAccessDTO struct {
	UserID     *uint `json:"user_id"`
	PlatformID *int  `json:"platform_id"`
}

// Filter narrows the access list; zero values match everything.
type Filter struct {
	UserID     *uint
	PlatformID *int
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.PlatformAccessModel, error) {
	tx := s.db.WithContext(ctx).Preload("User").Preload("Platform").Order("id ASC")
	if f.UserID != nil {
		tx = tx.Where("user_id = ?", *f.UserID)
	}
	if f.PlatformID != nil {
		tx = tx.Where("platform_id = ?", *f.PlatformID)
	}
	var grants []models.PlatformAccessModel
	return grants, tx.Find(&grants).Error
}

func (s *Service) Get(ctx context.Context, id string) (*models.PlatformAccessModel, error) {
	var g models.PlatformAccessModel
	err := s.db.WithContext(ctx).Preload("User").Preload("Platform").First(&g, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateAccessDTO) (*models.PlatformAccessModel, error) {
	if err := s.checkRefs(ctx, dto.UserID, *dto.PlatformID, 0); err != nil {
		return nil, err
	}
	g := models.PlatformAccessModel{UserID: dto.UserID, PlatformID: *dto.PlatformID}
	if err := s.db.WithContext(ctx).Create(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errGrantExists
		}
		return nil, err
	}
	return s.Get(ctx, idString(g.ID))
}

func (s *Service) Update(ctx context.Context, id string, dto *UpdateAccessDTO) (*models.PlatformAccessModel, error) {
	g, err := s.Get(ctx, id)
	if err != nil || g == nil {
		return g, err
	}
	userID, platformID := g.UserID, g.PlatformID
	if dto.UserID != nil {
		userID = *dto.UserID
	}
	if dto.PlatformID != nil {
		platformID = *dto.PlatformID
	}
	if userID == g.UserID && platformID == g.PlatformID {
		return g, nil
	}
	if err := s.checkRefs(ctx, userID, platformID, g.ID); err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(&models.PlatformAccessModel{}).Where("id = ?", g.ID).
		Updates(map[string]interface{}{"user_id": userID, "platform_id": platformID}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errGrantExists
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&models.PlatformAccessModel{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

// checkRefs verifies both sides of a grant exist and that the pair is not
// already granted to a row other than exceptID.
func (s *Service) checkRefs(ctx context.Context, userID uint, platformID int, exceptID uint) error {
	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&models.UserModel{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errUnknownUser
	}
	if err := db.Model(&models.PlatformModel{}).Where("platform_id = ?", platformID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errUnknownPlatform
	}
	tx := db.Model(&models.PlatformAccessModel{}).Where("user_id = ? AND platform_id = ?", userID, platformID)
	if exceptID != 0 {
		tx = tx.Where("id <> ?", exceptID)
	}
	if err := tx.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return errGrantExists
	}
	return nil
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
