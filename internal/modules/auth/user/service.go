package user

import (
	"context"
	"errors"
	"strings"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/pagination"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/password"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/response"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(ctx context.Context, q pagination.Query) ([]models.UserModel, response.Meta, error) {
	var users []models.UserModel
	tx := s.db.WithContext(ctx).Model(&models.UserModel{}).Order("created_at DESC").Order("user_id DESC")
	meta, err := pagination.Paginate(tx, q, &users)
	return users, meta, err
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.WithContext(ctx).First(&u, "user_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateUserDTO) (*models.UserModel, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))
	if taken, err := s.emailTaken(ctx, email, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, errEmailTaken
	}

	hash, err := password.Hash(dto.Password)
	if err != nil {
		return nil, err
	}
	u := models.UserModel{
		Username:     dto.Username,
		Email:        email,
		PasswordHash: hash,
		Fullname:     dto.Fullname,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Role:         dto.Role,
		Avatar:       dto.Avatar,
		Status:       dto.Status,
	}
	return &u, s.db.WithContext(ctx).Create(&u).Error
}

func (s *Service) Update(ctx context.Context, id string, dto *UpdateUserDTO) (*models.UserModel, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil || u == nil {
		return u, err
	}

	updates := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			updates[column] = *v
		}
	}
	set("username", dto.Username)
	set("status", dto.Status)
	set("fullname", dto.Fullname)
	set("first_name", dto.FirstName)
	set("last_name", dto.LastName)
	set("role", dto.Role)
	set("avatar", dto.Avatar)

	if dto.Email != nil && strings.TrimSpace(*dto.Email) != "" {
		email := strings.ToLower(strings.TrimSpace(*dto.Email))
		taken, err := s.emailTaken(ctx, email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errEmailTaken
		}
		updates["email"] = email
	}
	if dto.Password != nil && *dto.Password != "" {
		hash, err := password.Hash(*dto.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	if len(updates) == 0 {
		return u, nil
	}

	if err := s.db.WithContext(ctx).Model(u).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes the user. It reports false when no row matched.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Where("user_id = ?", id).Delete(&models.UserModel{})
	return res.RowsAffected > 0, res.Error
}

func (s *Service) emailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	tx := s.db.WithContext(ctx).Model(&models.UserModel{}).Where("email = ?", email)
	if exceptID != "" {
		tx = tx.Where("user_id <> ?", exceptID)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
