package editorchoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/content/article"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errUnknownArticles = errors.New("unknown articles")

type SlotDTO struct {
	ArticleID article.Ref `json:"article_id" binding:"required"`
	Position  *int        `json:"position"   binding:"required"`
}

// UpsertDTO keeps the "headlines" key used by the editor UI.
type UpsertDTO struct {
	Headlines []SlotDTO `json:"headlines" binding:"required,dive"`
}

type Entry struct {
	ID         uint          `json:"id"`
	Position   int           `json:"position"`
	PlatformID int           `json:"platform_id"`
	ArticleID  int64         `json:"article_id"`
	Article    *article.Card `json:"article"`
}

type Service struct {
	db       *gorm.DB
	articles *article.Service
}

func NewService(db *gorm.DB, articles *article.Service) *Service {
	return &Service{db: db, articles: articles}
}

func (s *Service) List(ctx context.Context, platformID *int) ([]Entry, error) {
	tx := s.db.WithContext(ctx).
		Preload("Article", "is_deleted = ?", false).
		Preload("Article.Author").
		Order("platform_id ASC").Order("position ASC")
	if platformID != nil {
		tx = tx.Where("platform_id = ?", *platformID)
	}

	var rows []models.EditorChoiceModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	cards := s.articles.Cards()
	out := make([]Entry, 0, len(rows))
	for i := range rows {
		out = append(out, Entry{
			ID:         rows[i].ID,
			Position:   rows[i].Position,
			PlatformID: rows[i].PlatformID,
			ArticleID:  rows[i].ArticleID,
			Article:    cards.Card(rows[i].Article),
		})
	}
	return out, nil
}

// Upsert writes each slot keyed on (position, platform) and returns the
// platform's slots.
func (s *Service) Upsert(ctx context.Context, platformID int, slots []SlotDTO) ([]Entry, error) {
	ids := make([]int64, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, int64(slot.ArticleID))
	}
	missing, err := s.articles.MissingArticleIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", errUnknownArticles, missing)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, slot := range slots {
			row := models.EditorChoiceModel{
				Position:   *slot.Position,
				PlatformID: platformID,
				ArticleID:  int64(slot.ArticleID),
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "position"}, {Name: "platform_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"article_id", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("editor choice at position %d: %w", row.Position, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.List(ctx, &platformID)
}
