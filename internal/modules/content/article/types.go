package article

import (
	"errors"
	"time"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
)

type CreateArticleDTO struct {
	ArticleID        *int64             `json:"article_id"`
	PlatformID       *int               `json:"platform_id"       binding:"required"`
	Title            string             `json:"title"             binding:"required"`
	Slug             string             `json:"slug"              binding:"required"`
	Caption          string             `json:"caption"`
	Type             string             `json:"type"`
	Image            string             `json:"image"`
	ImageAlt         string             `json:"image_alt"`
	ImageDescription string             `json:"image_description"`
	MetaTitle        string             `json:"meta_title"`
	ScheduledAt      *time.Time         `json:"scheduled_at"`
	Date             *time.Time         `json:"date"`
	Content          string             `json:"content"`
	Description      string             `json:"description"`
	Tags             models.StringArray `json:"tags"`
	Category         models.StringArray `json:"category"`
	AuthorID         *uint              `json:"author_id"`
	Status           string             `json:"status"`
	ApprovedBy       *uint              `json:"approved_by"`
}

type UpdateArticleDTO struct {
	Title            *string             `json:"title"`
	Slug             *string             `json:"slug"`
	Caption          *string             `json:"caption"`
	Type             *string             `json:"type"`
	Image            *string             `json:"image"`
	ImageAlt         *string             `json:"image_alt"`
	ImageDescription *string             `json:"image_description"`
	MetaTitle        *string             `json:"meta_title"`
	ScheduledAt      *time.Time          `json:"scheduled_at"`
	Date             *time.Time          `json:"date"`
	Content          *string             `json:"content"`
	Description      *string             `json:"description"`
	Tags             *models.StringArray `json:"tags"`
	Category         *models.StringArray `json:"category"`
	AuthorID         *uint               `json:"author_id"`
	Status           *string             `json:"status"`
	ApprovedBy       *uint               `json:"approved_by"`
	ApprovedAt       *time.Time          `json:"approved_at"`
}

// ListQuery holds the article list filters.
type ListQuery struct {
	Search     string
	Tags       []string
	Categories []string
	Status     string
	PlatformID *int
	SortBy     string
	SortOrder  string
}

var (
	errInvalidPlatform   = errors.New("platform_id must be an integer between 0 and 9")
	errSequenceExhausted = errors.New("article sequence exceeded 999 for this day")
	errArticleIDOverflow = errors.New("generated article_id exceeds the 32-bit integer limit")
	errSlugTaken         = errors.New("slug already exists")
	errArticleIDTaken    = errors.New("article_id already exists")
)
