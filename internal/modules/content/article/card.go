package article

import (
	"time"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/storage"
)

// cardDateLayout renders dates like "Feb 6 2025".
const cardDateLayout = "Jan 2 2006"

type AuthorCard struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Avatar   string `json:"avatar"`
}

// Card is the compact article shape used by front-page listings.
type Card struct {
	ID          uint        `json:"_id"`
	ArticleID   int64       `json:"article_id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Views       int64       `json:"views"`
	Author      *AuthorCard `json:"author"`
}

// CardPresenter turns articles into cards with public image URLs.
type CardPresenter struct {
	ImageBase string
	Location  *time.Location
}

func (p CardPresenter) Card(a *models.ArticleModel) *Card {
	if a == nil {
		return nil
	}
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	card := &Card{
		ID:          a.ID,
		ArticleID:   a.ArticleID,
		Title:       a.Title,
		Slug:        a.Slug,
		Description: a.Description,
		Image:       storage.PublicURL(p.ImageBase, a.Image),
		Views:       a.Views,
	}
	if !a.Date.IsZero() {
		card.Date = a.Date.In(loc).Format(cardDateLayout)
	}
	if a.Author != nil {
		card.Author = &AuthorCard{
			UserID:   a.Author.UserID,
			Username: a.Author.Username,
			Fullname: a.Author.Fullname,
			Avatar:   a.Author.Avatar,
		}
	}
	return card
}
