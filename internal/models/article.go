package models

import "time"

// ArticleModel is a news article. ID is the storage key, ArticleID the public
// platform-scoped number.
type ArticleModel struct {
	ID               uint        `json:"_id"               gorm:"column:_id;primaryKey"`
	ArticleID        int64       `json:"article_id"        gorm:"uniqueIndex"`
	PlatformID       int         `json:"platform_id"       gorm:"index"`
	Title            string      `json:"title"             gorm:"not null"`
	Caption          string      `json:"caption"`
	Type             string      `json:"type"              gorm:"default:post"`
	Image            string      `json:"image"`
	ImageAlt         string      `json:"image_alt"`
	ImageDescription string      `json:"image_description"`
	MetaTitle        string      `json:"meta_title"`
	ScheduledAt      *time.Time  `json:"scheduled_at"`
	Date             time.Time   `json:"date"              gorm:"index"`
	Slug             string      `json:"slug"              gorm:"uniqueIndex;not null"`
	Content          string      `json:"content"           gorm:"type:text"`
	Tags             StringArray `json:"tags"              gorm:"type:text"`
	Description      string      `json:"description"       gorm:"type:text"`
	Category         StringArray `json:"category"          gorm:"type:text"`
	AuthorID         *uint       `json:"author_id"         gorm:"index"`
	Author           *UserModel  `json:"author,omitempty"  gorm:"foreignKey:AuthorID;references:UserID"`
	Status           string      `json:"status"            gorm:"default:draft;index"`
	ApprovedBy       *uint       `json:"approved_by"`
	ApprovedAt       *time.Time  `json:"approved_at"`
	IsDeleted        bool        `json:"is_deleted"        gorm:"default:false;index"`
	Views            int64       `json:"views"             gorm:"default:0"`
	Timestamps
}

func (ArticleModel) TableName() string { return "articles" }
