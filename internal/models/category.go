package models

// CategoryModel is an article category. Analytics logs reference it by name or slug.
type CategoryModel struct {
	ID            uint   `json:"id"             gorm:"primaryKey"`
	CategoryName  string `json:"category_name"  gorm:"not null;index"`
	CategorySlug  string `json:"category_slug"  gorm:"uniqueIndex;not null"`
	CategoryDesc  string `json:"category_desc"`
	CategoryCount int    `json:"category_count" gorm:"default:0"`
	PlatformID    string `json:"platform_id"    gorm:"default:xyzonemedia;index"`
	Timestamps
}

func (CategoryModel) TableName() string { return "categories" }
