package models

// HeadlineModel pins an article to a headline slot of a platform.
type HeadlineModel struct {
	ID               uint          `json:"id"                gorm:"primaryKey"`
	Position         int           `json:"position"          gorm:"uniqueIndex:idx_headline_slot,priority:1"`
	PlatformID       int           `json:"platform_id"       gorm:"uniqueIndex:idx_headline_slot,priority:2"`
	HeadlineCategory string        `json:"headline_category" gorm:"uniqueIndex:idx_headline_slot,priority:3;default:''"`
	ArticleID        int64         `json:"article_id"        gorm:"index"`
	Article          *ArticleModel `json:"article,omitempty" gorm:"foreignKey:ArticleID;references:ArticleID"`
	Timestamps
}

func (HeadlineModel) TableName() string { return "headlines" }

// EditorChoiceModel pins an article to an editor-pick slot of a platform.
type EditorChoiceModel struct {
	ID         uint          `json:"id"                gorm:"primaryKey"`
	Position   int           `json:"position"          gorm:"uniqueIndex:idx_editor_choice_slot,priority:1"`
	PlatformID int           `json:"platform_id"       gorm:"uniqueIndex:idx_editor_choice_slot,priority:2"`
	ArticleID  int64         `json:"article_id"        gorm:"index"`
	Article    *ArticleModel `json:"article,omitempty" gorm:"foreignKey:ArticleID;references:ArticleID"`
	Timestamps
}

func (EditorChoiceModel) TableName() string { return "editor_choices" }
