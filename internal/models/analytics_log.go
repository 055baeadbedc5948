package models

import "time"

// AnalyticsLogModel is one logged page view or ad event. Rows are never updated.
type AnalyticsLogModel struct {
	Base
	VisitorID     string      `json:"visitor_id"     gorm:"index"`
	SessionID     string      `json:"session_id"`
	IP            string      `json:"ip"             gorm:"index"`
	UserAgent     string      `json:"user_agent"     gorm:"type:text"`
	Platform      string      `json:"platform"`
	Browser       string      `json:"browser"`
	Device        string      `json:"device"`
	OS            string      `json:"os"`
	ScreenWidth   *int        `json:"screen_width"`
	ScreenHeight  *int        `json:"screen_height"`
	Referrer      string      `json:"referrer"       gorm:"type:text"`
	ReferrerURL   string      `json:"referrer_url"   gorm:"type:text"`
	Pathname      string      `json:"pathname"       gorm:"type:text"`
	URL           string      `json:"url"            gorm:"type:text"`
	Type          string      `json:"type"           gorm:"index"`
	IsArticlePage bool        `json:"is_article_page"`
	CategorySlug  string      `json:"category_slug"  gorm:"index"`
	ArticleID     string      `json:"article_id"     gorm:"index"`
	ArticleSlug   string      `json:"article_slug"`
	TagList       StringArray `json:"tag_list"       gorm:"type:text"`
	Timestamp     *time.Time  `json:"timestamp"`
	ExitedAt      *time.Time  `json:"exited_at"`
	Duration      *int64      `json:"duration"`
	PlatformID    string      `json:"platform_id"    gorm:"index"`
	Country       string      `json:"country"`
	EventType     string      `json:"event_type"`
	AdPosition    string      `json:"ad_position"    gorm:"index"`
}

func (AnalyticsLogModel) TableName() string { return "analytics_logs" }

// ValidDuration reports the duration in ms when it is positive.
func (m *AnalyticsLogModel) ValidDuration() (int64, bool) {
	if m.Duration == nil || *m.Duration <= 0 {
		return 0, false
	}
	return *m.Duration, true
}
