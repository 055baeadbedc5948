package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// flexID accepts a JSON string or number and keeps its decimal text.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// IngestDTO is the tracker payload. Client fields are camelCase; page
// context fields keep the snake_case names the tracker has always sent.
type IngestDTO struct {
	VisitorID     string     `json:"visitorId"`
	SessionID     string     `json:"sessionId"`
	IP            string     `json:"ip"`
	UserAgent     string     `json:"userAgent"`
	Platform      string     `json:"platform"`
	Browser       string     `json:"browser"`
	Device        string     `json:"device"`
	OS            string     `json:"os"`
	ScreenWidth   *int       `json:"screenWidth"`
	ScreenHeight  *int       `json:"screenHeight"`
	Referrer      string     `json:"referrer"`
	ReferrerURL   string     `json:"referrerUrl"`
	Pathname      string     `json:"pathname"`
	URL           string     `json:"url"`
	Type          string     `json:"type"`
	IsArticlePage *bool      `json:"is_article_page"`
	CategorySlug  string     `json:"category_slug"`
	ArticleID     flexID     `json:"article_id"`
	ArticleSlug   string     `json:"article_slug"`
	TagList       []string   `json:"tag_list"`
	Timestamp     *time.Time `json:"timestamp"`
	ExitedAt      *time.Time `json:"exitedAt"`
	Duration      *int64     `json:"duration"`
	PlatformID    flexID     `json:"platform_id"`
	Country       string     `json:"country"`
	EventType     string     `json:"event_type"`
	AdPosition    string     `json:"ad_position"`
}

// toModel fills browser, os and device from the user agent when the client
// left them empty. clientIP and headerUA are used when the payload has none.
func (d *IngestDTO) toModel(clientIP, headerUA string, now time.Time) *models.AnalyticsLogModel {
	ua := firstNonBlank(d.UserAgent, headerUA)
	parsed := parseUserAgent(ua)

	rec := &models.AnalyticsLogModel{
		VisitorID:    strings.TrimSpace(d.VisitorID),
		SessionID:    d.SessionID,
		IP:           firstNonBlank(d.IP, clientIP),
		UserAgent:    ua,
		Platform:     d.Platform,
		Browser:      firstNonBlank(d.Browser, parsed.Browser),
		Device:       firstNonBlank(d.Device, parsed.Device),
		OS:           firstNonBlank(d.OS, parsed.OS),
		ScreenWidth:  positiveOrNil(d.ScreenWidth),
		ScreenHeight: positiveOrNil(d.ScreenHeight),
		Referrer:     d.Referrer,
		ReferrerURL:  d.ReferrerURL,
		Pathname:     d.Pathname,
		URL:          d.URL,
		Type:         d.Type,
		CategorySlug: strings.TrimSpace(d.CategorySlug),
		ArticleID:    string(d.ArticleID),
		ArticleSlug:  d.ArticleSlug,
		TagList:      models.StringArray(d.TagList),
		ExitedAt:     d.ExitedAt,
		PlatformID:   string(d.PlatformID),
		Country:      d.Country,
		EventType:    d.EventType,
		AdPosition:   strings.TrimSpace(d.AdPosition),
	}
	if d.IsArticlePage != nil {
		rec.IsArticlePage = *d.IsArticlePage
	}
	if d.Duration != nil && *d.Duration > 0 {
		rec.Duration = d.Duration
	}
	ts := now
	if d.Timestamp != nil {
		ts = d.Timestamp.UTC()
	}
	rec.Timestamp = &ts
	rec.CreatedAt = now
	return rec
}

// Ingest stores one visit event and, when it references an article, queues
// the article's view increment. Only the insert can fail the call.
func (s *Service) Ingest(ctx context.Context, dto *IngestDTO, clientIP, headerUA string) (*models.AnalyticsLogModel, error) {
	rec := dto.toModel(clientIP, headerUA, s.now().UTC())
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.EventsIngested.Inc()
	}

	if rec.ArticleID != "" {
		s.queueViewIncrement(rec.ArticleID)
	}
	return rec, nil
}

func (s *Service) queueViewIncrement(rawID string) {
	articleID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		s.logger.Debug("skip view increment for non-numeric article id", zap.String("article_id", rawID))
		return
	}

	task := func(ctx context.Context) error {
		err := IncrementViews(ctx, s.db, articleID)
		if err != nil {
			s.viewIncrementFailed(articleID, err)
		}
		return err
	}
	if s.queue == nil {
		_ = task(context.Background())
		return
	}
	if err := s.queue.Enqueue("article.view", task); err != nil {
		s.viewIncrementFailed(articleID, err)
	}
}

func (s *Service) viewIncrementFailed(articleID int64, err error) {
	if s.metrics != nil {
		s.metrics.ViewIncrementFailures.Inc()
	}
	s.logger.Warn("article view increment failed", zap.Int64("article_id", articleID), zap.Error(err))
}

// IncrementViews bumps articles.views in a single statement so concurrent
// visits never lose an update. A missing article is not an error.
func IncrementViews(ctx context.Context, db *gorm.DB, articleID int64) error {
	return db.WithContext(ctx).
		Model(&models.ArticleModel{}).
		Where("article_id = ?", articleID).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func positiveOrNil(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}
