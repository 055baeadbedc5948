package article

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"gorm.io/gorm"
)

const (
	maxPlatformID = 9
	maxSequence   = 999
)

// dayPrefix is [platform][YY][MM][DD] as a number.
func dayPrefix(platformID int, day time.Time) int64 {
	return int64(platformID)*1_000_000 +
		int64(day.Year()%100)*10_000 +
		int64(day.Month())*100 +
		int64(day.Day())
}

// composeArticleID appends the three-digit daily sequence to the day prefix.
func composeArticleID(platformID int, day time.Time, seq int) (int64, error) {
	if platformID < 0 || platformID > maxPlatformID {
		return 0, errInvalidPlatform
	}
	if seq < 1 || seq > maxSequence {
		return 0, errSequenceExhausted
	}
	id := dayPrefix(platformID, day)*1000 + int64(seq)
	if id > math.MaxInt32 {
		return 0, errArticleIDOverflow
	}
	return id, nil
}

// nextArticleID returns the next free id for the platform on day.
func nextArticleID(ctx context.Context, db *gorm.DB, platformID int, day time.Time) (int64, error) {
	if platformID < 0 || platformID > maxPlatformID {
		return 0, errInvalidPlatform
	}
	low := dayPrefix(platformID, day) * 1000
	var last sql.NullInt64
	row := db.WithContext(ctx).Model(&models.ArticleModel{}).
		Where("article_id > ? AND article_id <= ?", low, low+maxSequence).
		Select("MAX(article_id)").Row()
	if err := row.Scan(&last); err != nil {
		return 0, err
	}
	seq := 1
	if last.Valid {
		seq = int(last.Int64%1000) + 1
	}
	return composeArticleID(platformID, day, seq)
}
