package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"gorm.io/gorm"
)

// Columns that LogQuery.Present may name. Anything else is rejected so the
// column list never reaches SQL unchecked.
var presentColumns = map[string]struct{}{
	"article_id":    {},
	"category_slug": {},
	"referrer":      {},
	"ad_position":   {},
	"duration":      {},
	"visitor_id":    {},
}

// LogQuery selects visit-log rows. Zero values mean "no filter".
type LogQuery struct {
	From      *time.Time
	To        *time.Time
	Type      string
	IP        string
	VisitorID string
	// Present lists columns that must be neither NULL nor empty.
	Present []string
	// Columns narrows the selected columns; empty selects all.
	Columns     []string
	NewestFirst bool
	Limit       int
}

// LogReader fetches visit-log rows for a report.
type LogReader interface {
	Read(ctx context.Context, q LogQuery) ([]models.AnalyticsLogModel, error)
}

type gormReader struct {
	db *gorm.DB
}

// NewLogReader returns a LogReader over the analytics_logs table.
func NewLogReader(db *gorm.DB) LogReader {
	return &gormReader{db: db}
}

func (r *gormReader) Read(ctx context.Context, q LogQuery) ([]models.AnalyticsLogModel, error) {
	tx := r.db.WithContext(ctx).Model(&models.AnalyticsLogModel{})
	if len(q.Columns) > 0 {
		tx = tx.Select(q.Columns)
	}
	if q.From != nil {
		tx = tx.Where("created_at >= ?", q.From.UTC())
	}
	if q.To != nil {
		tx = tx.Where("created_at <= ?", q.To.UTC())
	}
	if q.Type != "" {
		tx = tx.Where("type = ?", q.Type)
	}
	if q.IP != "" {
		tx = tx.Where("ip = ?", q.IP)
	}
	if q.VisitorID != "" {
		tx = tx.Where("visitor_id = ?", q.VisitorID)
	}
	for _, col := range q.Present {
		if _, ok := presentColumns[col]; !ok {
			return nil, fmt.Errorf("unsupported presence filter %q", col)
		}
		if col == "duration" {
			tx = tx.Where("duration IS NOT NULL")
			continue
		}
		tx = tx.Where(fmt.Sprintf("%s IS NOT NULL AND %s <> ''", col, col))
	}
	if q.NewestFirst {
		tx = tx.Order("created_at DESC")
	} else {
		tx = tx.Order("created_at ASC")
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []models.AnalyticsLogModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
