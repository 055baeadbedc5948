// Package aggregate folds visit-log rows into per-period, per-referrer,
// per-ad-position and per-entity counters. Every function allocates its own
// accumulators and is safe to call concurrently.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/timebucket"
)

// TimestampLayout is fixed width so that lexical order equals time order.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in UTC with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// Ratio is num/den rounded to two decimals, 0 when den is 0.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return Round2(num / den)
}

// Bucket accumulates visits for one period.
type Bucket struct {
	Total         int64
	visitors      map[string]struct{}
	durationSum   int64
	durationCount int64
}

func NewBucket() *Bucket {
	return &Bucket{visitors: make(map[string]struct{})}
}

// Add merges one record. Empty visitor ids count toward Total only.
func (b *Bucket) Add(rec *models.AnalyticsLogModel) {
	b.Total++
	if rec.VisitorID != "" {
		b.visitors[rec.VisitorID] = struct{}{}
	}
	if d, ok := rec.ValidDuration(); ok {
		b.durationSum += d
		b.durationCount++
	}
}

func (b *Bucket) UniqueVisitors() int {
	return len(b.visitors)
}

// AvgDuration is the mean of positive durations, 0 when there are none.
func (b *Bucket) AvgDuration() float64 {
	return Ratio(float64(b.durationSum), float64(b.durationCount))
}

// VisitRow is one period of a visit chart.
type VisitRow struct {
	Period         string  `json:"date"`
	TotalVisitors  int64   `json:"totalVisitors"`
	UniqueVisitors int     `json:"uniqueVisitors"`
	Duration       float64 `json:"duration"`
}

func (b *Bucket) Row(key string) VisitRow {
	return VisitRow{
		Period:         key,
		TotalVisitors:  b.Total,
		UniqueVisitors: b.UniqueVisitors(),
		Duration:       b.AvgDuration(),
	}
}

// VisitBuckets groups records by period key at granularity g.
func VisitBuckets(records []models.AnalyticsLogModel, g timebucket.Granularity) map[string]*Bucket {
	buckets := make(map[string]*Bucket)
	for i := range records {
		key := timebucket.Key(g, records[i].CreatedAt)
		b, ok := buckets[key]
		if !ok {
			b = NewBucket()
			buckets[key] = b
		}
		b.Add(&records[i])
	}
	return buckets
}

// VisitCounts returns one row per period that has records, ordered by key.
func VisitCounts(records []models.AnalyticsLogModel, g timebucket.Granularity) []VisitRow {
	buckets := VisitBuckets(records, g)
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([]VisitRow, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, buckets[key].Row(key))
	}
	return rows
}

// PeriodCounts counts records per period key.
func PeriodCounts(records []models.AnalyticsLogModel, g timebucket.Granularity) map[string]int64 {
	counts := make(map[string]int64)
	for i := range records {
		counts[timebucket.Key(g, records[i].CreatedAt)]++
	}
	return counts
}

// GrowthRow compares a week against the one before it.
type GrowthRow struct {
	Week     string  `json:"week"`
	Current  int64   `json:"current"`
	Previous int64   `json:"previous"`
	Growth   float64 `json:"growth"`
}

// WeekOverWeekGrowth orders weeks by key and reports percentage change from
// the previous listed week. Growth is 0 for the first week and whenever the
// previous count is 0.
func WeekOverWeekGrowth(weekly map[string]int64) []GrowthRow {
	weeks := make([]string, 0, len(weekly))
	for week := range weekly {
		weeks = append(weeks, week)
	}
	sort.Strings(weeks)

	rows := make([]GrowthRow, 0, len(weeks))
	var prev int64
	for _, week := range weeks {
		current := weekly[week]
		growth := 0.0
		if prev != 0 {
			growth = Round2(float64(current-prev) / float64(prev) * 100)
		}
		rows = append(rows, GrowthRow{Week: week, Current: current, Previous: prev, Growth: growth})
		prev = current
	}
	return rows
}

// DurationStats summarises positive durations.
type DurationStats struct {
	TotalVisit    int64   `json:"totalVisit"`
	TotalDuration int64   `json:"totalDuration"`
	AvgDuration   float64 `json:"avgDuration"`
}

// DurationSummary ignores records without a positive duration.
func DurationSummary(records []models.AnalyticsLogModel) DurationStats {
	var stats DurationStats
	for i := range records {
		if d, ok := records[i].ValidDuration(); ok {
			stats.TotalVisit++
			stats.TotalDuration += d
		}
	}
	stats.AvgDuration = Ratio(float64(stats.TotalDuration), float64(stats.TotalVisit))
	return stats
}
