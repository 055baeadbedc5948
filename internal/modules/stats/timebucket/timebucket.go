// Package timebucket maps timestamps to day, ISO week and month period keys
// and expands sparse per-period maps into dense ordered series.
package timebucket

import (
	"fmt"
	"strings"
	"time"
)

// Granularity selects the period a timestamp is bucketed into.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// ParseGranularity accepts day, week or month (case-insensitive). Empty means day.
func ParseGranularity(raw string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(raw))) {
	case "", Day:
		return Day, nil
	case Week:
		return Week, nil
	case Month:
		return Month, nil
	default:
		return "", fmt.Errorf("invalid group_by %q, expected day, week or month", raw)
	}
}

// DayKey returns the UTC calendar date, "YYYY-MM-DD".
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// MonthKey returns the UTC year and month, "YYYY-MM".
func MonthKey(t time.Time) string {
	return t.UTC().Format(MonthLayout)
}

// WeekKey returns the Monday-anchored ISO week of t as "YYYY-Www". The year is
// the ISO week-year (the year of the week's Thursday), so a late-December
// Monday that opens week 1 is keyed under the following year.
func WeekKey(t time.Time) string {
	monday := mondayOf(t)
	thursday := monday.AddDate(0, 0, 3)
	return fmt.Sprintf("%04d-W%02d", thursday.Year(), WeekNumber(monday))
}

// WeekNumber returns the ISO 8601 week number of t's UTC date, found by moving
// to the nearest Thursday and counting weeks from that Thursday's January 1st.
func WeekNumber(t time.Time) int {
	date := truncateDay(t)
	thursday := date.AddDate(0, 0, 4-isoWeekday(date))
	yearStart := time.Date(thursday.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(thursday.Sub(yearStart).Hours()/24) + 1
	return (days + 6) / 7
}

// Key buckets t at granularity g.
func Key(g Granularity, t time.Time) string {
	switch g {
	case Week:
		return WeekKey(t)
	case Month:
		return MonthKey(t)
	default:
		return DayKey(t)
	}
}

// isoWeekday is 1 for Monday through 7 for Sunday.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mondayOf(t time.Time) time.Time {
	date := truncateDay(t)
	return date.AddDate(0, 0, -(isoWeekday(date) - 1))
}

// StartOfDay returns midnight UTC of t's date.
func StartOfDay(t time.Time) time.Time {
	return truncateDay(t)
}

// EndOfDay returns the last millisecond of t's UTC date.
func EndOfDay(t time.Time) time.Time {
	return truncateDay(t).Add(24*time.Hour - time.Millisecond)
}
