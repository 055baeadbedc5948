package analytics

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/aggregate"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/timebucket"
)

const (
	defaultReportLimit = 50
	defaultDomainLimit = 20
	defaultListLimit   = 100
	maxLimit           = 1000
	defaultRangeDays   = 30
	dateParamLayout    = timebucket.DayLayout
)

var (
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvertedDate = errors.New("date_from must not be after date_to")
	ErrInvalidLimit = fmt.Errorf("limit must be an integer between 1 and %d", maxLimit)
)

// DateRange is an optional inclusive day range. To covers its whole day.
type DateRange struct {
	From    *time.Time
	To      *time.Time
	RawFrom string
	RawTo   string
}

func parseDay(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateParamLayout, raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return &t, nil
}

// ParseDateRange reads date_from and date_to.
func ParseDateRange(c *gin.Context) (DateRange, error) {
	rng := DateRange{
		RawFrom: strings.TrimSpace(c.Query("date_from")),
		RawTo:   strings.TrimSpace(c.Query("date_to")),
	}
	from, err := parseDay(rng.RawFrom)
	if err != nil {
		return rng, err
	}
	to, err := parseDay(rng.RawTo)
	if err != nil {
		return rng, err
	}
	if from != nil && to != nil && from.After(*to) {
		return rng, ErrInvertedDate
	}
	if to != nil {
		end := timebucket.EndOfDay(*to)
		to = &end
	}
	rng.From, rng.To = from, to
	return rng, nil
}

// ParseLimit reads limit, falling back to def when absent.
func ParseLimit(c *gin.Context, def int) (int, error) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLimit {
		return 0, ErrInvalidLimit
	}
	return n, nil
}

// ReportParams are the query parameters shared by ranked reports.
type ReportParams struct {
	Range     DateRange
	Limit     int
	OrderBy   string
	Direction aggregate.Direction
}

// ParseReportParams reads date range, limit and ordering. order_by is taken
// verbatim; an unknown value falls back when the report sorts.
func ParseReportParams(c *gin.Context, defaultLimit int) (ReportParams, error) {
	var p ReportParams
	var err error
	if p.Range, err = ParseDateRange(c); err != nil {
		return p, err
	}
	if p.Limit, err = ParseLimit(c, defaultLimit); err != nil {
		return p, err
	}
	if p.Direction, err = aggregate.ParseDirection(c.Query("order_direction")); err != nil {
		return p, err
	}
	p.OrderBy = strings.TrimSpace(c.Query("order_by"))
	return p, nil
}

// ChartRange is the resolved window of the date-range chart.
type ChartRange struct {
	From        time.Time
	To          time.Time
	Granularity timebucket.Granularity
}

// ParseChartRange defaults to the last 30 days grouped by day.
func ParseChartRange(c *gin.Context, now time.Time) (ChartRange, error) {
	rng, err := ParseDateRange(c)
	if err != nil {
		return ChartRange{}, err
	}
	g, err := timebucket.ParseGranularity(c.Query("group_by"))
	if err != nil {
		return ChartRange{}, err
	}

	today := timebucket.StartOfDay(now)
	out := ChartRange{
		From:        today.AddDate(0, 0, -defaultRangeDays),
		To:          timebucket.EndOfDay(today),
		Granularity: g,
	}
	if rng.From != nil {
		out.From = *rng.From
	}
	if rng.To != nil {
		out.To = *rng.To
	}
	if out.From.After(out.To) {
		return ChartRange{}, ErrInvertedDate
	}
	return out, nil
}
