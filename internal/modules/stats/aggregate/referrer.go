package aggregate

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
)

const (
	DirectTraffic = "Direct Traffic"
	UnknownDomain = "unknown"
	directKey     = "direct"
)

// ReferrerMode selects the referrer grouping key.
type ReferrerMode string

const (
	ByReferrer    ReferrerMode = "referrer"
	ByReferrerURL ReferrerMode = "referrer_url"
	ByDomain      ReferrerMode = "domain"
)

// ParseReferrerMode accepts referrer, referrer_url or domain; empty means referrer.
func ParseReferrerMode(raw string) (ReferrerMode, error) {
	switch ReferrerMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ByReferrer:
		return ByReferrer, nil
	case ByReferrerURL:
		return ByReferrerURL, nil
	case ByDomain:
		return ByDomain, nil
	default:
		return "", fmt.Errorf("invalid group_by %q, expected referrer, referrer_url or domain", raw)
	}
}

// ExtractDomain returns the host of raw without a leading "www.". Empty,
// "direct" and "unknown" inputs are direct traffic; anything that does not
// parse to a host yields "unknown". It never panics.
func ExtractDomain(raw string) string {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", directKey, UnknownDomain:
		return DirectTraffic
	}

	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return UnknownDomain
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return UnknownDomain
	}
	return strings.TrimPrefix(host, "www.")
}

// ReferrerRow is one referrer group.
type ReferrerRow struct {
	Key             string  `json:"-"`
	ReferrerName    string  `json:"referrerName"`
	ReferrerURL     string  `json:"referrerUrl,omitempty"`
	VisitCount      int64   `json:"visitCount"`
	LatestVisitDate string  `json:"latestVisitDate"`
	FirstVisitDate  string  `json:"firstVisitDate"`
	Percentage      float64 `json:"percentage"`
}

func referrerKey(rec *models.AnalyticsLogModel, mode ReferrerMode) (key, name string) {
	switch mode {
	case ByReferrerURL:
		if v := firstNonEmpty(rec.ReferrerURL, rec.Referrer); v != "" {
			return v, v
		}
		return directKey, DirectTraffic
	case ByDomain:
		domain := ExtractDomain(firstNonEmpty(rec.ReferrerURL, rec.Referrer))
		return domain, domain
	default:
		if rec.Referrer != "" {
			return rec.Referrer, rec.Referrer
		}
		return directKey, DirectTraffic
	}
}

// ReferrerBreakdown groups records by mode, tracking visit count and the first
// and last visit timestamps. Rows come back ordered by key; Percentage is left
// for the caller to fill once the final row set is known.
func ReferrerBreakdown(records []models.AnalyticsLogModel, mode ReferrerMode) []ReferrerRow {
	groups := make(map[string]*ReferrerRow)
	for i := range records {
		rec := &records[i]
		key, name := referrerKey(rec, mode)
		seen := FormatTimestamp(rec.CreatedAt)

		row, ok := groups[key]
		if !ok {
			row = &ReferrerRow{
				Key:             key,
				ReferrerName:    name,
				ReferrerURL:     rec.ReferrerURL,
				LatestVisitDate: seen,
				FirstVisitDate:  seen,
			}
			groups[key] = row
		}
		row.VisitCount++
		if seen > row.LatestVisitDate {
			row.LatestVisitDate = seen
		}
		if seen < row.FirstVisitDate {
			row.FirstVisitDate = seen
		}
	}

	rows := make([]ReferrerRow, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

// ReferrerOrderings are the order_by fields of the referrer report.
var ReferrerOrderings = Orderings[ReferrerRow]{
	"referrer_count": func(a, b ReferrerRow) int { return CompareInt64(a.VisitCount, b.VisitCount) },
	"referrer_name":  func(a, b ReferrerRow) int { return CompareFold(a.ReferrerName, b.ReferrerName) },
	"created_at":     func(a, b ReferrerRow) int { return strings.Compare(a.LatestVisitDate, b.LatestVisitDate) },
}

// DomainRow is one referring domain.
type DomainRow struct {
	Domain string `json:"domain"`
	Visits int64  `json:"visits"`
}

// DomainTotals covers every domain, not only the listed ones.
type DomainTotals struct {
	TotalDomains int   `json:"totalDomains"`
	TotalVisits  int64 `json:"totalVisits"`
}

// DomainCounts counts visits per extracted domain, busiest first and then by
// domain name.
func DomainCounts(records []models.AnalyticsLogModel) ([]DomainRow, DomainTotals) {
	counts := make(map[string]int64)
	for i := range records {
		counts[ExtractDomain(firstNonEmpty(records[i].ReferrerURL, records[i].Referrer))]++
	}

	rows := make([]DomainRow, 0, len(counts))
	var totals DomainTotals
	for domain, n := range counts {
		rows = append(rows, DomainRow{Domain: domain, Visits: n})
		totals.TotalVisits += n
	}
	totals.TotalDomains = len(counts)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Visits != rows[j].Visits {
			return rows[i].Visits > rows[j].Visits
		}
		return rows[i].Domain < rows[j].Domain
	})
	return rows, totals
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
