package aggregate

import (
	"sort"
	"strings"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
)

var searchEngines = []string{
	"google",
	"bing",
	"baidu",
	"yahoo",
	"duckduckgo",
	"yandex",
	"ecosia",
	"naver",
}

var socialNetworks = []string{
	"twitter",
	"x.com",
	"t.co",
	"facebook",
	"fb.com",
	"reddit",
	"linkedin",
	"instagram",
	"tiktok",
	"youtube",
	"t.me",
	"telegram",
	"whatsapp",
	"threads.net",
	"discord",
}

// SourceCategory is one traffic class with its visit count.
type SourceCategory struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	Value int64  `json:"value"`
}

// SourceDetail is one referring host.
type SourceDetail struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// SourceCategories classifies traffic into direct, search, social and other.
type SourceCategories struct {
	Categories []SourceCategory `json:"categories"`
	Details    []SourceDetail   `json:"details"`
}

const maxSourceDetails = 10

// ClassifySources buckets each record by its referring host. Categories with
// no visits are omitted; details list the ten busiest hosts.
func ClassifySources(records []models.AnalyticsLogModel) SourceCategories {
	counts := map[string]int64{}
	hostCount := map[string]int64{}

	for i := range records {
		raw := firstNonEmpty(records[i].ReferrerURL, records[i].Referrer)
		domain := ExtractDomain(raw)
		switch {
		case domain == DirectTraffic:
			counts["direct"]++
			continue
		case domain == UnknownDomain:
			counts["other"]++
			continue
		case containsAny(domain, searchEngines):
			counts["search"]++
		case containsAny(domain, socialNetworks):
			counts["social"]++
		default:
			counts["other"]++
		}
		hostCount[domain]++
	}

	out := SourceCategories{
		Categories: make([]SourceCategory, 0, 4),
		Details:    make([]SourceDetail, 0, len(hostCount)),
	}
	for _, item := range []struct{ key, name string }{
		{"direct", "Direct"},
		{"search", "Search Engines"},
		{"social", "Social Media"},
		{"other", "Other"},
	} {
		if v := counts[item.key]; v > 0 {
			out.Categories = append(out.Categories, SourceCategory{Name: item.name, Key: item.key, Value: v})
		}
	}

	for host, n := range hostCount {
		out.Details = append(out.Details, SourceDetail{Source: host, Count: n})
	}
	sort.Slice(out.Details, func(i, j int) bool {
		if out.Details[i].Count != out.Details[j].Count {
			return out.Details[i].Count > out.Details[j].Count
		}
		return out.Details[i].Source < out.Details[j].Source
	})
	out.Details = Limit(out.Details, maxSourceDetails)
	return out
}

func containsAny(host string, patterns []string) bool {
	for _, pattern := range patterns {
		if host == pattern || strings.HasSuffix(host, "."+pattern) || strings.Contains(host, pattern+".") {
			return true
		}
	}
	return false
}
