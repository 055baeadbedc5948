package aggregate

import (
	"strings"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
)

// AdCounts tallies ad interactions by event type.
type AdCounts struct {
	Click int64 `json:"click"`
	Touch int64 `json:"touch"`
	Other int64 `json:"other"`
}

func (a *AdCounts) add(eventType string) {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case "click":
		a.Click++
	case "touch":
		a.Touch++
	default:
		a.Other++
	}
}

// AdStats holds per-position counts plus the sum over all positions.
type AdStats struct {
	Positions map[string]AdCounts `json:"ad_position"`
	Total     AdCounts            `json:"total"`
}

// AdPositionBreakdown skips records without an ad position.
func AdPositionBreakdown(records []models.AnalyticsLogModel) AdStats {
	stats := AdStats{Positions: make(map[string]AdCounts)}
	for i := range records {
		position := records[i].AdPosition
		if position == "" {
			continue
		}
		counts := stats.Positions[position]
		counts.add(records[i].EventType)
		stats.Positions[position] = counts
		stats.Total.add(records[i].EventType)
	}
	return stats
}
