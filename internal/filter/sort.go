package filter

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"token-pulse/internal/domain"
)

// Sort returns a reordered copy of records for display.
// SortTrending keeps the authoritative order. The input slice is untouched.
func Sort(records []*domain.TokenRecord, opt domain.SortOption) []*domain.TokenRecord {
	result := append([]*domain.TokenRecord(nil), records...)

	switch opt {
	case domain.SortMarketCap:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].MarketCap > result[j].MarketCap
		})
	case domain.SortCreationTime:
		sort.SliceStable(result, func(i, j int) bool {
			return MinutesSinceCreation(result[i]) < MinutesSinceCreation(result[j])
		})
	}

	return result
}

// MinutesSinceCreation parses the "{n}m" / "{n}h" / "{n}d" display string.
// Unparseable values sort last.
func MinutesSinceCreation(r *domain.TokenRecord) int {
	s := strings.TrimSpace(r.TimeSinceCreation)
	if len(s) < 2 {
		return math.MaxInt
	}

	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return math.MaxInt
	}

	switch s[len(s)-1] {
	case 'm':
		return n
	case 'h':
		return n * 60
	case 'd':
		return n * 1440
	default:
		return math.MaxInt
	}
}
