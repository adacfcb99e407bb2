package domain

// SortOption selects how a category view is ordered for display.
type SortOption string

const (
	SortTrending     SortOption = "trending"     // authoritative ranking by priceChange5m
	SortMarketCap    SortOption = "marketCap"    // largest market cap first
	SortCreationTime SortOption = "creationTime" // newest first
)

// IsValid checks if the sort option is supported.
func (s SortOption) IsValid() bool {
	return s == SortTrending || s == SortMarketCap || s == SortCreationTime
}
