package api

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"token-pulse/internal/address"
	"token-pulse/internal/domain"
	"token-pulse/internal/format"
	"token-pulse/internal/market"
)

// Display holds the formatted strings a client renders for a token.
type Display struct {
	Price          string `json:"price"`
	MarketCap      string `json:"marketCap"`
	Liquidity      string `json:"liquidity"`
	Volume24h      string `json:"volume24h"`
	PriceChange5m  string `json:"priceChange5m"`
	PriceChange1h  string `json:"priceChange1h"`
	PriceChange24h string `json:"priceChange24h"`
	Trend          string `json:"trend"` // direction of priceChange5m
	Address        string `json:"address"`
}

// HistoryStats summarizes the retained price history.
type HistoryStats struct {
	Samples int     `json:"samples"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"stdDev"`
	Change  float64 `json:"change"` // percent from first to last sample
}

// TokenView is a record with its display strings.
type TokenView struct {
	domain.TokenRecord
	Display Display `json:"display"`
}

// TokenDetail is the single-token response.
type TokenDetail struct {
	TokenView
	Stats       HistoryStats `json:"historyStats"`
	AddressInfo address.Info `json:"addressInfo"`
}

// CategoryView is the response for one category column.
type CategoryView struct {
	Status        domain.Status     `json:"status"`
	Title         string            `json:"title"`
	Sort          domain.SortOption `json:"sort"`
	Version       uint64            `json:"version"`
	Count         int               `json:"count"`
	Total         int               `json:"total"`
	ActiveFilters int               `json:"activeFilters"`
	Filter        domain.FilterSpec `json:"filter"`
	Tokens        []TokenView       `json:"tokens"`
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status          string                   `json:"status"`
	Uptime          string                   `json:"uptime"`
	Version         uint64                   `json:"version"`
	Ticks           uint64                   `json:"ticks"`
	Digest          string                   `json:"digest"`
	RunID           string                   `json:"runId,omitempty"`
	Overruns        int64                    `json:"overruns"`
	SamplesArchived int64                    `json:"samplesArchived"`
	ArchiveErrors   int64                    `json:"archiveErrors"`
	WSClients       int                      `json:"wsClients"`
	Categories      []market.CategorySummary `json:"categories"`
}

func newTokenView(r domain.TokenRecord) TokenView {
	return TokenView{
		TokenRecord: r,
		Display: Display{
			Price:          format.Price(r.Price),
			MarketCap:      format.MarketCap(r.MarketCap),
			Liquidity:      format.LargeNumber(r.Liquidity, "$"),
			Volume24h:      format.Volume(r.Volume24h),
			PriceChange5m:  format.Percentage(r.PriceChange5m),
			PriceChange1h:  format.Percentage(r.PriceChange1h),
			PriceChange24h: format.Percentage(r.PriceChange24h),
			Trend:          format.Trend(r.PriceChange5m),
			Address:        address.Truncate(r.ContractAddress, 6, 4),
		},
	}
}

func newTokenViews(records []domain.TokenRecord) []TokenView {
	views := make([]TokenView, len(records))
	for i, r := range records {
		views[i] = newTokenView(r)
	}
	return views
}

func newTokenDetail(r domain.TokenRecord) TokenDetail {
	return TokenDetail{
		TokenView:   newTokenView(r),
		Stats:       historyStats(r.History),
		AddressInfo: address.Inspect(r.ContractAddress),
	}
}

func historyStats(history []float64) HistoryStats {
	if len(history) == 0 {
		return HistoryStats{}
	}
	mean, std := stat.MeanStdDev(history, nil)
	if len(history) < 2 {
		std = 0
	}
	s := HistoryStats{
		Samples: len(history),
		Min:     floats.Min(history),
		Max:     floats.Max(history),
		Mean:    mean,
		StdDev:  std,
	}
	if first := history[0]; first > 0 {
		s.Change = (history[len(history)-1] - first) / first * 100
	}
	return s
}

// SamplesResponse lists the archived samples of one token in the current run.
type SamplesResponse struct {
	RunID   string                `json:"runId"`
	TokenID string                `json:"tokenId"`
	Count   int                   `json:"count"`
	Change  float64               `json:"change"` // percent, first to last sample
	At      *domain.PriceSample   `json:"at,omitempty"`
	Samples []*domain.PriceSample `json:"samples"`
}
