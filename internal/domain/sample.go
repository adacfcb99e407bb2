package domain

// PriceSample is one archived observation of a token after a tick updated it.
// Corresponds to price_samples table in ClickHouse.
type PriceSample struct {
	RunID        string  `json:"runId"`        // feed run identifier (uuid)
	TokenID      string  `json:"tokenId"`      // token identifier
	Tick         int64   `json:"tick"`         // tick number that produced the sample
	TimestampMs  int64   `json:"timestampMs"`  // Unix timestamp in milliseconds
	Price        float64 `json:"price"`        // price after the tick
	MarketCap    float64 `json:"marketCap"`    // market cap after the tick
	Volume24h    float64 `json:"volume24h"`    // rolling volume after the tick
	Transactions int64   `json:"transactions"` // transaction counter after the tick
}

// NewPriceSample builds a sample from the current state of a record.
func NewPriceSample(runID string, tick, timestampMs int64, t *TokenRecord) *PriceSample {
	return &PriceSample{
		RunID:        runID,
		TokenID:      t.ID,
		Tick:         tick,
		TimestampMs:  timestampMs,
		Price:        t.Price,
		MarketCap:    t.MarketCap,
		Volume24h:    t.Volume24h,
		Transactions: t.Transactions,
	}
}
