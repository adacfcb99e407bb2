package domain

// HistoryLimit is the maximum number of price samples kept per token.
const HistoryLimit = 20

// PriceFloor is the smallest price a token may ever hold.
const PriceFloor = 0.000001

// Security holds the audit flags fixed at token creation.
type Security struct {
	NoMint       bool    `json:"noMint"`
	HasAudit     bool    `json:"hasAudit"`
	IsBurned     bool    `json:"isBurned"`
	Top10Holders float64 `json:"top10Holders"` // percentage
}

// TokenRecord is one simulated market entry.
// Identity, descriptive fields, Security and Status never change after generation.
type TokenRecord struct {
	ID              string `json:"id"`
	ContractAddress string `json:"contractAddress"`

	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Image    string `json:"image"`
	Protocol string `json:"protocol"`

	Price        float64 `json:"price"`
	MarketCap    float64 `json:"marketCap"`
	Liquidity    float64 `json:"liquidity"`
	Volume24h    float64 `json:"volume24h"`
	Transactions int64   `json:"transactions"`
	Holders      int64   `json:"holders"`

	PriceChange5m  float64 `json:"priceChange5m"`
	PriceChange1h  float64 `json:"priceChange1h"`
	PriceChange24h float64 `json:"priceChange24h"`

	History  []float64 `json:"history"`
	Security Security  `json:"security"`
	Status   Status    `json:"status"`

	TimeSinceCreation string `json:"timeSinceCreation"`
}

// Clone returns a deep copy; History is not shared with the original.
func (t *TokenRecord) Clone() TokenRecord {
	c := *t
	c.History = append([]float64(nil), t.History...)
	return c
}

// PushHistory appends price and evicts the oldest samples beyond limit.
func PushHistory(history []float64, price float64, limit int) []float64 {
	history = append(history, price)
	if over := len(history) - limit; over > 0 {
		// shift in place so the backing array does not grow unbounded
		copy(history, history[over:])
		history = history[:limit]
	}
	return history
}
