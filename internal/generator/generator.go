// Package generator builds the initial token universe from a fixed seed space.
package generator

import (
	"fmt"
	"math"

	"token-pulse/internal/address"
	"token-pulse/internal/domain"
)

// Field multipliers. A field's seed is index*multiplier, so every
// (index, field) pair maps to one fixed draw.
const (
	seedPrice          = 1
	seedPriceChange24h = 2
	seedPriceChange1h  = 3
	seedPriceChange5m  = 4
	seedMarketCap      = 5
	seedLiquidity      = 6
	seedVolume         = 7
	seedTransactions   = 8
	seedHolders        = 9
	seedCreation       = 10
	seedNoMint         = 11
	seedHasAudit       = 12
	seedIsBurned       = 13
	seedTop10          = 14
	seedProtocol       = 15

	addressSeedStride = 100 // address char j uses index*100 + j
	historySeedStride = 20  // history sample h uses index*20 + h
	imageSeedOffset   = 142
)

// Generator produces deterministic token universes.
type Generator struct {
	rand SeededFunc
}

// New creates a generator. A nil rand falls back to SinSeeded.
func New(rand SeededFunc) *Generator {
	if rand == nil {
		rand = SinSeeded
	}
	return &Generator{rand: rand}
}

// Generate returns count records. Same count and SeededFunc yield identical output.
func (g *Generator) Generate(count int) ([]*domain.TokenRecord, error) {
	if count <= 0 {
		return nil, fmt.Errorf("generate %d tokens: %w", count, domain.ErrInvalidUniverseSize)
	}

	records := make([]*domain.TokenRecord, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, g.record(i))
	}
	return records, nil
}

// Generate is a convenience wrapper using SinSeeded.
func Generate(count int) ([]*domain.TokenRecord, error) {
	return New(nil).Generate(count)
}

func (g *Generator) record(i int) *domain.TokenRecord {
	meme := memeNames[i%len(memeNames)]

	price := g.draw(i, seedPrice) * 10
	if price < domain.PriceFloor {
		price = domain.PriceFloor
	}

	history := make([]float64, domain.HistoryLimit)
	for h := range history {
		history[h] = g.rand(float64(i*historySeedStride+h)) * 100
	}

	return &domain.TokenRecord{
		ID:              fmt.Sprintf("token-%d", i),
		ContractAddress: g.address(i),
		Name:            meme.Name,
		Symbol:          meme.Symbol,
		Image:           fmt.Sprintf("https://picsum.photos/seed/%d/200", i+imageSeedOffset),
		Protocol:        domain.Protocols[g.index(i, seedProtocol, len(domain.Protocols))],

		Price:        price,
		MarketCap:    g.draw(i, seedMarketCap) * 2_000_000,
		Liquidity:    g.draw(i, seedLiquidity) * 500_000,
		Volume24h:    g.draw(i, seedVolume) * 1_000_000,
		Transactions: int64(math.Floor(g.draw(i, seedTransactions) * 500)),
		Holders:      int64(math.Floor(g.draw(i, seedHolders) * 1000)),

		PriceChange24h: g.draw(i, seedPriceChange24h)*40 - 20,
		PriceChange1h:  g.draw(i, seedPriceChange1h)*10 - 5,
		PriceChange5m:  g.draw(i, seedPriceChange5m)*5 - 2.5,

		History: history,
		Security: domain.Security{
			NoMint:       g.draw(i, seedNoMint) > 0.2,
			HasAudit:     g.draw(i, seedHasAudit) > 0.5,
			IsBurned:     g.draw(i, seedIsBurned) > 0.3,
			Top10Holders: g.draw(i, seedTop10) * 50,
		},
		Status:            domain.Statuses[i%len(domain.Statuses)],
		TimeSinceCreation: fmt.Sprintf("%dm", int(math.Floor(g.draw(i, seedCreation)*60))),
	}
}

// address draws one alphabet symbol per position.
func (g *Generator) address(i int) string {
	buf := make([]byte, address.Length)
	for j := range buf {
		idx := int(math.Floor(g.rand(float64(i*addressSeedStride+j)) * float64(len(address.Alphabet))))
		buf[j] = address.Alphabet[clamp(idx, len(address.Alphabet))]
	}
	return string(buf)
}

func (g *Generator) draw(i, multiplier int) float64 {
	return g.rand(float64(i * multiplier))
}

func (g *Generator) index(i, multiplier, n int) int {
	return clamp(int(math.Floor(g.draw(i, multiplier)*float64(n))), n)
}

// clamp keeps an index inside [0, n) for SeededFuncs that return 1.0.
func clamp(idx, n int) int {
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
