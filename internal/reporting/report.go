package reporting

import (
	"time"

	"token-pulse/internal/domain"
)

// Report summarizes one simulation session.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Universe    int
	Ticks       uint64
	Digest      string

	// Category statistics in fixed category order
	Categories []CategoryRow

	// Movers from the sample archive, largest absolute change first
	Movers []MoverRow

	// Verification is set when the run was replayed for determinism
	Verification *VerificationSection
}

// CategoryRow describes one category over all its members, ignoring filters.
type CategoryRow struct {
	Status        domain.Status
	Title         string
	Visible       int // after filtering
	Total         int
	ActiveFilters int
	Gainers       int     // PriceChange5m > 0
	Losers        int     // PriceChange5m < 0
	GainerRate    float64 // Gainers / Total, 0 for an empty category
	ChangeMean    float64 // mean PriceChange5m
	ChangeMedian  float64
	ChangeP10     float64
	ChangeP90     float64
	MaxDrawdown   float64 // worst peak-to-trough of any member's history, percent
}

// MoverRow is one token's archived move over the run.
type MoverRow struct {
	TokenID     string
	Symbol      string
	Status      domain.Status
	Samples     int
	FirstPrice  float64
	LastPrice   float64
	Change      float64 // percent, first to last sample
	MaxDrawdown float64 // percent, over the current history
}

// VerificationSection summarizes a determinism replay.
type VerificationSection struct {
	Match         bool
	TicksCompared int
	Divergences   int
}
