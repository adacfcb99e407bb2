// Package simulation advances the token universe one tick at a time.
package simulation

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"token-pulse/internal/domain"
)

// Source supplies uniform draws in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// TickResult summarizes one Step.
type TickResult struct {
	Updated    []string // IDs of records whose price moved, in processing order
	Trades     int      // updates that also recorded a trade
	Spikes     int      // updates that used spike volatility
	Degenerate int      // records skipped because a value would be non-finite
}

// Simulator mutates records according to Config.
type Simulator struct {
	cfg Config
	src Source
}

// New creates a simulator. A nil src uses a time-seeded math/rand source.
func New(cfg Config, src Source) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{cfg: cfg, src: src}, nil
}

// Config returns the simulator's parameters.
func (s *Simulator) Config() Config {
	return s.cfg
}

// Step mutates records in place and re-sorts the slice by PriceChange5m
// descending. Ties keep their prior relative order.
func (s *Simulator) Step(records []*domain.TokenRecord) TickResult {
	var res TickResult

	for _, r := range records {
		// skip draw first so skipped records consume exactly one draw
		if s.src.Float64() >= s.cfg.UpdateProbability {
			continue
		}

		volatility := s.cfg.CalmVolatility
		spike := s.src.Float64() < s.cfg.SpikeProbability
		if spike {
			volatility = s.cfg.SpikeVolatility
		}

		direction := -1.0
		if s.src.Float64() < s.cfg.UpProbability {
			direction = 1.0
		}

		trade := s.src.Float64() < s.cfg.VolumeProbability
		var volumeInc float64
		if trade {
			volumeInc = s.src.Float64() * s.cfg.MaxVolumeIncrement
		}

		if !s.apply(r, volatility, direction, volumeInc, trade) {
			res.Degenerate++
			continue
		}

		res.Updated = append(res.Updated, r.ID)
		if spike {
			res.Spikes++
		}
		if trade {
			res.Trades++
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PriceChange5m > records[j].PriceChange5m
	})

	return res
}

// apply computes the new values first and commits them only if all are finite.
func (s *Simulator) apply(r *domain.TokenRecord, volatility, direction, volumeInc float64, trade bool) bool {
	oldPrice := r.Price
	if !(oldPrice > 0) || math.IsInf(oldPrice, 0) {
		return false
	}

	delta := oldPrice * volatility * direction
	newPrice := math.Max(s.cfg.PriceFloor, oldPrice+delta)
	// the floor may absorb part of a downward move
	delta = newPrice - oldPrice

	// cap/price ratio uses the pre-update price (constant circulating supply)
	marketCap := newPrice * (r.MarketCap / oldPrice)
	pct := delta / newPrice * 100
	change5m := r.PriceChange5m + pct
	change1h := r.PriceChange1h + pct
	volume := r.Volume24h + volumeInc

	if !finite(newPrice, marketCap, change5m, change1h, volume) {
		return false
	}

	r.Price = newPrice
	r.MarketCap = marketCap
	r.PriceChange5m = change5m
	r.PriceChange1h = change1h
	if trade {
		r.Volume24h = volume
		r.Transactions++
	}
	r.History = domain.PushHistory(r.History, newPrice, s.cfg.HistoryLimit)
	return true
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
