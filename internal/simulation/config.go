package simulation

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned when a simulation parameter is out of range.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config holds the tick update rules.
type Config struct {
	// TickInterval is the design cadence of the external clock.
	TickInterval time.Duration
	// UpdateProbability is the chance a record is updated in a tick.
	UpdateProbability float64
	// SpikeProbability is the chance an update uses SpikeVolatility.
	SpikeProbability float64
	// SpikeVolatility is the move size as a fraction of price during a spike.
	SpikeVolatility float64
	// CalmVolatility is the move size as a fraction of price otherwise.
	CalmVolatility float64
	// UpProbability is the chance a move is positive.
	UpProbability float64
	// VolumeProbability is the chance an update also records a trade.
	VolumeProbability float64
	// MaxVolumeIncrement bounds the volume added by one trade.
	MaxVolumeIncrement float64
	// PriceFloor is the smallest price a token may reach.
	PriceFloor float64
	// HistoryLimit is the number of price samples kept per token.
	HistoryLimit int
}

// DefaultConfig returns the default tick rules.
func DefaultConfig() Config {
	return Config{
		TickInterval:       800 * time.Millisecond,
		UpdateProbability:  0.15,
		SpikeProbability:   0.10,
		SpikeVolatility:    0.05,
		CalmVolatility:     0.005,
		UpProbability:      0.55,
		VolumeProbability:  0.30,
		MaxVolumeIncrement: 1000,
		PriceFloor:         0.000001,
		HistoryLimit:       20,
	}
}

// Validate checks every parameter is in range.
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive", ErrInvalidConfig)
	}
	for name, p := range map[string]float64{
		"update probability": c.UpdateProbability,
		"spike probability":  c.SpikeProbability,
		"up probability":     c.UpProbability,
		"volume probability": c.VolumeProbability,
	} {
		if !(p >= 0 && p <= 1) {
			return fmt.Errorf("%w: %s %v not in [0,1]", ErrInvalidConfig, name, p)
		}
	}
	if !(c.SpikeVolatility > 0 && c.SpikeVolatility <= 1) {
		return fmt.Errorf("%w: spike volatility %v not in (0,1]", ErrInvalidConfig, c.SpikeVolatility)
	}
	if !(c.CalmVolatility > 0 && c.CalmVolatility <= 1) {
		return fmt.Errorf("%w: calm volatility %v not in (0,1]", ErrInvalidConfig, c.CalmVolatility)
	}
	if !(c.MaxVolumeIncrement >= 0) {
		return fmt.Errorf("%w: max volume increment must be non-negative", ErrInvalidConfig)
	}
	if !(c.PriceFloor > 0) {
		return fmt.Errorf("%w: price floor must be positive", ErrInvalidConfig)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("%w: history limit must be positive", ErrInvalidConfig)
	}
	return nil
}
