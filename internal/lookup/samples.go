// Package lookup resolves archived price samples by tick.
package lookup

import (
	"errors"

	"token-pulse/internal/domain"
)

// ErrNoPriceData is returned when a token has no archived samples.
var ErrNoPriceData = errors.New("no price data available")

// SampleAt returns the sample at or before target tick.
// Samples must be ordered by tick ascending.
// If no sample precedes target, the first sample is returned.
func SampleAt(target int64, samples []*domain.PriceSample) (*domain.PriceSample, error) {
	if len(samples) == 0 {
		return nil, ErrNoPriceData
	}

	for i := len(samples) - 1; i >= 0; i-- {
		if samples[i].Tick <= target {
			return samples[i], nil
		}
	}

	return samples[0], nil
}

// PriceAt returns the price at or before target tick.
func PriceAt(target int64, samples []*domain.PriceSample) (float64, error) {
	s, err := SampleAt(target, samples)
	if err != nil {
		return 0, err
	}
	return s.Price, nil
}

// ChangeBetween returns the percentage price change between the samples
// resolved for from and to. A zero starting price yields 0.
func ChangeBetween(from, to int64, samples []*domain.PriceSample) (float64, error) {
	start, err := PriceAt(from, samples)
	if err != nil {
		return 0, err
	}
	end, err := PriceAt(to, samples)
	if err != nil {
		return 0, err
	}
	if start == 0 {
		return 0, nil
	}
	return (end - start) / start * 100, nil
}
