package generator

import "math"

// SeededFunc maps a seed to a value in [0, 1). The same seed must always
// produce the same value; no external entropy is allowed.
type SeededFunc func(seed float64) float64

// SinSeeded is the default SeededFunc: frac(sin(seed) * 10000).
func SinSeeded(seed float64) float64 {
	x := math.Sin(seed) * 10000
	return x - math.Floor(x)
}
