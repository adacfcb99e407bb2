package reporting

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"token-pulse/internal/domain"
)

// computeCategory fills the statistics of row from the category members.
func computeCategory(row *CategoryRow, members []domain.TokenRecord) {
	row.Total = len(members)
	if len(members) == 0 {
		return
	}

	changes := make([]float64, len(members))
	for i := range members {
		c := members[i].PriceChange5m
		changes[i] = c
		switch {
		case c > 0:
			row.Gainers++
		case c < 0:
			row.Losers++
		}
		if dd := computeMaxDrawdown(members[i].History); dd > row.MaxDrawdown {
			row.MaxDrawdown = dd
		}
	}
	row.GainerRate = float64(row.Gainers) / float64(len(members))

	sort.Float64s(changes)
	row.ChangeMean = stat.Mean(changes, nil)
	row.ChangeMedian = stat.Quantile(0.5, stat.Empirical, changes, nil)
	row.ChangeP10 = stat.Quantile(0.1, stat.Empirical, changes, nil)
	row.ChangeP90 = stat.Quantile(0.9, stat.Empirical, changes, nil)
}

// computeMaxDrawdown returns the worst peak-to-trough fall of a price
// series as a percentage of the peak. History must be in chronological order.
func computeMaxDrawdown(history []float64) float64 {
	peak := 0.0
	maxDrawdown := 0.0

	for _, p := range history {
		if p > peak {
			peak = p
		}
		if peak <= 0 {
			continue
		}
		drawdown := (peak - p) / peak * 100
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}
	return maxDrawdown
}

// sortMovers orders by absolute change descending, then token ID.
func sortMovers(rows []MoverRow) {
	sort.Slice(rows, func(i, j int) bool {
		ai, aj := abs(rows[i].Change), abs(rows[j].Change)
		if ai != aj {
			return ai > aj
		}
		return rows[i].TokenID < rows[j].TokenID
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
