// Package verification replays a seeded market twice and checks that both
// runs produce the same universe and the same state after every tick.
package verification

import (
	"math"

	"token-pulse/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between the reference and replayed runs.
type FieldDivergence struct {
	Tick     uint64      // tick after which the mismatch was observed (0 = after Init)
	TokenID  string      // record the field belongs to
	Field    string      // field name
	Expected interface{} // reference value
	Actual   interface{} // replayed value
}

// CompareRecords compares two token records and returns divergences.
// Uses FloatTolerance for float64 comparisons.
func CompareRecords(expected, actual *domain.TokenRecord) []FieldDivergence {
	var divergences []FieldDivergence
	add := func(field string, e, a interface{}) {
		divergences = append(divergences, FieldDivergence{
			TokenID:  expected.ID,
			Field:    field,
			Expected: e,
			Actual:   a,
		})
	}

	// Identity must match exactly
	if expected.ID != actual.ID {
		add("ID", expected.ID, actual.ID)
	}
	if expected.ContractAddress != actual.ContractAddress {
		add("ContractAddress", expected.ContractAddress, actual.ContractAddress)
	}
	if expected.Name != actual.Name {
		add("Name", expected.Name, actual.Name)
	}
	if expected.Symbol != actual.Symbol {
		add("Symbol", expected.Symbol, actual.Symbol)
	}
	if expected.Protocol != actual.Protocol {
		add("Protocol", expected.Protocol, actual.Protocol)
	}
	if expected.Status != actual.Status {
		add("Status", expected.Status, actual.Status)
	}
	if expected.Security != actual.Security {
		add("Security", expected.Security, actual.Security)
	}

	// Market values
	if !floatEquals(expected.Price, actual.Price) {
		add("Price", expected.Price, actual.Price)
	}
	if !floatEquals(expected.MarketCap, actual.MarketCap) {
		add("MarketCap", expected.MarketCap, actual.MarketCap)
	}
	if !floatEquals(expected.Liquidity, actual.Liquidity) {
		add("Liquidity", expected.Liquidity, actual.Liquidity)
	}
	if !floatEquals(expected.Volume24h, actual.Volume24h) {
		add("Volume24h", expected.Volume24h, actual.Volume24h)
	}
	if expected.Transactions != actual.Transactions {
		add("Transactions", expected.Transactions, actual.Transactions)
	}
	if expected.Holders != actual.Holders {
		add("Holders", expected.Holders, actual.Holders)
	}
	if !floatEquals(expected.PriceChange5m, actual.PriceChange5m) {
		add("PriceChange5m", expected.PriceChange5m, actual.PriceChange5m)
	}
	if !floatEquals(expected.PriceChange1h, actual.PriceChange1h) {
		add("PriceChange1h", expected.PriceChange1h, actual.PriceChange1h)
	}
	if !floatEquals(expected.PriceChange24h, actual.PriceChange24h) {
		add("PriceChange24h", expected.PriceChange24h, actual.PriceChange24h)
	}

	// History is compared element-wise after the length check
	if len(expected.History) != len(actual.History) {
		add("History.Len", len(expected.History), len(actual.History))
	} else {
		for i := range expected.History {
			if !floatEquals(expected.History[i], actual.History[i]) {
				add("History", expected.History, actual.History)
				break
			}
		}
	}

	return divergences
}

// CompareSnapshots compares two universes position by position, so a
// difference in ranking order shows up as an ID divergence.
func CompareSnapshots(expected, actual []domain.TokenRecord) []FieldDivergence {
	if len(expected) != len(actual) {
		return []FieldDivergence{{
			Field:    "Len",
			Expected: len(expected),
			Actual:   len(actual),
		}}
	}

	var divergences []FieldDivergence
	for i := range expected {
		divergences = append(divergences, CompareRecords(&expected[i], &actual[i])...)
	}
	return divergences
}

// floatEquals compares two float64 values within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}
