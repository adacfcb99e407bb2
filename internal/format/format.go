// Package format renders token values for display.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

// Price picks the precision from the magnitude: sub-micro prices use
// exponent notation, then 6, 4 and 2 decimals.
func Price(price float64) string {
	if !finite(price) {
		return strconv.FormatFloat(price, 'f', -1, 64)
	}
	switch {
	case price < 0.000001:
		return exponent(price, 2)
	case price < 0.01:
		return decimal.NewFromFloat(price).StringFixed(6)
	case price < 1:
		return decimal.NewFromFloat(price).StringFixed(4)
	default:
		return decimal.NewFromFloat(price).StringFixed(2)
	}
}

// Percentage renders a signed percentage with two decimals: "+5.00%".
func Percentage(value float64) string {
	if !finite(value) {
		return strconv.FormatFloat(value, 'f', -1, 64) + "%"
	}
	s := decimal.NewFromFloat(value).StringFixed(2)
	if value >= 0 {
		s = "+" + s
	}
	return s + "%"
}

// Trend classifies a percentage change as "up", "down" or "flat".
func Trend(value float64) string {
	switch {
	case value > 0:
		return "up"
	case value < 0:
		return "down"
	default:
		return "flat"
	}
}

// LargeNumber abbreviates with K, M or B suffixes after prefix: "$1.50M".
func LargeNumber(value float64, prefix string) string {
	if !finite(value) {
		return prefix + strconv.FormatFloat(value, 'f', -1, 64)
	}
	d := decimal.NewFromFloat(value)
	switch {
	case d.GreaterThanOrEqual(billion):
		return prefix + d.Div(billion).StringFixed(2) + "B"
	case d.GreaterThanOrEqual(million):
		return prefix + d.Div(million).StringFixed(2) + "M"
	case d.GreaterThanOrEqual(thousand):
		return prefix + d.Div(thousand).StringFixed(2) + "K"
	default:
		return prefix + d.StringFixed(2)
	}
}

// MarketCap renders a market cap in dollars.
func MarketCap(value float64) string {
	return LargeNumber(value, "$")
}

// Volume renders a volume in dollars.
func Volume(value float64) string {
	return LargeNumber(value, "$")
}

// TimeSince renders minutes as whole minutes, hours or days: "45m", "2h", "3d".
func TimeSince(minutes int) string {
	switch {
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%dh", minutes/60)
	default:
		return fmt.Sprintf("%dd", minutes/1440)
	}
}

// exponent formats like "5.00e-7": no leading zeros or plus sign in the exponent.
func exponent(value float64, digits int) string {
	s := strconv.FormatFloat(value, 'e', digits, 64)
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := ""
	if strings.HasPrefix(exp, "-") {
		sign = "-"
	}
	exp = strings.TrimLeft(exp, "+-0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + "e" + sign + exp
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
