// Package format renders money, areas and ratios for summaries and reports.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	return withSymbol("$", amount, 2)
}

// WholeCurrency returns a currency string rounded to whole units (e.g., "$750,000").
func WholeCurrency(amount float64) string {
	return withSymbol("$", amount, 0)
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	return Number(amount, 2)
}

// Number formats v with thousands separators and the given number of decimals.
func Number(v float64, decimals int32) string {
	sign := ""
	if v < 0 {
		sign = "-"
	}
	formatted := group(math.Abs(v), decimals)
	if isZeroString(formatted) {
		sign = ""
	}
	return sign + formatted
}

// Area formats an area in square meters with separators and no decimals (e.g., "1,500").
func Area(sqm float64) string {
	return Number(sqm, 0)
}

// Percent formats a value already on a 0-100 scale (e.g., Percent(8.68, 1) == "8.7%").
func Percent(v float64, decimals int32) string {
	return RoundHalfUp(v, decimals).StringFixed(decimals) + "%"
}

// Fraction formats a 0-1 fraction as a percentage (e.g., Fraction(0.15, 0) == "15%").
func Fraction(v float64, decimals int32) string {
	return Percent(v*100, decimals)
}

// Compact abbreviates large amounts: millions with one decimal, thousands
// with none (e.g., "$9.1M", "$750K", "$500").
func Compact(amount float64, symbol string) string {
	abs := math.Abs(amount)
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	switch {
	case abs >= 1_000_000:
		return sign + symbol + RoundHalfUp(abs/1_000_000, 1).StringFixed(1) + "M"
	case abs >= 1_000:
		return sign + symbol + RoundHalfUp(abs/1_000, 0).StringFixed(0) + "K"
	default:
		return withSymbol(symbol, amount, 0)
	}
}

// RoundHalfUp rounds v to the given decimals away from zero on ties, using
// decimal arithmetic so binary float artifacts do not flip the last digit.
func RoundHalfUp(v float64, decimals int32) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(decimals)
}

func withSymbol(symbol string, amount float64, decimals int32) string {
	formatted := group(math.Abs(amount), decimals)
	if amount < 0 && !isZeroString(formatted) {
		return "-" + symbol + formatted
	}
	return symbol + formatted
}

func group(value float64, decimals int32) string {
	formatted := RoundHalfUp(value, decimals).StringFixed(decimals)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return fmt.Sprintf("%s.%s", intPart, parts[1])
	}
	return intPart
}

func isZeroString(s string) bool {
	return strings.Trim(s, "0.,") == ""
}
