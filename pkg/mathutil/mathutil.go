// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/youssefawwad88/RealEstate/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// SafeDivide returns numerator/denominator, or 0 when the denominator is not
// strictly positive. Ratio metrics downstream rely on receiving 0 rather than
// NaN or an infinity.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}
	return numerator / denominator
}

// OptionalDivide is SafeDivide for metrics that are reported as absent when
// the denominator is zero.
func OptionalDivide(numerator, denominator float64) *float64 {
	if denominator == 0 {
		return nil
	}
	v := numerator / denominator
	return &v
}

// CalculatePercentage calculates what percentage value is of total, on a
// 0-100 scale.
func CalculatePercentage(value, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
