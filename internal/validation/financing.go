package validation

import (
	"fmt"

	"github.com/youssefawwad88/RealEstate/internal/policy"
	"github.com/youssefawwad88/RealEstate/pkg/constants"
	"github.com/youssefawwad88/RealEstate/pkg/format"
)

// FinancingProposal is the proposed capital structure, as fractions.
type FinancingProposal struct {
	LTVRatio     float64
	EquityPct    float64
	ForeignBuyer bool
}

// FinancingValidator checks leverage against country limits.
type FinancingValidator struct {
	rules *policy.RuleSet
}

// NewFinancingValidator creates a validator for rs.
func NewFinancingValidator(rs *policy.RuleSet) *FinancingValidator {
	return &FinancingValidator{rules: rs}
}

// Validate checks the LTV cap, the minimum equity and, for foreign buyers in
// countries that set one, the non-resident LTV cap.
func (v *FinancingValidator) Validate(p FinancingProposal) *Report {
	report := NewReport()
	country := v.rules.Country

	if exceeds(p.LTVRatio, country.MaxLTVRatio) {
		report.Add(Issue{
			Severity:   Error,
			Category:   CategoryFinancing,
			Code:       "LTV_EXCEEDED",
			Message:    fmt.Sprintf("LTV %s exceeds maximum %s", format.Fraction(p.LTVRatio, 1), format.Fraction(country.MaxLTVRatio, 1)),
			Field:      "ltv_ratio",
			Value:      p.LTVRatio,
			Suggestion: fmt.Sprintf("Reduce LTV to maximum %s or increase equity", format.Fraction(country.MaxLTVRatio, 1)),
		})
	}

	if exceeds(country.MinEquityRequirement, p.EquityPct) {
		report.Add(Issue{
			Severity:   Error,
			Category:   CategoryFinancing,
			Code:       "INSUFFICIENT_EQUITY",
			Message:    fmt.Sprintf("Equity %s below minimum %s", format.Fraction(p.EquityPct, 1), format.Fraction(country.MinEquityRequirement, 1)),
			Field:      "equity_pct",
			Value:      p.EquityPct,
			Suggestion: fmt.Sprintf("Increase equity to minimum %s", format.Fraction(country.MinEquityRequirement, 1)),
		})
	}

	if p.ForeignBuyer && country.NonResidentMaxLTV != nil && exceeds(p.LTVRatio, *country.NonResidentMaxLTV) {
		limit := *country.NonResidentMaxLTV
		report.Add(Issue{
			Severity:   Error,
			Category:   CategoryFinancing,
			Code:       "FOREIGN_LTV_EXCEEDED",
			Message:    fmt.Sprintf("Non-resident LTV %s exceeds maximum %s", format.Fraction(p.LTVRatio, 1), format.Fraction(limit, 1)),
			Field:      "ltv_ratio",
			Value:      p.LTVRatio,
			Suggestion: fmt.Sprintf("Reduce LTV to %s for non-resident financing", format.Fraction(limit, 1)),
		})
	}

	return report
}

// exceeds reports whether value is above limit by more than float error, so
// an equity of 1-0.8 still meets a 20% minimum.
func exceeds(value, limit float64) bool {
	return value > limit+constants.RatioTolerance
}
