package validation

import (
	"fmt"
	"strings"

	"github.com/youssefawwad88/RealEstate/internal/policy"
	"github.com/youssefawwad88/RealEstate/pkg/constants"
	"github.com/youssefawwad88/RealEstate/pkg/format"
)

// Setbacks are proposed distances in meters; nil directions are not checked.
type Setbacks struct {
	Front *float64
	Side  *float64
	Rear  *float64
}

// ZoningProposal is a development proposal for one zoning code.
type ZoningProposal struct {
	ZoningCode  string
	LandAreaSqm float64
	FAR         float64
	Coverage    float64
	Floors      int
	HeightM     *float64
	Setbacks    *Setbacks
}

// ZoningValidator checks proposals against zoning limits.
type ZoningValidator struct {
	rules *policy.RuleSet
}

// NewZoningValidator creates a validator for rs.
func NewZoningValidator(rs *policy.RuleSet) *ZoningValidator {
	return &ZoningValidator{rules: rs}
}

// Validate checks every dimension independently and adds a parking estimate.
// An unknown zoning code yields a single ZONING_NOT_FOUND error.
func (v *ZoningValidator) Validate(p ZoningProposal) *Report {
	report := NewReport()

	zone, ok := v.rules.Zoning(p.ZoningCode)
	if !ok {
		report.Add(Issue{
			Severity:   Error,
			Category:   CategoryZoning,
			Code:       "ZONING_NOT_FOUND",
			Message:    fmt.Sprintf("Zoning code '%s' not found in %s regulations", p.ZoningCode, v.rules.CountryCode),
			Field:      "zoning",
			Value:      p.ZoningCode,
			Suggestion: fmt.Sprintf("Available zones: %s", strings.Join(v.rules.ZoneCodes(), ", ")),
		})
		return report
	}

	switch {
	case p.FAR > zone.FARMax:
		report.Add(Issue{
			Severity:   Error,
			Category:   CategoryZoning,
			Code:       "FAR_EXCEEDED",
			Message:    fmt.Sprintf("FAR %.2f exceeds maximum %.2f for %s", p.FAR, zone.FARMax, zone.Name),
			Field:      "far",
			Value:      p.FAR,
			Suggestion: fmt.Sprintf("Reduce FAR to maximum %.2f", zone.FARMax),
		})
	case p.FAR > zone.FARMax*constants.FARWarningRatio:
		report.Add(Issue{
			Severity:   Warning,
			Category:   CategoryZoning,
			Code:       "FAR_HIGH",
			Message:    fmt.Sprintf("FAR %.2f is close to maximum %.2f", p.FAR, zone.FARMax),
			Field:      "far",
			Value:      p.FAR,
			Suggestion: "Consider reducing FAR for approval certainty",
		})
	}

	if p.Coverage > zone.CoverageMax {
		report.Add(Issue{
			Severity:   Error,
			Category:   CategoryZoning,
			Code:       "COVERAGE_EXCEEDED",
			Message:    fmt.Sprintf("Coverage %s exceeds maximum %s", format.Fraction(p.Coverage, 1), format.Fraction(zone.CoverageMax, 1)),
			Field:      "coverage",
			Value:      p.Coverage,
			Suggestion: fmt.Sprintf("Reduce coverage to maximum %s", format.Fraction(zone.CoverageMax, 1)),
		})
	}

	if p.Floors > zone.FloorsMax {
		report.Add(Issue{
			Severity:   Error,
			Category:   CategoryZoning,
			Code:       "FLOORS_EXCEEDED",
			Message:    fmt.Sprintf("Floors %d exceeds maximum %d", p.Floors, zone.FloorsMax),
			Field:      "max_floors",
			Value:      p.Floors,
			Suggestion: fmt.Sprintf("Reduce floors to maximum %d", zone.FloorsMax),
		})
	}

	if p.HeightM != nil && *p.HeightM > zone.HeightMaxM {
		report.Add(Issue{
			Severity:   Error,
			Category:   CategoryZoning,
			Code:       "HEIGHT_EXCEEDED",
			Message:    fmt.Sprintf("Height %gm exceeds maximum %gm", *p.HeightM, zone.HeightMaxM),
			Field:      "building_height_m",
			Value:      *p.HeightM,
			Suggestion: fmt.Sprintf("Reduce height to maximum %gm", zone.HeightMaxM),
		})
	}

	if p.Setbacks != nil {
		checks := []struct {
			direction string
			provided  *float64
			required  float64
		}{
			{"front", p.Setbacks.Front, zone.SetbackFrontM},
			{"side", p.Setbacks.Side, zone.SetbackSideM},
			{"rear", p.Setbacks.Rear, zone.SetbackRearM},
		}
		for _, c := range checks {
			if c.provided == nil || c.required <= 0 || *c.provided >= c.required {
				continue
			}
			report.Add(Issue{
				Severity:   Error,
				Category:   CategoryZoning,
				Code:       "SETBACK_INSUFFICIENT",
				Message:    fmt.Sprintf("%s setback %gm is less than required %gm", titleCase(c.direction), *c.provided, c.required),
				Field:      "setback_" + c.direction,
				Value:      *c.provided,
				Suggestion: fmt.Sprintf("Increase %s setback to minimum %gm", c.direction, c.required),
			})
		}
	}

	if gross := p.LandAreaSqm * p.FAR; gross > 0 {
		report.Add(parkingIssue(zone, gross))
	}

	return report
}

func parkingIssue(zone policy.ZoningRules, grossBuildable float64) Issue {
	issue := Issue{
		Severity:   Info,
		Category:   CategoryParking,
		Code:       "PARKING_REQUIREMENT",
		Suggestion: "Verify parking can be accommodated on site",
	}
	if zone.IsResidential() {
		units := grossBuildable * constants.ParkingUnitEfficiency / constants.ParkingUnitSizeSqm
		spaces := units * zone.ParkingRatio
		issue.Message = fmt.Sprintf("Estimated parking requirement: %.0f spaces (%.1f per unit)", spaces, zone.ParkingRatio)
		issue.Value = spaces
		return issue
	}
	issue.Message = fmt.Sprintf("Parking requirement: %.1f spaces per 100 sqm GFA", zone.ParkingRatio)
	issue.Value = zone.ParkingRatio
	return issue
}

// ValidateMixedUse checks residential and commercial shares (fractions)
// against the zone's component minimums. Unknown and single-use zones are
// skipped.
func (v *ZoningValidator) ValidateMixedUse(zoningCode string, residentialPct, commercialPct float64) *Report {
	report := NewReport()

	zone, ok := v.rules.Zoning(zoningCode)
	if !ok || !zone.IsMixedUse() {
		return report
	}

	if zone.ResidentialComponentMin > 0 && residentialPct < zone.ResidentialComponentMin {
		report.Add(Issue{
			Severity:   Error,
			Category:   CategoryMixedUse,
			Code:       "INSUFFICIENT_RESIDENTIAL",
			Message:    fmt.Sprintf("Residential component %s below required minimum %s", format.Fraction(residentialPct, 1), format.Fraction(zone.ResidentialComponentMin, 1)),
			Field:      "residential_pct",
			Value:      residentialPct,
			Suggestion: fmt.Sprintf("Increase residential component to minimum %s", format.Fraction(zone.ResidentialComponentMin, 1)),
		})
	}
	if zone.CommercialComponentMin > 0 && commercialPct < zone.CommercialComponentMin {
		report.Add(Issue{
			Severity:   Error,
			Category:   CategoryMixedUse,
			Code:       "INSUFFICIENT_COMMERCIAL",
			Message:    fmt.Sprintf("Commercial component %s below required minimum %s", format.Fraction(commercialPct, 1), format.Fraction(zone.CommercialComponentMin, 1)),
			Field:      "commercial_pct",
			Value:      commercialPct,
			Suggestion: fmt.Sprintf("Increase commercial component to minimum %s", format.Fraction(zone.CommercialComponentMin, 1)),
		})
	}
	return report
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
