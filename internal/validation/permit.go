package validation

import (
	"fmt"

	"github.com/youssefawwad88/RealEstate/internal/policy"
	"github.com/youssefawwad88/RealEstate/pkg/constants"
	"github.com/youssefawwad88/RealEstate/pkg/format"
)

// PermitProposal describes the building and ownership structure.
// ForeignOwnershipPct is the requested foreign share as a fraction; nil means
// the request does not state one.
type PermitProposal struct {
	GrossBuildableSqm   float64
	Floors              int
	ForeignOwnership    bool
	ForeignOwnershipPct *float64
	DevelopmentType     string
}

// PermitValidator lists permits and ownership restrictions.
type PermitValidator struct {
	rules *policy.RuleSet
}

// NewPermitValidator creates a validator for rs.
func NewPermitValidator(rs *policy.RuleSet) *PermitValidator {
	return &PermitValidator{rules: rs}
}

// Validate reports ownership restrictions and the approvals a project needs.
func (v *PermitValidator) Validate(p PermitProposal) *Report {
	report := NewReport()
	country := v.rules.Country

	if p.ForeignOwnership && !country.ForeignOwnershipAllowed {
		report.Add(Issue{
			Severity:   Critical,
			Category:   CategoryPermits,
			Code:       "FOREIGN_OWNERSHIP_RESTRICTED",
			Message:    "Foreign ownership is not permitted in this jurisdiction",
			Field:      "foreign_ownership",
			Value:      true,
			Suggestion: "Explore local partnership structures",
		})
	}

	limit := country.MaxForeignOwnershipPct
	exceedsCap := p.ForeignOwnershipPct == nil || *p.ForeignOwnershipPct > limit
	if p.ForeignOwnership && country.ForeignOwnershipAllowed && limit < 1 && exceedsCap {
		issue := Issue{
			Severity:   Warning,
			Category:   CategoryPermits,
			Code:       "FOREIGN_OWNERSHIP_LIMITED",
			Message:    fmt.Sprintf("Foreign ownership limited to %s", format.Fraction(limit, 0)),
			Field:      "foreign_ownership_pct",
			Suggestion: fmt.Sprintf("Structure ownership to comply with %s limit", format.Fraction(limit, 0)),
		}
		if p.ForeignOwnershipPct != nil {
			issue.Value = *p.ForeignOwnershipPct
		}
		report.Add(issue)
	}

	report.Add(Issue{
		Severity:   Info,
		Category:   CategoryPermits,
		Code:       "BUILDING_PERMIT_REQUIRED",
		Message:    "Building permit required for construction",
		Suggestion: "Allow for permit processing time in project schedule",
	})

	if p.GrossBuildableSqm > constants.EnvironmentalReviewSqm {
		report.Add(Issue{
			Severity:   Info,
			Category:   CategoryPermits,
			Code:       "ENVIRONMENTAL_CLEARANCE_REQUIRED",
			Message:    "Environmental clearance likely required for large developments",
			Suggestion: "Engage environmental consultant early in process",
		})
	}

	if p.Floors >= constants.ElevatorFloors {
		report.Add(Issue{
			Severity:   Info,
			Category:   CategoryPermits,
			Code:       "ELEVATOR_REQUIRED",
			Message:    fmt.Sprintf("Elevator required for %d-floor building", p.Floors),
			Suggestion: "Include elevator costs and space in design",
		})
	}

	if p.Floors >= constants.FireSafetyFloors || p.GrossBuildableSqm > constants.FireSafetyAreaSqm {
		report.Add(Issue{
			Severity:   Info,
			Category:   CategoryPermits,
			Code:       "FIRE_SAFETY_APPROVAL_REQUIRED",
			Message:    "Fire safety approval required",
			Suggestion: "Engage fire safety consultant for design compliance",
		})
	}

	return report
}
