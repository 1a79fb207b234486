// Package residual implements the single-period residual land value method:
// development capacity sizing, development financials, acquisition metrics
// and sensitivity scenarios. All functions are pure.
package residual

// Limiting factors reported by CalculateCapacity.
const (
	LimitFAR      = "far"
	LimitCoverage = "coverage"
)

// DevelopmentCapacity is the buildable and sellable area a site supports.
type DevelopmentCapacity struct {
	GrossBuildableSqm float64 `json:"gross_buildable_sqm"`
	NetSellableSqm    float64 `json:"net_sellable_sqm"`
	LimitingFactor    string  `json:"limiting_factor"`
}

// SiteConstraints are the geometric and zoning inputs to CalculateCapacity.
// FAR is optional; a nil FAR leaves coverage times floors as the only limit.
type SiteConstraints struct {
	LandAreaSqm     float64
	FAR             *float64
	Coverage        float64
	MaxFloors       int
	EfficiencyRatio float64
}

// CalculateCapacity sizes the gross buildable area as the tighter of the FAR
// envelope and the coverage-times-floors envelope. Ties go to FAR. Degenerate
// inputs produce zero areas rather than errors.
func CalculateCapacity(site SiteConstraints) DevelopmentCapacity {
	byCoverage := site.LandAreaSqm * site.Coverage * float64(site.MaxFloors)

	gross := byCoverage
	limiting := LimitCoverage
	if site.FAR != nil {
		byFAR := site.LandAreaSqm * *site.FAR
		if byFAR <= byCoverage {
			gross = byFAR
			limiting = LimitFAR
		}
	}

	return DevelopmentCapacity{
		GrossBuildableSqm: gross,
		NetSellableSqm:    gross * site.EfficiencyRatio,
		LimitingFactor:    limiting,
	}
}
