// Package policy models per-country rule sets (country, zoning, finance and
// market configuration), loads them from rule files and caches them.
package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/youssefawwad88/RealEstate/pkg/constants"
	"go.uber.org/multierr"
)

// CountryRules are the tax, ownership and financing rules of one country.
type CountryRules struct {
	Name     string `json:"name" yaml:"name"`
	Code     string `json:"code" yaml:"code"`
	Currency string `json:"currency" yaml:"currency"`
	Language string `json:"language" yaml:"language"`

	TransferTaxRate    float64 `json:"transfer_tax_rate" yaml:"transfer_tax_rate"`
	StampDutyRate      float64 `json:"stamp_duty_rate" yaml:"stamp_duty_rate"`
	RegistrationFees   float64 `json:"registration_fees" yaml:"registration_fees"`
	LegalFeesRate      float64 `json:"legal_fees_rate" yaml:"legal_fees_rate"`
	MunicipalFeesRate  float64 `json:"municipal_fees_rate" yaml:"municipal_fees_rate"`
	InfrastructureLevy float64 `json:"infrastructure_levy" yaml:"infrastructure_levy"`
	VATRate            float64 `json:"vat_rate" yaml:"vat_rate"`
	CorporateTaxRate   float64 `json:"corporate_tax_rate" yaml:"corporate_tax_rate"`
	WithholdingTaxRate float64 `json:"withholding_tax_rate" yaml:"withholding_tax_rate"`

	ForeignOwnershipAllowed bool    `json:"foreign_ownership_allowed" yaml:"foreign_ownership_allowed"`
	MaxForeignOwnershipPct  float64 `json:"max_foreign_ownership_pct" yaml:"max_foreign_ownership_pct"`

	MaxLTVRatio          float64  `json:"max_ltv_ratio" yaml:"max_ltv_ratio"`
	NonResidentMaxLTV    *float64 `json:"non_resident_max_ltv,omitempty" yaml:"non_resident_max_ltv,omitempty"`
	TypicalInterestRate  float64  `json:"typical_interest_rate" yaml:"typical_interest_rate"`
	MinEquityRequirement float64  `json:"min_equity_requirement" yaml:"min_equity_requirement"`
}

// AcquisitionCosts estimates transfer taxes and fees on a purchase price.
func (c CountryRules) AcquisitionCosts(price float64) float64 {
	rate := c.TransferTaxRate + c.StampDutyRate + c.LegalFeesRate + c.MunicipalFeesRate
	return price*rate + c.RegistrationFees
}

// ZoningRules are the development limits of one zoning code.
type ZoningRules struct {
	Name                    string  `mapstructure:"name" json:"name" yaml:"name"`
	FARMax                  float64 `mapstructure:"far_max" json:"far_max" yaml:"far_max"`
	CoverageMax             float64 `mapstructure:"coverage_max" json:"coverage_max" yaml:"coverage_max"`
	HeightMaxM              float64 `mapstructure:"height_max_m" json:"height_max_m" yaml:"height_max_m"`
	FloorsMax               int     `mapstructure:"floors_max" json:"floors_max" yaml:"floors_max"`
	SetbackFrontM           float64 `mapstructure:"setback_front_m" json:"setback_front_m" yaml:"setback_front_m"`
	SetbackSideM            float64 `mapstructure:"setback_side_m" json:"setback_side_m" yaml:"setback_side_m"`
	SetbackRearM            float64 `mapstructure:"setback_rear_m" json:"setback_rear_m" yaml:"setback_rear_m"`
	ParkingRatio            float64 `mapstructure:"parking_ratio" json:"parking_ratio" yaml:"parking_ratio"`
	ResidentialComponentMin float64 `mapstructure:"residential_component_min" json:"residential_component_min,omitempty" yaml:"residential_component_min,omitempty"`
	CommercialComponentMin  float64 `mapstructure:"commercial_component_min" json:"commercial_component_min,omitempty" yaml:"commercial_component_min,omitempty"`
}

// IsResidential reports whether the zone is a residential classification.
func (z ZoningRules) IsResidential() bool {
	return strings.Contains(strings.ToLower(z.Name), "residential")
}

// IsMixedUse reports whether the zone sets component minimums.
func (z ZoningRules) IsMixedUse() bool {
	return z.ResidentialComponentMin > 0 || z.CommercialComponentMin > 0
}

// FinanceRules are profit, cost and timeline benchmarks.
type FinanceRules struct {
	ProfitTargets       map[string]float64 `mapstructure:"profit_targets" json:"profit_targets" yaml:"profit_targets"`
	SoftCosts           map[string]float64 `mapstructure:"soft_costs" json:"soft_costs" yaml:"soft_costs"`
	ConstructionFinance map[string]float64 `mapstructure:"construction_finance" json:"construction_finance" yaml:"construction_finance"`
	Sales               map[string]float64 `mapstructure:"sales" json:"sales" yaml:"sales"`
	Timeline            map[string]int     `mapstructure:"timeline" json:"timeline" yaml:"timeline"`
	RiskFactors         map[string]float64 `mapstructure:"risk_factors" json:"risk_factors" yaml:"risk_factors"`
	Benchmarks          map[string]float64 `mapstructure:"benchmarks" json:"benchmarks" yaml:"benchmarks"`
}

// Location describes one market location.
type Location struct {
	Name                 string   `mapstructure:"name" json:"name,omitempty" yaml:"name,omitempty"`
	Tier                 int      `mapstructure:"tier" json:"tier,omitempty" yaml:"tier,omitempty"`
	DemandScore          int      `mapstructure:"demand_score" json:"demand_score,omitempty" yaml:"demand_score,omitempty"`
	LiquidityScore       int      `mapstructure:"liquidity_score" json:"liquidity_score,omitempty" yaml:"liquidity_score,omitempty"`
	AbsorptionRateMonths *float64 `mapstructure:"absorption_rate_months" json:"absorption_rate_months,omitempty" yaml:"absorption_rate_months,omitempty"`
}

// MarketConfig drives market benchmark lookups for a country.
type MarketConfig struct {
	DataSources    map[string]string   `mapstructure:"data_sources" json:"data_sources" yaml:"data_sources"`
	Locations      map[string]Location `mapstructure:"locations" json:"locations" yaml:"locations"`
	DataKeys       map[string][]string `mapstructure:"data_keys" json:"data_keys" yaml:"data_keys"`
	Validation     map[string]float64  `mapstructure:"validation" json:"validation" yaml:"validation"`
	FallbackValues map[string]float64  `mapstructure:"fallback_values" json:"fallback_values" yaml:"fallback_values"`
	Integration    map[string]any      `mapstructure:"integration" json:"integration" yaml:"integration"`
}

// GlobalConfig holds settings shared by every country.
type GlobalConfig struct {
	Units       map[string]string             `mapstructure:"units" json:"units" yaml:"units"`
	Scoring     map[string]map[string]float64 `mapstructure:"scoring" json:"scoring" yaml:"scoring"`
	Development map[string]map[string]float64 `mapstructure:"development" json:"development" yaml:"development"`
	Validation  map[string]bool               `mapstructure:"validation" json:"validation" yaml:"validation"`
}

// RuleSet is the complete, read-only rule set of one country. Callers must
// not modify its maps: rule sets are shared through the registry cache.
type RuleSet struct {
	CountryCode string                 `json:"country_code" yaml:"country_code"`
	Global      GlobalConfig           `json:"global" yaml:"global"`
	Country     CountryRules           `json:"country" yaml:"country"`
	Zones       map[string]ZoningRules `json:"zoning" yaml:"zoning"`
	Finance     FinanceRules           `json:"finance" yaml:"finance"`
	Market      MarketConfig           `json:"market" yaml:"market"`
}

// Zoning looks up a zoning code case-insensitively.
func (rs *RuleSet) Zoning(code string) (ZoningRules, bool) {
	z, ok := rs.Zones[strings.ToUpper(strings.TrimSpace(code))]
	return z, ok
}

// ZoneCodes returns the configured zoning codes in sorted order.
func (rs *RuleSet) ZoneCodes() []string {
	codes := make([]string, 0, len(rs.Zones))
	for code := range rs.Zones {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ProfitTarget returns the profit target for a development type, falling back
// to the global minimum and then the built-in default.
func (rs *RuleSet) ProfitTarget(developmentType string) float64 {
	if v, ok := rs.Finance.ProfitTargets[developmentType]; ok {
		return v
	}
	if v, ok := rs.Global.Development["profit_target"]["min"]; ok {
		return v
	}
	return constants.DefaultProfitTarget
}

// SoftCostPct returns the total soft cost share, falling back to the global
// scoring default and then the built-in default.
func (rs *RuleSet) SoftCostPct() float64 {
	if v, ok := rs.Finance.SoftCosts["total_soft_cost_pct"]; ok {
		return v
	}
	if v, ok := rs.Global.Scoring["thresholds"]["soft_cost_default"]; ok {
		return v
	}
	return constants.DefaultSoftCostPct
}

// Check reports every inconsistent value in the rule set.
func (rs *RuleSet) Check() error {
	var errs error
	c := rs.Country
	if c.MaxLTVRatio <= 0 || c.MaxLTVRatio > 1 {
		errs = multierr.Append(errs, fmt.Errorf("country %s: max_ltv_ratio %v must be in (0, 1]", rs.CountryCode, c.MaxLTVRatio))
	}
	if c.NonResidentMaxLTV != nil && (*c.NonResidentMaxLTV <= 0 || *c.NonResidentMaxLTV > 1) {
		errs = multierr.Append(errs, fmt.Errorf("country %s: non_resident_max_ltv %v must be in (0, 1]", rs.CountryCode, *c.NonResidentMaxLTV))
	}
	if c.MinEquityRequirement < 0 || c.MinEquityRequirement > 1 {
		errs = multierr.Append(errs, fmt.Errorf("country %s: min_equity_requirement %v must be in [0, 1]", rs.CountryCode, c.MinEquityRequirement))
	}
	if c.MaxForeignOwnershipPct < 0 || c.MaxForeignOwnershipPct > 1 {
		errs = multierr.Append(errs, fmt.Errorf("country %s: max_ownership_pct %v must be in [0, 1]", rs.CountryCode, c.MaxForeignOwnershipPct))
	}

	for _, code := range rs.ZoneCodes() {
		z := rs.Zones[code]
		if z.FARMax <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("zone %s: far_max %v must be positive", code, z.FARMax))
		}
		if z.CoverageMax <= 0 || z.CoverageMax > 1 {
			errs = multierr.Append(errs, fmt.Errorf("zone %s: coverage_max %v must be in (0, 1]", code, z.CoverageMax))
		}
		if z.FloorsMax < 1 {
			errs = multierr.Append(errs, fmt.Errorf("zone %s: floors_max %d must be at least 1", code, z.FloorsMax))
		}
		if z.ResidentialComponentMin+z.CommercialComponentMin > 1 {
			errs = multierr.Append(errs, fmt.Errorf("zone %s: component minimums exceed 100%%", code))
		}
	}
	return errs
}
