package deal

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Record is a flat field-name/value row, as read from a CSV file or a JSON
// body. Values may be strings or numbers; accessors coerce them.
type Record map[string]any

// Input field names.
const (
	FieldSiteName            = "site_name"
	FieldLandAreaSqm         = "land_area_sqm"
	FieldAskingPrice         = "asking_price"
	FieldTaxesFees           = "taxes_fees"
	FieldZoning              = "zoning"
	FieldFAR                 = "far"
	FieldCoverage            = "coverage"
	FieldMaxFloors           = "max_floors"
	FieldEfficiencyRatio     = "efficiency_ratio"
	FieldExpectedSalePsm     = "expected_sale_price_psm"
	FieldConstructionCostPsm = "construction_cost_psm"
	FieldSoftCostPct         = "soft_cost_pct"
	FieldProfitTargetPct     = "profit_target_pct"
	FieldFinancingCost       = "financing_cost"
	FieldHoldingPeriodMonths = "holding_period_months"
	FieldMonthsToSell        = "months_to_sell"
)

// Validation-only field names.
const (
	FieldBuildingHeightM     = "building_height_m"
	FieldSetbackFront        = "setback_front"
	FieldSetbackSide         = "setback_side"
	FieldSetbackRear         = "setback_rear"
	FieldForeignOwnership    = "foreign_ownership"
	FieldForeignOwnershipPct = "foreign_ownership_pct"
	FieldForeignBuyer        = "foreign_buyer"
	FieldLTVRatio            = "ltv_ratio"
	FieldResidentialPct      = "residential_pct"
	FieldCommercialPct       = "commercial_pct"
	FieldDevelopmentType     = "development_type"
	FieldLocation            = "location"
)

// InputFields lists the input columns in display order.
var InputFields = []string{
	FieldSiteName,
	FieldLandAreaSqm,
	FieldAskingPrice,
	FieldTaxesFees,
	FieldZoning,
	FieldFAR,
	FieldCoverage,
	FieldMaxFloors,
	FieldEfficiencyRatio,
	FieldExpectedSalePsm,
	FieldConstructionCostPsm,
	FieldSoftCostPct,
	FieldProfitTargetPct,
	FieldFinancingCost,
	FieldHoldingPeriodMonths,
	FieldMonthsToSell,
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether key holds a non-blank value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case float64:
		return !math.IsNaN(t)
	case float32:
		return !math.IsNaN(float64(t))
	}
	return true
}

// String returns the value at key as a string.
func (r Record) String(key string) (string, bool) {
	if !r.Has(key) {
		return "", false
	}
	s, err := cast.ToStringE(r[key])
	if err != nil {
		return fmt.Sprint(r[key]), true
	}
	return strings.TrimSpace(s), true
}

// Float returns the value at key as a float64. A blank value returns
// (nil, nil).
func (r Record) Float(key string) (*float64, error) {
	if !r.Has(key) {
		return nil, nil
	}
	v := r[key]
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, &ValidationError{Field: key, Value: r[key], Message: "must be a number"}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &ValidationError{Field: key, Value: r[key], Message: "must be a finite number"}
	}
	return &f, nil
}

// Int returns the value at key as an int. Whole floats such as 4.0 are
// accepted; fractional values are rejected.
func (r Record) Int(key string) (*int, error) {
	f, err := r.Float(key)
	if err != nil || f == nil {
		return nil, err
	}
	if *f != math.Trunc(*f) {
		return nil, &ValidationError{Field: key, Value: r[key], Message: "must be a whole number"}
	}
	i := int(*f)
	return &i, nil
}

// Bool returns the value at key as a bool. Blank values return (false, false, nil).
func (r Record) Bool(key string) (value bool, present bool, err error) {
	if !r.Has(key) {
		return false, false, nil
	}
	v := r[key]
	if s, ok := v.(string); ok {
		v = strings.ToLower(strings.TrimSpace(s))
		switch v {
		case "yes", "y":
			return true, true, nil
		case "no", "n":
			return false, true, nil
		}
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, true, &ValidationError{Field: key, Value: r[key], Message: "must be true or false"}
	}
	return b, true, nil
}
