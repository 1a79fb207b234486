package deal

import (
	"fmt"

	"github.com/youssefawwad88/RealEstate/pkg/constants"
	"go.uber.org/multierr"
)

// Inputs is the validated assumption set for one site. Percentages are
// fractions in (0, 1).
type Inputs struct {
	SiteName            string   `json:"site_name"`
	LandAreaSqm         float64  `json:"land_area_sqm"`
	AskingPrice         float64  `json:"asking_price"`
	TaxesFees           float64  `json:"taxes_fees"`
	Zoning              string   `json:"zoning"`
	FAR                 *float64 `json:"far,omitempty"`
	Coverage            float64  `json:"coverage"`
	MaxFloors           int      `json:"max_floors"`
	EfficiencyRatio     float64  `json:"efficiency_ratio"`
	ExpectedSalePsm     float64  `json:"expected_sale_price_psm"`
	ConstructionCostPsm float64  `json:"construction_cost_psm"`
	SoftCostPct         float64  `json:"soft_cost_pct"`
	ProfitTargetPct     float64  `json:"profit_target_pct"`
	FinancingCost       float64  `json:"financing_cost"`
	HoldingPeriodMonths int      `json:"holding_period_months"`
	MonthsToSell        *int     `json:"months_to_sell,omitempty"`
}

// clone copies in without sharing its optional values.
func (in Inputs) clone() Inputs {
	out := in
	if in.FAR != nil {
		far := *in.FAR
		out.FAR = &far
	}
	if in.MonthsToSell != nil {
		months := *in.MonthsToSell
		out.MonthsToSell = &months
	}
	return out
}

// InputsFromRecord coerces and validates a record. Missing optional fields
// take their defaults; every violation is reported in the returned error.
func InputsFromRecord(r Record) (Inputs, error) {
	in := Inputs{
		Zoning:              constants.DefaultZoning,
		MaxFloors:           constants.DefaultMaxFloors,
		HoldingPeriodMonths: constants.DefaultHoldingPeriodMonths,
	}

	var errs error
	if s, ok := r.String(FieldSiteName); ok {
		in.SiteName = s
	} else {
		errs = multierr.Append(errs, required(FieldSiteName))
	}
	if s, ok := r.String(FieldZoning); ok {
		in.Zoning = s
	}

	floats := []struct {
		field    string
		dst      *float64
		required bool
	}{
		{FieldLandAreaSqm, &in.LandAreaSqm, true},
		{FieldAskingPrice, &in.AskingPrice, true},
		{FieldTaxesFees, &in.TaxesFees, false},
		{FieldCoverage, &in.Coverage, true},
		{FieldEfficiencyRatio, &in.EfficiencyRatio, true},
		{FieldExpectedSalePsm, &in.ExpectedSalePsm, true},
		{FieldConstructionCostPsm, &in.ConstructionCostPsm, true},
		{FieldSoftCostPct, &in.SoftCostPct, true},
		{FieldProfitTargetPct, &in.ProfitTargetPct, true},
		{FieldFinancingCost, &in.FinancingCost, false},
	}
	for _, f := range floats {
		v, err := r.Float(f.field)
		switch {
		case err != nil:
			errs = multierr.Append(errs, err)
		case v != nil:
			*f.dst = *v
		case f.required:
			errs = multierr.Append(errs, required(f.field))
		}
	}

	far, err := r.Float(FieldFAR)
	errs = multierr.Append(errs, err)
	in.FAR = far

	if v, err := r.Int(FieldMaxFloors); err != nil {
		errs = multierr.Append(errs, err)
	} else if v != nil {
		in.MaxFloors = *v
	}
	if v, err := r.Int(FieldHoldingPeriodMonths); err != nil {
		errs = multierr.Append(errs, err)
	} else if v != nil {
		in.HoldingPeriodMonths = *v
	}
	months, err := r.Int(FieldMonthsToSell)
	errs = multierr.Append(errs, err)
	in.MonthsToSell = months

	if errs != nil {
		return Inputs{}, errs
	}
	if err := in.Validate(); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

// Validate checks the field ranges and business policy bounds.
func (in Inputs) Validate() error {
	var errs error
	check := func(ok bool, field string, value any, msg string) {
		if !ok {
			errs = multierr.Append(errs, &ValidationError{Field: field, Value: value, Message: msg})
		}
	}

	check(in.LandAreaSqm > 0, FieldLandAreaSqm, in.LandAreaSqm, "must be greater than 0")
	check(in.AskingPrice > 0, FieldAskingPrice, in.AskingPrice, "must be greater than 0")
	check(in.TaxesFees >= 0, FieldTaxesFees, in.TaxesFees, "must be greater than or equal to 0")
	if in.FAR != nil {
		check(*in.FAR > 0 && *in.FAR <= constants.MaxFAR, FieldFAR, *in.FAR,
			fmt.Sprintf("must be greater than 0 and at most %g", constants.MaxFAR))
	}
	check(in.Coverage > 0 && in.Coverage < 1, FieldCoverage, in.Coverage, "must be between 0 and 1 exclusive")
	check(in.MaxFloors >= 1 && in.MaxFloors <= constants.MaxFloorsLimit, FieldMaxFloors, in.MaxFloors,
		fmt.Sprintf("must be between 1 and %d", constants.MaxFloorsLimit))

	if in.EfficiencyRatio <= 0 || in.EfficiencyRatio >= 1 {
		check(false, FieldEfficiencyRatio, in.EfficiencyRatio, "must be between 0 and 1 exclusive")
	} else {
		check(in.EfficiencyRatio >= constants.MinEfficiencyRatio && in.EfficiencyRatio <= constants.MaxEfficiencyRatio,
			FieldEfficiencyRatio, in.EfficiencyRatio, "should be between 60% and 95%")
	}

	check(in.ExpectedSalePsm > 0, FieldExpectedSalePsm, in.ExpectedSalePsm, "must be greater than 0")
	check(in.ConstructionCostPsm > 0, FieldConstructionCostPsm, in.ConstructionCostPsm, "must be greater than 0")
	check(in.SoftCostPct > 0 && in.SoftCostPct < 1, FieldSoftCostPct, in.SoftCostPct, "must be between 0 and 1 exclusive")

	if in.ProfitTargetPct <= 0 || in.ProfitTargetPct >= 1 {
		check(false, FieldProfitTargetPct, in.ProfitTargetPct, "must be between 0 and 1 exclusive")
	} else {
		check(in.ProfitTargetPct >= constants.MinProfitTarget && in.ProfitTargetPct <= constants.MaxProfitTarget,
			FieldProfitTargetPct, in.ProfitTargetPct, "should be between 5% and 50%")
	}

	check(in.FinancingCost >= 0, FieldFinancingCost, in.FinancingCost, "must be greater than or equal to 0")
	check(in.HoldingPeriodMonths >= 1 && in.HoldingPeriodMonths <= constants.MaxPeriodMonths,
		FieldHoldingPeriodMonths, in.HoldingPeriodMonths, fmt.Sprintf("must be between 1 and %d", constants.MaxPeriodMonths))
	if in.MonthsToSell != nil {
		check(*in.MonthsToSell >= 1 && *in.MonthsToSell <= constants.MaxPeriodMonths,
			FieldMonthsToSell, *in.MonthsToSell, fmt.Sprintf("must be between 1 and %d", constants.MaxPeriodMonths))
	}

	return errs
}

// Record renders the inputs back into a record, omitting unset optionals.
func (in Inputs) Record() Record {
	r := Record{
		FieldSiteName:            in.SiteName,
		FieldLandAreaSqm:         in.LandAreaSqm,
		FieldAskingPrice:         in.AskingPrice,
		FieldTaxesFees:           in.TaxesFees,
		FieldZoning:              in.Zoning,
		FieldCoverage:            in.Coverage,
		FieldMaxFloors:           in.MaxFloors,
		FieldEfficiencyRatio:     in.EfficiencyRatio,
		FieldExpectedSalePsm:     in.ExpectedSalePsm,
		FieldConstructionCostPsm: in.ConstructionCostPsm,
		FieldSoftCostPct:         in.SoftCostPct,
		FieldProfitTargetPct:     in.ProfitTargetPct,
		FieldFinancingCost:       in.FinancingCost,
		FieldHoldingPeriodMonths: in.HoldingPeriodMonths,
	}
	if in.FAR != nil {
		r[FieldFAR] = *in.FAR
	}
	if in.MonthsToSell != nil {
		r[FieldMonthsToSell] = *in.MonthsToSell
	}
	return r
}

func required(field string) error {
	return &ValidationError{Field: field, Message: "field required"}
}
