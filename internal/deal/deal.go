// Package deal holds the land deal aggregate: validated inputs, the computed
// residual analysis, viability scores and sensitivity scenarios.
package deal

import (
	"math"

	"github.com/youssefawwad88/RealEstate/pkg/format"
	"github.com/youssefawwad88/RealEstate/pkg/mathutil"
	"github.com/youssefawwad88/RealEstate/pkg/residual"
	"github.com/youssefawwad88/RealEstate/pkg/scoring"
)

// Outputs are the computed metrics of a deal. Percent values are 0-100;
// optional KPIs are nil when their denominator is zero or their input is unset.
type Outputs struct {
	GrossBuildableSqm float64 `json:"gross_buildable_sqm"`
	NetSellableSqm    float64 `json:"net_sellable_sqm"`
	LimitingFactor    string  `json:"limiting_factor"`

	GDV               float64 `json:"gdv"`
	HardCosts         float64 `json:"hard_costs"`
	SoftCosts         float64 `json:"soft_costs"`
	TotalDevCost      float64 `json:"total_dev_cost"`
	RequiredProfit    float64 `json:"required_profit"`
	ResidualLandValue float64 `json:"residual_land_value"`

	TotalAcquisitionCost float64 `json:"total_acquisition_cost"`
	LandPsm              float64 `json:"land_psm"`
	LandPerBuildable     float64 `json:"land_per_buildable"`
	LandPctGDV           float64 `json:"land_pct_gdv"`

	AcqCostPerLandSqm     *float64 `json:"acq_cost_per_land_sqm"`
	AcqCostPerGFASqm      *float64 `json:"acq_cost_per_gfa_sqm"`
	LandCostPerNSASqm     *float64 `json:"land_cost_per_nsa_sqm"`
	MonthlyAbsorptionRate *float64 `json:"monthly_absorption_rate"`
	EstAbsorptionMonths   float64  `json:"est_absorption_months"`
	AbsorptionSqmPerMonth float64  `json:"absorption_sqm_per_month"`

	AskingVsResidual   float64 `json:"asking_vs_residual"`
	BreakevenSalePrice float64 `json:"breakeven_sale_price"`
}

// Summary is the display view of a computed deal.
type Summary struct {
	SiteName           string         `json:"site_name"`
	LandAreaSqm        string         `json:"land_area_sqm"`
	AskingPrice        string         `json:"asking_price"`
	ResidualLandValue  string         `json:"residual_land_value"`
	LandPctGDV         string         `json:"land_pct_gdv"`
	BreakevenSalePrice string         `json:"breakeven_sale_price"`
	OverallScore       scoring.Rating `json:"overall_score"`
	OverallStatus      string         `json:"overall_status"`
}

// Record flattens the summary into record fields.
func (s Summary) Record() Record {
	return Record{
		FieldSiteName:          s.SiteName,
		FieldLandAreaSqm:       s.LandAreaSqm,
		FieldAskingPrice:       s.AskingPrice,
		"residual_land_value":  s.ResidualLandValue,
		"land_pct_gdv":         s.LandPctGDV,
		"breakeven_sale_price": s.BreakevenSalePrice,
		"overall_score":        string(s.OverallScore),
		"overall_status":       s.OverallStatus,
	}
}

// Result is the full computed view of a deal.
type Result struct {
	Inputs      Inputs               `json:"inputs"`
	Outputs     Outputs              `json:"outputs"`
	Viability   scoring.Viability    `json:"viability"`
	Sensitivity residual.Sensitivity `json:"sensitivity"`
	Summary     Summary              `json:"summary"`
}

// LandDeal is one site under evaluation. It starts uncomputed; Compute fills
// the derived results and may be called again with the same effect.
type LandDeal struct {
	inputs      Inputs
	outputs     *Outputs
	viability   *scoring.Viability
	sensitivity *residual.Sensitivity
}

// New validates inputs and returns an uncomputed deal.
func New(in Inputs) (*LandDeal, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &LandDeal{inputs: in.clone()}, nil
}

// FromRecord builds an uncomputed deal from a record.
func FromRecord(r Record) (*LandDeal, error) {
	in, err := InputsFromRecord(r)
	if err != nil {
		return nil, err
	}
	return &LandDeal{inputs: in}, nil
}

// Create builds a deal from a record and computes it. market may be nil.
// Results that overflow float64 are rejected with a *ValidationError.
func Create(r Record, market *residual.MarketBenchmark) (*LandDeal, error) {
	d, err := FromRecord(r)
	if err != nil {
		return nil, err
	}
	d.ComputeWithMarket(market)
	if err := d.checkFinite(); err != nil {
		return nil, err
	}
	return d, nil
}

// Inputs returns a copy of the deal's inputs. Computation never changes them.
func (d *LandDeal) Inputs() Inputs {
	return d.inputs.clone()
}

// Computed reports whether Compute has run.
func (d *LandDeal) Computed() bool {
	return d.outputs != nil
}

// Compute runs the analysis with the default absorption fallback.
func (d *LandDeal) Compute() *LandDeal {
	return d.ComputeWithMarket(nil)
}

// ComputeWithMarket runs capacity, financials, acquisition metrics, scoring
// and sensitivity. market only supplies the absorption period when the
// inputs carry none.
func (d *LandDeal) ComputeWithMarket(market *residual.MarketBenchmark) *LandDeal {
	in := d.inputs

	capacity := residual.CalculateCapacity(residual.SiteConstraints{
		LandAreaSqm:     in.LandAreaSqm,
		FAR:             in.FAR,
		Coverage:        in.Coverage,
		MaxFloors:       in.MaxFloors,
		EfficiencyRatio: in.EfficiencyRatio,
	})
	assumptions := residual.MarketAssumptions{
		SalePricePsm:        in.ExpectedSalePsm,
		ConstructionCostPsm: in.ConstructionCostPsm,
		SoftCostPct:         in.SoftCostPct,
		ProfitTargetPct:     in.ProfitTargetPct,
		FinancingCost:       in.FinancingCost,
	}
	fin := residual.CalculateFinancials(capacity, assumptions)
	metrics := residual.CalculateAcquisitionMetrics(residual.Acquisition{
		AskingPrice: in.AskingPrice,
		TaxesFees:   in.TaxesFees,
		LandAreaSqm: in.LandAreaSqm,
	}, capacity, fin)

	var monthsToSell, monthlyRate *float64
	if in.MonthsToSell != nil && *in.MonthsToSell > 0 {
		m := float64(*in.MonthsToSell)
		monthsToSell = &m
		monthlyRate = mathutil.Float(1 / m)
	}
	months := residual.AbsorptionMonths(monthsToSell, market)

	d.outputs = &Outputs{
		GrossBuildableSqm:     capacity.GrossBuildableSqm,
		NetSellableSqm:        capacity.NetSellableSqm,
		LimitingFactor:        capacity.LimitingFactor,
		GDV:                   fin.GDV,
		HardCosts:             fin.HardCosts,
		SoftCosts:             fin.SoftCosts,
		TotalDevCost:          fin.TotalDevCost,
		RequiredProfit:        fin.RequiredProfit,
		ResidualLandValue:     fin.ResidualLandValue,
		TotalAcquisitionCost:  metrics.TotalAcquisitionCost,
		LandPsm:               metrics.LandPsm,
		LandPerBuildable:      metrics.LandPerBuildable,
		LandPctGDV:            metrics.LandPctGDV,
		AcqCostPerLandSqm:     mathutil.OptionalDivide(in.AskingPrice, in.LandAreaSqm),
		AcqCostPerGFASqm:      mathutil.OptionalDivide(in.AskingPrice, capacity.GrossBuildableSqm),
		LandCostPerNSASqm:     mathutil.OptionalDivide(in.AskingPrice, capacity.NetSellableSqm),
		MonthlyAbsorptionRate: monthlyRate,
		EstAbsorptionMonths:   months,
		AbsorptionSqmPerMonth: mathutil.SafeDivide(capacity.NetSellableSqm, months),
		AskingVsResidual:      metrics.AskingVsResidual,
		BreakevenSalePrice:    metrics.BreakevenSalePrice,
	}

	viability := scoring.Evaluate(in.AskingPrice, in.ExpectedSalePsm, fin, metrics)
	d.viability = &viability

	sensitivity := residual.CalculateSensitivity(capacity, fin, assumptions)
	d.sensitivity = &sensitivity

	return d
}

// Outputs returns the computed metrics or ErrNotComputed.
func (d *LandDeal) Outputs() (Outputs, error) {
	if d.outputs == nil {
		return Outputs{}, ErrNotComputed
	}
	return d.outputs.clone(), nil
}

func (o Outputs) clone() Outputs {
	out := o
	for _, p := range []**float64{&out.AcqCostPerLandSqm, &out.AcqCostPerGFASqm, &out.LandCostPerNSASqm, &out.MonthlyAbsorptionRate} {
		if *p != nil {
			*p = mathutil.Float(**p)
		}
	}
	return out
}

// checkFinite rejects results that overflowed float64.
func (d *LandDeal) checkFinite() error {
	if d.outputs == nil || d.sensitivity == nil {
		return ErrNotComputed
	}
	o, s := d.outputs, d.sensitivity
	values := []struct {
		field string
		value *float64
	}{
		{"gross_buildable_sqm", &o.GrossBuildableSqm},
		{"net_sellable_sqm", &o.NetSellableSqm},
		{"gdv", &o.GDV},
		{"hard_costs", &o.HardCosts},
		{"soft_costs", &o.SoftCosts},
		{"total_dev_cost", &o.TotalDevCost},
		{"required_profit", &o.RequiredProfit},
		{"residual_land_value", &o.ResidualLandValue},
		{"total_acquisition_cost", &o.TotalAcquisitionCost},
		{"land_psm", &o.LandPsm},
		{"land_per_buildable", &o.LandPerBuildable},
		{"land_pct_gdv", &o.LandPctGDV},
		{"acq_cost_per_land_sqm", o.AcqCostPerLandSqm},
		{"acq_cost_per_gfa_sqm", o.AcqCostPerGFASqm},
		{"land_cost_per_nsa_sqm", o.LandCostPerNSASqm},
		{"monthly_absorption_rate", o.MonthlyAbsorptionRate},
		{"est_absorption_months", &o.EstAbsorptionMonths},
		{"absorption_sqm_per_month", &o.AbsorptionSqmPerMonth},
		{"asking_vs_residual", &o.AskingVsResidual},
		{"breakeven_sale_price", &o.BreakevenSalePrice},
		{"sales_down_10pct", &s.SalesDown10Pct},
		{"costs_up_10pct", &s.CostsUp10Pct},
		{"sales_impact", &s.SalesImpact},
		{"costs_impact", &s.CostsImpact},
	}
	for _, v := range values {
		if v.value != nil && (math.IsNaN(*v.value) || math.IsInf(*v.value, 0)) {
			return &ValidationError{Field: v.field, Message: "computed value is not finite; inputs are too large"}
		}
	}
	return nil
}

// Viability returns the viability scores or ErrNotComputed.
func (d *LandDeal) Viability() (scoring.Viability, error) {
	if d.viability == nil {
		return scoring.Viability{}, ErrNotComputed
	}
	return *d.viability, nil
}

// Sensitivity returns the stress scenarios or ErrNotComputed.
func (d *LandDeal) Sensitivity() (residual.Sensitivity, error) {
	if d.sensitivity == nil {
		return residual.Sensitivity{}, ErrNotComputed
	}
	return *d.sensitivity, nil
}

// Summary formats the headline figures for display.
func (d *LandDeal) Summary() (Summary, error) {
	if d.outputs == nil || d.viability == nil {
		return Summary{}, ErrNotComputed
	}
	return Summary{
		SiteName:           d.inputs.SiteName,
		LandAreaSqm:        format.Area(d.inputs.LandAreaSqm),
		AskingPrice:        format.WholeCurrency(d.inputs.AskingPrice),
		ResidualLandValue:  format.WholeCurrency(d.outputs.ResidualLandValue),
		LandPctGDV:         format.Percent(d.outputs.LandPctGDV, 1),
		BreakevenSalePrice: format.WholeCurrency(d.outputs.BreakevenSalePrice),
		OverallScore:       d.viability.Overall.Rating,
		OverallStatus:      d.viability.Overall.Status,
	}, nil
}

// Result returns every computed view of the deal.
func (d *LandDeal) Result() (Result, error) {
	summary, err := d.Summary()
	if err != nil {
		return Result{}, err
	}
	if err := d.checkFinite(); err != nil {
		return Result{}, err
	}
	return Result{
		Inputs:      d.inputs.clone(),
		Outputs:     d.outputs.clone(),
		Viability:   *d.viability,
		Sensitivity: *d.sensitivity,
		Summary:     summary,
	}, nil
}
