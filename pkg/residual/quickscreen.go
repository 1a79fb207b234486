package residual

import (
	"github.com/youssefawwad88/RealEstate/pkg/constants"
	"github.com/youssefawwad88/RealEstate/pkg/mathutil"
)

// Verdict is the two-valued quick-screen outcome.
type Verdict string

const (
	VerdictViable     Verdict = "✅ Viable"
	VerdictBorderline Verdict = "⚠️ Borderline"
)

// MarketBenchmark is the optional market row consulted by the calculators.
type MarketBenchmark struct {
	AbsorptionRateMonths *float64 `json:"absorption_rate,omitempty"`
}

// AbsorptionMonths resolves the sales period: the explicit value when set,
// else the benchmark's absorption rate, else the default.
func AbsorptionMonths(monthsToSell *float64, market *MarketBenchmark) float64 {
	if monthsToSell != nil {
		return *monthsToSell
	}
	if market != nil && market.AbsorptionRateMonths != nil {
		return *market.AbsorptionRateMonths
	}
	return constants.DefaultAbsorptionMonths
}

// QuickScreenInputs are the inputs to QuickScreen. FAR is mandatory here.
type QuickScreenInputs struct {
	LandAreaSqm         float64
	FAR                 float64
	EfficiencyRatio     float64
	AskingPrice         float64
	TaxesFees           float64
	SalePricePsm        float64
	ConstructionCostPsm float64
	SoftCostPct         float64
	ProfitTargetPct     float64
	MonthsToSell        *float64
}

// QuickScreenResult is a flat set of deal KPIs. Unlike FinancialResults,
// TotalDevCost here includes the acquisition cost.
type QuickScreenResult struct {
	GDV                      float64 `json:"gdv"`
	TotalDevCost             float64 `json:"total_dev_cost"`
	ResidualLandValue        float64 `json:"residual_land_value"`
	LandPctGDV               float64 `json:"land_pct_of_gdv"`
	BreakevenPricePerSqm     float64 `json:"breakeven_price_per_sqm"`
	Verdict                  Verdict `json:"overall_score"`
	GFASqm                   float64 `json:"gfa_sqm"`
	NSASqm                   float64 `json:"nsa_sqm"`
	AcqTotalCost             float64 `json:"acq_total_cost"`
	AcqCostPerTotalArea      float64 `json:"acq_cost_per_total_area"`
	AcqCostPerBuildableArea  float64 `json:"acq_cost_per_buildable_area"`
	LandCostPerNSA           float64 `json:"land_cost_per_nsa"`
	EstAbsorptionMonths      float64 `json:"est_absorption_months"`
	EstAbsorptionSqmPerMonth float64 `json:"est_absorption_rate_per_month"`
}

// QuickScreen sizes the site by FAR alone and produces screening KPIs with a
// two-valued verdict: viable when GDV clears total cost marked up by half the
// profit target.
func QuickScreen(in QuickScreenInputs, market *MarketBenchmark) QuickScreenResult {
	gfa := in.LandAreaSqm * in.FAR
	nsa := gfa * in.EfficiencyRatio

	gdv := GDV(nsa, in.SalePricePsm)
	hard, soft, _ := DevelopmentCosts(gfa, in.ConstructionCostPsm, in.SoftCostPct, 0)
	acq := in.AskingPrice + in.TaxesFees
	total := hard + soft + acq

	months := AbsorptionMonths(in.MonthsToSell, market)

	verdict := VerdictBorderline
	if gdv > total*(1+in.ProfitTargetPct*constants.QuickScreenProfitWeight) {
		verdict = VerdictViable
	}

	return QuickScreenResult{
		GDV:                      gdv,
		TotalDevCost:             total,
		ResidualLandValue:        ResidualLandValue(gdv, hard+soft, RequiredProfit(gdv, in.ProfitTargetPct)),
		LandPctGDV:               mathutil.CalculatePercentage(acq, gdv),
		BreakevenPricePerSqm:     mathutil.SafeDivide(total, nsa),
		Verdict:                  verdict,
		GFASqm:                   gfa,
		NSASqm:                   nsa,
		AcqTotalCost:             acq,
		AcqCostPerTotalArea:      mathutil.SafeDivide(acq, in.LandAreaSqm),
		AcqCostPerBuildableArea:  mathutil.SafeDivide(acq, gfa),
		LandCostPerNSA:           mathutil.SafeDivide(acq, nsa),
		EstAbsorptionMonths:      months,
		EstAbsorptionSqmPerMonth: mathutil.SafeDivide(nsa, months),
	}
}
