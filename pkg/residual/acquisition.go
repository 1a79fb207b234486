package residual

import (
	"github.com/youssefawwad88/RealEstate/pkg/constants"
	"github.com/youssefawwad88/RealEstate/pkg/mathutil"
)

// AcquisitionMetrics relate the asking price to the site and its financials.
// LandPctGDV is on a 0-100 scale.
type AcquisitionMetrics struct {
	TotalAcquisitionCost float64 `json:"total_acquisition_cost"`
	LandPsm              float64 `json:"land_psm"`
	LandPerBuildable     float64 `json:"land_per_buildable"`
	LandPctGDV           float64 `json:"land_pct_gdv"`
	AskingVsResidual     float64 `json:"asking_vs_residual"`
	BreakevenSalePrice   float64 `json:"breakeven_sale_price"`
}

// Acquisition is the land purchase side of a deal.
type Acquisition struct {
	AskingPrice float64
	TaxesFees   float64
	LandAreaSqm float64
}

// CalculateAcquisitionMetrics derives the ratio metrics. Every ratio is 0 when
// its denominator is 0.
func CalculateAcquisitionMetrics(acq Acquisition, capacity DevelopmentCapacity, fin FinancialResults) AcquisitionMetrics {
	total := acq.AskingPrice + acq.TaxesFees

	return AcquisitionMetrics{
		TotalAcquisitionCost: total,
		LandPsm:              mathutil.SafeDivide(acq.AskingPrice, acq.LandAreaSqm),
		LandPerBuildable:     mathutil.SafeDivide(acq.AskingPrice, capacity.GrossBuildableSqm),
		LandPctGDV:           mathutil.CalculatePercentage(total, fin.GDV),
		AskingVsResidual:     acq.AskingPrice - fin.ResidualLandValue,
		BreakevenSalePrice:   mathutil.SafeDivide(fin.TotalDevCost+total, capacity.NetSellableSqm),
	}
}

// BreakevenPctOfMarket expresses breakeven as a share of the expected sale
// price on a 0-100 scale. A non-positive market price counts as 100.
func BreakevenPctOfMarket(breakeven, expectedSalePrice float64) float64 {
	if expectedSalePrice <= 0 {
		return constants.PercentageMultiplier
	}
	return breakeven / expectedSalePrice * constants.PercentageMultiplier
}
