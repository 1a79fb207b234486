package residual

import "github.com/youssefawwad88/RealEstate/pkg/constants"

// Sensitivity is the residual under the two stress scenarios and the signed
// change from the base case.
type Sensitivity struct {
	BaseResidual   float64 `json:"base_residual"`
	SalesDown10Pct float64 `json:"sales_down_10pct"`
	CostsUp10Pct   float64 `json:"costs_up_10pct"`
	SalesImpact    float64 `json:"sales_impact"`
	CostsImpact    float64 `json:"costs_impact"`
}

// CalculateSensitivity recomputes the residual with sale prices 10% lower
// (profit follows GDV, costs unchanged) and with hard costs 10% higher (soft
// costs follow, GDV and profit unchanged).
func CalculateSensitivity(capacity DevelopmentCapacity, fin FinancialResults, market MarketAssumptions) Sensitivity {
	base := fin.ResidualLandValue

	reducedGDV := GDV(capacity.NetSellableSqm, market.SalePricePsm*constants.SalesShock)
	salesDown := ResidualLandValue(reducedGDV, fin.TotalDevCost, RequiredProfit(reducedGDV, market.ProfitTargetPct))

	hard := fin.HardCosts * constants.CostShock
	soft := hard * market.SoftCostPct
	costsUp := ResidualLandValue(fin.GDV, hard+soft+market.FinancingCost, fin.RequiredProfit)

	return Sensitivity{
		BaseResidual:   base,
		SalesDown10Pct: salesDown,
		CostsUp10Pct:   costsUp,
		SalesImpact:    salesDown - base,
		CostsImpact:    costsUp - base,
	}
}
