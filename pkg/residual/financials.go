package residual

// FinancialResults holds the development financials. TotalDevCost excludes land.
type FinancialResults struct {
	GDV               float64 `json:"gdv"`
	HardCosts         float64 `json:"hard_costs"`
	SoftCosts         float64 `json:"soft_costs"`
	TotalDevCost      float64 `json:"total_dev_cost"`
	RequiredProfit    float64 `json:"required_profit"`
	ResidualLandValue float64 `json:"residual_land_value"`
}

// MarketAssumptions are the per-sqm prices and cost ratios driving the financials.
type MarketAssumptions struct {
	SalePricePsm        float64
	ConstructionCostPsm float64
	SoftCostPct         float64
	ProfitTargetPct     float64
	FinancingCost       float64
}

// GDV is the gross development value of the sellable area.
func GDV(netSellableSqm, salePricePsm float64) float64 {
	return netSellableSqm * salePricePsm
}

// DevelopmentCosts returns hard, soft and total development cost, land excluded.
func DevelopmentCosts(grossBuildableSqm, constructionCostPsm, softCostPct, financingCost float64) (hard, soft, total float64) {
	hard = grossBuildableSqm * constructionCostPsm
	soft = hard * softCostPct
	total = hard + soft + financingCost
	return hard, soft, total
}

// RequiredProfit is the developer margin taken off the GDV.
func RequiredProfit(gdv, profitTargetPct float64) float64 {
	return gdv * profitTargetPct
}

// ResidualLandValue is what remains for land once costs and profit are paid.
// It is not floored: a negative value marks an unviable deal.
func ResidualLandValue(gdv, totalDevCost, requiredProfit float64) float64 {
	return gdv - totalDevCost - requiredProfit
}

// CalculateFinancials runs the financial chain for a sized site.
func CalculateFinancials(capacity DevelopmentCapacity, market MarketAssumptions) FinancialResults {
	gdv := GDV(capacity.NetSellableSqm, market.SalePricePsm)
	hard, soft, total := DevelopmentCosts(capacity.GrossBuildableSqm, market.ConstructionCostPsm, market.SoftCostPct, market.FinancingCost)
	profit := RequiredProfit(gdv, market.ProfitTargetPct)

	return FinancialResults{
		GDV:               gdv,
		HardCosts:         hard,
		SoftCosts:         soft,
		TotalDevCost:      total,
		RequiredProfit:    profit,
		ResidualLandValue: ResidualLandValue(gdv, total, profit),
	}
}
