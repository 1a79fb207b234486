package residual

// Inputs is everything CalculateComprehensive needs for one site.
type Inputs struct {
	Site        SiteConstraints
	Market      MarketAssumptions
	Acquisition Acquisition
}

// Analysis bundles the results of one comprehensive run.
type Analysis struct {
	Capacity    DevelopmentCapacity `json:"capacity"`
	Financials  FinancialResults    `json:"financials"`
	Acquisition AcquisitionMetrics  `json:"acquisition"`
}

// CalculateComprehensive runs capacity, financials and acquisition metrics in order.
func CalculateComprehensive(in Inputs) Analysis {
	capacity := CalculateCapacity(in.Site)
	fin := CalculateFinancials(capacity, in.Market)
	return Analysis{
		Capacity:    capacity,
		Financials:  fin,
		Acquisition: CalculateAcquisitionMetrics(in.Acquisition, capacity, fin),
	}
}
