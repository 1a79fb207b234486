// Package units converts areas and currencies and derives per-unit metrics
// used to compare deals on a common basis.
package units

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/youssefawwad88/RealEstate/pkg/mathutil"
)

// AreaUnit is a supported area unit.
type AreaUnit string

const (
	SquareMeters AreaUnit = "sqm"
	SquareFeet   AreaUnit = "sqft"
	Hectares     AreaUnit = "hectare"
	Acres        AreaUnit = "acre"
)

// Currency is an ISO currency code.
type Currency string

const (
	USD Currency = "USD"
	JOD Currency = "JOD"
	AED Currency = "AED"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
)

// ParseAreaUnit accepts a unit name case-insensitively.
func ParseAreaUnit(s string) (AreaUnit, error) {
	u := AreaUnit(strings.ToLower(strings.TrimSpace(s)))
	switch u {
	case SquareMeters, SquareFeet, Hectares, Acres:
		return u, nil
	}
	return "", fmt.Errorf("unsupported area unit %q", s)
}

type unitPair struct {
	from, to AreaUnit
}

var areaFactors = map[unitPair]float64{
	{SquareMeters, SquareFeet}: 10.764,
	{SquareFeet, SquareMeters}: 0.0929,
	{SquareMeters, Hectares}:   0.0001,
	{Hectares, SquareMeters}:   10000,
	{SquareFeet, Acres}:        0.0000229,
	{Acres, SquareFeet}:        43560,
	{Hectares, Acres}:          2.471,
	{Acres, Hectares}:          0.405,
}

// ConvertArea converts value between area units using the direct factor,
// the inverse of the reverse factor, or a hop through square meters (square
// feet when starting from square meters).
func ConvertArea(value float64, from, to AreaUnit) (float64, error) {
	return convertArea(value, from, to, 0)
}

func convertArea(value float64, from, to AreaUnit, depth int) (float64, error) {
	if from == to {
		return value, nil
	}
	if f, ok := areaFactors[unitPair{from, to}]; ok {
		return value * f, nil
	}
	if f, ok := areaFactors[unitPair{to, from}]; ok {
		return value / f, nil
	}
	if depth > 1 {
		return 0, fmt.Errorf("unsupported area conversion from %s to %s", from, to)
	}

	via := SquareMeters
	if from == SquareMeters {
		via = SquareFeet
	}
	intermediate, err := convertArea(value, from, via, depth+1)
	if err != nil {
		return 0, err
	}
	return convertArea(intermediate, via, to, depth+1)
}

// ConvertCurrency converts value through USD using rates quoted as units of
// each currency per USD. Currencies missing from rates convert at par.
func ConvertCurrency(value float64, from, to Currency, ratesPerUSD map[string]float64) (float64, error) {
	if from == to {
		return value, nil
	}
	if len(ratesPerUSD) == 0 {
		return 0, fmt.Errorf("exchange rates required to convert %s to %s", from, to)
	}

	amount := decimal.NewFromFloat(value)
	if from != USD {
		amount = amount.Div(rate(ratesPerUSD, from))
	}
	if to != USD {
		amount = amount.Mul(rate(ratesPerUSD, to))
	}

	converted, _ := amount.Float64()
	return converted, nil
}

func rate(rates map[string]float64, c Currency) decimal.Decimal {
	r, ok := rates[string(c)]
	if !ok || r == 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromFloat(r)
}

// DealFigures are the computed totals a deal contributes to unit metrics.
type DealFigures struct {
	SiteName          string
	LandAreaSqm       float64
	GrossBuildableSqm float64
	NetSellableSqm    float64
	AskingPrice       float64
	ConstructionCost  float64
	GDV               float64
	Profit            float64
	ResidualLandValue float64
}

// Metrics are per-unit figures for one deal. Percentages are 0-100.
type Metrics struct {
	LandCostPerArea          float64  `json:"land_cost_per_area"`
	LandCostPerBuildableArea float64  `json:"land_cost_per_buildable_area"`
	LandCostPctGDV           float64  `json:"land_cost_pct_gdv"`
	ConstructionCostPerArea  float64  `json:"construction_cost_per_area"`
	GDVPerArea               float64  `json:"gdv_per_area"`
	GDVPerBuildableArea      float64  `json:"gdv_per_buildable_area"`
	ProfitPerArea            float64  `json:"profit_per_area"`
	ProfitMarginPct          float64  `json:"profit_margin_pct"`
	ResidualPerArea          float64  `json:"residual_per_area"`
	BuildableRatio           float64  `json:"buildable_ratio"`
	EfficiencyRatio          float64  `json:"efficiency_ratio"`
	AreaUnit                 AreaUnit `json:"area_unit"`
	Currency                 Currency `json:"currency"`
}

// CalculateMetrics derives per-unit metrics, expressing per-area rates in
// the requested unit. Ratios with a zero denominator are 0.
func CalculateMetrics(d DealFigures, unit AreaUnit, currency Currency) (Metrics, error) {
	m := Metrics{
		LandCostPerArea:          mathutil.SafeDivide(d.AskingPrice, d.LandAreaSqm),
		LandCostPerBuildableArea: mathutil.SafeDivide(d.AskingPrice, d.GrossBuildableSqm),
		LandCostPctGDV:           mathutil.CalculatePercentage(d.AskingPrice, d.GDV),
		ConstructionCostPerArea:  mathutil.SafeDivide(d.ConstructionCost, d.GrossBuildableSqm),
		GDVPerArea:               mathutil.SafeDivide(d.GDV, d.NetSellableSqm),
		GDVPerBuildableArea:      mathutil.SafeDivide(d.GDV, d.GrossBuildableSqm),
		ProfitPerArea:            mathutil.SafeDivide(d.Profit, d.NetSellableSqm),
		ProfitMarginPct:          mathutil.CalculatePercentage(d.Profit, d.GDV),
		ResidualPerArea:          mathutil.SafeDivide(d.ResidualLandValue, d.LandAreaSqm),
		BuildableRatio:           mathutil.SafeDivide(d.GrossBuildableSqm, d.LandAreaSqm),
		EfficiencyRatio:          mathutil.SafeDivide(d.NetSellableSqm, d.GrossBuildableSqm),
		AreaUnit:                 unit,
		Currency:                 currency,
	}

	if unit == "" || unit == SquareMeters {
		m.AreaUnit = SquareMeters
		return m, nil
	}

	factor, err := ConvertArea(1, SquareMeters, unit)
	if err != nil {
		return Metrics{}, err
	}
	for _, rate := range []*float64{
		&m.LandCostPerArea,
		&m.LandCostPerBuildableArea,
		&m.ConstructionCostPerArea,
		&m.GDVPerArea,
		&m.GDVPerBuildableArea,
		&m.ProfitPerArea,
		&m.ResidualPerArea,
	} {
		*rate /= factor
	}
	return m, nil
}

// Range is an inclusive min/max pair.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DealMetrics names the metrics of one deal in a comparison.
type DealMetrics struct {
	SiteName string  `json:"site_name"`
	Metrics  Metrics `json:"metrics"`
}

// Comparison summarizes per-unit metrics across deals.
type Comparison struct {
	DealCount         int           `json:"deal_count"`
	LandCostPsmAvg    float64       `json:"land_cost_psm_avg"`
	LandCostPsmRange  Range         `json:"land_cost_psm_range"`
	GDVPsmAvg         float64       `json:"gdv_psm_avg"`
	GDVPsmRange       Range         `json:"gdv_psm_range"`
	ProfitMarginAvg   float64       `json:"profit_margin_avg"`
	ProfitMarginRange Range         `json:"profit_margin_range"`
	Deals             []DealMetrics `json:"deals"`
}

// CompareDeals computes square-meter metrics for each deal and their
// averages and ranges. It returns a zero Comparison for no deals.
func CompareDeals(deals []DealFigures) Comparison {
	if len(deals) == 0 {
		return Comparison{}
	}

	c := Comparison{DealCount: len(deals), Deals: make([]DealMetrics, 0, len(deals))}
	land := newAccumulator()
	gdv := newAccumulator()
	margin := newAccumulator()

	for _, d := range deals {
		// Square meters never fail conversion.
		m, _ := CalculateMetrics(d, SquareMeters, USD)
		name := d.SiteName
		if name == "" {
			name = "Unknown"
		}
		c.Deals = append(c.Deals, DealMetrics{SiteName: name, Metrics: m})
		land.add(m.LandCostPerArea)
		gdv.add(m.GDVPerArea)
		margin.add(m.ProfitMarginPct)
	}

	c.LandCostPsmAvg, c.LandCostPsmRange = land.result()
	c.GDVPsmAvg, c.GDVPsmRange = gdv.result()
	c.ProfitMarginAvg, c.ProfitMarginRange = margin.result()
	return c
}

type accumulator struct {
	sum, min, max float64
	n             int
}

func newAccumulator() *accumulator {
	return &accumulator{min: math.Inf(1), max: math.Inf(-1)}
}

func (a *accumulator) add(v float64) {
	a.sum += v
	a.n++
	a.min = math.Min(a.min, v)
	a.max = math.Max(a.max, v)
}

func (a *accumulator) result() (float64, Range) {
	if a.n == 0 {
		return 0, Range{}
	}
	return a.sum / float64(a.n), Range{Min: a.min, Max: a.max}
}
