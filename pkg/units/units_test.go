package units

import (
	"math"
	"testing"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestConvertArea(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		from     AreaUnit
		to       AreaUnit
		expected float64
	}{
		{"Same unit", 1500, SquareMeters, SquareMeters, 1500},
		{"Direct sqm to sqft", 1000, SquareMeters, SquareFeet, 10764},
		{"Direct hectare to sqm", 1.5, Hectares, SquareMeters, 15000},
		{"Direct acre to sqft", 1, Acres, SquareFeet, 43560},
		{"Via sqm sqft to hectare", 10000, SquareFeet, Hectares, 0.0929},
		{"Via sqft sqm to acre", 10000, SquareMeters, Acres, 10000 * 10.764 * 0.0000229},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertArea(tt.value, tt.from, tt.to)
			if err != nil {
				t.Fatalf("ConvertArea() error = %v", err)
			}
			if !approx(got, tt.expected, 1e-9) {
				t.Errorf("ConvertArea(%v, %s, %s) = %v, expected %v", tt.value, tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestConvertAreaUnknownUnit(t *testing.T) {
	if _, err := ConvertArea(1, AreaUnit("furlong"), SquareMeters); err == nil {
		t.Error("expected error for unknown unit")
	}
}

func TestParseAreaUnit(t *testing.T) {
	if u, err := ParseAreaUnit(" SQFT "); err != nil || u != SquareFeet {
		t.Errorf("ParseAreaUnit(SQFT) = %q, %v", u, err)
	}
	if _, err := ParseAreaUnit("yard"); err == nil {
		t.Error("expected error for yard")
	}
}

func TestConvertCurrency(t *testing.T) {
	rates := map[string]float64{"JOD": 0.709, "AED": 3.6725}

	tests := []struct {
		name     string
		value    float64
		from     Currency
		to       Currency
		expected float64
	}{
		{"Same currency", 100, JOD, JOD, 100},
		{"USD to JOD", 1000, USD, JOD, 709},
		{"JOD to USD", 709, JOD, USD, 1000},
		{"AED to JOD via USD", 3672.5, AED, JOD, 709},
		{"Missing rate at par", 100, EUR, USD, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertCurrency(tt.value, tt.from, tt.to, rates)
			if err != nil {
				t.Fatalf("ConvertCurrency() error = %v", err)
			}
			if !approx(got, tt.expected, 1e-6) {
				t.Errorf("ConvertCurrency(%v, %s, %s) = %v, expected %v", tt.value, tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestConvertCurrencyRequiresRates(t *testing.T) {
	if _, err := ConvertCurrency(100, USD, JOD, nil); err == nil {
		t.Error("expected error without rates")
	}
}

func sampleDeal() DealFigures {
	return DealFigures{
		SiteName:          "Abdoun Plot",
		LandAreaSqm:       1500,
		GrossBuildableSqm: 2700,
		NetSellableSqm:    2160,
		AskingPrice:       750000,
		ConstructionCost:  6577200,
		GDV:               9072000,
		Profit:            1632960,
		ResidualLandValue: 861840,
	}
}

func TestCalculateMetrics(t *testing.T) {
	m, err := CalculateMetrics(sampleDeal(), SquareMeters, USD)
	if err != nil {
		t.Fatalf("CalculateMetrics() error = %v", err)
	}

	checks := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"LandCostPerArea", m.LandCostPerArea, 500},
		{"GDVPerArea", m.GDVPerArea, 4200},
		{"ProfitMarginPct", m.ProfitMarginPct, 18},
		{"BuildableRatio", m.BuildableRatio, 1.8},
		{"EfficiencyRatio", m.EfficiencyRatio, 0.8},
		{"ResidualPerArea", m.ResidualPerArea, 574.56},
	}
	for _, c := range checks {
		if !approx(c.got, c.expected, 1e-6) {
			t.Errorf("%s = %v, expected %v", c.name, c.got, c.expected)
		}
	}
}

func TestCalculateMetricsInSquareFeet(t *testing.T) {
	m, err := CalculateMetrics(sampleDeal(), SquareFeet, USD)
	if err != nil {
		t.Fatalf("CalculateMetrics() error = %v", err)
	}
	if !approx(m.LandCostPerArea, 500/10.764, 1e-9) {
		t.Errorf("LandCostPerArea = %v", m.LandCostPerArea)
	}
	if !approx(m.BuildableRatio, 1.8, 1e-9) {
		t.Errorf("BuildableRatio should not be converted, got %v", m.BuildableRatio)
	}
	if m.AreaUnit != SquareFeet {
		t.Errorf("AreaUnit = %q", m.AreaUnit)
	}
}

func TestCalculateMetricsZeroAreas(t *testing.T) {
	m, err := CalculateMetrics(DealFigures{AskingPrice: 100}, SquareMeters, USD)
	if err != nil {
		t.Fatalf("CalculateMetrics() error = %v", err)
	}
	if m.LandCostPerArea != 0 || m.GDVPerArea != 0 || m.EfficiencyRatio != 0 {
		t.Errorf("expected zero ratios, got %+v", m)
	}
}

func TestCompareDeals(t *testing.T) {
	second := sampleDeal()
	second.SiteName = ""
	second.AskingPrice = 1050000
	second.GDV = 8000000

	c := CompareDeals([]DealFigures{sampleDeal(), second})

	if c.DealCount != 2 {
		t.Fatalf("DealCount = %d", c.DealCount)
	}
	if !approx(c.LandCostPsmAvg, 600, 1e-9) {
		t.Errorf("LandCostPsmAvg = %v, expected 600", c.LandCostPsmAvg)
	}
	if c.LandCostPsmRange != (Range{Min: 500, Max: 700}) {
		t.Errorf("LandCostPsmRange = %+v", c.LandCostPsmRange)
	}
	if c.Deals[1].SiteName != "Unknown" {
		t.Errorf("unnamed deal should be labeled Unknown, got %q", c.Deals[1].SiteName)
	}
	if empty := CompareDeals(nil); empty.DealCount != 0 || empty.Deals != nil {
		t.Errorf("CompareDeals(nil) = %+v", empty)
	}
}
