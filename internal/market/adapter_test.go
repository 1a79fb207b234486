package market

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youssefawwad88/RealEstate/internal/deal"
	"github.com/youssefawwad88/RealEstate/internal/policy"
)

func jordanRules(t *testing.T) *policy.RuleSet {
	t.Helper()
	source, err := policy.NewFileSource(filepath.Join("..", "..", "configs"))
	require.NoError(t, err)
	rs, err := policy.NewRegistry(source, nil).RuleSet("JO")
	require.NoError(t, err)
	return rs
}

func TestBenchmarksFromFallbackValues(t *testing.T) {
	a := NewAdapter(jordanRules(t), "", nil)

	b, err := a.Benchmarks("abdoun")
	require.NoError(t, err)

	assert.Equal(t, "abdoun", b.Location)
	assert.Equal(t, Values{
		{Key: "land_price_jod_sqm_min", Value: 250},
		{Key: "land_price_jod_sqm_max", Value: 900},
	}, b.LandCompsPsm)

	avg, ok := b.SalePrices.First("avg", "sqm")
	require.True(t, ok)
	assert.Equal(t, 1100.0, avg)

	cost, ok := b.ConstructionCosts.Get("construction_cost_jod_avg")
	require.True(t, ok)
	assert.Equal(t, 420.0, cost)

	soft, ok := b.ConstructionCosts.Get("soft_cost_pct_typical")
	require.True(t, ok)
	assert.Equal(t, 0.16, soft)

	assert.Equal(t, 5.0, b.Indicators[IndicatorDemandScore])
	assert.Equal(t, 4.0, b.Indicators[IndicatorLiquidityScore])
	assert.Equal(t, 1.0, b.Indicators[IndicatorTier])
	assert.Equal(t, 4.5, b.Indicators[IndicatorAbsorptionRate])
	assert.Equal(t, 90, b.DataFreshnessDays)
	assert.Equal(t, 0.7, b.ConfidenceScore)
}

func TestBenchmarksUnknownLocation(t *testing.T) {
	a := NewAdapter(jordanRules(t), "", nil)

	_, err := a.Benchmarks("aqaba")
	assert.ErrorIs(t, err, ErrLocationNotFound)

	_, err = a.Summary("aqaba")
	assert.ErrorIs(t, err, ErrLocationNotFound)

	assert.Nil(t, a.AbsorptionBenchmark("aqaba"))
}

func TestLocationDefaults(t *testing.T) {
	rs := &policy.RuleSet{
		CountryCode: "TEST",
		Market: policy.MarketConfig{
			Locations: map[string]policy.Location{DefaultLocation: {Name: "Anywhere"}},
		},
	}

	b, err := NewAdapter(rs, "", nil).Benchmarks("")
	require.NoError(t, err)

	assert.Empty(t, b.SalePrices)
	assert.Equal(t, map[string]float64{
		IndicatorDemandScore:    3,
		IndicatorLiquidityScore: 3,
		IndicatorTier:           2,
	}, b.Indicators)
}

func TestLocations(t *testing.T) {
	a := NewAdapter(jordanRules(t), "", nil)
	assert.Equal(t, []string{"abdoun", "default", "khalda", "zarqa"}, a.Locations())
}

func TestAbsorptionBenchmark(t *testing.T) {
	a := NewAdapter(jordanRules(t), "", nil)

	b := a.AbsorptionBenchmark("abdoun")
	require.NotNil(t, b)
	require.NotNil(t, b.AbsorptionRateMonths)
	assert.Equal(t, 12.0, *b.AbsorptionRateMonths)

	assert.Nil(t, a.AbsorptionBenchmark("default"))
}

func TestValidateInputs(t *testing.T) {
	a := NewAdapter(jordanRules(t), "", nil)

	tests := []struct {
		name   string
		record deal.Record
		want   []Warning
	}{
		{
			name:   "in line with market",
			record: deal.Record{"expected_sale_price_psm": 1200, "construction_cost_psm": 450, "soft_cost_pct": 0.15},
		},
		{
			name:   "sale price above market",
			record: deal.Record{"expected_sale_price_psm": "1500"},
			want: []Warning{{
				Field:   "sale_price",
				Message: "Sale price 1,500 is significantly above market average 1,100 (JOD)",
			}},
		},
		{
			name:   "construction cost below market",
			record: deal.Record{"construction_cost_psm": 300},
			want: []Warning{{
				Field:   "construction_cost",
				Message: "Construction cost 300 is significantly below market average 420 (JOD)",
			}},
		},
		{
			name:   "soft cost off typical",
			record: deal.Record{"soft_cost_pct": 0.25},
			want: []Warning{{
				Field:   "soft_cost",
				Message: "Soft cost 25.0% differs from typical 16.0%",
			}},
		},
		{
			name:   "all three in order",
			record: deal.Record{"expected_sale_price_psm": 500, "construction_cost_psm": 900, "soft_cost_pct": 0.05},
			want: []Warning{
				{Field: "sale_price", Message: "Sale price 500 is significantly below market average 1,100 (JOD)"},
				{Field: "construction_cost", Message: "Construction cost 900 is significantly above market average 420 (JOD)"},
				{Field: "soft_cost", Message: "Soft cost 5.0% differs from typical 16.0%"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.ValidateInputs(tt.record, "khalda"))
		})
	}
}

func TestValidateInputsUnknownLocation(t *testing.T) {
	a := NewAdapter(jordanRules(t), "", nil)

	warnings := a.ValidateInputs(deal.Record{"expected_sale_price_psm": 1500}, "petra")

	require.Len(t, warnings, 1)
	assert.Equal(t, "market_data", warnings[0].Field)
}

func TestSummary(t *testing.T) {
	a := NewAdapter(jordanRules(t), "", nil)

	s, err := a.Summary("abdoun")
	require.NoError(t, err)

	assert.Equal(t, &Summary{
		Location:            "Abdoun",
		Country:             "Jordan",
		Currency:            "JOD",
		LandPriceRange:      "250 - 900",
		SalePriceRange:      "750 - 1,600",
		ConstructionCostAvg: "420",
		AbsorptionRate:      "4.5 units/month",
		TypicalLandGDV:      "20%",
		MarketTier:          1,
		DemandStrength:      "Strong",
		DataConfidence:      "70%",
		DataFreshness:       "90 days",
	}, s)
}

func TestDemandStrength(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{5, "Strong"},
		{4, "Strong"},
		{3, "Moderate"},
		{2, "Weak"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DemandStrength(tt.score))
	}
}

func TestOverrideFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "JO"), 0o755))
	override := `{
		"land_comps_psm": {"land_min_sqm": 400, "land_max_sqm": 1200},
		"sale_prices": {"sale_avg_sqm": 1300, "sale_min_sqm": 1000, "sale_max_sqm": 1700},
		"construction_costs": {"build_avg": 500},
		"market_indicators": {"demand_score": 4, "note": "broker survey"},
		"data_freshness_days": 14,
		"confidence_score": 0.95
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "JO", "khalda_market.json"), []byte(override), 0o644))

	a := NewAdapter(jordanRules(t), dir, nil)

	b, err := a.Benchmarks("khalda")
	require.NoError(t, err)
	assert.Equal(t, 14, b.DataFreshnessDays)
	assert.Equal(t, 0.95, b.ConfidenceScore)
	assert.Equal(t, map[string]float64{"demand_score": 4}, b.Indicators)

	s, err := a.Summary("khalda")
	require.NoError(t, err)
	assert.Equal(t, "1,000 - 1,700", s.SalePriceRange)
	assert.Equal(t, "95%", s.DataConfidence)

	warnings := a.ValidateInputs(deal.Record{"expected_sale_price_psm": 1300}, "khalda")
	assert.Empty(t, warnings)

	// other locations keep the configured values
	other, err := a.Benchmarks("zarqa")
	require.NoError(t, err)
	assert.Equal(t, 90, other.DataFreshnessDays)
}

func TestMalformedOverrideFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "JO"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "JO", "khalda_market.json"), []byte("{not json"), 0o644))

	b, err := NewAdapter(jordanRules(t), dir, nil).Benchmarks("khalda")
	require.NoError(t, err)
	assert.Equal(t, 0.7, b.ConfidenceScore)
}
