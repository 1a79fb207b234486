// Package market looks up location benchmarks from a country's market
// configuration and compares deal assumptions against them.
package market

import (
	"encoding/json"
	"sort"
	"strings"
)

// Value is one named benchmark figure.
type Value struct {
	Key   string
	Value float64
}

// Values is an ordered set of benchmark figures. It marshals as a JSON object.
type Values []Value

// Get returns the value stored under key.
func (vs Values) Get(key string) (float64, bool) {
	for _, v := range vs {
		if v.Key == key {
			return v.Value, true
		}
	}
	return 0, false
}

// First returns the first value whose key contains every fragment.
func (vs Values) First(fragments ...string) (float64, bool) {
	for _, v := range vs {
		if containsAll(v.Key, fragments) {
			return v.Value, true
		}
	}
	return 0, false
}

// MarshalJSON renders the values as an object in key order.
func (vs Values) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, len(vs))
	for _, v := range vs {
		m[v.Key] = v.Value
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads an object; keys are sorted so lookups are stable.
func (vs *Values) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(Values, 0, len(keys))
	for _, k := range keys {
		out = append(out, Value{Key: k, Value: m[k]})
	}
	*vs = out
	return nil
}

func containsAll(s string, fragments []string) bool {
	for _, f := range fragments {
		if !strings.Contains(s, f) {
			return false
		}
	}
	return true
}

// Benchmarks are the market figures for one location.
type Benchmarks struct {
	Location          string             `json:"location_key"`
	LandCompsPsm      Values             `json:"land_comps_psm"`
	SalePrices        Values             `json:"sale_prices"`
	ConstructionCosts Values             `json:"construction_costs"`
	Indicators        map[string]float64 `json:"market_indicators"`
	DataFreshnessDays int                `json:"data_freshness_days"`
	ConfidenceScore   float64            `json:"confidence_score"`
}

// Indicator returns a market indicator or fallback when it is absent.
func (b *Benchmarks) Indicator(key string, fallback float64) float64 {
	if v, ok := b.Indicators[key]; ok {
		return v
	}
	return fallback
}

// Indicator keys added from the location configuration.
const (
	IndicatorDemandScore    = "demand_score"
	IndicatorLiquidityScore = "liquidity_score"
	IndicatorTier           = "tier"
	IndicatorAbsorptionRate = "absorption_rate_units_month"
	IndicatorLandGDV        = "land_gdv_benchmark_pct"
)

// DemandStrength describes a 1-5 demand score.
func DemandStrength(score float64) string {
	switch {
	case score >= 4:
		return "Strong"
	case score >= 3:
		return "Moderate"
	default:
		return "Weak"
	}
}
