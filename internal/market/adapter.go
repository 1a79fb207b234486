package market

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"github.com/youssefawwad88/RealEstate/internal/deal"
	"github.com/youssefawwad88/RealEstate/internal/policy"
	"github.com/youssefawwad88/RealEstate/pkg/constants"
	"github.com/youssefawwad88/RealEstate/pkg/format"
	"github.com/youssefawwad88/RealEstate/pkg/residual"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultLocation is the location key used when none is given.
const DefaultLocation = "default"

// ErrLocationNotFound is returned for a location the market config does not list.
var ErrLocationNotFound = errors.New("market location not configured")

// Adapter serves market benchmarks for one country.
type Adapter struct {
	rules   *policy.RuleSet
	dataDir string
	logger  *zap.Logger
}

// NewAdapter creates an adapter over rs. When dataDir is not empty, a file
// <dataDir>/<country>/<location>_market.json replaces the configured
// fallback values for that location.
func NewAdapter(rs *policy.RuleSet, dataDir string, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{rules: rs, dataDir: dataDir, logger: logger}
}

// Locations returns the configured location keys, sorted.
func (a *Adapter) Locations() []string {
	keys := make([]string, 0, len(a.rules.Market.Locations))
	for k := range a.rules.Market.Locations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a *Adapter) location(key string) (policy.Location, error) {
	if key == "" {
		key = DefaultLocation
	}
	loc, ok := a.rules.Market.Locations[key]
	if !ok {
		return policy.Location{}, fmt.Errorf("%w: %s in %s", ErrLocationNotFound, key, a.rules.CountryCode)
	}
	return loc, nil
}

// Benchmarks loads the benchmarks of a configured location.
func (a *Adapter) Benchmarks(locationKey string) (*Benchmarks, error) {
	if locationKey == "" {
		locationKey = DefaultLocation
	}
	loc, err := a.location(locationKey)
	if err != nil {
		return nil, err
	}

	if b, ok := a.loadOverride(locationKey); ok {
		return b, nil
	}
	return a.fallback(locationKey, loc), nil
}

func (a *Adapter) loadOverride(locationKey string) (*Benchmarks, bool) {
	if a.dataDir == "" {
		return nil, false
	}
	path := filepath.Join(a.dataDir, a.rules.CountryCode, locationKey+"_market.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			a.logger.Warn("failed to read market override",
				zap.String("op", "market.loadOverride"),
				zap.String("path", path),
				zap.Error(err))
		}
		return nil, false
	}

	var raw struct {
		LandCompsPsm      Values         `json:"land_comps_psm"`
		SalePrices        Values         `json:"sale_prices"`
		ConstructionCosts Values         `json:"construction_costs"`
		Indicators        map[string]any `json:"market_indicators"`
		DataFreshnessDays int            `json:"data_freshness_days"`
		ConfidenceScore   *float64       `json:"confidence_score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		a.logger.Warn("ignoring malformed market override",
			zap.String("op", "market.loadOverride"),
			zap.String("path", path),
			zap.Error(err))
		return nil, false
	}

	b := &Benchmarks{
		Location:          locationKey,
		LandCompsPsm:      raw.LandCompsPsm,
		SalePrices:        raw.SalePrices,
		ConstructionCosts: raw.ConstructionCosts,
		Indicators:        make(map[string]float64, len(raw.Indicators)),
		DataFreshnessDays: raw.DataFreshnessDays,
		ConfidenceScore:   1.0,
	}
	if raw.ConfidenceScore != nil {
		b.ConfidenceScore = *raw.ConfidenceScore
	}
	for k, v := range raw.Indicators {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			continue
		}
		b.Indicators[k] = f
	}

	a.logger.Debug("loaded market override",
		zap.String("op", "market.loadOverride"),
		zap.String("path", path))
	return b, true
}

func (a *Adapter) fallback(locationKey string, loc policy.Location) *Benchmarks {
	market := a.rules.Market
	fallback := market.FallbackValues

	pick := func(keys []string, normalize func(string) string) Values {
		var out Values
		for _, key := range keys {
			if v, ok := fallback[key]; ok {
				out = append(out, Value{Key: key, Value: v})
				continue
			}
			if v, ok := fallback[normalize(key)]; ok {
				out = append(out, Value{Key: key, Value: v})
			}
		}
		return out
	}

	b := &Benchmarks{
		Location:          locationKey,
		LandCompsPsm:      pick(market.DataKeys["land_comps"], stripCurrencyInfix),
		SalePrices:        pick(market.DataKeys["sale_prices"], stripCurrencyInfix),
		ConstructionCosts: pick(market.DataKeys["construction_costs"], stripCurrencySuffix),
		Indicators:        make(map[string]float64),
		DataFreshnessDays: constants.FallbackDataFreshnessDays,
		ConfidenceScore:   constants.FallbackConfidenceScore,
	}
	for _, key := range market.DataKeys["market_indicators"] {
		if v, ok := fallback[key]; ok {
			b.Indicators[key] = v
		}
	}
	b.Indicators[IndicatorDemandScore] = float64(orDefault(loc.DemandScore, 3))
	b.Indicators[IndicatorLiquidityScore] = float64(orDefault(loc.LiquidityScore, 3))
	b.Indicators[IndicatorTier] = float64(orDefault(loc.Tier, 2))
	return b
}

func stripCurrencyInfix(key string) string {
	return strings.NewReplacer("_jod_", "_", "_aed_", "_").Replace(key)
}

func stripCurrencySuffix(key string) string {
	return strings.NewReplacer("_jod", "", "_aed", "").Replace(key)
}

func orDefault(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

// AbsorptionBenchmark returns the location's absorption period for the
// calculators' fallback chain, or nil when the location sets none.
func (a *Adapter) AbsorptionBenchmark(locationKey string) *residual.MarketBenchmark {
	loc, err := a.location(locationKey)
	if err != nil || loc.AbsorptionRateMonths == nil {
		return nil
	}
	months := *loc.AbsorptionRateMonths
	return &residual.MarketBenchmark{AbsorptionRateMonths: &months}
}

// Warning flags an assumption that departs from the market.
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateInputs compares the record's sale price, construction cost and soft
// cost share against the location's benchmarks. Fields absent from the record
// are not checked.
func (a *Adapter) ValidateInputs(r deal.Record, locationKey string) []Warning {
	b, err := a.Benchmarks(locationKey)
	if err != nil {
		return []Warning{{Field: "market_data", Message: "Market data not available for validation"}}
	}

	var warnings []Warning
	currency := a.rules.Country.Currency

	if sale, err := r.Float(deal.FieldExpectedSalePsm); err == nil && sale != nil {
		if avg, ok := b.SalePrices.First("avg", "sqm"); ok {
			threshold := a.threshold("sale_price_variance_threshold", constants.SalePriceVarianceThreshold)
			if w, ok := varianceWarning("sale_price", "Sale price", *sale, avg, threshold, currency); ok {
				warnings = append(warnings, w)
			}
		}
	}

	if cost, err := r.Float(deal.FieldConstructionCostPsm); err == nil && cost != nil {
		if avg, ok := b.ConstructionCosts.First("avg"); ok {
			threshold := a.threshold("construction_cost_variance_threshold", constants.ConstructionCostVarianceThreshold)
			if w, ok := varianceWarning("construction_cost", "Construction cost", *cost, avg, threshold, currency); ok {
				warnings = append(warnings, w)
			}
		}
	}

	if soft, err := r.Float(deal.FieldSoftCostPct); err == nil && soft != nil {
		typical, ok := b.ConstructionCosts.Get("soft_cost_pct_typical")
		if ok && typical != 0 && math.Abs(*soft-typical) > constants.SoftCostDeviationPoints {
			warnings = append(warnings, Warning{
				Field:   "soft_cost",
				Message: fmt.Sprintf("Soft cost %s differs from typical %s", format.Fraction(*soft, 1), format.Fraction(typical, 1)),
			})
		}
	}

	return warnings
}

func (a *Adapter) threshold(key string, fallback float64) float64 {
	if v, ok := a.rules.Market.Validation[key]; ok && v > 0 {
		return v
	}
	return fallback
}

func varianceWarning(field, label string, value, avg, threshold float64, currency string) (Warning, bool) {
	if avg <= 0 || math.Abs(value-avg)/avg <= threshold {
		return Warning{}, false
	}
	direction := "below"
	if value > avg {
		direction = "above"
	}
	return Warning{
		Field: field,
		Message: fmt.Sprintf("%s %s is significantly %s market average %s (%s)",
			label, format.Number(value, 0), direction, format.Number(avg, 0), currency),
	}, true
}

// Summary is a display-ready description of a location's market.
type Summary struct {
	Location            string `json:"location"`
	Country             string `json:"country"`
	Currency            string `json:"currency"`
	LandPriceRange      string `json:"land_price_range"`
	SalePriceRange      string `json:"sale_price_range"`
	ConstructionCostAvg string `json:"construction_cost_avg"`
	AbsorptionRate      string `json:"absorption_rate"`
	TypicalLandGDV      string `json:"typical_land_gdv"`
	MarketTier          int    `json:"market_tier"`
	DemandStrength      string `json:"demand_strength"`
	DataConfidence      string `json:"data_confidence"`
	DataFreshness       string `json:"data_freshness"`
}

// Summary describes the market of a configured location.
func (a *Adapter) Summary(locationKey string) (*Summary, error) {
	if locationKey == "" {
		locationKey = DefaultLocation
	}
	b, err := a.Benchmarks(locationKey)
	if err != nil {
		return nil, err
	}

	first := func(vs Values, fragment string) float64 {
		v, _ := vs.First(fragment)
		return v
	}

	return &Summary{
		Location:            cases.Title(language.English).String(strings.ReplaceAll(locationKey, "_", " ")),
		Country:             a.rules.Country.Name,
		Currency:            a.rules.Country.Currency,
		LandPriceRange:      format.Number(first(b.LandCompsPsm, "min"), 0) + " - " + format.Number(first(b.LandCompsPsm, "max"), 0),
		SalePriceRange:      format.Number(first(b.SalePrices, "min"), 0) + " - " + format.Number(first(b.SalePrices, "max"), 0),
		ConstructionCostAvg: format.Number(first(b.ConstructionCosts, "avg"), 0),
		AbsorptionRate:      fmt.Sprintf("%.1f units/month", b.Indicator(IndicatorAbsorptionRate, 0)),
		TypicalLandGDV:      fmt.Sprintf("%.0f%%", b.Indicator(IndicatorLandGDV, 20)),
		MarketTier:          int(b.Indicator(IndicatorTier, 2)),
		DemandStrength:      DemandStrength(b.Indicator(IndicatorDemandScore, 3)),
		DataConfidence:      format.Fraction(b.ConfidenceScore, 0),
		DataFreshness:       fmt.Sprintf("%d days", b.DataFreshnessDays),
	}, nil
}
