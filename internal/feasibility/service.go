// Package feasibility ties the rule registry, market benchmarks, the deal
// calculators, validators and persistence together for the CLI and the API.
package feasibility

import (
	"context"
	"fmt"
	"strings"

	"github.com/youssefawwad88/RealEstate/internal/batch"
	"github.com/youssefawwad88/RealEstate/internal/deal"
	"github.com/youssefawwad88/RealEstate/internal/market"
	"github.com/youssefawwad88/RealEstate/internal/policy"
	"github.com/youssefawwad88/RealEstate/internal/store"
	"github.com/youssefawwad88/RealEstate/internal/validation"
	"github.com/youssefawwad88/RealEstate/pkg/residual"
	"github.com/youssefawwad88/RealEstate/pkg/units"
	"go.uber.org/zap"
)

// Options configure a Service.
type Options struct {
	DefaultCountry  string
	DefaultLocation string
	MarketDataDir   string
	// Store receives saved results; nil disables saving.
	Store store.Store
}

// Service evaluates deals against a country's rules.
type Service struct {
	registry *policy.Registry
	opts     Options
	logger   *zap.Logger
}

// NewService creates a service over registry.
func NewService(registry *policy.Registry, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultLocation == "" {
		opts.DefaultLocation = market.DefaultLocation
	}
	return &Service{registry: registry, opts: opts, logger: logger}
}

// Scope selects the country and market location of a request. Empty fields
// take the service defaults.
type Scope struct {
	Country  string `json:"country,omitempty"`
	Location string `json:"location,omitempty"`
}

func (s *Service) resolve(scope Scope) (Scope, *policy.RuleSet, error) {
	if scope.Country == "" {
		scope.Country = s.opts.DefaultCountry
	}
	if scope.Country == "" {
		return scope, nil, fmt.Errorf("%w: no country given and no default configured", policy.ErrConfigNotFound)
	}
	scope.Country = policy.NormalizeCode(scope.Country)
	if scope.Location == "" {
		scope.Location = s.opts.DefaultLocation
	}
	scope.Location = strings.ToLower(strings.TrimSpace(scope.Location))

	rs, err := s.registry.RuleSet(scope.Country)
	if err != nil {
		return scope, nil, err
	}
	return scope, rs, nil
}

func (s *Service) adapter(rs *policy.RuleSet) *market.Adapter {
	return market.NewAdapter(rs, s.opts.MarketDataDir, s.logger)
}

// Evaluation is the full assessment of one deal.
type Evaluation struct {
	Scope          Scope              `json:"scope"`
	Result         deal.Result        `json:"result"`
	Validation     *validation.Report `json:"validation"`
	MarketWarnings []market.Warning   `json:"market_warnings,omitempty"`
	UnitMetrics    *units.Metrics     `json:"unit_metrics,omitempty"`
}

// Evaluate computes the deal in record and validates it against the
// country's rules and market. Blank soft cost, profit target and taxes take
// the country's rule values. Invalid inputs return a *deal.ValidationError
// (possibly several, combined).
func (s *Service) Evaluate(ctx context.Context, scope Scope, record deal.Record, save bool) (*Evaluation, error) {
	scope, rs, err := s.resolve(scope)
	if err != nil {
		return nil, err
	}
	adapter := s.adapter(rs)
	record = s.prepare(rs, record, "feasibility.Evaluate")

	d, err := deal.Create(record, adapter.AbsorptionBenchmark(locationOf(record, scope)))
	if err != nil {
		return nil, err
	}
	result, err := d.Result()
	if err != nil {
		return nil, err
	}

	eval := &Evaluation{
		Scope:          scope,
		Result:         result,
		Validation:     validation.ValidateDeal(rs, record),
		MarketWarnings: adapter.ValidateInputs(record, locationOf(record, scope)),
	}

	metrics, err := units.CalculateMetrics(figures(result), areaUnit(rs), units.Currency(rs.Country.Currency))
	if err != nil {
		s.logger.Warn("unit metrics unavailable",
			zap.String("op", "feasibility.Evaluate"),
			zap.Error(err))
	} else {
		eval.UnitMetrics = &metrics
	}

	if save {
		row := record.Clone()
		for k, v := range result.Summary.Record() {
			row[k] = v
		}
		if err := s.save(ctx, []deal.Record{row}); err != nil {
			return nil, err
		}
	}

	s.logger.Info("deal evaluated",
		zap.String("op", "feasibility.Evaluate"),
		zap.String("country", scope.Country),
		zap.String("site", result.Inputs.SiteName),
		zap.String("overall", string(result.Viability.Overall.Rating)),
		zap.Bool("valid", eval.Validation.Valid()))
	return eval, nil
}

// Batch evaluates every record; failures are annotated per record.
func (s *Service) Batch(ctx context.Context, scope Scope, records []deal.Record, save bool) (*batch.Result, error) {
	scope, rs, err := s.resolve(scope)
	if err != nil {
		return nil, err
	}

	prepared := make([]deal.Record, len(records))
	for i, record := range records {
		prepared[i] = s.prepare(rs, record, "feasibility.Batch")
	}

	result := batch.NewProcessor(scopedMarket{adapter: s.adapter(rs), fallback: scope.Location}, s.logger).Process(prepared)
	if save {
		if err := s.save(ctx, result.Records); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

// Compare computes every record and compares the per-unit metrics of those
// that succeed. Failed records are skipped and counted.
func (s *Service) Compare(scope Scope, records []deal.Record) (units.Comparison, int, error) {
	scope, rs, err := s.resolve(scope)
	if err != nil {
		return units.Comparison{}, 0, err
	}
	adapter := s.adapter(rs)

	var figs []units.DealFigures
	skipped := 0
	for _, record := range records {
		record = s.prepare(rs, record, "feasibility.Compare")
		d, err := deal.Create(record, adapter.AbsorptionBenchmark(locationOf(record, scope)))
		if err != nil {
			skipped++
			continue
		}
		result, err := d.Result()
		if err != nil {
			skipped++
			continue
		}
		figs = append(figs, figures(result))
	}
	return units.CompareDeals(figs), skipped, nil
}

// prepare fills blank rule-backed fields of record from rs.
func (s *Service) prepare(rs *policy.RuleSet, record deal.Record, op string) deal.Record {
	out, filled := withRuleDefaults(rs, record)
	if len(filled) > 0 {
		s.logger.Debug("applied country defaults",
			zap.String("op", op),
			zap.String("country", rs.CountryCode),
			zap.Strings("fields", filled))
	}
	return out
}

// Validate checks the record against the country's rules without computing it.
func (s *Service) Validate(scope Scope, record deal.Record) (*validation.Report, error) {
	_, rs, err := s.resolve(scope)
	if err != nil {
		return nil, err
	}
	return validation.ValidateDeal(rs, record), nil
}

// Countries lists the countries with rule files.
func (s *Service) Countries() ([]string, error) {
	return s.registry.AvailableCountries()
}

// Rules returns the country's rule set.
func (s *Service) Rules(country string) (*policy.RuleSet, error) {
	_, rs, err := s.resolve(Scope{Country: country})
	return rs, err
}

// Market describes the market of a location.
func (s *Service) Market(scope Scope) (*market.Summary, error) {
	scope, rs, err := s.resolve(scope)
	if err != nil {
		return nil, err
	}
	return s.adapter(rs).Summary(scope.Location)
}

// Saved loads previously saved results.
func (s *Service) Saved(ctx context.Context) ([]deal.Record, error) {
	if s.opts.Store == nil {
		return nil, ErrNoStore
	}
	return s.opts.Store.Load(ctx)
}

func (s *Service) save(ctx context.Context, records []deal.Record) error {
	if s.opts.Store == nil {
		return ErrNoStore
	}
	if err := s.opts.Store.Append(ctx, records); err != nil {
		return fmt.Errorf("saving results: %w", err)
	}
	return nil
}

func figures(r deal.Result) units.DealFigures {
	return units.DealFigures{
		SiteName:          r.Inputs.SiteName,
		LandAreaSqm:       r.Inputs.LandAreaSqm,
		GrossBuildableSqm: r.Outputs.GrossBuildableSqm,
		NetSellableSqm:    r.Outputs.NetSellableSqm,
		AskingPrice:       r.Inputs.AskingPrice,
		ConstructionCost:  r.Outputs.HardCosts,
		GDV:               r.Outputs.GDV,
		Profit:            r.Outputs.RequiredProfit,
		ResidualLandValue: r.Outputs.ResidualLandValue,
	}
}

// areaUnit is the display area unit from the global config, sqm by default.
func areaUnit(rs *policy.RuleSet) units.AreaUnit {
	u, err := units.ParseAreaUnit(rs.Global.Units["area"])
	if err != nil {
		return units.SquareMeters
	}
	return u
}

func locationOf(record deal.Record, scope Scope) string {
	if loc, ok := record.String(deal.FieldLocation); ok {
		return strings.ToLower(loc)
	}
	return scope.Location
}

// scopedMarket applies the request location to records that name none.
type scopedMarket struct {
	adapter  *market.Adapter
	fallback string
}

func (m scopedMarket) AbsorptionBenchmark(location string) *residual.MarketBenchmark {
	if location == "" {
		location = m.fallback
	}
	return m.adapter.AbsorptionBenchmark(strings.ToLower(location))
}
