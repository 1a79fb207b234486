package policy

import (
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Registry loads rule sections from a Source and caches them per country
// until ClearCache. Concurrent first loads of the same key share one read.
type Registry struct {
	source Source
	cache  *cache.Cache
	group  singleflight.Group
	logger *zap.Logger
}

// NewRegistry creates a registry over source.
func NewRegistry(source Source, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		source: source,
		cache:  cache.New(cache.NoExpiration, 0),
		logger: logger,
	}
}

// NormalizeCode trims and upper-cases a country code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func load[T any](r *Registry, key string, fetch func() (T, error)) (T, error) {
	if v, found := r.cache.Get(key); found {
		return v.(T), nil
	}

	v, err, shared := r.group.Do(key, func() (any, error) {
		if v, found := r.cache.Get(key); found {
			return v, nil
		}
		r.logger.Debug("loading rules",
			zap.String("op", "policy.Registry.load"),
			zap.String("key", key),
		)
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		r.cache.Set(key, v, cache.NoExpiration)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if shared {
		r.logger.Debug("shared concurrent rules load",
			zap.String("op", "policy.Registry.load"),
			zap.String("key", key),
		)
	}
	return v.(T), nil
}

// LoadGlobalConfig returns the shared global settings.
func (r *Registry) LoadGlobalConfig() (GlobalConfig, error) {
	return load(r, "global", r.source.GlobalConfig)
}

// LoadCountryRules returns the country rules for code.
func (r *Registry) LoadCountryRules(code string) (CountryRules, error) {
	code = NormalizeCode(code)
	return load(r, "country:"+code, func() (CountryRules, error) {
		return r.source.CountryRules(code)
	})
}

// LoadZoningRules returns the zoning rules for code keyed by zoning code.
func (r *Registry) LoadZoningRules(code string) (map[string]ZoningRules, error) {
	code = NormalizeCode(code)
	return load(r, "zoning:"+code, func() (map[string]ZoningRules, error) {
		return r.source.ZoningRules(code)
	})
}

// LoadFinanceRules returns the finance rules for code.
func (r *Registry) LoadFinanceRules(code string) (FinanceRules, error) {
	code = NormalizeCode(code)
	return load(r, "finance:"+code, func() (FinanceRules, error) {
		return r.source.FinanceRules(code)
	})
}

// LoadMarketConfig returns the market config for code.
func (r *Registry) LoadMarketConfig(code string) (MarketConfig, error) {
	code = NormalizeCode(code)
	return load(r, "market:"+code, func() (MarketConfig, error) {
		return r.source.MarketConfig(code)
	})
}

// RuleSet composes every section for code. The first missing section
// aborts the load with its NotFoundError.
func (r *Registry) RuleSet(code string) (*RuleSet, error) {
	code = NormalizeCode(code)
	return load(r, "ruleset:"+code, func() (*RuleSet, error) {
		global, err := r.LoadGlobalConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load global config: %w", err)
		}
		country, err := r.LoadCountryRules(code)
		if err != nil {
			return nil, err
		}
		zones, err := r.LoadZoningRules(code)
		if err != nil {
			return nil, err
		}
		finance, err := r.LoadFinanceRules(code)
		if err != nil {
			return nil, err
		}
		market, err := r.LoadMarketConfig(code)
		if err != nil {
			return nil, err
		}

		rs := &RuleSet{
			CountryCode: code,
			Global:      global,
			Country:     country,
			Zones:       zones,
			Finance:     finance,
			Market:      market,
		}
		if err := rs.Check(); err != nil {
			r.logger.Warn("rule set has inconsistent values",
				zap.String("op", "policy.Registry.RuleSet"),
				zap.String("country", code),
				zap.Error(err),
			)
		}
		r.logger.Info("rule set loaded",
			zap.String("op", "policy.Registry.RuleSet"),
			zap.String("country", code),
			zap.Int("zones", len(zones)),
		)
		return rs, nil
	})
}

// AvailableCountries lists the country codes the source knows about.
func (r *Registry) AvailableCountries() ([]string, error) {
	return r.source.Countries()
}

// ClearCache drops every cached section.
func (r *Registry) ClearCache() {
	r.cache.Flush()
	r.logger.Debug("rules cache cleared", zap.String("op", "policy.Registry.ClearCache"))
}
