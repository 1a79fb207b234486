package policy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Rule file names inside a country directory.
const (
	CountryFile = "country.yml"
	ZoningFile  = "zoning.yml"
	FinanceFile = "finance.yml"
	MarketFile  = "market.yml"
	GlobalFile  = "global.yml"
	DefaultDir  = "default"
)

// Source supplies parsed rule sections. Implementations return a
// NotFoundError for missing countries, files or required sections.
type Source interface {
	GlobalConfig() (GlobalConfig, error)
	CountryRules(code string) (CountryRules, error)
	ZoningRules(code string) (map[string]ZoningRules, error)
	FinanceRules(code string) (FinanceRules, error)
	MarketConfig(code string) (MarketConfig, error)
	Countries() ([]string, error)
}

// FileSource reads rule files laid out as <dir>/<CODE>/{country,zoning,
// finance,market}.yml with shared settings in <dir>/default/global.yml.
type FileSource struct {
	dir string
}

// NewFileSource returns a source rooted at dir. The directory must exist.
func NewFileSource(dir string) (*FileSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &NotFoundError{Resource: "rules directory", Path: dir}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("rules path %s is not a directory", dir)
	}
	return &FileSource{dir: dir}, nil
}

// Dir returns the root directory of the source.
func (s *FileSource) Dir() string {
	return s.dir
}

// countryFile mirrors the layout of country.yml.
type countryFile struct {
	Country struct {
		Name     string `mapstructure:"name"`
		Code     string `mapstructure:"code"`
		Currency string `mapstructure:"currency"`
		Language string `mapstructure:"language"`
	} `mapstructure:"country"`
	Taxes struct {
		TransferTaxRate    float64 `mapstructure:"transfer_tax_rate"`
		StampDutyRate      float64 `mapstructure:"stamp_duty_rate"`
		RegistrationFees   float64 `mapstructure:"registration_fees"`
		LegalFeesRate      float64 `mapstructure:"legal_fees_rate"`
		MunicipalFeesRate  float64 `mapstructure:"municipal_fees_rate"`
		InfrastructureLevy float64 `mapstructure:"infrastructure_levy"`
		VATRate            float64 `mapstructure:"vat_rate"`
		CorporateTaxRate   float64 `mapstructure:"corporate_tax_rate"`
		WithholdingTaxRate float64 `mapstructure:"withholding_tax_rate"`
	} `mapstructure:"taxes"`
	Legal struct {
		ForeignOwnership struct {
			Allowed         *bool    `mapstructure:"allowed"`
			MaxOwnershipPct *float64 `mapstructure:"max_ownership_pct"`
		} `mapstructure:"foreign_ownership"`
	} `mapstructure:"legal"`
	Financing struct {
		MaxLTVRatio          *float64 `mapstructure:"max_ltv_ratio"`
		NonResidentMaxLTV    *float64 `mapstructure:"non_resident_max_ltv"`
		TypicalInterestRate  *float64 `mapstructure:"typical_interest_rate"`
		MinEquityRequirement *float64 `mapstructure:"min_equity_requirement"`
	} `mapstructure:"financing"`
}

// CountryRules reads <CODE>/country.yml. The country section is required;
// taxes default to zero, foreign ownership to allowed at 100%, and financing
// to 80% LTV, 5% interest and 20% equity.
func (s *FileSource) CountryRules(code string) (CountryRules, error) {
	v, path, err := s.read(code, CountryFile, "country rules")
	if err != nil {
		return CountryRules{}, err
	}
	if !v.IsSet("country") {
		return CountryRules{}, &NotFoundError{Resource: "country section", CountryCode: code, Path: path}
	}

	var f countryFile
	if err := v.Unmarshal(&f); err != nil {
		return CountryRules{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	rules := CountryRules{
		Name:                    f.Country.Name,
		Code:                    f.Country.Code,
		Currency:                f.Country.Currency,
		Language:                f.Country.Language,
		TransferTaxRate:         f.Taxes.TransferTaxRate,
		StampDutyRate:           f.Taxes.StampDutyRate,
		RegistrationFees:        f.Taxes.RegistrationFees,
		LegalFeesRate:           f.Taxes.LegalFeesRate,
		MunicipalFeesRate:       f.Taxes.MunicipalFeesRate,
		InfrastructureLevy:      f.Taxes.InfrastructureLevy,
		VATRate:                 f.Taxes.VATRate,
		CorporateTaxRate:        f.Taxes.CorporateTaxRate,
		WithholdingTaxRate:      f.Taxes.WithholdingTaxRate,
		ForeignOwnershipAllowed: boolOr(f.Legal.ForeignOwnership.Allowed, true),
		MaxForeignOwnershipPct:  floatOr(f.Legal.ForeignOwnership.MaxOwnershipPct, 1.0),
		MaxLTVRatio:             floatOr(f.Financing.MaxLTVRatio, 0.80),
		NonResidentMaxLTV:       f.Financing.NonResidentMaxLTV,
		TypicalInterestRate:     floatOr(f.Financing.TypicalInterestRate, 0.05),
		MinEquityRequirement:    floatOr(f.Financing.MinEquityRequirement, 0.20),
	}
	if rules.Code == "" {
		rules.Code = code
	}
	return rules, nil
}

// ZoningRules reads <CODE>/zoning.yml. Zone codes are returned upper-case.
func (s *FileSource) ZoningRules(code string) (map[string]ZoningRules, error) {
	v, path, err := s.read(code, ZoningFile, "zoning rules")
	if err != nil {
		return nil, err
	}
	if !v.IsSet("zoning") {
		return nil, &NotFoundError{Resource: "zoning section", CountryCode: code, Path: path}
	}

	var decoded map[string]ZoningRules
	if err := v.UnmarshalKey("zoning", &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	zones := make(map[string]ZoningRules, len(decoded))
	for zone, rules := range decoded {
		zones[strings.ToUpper(zone)] = rules
	}
	return zones, nil
}

type financeFile struct {
	Finance struct {
		ProfitTargets       map[string]float64 `mapstructure:"profit_targets"`
		SoftCosts           map[string]float64 `mapstructure:"soft_costs"`
		ConstructionFinance map[string]float64 `mapstructure:"construction_finance"`
		Sales               map[string]float64 `mapstructure:"sales"`
		Timeline            map[string]int     `mapstructure:"timeline"`
	} `mapstructure:"finance"`
	RiskFactors map[string]float64 `mapstructure:"risk_factors"`
	Benchmarks  map[string]float64 `mapstructure:"benchmarks"`
}

// FinanceRules reads <CODE>/finance.yml. The finance section is required.
func (s *FileSource) FinanceRules(code string) (FinanceRules, error) {
	v, path, err := s.read(code, FinanceFile, "finance rules")
	if err != nil {
		return FinanceRules{}, err
	}
	if !v.IsSet("finance") {
		return FinanceRules{}, &NotFoundError{Resource: "finance section", CountryCode: code, Path: path}
	}

	var f financeFile
	if err := v.Unmarshal(&f); err != nil {
		return FinanceRules{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return FinanceRules{
		ProfitTargets:       f.Finance.ProfitTargets,
		SoftCosts:           f.Finance.SoftCosts,
		ConstructionFinance: f.Finance.ConstructionFinance,
		Sales:               f.Finance.Sales,
		Timeline:            f.Finance.Timeline,
		RiskFactors:         f.RiskFactors,
		Benchmarks:          f.Benchmarks,
	}, nil
}

// MarketConfig reads <CODE>/market.yml. A country without a market file gets
// an empty config; market lookups then report no benchmarks.
func (s *FileSource) MarketConfig(code string) (MarketConfig, error) {
	v, path, err := s.read(code, MarketFile, "market config")
	if errors.Is(err, ErrConfigNotFound) {
		if _, statErr := os.Stat(s.countryDir(code)); statErr == nil {
			return MarketConfig{}, nil
		}
	}
	if err != nil {
		return MarketConfig{}, err
	}

	var m MarketConfig
	if err := v.UnmarshalKey("market", &m); err != nil {
		return MarketConfig{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return m, nil
}

// GlobalConfig reads default/global.yml. The file is optional.
func (s *FileSource) GlobalConfig() (GlobalConfig, error) {
	path := filepath.Join(s.dir, DefaultDir, GlobalFile)
	v, err := readFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return GlobalConfig{}, nil
	}
	if err != nil {
		return GlobalConfig{}, err
	}

	var g GlobalConfig
	if err := v.Unmarshal(&g); err != nil {
		return GlobalConfig{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return g, nil
}

// Countries lists the country directories, skipping the shared default.
func (s *FileSource) Countries() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules directory %s: %w", s.dir, err)
	}

	var codes []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || name == DefaultDir || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		codes = append(codes, name)
	}
	sort.Strings(codes)
	return codes, nil
}

func (s *FileSource) countryDir(code string) string {
	return filepath.Join(s.dir, code)
}

func (s *FileSource) read(code, file, resource string) (*viper.Viper, string, error) {
	if code == "" || strings.ContainsAny(code, `/\.`) {
		return nil, "", &NotFoundError{Resource: resource, CountryCode: code}
	}
	path := filepath.Join(s.countryDir(code), file)
	v, err := readFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, path, &NotFoundError{Resource: resource, CountryCode: code, Path: path}
	}
	return v, path, err
}

// readFile loads one YAML file into an isolated viper instance.
func readFile(path string) (*viper.Viper, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading rule file %s: %w", path, err)
	}
	return v, nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
