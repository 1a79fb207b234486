// Package constants provides shared constants for the land feasibility engine.
package constants

// Development and market defaults
const (
	// DefaultAbsorptionMonths is used when neither the deal nor the market
	// benchmark supplies an absorption period.
	DefaultAbsorptionMonths = 18.0

	// DefaultHoldingPeriodMonths is the development timeline assumed when a
	// record does not carry one.
	DefaultHoldingPeriodMonths = 24

	// DefaultMaxFloors is the floor count assumed when a record does not carry one.
	DefaultMaxFloors = 1

	// DefaultZoning labels a deal with no zoning classification.
	DefaultZoning = "Unknown"

	// DefaultProfitTarget is the profit target used when neither the finance
	// rules nor the global config define one.
	DefaultProfitTarget = 0.15

	// DefaultSoftCostPct is the soft cost share used when neither the finance
	// rules nor the global config define one.
	DefaultSoftCostPct = 0.15

	// DefaultDevelopmentType picks the profit target of a deal that names no
	// development type.
	DefaultDevelopmentType = "residential"
)

// Input policy bounds. Percentages are fractions.
const (
	MinEfficiencyRatio = 0.60
	MaxEfficiencyRatio = 0.95
	MinProfitTarget    = 0.05
	MaxProfitTarget    = 0.50
	MaxFAR             = 10.0
	MaxFloorsLimit     = 50
	MaxPeriodMonths    = 120
)

// Sensitivity shocks
const (
	// SalesShock multiplies the sale price in the "sales -10%" scenario.
	SalesShock = 0.9

	// CostShock multiplies hard costs in the "costs +10%" scenario.
	CostShock = 1.1
)

// Viability thresholds. Land share of GDV and breakeven share of market are
// expressed on a 0-100 scale.
const (
	ResidualBuffer = 1.10

	LandPctNormLow   = 15.0
	LandPctNormHigh  = 25.0
	LandPctLowFloor  = 10.0
	LandPctCautionUp = 30.0

	BreakevenGreenBelow  = 80.0
	BreakevenYellowBelow = 85.0

	// QuickScreenProfitWeight scales the profit target when computing the
	// quick-screen viability threshold.
	QuickScreenProfitWeight = 0.5
)

// Validation heuristics
const (
	// FARWarningRatio is the share of the zoning maximum above which a FAR
	// proposal is flagged as high.
	FARWarningRatio = 0.9

	// ParkingUnitEfficiency and ParkingUnitSizeSqm estimate residential units
	// from gross buildable area.
	ParkingUnitEfficiency = 0.85
	ParkingUnitSizeSqm    = 80.0

	EnvironmentalReviewSqm = 1000.0
	FireSafetyAreaSqm      = 500.0
	FireSafetyFloors       = 3
	ElevatorFloors         = 4

	// Default proposal values used by comprehensive validation when the record
	// omits them.
	DefaultProposedFAR      = 1.0
	DefaultProposedCoverage = 0.5
	DefaultLTVRatio         = 0.7
)

// Market validation defaults
const (
	SalePriceVarianceThreshold        = 0.30
	ConstructionCostVarianceThreshold = 0.25
	SoftCostDeviationPoints           = 0.05
	FallbackDataFreshnessDays         = 90
	FallbackConfidenceScore           = 0.7
)

// Percentage conversions
const (
	// PercentageMultiplier converts a fraction into a 0-100 value.
	PercentageMultiplier = 100.0

	// DecimalPrecision is the precision for currency rounding (2 decimal places).
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent).
	CurrencyTolerance = 0.01

	// RatioTolerance absorbs float error when a ratio is compared to a limit.
	RatioTolerance = 1e-9
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable output format
	OutputFormatJSON = "json"
)

// Batch status values
const (
	StatusSuccess     = "success"
	StatusErrorPrefix = "error: "
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultRulesDir is the default root of per-country rule files
	DefaultRulesDir = "configs"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides of the application config.
	EnvPrefix = "LANDFEAS"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for batch CSVs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultMaxBatchRecords caps the deals accepted by one batch request
	DefaultMaxBatchRecords = 1000
)

// Store defaults
const (
	StoreDriverCSV    = "csv"
	StoreDriverSQLite = "sqlite"

	DefaultLockTimeoutSeconds = 10
	DefaultKeepBackupDays     = 7
)
