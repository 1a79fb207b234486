// Package config loads the application configuration and builds the logger.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/youssefawwad88/RealEstate/pkg/constants"
)

// Configuration holds all configuration for land-feasibility.
type Configuration struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging,omitempty"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output,omitempty"`
	Rules   RulesConfig   `mapstructure:"rules" yaml:"rules,omitempty"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store,omitempty"`
	Market  MarketConfig  `mapstructure:"market" yaml:"market,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv, json
}

// RulesConfig locates the per-country rule files.
type RulesConfig struct {
	Dir            string `mapstructure:"dir" yaml:"dir,omitempty"`
	DefaultCountry string `mapstructure:"defaultCountry" yaml:"defaultCountry,omitempty"`
}

// StoreConfig selects where evaluated deals are saved.
type StoreConfig struct {
	Driver         string        `mapstructure:"driver" yaml:"driver,omitempty"` // csv, sqlite
	Path           string        `mapstructure:"path" yaml:"path,omitempty"`
	LockTimeout    time.Duration `mapstructure:"lockTimeout" yaml:"lockTimeout,omitempty"`
	BackupDir      string        `mapstructure:"backupDir" yaml:"backupDir,omitempty"`
	KeepBackupDays int           `mapstructure:"keepBackupDays" yaml:"keepBackupDays,omitempty"`
}

// MarketConfig selects the market location and optional benchmark overrides.
type MarketConfig struct {
	Location string `mapstructure:"location" yaml:"location,omitempty"`
	DataDir  string `mapstructure:"dataDir" yaml:"dataDir,omitempty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("rules.dir", constants.DefaultRulesDir)
	v.SetDefault("rules.defaultCountry", "JO")
	v.SetDefault("store.driver", constants.StoreDriverCSV)
	v.SetDefault("store.path", filepath.Join("data", "deals.csv"))
	v.SetDefault("store.lockTimeout", constants.DefaultLockTimeoutSeconds*time.Second)
	v.SetDefault("store.backupDir", "")
	v.SetDefault("store.keepBackupDays", constants.DefaultKeepBackupDays)
	v.SetDefault("market.location", "default")
	v.SetDefault("market.dataDir", "")
}

// LoadConfiguration reads the YAML configuration at configPath. Environment
// variables prefixed LANDFEAS_ (e.g. LANDFEAS_STORE_DRIVER) override file
// values; a .env file in the working directory is loaded first when present.
// An empty configPath yields the defaults plus environment overrides.
func LoadConfiguration(configPath string) (*Configuration, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	configuration.Rules.DefaultCountry = strings.ToUpper(strings.TrimSpace(configuration.Rules.DefaultCountry))

	return &configuration, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if _, err := parseLevel(c.Logging.Level); err != nil {
		warnings = append(warnings, err.Error())
	}
	if err := ValidateOutputFormat(c.Output.Format); err != nil {
		warnings = append(warnings, err.Error())
	}

	if info, err := os.Stat(c.Rules.Dir); err != nil || !info.IsDir() {
		warnings = append(warnings, fmt.Sprintf("rules directory %s does not exist", c.Rules.Dir))
	} else if c.Rules.DefaultCountry != "" {
		if _, err := os.Stat(filepath.Join(c.Rules.Dir, c.Rules.DefaultCountry)); err != nil {
			warnings = append(warnings, fmt.Sprintf("no rules for default country %s in %s", c.Rules.DefaultCountry, c.Rules.Dir))
		}
	}

	switch c.Store.Driver {
	case constants.StoreDriverCSV, constants.StoreDriverSQLite:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown store driver %q, expected %s or %s",
			c.Store.Driver, constants.StoreDriverCSV, constants.StoreDriverSQLite))
	}
	if c.Store.Path == "" {
		warnings = append(warnings, "store path is empty, results will not be saved")
	}
	if c.Store.LockTimeout <= 0 {
		warnings = append(warnings, fmt.Sprintf("store lock timeout %s is not positive, using %ds",
			c.Store.LockTimeout, constants.DefaultLockTimeoutSeconds))
	}
	if c.Store.KeepBackupDays < 0 {
		warnings = append(warnings, "store keepBackupDays is negative, backups will not be pruned")
	}

	if c.Market.DataDir != "" {
		if info, err := os.Stat(c.Market.DataDir); err != nil || !info.IsDir() {
			warnings = append(warnings, fmt.Sprintf("market data directory %s does not exist", c.Market.DataDir))
		}
	}

	return warnings
}
