package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/youssefawwad88/RealEstate/internal/config"
	"github.com/youssefawwad88/RealEstate/internal/feasibility"
	"github.com/youssefawwad88/RealEstate/internal/policy"
	"github.com/youssefawwad88/RealEstate/internal/store"
	"github.com/youssefawwad88/RealEstate/pkg/constants"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type globalFlags struct {
	configPath   string
	logLevel     string
	outputFormat string
	country      string
	location     string
}

// app holds everything a command needs once configuration is loaded.
type app struct {
	conf         *config.Configuration
	logger       *zap.Logger
	service      *feasibility.Service
	store        store.Store
	outputFormat string
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close store",
				zap.String("op", "main.close"),
				zap.Error(err),
			)
		}
	}
	_ = a.logger.Sync()
}

func (a *app) scope(flags *globalFlags) feasibility.Scope {
	location := flags.location
	if location == "" {
		location = a.conf.Market.Location
	}
	return feasibility.Scope{Country: flags.country, Location: location}
}

func newApp(flags *globalFlags) (*app, error) {
	configPath := flags.configPath
	if configPath == constants.DefaultConfigFile {
		// The default file is optional; defaults and LANDFEAS_ variables apply.
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			configPath = ""
		}
	}

	conf, err := config.LoadConfiguration(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", flags.configPath, err)
	}

	logger, err := config.NewLogger(conf.Logging, flags.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	outputFormat := conf.Output.Format
	if flags.outputFormat != "" {
		outputFormat = flags.outputFormat
	}
	if err := config.ValidateOutputFormat(outputFormat); err != nil {
		return nil, err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	source, err := policy.NewFileSource(conf.Rules.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules directory: %w", err)
	}

	st, err := store.Open(store.Options{
		Driver:         conf.Store.Driver,
		Path:           conf.Store.Path,
		LockTimeout:    conf.Store.LockTimeout,
		BackupDir:      conf.Store.BackupDir,
		KeepBackupDays: conf.Store.KeepBackupDays,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	service := feasibility.NewService(policy.NewRegistry(source, logger), feasibility.Options{
		DefaultCountry:  conf.Rules.DefaultCountry,
		DefaultLocation: conf.Market.Location,
		MarketDataDir:   conf.Market.DataDir,
		Store:           st,
	}, logger)

	return &app{
		conf:         conf,
		logger:       logger,
		service:      service,
		store:        st,
		outputFormat: outputFormat,
	}, nil
}

func main() {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "land-feasibility",
		Short:         "Residual land value and feasibility screening for development sites",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVar(&flags.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	pf.StringVar(&flags.country, "country", "", "country code (defaults to rules.defaultCountry)")
	pf.StringVar(&flags.location, "location", "", "market location (defaults to market.location)")

	rootCmd.AddCommand(evaluateCmd(flags))
	rootCmd.AddCommand(batchCmd(flags))
	rootCmd.AddCommand(compareCmd(flags))
	rootCmd.AddCommand(validateCmd(flags))
	rootCmd.AddCommand(historyCmd(flags))
	rootCmd.AddCommand(countriesCmd(flags))
	rootCmd.AddCommand(rulesCmd(flags))
	rootCmd.AddCommand(marketsCmd(flags))
	rootCmd.AddCommand(serveCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
}
