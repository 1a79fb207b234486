package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/youssefawwad88/RealEstate/internal/deal"
	"github.com/youssefawwad88/RealEstate/pkg/constants"
	"github.com/youssefawwad88/RealEstate/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// readRecord loads a single deal from a YAML or JSON file.
func readRecord(path string) (deal.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deal file: %w", err)
	}
	var record deal.Record
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse deal file %s: %w", path, err)
	}
	if len(record) == 0 {
		return nil, fmt.Errorf("deal file %s is empty", path)
	}
	return record, nil
}

func readRecords(path string) ([]deal.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open deals file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	_, records, err := deal.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse deals file %s: %w", path, err)
	}
	return records, nil
}

// withApp loads configuration for a command and releases it afterwards.
func withApp(flags *globalFlags, run func(a *app) error) error {
	a, err := newApp(flags)
	if err != nil {
		return err
	}
	defer a.close()
	return run(a)
}

func evaluateCmd(flags *globalFlags) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "evaluate [deal-file]",
		Short: "Evaluate one deal described in a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := readRecord(args[0])
			if err != nil {
				return err
			}
			return withApp(flags, func(a *app) error {
				eval, err := a.service.Evaluate(cmd.Context(), a.scope(flags), record, save)
				if err != nil {
					a.logger.Error("failed to evaluate deal",
						zap.String("op", "main.evaluate"),
						zap.Error(err),
					)
					return err
				}

				out := cmd.OutOrStdout()
				switch a.outputFormat {
				case constants.OutputFormatJSON:
					return output.JSON(out, eval)
				case constants.OutputFormatCSV:
					row := record.Clone()
					for k, v := range eval.Result.Summary.Record() {
						row[k] = v
					}
					return output.BatchCSV(out, []deal.Record{row})
				default:
					output.PrettyEvaluation(out, eval)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "append the result to the configured store")
	return cmd
}

func batchCmd(flags *globalFlags) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "batch [deals.csv]",
		Short: "Evaluate every deal in a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(args[0])
			if err != nil {
				return err
			}
			return withApp(flags, func(a *app) error {
				result, err := a.service.Batch(cmd.Context(), a.scope(flags), records, save)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				switch a.outputFormat {
				case constants.OutputFormatJSON:
					return output.JSON(out, result)
				case constants.OutputFormatCSV:
					return output.BatchCSV(out, result.Records)
				default:
					output.PrettyBatch(out, result)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "append the results to the configured store")
	return cmd
}

func compareCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "compare [deals.csv]",
		Short: "Compare per-square-meter metrics across the deals in a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(args[0])
			if err != nil {
				return err
			}
			return withApp(flags, func(a *app) error {
				cmp, skipped, err := a.service.Compare(a.scope(flags), records)
				if err != nil {
					return err
				}
				if skipped > 0 {
					a.logger.Warn("skipped invalid deals",
						zap.String("op", "main.compare"),
						zap.Int("skipped", skipped),
					)
				}
				if a.outputFormat == constants.OutputFormatJSON {
					return output.JSON(cmd.OutOrStdout(), cmp)
				}
				output.PrettyComparison(cmd.OutOrStdout(), cmp)
				return nil
			})
		},
	}
}

func validateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [deal-file]",
		Short: "Check a deal against zoning, permit and financing rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := readRecord(args[0])
			if err != nil {
				return err
			}
			return withApp(flags, func(a *app) error {
				report, err := a.service.Validate(a.scope(flags), record)
				if err != nil {
					return err
				}
				if a.outputFormat == constants.OutputFormatJSON {
					return output.JSON(cmd.OutOrStdout(), report)
				}
				output.PrettyValidation(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}
}

func historyCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List saved results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(a *app) error {
				records, err := a.service.Saved(cmd.Context())
				if err != nil {
					return err
				}
				if a.outputFormat == constants.OutputFormatJSON {
					return output.JSON(cmd.OutOrStdout(), records)
				}
				return output.BatchCSV(cmd.OutOrStdout(), records)
			})
		},
	}
}

func countriesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List countries with rule files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(a *app) error {
				countries, err := a.service.Countries()
				if err != nil {
					return err
				}
				if a.outputFormat == constants.OutputFormatJSON {
					return output.JSON(cmd.OutOrStdout(), countries)
				}
				for _, c := range countries {
					fmt.Fprintln(cmd.OutOrStdout(), c)
				}
				return nil
			})
		},
	}
}

func rulesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rules [country]",
		Short: "Print the merged rule set of a country",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			country := flags.country
			if len(args) == 1 {
				country = args[0]
			}
			return withApp(flags, func(a *app) error {
				rs, err := a.service.Rules(country)
				if err != nil {
					return err
				}
				if a.outputFormat == constants.OutputFormatJSON {
					return output.JSON(cmd.OutOrStdout(), rs)
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(rs); err != nil {
					return err
				}
				return enc.Close()
			})
		},
	}
}

func marketsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "markets [location]",
		Short: "Summarize the market benchmarks of a location",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(a *app) error {
				scope := a.scope(flags)
				if len(args) == 1 {
					scope.Location = args[0]
				}
				summary, err := a.service.Market(scope)
				if err != nil {
					return err
				}
				if a.outputFormat == constants.OutputFormatJSON {
					return output.JSON(cmd.OutOrStdout(), summary)
				}
				output.PrettyMarket(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
}
