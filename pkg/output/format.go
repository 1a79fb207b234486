// Package output renders evaluations, batch runs, validation reports and
// market summaries for the terminal.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/youssefawwad88/RealEstate/internal/batch"
	"github.com/youssefawwad88/RealEstate/internal/deal"
	"github.com/youssefawwad88/RealEstate/internal/feasibility"
	"github.com/youssefawwad88/RealEstate/internal/market"
	"github.com/youssefawwad88/RealEstate/internal/validation"
	"github.com/youssefawwad88/RealEstate/pkg/format"
	"github.com/youssefawwad88/RealEstate/pkg/units"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrettyEvaluation outputs a human-readable report of a single deal.
func PrettyEvaluation(w io.Writer, eval *feasibility.Evaluation) {
	p := message.NewPrinter(language.English)
	res := eval.Result
	out := res.Outputs

	_, _ = p.Fprintf(w, "--- Feasibility for %s (%s) ---\n", res.Summary.SiteName, eval.Scope.Country)
	_, _ = p.Fprintf(w, "Land area            | %s sqm\n", res.Summary.LandAreaSqm)
	_, _ = p.Fprintf(w, "Asking price         | %s\n", res.Summary.AskingPrice)
	_, _ = p.Fprintf(w, "Gross buildable      | %.0f sqm (%s)\n", out.GrossBuildableSqm, out.LimitingFactor)
	_, _ = p.Fprintf(w, "Net sellable         | %.0f sqm\n", out.NetSellableSqm)
	_, _ = p.Fprintf(w, "GDV                  | %s\n", format.WholeCurrency(out.GDV))
	_, _ = p.Fprintf(w, "Total dev cost       | %s\n", format.WholeCurrency(out.TotalDevCost))
	_, _ = p.Fprintf(w, "Residual land value  | %s\n", res.Summary.ResidualLandValue)
	_, _ = p.Fprintf(w, "Land %% of GDV        | %s\n", res.Summary.LandPctGDV)
	_, _ = p.Fprintf(w, "Breakeven sale price | %s\n", res.Summary.BreakevenSalePrice)
	_, _ = p.Fprintf(w, "Absorption           | %.1f months\n", out.EstAbsorptionMonths)

	fmt.Fprintf(w, "\nViability\n")
	v := res.Viability
	for _, row := range []struct {
		label string
		score string
		state string
	}{
		{"Residual", v.Residual.Rating.Indicator(), v.Residual.Status},
		{"Land %", v.LandPct.Rating.Indicator(), v.LandPct.Status},
		{"Breakeven", v.Breakeven.Rating.Indicator(), v.Breakeven.Status},
		{"Overall", v.Overall.Rating.Indicator(), v.Overall.Status},
	} {
		fmt.Fprintf(w, "  %-10s %s %s\n", row.label, row.score, row.state)
	}

	s := res.Sensitivity
	fmt.Fprintf(w, "\nSensitivity\n")
	fmt.Fprintf(w, "  Base residual  %s\n", format.WholeCurrency(s.BaseResidual))
	fmt.Fprintf(w, "  Sales -10%%     %s (%s)\n", format.WholeCurrency(s.SalesDown10Pct), format.WholeCurrency(s.SalesImpact))
	fmt.Fprintf(w, "  Costs +10%%     %s (%s)\n", format.WholeCurrency(s.CostsUp10Pct), format.WholeCurrency(s.CostsImpact))

	if eval.Validation != nil && len(eval.Validation.Issues()) > 0 {
		fmt.Fprintf(w, "\n")
		PrettyValidation(w, eval.Validation)
	}

	if len(eval.MarketWarnings) > 0 {
		fmt.Fprintf(w, "\nMarket warnings\n")
		for _, warning := range eval.MarketWarnings {
			fmt.Fprintf(w, "  [%s] %s\n", warning.Field, warning.Message)
		}
	}
}

// PrettyValidation outputs the issues of a report grouped by severity.
func PrettyValidation(w io.Writer, report *validation.Report) {
	status := "valid"
	if !report.Valid() {
		status = "invalid"
	}
	fmt.Fprintf(w, "Validation: %s\n", status)

	for i := len(validation.Severities) - 1; i >= 0; i-- {
		sev := validation.Severities[i]
		for _, issue := range report.Issues() {
			if issue.Severity != sev {
				continue
			}
			fmt.Fprintf(w, "  %-8s %-32s %s\n", strings.ToUpper(sev.String()), issue.Code, issue.Message)
			if issue.Suggestion != "" {
				fmt.Fprintf(w, "           -> %s\n", issue.Suggestion)
			}
		}
	}
}

// PrettyBatch outputs one summary line per processed record.
func PrettyBatch(w io.Writer, result *batch.Result) {
	fmt.Fprintf(w, "--- Batch %s: %d succeeded, %d failed ---\n", result.RunID, result.Succeeded, result.Failed)
	fmt.Fprintf(w, "Site                           | Residual       | Land %%  | Breakeven  | Status\n")
	fmt.Fprintf(w, "____                           | ________       | ______  | _________  | ______\n")
	for _, record := range result.Records {
		name, _ := record.String(deal.FieldSiteName)
		status := deal.Cell(record[batch.FieldOverallStatus])
		if batch.Failed(record) {
			status = deal.Cell(record[batch.FieldProcessingStatus])
		}
		fmt.Fprintf(w, "%-30s | %-14s | %-7s | %-10s | %s\n",
			truncate(name, 30),
			deal.Cell(record["residual_land_value"]),
			deal.Cell(record["land_pct_gdv"]),
			deal.Cell(record["breakeven_sale_price"]),
			status,
		)
	}
}

// BatchCSV writes processed records as CSV, input columns first.
func BatchCSV(w io.Writer, records []deal.Record) error {
	return deal.WriteCSV(w, deal.Columns(nil, records), records)
}

// BatchCSVString renders BatchCSV into a string.
func BatchCSVString(records []deal.Record) (string, error) {
	var buf bytes.Buffer
	if err := BatchCSV(&buf, records); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PrettyMarket outputs a market summary.
func PrettyMarket(w io.Writer, s *market.Summary) {
	fmt.Fprintf(w, "--- Market %s (%s, %s) ---\n", s.Location, s.Country, s.Currency)
	fmt.Fprintf(w, "Land prices        | %s\n", s.LandPriceRange)
	fmt.Fprintf(w, "Sale prices        | %s\n", s.SalePriceRange)
	fmt.Fprintf(w, "Construction cost  | %s\n", s.ConstructionCostAvg)
	fmt.Fprintf(w, "Absorption         | %s\n", s.AbsorptionRate)
	fmt.Fprintf(w, "Typical land/GDV   | %s\n", s.TypicalLandGDV)
	fmt.Fprintf(w, "Market tier        | %d\n", s.MarketTier)
	fmt.Fprintf(w, "Demand             | %s\n", s.DemandStrength)
	fmt.Fprintf(w, "Confidence         | %s\n", s.DataConfidence)
	fmt.Fprintf(w, "Freshness          | %s\n", s.DataFreshness)
}

// PrettyComparison outputs per-square-meter metrics across deals.
func PrettyComparison(w io.Writer, c units.Comparison) {
	p := message.NewPrinter(language.English)
	fmt.Fprintf(w, "--- Comparison of %d deals ---\n", c.DealCount)
	fmt.Fprintf(w, "Site                           | Land/sqm     | GDV/sqm      | Margin\n")
	fmt.Fprintf(w, "____                           | ________     | _______      | ______\n")
	for _, d := range c.Deals {
		_, _ = p.Fprintf(w, "%-30s | %12.0f | %12.0f | %s\n",
			truncate(d.SiteName, 30), d.Metrics.LandCostPerArea, d.Metrics.GDVPerArea, format.Percent(d.Metrics.ProfitMarginPct, 1))
	}
	if c.DealCount > 0 {
		_, _ = p.Fprintf(w, "%-30s | %12.0f | %12.0f | %s\n",
			"Average", c.LandCostPsmAvg, c.GDVPsmAvg, format.Percent(c.ProfitMarginAvg, 1))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
