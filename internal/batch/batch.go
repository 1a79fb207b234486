// Package batch evaluates many deal records, isolating per-record failures.
package batch

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/youssefawwad88/RealEstate/internal/deal"
	"github.com/youssefawwad88/RealEstate/pkg/constants"
	"github.com/youssefawwad88/RealEstate/pkg/residual"
	"github.com/youssefawwad88/RealEstate/pkg/scoring"
	"go.uber.org/zap"
)

// Annotation field names added to every processed record.
const (
	FieldProcessingStatus = "processing_status"
	FieldOverallScore     = "overall_score"
	FieldOverallStatus    = "overall_status"

	FieldResidualNum  = "residual_land_value_num"
	FieldLandPctNum   = "land_pct_gdv_num"
	FieldBreakevenNum = "breakeven_sale_price_num"
)

// MarketSource supplies absorption benchmarks per location. *market.Adapter
// satisfies it.
type MarketSource interface {
	AbsorptionBenchmark(location string) *residual.MarketBenchmark
}

// Result is the outcome of one batch run. Records are in input order.
type Result struct {
	RunID     string        `json:"run_id"`
	Records   []deal.Record `json:"records"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Processor evaluates records sequentially.
type Processor struct {
	market MarketSource
	logger *zap.Logger
}

// NewProcessor creates a processor. market may be nil.
func NewProcessor(market MarketSource, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{market: market, logger: logger}
}

// Process evaluates every record. A failing record is annotated with an
// error status and a red viability; it never stops the batch. Input
// records are not modified.
func (p *Processor) Process(records []deal.Record) Result {
	start := time.Now()
	result := Result{
		RunID:   uuid.NewString(),
		Records: make([]deal.Record, len(records)),
	}
	logger := p.logger.With(zap.String("run_id", result.RunID))

	for i, record := range records {
		out, err := p.processOne(record)
		if err != nil {
			logger.Warn("record failed",
				zap.String("op", "batch.Process"),
				zap.Int("index", i),
				zap.Error(err))
			out = failed(record, err)
			result.Failed++
		} else {
			result.Succeeded++
		}
		result.Records[i] = out
	}

	result.Duration = time.Since(start)
	logger.Info("batch processed",
		zap.String("op", "batch.Process"),
		zap.Int("records", len(records)),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", result.Duration))
	return result
}

func (p *Processor) processOne(record deal.Record) (out deal.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	var benchmark *residual.MarketBenchmark
	if p.market != nil {
		location, _ := record.String(deal.FieldLocation)
		benchmark = p.market.AbsorptionBenchmark(location)
	}

	d, err := deal.Create(record, benchmark)
	if err != nil {
		return nil, err
	}
	summary, err := d.Summary()
	if err != nil {
		return nil, err
	}
	outputs, err := d.Outputs()
	if err != nil {
		return nil, err
	}

	out = record.Clone()
	for k, v := range summary.Record() {
		out[k] = v
	}
	out[FieldResidualNum] = outputs.ResidualLandValue
	out[FieldLandPctNum] = outputs.LandPctGDV
	out[FieldBreakevenNum] = outputs.BreakevenSalePrice
	out[FieldProcessingStatus] = constants.StatusSuccess
	return out, nil
}

func failed(record deal.Record, err error) deal.Record {
	out := record.Clone()
	score := scoring.Failed()
	out[FieldProcessingStatus] = constants.StatusErrorPrefix + err.Error()
	out[FieldOverallScore] = string(score.Rating)
	out[FieldOverallStatus] = score.Status
	return out
}

// Failed reports whether a processed record carries an error status.
func Failed(record deal.Record) bool {
	status, _ := record.String(FieldProcessingStatus)
	return status != constants.StatusSuccess
}
