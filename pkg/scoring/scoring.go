// Package scoring classifies computed deal metrics into green/yellow/red
// ratings with fixed status labels.
package scoring

import (
	"github.com/youssefawwad88/RealEstate/pkg/constants"
	"github.com/youssefawwad88/RealEstate/pkg/residual"
)

// Rating is a traffic-light classification.
type Rating string

const (
	Green  Rating = "green"
	Yellow Rating = "yellow"
	Red    Rating = "red"
)

// Status labels paired with each rating.
const (
	StatusHealthyMargin  = "Healthy margin"
	StatusMarginal       = "Marginal"
	StatusOverBudget     = "Over budget"
	StatusWithinNorms    = "Within norms"
	StatusLowLandCost    = "Low land cost"
	StatusAboveAverage   = "Above average"
	StatusVeryLowLand    = "Very low land cost"
	StatusTooHigh        = "Too high"
	StatusGoodBuffer     = "Good buffer"
	StatusTightMargin    = "Tight margin"
	StatusHighRisk       = "High risk"
	StatusViable         = "Viable"
	StatusCaution        = "Caution"
	StatusProcessingFail = "Processing failed"
)

// Valid reports whether r is one of the three known ratings.
func (r Rating) Valid() bool {
	switch r {
	case Green, Yellow, Red:
		return true
	}
	return false
}

// Indicator returns the emoji used to display r.
func (r Rating) Indicator() string {
	switch r {
	case Green:
		return "✅"
	case Yellow:
		return "⚠️"
	case Red:
		return "❌"
	default:
		return "❓"
	}
}

// Score pairs a rating with its status label.
type Score struct {
	Rating Rating `json:"score"`
	Status string `json:"status"`
}

// Viability holds the three component scores and their aggregate.
type Viability struct {
	Residual  Score `json:"residual"`
	LandPct   Score `json:"land_pct"`
	Breakeven Score `json:"breakeven"`
	Overall   Score `json:"overall"`
}

// ScoreResidual compares the residual land value to the asking price.
func ScoreResidual(residualValue, askingPrice float64) Score {
	switch {
	case residualValue > askingPrice*constants.ResidualBuffer:
		return Score{Green, StatusHealthyMargin}
	case residualValue > askingPrice:
		return Score{Yellow, StatusMarginal}
	default:
		return Score{Red, StatusOverBudget}
	}
}

// ScoreLandPct rates the land share of GDV, given on a 0-100 scale.
func ScoreLandPct(landPctGDV float64) Score {
	switch {
	case landPctGDV >= constants.LandPctNormLow && landPctGDV <= constants.LandPctNormHigh:
		return Score{Green, StatusWithinNorms}
	case landPctGDV >= constants.LandPctLowFloor && landPctGDV < constants.LandPctNormLow:
		return Score{Green, StatusLowLandCost}
	case landPctGDV > constants.LandPctNormHigh && landPctGDV <= constants.LandPctCautionUp:
		return Score{Yellow, StatusAboveAverage}
	case landPctGDV < constants.LandPctLowFloor:
		return Score{Yellow, StatusVeryLowLand}
	default:
		return Score{Red, StatusTooHigh}
	}
}

// ScoreBreakeven rates breakeven as a share of market price, 0-100 scale.
func ScoreBreakeven(breakevenPctOfMarket float64) Score {
	switch {
	case breakevenPctOfMarket < constants.BreakevenGreenBelow:
		return Score{Green, StatusGoodBuffer}
	case breakevenPctOfMarket < constants.BreakevenYellowBelow:
		return Score{Yellow, StatusTightMargin}
	default:
		return Score{Red, StatusHighRisk}
	}
}

// Aggregate folds component scores: any red is red, otherwise more than one
// yellow is yellow, otherwise green.
func Aggregate(components ...Score) Score {
	var reds, yellows int
	for _, c := range components {
		switch c.Rating {
		case Red:
			reds++
		case Yellow:
			yellows++
		}
	}

	switch {
	case reds == 0 && yellows <= 1:
		return Score{Green, StatusViable}
	case reds == 0:
		return Score{Yellow, StatusCaution}
	default:
		return Score{Red, StatusHighRisk}
	}
}

// Evaluate scores a computed deal.
func Evaluate(askingPrice, expectedSalePrice float64, fin residual.FinancialResults, metrics residual.AcquisitionMetrics) Viability {
	v := Viability{
		Residual:  ScoreResidual(fin.ResidualLandValue, askingPrice),
		LandPct:   ScoreLandPct(metrics.LandPctGDV),
		Breakeven: ScoreBreakeven(residual.BreakevenPctOfMarket(metrics.BreakevenSalePrice, expectedSalePrice)),
	}
	v.Overall = Aggregate(v.Residual, v.LandPct, v.Breakeven)
	return v
}

// Failed is the viability attached to a record that could not be evaluated.
func Failed() Score {
	return Score{Red, StatusProcessingFail}
}
