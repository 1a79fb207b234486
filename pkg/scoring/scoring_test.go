package scoring

import (
	"testing"

	"github.com/youssefawwad88/RealEstate/pkg/residual"
)

func TestScoreResidual(t *testing.T) {
	tests := []struct {
		name     string
		residual float64
		asking   float64
		expected Score
	}{
		{"Above buffer", 861840, 750000, Score{Green, StatusHealthyMargin}},
		{"At buffer is marginal", 825000, 750000, Score{Yellow, StatusMarginal}},
		{"Just above asking", 760000, 750000, Score{Yellow, StatusMarginal}},
		{"Equal to asking", 750000, 750000, Score{Red, StatusOverBudget}},
		{"Negative residual", -50000, 750000, Score{Red, StatusOverBudget}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreResidual(tt.residual, tt.asking); got != tt.expected {
				t.Errorf("ScoreResidual(%v, %v) = %+v, expected %+v", tt.residual, tt.asking, got, tt.expected)
			}
		})
	}
}

func TestScoreLandPct(t *testing.T) {
	tests := []struct {
		name     string
		pct      float64
		expected Score
	}{
		{"Lower norm bound", 15, Score{Green, StatusWithinNorms}},
		{"Mid norm", 20, Score{Green, StatusWithinNorms}},
		{"Upper norm bound", 25, Score{Green, StatusWithinNorms}},
		{"Low land cost", 12, Score{Green, StatusLowLandCost}},
		{"Low land cost floor", 10, Score{Green, StatusLowLandCost}},
		{"Above average", 28, Score{Yellow, StatusAboveAverage}},
		{"Above average cap", 30, Score{Yellow, StatusAboveAverage}},
		{"Very low", 8.68, Score{Yellow, StatusVeryLowLand}},
		{"Zero", 0, Score{Yellow, StatusVeryLowLand}},
		{"Too high", 30.01, Score{Red, StatusTooHigh}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreLandPct(tt.pct); got != tt.expected {
				t.Errorf("ScoreLandPct(%v) = %+v, expected %+v", tt.pct, got, tt.expected)
			}
		})
	}
}

func TestScoreBreakeven(t *testing.T) {
	tests := []struct {
		name     string
		pct      float64
		expected Score
	}{
		{"Good buffer", 70, Score{Green, StatusGoodBuffer}},
		{"Boundary 80 is tight", 80, Score{Yellow, StatusTightMargin}},
		{"Tight", 81.18, Score{Yellow, StatusTightMargin}},
		{"Boundary 85 is high risk", 85, Score{Red, StatusHighRisk}},
		{"Above market", 120, Score{Red, StatusHighRisk}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreBreakeven(tt.pct); got != tt.expected {
				t.Errorf("ScoreBreakeven(%v) = %+v, expected %+v", tt.pct, got, tt.expected)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	g := Score{Rating: Green}
	y := Score{Rating: Yellow}
	r := Score{Rating: Red}

	tests := []struct {
		name       string
		components []Score
		expected   Score
	}{
		{"All green", []Score{g, g, g}, Score{Green, StatusViable}},
		{"One yellow", []Score{g, y, g}, Score{Green, StatusViable}},
		{"Two yellows", []Score{y, y, g}, Score{Yellow, StatusCaution}},
		{"Three yellows", []Score{y, y, y}, Score{Yellow, StatusCaution}},
		{"One red", []Score{g, g, r}, Score{Red, StatusHighRisk}},
		{"Red and yellow", []Score{r, y, g}, Score{Red, StatusHighRisk}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(tt.components...); got != tt.expected {
				t.Errorf("Aggregate() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestAggregateNeverGreenWithRed(t *testing.T) {
	ratings := []Rating{Green, Yellow, Red}
	for _, a := range ratings {
		for _, b := range ratings {
			for _, c := range ratings {
				got := Aggregate(Score{Rating: a}, Score{Rating: b}, Score{Rating: c})
				hasRed := a == Red || b == Red || c == Red
				if hasRed && got.Rating == Green {
					t.Errorf("Aggregate(%s, %s, %s) is green despite a red component", a, b, c)
				}
			}
		}
	}
}

func TestEvaluate(t *testing.T) {
	fin := residual.FinancialResults{ResidualLandValue: 861840}
	metrics := residual.AcquisitionMetrics{
		LandPctGDV:         787500.0 / 9072000.0 * 100,
		BreakevenSalePrice: 7364700.0 / 2160.0,
	}

	got := Evaluate(750000, 4200, fin, metrics)

	if got.Residual != (Score{Green, StatusHealthyMargin}) {
		t.Errorf("Residual = %+v", got.Residual)
	}
	if got.LandPct != (Score{Yellow, StatusVeryLowLand}) {
		t.Errorf("LandPct = %+v", got.LandPct)
	}
	if got.Breakeven != (Score{Yellow, StatusTightMargin}) {
		t.Errorf("Breakeven = %+v", got.Breakeven)
	}
	if got.Overall != (Score{Yellow, StatusCaution}) {
		t.Errorf("Overall = %+v", got.Overall)
	}
}

func TestEvaluateZeroMarketPrice(t *testing.T) {
	got := Evaluate(100, 0, residual.FinancialResults{ResidualLandValue: 1000}, residual.AcquisitionMetrics{LandPctGDV: 20})
	if got.Breakeven.Rating != Red {
		t.Errorf("Breakeven with zero market price = %+v, expected red", got.Breakeven)
	}
}

func TestIndicator(t *testing.T) {
	tests := []struct {
		rating   Rating
		expected string
	}{
		{Green, "✅"},
		{Yellow, "⚠️"},
		{Red, "❌"},
		{Rating("blue"), "❓"},
	}
	for _, tt := range tests {
		if got := tt.rating.Indicator(); got != tt.expected {
			t.Errorf("%q.Indicator() = %q, expected %q", tt.rating, got, tt.expected)
		}
	}
	if Rating("blue").Valid() {
		t.Error("unknown rating reported valid")
	}
}
