package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoningFARExceeded(t *testing.T) {
	v := NewZoningValidator(testRules())

	report := v.Validate(ZoningProposal{
		ZoningCode:  "R1",
		LandAreaSqm: 1000,
		FAR:         2.5,
		Coverage:    0.4,
		Floors:      3,
	})

	assert.False(t, report.Valid())
	errs := report.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "FAR_EXCEEDED", errs[0].Code)
	assert.Equal(t, "far", errs[0].Field)
	assert.Equal(t, "FAR 2.50 exceeds maximum 2.00 for Residential 1", errs[0].Message)
	assert.Equal(t, "Reduce FAR to maximum 2.00", errs[0].Suggestion)
}

func TestZoningFARHigh(t *testing.T) {
	v := NewZoningValidator(testRules())

	tests := []struct {
		name string
		far  float64
		want []string
	}{
		{"comfortably below", 1.5, []string{"PARKING_REQUIREMENT"}},
		{"at ninety percent", 1.8, []string{"PARKING_REQUIREMENT"}},
		{"above ninety percent", 1.9, []string{"FAR_HIGH", "PARKING_REQUIREMENT"}},
		{"at maximum", 2.0, []string{"FAR_HIGH", "PARKING_REQUIREMENT"}},
		{"above maximum", 2.1, []string{"FAR_EXCEEDED", "PARKING_REQUIREMENT"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := v.Validate(ZoningProposal{ZoningCode: "R1", LandAreaSqm: 1000, FAR: tt.far, Coverage: 0.4, Floors: 3})
			assert.Equal(t, tt.want, report.Codes())
		})
	}
}

func TestZoningUnknownCode(t *testing.T) {
	v := NewZoningValidator(testRules())

	report := v.Validate(ZoningProposal{ZoningCode: "X9", LandAreaSqm: 1000, FAR: 9, Coverage: 1, Floors: 40})

	assert.False(t, report.Valid())
	require.Len(t, report.Issues(), 1)
	issue := report.Issues()[0]
	assert.Equal(t, "ZONING_NOT_FOUND", issue.Code)
	assert.Equal(t, "Zoning code 'X9' not found in TEST regulations", issue.Message)
	assert.Equal(t, "Available zones: C1, MU1, R1", issue.Suggestion)
}

func TestZoningCaseInsensitive(t *testing.T) {
	v := NewZoningValidator(testRules())

	report := v.Validate(ZoningProposal{ZoningCode: "r1", LandAreaSqm: 1000, FAR: 1.0, Coverage: 0.4, Floors: 3})

	assert.True(t, report.Valid())
}

func TestZoningIndependentChecks(t *testing.T) {
	v := NewZoningValidator(testRules())

	report := v.Validate(ZoningProposal{
		ZoningCode:  "R1",
		LandAreaSqm: 1000,
		FAR:         2.5,
		Coverage:    0.6,
		Floors:      7,
		HeightM:     float(25),
		Setbacks:    &Setbacks{Front: float(2), Side: float(3), Rear: float(1)},
	})

	assert.Equal(t, []string{
		"FAR_EXCEEDED",
		"COVERAGE_EXCEEDED",
		"FLOORS_EXCEEDED",
		"HEIGHT_EXCEEDED",
		"SETBACK_INSUFFICIENT",
		"SETBACK_INSUFFICIENT",
		"PARKING_REQUIREMENT",
	}, report.Codes())

	issues := report.Issues()
	assert.Equal(t, "Coverage 60.0% exceeds maximum 50.0%", issues[1].Message)
	assert.Equal(t, "max_floors", issues[2].Field)
	assert.Equal(t, "building_height_m", issues[3].Field)
	assert.Equal(t, "setback_front", issues[4].Field)
	assert.Equal(t, "Front setback 2m is less than required 5m", issues[4].Message)
	assert.Equal(t, "setback_rear", issues[5].Field)
}

func TestZoningSetbacksSkipUnrequired(t *testing.T) {
	v := NewZoningValidator(testRules())

	report := v.Validate(ZoningProposal{
		ZoningCode:  "C1",
		LandAreaSqm: 500,
		FAR:         1.0,
		Coverage:    0.5,
		Floors:      2,
		Setbacks:    &Setbacks{Front: float(0), Side: float(0), Rear: float(0)},
	})

	assert.True(t, report.Valid())
	assert.Equal(t, []string{"PARKING_REQUIREMENT"}, report.Codes())
}

func TestParkingMessages(t *testing.T) {
	v := NewZoningValidator(testRules())

	residential := v.Validate(ZoningProposal{ZoningCode: "R1", LandAreaSqm: 1000, FAR: 1.0, Coverage: 0.4, Floors: 3})
	require.Len(t, residential.Issues(), 1)
	parking := residential.Issues()[0]
	assert.Equal(t, Info, parking.Severity)
	assert.Equal(t, CategoryParking, parking.Category)
	// 1000 * 0.85 / 80 = 10.625 units * 1.5 = 15.9 spaces
	assert.Equal(t, "Estimated parking requirement: 16 spaces (1.5 per unit)", parking.Message)

	commercial := v.Validate(ZoningProposal{ZoningCode: "C1", LandAreaSqm: 1000, FAR: 1.0, Coverage: 0.4, Floors: 3})
	require.Len(t, commercial.Issues(), 1)
	assert.Equal(t, "Parking requirement: 2.5 spaces per 100 sqm GFA", commercial.Issues()[0].Message)

	none := v.Validate(ZoningProposal{ZoningCode: "R1", LandAreaSqm: 0, FAR: 1.0, Coverage: 0.4, Floors: 3})
	assert.Empty(t, none.Issues())
}

func TestMixedUse(t *testing.T) {
	v := NewZoningValidator(testRules())

	tests := []struct {
		name        string
		zone        string
		residential float64
		commercial  float64
		want        []string
	}{
		{"compliant", "MU1", 0.5, 0.3, nil},
		{"low residential", "MU1", 0.3, 0.3, []string{"INSUFFICIENT_RESIDENTIAL"}},
		{"low commercial", "MU1", 0.6, 0.1, []string{"INSUFFICIENT_COMMERCIAL"}},
		{"both low", "MU1", 0.1, 0.1, []string{"INSUFFICIENT_RESIDENTIAL", "INSUFFICIENT_COMMERCIAL"}},
		{"no minimums", "R1", 0, 0, nil},
		{"unknown zone", "ZZ", 0, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := v.ValidateMixedUse(tt.zone, tt.residential, tt.commercial)
			if tt.want == nil {
				assert.Empty(t, report.Issues())
				assert.True(t, report.Valid())
				return
			}
			assert.Equal(t, tt.want, report.Codes())
			assert.False(t, report.Valid())
		})
	}
}
