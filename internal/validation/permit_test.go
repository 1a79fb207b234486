package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermitRequirements(t *testing.T) {
	v := NewPermitValidator(testRules())

	tests := []struct {
		name   string
		gross  float64
		floors int
		want   []string
	}{
		{"small single floor", 300, 1, []string{"BUILDING_PERMIT_REQUIRED"}},
		{"three floors", 300, 3, []string{"BUILDING_PERMIT_REQUIRED", "FIRE_SAFETY_APPROVAL_REQUIRED"}},
		{"large area", 600, 1, []string{"BUILDING_PERMIT_REQUIRED", "FIRE_SAFETY_APPROVAL_REQUIRED"}},
		{"at environmental threshold", 1000, 2, []string{"BUILDING_PERMIT_REQUIRED", "FIRE_SAFETY_APPROVAL_REQUIRED"}},
		{"mid rise", 2700, 4, []string{
			"BUILDING_PERMIT_REQUIRED",
			"ENVIRONMENTAL_CLEARANCE_REQUIRED",
			"ELEVATOR_REQUIRED",
			"FIRE_SAFETY_APPROVAL_REQUIRED",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := v.Validate(PermitProposal{GrossBuildableSqm: tt.gross, Floors: tt.floors})
			assert.Equal(t, tt.want, report.Codes())
			assert.True(t, report.Valid())
		})
	}
}

func TestPermitElevatorMessage(t *testing.T) {
	report := NewPermitValidator(testRules()).Validate(PermitProposal{GrossBuildableSqm: 800, Floors: 5})

	for _, issue := range report.Issues() {
		if issue.Code == "ELEVATOR_REQUIRED" {
			assert.Equal(t, "Elevator required for 5-floor building", issue.Message)
			return
		}
	}
	t.Fatal("ELEVATOR_REQUIRED not reported")
}

func TestForeignOwnershipRestricted(t *testing.T) {
	report := NewPermitValidator(testRules()).Validate(PermitProposal{GrossBuildableSqm: 300, Floors: 1, ForeignOwnership: true})

	assert.False(t, report.Valid())
	critical := report.Critical()
	require.Len(t, critical, 1)
	assert.Equal(t, "FOREIGN_OWNERSHIP_RESTRICTED", critical[0].Code)
	assert.Equal(t, "Foreign ownership is not permitted in this jurisdiction", critical[0].Message)
	assert.Empty(t, report.Warnings())
}

func TestForeignOwnershipLimited(t *testing.T) {
	rs := testRules()
	rs.Country.ForeignOwnershipAllowed = true
	rs.Country.MaxForeignOwnershipPct = 0.49
	v := NewPermitValidator(rs)

	tests := []struct {
		name      string
		requested *float64
		warn      bool
	}{
		{"unstated share", nil, true},
		{"above cap", float(0.6), true},
		{"at cap", float(0.49), false},
		{"below cap", float(0.3), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := v.Validate(PermitProposal{GrossBuildableSqm: 300, Floors: 1, ForeignOwnership: true, ForeignOwnershipPct: tt.requested})
			assert.True(t, report.Valid())
			if !tt.warn {
				assert.Empty(t, report.Warnings())
				return
			}
			warnings := report.Warnings()
			require.Len(t, warnings, 1)
			assert.Equal(t, "FOREIGN_OWNERSHIP_LIMITED", warnings[0].Code)
			assert.Equal(t, "Foreign ownership limited to 49%", warnings[0].Message)
		})
	}
}

func TestForeignOwnershipUnrestricted(t *testing.T) {
	rs := testRules()
	rs.Country.ForeignOwnershipAllowed = true
	rs.Country.MaxForeignOwnershipPct = 1.0

	report := NewPermitValidator(rs).Validate(PermitProposal{GrossBuildableSqm: 300, Floors: 1, ForeignOwnership: true})

	assert.Equal(t, []string{"BUILDING_PERMIT_REQUIRED"}, report.Codes())
}
