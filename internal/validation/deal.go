package validation

import (
	"errors"
	"fmt"

	"github.com/youssefawwad88/RealEstate/internal/deal"
	"github.com/youssefawwad88/RealEstate/internal/policy"
	"github.com/youssefawwad88/RealEstate/pkg/constants"
)

// ValidateDeal runs every validator whose inputs are present in the record
// and merges their reports in order: zoning, mixed use, permits, financing.
// Values that cannot be coerced are reported as input errors.
func ValidateDeal(rs *policy.RuleSet, r deal.Record) *Report {
	report := NewReport()
	fields := fieldReader{record: r, report: report}

	land := fields.number(deal.FieldLandAreaSqm)
	far := fields.number(deal.FieldFAR)
	zoningCode, hasZoning := r.String(deal.FieldZoning)

	if hasZoning && land != nil {
		proposal := ZoningProposal{
			ZoningCode:  zoningCode,
			LandAreaSqm: *land,
			FAR:         valueOr(far, constants.DefaultProposedFAR),
			Coverage:    valueOr(fields.number(deal.FieldCoverage), constants.DefaultProposedCoverage),
			Floors:      intOr(fields.whole(deal.FieldMaxFloors), constants.DefaultMaxFloors),
			HeightM:     fields.number(deal.FieldBuildingHeightM),
		}
		front := fields.number(deal.FieldSetbackFront)
		side := fields.number(deal.FieldSetbackSide)
		rear := fields.number(deal.FieldSetbackRear)
		if front != nil || side != nil || rear != nil {
			proposal.Setbacks = &Setbacks{Front: front, Side: side, Rear: rear}
		}
		report.Merge(NewZoningValidator(rs).Validate(proposal))
	}

	residential := fields.number(deal.FieldResidentialPct)
	commercial := fields.number(deal.FieldCommercialPct)
	if hasZoning && (residential != nil || commercial != nil) {
		report.Merge(NewZoningValidator(rs).ValidateMixedUse(zoningCode, valueOr(residential, 0), valueOr(commercial, 0)))
	}

	foreign := fields.flag(deal.FieldForeignOwnership)
	if land != nil && far != nil {
		devType, _ := r.String(deal.FieldDevelopmentType)
		report.Merge(NewPermitValidator(rs).Validate(PermitProposal{
			GrossBuildableSqm:   *land * *far,
			Floors:              intOr(fields.whole(deal.FieldMaxFloors), constants.DefaultMaxFloors),
			ForeignOwnership:    foreign,
			ForeignOwnershipPct: fields.number(deal.FieldForeignOwnershipPct),
			DevelopmentType:     devType,
		}))
	}

	if ltv := fields.number(deal.FieldLTVRatio); ltv != nil {
		report.Merge(NewFinancingValidator(rs).Validate(FinancingProposal{
			LTVRatio:     *ltv,
			EquityPct:    1 - *ltv,
			ForeignBuyer: fields.flag(deal.FieldForeignBuyer),
		}))
	}

	return report
}

// fieldReader coerces record fields, reporting each bad field once.
type fieldReader struct {
	record   deal.Record
	report   *Report
	reported map[string]bool
}

func (f *fieldReader) number(key string) *float64 {
	v, err := f.record.Float(key)
	if err != nil {
		f.invalid(key, err)
		return nil
	}
	return v
}

func (f *fieldReader) whole(key string) *int {
	v, err := f.record.Int(key)
	if err != nil {
		f.invalid(key, err)
		return nil
	}
	return v
}

func (f *fieldReader) flag(key string) bool {
	v, _, err := f.record.Bool(key)
	if err != nil {
		f.invalid(key, err)
		return false
	}
	return v
}

func (f *fieldReader) invalid(key string, err error) {
	if f.reported[key] {
		return
	}
	if f.reported == nil {
		f.reported = make(map[string]bool)
	}
	f.reported[key] = true

	message := err.Error()
	var verr *deal.ValidationError
	if errors.As(err, &verr) {
		message = fmt.Sprintf("%s %s", verr.Field, verr.Message)
	}
	f.report.Add(Issue{
		Severity: Error,
		Category: CategoryInput,
		Code:     "INVALID_VALUE",
		Message:  message,
		Field:    key,
		Value:    f.record[key],
	})
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
