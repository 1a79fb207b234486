package feasibility

import (
	"strings"

	"github.com/youssefawwad88/RealEstate/internal/deal"
	"github.com/youssefawwad88/RealEstate/internal/policy"
	"github.com/youssefawwad88/RealEstate/pkg/constants"
)

// withRuleDefaults returns a copy of r with blank soft cost, profit target
// and acquisition taxes taken from the country's rules. Present values are
// kept, including malformed ones, so deal validation still reports them.
// It also returns the names of the fields it filled.
func withRuleDefaults(rs *policy.RuleSet, r deal.Record) (deal.Record, []string) {
	out := r.Clone()
	var filled []string

	if !r.Has(deal.FieldSoftCostPct) {
		out[deal.FieldSoftCostPct] = rs.SoftCostPct()
		filled = append(filled, deal.FieldSoftCostPct)
	}
	if !r.Has(deal.FieldProfitTargetPct) {
		devType, ok := r.String(deal.FieldDevelopmentType)
		if !ok {
			devType = constants.DefaultDevelopmentType
		}
		out[deal.FieldProfitTargetPct] = rs.ProfitTarget(strings.ToLower(devType))
		filled = append(filled, deal.FieldProfitTargetPct)
	}
	if !r.Has(deal.FieldTaxesFees) {
		if price, err := r.Float(deal.FieldAskingPrice); err == nil && price != nil && *price > 0 {
			out[deal.FieldTaxesFees] = rs.Country.AcquisitionCosts(*price)
			filled = append(filled, deal.FieldTaxesFees)
		}
	}
	return out, filled
}
