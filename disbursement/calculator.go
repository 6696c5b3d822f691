/*
calculator.go - Fee instantiation and aggregation

PURPOSE:
  Turns one set of Inputs into a Result using a TariffProfile:
  1. Parse every required field (nothing is computed if one fails)
  2. Derive cv = ceil(lbp * beam * rdm)
  3. Compute every tabled fee, routing mileage and overtime by tags
  4. Append manual lines (additional dues, agency fee, bank charges,
     additional fees) with their amounts taken verbatim
  5. Aggregate subtotals by category, tax and grand total
  6. Re-run 1-5 at each fixed overtime rate (projection.go)

ROUTING:
  Leg In  -> overtime-in selector     Pilotage Inward  + Leg In  -> miles_inward_in
  Leg Out -> overtime-out selector    Pilotage Inward  + Leg Out -> miles_inward_out
  Leg None -> no overtime             Pilotage Outward + Leg In  -> miles_outward_in
                                      Pilotage Outward + Leg Out -> miles_outward_out

PURITY:
  A Calculator holds only its validated profile. Calculate has no side
  effects and returns identical results for identical inputs, so one
  Calculator may serve concurrent callers.

SEE ALSO:
  - fee.go: The per-fee rule
  - projection.go: Fixed overtime re-runs
  - fields.go: Building Inputs from flat key/value maps
*/
package disbursement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Names of the manual agency lines.
const (
	AgencyFeeName   = "Agency fee"
	BankChargesName = "Bank charges"
)

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator computes disbursement accounts for one tariff profile.
type Calculator struct {
	profile TariffProfile
}

// NewCalculator validates the profile and returns a calculator bound to it.
func NewCalculator(profile TariffProfile) (*Calculator, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	profile.Dues = append([]FeeDefinition(nil), profile.Dues...)
	profile.Brackets = append([]AgencyFeeBracket(nil), profile.Brackets...)
	return &Calculator{profile: profile}, nil
}

// Profile returns the profile the calculator was built with.
func (c *Calculator) Profile() TariffProfile { return c.profile }

// CV derives the volumetric coefficient from the hull dimensions.
func (c *Calculator) CV(in Inputs) (decimal.Decimal, error) {
	h, err := parseHull(in)
	if err != nil {
		return decimal.Zero, err
	}
	return h.cv(), nil
}

type hull struct {
	lbp, beam, rdm decimal.Decimal
}

func parseHull(in Inputs) (hull, error) {
	var (
		h   hull
		err error
	)
	if h.lbp, err = ParseAmount(FieldLBP, in.LBP); err != nil {
		return hull{}, err
	}
	if h.beam, err = ParseAmount(FieldBeam, in.Beam); err != nil {
		return hull{}, err
	}
	if h.rdm, err = ParseAmount(FieldRDM, in.RDM); err != nil {
		return hull{}, err
	}
	return h, nil
}

// cv is ceil(lbp * beam * rdm), rounding toward +inf.
func (h hull) cv() decimal.Decimal {
	return h.lbp.Mul(h.beam).Mul(h.rdm).Ceil()
}

// Quote is the cv of a vessel and the bracket agency fee it falls into.
type Quote struct {
	CV           decimal.Decimal
	AgencyFee    decimal.Decimal
	BracketIndex int
}

// Quote derives cv and looks up the agency fee without computing any dues.
func (c *Calculator) Quote(in Inputs) (Quote, error) {
	cv, err := c.CV(in)
	if err != nil {
		return Quote{}, err
	}
	b, idx, err := c.profile.Bracket(cv)
	if err != nil {
		return Quote{}, err
	}
	return Quote{CV: cv, AgencyFee: b.Fee, BracketIndex: idx}, nil
}

// Calculate runs the full calculation including fixed overtime projections.
func (c *Calculator) Calculate(in Inputs) (*Result, error) {
	result, err := c.compute(in)
	if err != nil {
		return nil, err
	}
	projections, err := c.Project(in)
	if err != nil {
		return nil, err
	}
	result.Projections = projections
	return result, nil
}

// =============================================================================
// SINGLE RUN
// =============================================================================

// parsedInputs holds every numeric value of a run, parsed up front.
type parsedInputs struct {
	hull        hull
	cv          decimal.Decimal
	miles       map[mileageKey]decimal.Decimal
	overtimeIn  decimal.Decimal
	overtimeOut decimal.Decimal
	agencyFee   decimal.Decimal
	bankCharges decimal.Decimal
	dues        []parsedEntry
	fees        []parsedEntry
}

type mileageKey struct {
	pilotage Pilotage
	leg      Leg
}

type parsedEntry struct {
	name   string
	amount decimal.Decimal
}

func (c *Calculator) parse(in Inputs) (*parsedInputs, error) {
	h, err := parseHull(in)
	if err != nil {
		return nil, err
	}
	p := &parsedInputs{hull: h, cv: h.cv(), miles: make(map[mileageKey]decimal.Decimal, 4)}

	for _, m := range []struct {
		field string
		raw   string
		key   mileageKey
	}{
		{FieldMilesInwardIn, in.MilesInwardIn, mileageKey{PilotageInward, LegIn}},
		{FieldMilesInwardOut, in.MilesInwardOut, mileageKey{PilotageInward, LegOut}},
		{FieldMilesOutwardIn, in.MilesOutwardIn, mileageKey{PilotageOutward, LegIn}},
		{FieldMilesOutwardOut, in.MilesOutwardOut, mileageKey{PilotageOutward, LegOut}},
	} {
		miles, err := ParseCount(m.field, m.raw)
		if err != nil {
			return nil, err
		}
		p.miles[m.key] = miles
	}

	p.overtimeIn, _ = ParseOvertime(in.OvertimeIn)
	p.overtimeOut, _ = ParseOvertime(in.OvertimeOut)

	if p.agencyFee, err = ParseAmount(FieldAgencyFee, in.AgencyFee); err != nil {
		return nil, err
	}
	if p.bankCharges, err = ParseAmount(FieldBankCharges, in.BankCharges); err != nil {
		return nil, err
	}
	if p.dues, err = parseEntries(FieldAdditionalDues, in.AdditionalDues); err != nil {
		return nil, err
	}
	if p.fees, err = parseEntries(FieldAdditionalFees, in.AdditionalFees); err != nil {
		return nil, err
	}
	return p, nil
}

func parseEntries(list string, entries []AdHocEntry) ([]parsedEntry, error) {
	out := make([]parsedEntry, 0, len(entries))
	for i, e := range entries {
		prefix := fmt.Sprintf("%s[%d]", list, i)
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, &MissingRequiredFieldError{Field: prefix + ".name"}
		}
		if strings.TrimSpace(e.Amount) == "" {
			return nil, &MissingRequiredFieldError{Field: prefix + ".amount"}
		}
		amount, err := ParseAmount(prefix+".amount", e.Amount)
		if err != nil {
			return nil, err
		}
		out = append(out, parsedEntry{name: name, amount: amount})
	}
	return out, nil
}

// compute is one pure run of parse -> fees -> totals, without projections.
func (c *Calculator) compute(in Inputs) (*Result, error) {
	p, err := c.parse(in)
	if err != nil {
		return nil, err
	}
	suggested, err := c.profile.AgencyFee(p.cv)
	if err != nil {
		return nil, err
	}

	taxRate := c.profile.taxRate()
	fees := make([]ComputedFee, 0, len(c.profile.Dues)+len(p.dues)+2+len(p.fees))

	for _, d := range c.profile.Dues {
		miles := one
		if d.UsesMileage {
			miles = p.miles[mileageKey{d.Pilotage, d.Leg}]
		}
		fees = append(fees, d.Compute(p.cv, miles, p.overtimeFor(d.Leg), taxRate))
	}

	for _, e := range p.dues {
		fees = append(fees, manualFee(e.name, CategoryDues, e.amount))
	}
	fees = append(fees,
		manualFee(AgencyFeeName, CategoryAgencyFee, p.agencyFee),
		manualFee(BankChargesName, CategoryAgencyFee, p.bankCharges),
	)
	for _, e := range p.fees {
		fees = append(fees, manualFee(e.name, CategoryAgencyFee, e.amount))
	}

	result := &Result{
		TariffID:           c.profile.ID,
		LBP:                p.hull.lbp,
		Beam:               p.hull.beam,
		RDM:                p.hull.rdm,
		CV:                 p.cv,
		SuggestedAgencyFee: suggested,
		Fees:               fees,
		Vessel:             in.Vessel,
	}
	result.aggregate()
	return result, nil
}

func (p *parsedInputs) overtimeFor(leg Leg) decimal.Decimal {
	switch leg {
	case LegIn:
		return p.overtimeIn
	case LegOut:
		return p.overtimeOut
	default:
		return decimal.Zero
	}
}

// =============================================================================
// AGGREGATION
// =============================================================================

func (r *Result) aggregate() {
	r.SubtotalDues = decimal.Zero
	r.SubtotalAgencyFees = decimal.Zero
	r.TotalTax = decimal.Zero

	for _, f := range r.Fees {
		switch f.Category {
		case CategoryDues:
			r.SubtotalDues = r.SubtotalDues.Add(f.TotalAmount)
		case CategoryAgencyFee:
			r.SubtotalAgencyFees = r.SubtotalAgencyFees.Add(f.TotalAmount)
		}
		if f.TaxApplicable {
			r.TotalTax = r.TotalTax.Add(f.TaxAmount)
		}
	}
	r.GrandTotal = r.SubtotalDues.Add(r.SubtotalAgencyFees)
}
