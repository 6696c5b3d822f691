/*
Package disbursement provides the port disbursement (PDA) fee engine.

PURPOSE:
  Given vessel dimensions and voyage parameters, derives the volumetric
  coefficient (cv), applies a tariff profile of per-fee coefficients and
  produces itemized dues, agency charges, tax and totals. It also produces
  what-if totals at fixed overtime rates (25%, 50%, 100%).

KEY CONCEPTS IN THIS FILE (types.go):
  - FeeDefinition: One row of a tariff (coefficient + tax/mileage/leg tags)
  - AgencyFeeBracket: cv range mapped to a fixed agency fee
  - ComputedFee: One computed line item of a calculation
  - Inputs: Raw caller-supplied values (strings, as typed on a form)
  - Result: Line items, subtotals, tax and fixed-overtime projections

DESIGN PRINCIPLES:
  1. Precision: All amounts are decimal.Decimal, never float64
  2. Purity: A calculation is a function of Inputs + TariffProfile
  3. Explicit routing: Pilotage/Leg tags select mileage and overtime,
     fee names are display text only

USAGE:
  calc, err := disbursement.NewCalculator(ports.Standard())
  result, err := calc.Calculate(inputs)
  if err != nil {
      var bad *disbursement.InvalidInputError
      if errors.As(err, &bad) { ... bad.Field ... }
  }

SEE ALSO:
  - tariff.go: TariffProfile and validation
  - fee.go: Per-fee calculation rule
  - calculator.go: Instantiation and aggregation
  - projection.go: Fixed overtime projections
*/
package disbursement

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CATEGORY - Which subtotal a line item belongs to
// =============================================================================

type Category string

const (
	CategoryDues      Category = "dues"
	CategoryAgencyFee Category = "agency_fee"
)

// =============================================================================
// ROUTING TAGS - Replace name-based routing of mileage and overtime
// =============================================================================

// Pilotage selects which mileage pair (inward or outward pilotage) a fee uses.
type Pilotage string

const (
	PilotageNone    Pilotage = ""
	PilotageInward  Pilotage = "inward"
	PilotageOutward Pilotage = "outward"
)

// Leg selects which overtime selector (and mileage leg) a fee uses.
// LegNone means the fee never carries an overtime surcharge.
type Leg string

const (
	LegNone Leg = ""
	LegIn   Leg = "in"
	LegOut  Leg = "out"
)

// =============================================================================
// FEE DEFINITION - Static tariff row
// =============================================================================

// FeeDefinition describes how one tabled fee is derived from cv.
// Invariants (checked by TariffProfile.Validate):
//   - TaxIncluded implies TaxApplicable
//   - UsesMileage implies Pilotage and Leg are set
type FeeDefinition struct {
	Name          string
	Coefficient   decimal.Decimal
	TaxApplicable bool
	TaxIncluded   bool // coefficient already embeds the tax
	UsesMileage   bool
	Category      Category
	Pilotage      Pilotage
	Leg           Leg
}

// =============================================================================
// AGENCY FEE BRACKET - cv range -> fixed fee
// =============================================================================

// AgencyFeeBracket maps an inclusive cv range to a fixed agency fee.
// An invalid MaxCV means the bracket is open-ended (+inf).
type AgencyFeeBracket struct {
	MinCV decimal.Decimal
	MaxCV decimal.NullDecimal
	Fee   decimal.Decimal
}

// Contains reports whether cv lies within [MinCV, MaxCV].
func (b AgencyFeeBracket) Contains(cv decimal.Decimal) bool {
	if cv.LessThan(b.MinCV) {
		return false
	}
	return !b.MaxCV.Valid || cv.LessThanOrEqual(b.MaxCV.Decimal)
}

// Unbounded reports whether the bracket has no upper limit.
func (b AgencyFeeBracket) Unbounded() bool { return !b.MaxCV.Valid }

// =============================================================================
// COMPUTED FEE - One line item of a calculation
// =============================================================================

type ComputedFee struct {
	Name          string
	Category      Category
	TaxApplicable bool
	BaseAmount    decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
}

// =============================================================================
// INPUTS - Raw values supplied by the caller
// =============================================================================

// AdHocEntry is a manually entered line (additional due or fee).
type AdHocEntry struct {
	Name   string
	Amount string
}

// VesselDetails are free-text fields carried through to rendered documents.
// They take no part in the calculation.
type VesselDetails struct {
	VesselName  string
	VesselFlag  string
	Port        string
	CargoLoaded string
	CargoQty    string
	AccountName string
}

// Inputs holds the raw values of one calculation as the caller typed them.
// Numeric fields are parsed by the calculator so that failures can name
// the offending field.
type Inputs struct {
	LBP  string
	Beam string
	RDM  string

	MilesInwardIn   string
	MilesInwardOut  string
	MilesOutwardIn  string
	MilesOutwardOut string

	// Percent strings such as "25%". Unparseable values count as 0%.
	OvertimeIn  string
	OvertimeOut string

	AgencyFee   string
	BankCharges string

	AdditionalDues []AdHocEntry
	AdditionalFees []AdHocEntry

	Vessel VesselDetails
}

// DefaultInputs returns the values a blank form starts with.
func DefaultInputs() Inputs {
	return Inputs{
		MilesInwardIn:   "1",
		MilesInwardOut:  "1",
		MilesOutwardIn:  "14",
		MilesOutwardOut: "14",
		OvertimeIn:      "0%",
		OvertimeOut:     "0%",
		AgencyFee:       "0",
		BankCharges:     "190.00",
	}
}

// WithOvertime returns a copy of the inputs with both overtime selectors set
// to rate, rendered the way a caller would pick it ("25%").
// Ad-hoc slices are copied so the result shares nothing with the receiver.
func (in Inputs) WithOvertime(rate decimal.Decimal) Inputs {
	out := in
	out.AdditionalDues = append([]AdHocEntry(nil), in.AdditionalDues...)
	out.AdditionalFees = append([]AdHocEntry(nil), in.AdditionalFees...)
	pct := FormatPercent(rate)
	out.OvertimeIn = pct
	out.OvertimeOut = pct
	return out
}

// =============================================================================
// RESULT - Output of one calculation
// =============================================================================

// ProjectionTotals are the totals of a re-run at a fixed overtime rate.
type ProjectionTotals struct {
	Rate           decimal.Decimal
	DuesTotal      decimal.Decimal
	AgencyFeeTotal decimal.Decimal
	GrandTotal     decimal.Decimal
}

// Result is the full output of a calculation.
type Result struct {
	TariffID string

	// Parsed hull dimensions and the cv derived from them.
	LBP  decimal.Decimal
	Beam decimal.Decimal
	RDM  decimal.Decimal
	CV   decimal.Decimal

	// SuggestedAgencyFee is the bracket fee for CV. The agency fee line in
	// Fees always carries the manually entered amount.
	SuggestedAgencyFee decimal.Decimal

	Fees []ComputedFee

	SubtotalDues       decimal.Decimal
	SubtotalAgencyFees decimal.Decimal
	TotalTax           decimal.Decimal
	GrandTotal         decimal.Decimal

	// Projections are ordered by rate (25%, 50%, 100%).
	Projections []ProjectionTotals

	Vessel VesselDetails
}

// Projection returns the totals recorded for rate.
func (r *Result) Projection(rate decimal.Decimal) (ProjectionTotals, bool) {
	for _, p := range r.Projections {
		if p.Rate.Equal(rate) {
			return p, true
		}
	}
	return ProjectionTotals{}, false
}

// FeesIn returns the line items of one category, in calculation order.
func (r *Result) FeesIn(c Category) []ComputedFee {
	var out []ComputedFee
	for _, f := range r.Fees {
		if f.Category == c {
			out = append(out, f)
		}
	}
	return out
}
