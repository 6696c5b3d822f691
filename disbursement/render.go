/*
render.go - What renderers receive from a Result

PURPOSE:
  The contract between the engine and its collaborators (screens,
  spreadsheet templates, the FDA revision). Renderers only ever see
  formatted strings built here, never raw arithmetic.

CONTRACT:
  Line:         (name, tax or "-", total) for every fee
  Placeholders: "{{token}}" -> formatted value, for template substitution
  FDA:          PDA items re-entered with final amounts, plus totals

PLACEHOLDER TOKENS:
  {{cv}} {{lbp}} {{beam}} {{rdm}}
  {{enter_port}} {{vessel_name}} {{vessel_flag}} {{cargo_loaded}}
  {{cargo_qtty}} {{Account_name}}
  {{subtotal_dues}} {{subtotal_agfee}} {{total}} {{total_vat}}
  {{agency_fee}} {{bank_charges}}
  {{total_fee_N_ot}} {{total_agency_fee_N_ot}} {{grand_total_N_ot}}
  for N in 25, 50, 100

SEE ALSO:
  - format.go: Amount formatting
  - api/handlers.go: Serves these shapes as JSON
*/
package disbursement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxNotApplicable is shown in the tax column of a line without tax.
const TaxNotApplicable = "-"

// =============================================================================
// DISPLAY LINES
// =============================================================================

// Line is the display triple every renderer depends on.
type Line struct {
	Name     string
	Category Category
	Tax      string
	Total    string
}

// Line renders one fee. Lines with no positive tax show TaxNotApplicable.
func (f ComputedFee) Line(fm Formatter) Line {
	tax := TaxNotApplicable
	if f.TaxApplicable && f.TaxAmount.IsPositive() {
		tax = fm.Amount(f.TaxAmount)
	}
	return Line{Name: f.Name, Category: f.Category, Tax: tax, Total: fm.Amount(f.TotalAmount)}
}

// Lines renders every fee in calculation order.
func (r *Result) Lines(fm Formatter) []Line {
	out := make([]Line, len(r.Fees))
	for i, f := range r.Fees {
		out[i] = f.Line(fm)
	}
	return out
}

// DuesLines renders only the dues (tabled and additional).
func (r *Result) DuesLines(fm Formatter) []Line { return r.linesIn(CategoryDues, fm) }

// AgencyLines renders agency fee, bank charges and additional fees.
func (r *Result) AgencyLines(fm Formatter) []Line { return r.linesIn(CategoryAgencyFee, fm) }

func (r *Result) linesIn(c Category, fm Formatter) []Line {
	fees := r.FeesIn(c)
	out := make([]Line, len(fees))
	for i, f := range fees {
		out[i] = f.Line(fm)
	}
	return out
}

// =============================================================================
// TEMPLATE PLACEHOLDERS
// =============================================================================

// Placeholder wraps a token name as it appears in templates.
func Placeholder(token string) string { return "{{" + token + "}}" }

// Placeholders returns the template substitutions for the result.
func (r *Result) Placeholders(fm Formatter) map[string]string {
	m := map[string]string{
		Placeholder("cv"):             fm.Amount(r.CV),
		Placeholder("lbp"):            fm.Amount(r.LBP),
		Placeholder("beam"):           fm.Amount(r.Beam),
		Placeholder("rdm"):            fm.Amount(r.RDM),
		Placeholder("enter_port"):     r.Vessel.Port,
		Placeholder("vessel_name"):    r.Vessel.VesselName,
		Placeholder("vessel_flag"):    r.Vessel.VesselFlag,
		Placeholder("cargo_loaded"):   r.Vessel.CargoLoaded,
		Placeholder("cargo_qtty"):     r.Vessel.CargoQty,
		Placeholder("Account_name"):   r.Vessel.AccountName,
		Placeholder("subtotal_dues"):  fm.Amount(r.SubtotalDues),
		Placeholder("subtotal_agfee"): fm.Amount(r.SubtotalAgencyFees),
		Placeholder("total"):          fm.Amount(r.GrandTotal),
		Placeholder("total_vat"):      fm.Amount(r.TotalTax),
	}
	for _, f := range r.Fees {
		switch f.Name {
		case AgencyFeeName:
			m[Placeholder("agency_fee")] = fm.Amount(f.TotalAmount)
		case BankChargesName:
			m[Placeholder("bank_charges")] = fm.Amount(f.TotalAmount)
		}
	}
	for _, p := range r.Projections {
		pct := p.Rate.Mul(hundred).IntPart()
		m[Placeholder(fmt.Sprintf("total_fee_%d_ot", pct))] = fm.Amount(p.DuesTotal)
		m[Placeholder(fmt.Sprintf("total_agency_fee_%d_ot", pct))] = fm.Amount(p.AgencyFeeTotal)
		m[Placeholder(fmt.Sprintf("grand_total_%d_ot", pct))] = fm.Amount(p.GrandTotal)
	}
	return m
}

// Substitute replaces every placeholder in text.
func Substitute(text string, placeholders map[string]string) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	pairs := make([]string, 0, 2*len(placeholders))
	for k, v := range placeholders {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// =============================================================================
// FDA REVISION - Final account built from the PDA items
// =============================================================================

// Item is one PDA line handed to the FDA revision.
type Item struct {
	Name     string
	Category Category
	Amount   decimal.Decimal
}

// Items lists every fee with its total, in calculation order.
func (r *Result) Items() []Item {
	out := make([]Item, len(r.Fees))
	for i, f := range r.Fees {
		out[i] = Item{Name: f.Name, Category: f.Category, Amount: f.TotalAmount}
	}
	return out
}

// FDALine compares the proforma amount with the final one.
type FDALine struct {
	Name       string
	Category   Category
	PDAAmount  decimal.Decimal
	FDAAmount  decimal.Decimal
	Difference decimal.Decimal
}

// FDA is the final disbursement account.
type FDA struct {
	Lines              []FDALine
	SubtotalDues       decimal.Decimal
	SubtotalAgencyFees decimal.Decimal
	GrandTotal         decimal.Decimal
	PDATotal           decimal.Decimal
	Difference         decimal.Decimal
}

// ReviseFDA applies final amounts (keyed by fee name) to the PDA items.
// Every item needs an amount: an absent or blank one fails with
// MissingRequiredFieldError, an unparseable one with InvalidInputError.
// Items sharing a name take the same final amount.
func ReviseFDA(items []Item, finals map[string]string) (*FDA, error) {
	fda := &FDA{
		Lines:              make([]FDALine, 0, len(items)),
		SubtotalDues:       decimal.Zero,
		SubtotalAgencyFees: decimal.Zero,
		PDATotal:           decimal.Zero,
	}
	for _, it := range items {
		raw, ok := finals[it.Name]
		if !ok || strings.TrimSpace(raw) == "" {
			return nil, &MissingRequiredFieldError{Field: it.Name}
		}
		amount, err := ParseAmount(it.Name, raw)
		if err != nil {
			return nil, err
		}
		fda.Lines = append(fda.Lines, FDALine{
			Name:       it.Name,
			Category:   it.Category,
			PDAAmount:  it.Amount,
			FDAAmount:  amount,
			Difference: amount.Sub(it.Amount),
		})
		switch it.Category {
		case CategoryDues:
			fda.SubtotalDues = fda.SubtotalDues.Add(amount)
		case CategoryAgencyFee:
			fda.SubtotalAgencyFees = fda.SubtotalAgencyFees.Add(amount)
		}
		fda.PDATotal = fda.PDATotal.Add(it.Amount)
	}
	fda.GrandTotal = fda.SubtotalDues.Add(fda.SubtotalAgencyFees)
	fda.Difference = fda.GrandTotal.Sub(fda.PDATotal)
	return fda, nil
}

// Placeholders maps "{{<fee name>}}" to the final amount, plus the totals.
func (f *FDA) Placeholders(fm Formatter) map[string]string {
	m := make(map[string]string, len(f.Lines)+3)
	for _, l := range f.Lines {
		m[Placeholder(l.Name)] = fm.Amount(l.FDAAmount)
	}
	m[Placeholder("subtotal_dues")] = fm.Amount(f.SubtotalDues)
	m[Placeholder("subtotal_agfee")] = fm.Amount(f.SubtotalAgencyFees)
	m[Placeholder("total")] = fm.Amount(f.GrandTotal)
	return m
}
