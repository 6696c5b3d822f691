/*
tariff.go - Tariff profiles (coefficient table + agency fee brackets)

PURPOSE:
  A TariffProfile is the complete, immutable set of port-specific data a
  calculation needs: the fee coefficient table, the agency fee brackets and
  the tax rate. Profiles are injected into the Calculator at construction
  time, so a second port is a second profile, not a code change.

INVARIANTS (enforced by Validate):
  - Profile has an ID and at least one fee definition
  - Fee names are unique and non-empty
  - TaxIncluded implies TaxApplicable
  - UsesMileage implies both Pilotage and Leg are set
  - Brackets start at cv 0, are contiguous over whole cv values
    (next.MinCV == prev.MaxCV + 1) and the last one is open-ended

BRACKET LOOKUP:
  Both ends of a bracket are inclusive. Because cv is always a whole
  number, contiguous integer brackets cover [0, +inf) completely.

SEE ALSO:
  - ports/: Built-in profiles
  - factory/tariff.go: JSON/YAML documents for profiles
*/
package disbursement

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the VAT rate applied to tax-applicable fees.
var DefaultTaxRate = decimal.RequireFromString("0.20")

// TariffProfile is a named, port-specific set of fee tables.
type TariffProfile struct {
	ID       string
	Name     string
	Port     string
	TaxRate  decimal.Decimal
	Dues     []FeeDefinition
	Brackets []AgencyFeeBracket
}

// Validate checks the profile invariants. A profile that passes is safe to
// share between calculations.
func (p *TariffProfile) Validate() error {
	if p.ID == "" {
		return &ProfileError{Reason: "id is required"}
	}
	if len(p.Dues) == 0 {
		return &ProfileError{ProfileID: p.ID, Reason: "no fee definitions"}
	}
	if p.TaxRate.IsNegative() {
		return &ProfileError{ProfileID: p.ID, Reason: "tax rate must not be negative"}
	}

	seen := make(map[string]bool, len(p.Dues))
	for _, d := range p.Dues {
		if d.Name == "" {
			return &ProfileError{ProfileID: p.ID, Reason: "fee definition without a name"}
		}
		if seen[d.Name] {
			return &ProfileError{ProfileID: p.ID, Reason: fmt.Sprintf("duplicate fee %q", d.Name)}
		}
		seen[d.Name] = true

		if d.Coefficient.IsNegative() {
			return &ProfileError{ProfileID: p.ID, Reason: fmt.Sprintf("fee %q: negative coefficient", d.Name)}
		}
		if d.TaxIncluded && !d.TaxApplicable {
			return &ProfileError{ProfileID: p.ID, Reason: fmt.Sprintf("fee %q: tax included but not applicable", d.Name)}
		}
		if d.UsesMileage && (d.Pilotage == PilotageNone || d.Leg == LegNone) {
			return &ProfileError{ProfileID: p.ID, Reason: fmt.Sprintf("fee %q: mileage fee needs pilotage and leg", d.Name)}
		}
		if d.Category != CategoryDues {
			return &ProfileError{ProfileID: p.ID, Reason: fmt.Sprintf("fee %q: tabled fees must be dues", d.Name)}
		}
	}

	return p.validateBrackets()
}

func (p *TariffProfile) validateBrackets() error {
	if len(p.Brackets) == 0 {
		return &ProfileError{ProfileID: p.ID, Reason: "no agency fee brackets"}
	}
	if !p.Brackets[0].MinCV.IsZero() {
		return &ProfileError{ProfileID: p.ID, Reason: "first bracket must start at cv 0"}
	}

	one := decimal.NewFromInt(1)
	for i, b := range p.Brackets {
		if b.Fee.IsNegative() {
			return &ProfileError{ProfileID: p.ID, Reason: fmt.Sprintf("bracket %d: negative fee", i)}
		}
		last := i == len(p.Brackets)-1
		if b.Unbounded() != last {
			return &ProfileError{ProfileID: p.ID, Reason: fmt.Sprintf("bracket %d: only the last bracket may be open-ended", i)}
		}
		if last {
			break
		}
		if b.MaxCV.Decimal.LessThan(b.MinCV) {
			return &ProfileError{ProfileID: p.ID, Reason: fmt.Sprintf("bracket %d: max below min", i)}
		}
		if next := p.Brackets[i+1].MinCV; !next.Equal(b.MaxCV.Decimal.Add(one)) {
			return &ProfileError{ProfileID: p.ID, Reason: fmt.Sprintf("bracket %d: gap or overlap before cv %s", i+1, next)}
		}
	}
	return nil
}

// Bracket returns the single bracket containing cv.
func (p *TariffProfile) Bracket(cv decimal.Decimal) (AgencyFeeBracket, int, error) {
	for i, b := range p.Brackets {
		if b.Contains(cv) {
			return b, i, nil
		}
	}
	return AgencyFeeBracket{}, -1, &NoMatchingBracketError{CV: cv}
}

// AgencyFee returns the fixed agency fee for cv.
func (p *TariffProfile) AgencyFee(cv decimal.Decimal) (decimal.Decimal, error) {
	b, _, err := p.Bracket(cv)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Fee, nil
}

// taxRate falls back to DefaultTaxRate for profiles built without one.
func (p *TariffProfile) taxRate() decimal.Decimal {
	if p.TaxRate.IsZero() {
		return DefaultTaxRate
	}
	return p.TaxRate
}
