package disbursement

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// Compute applies the fee rule to cv.
//
//	base = cv * coefficient [* miles] * (1 + overtime)
//	tax included: tax = base - base/(1+rate), total = base
//	tax excluded: tax = base * rate,          total = base + tax
//	no tax:       tax = 0,                    total = base
//
// miles is ignored unless the definition uses mileage.
func (d FeeDefinition) Compute(cv, miles, overtime, taxRate decimal.Decimal) ComputedFee {
	base := cv.Mul(d.Coefficient)
	if d.UsesMileage {
		base = base.Mul(miles)
	}
	base = base.Mul(one.Add(overtime))

	fee := ComputedFee{
		Name:          d.Name,
		Category:      d.Category,
		TaxApplicable: d.TaxApplicable,
		BaseAmount:    base,
		TaxAmount:     decimal.Zero,
		TotalAmount:   base,
	}

	if !d.TaxApplicable {
		return fee
	}
	if d.TaxIncluded {
		net := base.Div(one.Add(taxRate))
		fee.TaxAmount = base.Sub(net)
		return fee
	}
	fee.TaxAmount = base.Mul(taxRate)
	fee.TotalAmount = base.Add(fee.TaxAmount)
	return fee
}

// manualFee builds a line item whose amount is taken verbatim.
func manualFee(name string, category Category, amount decimal.Decimal) ComputedFee {
	return ComputedFee{
		Name:        name,
		Category:    category,
		BaseAmount:  amount,
		TaxAmount:   decimal.Zero,
		TotalAmount: amount,
	}
}
