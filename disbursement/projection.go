/*
projection.go - Fixed overtime what-if totals

PURPOSE:
  Answers "what would this call cost with 25%, 50% or 100% overtime on
  both legs?". Each rate is a complete re-run of the calculation with both
  overtime selectors forced to that rate; every other input is unchanged.

KEY INSIGHT:
  A projection is a re-derivation, not an adjustment of the primary
  result. It never reads the primary run, so a projection at the rate the
  user picked reproduces the primary totals exactly.

CONCURRENCY:
  The runs share nothing but the immutable profile and are evaluated in
  parallel. Results are stored by index, so ordering is always by rate.

SEE ALSO:
  - calculator.go: The run being repeated
*/
package disbursement

import (
	"golang.org/x/sync/errgroup"

	"github.com/shopspring/decimal"
)

// FixedOvertimeRates are the overtime rates every calculation is projected at.
var FixedOvertimeRates = []decimal.Decimal{
	decimal.RequireFromString("0.25"),
	decimal.RequireFromString("0.50"),
	decimal.RequireFromString("1.00"),
}

// Project re-runs the calculation at each of FixedOvertimeRates.
func (c *Calculator) Project(in Inputs) ([]ProjectionTotals, error) {
	out := make([]ProjectionTotals, len(FixedOvertimeRates))

	var g errgroup.Group
	for i, rate := range FixedOvertimeRates {
		i, rate := i, rate
		g.Go(func() error {
			r, err := c.compute(in.WithOvertime(rate))
			if err != nil {
				return err
			}
			out[i] = ProjectionTotals{
				Rate:           rate,
				DuesTotal:      r.SubtotalDues,
				AgencyFeeTotal: r.SubtotalAgencyFees,
				GrandTotal:     r.GrandTotal,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
