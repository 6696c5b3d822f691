package disbursement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pda-engine/disbursement"
)

func TestProject_FixedRatesInOrder(t *testing.T) {
	// GIVEN: Reference vessel with no overtime selected
	// WHEN: Calculating
	// THEN: Totals at 25%, 50% and 100% are attached, in that order
	calc := newCalculator(t)

	result, err := calc.Calculate(vesselInputs())
	require.NoError(t, err)

	require.Len(t, result.Projections, 3)
	assertDecimal(t, "0.25", result.Projections[0].Rate)
	assertDecimal(t, "0.50", result.Projections[1].Rate)
	assertDecimal(t, "1.00", result.Projections[2].Rate)

	assertDecimal(t, "21860.6064", result.Projections[0].DuesTotal)
	assertDecimal(t, "190", result.Projections[0].AgencyFeeTotal)
	assertDecimal(t, "22050.6064", result.Projections[0].GrandTotal)
	assertDecimal(t, "24657.672", result.Projections[1].GrandTotal)
	assertDecimal(t, "29871.8032", result.Projections[2].GrandTotal)
}

func TestProject_MatchesPrimaryAtSelectedRate(t *testing.T) {
	// GIVEN: The user picked 50% on both legs
	// WHEN: Calculating
	// THEN: The 50% projection reproduces the primary totals exactly
	calc := newCalculator(t)
	in := vesselInputs()
	in.OvertimeIn = "50%"
	in.OvertimeOut = "50%"
	in.AdditionalDues = []disbursement.AdHocEntry{{Name: "Garbage removal", Amount: "80"}}

	result, err := calc.Calculate(in)
	require.NoError(t, err)

	p, ok := result.Projection(dec("0.5"))
	require.True(t, ok)
	assert.Equal(t, result.SubtotalDues, p.DuesTotal)
	assert.Equal(t, result.SubtotalAgencyFees, p.AgencyFeeTotal)
	assert.Equal(t, result.GrandTotal, p.GrandTotal)
}

func TestProject_IgnoresSelectedOvertime(t *testing.T) {
	// Projections depend only on the forced rate, not on what the user picked.
	calc := newCalculator(t)

	plain, err := calc.Project(vesselInputs())
	require.NoError(t, err)

	in := vesselInputs()
	in.OvertimeIn = "100%"
	in.OvertimeOut = "25%"
	picked, err := calc.Project(in)
	require.NoError(t, err)

	assert.Equal(t, plain, picked)
}

func TestProject_DoesNotMutateInputs(t *testing.T) {
	calc := newCalculator(t)
	in := vesselInputs()
	in.OvertimeIn = "10%"
	in.AdditionalFees = []disbursement.AdHocEntry{{Name: "Courier", Amount: "35"}}

	_, err := calc.Project(in)
	require.NoError(t, err)

	assert.Equal(t, "10%", in.OvertimeIn)
	assert.Equal(t, "35", in.AdditionalFees[0].Amount)
}

func TestWithOvertime_RendersPercent(t *testing.T) {
	in := disbursement.DefaultInputs().WithOvertime(dec("0.25"))

	assert.Equal(t, "25%", in.OvertimeIn)
	assert.Equal(t, "25%", in.OvertimeOut)
}
