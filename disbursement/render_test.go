package disbursement_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pda-engine/disbursement"
)

// =============================================================================
// DISPLAY LINES
// =============================================================================

func TestLines_TaxColumn(t *testing.T) {
	// GIVEN: The reference calculation
	// WHEN: Rendering display lines
	// THEN: Untaxed fees show "-", taxed fees show the formatted tax
	calc := newCalculator(t)
	result, err := calc.Calculate(vesselInputs())
	require.NoError(t, err)

	lines := result.Lines(disbursement.DefaultFormatter)
	require.Len(t, lines, len(result.Fees))

	byName := make(map[string]disbursement.Line, len(lines))
	for _, l := range lines {
		byName[l.Name] = l
	}

	assert.Equal(t, disbursement.Line{Name: "Tonnage dues (In/out)", Category: disbursement.CategoryDues, Tax: "-", Total: "4 454,40"}, byName["Tonnage dues (In/out)"])
	assert.Equal(t, "44,48", byName["Inward pilotage in"].Tax)
	assert.Equal(t, "266,88", byName["Inward pilotage in"].Total)
	assert.Equal(t, "725,33", byName["Tugs in"].Tax)
	assert.Equal(t, "4 352,00", byName["Tugs in"].Total)
	assert.Equal(t, "-", byName[disbursement.BankChargesName].Tax)
	assert.Equal(t, "190,00", byName[disbursement.BankChargesName].Total)
}

func TestLines_SplitByCategory(t *testing.T) {
	calc := newCalculator(t)
	in := vesselInputs()
	in.AdditionalFees = []disbursement.AdHocEntry{{Name: "Courier", Amount: "35"}}
	result, err := calc.Calculate(in)
	require.NoError(t, err)

	dues := result.DuesLines(disbursement.DefaultFormatter)
	agency := result.AgencyLines(disbursement.DefaultFormatter)

	assert.Len(t, dues, 16)
	require.Len(t, agency, 3)
	assert.Equal(t, disbursement.AgencyFeeName, agency[0].Name)
	assert.Equal(t, disbursement.BankChargesName, agency[1].Name)
	assert.Equal(t, "Courier", agency[2].Name)
}

// =============================================================================
// TEMPLATE PLACEHOLDERS
// =============================================================================

func TestPlaceholders_Totals(t *testing.T) {
	calc := newCalculator(t)
	in := vesselInputs()
	in.Vessel = disbursement.VesselDetails{VesselName: "MV Example", Port: "Chornomorsk", AccountName: "ACME Shipping"}
	result, err := calc.Calculate(in)
	require.NoError(t, err)

	ph := result.Placeholders(disbursement.DefaultFormatter)

	assert.Equal(t, "16 000,00", ph["{{cv}}"])
	assert.Equal(t, "100,00", ph["{{lbp}}"])
	assert.Equal(t, "19 253,54", ph["{{subtotal_dues}}"])
	assert.Equal(t, "190,00", ph["{{subtotal_agfee}}"])
	assert.Equal(t, "19 443,54", ph["{{total}}"])
	assert.Equal(t, "2 024,12", ph["{{total_vat}}"])
	assert.Equal(t, "0,00", ph["{{agency_fee}}"])
	assert.Equal(t, "190,00", ph["{{bank_charges}}"])
	assert.Equal(t, "MV Example", ph["{{vessel_name}}"])
	assert.Equal(t, "Chornomorsk", ph["{{enter_port}}"])
	assert.Equal(t, "ACME Shipping", ph["{{Account_name}}"])

	assert.Equal(t, "21 860,61", ph["{{total_fee_25_ot}}"])
	assert.Equal(t, "190,00", ph["{{total_agency_fee_50_ot}}"])
	assert.Equal(t, "29 871,80", ph["{{grand_total_100_ot}}"])
}

func TestSubstitute(t *testing.T) {
	ph := map[string]string{"{{total}}": "19 443,54", "{{vessel_name}}": "MV Example"}

	assert.Equal(t, "MV Example owes 19 443,54", disbursement.Substitute("{{vessel_name}} owes {{total}}", ph))
	assert.Equal(t, "no tokens", disbursement.Substitute("no tokens", ph))
	assert.Equal(t, "{{unknown}}", disbursement.Substitute("{{unknown}}", ph))
}

// =============================================================================
// FDA REVISION
// =============================================================================

func TestReviseFDA(t *testing.T) {
	// GIVEN: Three PDA lines
	items := []disbursement.Item{
		{Name: "Tonnage dues (In/out)", Category: disbursement.CategoryDues, Amount: dec("4454.40")},
		{Name: "Tugs in", Category: disbursement.CategoryDues, Amount: dec("4352")},
		{Name: disbursement.BankChargesName, Category: disbursement.CategoryAgencyFee, Amount: dec("190")},
	}

	// WHEN: The final invoices arrive
	fda, err := disbursement.ReviseFDA(items, map[string]string{
		"Tonnage dues (In/out)":      "4454,40",
		"Tugs in":                    "4 800",
		disbursement.BankChargesName: "175.5",
	})
	require.NoError(t, err)

	// THEN: Totals use the final amounts and report the difference
	require.Len(t, fda.Lines, 3)
	assertDecimal(t, "0", fda.Lines[0].Difference)
	assertDecimal(t, "448", fda.Lines[1].Difference)
	assertDecimal(t, "-14.5", fda.Lines[2].Difference)

	assertDecimal(t, "9254.4", fda.SubtotalDues)
	assertDecimal(t, "175.5", fda.SubtotalAgencyFees)
	assertDecimal(t, "9429.9", fda.GrandTotal)
	assertDecimal(t, "8996.4", fda.PDATotal)
	assertDecimal(t, "433.5", fda.Difference)

	ph := fda.Placeholders(disbursement.DefaultFormatter)
	assert.Equal(t, "4 800,00", ph["{{Tugs in}}"])
	assert.Equal(t, "9 429,90", ph["{{total}}"])
}

func TestReviseFDA_EveryLineNeedsAnAmount(t *testing.T) {
	items := []disbursement.Item{
		{Name: "Tugs in", Category: disbursement.CategoryDues, Amount: dec("4352")},
		{Name: "Mooring in", Category: disbursement.CategoryDues, Amount: dec("218.9312")},
	}

	_, err := disbursement.ReviseFDA(items, map[string]string{"Tugs in": "4352"})
	var missing *disbursement.MissingRequiredFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Mooring in", missing.Field)

	_, err = disbursement.ReviseFDA(items, map[string]string{"Tugs in": "4352", "Mooring in": "about 200"})
	var bad *disbursement.InvalidInputError
	require.True(t, errors.As(err, &bad))
	assert.Equal(t, "Mooring in", bad.Field)
}

func TestReviseFDA_FromCalculation(t *testing.T) {
	// GIVEN: A full PDA
	calc := newCalculator(t)
	result, err := calc.Calculate(vesselInputs())
	require.NoError(t, err)

	// WHEN: Every final amount equals the proforma amount
	finals := make(map[string]string)
	for _, it := range result.Items() {
		finals[it.Name] = it.Amount.String()
	}
	fda, err := disbursement.ReviseFDA(result.Items(), finals)
	require.NoError(t, err)

	// THEN: Nothing changed
	assert.True(t, fda.GrandTotal.Equal(result.GrandTotal))
	assert.True(t, fda.Difference.IsZero())
}
