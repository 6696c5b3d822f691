package disbursement_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pda-engine/disbursement"
)

func formFields() map[string]string {
	return map[string]string{
		"lbp":               "100",
		"beam":              "20",
		"rdm":               "8",
		"miles_inward_in":   "1",
		"miles_inward_out":  "1",
		"miles_outward_in":  "14",
		"miles_outward_out": "14",
		"agency_fee":        "3242",
		"bank_charges":      "190",
		"vessel_name":       "MV Example",
	}
}

func TestInputsFromFields(t *testing.T) {
	in, err := disbursement.InputsFromFields(formFields())
	require.NoError(t, err)

	assert.Equal(t, "100", in.LBP)
	assert.Equal(t, "14", in.MilesOutwardOut)
	assert.Equal(t, "", in.OvertimeIn) // optional
	assert.Equal(t, "MV Example", in.Vessel.VesselName)
}

func TestInputsFromFields_AbsentKeyIsMissing(t *testing.T) {
	for _, key := range disbursement.RequiredFields {
		fields := formFields()
		delete(fields, key)

		_, err := disbursement.InputsFromFields(fields)

		var missing *disbursement.MissingRequiredFieldError
		require.True(t, errors.As(err, &missing), key)
		assert.Equal(t, key, missing.Field)
		assert.True(t, errors.Is(err, disbursement.ErrMissingRequiredField))
	}
}

func TestInputsFromFields_PresentButEmptyFailsOnCalculate(t *testing.T) {
	// An empty value is present, so it fails parsing rather than lookup.
	fields := formFields()
	fields["rdm"] = ""

	in, err := disbursement.InputsFromFields(fields)
	require.NoError(t, err)

	_, err = newCalculator(t).Calculate(in)
	var bad *disbursement.InvalidInputError
	require.True(t, errors.As(err, &bad))
	assert.Equal(t, "rdm", bad.Field)
}

func TestEntriesFromFields(t *testing.T) {
	entries, err := disbursement.EntriesFromFields(disbursement.FieldAdditionalDues, []map[string]string{
		{"name": "Garbage removal", "amount": "80"},
	})
	require.NoError(t, err)
	assert.Equal(t, []disbursement.AdHocEntry{{Name: "Garbage removal", Amount: "80"}}, entries)

	_, err = disbursement.EntriesFromFields(disbursement.FieldAdditionalFees, []map[string]string{
		{"name": "Courier"},
	})
	var missing *disbursement.MissingRequiredFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "additional_fees[0].amount", missing.Field)
}
