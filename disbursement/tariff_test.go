package disbursement_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pda-engine/disbursement"
	"github.com/warp/pda-engine/ports"
)

// =============================================================================
// BRACKET LOOKUP
// =============================================================================

func TestBracket_InclusiveEdges(t *testing.T) {
	profile := ports.Standard()

	tests := []struct {
		cv   int64
		want string
	}{
		{0, "1194"},
		{1800, "1194"},
		{1801, "1478"},
		{15000, "2816"},
		{15001, "3242"},
		{22000, "3242"},
		{92000, "6969"},
		{92001, "8172"},
		{5_000_000, "8172"},
	}

	for _, tt := range tests {
		fee, err := profile.AgencyFee(decimal.NewFromInt(tt.cv))
		require.NoError(t, err)
		assertDecimal(t, tt.want, fee)
	}
}

func TestBracket_ExactlyOneMatchesEveryCV(t *testing.T) {
	// GIVEN: The standard bracket table
	// WHEN: Sweeping whole cv values past the last bound
	// THEN: Exactly one bracket contains each cv
	profile := ports.Standard()

	for cv := int64(0); cv <= 100_000; cv += 7 {
		d := decimal.NewFromInt(cv)
		matches := 0
		for _, b := range profile.Brackets {
			if b.Contains(d) {
				matches++
			}
		}
		require.Equal(t, 1, matches, "cv %d", cv)
	}
}

func TestBracket_NoMatchIsAnError(t *testing.T) {
	// Brackets that cannot come from a valid profile
	profile := disbursement.TariffProfile{
		ID: "sparse",
		Brackets: []disbursement.AgencyFeeBracket{
			{MinCV: dec("100"), MaxCV: decimal.NewNullDecimal(dec("200")), Fee: dec("1")},
		},
	}

	_, _, err := profile.Bracket(dec("50"))

	var nm *disbursement.NoMatchingBracketError
	require.True(t, errors.As(err, &nm))
	assertDecimal(t, "50", nm.CV)
	assert.True(t, errors.Is(err, disbursement.ErrNoMatchingBracket))
}

// =============================================================================
// PROFILE VALIDATION
// =============================================================================

func TestValidate_BuiltInProfiles(t *testing.T) {
	for _, p := range ports.List() {
		assert.NoError(t, p.Validate(), p.ID)
	}
}

func TestValidate_RejectsBrokenProfiles(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *disbursement.TariffProfile)
	}{
		{"missing id", func(p *disbursement.TariffProfile) { p.ID = "" }},
		{"no fees", func(p *disbursement.TariffProfile) { p.Dues = nil }},
		{"negative tax rate", func(p *disbursement.TariffProfile) { p.TaxRate = dec("-0.2") }},
		{"duplicate fee", func(p *disbursement.TariffProfile) { p.Dues = append(p.Dues, p.Dues[0]) }},
		{"negative coefficient", func(p *disbursement.TariffProfile) { p.Dues[0].Coefficient = dec("-1") }},
		{"tax included but not applicable", func(p *disbursement.TariffProfile) {
			p.Dues[0].TaxIncluded = true
		}},
		{"mileage without leg", func(p *disbursement.TariffProfile) {
			p.Dues[7].Leg = disbursement.LegNone
		}},
		{"agency category in table", func(p *disbursement.TariffProfile) {
			p.Dues[0].Category = disbursement.CategoryAgencyFee
		}},
		{"no brackets", func(p *disbursement.TariffProfile) { p.Brackets = nil }},
		{"gap between brackets", func(p *disbursement.TariffProfile) {
			p.Brackets[1].MinCV = dec("1802")
		}},
		{"overlapping brackets", func(p *disbursement.TariffProfile) {
			p.Brackets[1].MinCV = dec("1800")
		}},
		{"bounded last bracket", func(p *disbursement.TariffProfile) {
			p.Brackets[len(p.Brackets)-1].MaxCV = decimal.NewNullDecimal(dec("100000"))
		}},
		{"open-ended middle bracket", func(p *disbursement.TariffProfile) {
			p.Brackets[3].MaxCV = decimal.NullDecimal{}
		}},
		{"negative fee", func(p *disbursement.TariffProfile) { p.Brackets[0].Fee = dec("-1") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ports.Standard()
			tt.mutate(&p)

			err := p.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, disbursement.ErrInvalidProfile))
		})
	}
}
