package disbursement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/pda-engine/disbursement"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0,00"},
		{"5", "5,00"},
		{"100", "100,00"},
		{"999.999", "1 000,00"},
		{"1234.5", "1 234,50"},
		{"1234567.891", "1 234 567,89"},
		{"19443.5408", "19 443,54"},
		{"-1234.5", "-1 234,50"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, disbursement.FormatAmount(dec(tt.in)), tt.in)
	}
}

func TestFormatter_CustomSeparators(t *testing.T) {
	f := disbursement.Formatter{ThousandsSep: ",", DecimalSep: "."}

	assert.Equal(t, "1,234,567.89", f.Amount(dec("1234567.891")))
	assert.Equal(t, "12.00", f.Amount(dec("12")))
}
