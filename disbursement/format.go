package disbursement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Formatter renders amounts for display: grouped thousands and exactly two
// fractional digits.
type Formatter struct {
	ThousandsSep string
	DecimalSep   string
}

// DefaultFormatter uses a space for thousands and a comma for decimals
// ("1 234 567,89").
var DefaultFormatter = Formatter{ThousandsSep: " ", DecimalSep: ","}

// FormatAmount renders d with DefaultFormatter.
func FormatAmount(d decimal.Decimal) string {
	return DefaultFormatter.Amount(d)
}

// Amount renders d with two fractional digits.
func (f Formatter) Amount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + groupThousands(intPart, f.ThousandsSep) + f.DecimalSep + frac
}

func groupThousands(digits, sep string) string {
	if len(digits) <= 3 || sep == "" {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
