package disbursement

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount parses a non-negative decimal typed by a user.
// Both "16,5" and "16.5" are accepted; thousands separators (spaces,
// apostrophes, underscores, or the non-decimal one of ',' and '.') are
// stripped once the groups are checked. "1..5" or "1e5" fail instead of
// being read as some other number.
func ParseAmount(field, raw string) (decimal.Decimal, error) {
	s, reason := normalizeNumber(raw)
	if reason != "" {
		return decimal.Zero, &InvalidInputError{Field: field, Value: raw, Reason: reason}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &InvalidInputError{Field: field, Value: raw, Reason: "not a number"}
	}
	if d.IsNegative() {
		return decimal.Zero, &InvalidInputError{Field: field, Value: raw, Reason: "must not be negative"}
	}
	return d, nil
}

// ParseCount parses a non-negative whole number such as a mileage count.
func ParseCount(field, raw string) (decimal.Decimal, error) {
	d, err := ParseAmount(field, raw)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsInteger() {
		return decimal.Zero, &InvalidInputError{Field: field, Value: raw, Reason: "must be a whole number"}
	}
	return d, nil
}

// ParseOvertime converts a percent selector ("25%") into a fraction (0.25).
// Overtime is optional: anything that is not a non-negative percentage
// yields zero and ok=false instead of an error.
func ParseOvertime(raw string) (rate decimal.Decimal, ok bool) {
	s := strings.TrimSpace(raw)
	if !strings.HasSuffix(s, "%") {
		return decimal.Zero, s == ""
	}
	num, reason := normalizeNumber(strings.TrimSuffix(s, "%"))
	if reason != "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(num)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d.Div(hundred), true
}

// FormatPercent renders a fraction as a percent selector (0.25 -> "25%").
func FormatPercent(rate decimal.Decimal) string {
	return rate.Mul(hundred).String() + "%"
}

// MaxDigits bounds the significant digits of a typed number.
const MaxDigits = 24

// Characters accepted as thousands grouping in addition to whichever of
// ',' and '.' is not the decimal separator.
const groupingChars = " \u00a0\u202f'_"

// normalizeNumber checks the shape of a typed number and rewrites it as
// [-]digits[.digits]. The decimal separator is the rightmost ',' or '.'
// unless that character repeats, in which case it groups thousands. Every
// grouping separator must split the integer part into 1-3 leading digits
// followed by groups of exactly three. Exponent notation is rejected.
// A non-empty reason is the InvalidInputError reason.
func normalizeNumber(raw string) (num, reason string) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", "empty"
	}
	sign := ""
	if s[0] == '-' || s[0] == '+' {
		sign, s = s[:1], s[1:]
		if sign == "+" {
			sign = ""
		}
	}
	for _, r := range s {
		if !isDigit(r) && r != ',' && r != '.' && !strings.ContainsRune(groupingChars, r) {
			return "", "not a number"
		}
	}

	decimalSep := rune(0)
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		decimalSep = '.'
		if lastComma > lastDot {
			decimalSep = ','
		}
	case lastComma >= 0 && strings.Count(s, ",") == 1:
		decimalSep = ','
	case lastDot >= 0 && strings.Count(s, ".") == 1:
		decimalSep = '.'
	}

	intPart, frac := s, ""
	seps := groupingChars + ",."
	if decimalSep != 0 {
		idx := strings.LastIndexByte(s, byte(decimalSep))
		intPart, frac = s[:idx], s[idx+1:]
		if frac == "" || !allDigits(frac) {
			return "", "malformed number"
		}
		seps = strings.Replace(seps, string(decimalSep), "", 1)
	}

	digits, ok := ungroup(intPart, seps)
	if !ok {
		return "", "malformed number"
	}
	if len(digits)+len(frac) > MaxDigits {
		return "", "out of range"
	}
	if frac != "" {
		return sign + digits + "." + frac, ""
	}
	return sign + digits, ""
}

// ungroup strips thousands separators from an integer part, requiring a
// single separator character between groups of three digits.
func ungroup(s, seps string) (string, bool) {
	if s != "" && allDigits(s) {
		return s, true
	}
	head := strings.IndexFunc(s, func(r rune) bool { return !isDigit(r) })
	if head < 1 || head > 3 {
		return "", false
	}
	sep, size := utf8.DecodeRuneInString(s[head:])
	if !strings.ContainsRune(seps, sep) {
		return "", false
	}
	groups := strings.Split(s[head+size:], string(sep))
	for _, g := range groups {
		if len(g) != 3 || !allDigits(g) {
			return "", false
		}
	}
	return s[:head] + strings.Join(groups, ""), true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func allDigits(s string) bool {
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}
	return true
}
