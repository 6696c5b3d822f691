/*
errors.go - Error types of the fee engine

PURPOSE:
  All error kinds in one place. Structured errors carry the context a
  caller needs for a user-facing message (field name, raw value, cv) and
  unwrap to a sentinel for errors.Is checks.

ERROR CATEGORIES:
  1. Input errors - unparseable, empty or absent caller fields
  2. Tariff errors - invalid profiles, unknown profile IDs
  3. Lookup errors - cv outside every agency fee bracket

USAGE:
  result, err := calc.Calculate(in)
  var bad *disbursement.InvalidInputError
  if errors.As(err, &bad) {
      show("check field " + bad.Field)
  }

SEE ALSO:
  - parse.go: Produces InvalidInputError
  - tariff.go: Produces ProfileError and NoMatchingBracketError
*/
package disbursement

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned when a field is empty or not a valid number.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingRequiredField is returned when an expected input key is absent.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrNoMatchingBracket is returned when no agency fee bracket covers cv.
	ErrNoMatchingBracket = errors.New("no matching agency fee bracket")

	// ErrInvalidProfile is returned when a tariff profile breaks an invariant.
	ErrInvalidProfile = errors.New("invalid tariff profile")

	// ErrProfileNotFound is returned when a referenced tariff profile doesn't exist.
	ErrProfileNotFound = errors.New("tariff profile not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidInputError names the field that failed to parse.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid value %q for %s", e.Value, e.Field)
	}
	return fmt.Sprintf("invalid value %q for %s: %s", e.Value, e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// MissingRequiredFieldError names an absent input key.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

func (e *MissingRequiredFieldError) Unwrap() error { return ErrMissingRequiredField }

// NoMatchingBracketError reports a cv outside every bracket.
type NoMatchingBracketError struct {
	CV decimal.Decimal
}

func (e *NoMatchingBracketError) Error() string {
	return fmt.Sprintf("no agency fee bracket matches cv %s", e.CV)
}

func (e *NoMatchingBracketError) Unwrap() error { return ErrNoMatchingBracket }

// ProfileError explains why a tariff profile was rejected.
type ProfileError struct {
	ProfileID string
	Reason    string
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("tariff profile %q: %s", e.ProfileID, e.Reason)
}

func (e *ProfileError) Unwrap() error { return ErrInvalidProfile }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrMissingRequiredField) ||
		errors.Is(err, ErrInvalidProfile)
}

// IsNotFound returns true if the error indicates a missing tariff profile.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound)
}
