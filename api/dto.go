/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's types from the external API contract:
  - Inputs arrive as flat string maps, exactly as a form submits them,
    so an absent key can be reported by name
  - Amounts leave as strings: raw decimals for machines, formatted
    display strings ("1 234,50") for people

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Calculation:
    CalculationRequest, CalculationDTO, FeeDTO, LineDTO, ProjectionDTO

  Quote:
    QuoteRequest, QuoteDTO

  FDA:
    FDARequest, FDADTO, FDALineDTO

  Tariff:
    TariffDTO (wraps factory.TariffDocument), BracketDTO

VALIDATION:
  Validation is done by the engine, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/tariff.go: TariffDocument type
*/
package api

import (
	"github.com/warp/pda-engine/factory"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CalculationRequest is the body of POST /api/calculations.
// Inputs keys are the disbursement.Field* names ("lbp", "miles_inward_in",
// "overtime_in", ...). Additional lines are {"name": ..., "amount": ...}.
type CalculationRequest struct {
	TariffID       string              `json:"tariff_id,omitempty"`
	Inputs         map[string]string   `json:"inputs"`
	AdditionalDues []map[string]string `json:"additional_dues,omitempty"`
	AdditionalFees []map[string]string `json:"additional_fees,omitempty"`
}

// QuoteRequest is the body of POST /api/calculations/quote.
// Only lbp, beam and rdm are read from Inputs.
type QuoteRequest struct {
	TariffID string            `json:"tariff_id,omitempty"`
	Inputs   map[string]string `json:"inputs"`
}

// FDARequest is the body of POST /api/fda. The PDA is recomputed from the
// same inputs as a calculation, then every line takes its final amount
// from FinalAmounts (keyed by line name).
type FDARequest struct {
	CalculationRequest
	FinalAmounts map[string]string `json:"final_amounts"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// FeeDTO is one computed line with raw decimal amounts.
type FeeDTO struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	TaxApplicable bool   `json:"tax_applicable"`
	Base          string `json:"base"`
	Tax           string `json:"tax"`
	Total         string `json:"total"`
}

// LineDTO is the display triple of one line (formatted, "-" for no tax).
type LineDTO struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// ProjectionDTO holds the totals at one fixed overtime rate.
type ProjectionDTO struct {
	Rate           string `json:"rate"` // "25%"
	DuesTotal      string `json:"dues_total"`
	AgencyFeeTotal string `json:"agency_fee_total"`
	GrandTotal     string `json:"grand_total"`
}

// CalculationDTO is the response of POST /api/calculations.
type CalculationDTO struct {
	CalculationID      string            `json:"calculation_id"`
	TariffID           string            `json:"tariff_id"`
	LBP                string            `json:"lbp"`
	Beam               string            `json:"beam"`
	RDM                string            `json:"rdm"`
	CV                 string            `json:"cv"`
	SuggestedAgencyFee string            `json:"suggested_agency_fee"`
	Fees               []FeeDTO          `json:"fees"`
	Lines              []LineDTO         `json:"lines"`
	SubtotalDues       string            `json:"subtotal_dues"`
	SubtotalAgencyFees string            `json:"subtotal_agency_fees"`
	TotalTax           string            `json:"total_tax"`
	GrandTotal         string            `json:"grand_total"`
	Projections        []ProjectionDTO   `json:"projections"`
	Placeholders       map[string]string `json:"placeholders"`
}

// QuoteDTO is the response of POST /api/calculations/quote.
type QuoteDTO struct {
	TariffID     string `json:"tariff_id"`
	CV           string `json:"cv"`
	AgencyFee    string `json:"agency_fee"`
	BracketIndex int    `json:"bracket_index"`
}

// FDALineDTO compares one proforma line with its final amount.
type FDALineDTO struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	PDAAmount  string `json:"pda_amount"`
	FDAAmount  string `json:"fda_amount"`
	Difference string `json:"difference"`
}

// FDADTO is the response of POST /api/fda.
type FDADTO struct {
	TariffID           string            `json:"tariff_id"`
	Lines              []FDALineDTO      `json:"lines"`
	SubtotalDues       string            `json:"subtotal_dues"`
	SubtotalAgencyFees string            `json:"subtotal_agency_fees"`
	GrandTotal         string            `json:"grand_total"`
	PDATotal           string            `json:"pda_total"`
	Difference         string            `json:"difference"`
	Placeholders       map[string]string `json:"placeholders"`
}

// TariffDTO represents a tariff profile in API responses.
type TariffDTO struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Port      string                 `json:"port,omitempty"`
	Config    factory.TariffDocument `json:"config"`
	Version   int                    `json:"version,omitempty"`
	UpdatedAt string                 `json:"updated_at,omitempty"`
}

// BracketDTO is one row of a profile's agency fee scale.
type BracketDTO struct {
	Index    int     `json:"index"`
	MinCV    string  `json:"min_cv"`
	MaxCV    *string `json:"max_cv"` // null when open-ended
	Fee      string  `json:"fee"`
	Selected bool    `json:"selected,omitempty"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}
