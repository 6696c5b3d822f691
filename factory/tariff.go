/*
Package factory provides tariff document to Go profile conversion.

PURPOSE:
  Converts JSON or YAML tariff documents into disbursement.TariffProfile
  values. Port tariffs change every year or two; a new document can be
  dropped into the tariff directory (or POSTed to the API) without a code
  change, and the factory builds and validates the profile.

WHY DOCUMENTS?
  - Tariff figures are published by the port, not derived by the engine
  - Operators can review a tariff change as a diff of one file
  - The SQLite store keeps profiles in this same format

DOCUMENT SCHEMA (JSON shown, YAML uses the same keys):
  {
    "id": "chornomorsk",
    "name": "Chornomorsk",
    "port": "Chornomorsk",
    "tax_rate": "0.20",
    "dues": [
      {"name": "Tonnage dues (In/out)", "coefficient": "0.2784"},
      {"name": "Inward pilotage in", "coefficient": "0.0139",
       "tax_applicable": true, "uses_mileage": true,
       "pilotage": "inward", "leg": "in"},
      {"name": "Tugs in", "coefficient": "0.2720",
       "tax_applicable": true, "tax_included": true, "leg": "in"}
    ],
    "brackets": [
      {"min_cv": 0, "max_cv": 1800, "fee": "1194"},
      {"min_cv": 92001, "fee": "8172"}
    ]
  }

  Decimals are strings so no coefficient ever passes through float64.
  A bracket without max_cv is open-ended.

USAGE:
  f := factory.NewTariffFactory()
  profile, err := f.ParseJSON(data)
  profiles, err := f.LoadDir("./tariffs")

SEE ALSO:
  - disbursement/tariff.go: TariffProfile and validation
  - ports/profiles.go: Built-in profiles
  - store/sqlite/sqlite.go: Stores profiles as JSON documents
*/
package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/pda-engine/disbursement"
)

// =============================================================================
// DOCUMENT SCHEMA TYPES
// =============================================================================

// TariffDocument is the JSON/YAML representation of a tariff profile.
type TariffDocument struct {
	ID       string            `json:"id" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`
	Port     string            `json:"port,omitempty" yaml:"port,omitempty"`
	TaxRate  string            `json:"tax_rate,omitempty" yaml:"tax_rate,omitempty"`
	Dues     []FeeDocument     `json:"dues" yaml:"dues"`
	Brackets []BracketDocument `json:"brackets" yaml:"brackets"`
}

// FeeDocument is one tabled fee.
type FeeDocument struct {
	Name          string `json:"name" yaml:"name"`
	Coefficient   string `json:"coefficient" yaml:"coefficient"`
	TaxApplicable bool   `json:"tax_applicable,omitempty" yaml:"tax_applicable,omitempty"`
	TaxIncluded   bool   `json:"tax_included,omitempty" yaml:"tax_included,omitempty"`
	UsesMileage   bool   `json:"uses_mileage,omitempty" yaml:"uses_mileage,omitempty"`
	Pilotage      string `json:"pilotage,omitempty" yaml:"pilotage,omitempty"` // inward, outward
	Leg           string `json:"leg,omitempty" yaml:"leg,omitempty"`           // in, out
}

// BracketDocument is one agency fee bracket. MaxCV nil means open-ended.
type BracketDocument struct {
	MinCV int64  `json:"min_cv" yaml:"min_cv"`
	MaxCV *int64 `json:"max_cv,omitempty" yaml:"max_cv,omitempty"`
	Fee   string `json:"fee" yaml:"fee"`
}

// =============================================================================
// TARIFF FACTORY
// =============================================================================

// TariffFactory converts tariff documents to profiles.
type TariffFactory struct{}

// NewTariffFactory creates a new tariff factory.
func NewTariffFactory() *TariffFactory {
	return &TariffFactory{}
}

// ParseJSON parses and validates a JSON tariff document.
func (f *TariffFactory) ParseJSON(data []byte) (disbursement.TariffProfile, error) {
	var doc TariffDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return disbursement.TariffProfile{}, fmt.Errorf("failed to parse tariff JSON: %w", err)
	}
	return f.FromDocument(doc)
}

// ParseYAML parses and validates a YAML tariff document.
func (f *TariffFactory) ParseYAML(data []byte) (disbursement.TariffProfile, error) {
	var doc TariffDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return disbursement.TariffProfile{}, fmt.Errorf("failed to parse tariff YAML: %w", err)
	}
	return f.FromDocument(doc)
}

// FromDocument converts a document to a validated TariffProfile.
func (f *TariffFactory) FromDocument(doc TariffDocument) (disbursement.TariffProfile, error) {
	profile := disbursement.TariffProfile{
		ID:   doc.ID,
		Name: doc.Name,
		Port: doc.Port,
	}

	profile.TaxRate = disbursement.DefaultTaxRate
	if doc.TaxRate != "" {
		rate, err := parseDecimal(doc.TaxRate)
		if err != nil {
			return disbursement.TariffProfile{}, invalid(doc.ID, "tax_rate %q is not a number", doc.TaxRate)
		}
		profile.TaxRate = rate
	}

	for _, fd := range doc.Dues {
		def, err := parseFee(doc.ID, fd)
		if err != nil {
			return disbursement.TariffProfile{}, err
		}
		profile.Dues = append(profile.Dues, def)
	}

	for i, bd := range doc.Brackets {
		fee, err := parseDecimal(bd.Fee)
		if err != nil {
			return disbursement.TariffProfile{}, invalid(doc.ID, "bracket %d: fee %q is not a number", i, bd.Fee)
		}
		b := disbursement.AgencyFeeBracket{MinCV: decimal.NewFromInt(bd.MinCV), Fee: fee}
		if bd.MaxCV != nil {
			b.MaxCV = decimal.NewNullDecimal(decimal.NewFromInt(*bd.MaxCV))
		}
		profile.Brackets = append(profile.Brackets, b)
	}

	if err := profile.Validate(); err != nil {
		return disbursement.TariffProfile{}, err
	}
	return profile, nil
}

// ToDocument converts a profile to its document form.
func (f *TariffFactory) ToDocument(p disbursement.TariffProfile) TariffDocument {
	doc := TariffDocument{
		ID:       p.ID,
		Name:     p.Name,
		Port:     p.Port,
		Dues:     make([]FeeDocument, 0, len(p.Dues)),
		Brackets: make([]BracketDocument, 0, len(p.Brackets)),
	}
	if !p.TaxRate.IsZero() {
		doc.TaxRate = p.TaxRate.String()
	}

	for _, d := range p.Dues {
		doc.Dues = append(doc.Dues, FeeDocument{
			Name:          d.Name,
			Coefficient:   d.Coefficient.String(),
			TaxApplicable: d.TaxApplicable,
			TaxIncluded:   d.TaxIncluded,
			UsesMileage:   d.UsesMileage,
			Pilotage:      string(d.Pilotage),
			Leg:           string(d.Leg),
		})
	}

	for _, b := range p.Brackets {
		bd := BracketDocument{MinCV: b.MinCV.IntPart(), Fee: b.Fee.String()}
		if b.MaxCV.Valid {
			max := b.MaxCV.Decimal.IntPart()
			bd.MaxCV = &max
		}
		doc.Brackets = append(doc.Brackets, bd)
	}

	return doc
}

// MarshalJSON renders a profile as an indented JSON document.
func (f *TariffFactory) MarshalJSON(p disbursement.TariffProfile) ([]byte, error) {
	return json.MarshalIndent(f.ToDocument(p), "", "  ")
}

// =============================================================================
// FILE LOADING
// =============================================================================

// LoadFile parses a .json, .yaml or .yml tariff document.
func (f *TariffFactory) LoadFile(path string) (disbursement.TariffProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return disbursement.TariffProfile{}, fmt.Errorf("failed to read tariff file: %w", err)
	}

	var profile disbursement.TariffProfile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		profile, err = f.ParseJSON(data)
	case ".yaml", ".yml":
		profile, err = f.ParseYAML(data)
	default:
		return disbursement.TariffProfile{}, fmt.Errorf("unsupported tariff file extension: %s", path)
	}
	if err != nil {
		return disbursement.TariffProfile{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return profile, nil
}

// LoadDir loads every tariff document in dir, ordered by file name.
// Files with other extensions are ignored.
func (f *TariffFactory) LoadDir(dir string) ([]disbursement.TariffProfile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read tariff directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	profiles := make([]disbursement.TariffProfile, 0, len(names))
	for _, name := range names {
		p, err := f.LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// parseDecimal reads a plain decimal. Exponent notation is refused so a
// document cannot smuggle in a number whose scale stalls the arithmetic.
func parseDecimal(s string) (decimal.Decimal, error) {
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, fmt.Errorf("exponent notation in %q", s)
	}
	return decimal.NewFromString(s)
}

func parseFee(profileID string, fd FeeDocument) (disbursement.FeeDefinition, error) {
	coef, err := parseDecimal(fd.Coefficient)
	if err != nil {
		return disbursement.FeeDefinition{}, invalid(profileID, "fee %q: coefficient %q is not a number", fd.Name, fd.Coefficient)
	}
	pilotage, err := parsePilotage(profileID, fd.Pilotage)
	if err != nil {
		return disbursement.FeeDefinition{}, err
	}
	leg, err := parseLeg(profileID, fd.Leg)
	if err != nil {
		return disbursement.FeeDefinition{}, err
	}
	return disbursement.FeeDefinition{
		Name:          fd.Name,
		Coefficient:   coef,
		TaxApplicable: fd.TaxApplicable,
		TaxIncluded:   fd.TaxIncluded,
		UsesMileage:   fd.UsesMileage,
		Category:      disbursement.CategoryDues,
		Pilotage:      pilotage,
		Leg:           leg,
	}, nil
}

func parsePilotage(profileID, s string) (disbursement.Pilotage, error) {
	switch strings.ToLower(s) {
	case "":
		return disbursement.PilotageNone, nil
	case "inward":
		return disbursement.PilotageInward, nil
	case "outward":
		return disbursement.PilotageOutward, nil
	default:
		return "", invalid(profileID, "unknown pilotage %q", s)
	}
}

func parseLeg(profileID, s string) (disbursement.Leg, error) {
	switch strings.ToLower(s) {
	case "":
		return disbursement.LegNone, nil
	case "in":
		return disbursement.LegIn, nil
	case "out":
		return disbursement.LegOut, nil
	default:
		return "", invalid(profileID, "unknown leg %q", s)
	}
}

func invalid(profileID, format string, args ...any) error {
	return &disbursement.ProfileError{ProfileID: profileID, Reason: fmt.Sprintf(format, args...)}
}
