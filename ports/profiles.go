/*
Package ports provides the built-in tariff profiles.

PURPOSE:
  Ready-to-use TariffProfiles for the ports the engine ships with. Each
  profile is the externally mandated tariff data of one port: fee
  coefficients and agency fee brackets must be reproduced exactly, they
  are not derived from a formula.

AVAILABLE PROFILES:
  Standard:    Default coefficient table and the 16 agency fee brackets
  Chornomorsk: Port of Chornomorsk (same published figures today, kept as
               its own profile so either can change independently)

PROFILE COMPONENTS:
  Every profile is built from three tables:
  - No-tax dues:           tonnage, canal, lighthouse, berth, sanitary,
                           administrative, port information
  - Pilotage (mileage):    inward/outward pilotage x in/out leg, tax added
  - Tax-included services: VTCS, tugs in/out, mooring in/out

CUSTOMIZATION:
  Profiles are values. Copy one, change the tables and save it through a
  disbursement.TariffStore, or load a JSON/YAML document via factory/.

SEE ALSO:
  - registry.go: Lookup by ID
  - factory/tariff.go: JSON/YAML tariff documents
  - disbursement/tariff.go: TariffProfile and validation
*/
package ports

import (
	"github.com/shopspring/decimal"

	"github.com/warp/pda-engine/disbursement"
)

// Built-in profile IDs.
const (
	ProfileStandard    = "standard"
	ProfileChornomorsk = "chornomorsk"
)

// =============================================================================
// BUILT-IN PROFILES
// =============================================================================

// Standard returns the default tariff profile.
func Standard() disbursement.TariffProfile {
	return disbursement.TariffProfile{
		ID:       ProfileStandard,
		Name:     "Standard tariff",
		TaxRate:  disbursement.DefaultTaxRate,
		Dues:     standardDues(),
		Brackets: standardBrackets(),
	}
}

// Chornomorsk returns the tariff profile of the port of Chornomorsk.
func Chornomorsk() disbursement.TariffProfile {
	return disbursement.TariffProfile{
		ID:       ProfileChornomorsk,
		Name:     "Chornomorsk",
		Port:     "Chornomorsk",
		TaxRate:  disbursement.DefaultTaxRate,
		Dues:     standardDues(),
		Brackets: standardBrackets(),
	}
}

// =============================================================================
// TABLES
// =============================================================================

// standardDues is the port's coefficient table. Routing follows the
// Pilotage/Leg tags, not the fee names: "Mooring out" and "Inward pilotage
// out" bill on the out leg (overtime-out, miles_inward_out). Older
// spreadsheets matched "in" anywhere in the name and put both on the in
// leg, so their totals differ whenever the in and out selectors differ.
func standardDues() []disbursement.FeeDefinition {
	var dues []disbursement.FeeDefinition

	// No tax, no mileage, no overtime
	for _, row := range []struct {
		name string
		coef string
	}{
		{"Tonnage dues (In/out)", "0.2784"},
		{"Canal dues (in/out)", "0.0512"},
		{"Lighthouse dues", "0.045"},
		{"Berth dues", "0.028"},
		{"Sanitary dues", "0.0176"},
		{"Administrative dues", "0.0176"},
		{"Port information fee", "0.0065"},
	} {
		dues = append(dues, disbursement.FeeDefinition{
			Name:        row.name,
			Coefficient: decimal.RequireFromString(row.coef),
			Category:    disbursement.CategoryDues,
		})
	}

	// Pilotage: tax added on top, billed per mile
	for _, row := range []struct {
		name     string
		coef     string
		pilotage disbursement.Pilotage
		leg      disbursement.Leg
	}{
		{"Inward pilotage in", "0.0139", disbursement.PilotageInward, disbursement.LegIn},
		{"Inward pilotage out", "0.0139", disbursement.PilotageInward, disbursement.LegOut},
		{"Outward pilotage in", "0.0014", disbursement.PilotageOutward, disbursement.LegIn},
		{"Outward pilotage out", "0.0014", disbursement.PilotageOutward, disbursement.LegOut},
	} {
		dues = append(dues, disbursement.FeeDefinition{
			Name:          row.name,
			Coefficient:   decimal.RequireFromString(row.coef),
			TaxApplicable: true,
			UsesMileage:   true,
			Category:      disbursement.CategoryDues,
			Pilotage:      row.pilotage,
			Leg:           row.leg,
		})
	}

	// Services whose coefficient already includes tax
	for _, row := range []struct {
		name string
		coef string
		leg  disbursement.Leg
	}{
		{"Services of VTCS", "0.1072799", disbursement.LegNone},
		{"Tugs in", "0.2720", disbursement.LegIn},
		{"Tugs out", "0.2720", disbursement.LegOut},
		{"Mooring in", "0.0136832", disbursement.LegIn},
		{"Mooring out", "0.0136832", disbursement.LegOut},
	} {
		dues = append(dues, disbursement.FeeDefinition{
			Name:          row.name,
			Coefficient:   decimal.RequireFromString(row.coef),
			TaxApplicable: true,
			TaxIncluded:   true,
			Category:      disbursement.CategoryDues,
			Leg:           row.leg,
		})
	}

	return dues
}

// standardBrackets is the agency fee scale by cv, both ends inclusive.
func standardBrackets() []disbursement.AgencyFeeBracket {
	rows := []struct {
		min, max, fee int64
	}{
		{0, 1800, 1194},
		{1801, 3600, 1478},
		{3601, 5500, 1764},
		{5501, 7200, 2076},
		{7201, 11000, 2446},
		{11001, 15000, 2816},
		{15001, 22000, 3242},
		{22001, 30000, 3754},
		{30001, 37000, 4210},
		{37001, 44000, 4636},
		{44001, 51000, 5120},
		{51001, 59000, 5574},
		{59001, 66000, 6030},
		{66001, 73000, 6512},
		{73001, 92000, 6969},
		{92001, -1, 8172}, // open-ended
	}

	brackets := make([]disbursement.AgencyFeeBracket, len(rows))
	for i, r := range rows {
		b := disbursement.AgencyFeeBracket{
			MinCV: decimal.NewFromInt(r.min),
			Fee:   decimal.NewFromInt(r.fee),
		}
		if r.max >= 0 {
			b.MaxCV = decimal.NewNullDecimal(decimal.NewFromInt(r.max))
		}
		brackets[i] = b
	}
	return brackets
}
