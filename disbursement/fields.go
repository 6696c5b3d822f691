package disbursement

import "fmt"

// Input field keys, as used in flat key/value forms and in error messages.
const (
	FieldLBP             = "lbp"
	FieldBeam            = "beam"
	FieldRDM             = "rdm"
	FieldMilesInwardIn   = "miles_inward_in"
	FieldMilesInwardOut  = "miles_inward_out"
	FieldMilesOutwardIn  = "miles_outward_in"
	FieldMilesOutwardOut = "miles_outward_out"
	FieldOvertimeIn      = "overtime_in"
	FieldOvertimeOut     = "overtime_out"
	FieldAgencyFee       = "agency_fee"
	FieldBankCharges     = "bank_charges"
	FieldAdditionalDues  = "additional_dues"
	FieldAdditionalFees  = "additional_fees"

	FieldVesselName  = "vessel_name"
	FieldVesselFlag  = "vessel_flag"
	FieldPort        = "enter_port"
	FieldCargoLoaded = "cargo_loaded"
	FieldCargoQty    = "cargo_qtty"
	FieldAccountName = "acc_name"
)

// RequiredFields must be present in a field map. Overtime selectors and
// vessel details are optional.
var RequiredFields = []string{
	FieldLBP, FieldBeam, FieldRDM,
	FieldMilesInwardIn, FieldMilesInwardOut, FieldMilesOutwardIn, FieldMilesOutwardOut,
	FieldAgencyFee, FieldBankCharges,
}

// InputsFromFields builds Inputs from a flat key/value map such as a
// submitted form. Absent required keys fail with MissingRequiredFieldError;
// values are not parsed here.
func InputsFromFields(fields map[string]string) (Inputs, error) {
	for _, k := range RequiredFields {
		if _, ok := fields[k]; !ok {
			return Inputs{}, &MissingRequiredFieldError{Field: k}
		}
	}
	return Inputs{
		LBP:             fields[FieldLBP],
		Beam:            fields[FieldBeam],
		RDM:             fields[FieldRDM],
		MilesInwardIn:   fields[FieldMilesInwardIn],
		MilesInwardOut:  fields[FieldMilesInwardOut],
		MilesOutwardIn:  fields[FieldMilesOutwardIn],
		MilesOutwardOut: fields[FieldMilesOutwardOut],
		OvertimeIn:      fields[FieldOvertimeIn],
		OvertimeOut:     fields[FieldOvertimeOut],
		AgencyFee:       fields[FieldAgencyFee],
		BankCharges:     fields[FieldBankCharges],
		Vessel: VesselDetails{
			VesselName:  fields[FieldVesselName],
			VesselFlag:  fields[FieldVesselFlag],
			Port:        fields[FieldPort],
			CargoLoaded: fields[FieldCargoLoaded],
			CargoQty:    fields[FieldCargoQty],
			AccountName: fields[FieldAccountName],
		},
	}, nil
}

// EntriesFromFields converts ad-hoc lines given as {"name", "amount"} maps.
// list is the input key the lines belong to (FieldAdditionalDues or
// FieldAdditionalFees) and prefixes field names in errors.
func EntriesFromFields(list string, rows []map[string]string) ([]AdHocEntry, error) {
	out := make([]AdHocEntry, 0, len(rows))
	for i, row := range rows {
		name, ok := row["name"]
		if !ok {
			return nil, &MissingRequiredFieldError{Field: fmt.Sprintf("%s[%d].name", list, i)}
		}
		amount, ok := row["amount"]
		if !ok {
			return nil, &MissingRequiredFieldError{Field: fmt.Sprintf("%s[%d].amount", list, i)}
		}
		out = append(out, AdHocEntry{Name: name, Amount: amount})
	}
	return out, nil
}
