package factory_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pda-engine/disbursement"
	"github.com/warp/pda-engine/factory"
	"github.com/warp/pda-engine/ports"
)

const smallPortYAML = `
id: small-port
name: Small port
port: Smallport
tax_rate: "0.20"
dues:
  - name: Tonnage dues
    coefficient: "0.30"
  - name: Pilotage in
    coefficient: "0.0139"
    tax_applicable: true
    uses_mileage: true
    pilotage: inward
    leg: in
  - name: Tugs out
    coefficient: "0.2720"
    tax_applicable: true
    tax_included: true
    leg: out
brackets:
  - min_cv: 0
    max_cv: 5000
    fee: "1000"
  - min_cv: 5001
    fee: "2000"
`

func TestRoundTrip_BuiltInProfile(t *testing.T) {
	// GIVEN: The standard profile
	// WHEN: Rendering it as JSON and parsing it back
	// THEN: Every coefficient, tag and bracket survives
	f := factory.NewTariffFactory()
	orig := ports.Standard()

	data, err := f.MarshalJSON(orig)
	require.NoError(t, err)
	back, err := f.ParseJSON(data)
	require.NoError(t, err)

	assert.Equal(t, orig.ID, back.ID)
	assert.True(t, orig.TaxRate.Equal(back.TaxRate))
	require.Len(t, back.Dues, len(orig.Dues))
	for i := range orig.Dues {
		assert.Equal(t, orig.Dues[i].Name, back.Dues[i].Name)
		assert.True(t, orig.Dues[i].Coefficient.Equal(back.Dues[i].Coefficient), orig.Dues[i].Name)
		assert.Equal(t, orig.Dues[i].TaxIncluded, back.Dues[i].TaxIncluded)
		assert.Equal(t, orig.Dues[i].Pilotage, back.Dues[i].Pilotage)
		assert.Equal(t, orig.Dues[i].Leg, back.Dues[i].Leg)
	}
	require.Len(t, back.Brackets, len(orig.Brackets))
	for i := range orig.Brackets {
		assert.True(t, orig.Brackets[i].MinCV.Equal(back.Brackets[i].MinCV))
		assert.Equal(t, orig.Brackets[i].Unbounded(), back.Brackets[i].Unbounded())
		assert.True(t, orig.Brackets[i].Fee.Equal(back.Brackets[i].Fee))
	}
}

func TestParseYAML(t *testing.T) {
	p, err := factory.NewTariffFactory().ParseYAML([]byte(smallPortYAML))
	require.NoError(t, err)

	assert.Equal(t, "small-port", p.ID)
	require.Len(t, p.Dues, 3)
	assert.Equal(t, disbursement.PilotageInward, p.Dues[1].Pilotage)
	assert.Equal(t, disbursement.LegOut, p.Dues[2].Leg)
	assert.True(t, p.Brackets[1].Unbounded())

	// The profile is usable as-is
	calc, err := disbursement.NewCalculator(p)
	require.NoError(t, err)
	in := disbursement.DefaultInputs()
	in.LBP, in.Beam, in.RDM = "50", "10", "10"
	q, err := calc.Quote(in)
	require.NoError(t, err)
	assert.Equal(t, "1000", q.AgencyFee.String())
}

func TestParseJSON_DefaultsTaxRate(t *testing.T) {
	doc := `{"id":"x","name":"X","dues":[{"name":"Tonnage","coefficient":"0.1"}],
	         "brackets":[{"min_cv":0,"fee":"100"}]}`

	p, err := factory.NewTariffFactory().ParseJSON([]byte(doc))
	require.NoError(t, err)
	assert.True(t, p.TaxRate.Equal(disbursement.DefaultTaxRate))
}

func TestParse_RejectsBadDocuments(t *testing.T) {
	f := factory.NewTariffFactory()

	tests := []struct {
		name string
		doc  string
	}{
		{"bad coefficient", `{"id":"x","dues":[{"name":"A","coefficient":"abc"}],"brackets":[{"min_cv":0,"fee":"1"}]}`},
		{"unknown leg", `{"id":"x","dues":[{"name":"A","coefficient":"1","leg":"sideways"}],"brackets":[{"min_cv":0,"fee":"1"}]}`},
		{"unknown pilotage", `{"id":"x","dues":[{"name":"A","coefficient":"1","pilotage":"up"}],"brackets":[{"min_cv":0,"fee":"1"}]}`},
		{"exponent coefficient", `{"id":"x","dues":[{"name":"A","coefficient":"1e-2000000"}],"brackets":[{"min_cv":0,"fee":"1"}]}`},
		{"exponent tax rate", `{"id":"x","tax_rate":"2E-1","dues":[{"name":"A","coefficient":"1"}],"brackets":[{"min_cv":0,"fee":"1"}]}`},
		{"bad fee", `{"id":"x","dues":[{"name":"A","coefficient":"1"}],"brackets":[{"min_cv":0,"fee":"lots"}]}`},
		{"gap", `{"id":"x","dues":[{"name":"A","coefficient":"1"}],"brackets":[{"min_cv":0,"max_cv":10,"fee":"1"},{"min_cv":20,"fee":"2"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseJSON([]byte(tt.doc))
			assert.True(t, errors.Is(err, disbursement.ErrInvalidProfile), "got %v", err)
		})
	}

	_, err := f.ParseJSON([]byte(`{not json`))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, disbursement.ErrInvalidProfile))
}

func TestLoadDir(t *testing.T) {
	// GIVEN: A directory with a YAML document, a JSON document and a README
	dir := t.TempDir()
	f := factory.NewTariffFactory()

	data, err := f.MarshalJSON(ports.Chornomorsk())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b-chornomorsk.json"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-small.yaml"), []byte(smallPortYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# tariffs"), 0o644))

	// WHEN: Loading the directory
	profiles, err := f.LoadDir(dir)

	// THEN: Both documents load, ordered by file name
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "small-port", profiles[0].ID)
	assert.Equal(t, ports.ProfileChornomorsk, profiles[1].ID)
}

func TestLoadDir_InvalidDocumentFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"id":"x"}`), 0o644))

	_, err := factory.NewTariffFactory().LoadDir(dir)
	assert.True(t, errors.Is(err, disbursement.ErrInvalidProfile))
}
