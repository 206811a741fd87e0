package standards

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryCoversAllCategories(t *testing.T) {
	reg := Default()

	assert.Len(t, reg.ByCategory(CategoryPhysical), 5)
	assert.Len(t, reg.ByCategory(CategoryChemical), 5)
	assert.Len(t, reg.ByCategory(CategoryHeavyMetal), 10)
	assert.Len(t, reg.ByCategory(CategoryNutrient), 4)
	assert.Len(t, reg.ByCategory(CategoryMicrobiological), 3)
	assert.Equal(t, 27, reg.Len())

	for _, s := range reg.All() {
		assert.Truef(t, s.HasMin() || s.HasMax(), "%s has no bound", s.Name)
		assert.NotEmptyf(t, s.Unit, "%s has no unit", s.Name)
	}

	ph, ok := reg.Lookup(PH)
	require.True(t, ok)
	assert.True(t, ph.HasMin())
	assert.True(t, ph.HasMax())
	assert.Equal(t, 6.5, ph.MinValue())
	assert.Equal(t, 8.5, ph.MaxValue())

	for _, m := range HeavyMetals {
		s, ok := reg.Lookup(m)
		require.Truef(t, ok, "missing metal %s", m)
		assert.Equal(t, "mg/L", s.Unit)
		assert.Equal(t, CategoryHeavyMetal, s.Category)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	reg := Default()
	s, ok := reg.Lookup(Arsenic)
	require.True(t, ok)
	*s.Max = 99

	again, _ := reg.Lookup(Arsenic)
	assert.Equal(t, 0.01, again.MaxValue())

	names := reg.Names()
	names[0] = "tampered"
	assert.NotEqual(t, "tampered", reg.Names()[0])
}

func TestLookupMissing(t *testing.T) {
	_, ok := Default().Lookup("chlorophyll")
	assert.False(t, ok)

	var nilReg *Registry
	_, ok = nilReg.Lookup(PH)
	assert.False(t, ok)
	assert.Zero(t, nilReg.Len())
}

func TestResolve(t *testing.T) {
	reg := Default()
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{PH, PH, true},
		{"PH", PH, true},
		{"LEAD", Lead, true},
		{"totaldissolvedsolids", TotalDissolvedSolids, true},
		{"Total Dissolved Solids", TotalDissolvedSolids, true},
		{"  arsenic ", Arsenic, true},
		{"chlorophyll", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := reg.Resolve(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	custom := New(ParameterStandard{Name: "Fluoride", Label: "F-", Unit: "mg/L", Category: CategoryChemical, Max: f(1.5)})
	got, ok := custom.Resolve("fluoride")
	require.True(t, ok)
	assert.Equal(t, "Fluoride", got)
	got, ok = custom.Resolve("f-")
	require.True(t, ok)
	assert.Equal(t, "Fluoride", got)

	var nilReg *Registry
	_, ok = nilReg.Resolve(PH)
	assert.False(t, ok)
}

func TestLoadFileOverridesAndExtends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "standards.yaml")
	body := `standards:
  - name: arsenic
    unit: mg/L
    max: 0.05
  - name: fluoride
    label: Fluoride
    unit: mg/L
    category: chemical
    max: 1.5
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	reg, err := LoadFile(path)
	require.NoError(t, err)

	as, ok := reg.Lookup(Arsenic)
	require.True(t, ok)
	assert.Equal(t, 0.05, as.MaxValue())
	assert.Equal(t, "Arsenic", as.Label)
	assert.Equal(t, CategoryHeavyMetal, as.Category)

	fl, ok := reg.Lookup("fluoride")
	require.True(t, ok)
	assert.Equal(t, 1.5, fl.MaxValue())
	assert.Equal(t, 28, reg.Len())
}

func TestParseRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing unit", "standards:\n  - name: lead\n    max: 0.01\n", "Unit is required"},
		{"no bound", "standards:\n  - name: lead\n    unit: mg/L\n", "at least one of min or max"},
		{"min above max", "standards:\n  - name: pH\n    unit: pH\n    min: 9\n    max: 7\n", "min must not exceed max"},
		{"negative", "standards:\n  - name: lead\n    unit: mg/L\n    max: -1\n", "must not be negative"},
		{"bad category", "standards:\n  - name: lead\n    unit: mg/L\n    max: 1\n    category: metals\n", "must be one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("inline.yaml", []byte(tt.body))
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %T: %v", err, err)
			assert.Contains(t, ve.Error(), tt.want)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
