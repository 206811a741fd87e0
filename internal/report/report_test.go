package report

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/waterlens-cli/internal/analysis"
	"github.com/KaramelBytes/waterlens-cli/internal/normalize"
	"github.com/KaramelBytes/waterlens-cli/internal/standards"
)

func testBatch(t *testing.T) *analysis.BatchAnalysis {
	t.Helper()
	reg := standards.Default()
	opt := analysis.DefaultOptions()
	opt.Now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	e := analysis.NewEngine(reg, opt, nil)

	mk := func(d int, site string, values map[string]float64) normalize.Sample {
		s := normalize.Sample{
			Row:        d + 1,
			SampleDate: time.Date(2024, 1, 1+d, 0, 0, 0, 0, time.UTC),
			Location:   normalize.Location{Name: site},
			Readings:   map[string]normalize.ParameterReading{},
		}
		for name, v := range values {
			std, _ := reg.Lookup(name)
			s.Readings[name] = normalize.ParameterReading{Parameter: name, Value: v, Unit: std.Unit, Standard: &std}
		}
		return s
	}
	samples := []normalize.Sample{
		mk(0, "Well 1", map[string]float64{standards.PH: 7.5, standards.Lead: 0.001}),
		mk(1, "Well | 2", map[string]float64{standards.PH: 7.4, standards.Lead: 0.05}),
	}
	b, err := e.AnalyzeBatch(context.Background(), samples)
	require.NoError(t, err)
	return b
}

func testDocument(t *testing.T) *Document {
	return New("January wells", []string{"wells.csv"}, 3,
		[]normalize.Rejection{{Row: 3, Reason: "no recognizable parameters"}}, testBatch(t))
}

func TestNewAssignsID(t *testing.T) {
	a, b := testDocument(t), testDocument(t)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestMarkdownSections(t *testing.T) {
	md := testDocument(t).Markdown()
	for _, want := range []string{
		"[BATCH SUMMARY]", "[DATA QUALITY]", "[TRENDS]", "[KEY FINDINGS]",
		"[RECOMMENDATIONS]", "[SAMPLES]", "[REJECTED ROWS]",
		"Title: January wells",
		"Rows: 3 (accepted 2, rejected 1)",
		"- critical: 1 (50.0%)",
		"- row 3: no recognizable parameters",
		analysis.RecImmediateAction,
	} {
		assert.Contains(t, md, want)
	}
	assert.Contains(t, md, "| 2 | 2024-01-02 | Well / 2 | critical |", "pipes in cells must be escaped")
	assert.Contains(t, md, "lead=0.05")
}

func TestMarkdownOmitsEmptyRejections(t *testing.T) {
	d := New("", nil, 0, nil, testBatch(t))
	md := d.Markdown()
	assert.NotContains(t, md, "[REJECTED ROWS]")
	assert.NotContains(t, md, "Title:")
}

func TestTruncationWarning(t *testing.T) {
	d := testDocument(t)
	assert.NotContains(t, d.Markdown(), "row limit")

	d.Truncated = 7
	assert.Contains(t, d.Markdown(), "Warning: 7 rows past the row limit were not read")

	b, err := d.JSON()
	require.NoError(t, err)
	var back map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &back))
	assert.EqualValues(t, 7, back["truncated"])

	var buf bytes.Buffer
	require.NoError(t, d.WriteXLSXTo(&buf))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Contains(t, summary, []string{"Rows not read (row limit)", "7"})
}

func TestJSONSanitizesNonFinite(t *testing.T) {
	d := testDocument(t)
	a := d.Batch.PerSample[0]
	c := a.Parameters[standards.Lead]
	c.Reading.Value = math.NaN()
	a.Parameters[standards.Lead] = c

	b, err := d.JSON()
	require.NoError(t, err)
	var back map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d.ID, back["id"])
	assert.Contains(t, back, "analysis")
	assert.True(t, math.IsNaN(d.Batch.PerSample[0].Parameters[standards.Lead].Reading.Value), "source batch is left untouched")
}

func TestWriteXLSX(t *testing.T) {
	d := testDocument(t)
	p := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, d.WriteXLSX(p))

	f, err := excelize.OpenFile(p)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Summary", "Samples", "Parameters", "Trends", "Rejected"}, f.GetSheetList())

	rows, err := f.GetRows("Samples")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Status", rows[0][4])
	assert.Equal(t, "critical", rows[2][4])

	params, err := f.GetRows("Parameters")
	require.NoError(t, err)
	assert.Len(t, params, 5)
	assert.Equal(t, "<= 0.01", params[1][5])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Total samples", "2"}, summary[5])
}

func TestWriteXLSXToWithoutRejections(t *testing.T) {
	d := New("", nil, 0, nil, testBatch(t))
	var buf bytes.Buffer
	require.NoError(t, d.WriteXLSXTo(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Summary", "Samples", "Parameters", "Trends"}, f.GetSheetList())
}

func TestLimit(t *testing.T) {
	reg := standards.Default()
	ph, _ := reg.Lookup(standards.PH)
	do, _ := reg.Lookup(standards.DissolvedOxygen)
	assert.Equal(t, "6.5-8.5", Limit(&ph))
	assert.Equal(t, ">= 5", Limit(&do))
	assert.Equal(t, "", Limit(nil))
}
