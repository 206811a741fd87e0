package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary    = "Summary"
	sheetSamples    = "Samples"
	sheetParameters = "Parameters"
	sheetTrends     = "Trends"
	sheetRejected   = "Rejected"
)

// WriteXLSX saves the document as a workbook at path.
func (d *Document) WriteXLSX(path string) error {
	f, err := d.workbook()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WriteXLSXTo streams the workbook to w.
func (d *Document) WriteXLSXTo(w io.Writer) error {
	f, err := d.workbook()
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (d *Document) workbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{sheetSummary, d.summaryRows()},
		{sheetSamples, d.sampleRows()},
		{sheetParameters, d.parameterRows()},
		{sheetTrends, d.trendRows()},
	}
	if len(d.Rejected) > 0 {
		sheets = append(sheets, struct {
			name string
			rows [][]interface{}
		}{sheetRejected, d.rejectedRows()})
	}
	for _, sh := range sheets {
		if sh.name != sheetSummary {
			if _, err := f.NewSheet(sh.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("new sheet %s: %w", sh.name, err)
			}
		}
		if err := writeRows(f, sh.name, sh.rows, bold); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	width := 0
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
		if len(rows[i]) > width {
			width = len(rows[i])
		}
	}
	if len(rows) == 0 || width == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(width, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	lastCol, _ := excelize.ColumnNumberToName(width)
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func (d *Document) summaryRows() [][]interface{} {
	ba := d.Batch
	s := ba.Summary
	rows := [][]interface{}{
		{"Field", "Value"},
		{"Report", d.ID},
		{"Title", d.Title},
		{"Sources", strings.Join(d.Sources, ", ")},
		{"Generated", ba.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
		{"Total samples", s.TotalSamples},
		{"Safe samples", s.SafeSamples},
		{"Unsafe samples", s.UnsafeSamples},
		{"Critical samples", s.CriticalSamples},
		{"Safe %", round(s.SafePercentage, 1)},
		{"Unsafe %", round(s.UnsafePercentage, 1)},
		{"Critical %", round(s.CriticalPercentage, 1)},
		{"Average HMPI", round(s.AvgHMPI, 3)},
		{"Average WQI", round(s.AvgWQI, 1)},
		{"Completeness %", round(ba.DataQuality.Completeness, 1)},
		{"Data quality", string(ba.DataQuality.Quality)},
		{"Reliability", string(ba.DataQuality.Reliability)},
		{"Rejected rows", len(d.Rejected)},
	}
	if d.Truncated > 0 {
		rows = append(rows, []interface{}{"Rows not read (row limit)", d.Truncated})
	}
	for _, f := range ba.KeyFindings {
		rows = append(rows, []interface{}{"Finding", f})
	}
	for _, r := range ba.Recommendations {
		rows = append(rows, []interface{}{"Recommendation", r})
	}
	return rows
}

func (d *Document) sampleRows() [][]interface{} {
	rows := [][]interface{}{{"#", "Row", "Date", "Location", "Status", "Risk", "HMPI", "HMPI status", "WQI", "WQI status", "Confidence", "Exceedances"}}
	for _, a := range d.Batch.PerSample {
		rows = append(rows, []interface{}{
			a.Index + 1, a.Row, a.SampleDate.Format("2006-01-02"), a.Location.Name,
			string(a.OverallStatus), string(a.RiskLevel),
			round(a.HMPI.Value, 3), string(a.HMPI.Status),
			round(a.WQI.Value, 1), string(a.WQI.Status),
			round(a.Confidence, 2),
			strings.Join(Exceedances(a), ", "),
		})
	}
	return rows
}

func (d *Document) parameterRows() [][]interface{} {
	rows := [][]interface{}{{"#", "Location", "Parameter", "Value", "Unit", "Limit", "Status", "Risk", "Deviation"}}
	for _, a := range d.Batch.PerSample {
		for _, name := range sortedParamKeys(a.Parameters) {
			c := a.Parameters[name]
			rows = append(rows, []interface{}{
				a.Index + 1, a.Location.Name, name,
				finite(c.Reading.Value), c.Reading.Unit, Limit(c.Reading.Standard),
				string(c.Status), string(c.RiskLevel), round(finite(c.Deviation), 4),
			})
		}
	}
	return rows
}

func (d *Document) trendRows() [][]interface{} {
	rows := [][]interface{}{{"Parameter", "Direction", "Slope", "Intercept", "R²", "Confidence", "Points"}}
	names := make([]string, 0, len(d.Batch.Trends))
	for name := range d.Batch.Trends {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := d.Batch.Trends[name]
		rows = append(rows, []interface{}{
			name, string(t.Direction), finite(t.Slope), finite(t.Intercept),
			round(t.RSquared, 4), round(t.Confidence, 2), t.Points,
		})
	}
	return rows
}

func (d *Document) rejectedRows() [][]interface{} {
	rows := [][]interface{}{{"Source", "Row", "Reason"}}
	for _, r := range d.Rejected {
		rows = append(rows, []interface{}{r.Source, r.Row, r.Reason})
	}
	return rows
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(finite(v)*p) / p
}
