package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/waterlens-cli/internal/normalize"
	"github.com/KaramelBytes/waterlens-cli/internal/parser"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func text(t *testing.T, rec normalize.RawRecord, key string) string {
	t.Helper()
	v, ok := rec.Get(key)
	if !ok {
		t.Fatalf("row %d has no %q field: %+v", rec.Row, key, rec.Fields)
	}
	return v.Raw()
}

func TestParseFileCSV(t *testing.T) {
	p := writeFile(t, "wells.csv", "\ufeffdate,site,pH,Arsenic (µg/L),notes\n"+
		"2024-01-01,Well 1,7.2,4,\n"+
		",,,,\n"+
		"2024-02-01,Well 1,7.4,12,\"turbid, after rain\"\n")
	res, err := parser.ParseFile(p, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	recs := res.Records
	if len(recs) != 2 {
		t.Fatalf("expected 2 records (blank row skipped), got %d", len(recs))
	}
	if recs[0].Row != 1 || recs[1].Row != 3 {
		t.Fatalf("unexpected row numbers: %d, %d", recs[0].Row, recs[1].Row)
	}
	if got := text(t, recs[0], "date"); got != "2024-01-01" {
		t.Fatalf("BOM not stripped from first header, got %q", got)
	}
	if got := text(t, recs[1], "Arsenic (µg/L)"); got != "12" {
		t.Fatalf("arsenic: %q", got)
	}
	if got := text(t, recs[1], "notes"); got != "turbid, after rain" {
		t.Fatalf("quoted field: %q", got)
	}
	if _, ok := recs[0].Get("notes"); ok {
		t.Fatalf("blank cell should be omitted")
	}
	if recs[0].Fields[0].Key != "date" || recs[0].Fields[1].Key != "site" {
		t.Fatalf("column order not preserved: %+v", recs[0].Fields)
	}
}

func TestParseFileCSVSniffsSemicolons(t *testing.T) {
	p := writeFile(t, "eu.csv", "Datum;Station;pH;Blei (mg/L)\n01.03.2024;Brunnen 2;7,1;0,004\n")
	res, err := parser.ParseFile(p, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	recs := res.Records
	if len(recs) != 1 || len(recs[0].Fields) != 4 {
		t.Fatalf("expected one record with 4 fields, got %+v", recs)
	}
	if got := text(t, recs[0], "pH"); got != "7,1" {
		t.Fatalf("pH: %q", got)
	}
}

func TestParseFileTSVAndMaxRows(t *testing.T) {
	p := writeFile(t, "lab.tsv", "site\tlead\nA\t0.01\nB\t0.02\nC\t0.03\n")
	opt := parser.DefaultOptions()
	opt.MaxRows = 2
	res, err := parser.ParseFile(p, opt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	recs := res.Records
	if len(recs) != 2 {
		t.Fatalf("expected MaxRows to cap at 2, got %d", len(recs))
	}
	if res.Truncated != 1 {
		t.Fatalf("expected 1 truncated row, got %d", res.Truncated)
	}
}

func TestParseFileTruncationSkipsBlankRows(t *testing.T) {
	p := writeFile(t, "lab.csv", "site,lead\nA,0.01\nB,0.02\n,\nC,0.03\nD,0.04\n")
	opt := parser.DefaultOptions()
	opt.MaxRows = 2
	res, err := parser.ParseFile(p, opt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Records) != 2 || res.Truncated != 2 {
		t.Fatalf("expected 2 records and 2 truncated, got %d and %d", len(res.Records), res.Truncated)
	}

	opt.MaxRows = 0
	res, err = parser.ParseFile(p, opt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Records) != 4 || res.Truncated != 0 {
		t.Fatalf("unlimited read: got %d records, %d truncated", len(res.Records), res.Truncated)
	}
}

func TestParseFileJSONTruncation(t *testing.T) {
	p := writeFile(t, "samples.json", `[{"lead": 0.01}, {"lead": 0.02}, {}, {"lead": 0.03}]`)
	opt := parser.DefaultOptions()
	opt.MaxRows = 1
	res, err := parser.ParseFile(p, opt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Records) != 1 || res.Truncated != 2 {
		t.Fatalf("expected 1 record and 2 truncated, got %d and %d", len(res.Records), res.Truncated)
	}
}

func TestParseFileCSVEmpty(t *testing.T) {
	res, err := parser.ParseFile(writeFile(t, "empty.csv", ""), parser.DefaultOptions())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	recs := res.Records
	if len(recs) != 0 {
		t.Fatalf("expected no records, got %d", len(recs))
	}
}

func TestParseFileJSON(t *testing.T) {
	p := writeFile(t, "samples.json", `[
		{"date": "2024-01-01", "ph": 7.0, "arsenic": "20", "arsenic unit": "µg/L", "meta": {"lab": "x"}},
		{"site": "Well 3", "lead": 0.004, "flagged": true, "comment": null}
	]`)
	res, err := parser.ParseFile(p, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	recs := res.Records
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	keys := make([]string, 0, len(recs[0].Fields))
	for _, f := range recs[0].Fields {
		keys = append(keys, f.Key)
	}
	if strings.Join(keys, ",") != "date,ph,arsenic,arsenic unit" {
		t.Fatalf("key order or nested skip wrong: %v", keys)
	}
	ph, _ := recs[0].Get("ph")
	if !ph.IsNum || ph.Num != 7 {
		t.Fatalf("ph should be numeric 7, got %+v", ph)
	}
	if got := text(t, recs[1], "flagged"); got != "true" {
		t.Fatalf("flagged: %q", got)
	}
}

func TestParseFileJSONRejectsObjects(t *testing.T) {
	_, err := parser.ParseFile(writeFile(t, "bad.json", `{"ph": 7}`), parser.DefaultOptions())
	if err == nil {
		t.Fatalf("expected error for non-array json")
	}
}

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName(f.GetSheetName(0), "Readme")
	f.SetCellValue("Readme", "A1", "Field campaign 2024")
	if _, err := f.NewSheet("Samples"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	rows := [][]interface{}{
		{"Station", "Date", "pH", "Lead (µg/L)", "Nitrate"},
		{"River A", "2024-03-01", 7.1, 8, 12.5},
		{},
		{"River B", "2024-03-02", 6.4, 30, 50},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+3) // two blank rows above the header
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow("Samples", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	p := filepath.Join(t.TempDir(), "campaign.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("failed to save temp workbook: %v", err)
	}
	return p
}

func TestParseFileXLSXBySheetName(t *testing.T) {
	p := writeWorkbook(t)
	opt := parser.DefaultOptions()
	opt.SheetName = "samples"
	res, err := parser.ParseFile(p, opt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	recs := res.Records
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(recs), recs)
	}
	if got := text(t, recs[0], "Station"); got != "River A" {
		t.Fatalf("station: %q", got)
	}
	if got := text(t, recs[1], "Lead (µg/L)"); got != "30" {
		t.Fatalf("lead: %q", got)
	}
	if recs[1].Row != 3 {
		t.Fatalf("row numbering should count the blank row, got %d", recs[1].Row)
	}
}

func TestParseFileXLSXBySheetIndex(t *testing.T) {
	p := writeWorkbook(t)
	opt := parser.DefaultOptions()
	opt.SheetIndex = 2
	res, err := parser.ParseFile(p, opt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	recs := res.Records
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}

	opt.SheetIndex = 1
	res, err = parser.ParseFile(p, opt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	recs = res.Records
	if len(recs) != 0 {
		t.Fatalf("readme sheet has only a header row, got %d records", len(recs))
	}
}

func TestParseFileXLSXTruncation(t *testing.T) {
	p := writeWorkbook(t)
	opt := parser.DefaultOptions()
	opt.SheetName = "Samples"
	opt.MaxRows = 1
	res, err := parser.ParseFile(p, opt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Records) != 1 || res.Truncated != 1 {
		t.Fatalf("expected 1 record and 1 truncated, got %d and %d", len(res.Records), res.Truncated)
	}
}

func TestParseFileXLSXUnknownSheet(t *testing.T) {
	opt := parser.DefaultOptions()
	opt.SheetName = "Results"
	_, err := parser.ParseFile(writeWorkbook(t), opt)
	if err == nil || !strings.Contains(err.Error(), "Available sheets: Readme, Samples") {
		t.Fatalf("expected available sheets in error, got %v", err)
	}
}

func TestParseFileUnsupported(t *testing.T) {
	_, err := parser.ParseFile(writeFile(t, "notes.docx", "x"), parser.DefaultOptions())
	if !errors.Is(err, parser.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if parser.Supported("a.docx") || !parser.Supported("A.XLSX") {
		t.Fatalf("Supported mismatch")
	}
}
