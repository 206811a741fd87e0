package project_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/waterlens-cli/internal/normalize"
	"github.com/KaramelBytes/waterlens-cli/internal/parser"
	"github.com/KaramelBytes/waterlens-cli/internal/project"
	"github.com/KaramelBytes/waterlens-cli/internal/standards"
)

func mapper() *normalize.Mapper {
	return normalize.NewMapper(standards.Default(), normalize.DefaultOptions())
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestAddDatasetSaveAndReload(t *testing.T) {
	tdir := t.TempDir()
	csv := write(t, tdir, "wells.csv", "date,site,ph,lead\n2024-01-01,Well 1,7.2,0.004\n2024-01-02,Well 2,,\n")

	proj := project.NewProject("river", "spring campaign", filepath.Join(tdir, "proj"))
	d, err := proj.AddDataset(csv, "  first batch ", parser.DefaultOptions(), mapper())
	if err != nil {
		t.Fatalf("add dataset: %v", err)
	}
	if d.Rows != 2 || d.Accepted != 1 || d.Rejected != 1 {
		t.Fatalf("unexpected counts: %+v", d)
	}
	if d.Description != "first batch" {
		t.Fatalf("description not trimmed: %q", d.Description)
	}
	if _, err := proj.AddDataset(csv, "", parser.DefaultOptions(), mapper()); err == nil {
		t.Fatalf("expected duplicate dataset error")
	}
	proj.RecordReport(project.ReportEntry{ID: "r1", Path: "out.md", Format: "markdown", Samples: 1})
	if err := proj.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	back, err := project.LoadProject(proj.RootDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if back.Name != "river" || len(back.Datasets) != 1 || len(back.Reports) != 1 {
		t.Fatalf("round trip lost data: %+v", back)
	}
	if back.Reports[0].CreatedAt.IsZero() {
		t.Fatalf("report timestamp not set")
	}
	if back.Config == nil {
		t.Fatalf("config should never be nil after load")
	}
}

func TestAddDatasetRejectsUnusableFile(t *testing.T) {
	tdir := t.TempDir()
	csv := write(t, tdir, "notes.csv", "site,comment\nWell 1,looked fine\n")
	proj := project.NewProject("x", "", filepath.Join(tdir, "proj"))
	_, err := proj.AddDataset(csv, "", parser.DefaultOptions(), mapper())
	if err == nil || !strings.Contains(err.Error(), "no usable samples") {
		t.Fatalf("expected no usable samples error, got %v", err)
	}
	if len(proj.Datasets) != 0 {
		t.Fatalf("dataset should not be registered")
	}
}

func TestRemoveDataset(t *testing.T) {
	tdir := t.TempDir()
	csv := write(t, tdir, "wells.csv", "ph\n7.1\n")
	proj := project.NewProject("x", "", filepath.Join(tdir, "proj"))
	if _, err := proj.AddDataset(csv, "", parser.DefaultOptions(), mapper()); err != nil {
		t.Fatal(err)
	}
	if err := proj.RemoveDataset("missing.csv"); err == nil {
		t.Fatalf("expected not found")
	}
	if err := proj.RemoveDataset("wells.csv"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(proj.Datasets) != 0 {
		t.Fatalf("dataset still present")
	}
}

func TestLoadCombinesSources(t *testing.T) {
	tdir := t.TempDir()
	a := write(t, tdir, "a.csv", "date,ph\n2024-01-01,7.0\n2024-01-02,\n")
	b := write(t, tdir, "b.json", `[{"date":"2024-02-01","ph":7.6,"lead":0.002}]`)

	proj := project.NewProject("x", "", filepath.Join(tdir, "proj"))
	for _, p := range []string{a, b} {
		if _, err := proj.AddDataset(p, "", parser.DefaultOptions(), mapper()); err != nil {
			t.Fatalf("add %s: %v", p, err)
		}
	}
	in, err := project.Load(proj.Sources(), parser.DefaultOptions(), mapper())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if in.Rows != 3 || len(in.Samples) != 2 || len(in.Rejected) != 1 {
		t.Fatalf("unexpected input: rows=%d samples=%d rejected=%d", in.Rows, len(in.Samples), len(in.Rejected))
	}
	if in.Rejected[0].Source != "a.csv" {
		t.Fatalf("rejection source: %+v", in.Rejected[0])
	}
	if len(in.Sources) != 2 {
		t.Fatalf("sources: %v", in.Sources)
	}

	if _, err := project.Load(nil, parser.DefaultOptions(), mapper()); err == nil {
		t.Fatalf("expected error for no sources")
	}
}

func TestLoadAndAddDatasetCountTruncatedRows(t *testing.T) {
	tdir := t.TempDir()
	a := write(t, tdir, "a.csv", "ph\n7.0\n7.1\n7.2\n")
	b := write(t, tdir, "b.csv", "ph\n7.3\n7.4\n7.5\n7.6\n")
	opt := parser.DefaultOptions()
	opt.MaxRows = 2

	proj := project.NewProject("x", "", filepath.Join(tdir, "proj"))
	d, err := proj.AddDataset(b, "", opt, mapper())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if d.Rows != 2 || d.Truncated != 2 {
		t.Fatalf("unexpected counts: %+v", d)
	}

	in, err := project.Load([]project.Source{{Path: a}, {Path: b}}, opt, mapper())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if in.Rows != 4 || len(in.Samples) != 4 || in.Truncated != 3 {
		t.Fatalf("unexpected input: rows=%d samples=%d truncated=%d", in.Rows, len(in.Samples), in.Truncated)
	}
}
