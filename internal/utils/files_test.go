package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileReplaces(t *testing.T) {
	p := filepath.Join(t.TempDir(), "project.json")
	if err := SafeWriteFile(p, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := SafeWriteFile(p, []byte("two")); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "two" {
		t.Fatalf("got %q", b)
	}
	entries, _ := os.ReadDir(filepath.Dir(p))
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "project.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "data", "2024")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	f := filepath.Join(nested, "wells.csv")
	if err := os.WriteFile(f, []byte("ph\n7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FindProjectRoot(f)
	if err != nil {
		t.Fatal(err)
	}
	if got != root {
		t.Fatalf("expected %s, got %s", root, got)
	}
	if _, err := FindProjectRoot(t.TempDir()); !errors.Is(err, ErrNoProject) {
		t.Fatalf("expected ErrNoProject, got %v", err)
	}
}

func TestReportName(t *testing.T) {
	cases := map[string]string{
		"/data/River Survey (Jan).xlsx": "river-survey-jan.report.md",
		"wells.csv":                     "wells.report.md",
		".csv":                          "samples.report.md",
	}
	for in, want := range cases {
		if got := ReportName(in, ".md"); got != want {
			t.Errorf("ReportName(%q) = %q, want %q", in, got, want)
		}
	}
}
