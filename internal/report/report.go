package report

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/waterlens-cli/internal/analysis"
	"github.com/KaramelBytes/waterlens-cli/internal/normalize"
	"github.com/KaramelBytes/waterlens-cli/internal/standards"
)

// Document is a rendered-ready analysis of one or more sample files.
type Document struct {
	ID        string                  `json:"id"`
	Title     string                  `json:"title"`
	Sources   []string                `json:"sources"`
	Rows      int                     `json:"rows"`
	Rejected  []normalize.Rejection   `json:"rejected,omitempty"`
	Truncated int                     `json:"truncated,omitempty"` // rows past the row limit, never read
	Batch     *analysis.BatchAnalysis `json:"analysis"`
}

// New wraps a batch result with a fresh report id.
func New(title string, sources []string, rows int, rejected []normalize.Rejection, batch *analysis.BatchAnalysis) *Document {
	return &Document{
		ID:       uuid.NewString(),
		Title:    title,
		Sources:  sources,
		Rows:     rows,
		Rejected: rejected,
		Batch:    batch,
	}
}

// JSON renders the document as indented JSON.
func (d *Document) JSON() ([]byte, error) {
	out := *d
	if d.Batch != nil {
		out.Batch = sanitized(d.Batch)
	}
	b, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(b, '\n'), nil
}

// Markdown renders a compact report suitable for sharing or standalone docs.
func (d *Document) Markdown() string {
	var b strings.Builder
	ba := d.Batch
	s := ba.Summary

	b.WriteString("[BATCH SUMMARY]\n")
	if d.Title != "" {
		b.WriteString(fmt.Sprintf("Title: %s\n", d.Title))
	}
	if len(d.Sources) > 0 {
		b.WriteString(fmt.Sprintf("Sources: %s\n", strings.Join(d.Sources, ", ")))
	}
	b.WriteString(fmt.Sprintf("Report: %s (generated %s)\n", d.ID, ba.GeneratedAt.UTC().Format(time.RFC3339)))
	if d.Rows > 0 {
		b.WriteString(fmt.Sprintf("Rows: %d (accepted %d, rejected %d)\n", d.Rows, s.TotalSamples, len(d.Rejected)))
	}
	b.WriteString(fmt.Sprintf("Samples: %d\n", s.TotalSamples))
	b.WriteString(fmt.Sprintf("- safe: %d (%.1f%%)\n", s.SafeSamples, s.SafePercentage))
	b.WriteString(fmt.Sprintf("- unsafe: %d (%.1f%%)\n", s.UnsafeSamples, s.UnsafePercentage))
	b.WriteString(fmt.Sprintf("- critical: %d (%.1f%%)\n", s.CriticalSamples, s.CriticalPercentage))
	b.WriteString(fmt.Sprintf("Average HMPI: %.3f\n", s.AvgHMPI))
	b.WriteString(fmt.Sprintf("Average WQI: %.1f\n\n", s.AvgWQI))

	dq := ba.DataQuality
	b.WriteString("[DATA QUALITY]\n")
	b.WriteString(fmt.Sprintf("Completeness: %.1f%% (quality %s, reliability %s)\n", dq.Completeness, dq.Quality, dq.Reliability))
	if d.Truncated > 0 {
		b.WriteString(fmt.Sprintf("Warning: %d rows past the row limit were not read; this report does not cover them.\n", d.Truncated))
	}
	b.WriteString("\n")

	if len(ba.Trends) > 0 {
		b.WriteString("[TRENDS]\n")
		for _, name := range sortedTrendKeys(ba.Trends) {
			t := ba.Trends[name]
			if t.Direction == analysis.DirectionInsufficientData {
				b.WriteString(fmt.Sprintf("- %s: insufficient data (%d points)\n", name, t.Points))
				continue
			}
			b.WriteString(fmt.Sprintf("- %s: %s, slope %.4g, R² %.3f, confidence %.2f (%d points)\n",
				name, t.Direction, t.Slope, t.RSquared, t.Confidence, t.Points))
		}
		b.WriteString("\n")
	}

	writeList(&b, "[KEY FINDINGS]", ba.KeyFindings)
	writeList(&b, "[RECOMMENDATIONS]", ba.Recommendations)

	b.WriteString("[SAMPLES]\n")
	b.WriteString("| # | Date | Location | Status | Risk | HMPI | WQI | Exceedances |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- |\n")
	for _, a := range ba.PerSample {
		b.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %.3f | %.1f (%s) | %s |\n",
			a.Index+1,
			a.SampleDate.Format("2006-01-02"),
			safeVal(a.Location.Name),
			a.OverallStatus,
			a.RiskLevel,
			a.HMPI.Value,
			a.WQI.Value, a.WQI.Status,
			safeVal(strings.Join(Exceedances(a), ", ")),
		))
	}

	if len(d.Rejected) > 0 {
		b.WriteString("\n[REJECTED ROWS]\n")
		for _, r := range d.Rejected {
			if r.Source != "" {
				b.WriteString(fmt.Sprintf("- %s row %d: %s\n", r.Source, r.Row, r.Reason))
				continue
			}
			b.WriteString(fmt.Sprintf("- row %d: %s\n", r.Row, r.Reason))
		}
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(title)
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// Exceedances lists "name=value" for every parameter that is unsafe or
// critical, sorted by name.
func Exceedances(a analysis.SampleAnalysis) []string {
	var out []string
	for _, name := range sortedParamKeys(a.Parameters) {
		c := a.Parameters[name]
		if c.Status != analysis.StatusUnsafe && c.Status != analysis.StatusCritical {
			continue
		}
		out = append(out, fmt.Sprintf("%s=%.4g", name, c.Reading.Value))
	}
	return out
}

// Limit renders a standard's bound, e.g. "6.5-8.5", "<= 0.01", ">= 5".
func Limit(std *standards.ParameterStandard) string {
	if std == nil {
		return ""
	}
	switch {
	case std.HasMin() && std.HasMax():
		return fmt.Sprintf("%g-%g", std.MinValue(), std.MaxValue())
	case std.HasMin():
		return fmt.Sprintf(">= %g", std.MinValue())
	case std.HasMax():
		return fmt.Sprintf("<= %g", std.MaxValue())
	}
	return ""
}

func sortedTrendKeys(m map[string]analysis.TrendResult) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedParamKeys(m map[string]analysis.ParameterClassification) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// sanitized copies the per-sample results with non-finite readings zeroed;
// encoding/json refuses NaN.
func sanitized(b *analysis.BatchAnalysis) *analysis.BatchAnalysis {
	out := *b
	out.PerSample = make([]analysis.SampleAnalysis, len(b.PerSample))
	for i, a := range b.PerSample {
		params := make(map[string]analysis.ParameterClassification, len(a.Parameters))
		for name, c := range a.Parameters {
			c.Reading.Value = finite(c.Reading.Value)
			c.Deviation = finite(c.Deviation)
			params[name] = c
		}
		a.Parameters = params
		out.PerSample[i] = a
	}
	return &out
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
