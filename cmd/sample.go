package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/waterlens-cli/internal/analysis"
	"github.com/KaramelBytes/waterlens-cli/internal/normalize"
	"github.com/KaramelBytes/waterlens-cli/internal/report"
)

var (
	smpSite string
	smpDate string
	smpJSON bool
)

var sampleCmd = &cobra.Command{
	Use:   "sample <parameter=value>...",
	Short: "Score a single sample given on the command line",
	Example: `  waterlens sample ph=7.2 "Lead (µg/L)=12" turbidity=3 --site "Well 4"
  waterlens sample arsenic=20 "arsenic unit=µg/L" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec := normalize.RawRecord{Row: 1}
		for _, a := range args {
			k, v, ok := strings.Cut(a, "=")
			if !ok || strings.TrimSpace(k) == "" {
				return fmt.Errorf("expected parameter=value, got %q", a)
			}
			rec.Set(strings.TrimSpace(k), normalize.String(strings.TrimSpace(v)))
		}
		if smpSite != "" {
			rec.Set("site", normalize.String(smpSite))
		}
		if smpDate != "" {
			rec.Set("date", normalize.String(smpDate))
		}

		s := baseSettings()
		s.applyGlobalFlags()
		pl, err := s.build()
		if err != nil {
			return err
		}
		smp := pl.mapper.Normalize(rec)
		if smp == nil {
			return fmt.Errorf("no usable parameter values in %v", args)
		}
		a, err := pl.engine.AnalyzeSample(*smp)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if smpJSON {
			b, err := json.MarshalIndent(a, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal sample: %w", err)
			}
			_, err = fmt.Fprintln(out, string(b))
			return err
		}
		fmt.Fprintf(out, "%s %s: %s (risk %s, confidence %.2f)\n", statusMark(a.OverallStatus), a.Location.Name, a.OverallStatus, a.RiskLevel, a.Confidence)
		names := make([]string, 0, len(a.Parameters))
		for name := range a.Parameters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c := a.Parameters[name]
			limit := report.Limit(c.Reading.Standard)
			if limit == "" {
				limit = "no standard"
			}
			fmt.Fprintf(out, "  %s %-22s %10.4g %-10s %-12s %s\n", statusMark(c.Status), name, c.Reading.Value, c.Reading.Unit, limit, c.Status)
		}
		if a.HMPI.Used > 0 {
			fmt.Fprintf(out, "HMPI: %.3f (%s)\n", a.HMPI.Value, a.HMPI.Status)
		}
		if a.WQI.Used > 0 {
			fmt.Fprintf(out, "WQI: %.1f (%s)\n", a.WQI.Value, strings.ReplaceAll(string(a.WQI.Status), "_", " "))
		}
		for _, f := range a.KeyFindings {
			fmt.Fprintf(out, "- %s\n", f)
		}
		for _, r := range a.Recommendations {
			fmt.Fprintf(out, "→ %s\n", r)
		}
		return nil
	},
}

func statusMark(s analysis.Status) string {
	switch s {
	case analysis.StatusSafe:
		return "✓"
	case analysis.StatusUnsafe:
		return "⚠"
	case analysis.StatusCritical:
		return "✗"
	}
	return "?"
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().StringVar(&smpSite, "site", "", "sampling site name")
	sampleCmd.Flags().StringVar(&smpDate, "date", "", "sample date (default today)")
	sampleCmd.Flags().BoolVar(&smpJSON, "json", false, "print the full analysis as JSON")
}
