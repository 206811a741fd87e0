package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/waterlens-cli/internal/analysis"
	"github.com/KaramelBytes/waterlens-cli/internal/project"
	"github.com/KaramelBytes/waterlens-cli/internal/utils"
)

var (
	anaProject    string
	anaOutputPath string
	anaFormat     string
	anaTitle      string
	anaStrict     bool
	anaFailOn     string
	anaFlags      parseFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Analyze sample files (CSV/TSV/XLSX/JSON) as one batch and write a report",
	Long: `Analyze reads every given file, or every dataset of a project with -p, normalizes the rows into
samples and scores them as a single batch. The report goes to stdout unless --output is set; with -p it is
stored under the project's reports/ directory and recorded in the project history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && anaProject == "" {
			return fmt.Errorf("give at least one sample file or --project")
		}
		s := baseSettings()

		var p *project.Project
		var sources []project.Source
		if anaProject != "" {
			projDir, err := resolveProjectDirByName(anaProject)
			if err != nil {
				return err
			}
			pp, err := project.LoadProject(projDir)
			if err != nil {
				return err
			}
			p = pp
			s.applyProject(p)
			sources = p.Sources()
			if len(sources) == 0 && len(args) == 0 {
				return fmt.Errorf("project '%s' has no datasets; add one with 'waterlens add -p %s <file>'", p.Name, p.Name)
			}
		}
		for _, a := range args {
			sources = append(sources, project.Source{Path: a})
		}
		s.applyGlobalFlags()
		if err := anaFlags.apply(&s); err != nil {
			return err
		}
		format, err := reportFormat(anaFormat, anaOutputPath)
		if err != nil {
			return err
		}
		threshold, err := failThreshold(anaFailOn)
		if err != nil {
			return err
		}

		pl, err := s.build()
		if err != nil {
			return err
		}
		title := anaTitle
		if title == "" && p != nil {
			title = p.Name
		}
		doc, err := pl.run(cmd.Context(), title, sources, anaStrict)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		output := anaOutputPath
		if output == "" && p != nil {
			if err := utils.EnsureProjectDir(p.ReportsDir()); err != nil {
				return err
			}
			name := utils.Slug(p.Name+"-"+time.Now().Format("20060102-150405")) + ".report" + formatExt(format)
			output = uniquePath(filepath.Join(p.ReportsDir(), name))
		}
		if err := writeReport(out, doc, format, output); err != nil {
			return err
		}
		if output != "" {
			fmt.Fprintf(out, "✓ Wrote %s report for %d samples to %s\n", format, doc.Batch.Summary.TotalSamples, output)
		}
		if n := len(doc.Rejected); n > 0 && output != "" {
			fmt.Fprintf(out, "⚠ %d rows rejected (see [REJECTED ROWS])\n", n)
		}
		if doc.Truncated > 0 {
			w := out
			if output == "" {
				w = cmd.ErrOrStderr()
			}
			fmt.Fprintf(w, "⚠ %d rows past the row limit not read (raise --max-rows)\n", doc.Truncated)
		}
		if p != nil {
			p.RecordReport(project.ReportEntry{
				ID:       doc.ID,
				Path:     output,
				Format:   format,
				Samples:  doc.Batch.Summary.TotalSamples,
				Critical: doc.Batch.Summary.CriticalSamples,
			})
			if err := p.Save(); err != nil {
				return err
			}
		}
		return checkThreshold(doc, threshold)
	},
}

func addParseFlags(cmd *cobra.Command, f *parseFlags) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	cmd.Flags().StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	cmd.Flags().StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum rows to read per file (default 100000)")
	cmd.Flags().StringVar(&f.keyParams, "key-params", "", "comma-separated parameters to trend (default "+strings.Join(analysis.DefaultKeyParameters, ",")+")")
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaProject, "project", "p", "", "analyze every dataset of this project")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "path to write the report (stdout if omitted)")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "", "report format: markdown|json|xlsx (default from config or --output extension)")
	analyzeCmd.Flags().StringVar(&anaTitle, "title", "", "report title")
	analyzeCmd.Flags().BoolVar(&anaStrict, "strict", false, "fail when any row is rejected")
	analyzeCmd.Flags().StringVar(&anaFailOn, "fail-on", "", "exit non-zero when samples reach this status: none|unsafe|critical")
	addParseFlags(analyzeCmd, &anaFlags)
}
