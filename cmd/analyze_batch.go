package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/waterlens-cli/internal/project"
	"github.com/KaramelBytes/waterlens-cli/internal/utils"
)

var (
	abProject   string
	abOutDir    string
	abFormat    string
	abStrict    bool
	abKeepGoing bool
	abQuiet     bool
	abFlags     parseFlags
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze many sample files, one report per file, with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		seen := map[string]struct{}{}
		for _, arg := range args {
			matches, _ := filepath.Glob(arg)
			if len(matches) == 0 {
				// treat as literal path if exists
				if _, err := os.Stat(arg); err == nil {
					matches = []string{arg}
				}
			}
			for _, m := range matches {
				if _, ok := seen[m]; ok {
					continue
				}
				seen[m] = struct{}{}
				files = append(files, m)
			}
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		sort.Strings(files)

		s := baseSettings()
		var p *project.Project
		if abProject != "" {
			projDir, err := resolveProjectDirByName(abProject)
			if err != nil {
				return err
			}
			pp, err := project.LoadProject(projDir)
			if err != nil {
				return err
			}
			p = pp
			s.applyProject(p)
		}
		s.applyGlobalFlags()
		if err := abFlags.apply(&s); err != nil {
			return err
		}
		format, err := reportFormat(abFormat, "")
		if err != nil {
			return err
		}
		pl, err := s.build()
		if err != nil {
			return err
		}

		outDir := abOutDir
		if outDir == "" && p != nil {
			outDir = p.ReportsDir()
		}
		if outDir == "" {
			outDir = "."
		}
		if err := utils.EnsureProjectDir(outDir); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		total := len(files)
		failed := 0
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			doc, err := pl.run(cmd.Context(), filepath.Base(path), []project.Source{{Path: path}}, abStrict)
			if err != nil {
				if !abKeepGoing {
					return err
				}
				failed++
				logger.Warn("sample file skipped", "file", path, "error", err)
				if !abQuiet {
					fmt.Fprintf(out, "⚠ Skipped %s: %v\n", filepath.Base(path), err)
				}
				continue
			}
			outFile := filepath.Join(outDir, utils.ReportName(path, formatExt(format)))
			if cand := uniquePath(outFile); cand != outFile {
				if !abQuiet {
					fmt.Fprintf(out, "⚠ Detected existing report, writing to %s to avoid overwrite.\n", filepath.Base(cand))
				}
				outFile = cand
			}
			if err := writeReport(out, doc, format, outFile); err != nil {
				return err
			}
			if doc.Truncated > 0 && !abQuiet {
				fmt.Fprintf(out, "⚠ %s: %d rows past the row limit not read (raise --max-rows)\n", filepath.Base(path), doc.Truncated)
			}
			if p != nil {
				p.RecordReport(project.ReportEntry{
					ID:       doc.ID,
					Path:     outFile,
					Format:   format,
					Samples:  doc.Batch.Summary.TotalSamples,
					Critical: doc.Batch.Summary.CriticalSamples,
				})
			}
			if !abQuiet {
				sum := doc.Batch.Summary
				fmt.Fprintf(out, "✓ %s: %d samples (%d safe, %d unsafe, %d critical) -> %s\n",
					filepath.Base(path), sum.TotalSamples, sum.SafeSamples, sum.UnsafeSamples, sum.CriticalSamples, outFile)
			}
		}
		if p != nil {
			if err := p.Save(); err != nil {
				return err
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&abProject, "project", "p", "", "store reports in this project")
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory for reports (default: project reports/ or current dir)")
	analyzeBatchCmd.Flags().StringVarP(&abFormat, "format", "f", "", "report format: markdown|json|xlsx (default from config)")
	analyzeBatchCmd.Flags().BoolVar(&abStrict, "strict", false, "fail a file when any of its rows is rejected")
	analyzeBatchCmd.Flags().BoolVar(&abKeepGoing, "keep-going", false, "continue with the next file when one fails")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	addParseFlags(analyzeBatchCmd, &abFlags)
}
