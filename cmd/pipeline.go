package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/KaramelBytes/waterlens-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/waterlens-cli/internal/config"
	"github.com/KaramelBytes/waterlens-cli/internal/normalize"
	"github.com/KaramelBytes/waterlens-cli/internal/parser"
	"github.com/KaramelBytes/waterlens-cli/internal/project"
	"github.com/KaramelBytes/waterlens-cli/internal/report"
	"github.com/KaramelBytes/waterlens-cli/internal/standards"
	"github.com/KaramelBytes/waterlens-cli/internal/utils"
)

// settings merges global config, project overrides and command flags, in
// that order of increasing precedence.
type settings struct {
	StandardsFile string
	Decimal       rune
	Thousands     rune
	Workers       int
	KeyParameters []string
	Parse         parser.Options
}

func baseSettings() settings {
	s := settings{Parse: parser.DefaultOptions()}
	if cfg != nil {
		s.StandardsFile = cfg.StandardsFile
		s.Decimal = cfgpkg.Separator(cfg.DecimalSeparator)
		s.Thousands = cfgpkg.Separator(cfg.ThousandsSeparator)
		s.Workers = cfg.Workers
		s.Parse.SheetName = cfg.SheetName
		if cfg.SheetIndex > 0 {
			s.Parse.SheetIndex = cfg.SheetIndex
		}
	}
	return s
}

func (s *settings) applyProject(p *project.Project) {
	if p == nil || p.Config == nil {
		return
	}
	c := p.Config
	if c.StandardsFile != "" {
		s.StandardsFile = c.StandardsFile
	}
	if c.DecimalSeparator != "" {
		s.Decimal = cfgpkg.Separator(c.DecimalSeparator)
	}
	if c.ThousandsSeparator != "" {
		s.Thousands = cfgpkg.Separator(c.ThousandsSeparator)
	}
	if len(c.KeyParameters) > 0 {
		s.KeyParameters = c.KeyParameters
	}
}

// applyGlobalFlags layers the persistent root flags on top.
func (s *settings) applyGlobalFlags() {
	if flagStandards != "" {
		s.StandardsFile = flagStandards
	}
	if flagWorkers > 0 {
		s.Workers = flagWorkers
	}
}

// parseFlags holds the sample-file flags shared by analyze and analyze-batch.
type parseFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	sheetName  string
	sheetIndex int
	maxRows    int
	keyParams  string
}

func (f parseFlags) apply(s *settings) error {
	if f.delimiter != "" {
		switch f.delimiter {
		case ",":
			s.Parse.Delimiter = ','
		case "\t", "tab":
			s.Parse.Delimiter = '\t'
		case ";":
			s.Parse.Delimiter = ';'
		default:
			return fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
		}
	}
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		s.Decimal = ','
	case ".", "dot":
		s.Decimal = '.'
	case "":
	default:
		return fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(f.thousands)) {
	case ",":
		s.Thousands = ','
	case ".":
		s.Thousands = '.'
	case "space", " ":
		s.Thousands = ' '
	case "":
	default:
		return fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	if s.Decimal != 0 && s.Decimal == s.Thousands {
		return fmt.Errorf("decimal and thousands separators must differ")
	}
	if f.sheetName != "" {
		s.Parse.SheetName = f.sheetName
	}
	if f.sheetIndex > 0 {
		s.Parse.SheetIndex = f.sheetIndex
	}
	if f.maxRows > 0 {
		s.Parse.MaxRows = f.maxRows
	}
	if f.keyParams != "" {
		var keys []string
		for _, k := range strings.Split(f.keyParams, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		s.KeyParameters = keys
	}
	return nil
}

// pipeline wires parser, mapper and engine around one registry.
type pipeline struct {
	reg    *standards.Registry
	mapper *normalize.Mapper
	engine *analysis.Engine
	parse  parser.Options
}

func (s settings) build() (*pipeline, error) {
	reg := standards.Default()
	if s.StandardsFile != "" {
		r, err := standards.LoadFile(expandHome(s.StandardsFile))
		if err != nil {
			return nil, err
		}
		reg = r
		logger.Debug("standards overlay loaded", "path", s.StandardsFile, "parameters", reg.Len())
	}
	mapper := normalize.NewMapper(reg, normalize.Options{DecimalSeparator: s.Decimal, ThousandsSeparator: s.Thousands})
	opt := analysis.DefaultOptions()
	if s.Workers > 0 {
		opt.Workers = s.Workers
	}
	if len(s.KeyParameters) > 0 {
		keys := make([]string, 0, len(s.KeyParameters))
		for _, k := range s.KeyParameters {
			name, ok := reg.Resolve(k)
			if !ok {
				return nil, fmt.Errorf("unknown key parameter %q (see 'waterlens standards')", k)
			}
			keys = append(keys, name)
		}
		opt.KeyParameters = keys
	}
	return &pipeline{
		reg:    reg,
		mapper: mapper,
		engine: analysis.NewEngine(reg, opt, logger),
		parse:  s.Parse,
	}, nil
}

// run loads the sources and analyzes them as one batch. strict refuses
// inputs with rejected rows.
func (p *pipeline) run(ctx context.Context, title string, sources []project.Source, strict bool) (*report.Document, error) {
	in, err := project.Load(sources, p.parse, p.mapper)
	if err != nil {
		return nil, err
	}
	logger.Debug("samples loaded", "sources", len(in.Sources), "rows", in.Rows, "accepted", len(in.Samples), "rejected", len(in.Rejected), "truncated", in.Truncated)
	if strict && len(in.Rejected) > 0 {
		r := in.Rejected[0]
		return nil, fmt.Errorf("%d rows rejected (first: %s row %d: %s)", len(in.Rejected), r.Source, r.Row, r.Reason)
	}
	if strict && in.Truncated > 0 {
		return nil, fmt.Errorf("%d rows past the %d-row limit not read (raise --max-rows)", in.Truncated, p.parse.MaxRows)
	}
	if len(in.Samples) == 0 {
		return nil, fmt.Errorf("no usable samples in %s (%d rows rejected): %w",
			strings.Join(in.Sources, ", "), len(in.Rejected), analysis.ErrEmptyBatch)
	}
	batch, err := p.engine.AnalyzeBatch(ctx, in.Samples)
	if err != nil {
		return nil, err
	}
	doc := report.New(title, in.Sources, in.Rows, in.Rejected, batch)
	doc.Truncated = in.Truncated
	return doc, nil
}

// reportFormat resolves --format, falling back to the output extension and
// then to the configured default.
func reportFormat(flag, output string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(flag))
	if f == "" {
		switch strings.ToLower(filepath.Ext(output)) {
		case ".json":
			f = "json"
		case ".xlsx":
			f = "xlsx"
		case ".md", ".markdown":
			f = "markdown"
		}
	}
	if f == "" && cfg != nil {
		f = cfg.ReportFormat
	}
	switch f {
	case "", "md", "markdown":
		return "markdown", nil
	case "json", "xlsx":
		return f, nil
	}
	return "", fmt.Errorf("unsupported --format: %s (use markdown|json|xlsx)", flag)
}

func formatExt(format string) string {
	switch format {
	case "json":
		return ".json"
	case "xlsx":
		return ".xlsx"
	}
	return ".md"
}

// writeReport renders doc to path, or to w when path is empty.
func writeReport(w io.Writer, doc *report.Document, format, path string) error {
	if format == "xlsx" {
		if path != "" {
			return doc.WriteXLSX(path)
		}
		// A workbook may go to stdout only when it is redirected.
		if f, ok := w.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
			return doc.WriteXLSXTo(f)
		}
		return fmt.Errorf("xlsx output requires --output or a redirected stdout")
	}
	var data []byte
	if format == "json" {
		b, err := doc.JSON()
		if err != nil {
			return err
		}
		data = b
	} else {
		data = []byte(doc.Markdown())
	}
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// uniquePath appends __2, __3... before the extension until path is unused.
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for idx := 2; ; idx++ {
		cand := fmt.Sprintf("%s__%d%s", base, idx, ext)
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	rest := strings.TrimPrefix(strings.TrimPrefix(p, "~"), string(os.PathSeparator))
	return filepath.Join(home, strings.TrimPrefix(rest, "/"))
}

// failThreshold maps --fail-on to the statuses that trip it.
func failThreshold(s string) ([]analysis.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return nil, nil
	case "unsafe":
		return []analysis.Status{analysis.StatusUnsafe, analysis.StatusCritical}, nil
	case "critical":
		return []analysis.Status{analysis.StatusCritical}, nil
	}
	return nil, fmt.Errorf("unsupported --fail-on: %s (use none|unsafe|critical)", s)
}

func checkThreshold(doc *report.Document, statuses []analysis.Status) error {
	if len(statuses) == 0 {
		return nil
	}
	n := 0
	for _, a := range doc.Batch.PerSample {
		for _, st := range statuses {
			if a.OverallStatus == st {
				n++
				break
			}
		}
	}
	if n > 0 {
		return fmt.Errorf("%d of %d samples are %s or worse", n, len(doc.Batch.PerSample), statuses[0])
	}
	return nil
}
