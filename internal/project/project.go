package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/waterlens-cli/internal/normalize"
	"github.com/KaramelBytes/waterlens-cli/internal/parser"
	"github.com/KaramelBytes/waterlens-cli/internal/utils"
)

const (
	projectFileName = "project.json"
)

// Project is a monitoring campaign persisted on disk: the sample files
// collected for it and the reports produced from them.
type Project struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Datasets    map[string]*Dataset `json:"datasets"`
	Reports     []ReportEntry       `json:"reports,omitempty"`
	Config      *ProjectConfig      `json:"config"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	// Not serialized: on-disk location of the project.json
	rootDir string `json:"-"`
}

// ProjectConfig overrides global settings for one project. Empty fields inherit.
type ProjectConfig struct {
	StandardsFile      string   `json:"standards_file,omitempty"`
	DecimalSeparator   string   `json:"decimal_separator,omitempty"`
	ThousandsSeparator string   `json:"thousands_separator,omitempty"`
	KeyParameters      []string `json:"key_parameters,omitempty"`
}

// Dataset is one sample file registered with a project.
type Dataset struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SheetName   string    `json:"sheet_name,omitempty"`
	Rows        int       `json:"rows"`
	Accepted    int       `json:"accepted"`
	Rejected    int       `json:"rejected"`
	Truncated   int       `json:"truncated,omitempty"` // rows past the row limit, not read
	AddedAt     time.Time `json:"added_at"`
}

// ReportEntry records one generated report.
type ReportEntry struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Format    string    `json:"format"`
	Samples   int       `json:"samples"`
	Critical  int       `json:"critical"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProject constructs an in-memory project. Call Save() to persist.
func NewProject(name, description, rootDir string) *Project {
	return &Project{
		Name:        name,
		Description: description,
		Datasets:    make(map[string]*Dataset),
		Config:      &ProjectConfig{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		rootDir:     rootDir,
	}
}

// LoadProject loads a project.json from the provided directory.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, projectFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("project not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read project: %w", err)
	}
	var p Project
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if p.Config == nil {
		p.Config = &ProjectConfig{}
	}
	p.rootDir = dir
	return &p, nil
}

// RootDir returns the on-disk project directory path.
func (p *Project) RootDir() string { return p.rootDir }

// ReportsDir is where analyze writes reports for this project.
func (p *Project) ReportsDir() string { return filepath.Join(p.rootDir, "reports") }

// Save writes project.json using atomic write.
func (p *Project) Save() error {
	if p.rootDir == "" {
		return errors.New("project root directory not set")
	}
	if err := utils.EnsureProjectDir(p.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	p.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(p)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(p.rootDir, projectFileName), data)
}

// AddDataset parses a sample file, checks how many rows normalize into
// samples, and registers it. A file that yields no usable sample is refused.
func (p *Project) AddDataset(path, description string, opt parser.Options, m *normalize.Mapper) (*Dataset, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	for _, d := range p.Datasets {
		if d.Path == abs && d.SheetName == opt.SheetName {
			return nil, fmt.Errorf("dataset %s already added (id %s)", d.Name, d.ID)
		}
	}
	res, err := parser.ParseFile(abs, opt)
	if err != nil {
		return nil, err
	}
	recs := res.Records
	samples, rejected := m.NormalizeAll(recs)
	if len(samples) == 0 {
		return nil, fmt.Errorf("%s: no usable samples in %d rows", filepath.Base(abs), len(recs))
	}

	d := &Dataset{
		ID:          uuid.NewString(),
		Path:        abs,
		Name:        filepath.Base(abs),
		Description: strings.TrimSpace(description),
		SheetName:   opt.SheetName,
		Rows:        len(recs),
		Accepted:    len(samples),
		Rejected:    len(rejected),
		Truncated:   res.Truncated,
		AddedAt:     time.Now(),
	}
	if p.Datasets == nil {
		p.Datasets = make(map[string]*Dataset)
	}
	p.Datasets[d.ID] = d
	p.UpdatedAt = time.Now()
	return d, nil
}

// RemoveDataset drops a dataset by id or file name.
func (p *Project) RemoveDataset(ref string) error {
	for id, d := range p.Datasets {
		if id == ref || d.Name == ref {
			delete(p.Datasets, id)
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("dataset %q not found", ref)
}

// SortedDatasets returns datasets oldest first.
func (p *Project) SortedDatasets() []*Dataset {
	out := make([]*Dataset, 0, len(p.Datasets))
	for _, d := range p.Datasets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.Before(out[j].AddedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// RecordReport appends to the report history.
func (p *Project) RecordReport(e ReportEntry) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	p.Reports = append(p.Reports, e)
	p.UpdatedAt = time.Now()
}

// Input is the combined normalized content of one or more sample files.
type Input struct {
	Sources   []string
	Rows      int
	Samples   []normalize.Sample
	Rejected  []normalize.Rejection
	Truncated int // rows past the row limit, across all sources
}

// Source names one file to load, with an optional sheet override.
type Source struct {
	Path      string
	SheetName string
}

// Sources lists the project's datasets in load order.
func (p *Project) Sources() []Source {
	ds := p.SortedDatasets()
	out := make([]Source, 0, len(ds))
	for _, d := range ds {
		out = append(out, Source{Path: d.Path, SheetName: d.SheetName})
	}
	return out
}

// Load parses and normalizes every source in order. Rejections carry the
// file name they came from.
func Load(sources []Source, opt parser.Options, m *normalize.Mapper) (*Input, error) {
	if len(sources) == 0 {
		return nil, errors.New("no sample files given")
	}
	in := &Input{}
	for _, src := range sources {
		o := opt
		if src.SheetName != "" {
			o.SheetName = src.SheetName
		}
		res, err := parser.ParseFile(src.Path, o)
		if err != nil {
			return nil, err
		}
		recs := res.Records
		name := filepath.Base(src.Path)
		samples, rejected := m.NormalizeAll(recs)
		for i := range rejected {
			rejected[i].Source = name
		}
		in.Sources = append(in.Sources, name)
		in.Rows += len(recs)
		in.Truncated += res.Truncated
		in.Samples = append(in.Samples, samples...)
		in.Rejected = append(in.Rejected, rejected...)
	}
	return in, nil
}
