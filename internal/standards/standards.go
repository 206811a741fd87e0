package standards

import (
	"sort"
	"strings"
)

// Category groups parameters for reporting and treatment advice.
type Category string

const (
	CategoryPhysical        Category = "physical"
	CategoryChemical        Category = "chemical"
	CategoryHeavyMetal      Category = "heavy_metal"
	CategoryNutrient        Category = "nutrient"
	CategoryMicrobiological Category = "microbiological"
)

// Canonical parameter names.
const (
	PH                   = "pH"
	Temperature          = "temperature"
	Turbidity            = "turbidity"
	TotalDissolvedSolids = "totalDissolvedSolids"
	Conductivity         = "conductivity"
	DissolvedOxygen      = "dissolvedOxygen"
	BOD                  = "bod"
	COD                  = "cod"
	Alkalinity           = "alkalinity"
	Hardness             = "hardness"
	Arsenic              = "arsenic"
	Lead                 = "lead"
	Mercury              = "mercury"
	Cadmium              = "cadmium"
	Chromium             = "chromium"
	Nickel               = "nickel"
	Copper               = "copper"
	Zinc                 = "zinc"
	Iron                 = "iron"
	Manganese            = "manganese"
	Nitrate              = "nitrate"
	Nitrite              = "nitrite"
	Ammonia              = "ammonia"
	Phosphate            = "phosphate"
	TotalColiform        = "totalColiform"
	FecalColiform        = "fecalColiform"
	EColi                = "eColi"
)

// HeavyMetals lists the metals that make up the heavy metal pollution index.
var HeavyMetals = []string{Arsenic, Lead, Mercury, Cadmium, Chromium, Nickel, Copper, Zinc, Iron, Manganese}

// IsHeavyMetal reports whether name is one of the ten index metals.
func IsHeavyMetal(name string) bool {
	for _, m := range HeavyMetals {
		if m == name {
			return true
		}
	}
	return false
}

// ParameterStandard is the permissible bound and canonical unit for one parameter.
type ParameterStandard struct {
	Name     string   `json:"name" yaml:"name"`
	Label    string   `json:"label" yaml:"label"`
	Unit     string   `json:"unit" yaml:"unit"`
	Category Category `json:"category" yaml:"category"`
	Min      *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max      *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// HasMin reports whether a lower bound is set.
func (s ParameterStandard) HasMin() bool { return s.Min != nil }

// HasMax reports whether an upper bound is set.
func (s ParameterStandard) HasMax() bool { return s.Max != nil }

// MinValue returns the lower bound or 0.
func (s ParameterStandard) MinValue() float64 {
	if s.Min == nil {
		return 0
	}
	return *s.Min
}

// MaxValue returns the upper bound or 0.
func (s ParameterStandard) MaxValue() float64 {
	if s.Max == nil {
		return 0
	}
	return *s.Max
}

// DisplayName returns Label, falling back to Name.
func (s ParameterStandard) DisplayName() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Name
}

func (s ParameterStandard) clone() ParameterStandard {
	c := s
	if s.Min != nil {
		v := *s.Min
		c.Min = &v
	}
	if s.Max != nil {
		v := *s.Max
		c.Max = &v
	}
	return c
}

// Registry is an immutable lookup table of parameter standards. A Registry is
// safe for concurrent use because nothing mutates it after construction.
type Registry struct {
	byName map[string]ParameterStandard
	names  []string
	// folded maps lower-cased names and labels to canonical names.
	folded map[string]string
}

// New builds a registry from the given standards. Later entries with the same
// name replace earlier ones.
func New(stds ...ParameterStandard) *Registry {
	r := &Registry{byName: make(map[string]ParameterStandard, len(stds))}
	for _, s := range stds {
		r.byName[s.Name] = s.clone()
	}
	r.names = make([]string, 0, len(r.byName))
	for name := range r.byName {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	r.folded = make(map[string]string, 2*len(r.names))
	for _, name := range r.names {
		if l := strings.ToLower(r.byName[name].Label); l != "" {
			r.folded[l] = name
		}
	}
	for _, name := range r.names {
		r.folded[strings.ToLower(name)] = name
	}
	return r
}

// Resolve maps a user-typed parameter name or label to its canonical name.
// An exact name wins; otherwise names and labels match case-insensitively,
// with names taking precedence over labels.
func (r *Registry) Resolve(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	if _, ok := r.byName[name]; ok {
		return name, true
	}
	c, ok := r.folded[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Lookup returns a copy of the standard for name.
func (r *Registry) Lookup(name string) (ParameterStandard, bool) {
	if r == nil {
		return ParameterStandard{}, false
	}
	s, ok := r.byName[name]
	if !ok {
		return ParameterStandard{}, false
	}
	return s.clone(), true
}

// Names returns the sorted canonical parameter names.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len is the number of standards in the registry.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

// All returns copies of every standard sorted by category then name.
func (r *Registry) All() []ParameterStandard {
	if r == nil {
		return nil
	}
	out := make([]ParameterStandard, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.byName[n].clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := categoryRank(out[i].Category), categoryRank(out[j].Category)
		if ci == cj {
			return out[i].Name < out[j].Name
		}
		return ci < cj
	})
	return out
}

// ByCategory returns the standards in one category.
func (r *Registry) ByCategory(c Category) []ParameterStandard {
	var out []ParameterStandard
	for _, s := range r.All() {
		if s.Category == c {
			out = append(out, s)
		}
	}
	return out
}

func categoryRank(c Category) int {
	switch c {
	case CategoryPhysical:
		return 0
	case CategoryChemical:
		return 1
	case CategoryHeavyMetal:
		return 2
	case CategoryNutrient:
		return 3
	case CategoryMicrobiological:
		return 4
	default:
		return 5
	}
}
