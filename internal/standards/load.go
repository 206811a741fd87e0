package standards

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a standards override file.
type File struct {
	Standards []Entry `yaml:"standards" validate:"dive"`
}

// Entry is one override. Missing label/category are inherited from the built-in
// standard with the same name.
type Entry struct {
	Name     string   `yaml:"name" validate:"required"`
	Label    string   `yaml:"label"`
	Unit     string   `yaml:"unit" validate:"required"`
	Category Category `yaml:"category" validate:"omitempty,oneof=physical chemical heavy_metal nutrient microbiological"`
	Min      *float64 `yaml:"min" validate:"omitempty,gte=0"`
	Max      *float64 `yaml:"max" validate:"omitempty,gte=0"`
}

// ValidationError lists every invalid entry of an override file.
type ValidationError struct {
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid standards file %s: %s", e.Path, strings.Join(e.Problems, "; "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		e := sl.Current().Interface().(Entry)
		if e.Min == nil && e.Max == nil {
			sl.ReportError(e.Max, "Max", "max", "bound_required", "")
			return
		}
		if e.Min != nil && e.Max != nil && *e.Min > *e.Max {
			sl.ReportError(e.Min, "Min", "min", "min_lte_max", "")
		}
	}, Entry{})
	return v
}

// LoadFile reads a YAML override file and returns the default registry
// overlaid with its entries.
func LoadFile(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read standards file: %w", err)
	}
	return Parse(path, b)
}

// Parse decodes override YAML. name is only used in error messages.
func Parse(name string, data []byte) (*Registry, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse standards file: %w", err)
	}
	if err := validate.Struct(file); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			ve := &ValidationError{Path: name}
			for _, fe := range verrs {
				ve.Problems = append(ve.Problems, describe(fe))
			}
			return nil, ve
		}
		return nil, fmt.Errorf("validate standards file: %w", err)
	}

	base := Default()
	merged := base.All()
	for _, e := range file.Standards {
		s := ParameterStandard{Name: e.Name, Label: e.Label, Unit: e.Unit, Category: e.Category, Min: e.Min, Max: e.Max}
		if prev, ok := base.Lookup(e.Name); ok {
			if s.Label == "" {
				s.Label = prev.Label
			}
			if s.Category == "" {
				s.Category = prev.Category
			}
		}
		if s.Category == "" {
			if IsHeavyMetal(s.Name) {
				s.Category = CategoryHeavyMetal
			} else {
				s.Category = CategoryChemical
			}
		}
		merged = append(merged, s)
	}
	return New(merged...), nil
}

func describe(fe validator.FieldError) string {
	// Namespace looks like File.Standards[2].Unit
	ns := fe.Namespace()
	entry := ns
	if i := strings.Index(ns, "Standards["); i >= 0 {
		entry = ns[i:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", entry)
	case "bound_required":
		return fmt.Sprintf("%s: at least one of min or max must be set", strings.TrimSuffix(entry, ".Max"))
	case "min_lte_max":
		return fmt.Sprintf("%s: min must not exceed max", strings.TrimSuffix(entry, ".Min"))
	case "gte":
		return fmt.Sprintf("%s must not be negative", entry)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", entry, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", entry, fe.Tag())
	}
}
