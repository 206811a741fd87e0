package normalize

import (
	"strings"
	"time"

	"github.com/KaramelBytes/waterlens-cli/internal/standards"
)

// Options controls how raw cells are interpreted.
type Options struct {
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// Now supplies the sample date when a record has none. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns auto-detecting options with the wall clock.
func DefaultOptions() Options {
	return Options{Now: time.Now}
}

// Mapper turns raw records into samples keyed by canonical parameter names.
// It is the only stage that tolerates malformed input.
type Mapper struct {
	reg *standards.Registry
	opt Options
}

// NewMapper builds a mapper backed by reg.
func NewMapper(reg *standards.Registry, opt Options) *Mapper {
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Mapper{reg: reg, opt: opt}
}

// Normalize maps one record. It returns nil when no parameter value survives.
func (m *Mapper) Normalize(rec RawRecord) *Sample {
	s, _ := m.normalize(rec)
	return s
}

// NormalizeAll maps every record and reports the rows that produced nothing.
func (m *Mapper) NormalizeAll(recs []RawRecord) ([]Sample, []Rejection) {
	var (
		out      []Sample
		rejected []Rejection
	)
	for i, rec := range recs {
		s, reason := m.normalize(rec)
		if s == nil {
			row := rec.Row
			if row == 0 {
				row = i + 1
			}
			rejected = append(rejected, Rejection{Row: row, Reason: reason})
			continue
		}
		out = append(out, *s)
	}
	return out, rejected
}

func (m *Mapper) normalize(rec RawRecord) (*Sample, string) {
	// Unit companion columns ("Arsenic unit": "µg/L") apply to their parameter.
	units := map[string]string{}
	for _, f := range rec.Fields {
		norm, _ := normalizeHeader(f.Key)
		if base, ok := companionBase(m.reg, norm); ok {
			units[base] = strings.TrimSpace(f.Value.Raw())
		}
	}

	readings := map[string]ParameterReading{}
	var skipped []string
	for _, f := range rec.Fields {
		norm, headerUnit := normalizeHeader(f.Key)
		if norm == "" || isMetadata(norm) {
			continue
		}
		if _, ok := companionBase(m.reg, norm); ok {
			continue
		}
		name, _ := canonicalName(m.reg, norm)
		if _, dup := readings[name]; dup {
			continue
		}
		if f.Value.Empty() {
			continue
		}
		x, ok := parseMeasurement(f.Value, m.opt)
		if !ok {
			skipped = append(skipped, f.Key)
			continue
		}
		if standards.IsHeavyMetal(name) {
			if u, ok := units[name]; ok && u != "" {
				if hintsMicro(u) {
					x /= 1000
				}
			} else if hintsMicro(f.Key) {
				x /= 1000
			}
		}
		r := ParameterReading{Parameter: name, Value: x, Unit: headerUnit}
		if std, ok := m.reg.Lookup(name); ok {
			r.Unit = std.Unit
			r.Standard = &std
		}
		readings[name] = r
	}
	if len(readings) == 0 {
		reason := "no parameter values"
		if len(skipped) > 0 {
			reason = "no parseable parameter values (" + strings.Join(skipped, ", ") + ")"
		}
		return nil, reason
	}

	return &Sample{
		Row:        rec.Row,
		SampleDate: m.sampleDate(rec),
		Location:   m.location(rec),
		Readings:   readings,
	}, ""
}

func (m *Mapper) sampleDate(rec RawRecord) time.Time {
	for _, key := range dateKeys {
		for _, f := range rec.Fields {
			norm, _ := normalizeHeader(f.Key)
			if fold(norm) != key {
				continue
			}
			if t, ok := parseDate(f.Value); ok {
				return t
			}
		}
	}
	return m.opt.Now()
}

func (m *Mapper) location(rec RawRecord) Location {
	loc := Location{Name: "Unknown"}
	if v, ok := firstField(rec, locationKeys); ok && strings.TrimSpace(v.Raw()) != "" {
		loc.Name = strings.TrimSpace(v.Raw())
	}
	if v, ok := firstField(rec, regionKeys); ok {
		loc.Region = strings.TrimSpace(v.Raw())
	}
	if v, ok := firstField(rec, stateKeys); ok {
		loc.State = strings.TrimSpace(v.Raw())
	}
	if v, ok := firstField(rec, countryKeys); ok {
		loc.Country = strings.TrimSpace(v.Raw())
	}
	latV, okLat := firstField(rec, latitudeKeys)
	lngV, okLng := firstField(rec, longitudeKeys)
	if okLat && okLng {
		lat, ok1 := parseCoordinate(latV, m.opt, 90)
		lng, ok2 := parseCoordinate(lngV, m.opt, 180)
		if ok1 && ok2 {
			loc.Coordinates = &Coordinates{Latitude: lat, Longitude: lng}
		}
	}
	return loc
}

// firstField returns the first non-empty field matching any key, in key order.
func firstField(rec RawRecord, keys []string) (Value, bool) {
	for _, key := range keys {
		for _, f := range rec.Fields {
			norm, _ := normalizeHeader(f.Key)
			if fold(norm) == key && !f.Value.Empty() {
				return f.Value, true
			}
		}
	}
	return Value{}, false
}
