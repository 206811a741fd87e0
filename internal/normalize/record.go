package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/waterlens-cli/internal/standards"
)

// Value is a raw cell: either text as read from a sheet or a number.
type Value struct {
	Text  string
	Num   float64
	IsNum bool
}

// String wraps a text cell.
func String(s string) Value { return Value{Text: s} }

// Number wraps a numeric cell.
func Number(f float64) Value { return Value{Num: f, IsNum: true} }

// Raw returns the cell as text.
func (v Value) Raw() string {
	if v.IsNum {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Text
}

// Empty reports whether the cell carries nothing.
func (v Value) Empty() bool {
	return !v.IsNum && strings.TrimSpace(v.Text) == ""
}

// Field is one key/value pair of a raw record.
type Field struct {
	Key   string
	Value Value
}

// RawRecord is one input row with its fields in source column order.
type RawRecord struct {
	// Row is the 1-based source row (header excluded); 0 when unknown.
	Row    int
	Fields []Field
}

// Set appends a field, replacing an earlier field with the same key.
func (r *RawRecord) Set(key string, v Value) {
	for i := range r.Fields {
		if r.Fields[i].Key == key {
			r.Fields[i].Value = v
			return
		}
	}
	r.Fields = append(r.Fields, Field{Key: key, Value: v})
}

// Get returns the first field whose key equals key.
func (r RawRecord) Get(key string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location describes where a sample was taken.
type Location struct {
	Name        string       `json:"name"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Region      string       `json:"region,omitempty"`
	State       string       `json:"state,omitempty"`
	Country     string       `json:"country,omitempty"`
}

// ParameterReading is a measured value in the canonical unit of its standard.
// Standard is nil when the registry does not know the parameter.
type ParameterReading struct {
	Parameter string                       `json:"parameter"`
	Value     float64                      `json:"value"`
	Unit      string                       `json:"unit"`
	Standard  *standards.ParameterStandard `json:"-"`
}

// Sample is a normalized record ready for analysis.
type Sample struct {
	Row        int                         `json:"row,omitempty"`
	SampleDate time.Time                   `json:"sample_date"`
	Location   Location                    `json:"location"`
	Readings   map[string]ParameterReading `json:"readings"`
}

// Values returns the readings as a plain name to value map.
func (s Sample) Values() map[string]float64 {
	out := make(map[string]float64, len(s.Readings))
	for name, r := range s.Readings {
		out[name] = r.Value
	}
	return out
}

// Rejection explains why a raw record produced no sample.
type Rejection struct {
	Source string `json:"source,omitempty"`
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
