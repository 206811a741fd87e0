package analysis

import (
	"math"

	"github.com/KaramelBytes/waterlens-cli/internal/normalize"
	"github.com/KaramelBytes/waterlens-cli/internal/standards"
)

// rangeMargin is the distance from either bound of a two-sided standard
// inside which a value is already flagged.
const rangeMargin = 0.5

// Classify judges value against the standard registered for name. A missing
// standard or a NaN value yields unknown.
func Classify(reg *standards.Registry, name string, value float64) ParameterClassification {
	r := normalize.ParameterReading{Parameter: name, Value: value}
	if std, ok := reg.Lookup(name); ok {
		r.Unit = std.Unit
		r.Standard = &std
	}
	return classifyReading(r)
}

func classifyReading(r normalize.ParameterReading) ParameterClassification {
	c := ParameterClassification{Reading: r, Status: StatusUnknown, RiskLevel: RiskUnknown}
	std := r.Standard
	v := r.Value
	if std == nil || math.IsNaN(v) || (!std.HasMin() && !std.HasMax()) {
		return c
	}

	switch {
	case std.HasMin() && std.HasMax():
		lo, hi := std.MinValue(), std.MaxValue()
		c.Deviation = math.Min(math.Abs(v-lo), math.Abs(v-hi))
		switch {
		case v < lo || v > hi:
			c.Status, c.RiskLevel = StatusUnsafe, RiskHigh
		case v < lo+rangeMargin || v > hi-rangeMargin:
			c.Status, c.RiskLevel = StatusUnsafe, RiskMedium
		default:
			c.Status, c.RiskLevel = StatusSafe, RiskLow
		}

	case std.HasMin():
		lo := std.MinValue()
		c.Deviation = lo - v
		switch {
		case v < lo:
			c.Status, c.RiskLevel = StatusCritical, RiskCritical
		case v < lo+1:
			c.Status, c.RiskLevel = StatusUnsafe, RiskHigh
		default:
			c.Status, c.RiskLevel = StatusSafe, RiskLow
		}

	default:
		hi := std.MaxValue()
		c.Deviation = v - hi
		switch {
		// 2·max itself is critical; v > hi keeps a zero max from flagging 0.
		case v > hi && v >= 2*hi:
			c.Status, c.RiskLevel = StatusCritical, RiskCritical
		case v > hi:
			c.Status, c.RiskLevel = StatusUnsafe, RiskHigh
		case v > 0.8*hi:
			c.Status, c.RiskLevel = StatusUnsafe, RiskMedium
		default:
			c.Status, c.RiskLevel = StatusSafe, RiskLow
		}
	}
	return c
}

// exceeds reports whether the reading is past a bound, as opposed to merely close to one.
func exceeds(c ParameterClassification) bool {
	std := c.Reading.Standard
	if std == nil || math.IsNaN(c.Reading.Value) {
		return false
	}
	v := c.Reading.Value
	return (std.HasMax() && v > std.MaxValue()) || (std.HasMin() && v < std.MinValue())
}
