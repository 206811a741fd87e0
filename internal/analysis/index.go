package analysis

import (
	"math"

	"github.com/KaramelBytes/waterlens-cli/internal/normalize"
	"github.com/KaramelBytes/waterlens-cli/internal/standards"
)

// WQIParameters are the parameters rated by the Water Quality Index.
var WQIParameters = []string{
	standards.PH,
	standards.DissolvedOxygen,
	standards.Turbidity,
	standards.TotalDissolvedSolids,
	standards.Nitrate,
}

// CalculateHMPI averages value/max over the heavy metals present with a
// standard. No usable metal yields {0, safe, 0}.
func CalculateHMPI(readings map[string]normalize.ParameterReading) IndexResult {
	var sum float64
	used := 0
	for _, name := range standards.HeavyMetals {
		r, ok := readings[name]
		if !ok || !usable(r) || !r.Standard.HasMax() || r.Standard.MaxValue() <= 0 {
			continue
		}
		sum += r.Value / r.Standard.MaxValue()
		used++
	}
	if used == 0 {
		return IndexResult{Value: 0, Status: IndexSafe, Confidence: 0}
	}
	v := sum / float64(used)
	res := IndexResult{
		Value:      v,
		Status:     IndexSafe,
		Confidence: float64(used) / float64(len(standards.HeavyMetals)),
		Used:       used,
	}
	switch {
	case v > 2:
		res.Status = IndexCritical
	case v > 1:
		res.Status = IndexUnsafe
	}
	return res
}

// CalculateWQI averages 0-100 quality ratings over WQIParameters. No usable
// parameter yields {0, very_poor, 0}.
func CalculateWQI(readings map[string]normalize.ParameterReading) IndexResult {
	var sum float64
	used := 0
	for _, name := range WQIParameters {
		r, ok := readings[name]
		if !ok || !usable(r) {
			continue
		}
		q, ok := qualityRating(r.Value, *r.Standard)
		if !ok {
			continue
		}
		sum += q
		used++
	}
	if used == 0 {
		return IndexResult{Value: 0, Status: IndexVeryPoor, Confidence: 0}
	}
	v := sum / float64(used)
	return IndexResult{
		Value:      v,
		Status:     wqiGrade(v),
		Confidence: float64(used) / float64(len(WQIParameters)),
		Used:       used,
	}
}

// qualityRating maps a value to 0..100. Two-sided standards score 100 inside
// the range and lose 20 points per unit outside; min-only standards score the
// ratio to the minimum; max-only standards score the ratio of the maximum to the value.
func qualityRating(v float64, std standards.ParameterStandard) (float64, bool) {
	switch {
	case std.HasMin() && std.HasMax():
		lo, hi := std.MinValue(), std.MaxValue()
		if v >= lo && v <= hi {
			return 100, true
		}
		dev := lo - v
		if v > hi {
			dev = v - hi
		}
		return math.Max(0, 100-20*dev), true
	case std.HasMin():
		lo := std.MinValue()
		if lo <= 0 {
			return 100, true
		}
		return math.Min(100, 100*v/lo), true
	case std.HasMax():
		if v == 0 {
			return 100, true
		}
		return math.Min(100, 100*std.MaxValue()/v), true
	}
	return 0, false
}

func wqiGrade(v float64) IndexStatus {
	switch {
	case v < 25:
		return IndexVeryPoor
	case v < 50:
		return IndexPoor
	case v < 70:
		return IndexFair
	case v < 90:
		return IndexGood
	default:
		return IndexExcellent
	}
}

func usable(r normalize.ParameterReading) bool {
	return r.Standard != nil && !math.IsNaN(r.Value) && !math.IsInf(r.Value, 0) && r.Value >= 0
}
